package remote

import (
	"context"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"
)

// VideoRequest は動画生成の長時間実行操作を開始するためのリクエストなのだ。
type VideoRequest struct {
	Model       string
	Prompt      string
	AspectRatio string
	Resolution  string
}

// Operation は長時間実行操作のハンドルなのだ。
type Operation struct {
	Name string
	Done bool
	// Error は完了時にサービスが報告したエラーのペイロードなのだ。
	Error map[string]any
	// VideoURI は最初に生成された動画のロケーターなのだ。
	VideoURI string
	// FilteredReasons は安全フィルタで除外された理由なのだ。
	FilteredReasons []string

	raw any
}

// Backend はリモート生成サービスへの呼び出しを抽象化するのだ。
// apiKey は呼び出しごとに解決されたものを受け取るのだ。
type Backend interface {
	GenerateText(ctx context.Context, apiKey, model, prompt string) (string, error)
	GenerateImage(ctx context.Context, apiKey, model, prompt, aspectRatio string) (*imgdom.ImageResponse, error)
	SubmitVideo(ctx context.Context, apiKey string, req VideoRequest) (*Operation, error)
	GetVideoOperation(ctx context.Context, apiKey string, op *Operation) (*Operation, error)
}

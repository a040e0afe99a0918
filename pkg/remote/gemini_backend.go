package remote

import (
	"context"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

const defaultTemperature = float32(0.7)

// GeminiBackend は Gemini API を使った Backend の実装なのだ。
// テキストは go-gemini-client、画像と動画は genai を直接使うのだ。
type GeminiBackend struct {
	temperature float32
}

// NewGeminiBackend は GeminiBackend を作るのだ。
func NewGeminiBackend() *GeminiBackend {
	return &GeminiBackend{temperature: defaultTemperature}
}

// GenerateText はテキストを生成するのだ。
func (b *GeminiBackend) GenerateText(ctx context.Context, apiKey, model, prompt string) (string, error) {
	aiClient, err := gemini.NewClient(ctx, gemini.Config{
		APIKey:      apiKey,
		Temperature: genai.Ptr(b.temperature),
	})
	if err != nil {
		return "", &TransportError{Op: "Gemini クライアントの初期化", Err: err}
	}

	resp, err := aiClient.GenerateContent(ctx, prompt, model)
	if err != nil {
		return "", &TransportError{Op: "テキスト生成", Err: err}
	}
	return resp.Text, nil
}

// GenerateImage は画像を1枚生成するのだ。
func (b *GeminiBackend) GenerateImage(ctx context.Context, apiKey, model, prompt, aspectRatio string) (*imgdom.ImageResponse, error) {
	client, err := newGenAIClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: aspectRatio},
	})
	if err != nil {
		return nil, &TransportError{Op: "画像生成", Err: err}
	}

	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &imgdom.ImageResponse{
					Data:     part.InlineData.Data,
					MimeType: part.InlineData.MIMEType,
				}, nil
			}
		}
	}
	return nil, ErrNoContent
}

// SubmitVideo は動画生成の操作を開始するのだ。
func (b *GeminiBackend) SubmitVideo(ctx context.Context, apiKey string, req VideoRequest) (*Operation, error) {
	client, err := newGenAIClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	op, err := client.Models.GenerateVideos(ctx, req.Model, req.Prompt, nil, &genai.GenerateVideosConfig{
		NumberOfVideos: 1,
		AspectRatio:    req.AspectRatio,
		Resolution:     req.Resolution,
	})
	if err != nil {
		return nil, &TransportError{Op: "動画生成の開始", Err: err}
	}
	return fromVideosOperation(op), nil
}

// GetVideoOperation は操作の最新状態を取得するのだ。
func (b *GeminiBackend) GetVideoOperation(ctx context.Context, apiKey string, op *Operation) (*Operation, error) {
	client, err := newGenAIClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	raw, ok := op.raw.(*genai.GenerateVideosOperation)
	if !ok || raw == nil {
		raw = &genai.GenerateVideosOperation{Name: op.Name}
	}
	next, err := client.Operations.GetVideosOperation(ctx, raw, nil)
	if err != nil {
		return nil, &TransportError{Op: "操作状態の取得", Err: err}
	}
	return fromVideosOperation(next), nil
}

func newGenAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, &TransportError{Op: "genai クライアントの初期化", Err: err}
	}
	return client, nil
}

func fromVideosOperation(op *genai.GenerateVideosOperation) *Operation {
	if op == nil {
		return &Operation{Done: true, Error: map[string]any{"message": "empty operation"}}
	}
	out := &Operation{
		Name:  op.Name,
		Done:  op.Done,
		Error: op.Error,
		raw:   op,
	}
	if op.Response != nil {
		out.FilteredReasons = op.Response.RAIMediaFilteredReasons
		if len(op.Response.GeneratedVideos) > 0 {
			if v := op.Response.GeneratedVideos[0]; v != nil && v.Video != nil {
				out.VideoURI = v.Video.URI
			}
		}
	}
	return out
}

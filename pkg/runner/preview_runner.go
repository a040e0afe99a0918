package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/prompts"
)

// ShortsPreviewRunner はシーンの静止画プレビューを生成するのだ。
type ShortsPreviewRunner struct {
	promptBuilder prompts.MediaPrompt
	generator     ImageGenerator
}

// NewShortsPreviewRunner は依存関係を注入して初期化します。
func NewShortsPreviewRunner(pb prompts.MediaPrompt, gen ImageGenerator) *ShortsPreviewRunner {
	return &ShortsPreviewRunner{promptBuilder: pb, generator: gen}
}

// Run はシーンのプレビュー画像を生成し、data URL で返します。
func (pr *ShortsPreviewRunner) Run(ctx context.Context, scene domain.Scene, characterDescription string) (string, error) {
	slog.Info("Generating scene preview", "scene", scene.SceneNumber)
	resp, err := pr.generator.GenerateImage(ctx, pr.promptBuilder.BuildSceneImage(scene, characterDescription))
	if err != nil {
		return "", fmt.Errorf("シーン %d のプレビュー生成に失敗しました: %w", scene.SceneNumber, err)
	}
	return blob.DataURL(resp.Data, resp.MimeType), nil
}

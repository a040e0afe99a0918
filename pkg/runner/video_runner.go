package runner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/prompts"
)

// 動画の種類なのだ。
const (
	KindPrimary = "primary"
	KindIdle    = "idle"
)

// ShortsVideoRunner はシーンのメイン動画と待機ループ動画を生成するのだ。
type ShortsVideoRunner struct {
	promptBuilder prompts.MediaPrompt
	generator     VideoGenerator
}

// NewShortsVideoRunner は依存関係を注入して初期化します。
func NewShortsVideoRunner(pb prompts.MediaPrompt, gen VideoGenerator) *ShortsVideoRunner {
	return &ShortsVideoRunner{promptBuilder: pb, generator: gen}
}

// Run はシーンのメイン動画を生成し、再生可能な参照を返します。
func (vr *ShortsVideoRunner) Run(ctx context.Context, scene domain.Scene, characterDescription string) (string, error) {
	return vr.run(ctx, KindPrimary, scene, vr.promptBuilder.BuildVideo(scene, characterDescription))
}

// RunIdle は待機ループ動画を生成します。
func (vr *ShortsVideoRunner) RunIdle(ctx context.Context, scene domain.Scene, characterDescription string) (string, error) {
	return vr.run(ctx, KindIdle, scene, vr.promptBuilder.BuildIdleVideo(scene, characterDescription))
}

func (vr *ShortsVideoRunner) run(ctx context.Context, kind string, scene domain.Scene, prompt string) (string, error) {
	logger := slog.With("scene", scene.SceneNumber, "kind", kind)
	logger.Info("Starting video generation")

	ref, err := vr.generator.GenerateVideo(ctx, prompt, map[string]any{
		"scene":    scene.SceneNumber,
		"kind":     kind,
		"duration": scene.DurationSeconds,
	})
	if err != nil {
		logger.Error("Video generation failed", "error", err)
		return "", fmt.Errorf("シーン %d の動画生成に失敗しました: %w", scene.SceneNumber, err)
	}
	logger.Info("Video generation finished")
	return ref, nil
}

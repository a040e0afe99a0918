package runner

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/prompts"
)

// ShortsScriptRunner はトピックから台本を生成し、draft 状態のシーン列に変換するのだ。
type ShortsScriptRunner struct {
	promptBuilder prompts.ScriptPrompt
	generator     ScriptGenerator
}

// NewShortsScriptRunner は依存関係を注入して初期化します。
func NewShortsScriptRunner(pb prompts.ScriptPrompt, gen ScriptGenerator) *ShortsScriptRunner {
	return &ShortsScriptRunner{
		promptBuilder: pb,
		generator:     gen,
	}
}

// Run はトピックとキャラクターの説明から台本を生成します。
func (sr *ShortsScriptRunner) Run(ctx context.Context, topic, characterDescription string) ([]domain.Scene, error) {
	slog.Info("ScriptRunner: Building prompt", "topic", topic)

	finalPrompt, err := sr.promptBuilder.Build(prompts.ModeScript, prompts.TemplateData{
		Topic:                strings.TrimSpace(topic),
		CharacterDescription: strings.TrimSpace(characterDescription),
	})
	if err != nil {
		return nil, fmt.Errorf("プロンプト生成に失敗: %w", err)
	}

	records, err := sr.generator.GenerateScript(ctx, finalPrompt)
	if err != nil {
		return nil, fmt.Errorf("台本の生成に失敗しました: %w", err)
	}

	scenes := make([]domain.Scene, len(records))
	for i, r := range records {
		scenes[i] = r.Hydrate()
	}
	slog.Info("ScriptRunner: Script generated", "scenes", len(scenes))
	return scenes, nil
}

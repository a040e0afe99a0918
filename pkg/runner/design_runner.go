package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/prompts"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
)

const characterFilePrefix = "character_"

// ShortsDesignRunner はキャラクターのリファレンス画像を生成するのだ。
type ShortsDesignRunner struct {
	promptBuilder prompts.MediaPrompt
	generator     ImageGenerator
	writer        publisher.Writer
}

// NewShortsDesignRunner は依存関係を注入して初期化します。writer は保存しないなら nil でよいのだ。
func NewShortsDesignRunner(pb prompts.MediaPrompt, gen ImageGenerator, writer publisher.Writer) *ShortsDesignRunner {
	return &ShortsDesignRunner{
		promptBuilder: pb,
		generator:     gen,
		writer:        writer,
	}
}

// Run はキャラクターの説明から画像を生成し、data URL で返します。
func (dr *ShortsDesignRunner) Run(ctx context.Context, characterDescription string) (string, error) {
	resp, err := dr.generate(ctx, characterDescription)
	if err != nil {
		return "", err
	}
	return blob.DataURL(resp.Data, resp.MimeType), nil
}

// RunAndSave は画像を生成して outputDir に保存し、保存先のパスを返します。
func (dr *ShortsDesignRunner) RunAndSave(ctx context.Context, characterDescription, name, outputDir string) (string, error) {
	if dr.writer == nil {
		return "", fmt.Errorf("画像の保存先が設定されていません")
	}
	resp, err := dr.generate(ctx, characterDescription)
	if err != nil {
		return "", err
	}

	filename := characterFilePrefix + publisher.SanitizeName(name) + getPreferredExtension(resp.MimeType)
	finalPath, err := publisher.ResolveOutputPath(outputDir, filename)
	if err != nil {
		return "", fmt.Errorf("画像保存パスの生成に失敗しました: %w", err)
	}
	if err := dr.writer.Write(ctx, finalPath, bytes.NewReader(resp.Data), resp.MimeType); err != nil {
		slog.Error("Failed to save image", "error", err)
		return "", fmt.Errorf("画像の保存に失敗しました (path: %s): %w", finalPath, err)
	}
	return finalPath, nil
}

func (dr *ShortsDesignRunner) generate(ctx context.Context, characterDescription string) (*imgdom.ImageResponse, error) {
	characterDescription = strings.TrimSpace(characterDescription)
	if characterDescription == "" {
		return nil, fmt.Errorf("キャラクター情報が空のため、プロンプトを生成できませんでした")
	}

	slog.Info("Executing character design generation", "description_len", len(characterDescription))
	resp, err := dr.generator.GenerateImage(ctx, dr.promptBuilder.BuildCharacterImage(characterDescription))
	if err != nil {
		slog.Error("Design generation failed", "error", err)
		return nil, fmt.Errorf("画像の生成に失敗しました: %w", err)
	}
	return resp, nil
}

func getPreferredExtension(mimeType string) string {
	preferred := map[string]string{"image/png": ".png", "image/jpeg": ".jpg", "image/webp": ".webp"}
	if ext, ok := preferred[mimeType]; ok {
		return ext
	}
	return ".png"
}

package runner

import (
	"context"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/go-shorts-kit/pkg/domain"
)

// ScriptGenerator は台本を生成するリモート呼び出しなのだ。
type ScriptGenerator interface {
	GenerateScript(ctx context.Context, prompt string) ([]domain.ScriptScene, error)
}

// ImageGenerator は画像を1枚生成するリモート呼び出しなのだ。
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*imgdom.ImageResponse, error)
}

// VideoGenerator は動画を生成し、再生可能な参照を返すリモート呼び出しなのだ。
type VideoGenerator interface {
	GenerateVideo(ctx context.Context, prompt string, details map[string]any) (string, error)
}

package workflow

import (
	"context"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/orchestrator"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
)

// Workflow は、ショート動画生成の各工程を担当する Runner を構築するためのインターフェースを定義します。
type Workflow interface {
	BuildScriptRunner() (orchestrator.ScriptRunner, error)
	BuildDesignRunner() (DesignRunner, error)
	BuildPreviewRunner() (orchestrator.PreviewRunner, error)
	BuildVideoRunner() (orchestrator.VideoRunner, error)
	BuildPublishRunner() (PublishRunner, error)
	BuildOrchestrator() (*orchestrator.Orchestrator, error)
}

// DesignRunner は、キャラクターの説明からリファレンス画像を生成する責務を持ちます。
type DesignRunner interface {
	orchestrator.DesignRunner
	RunAndSave(ctx context.Context, characterDescription, name, outputDir string) (string, error)
}

// PublishRunner は、プロジェクトと完成済みの動画をディレクトリに書き出す責務を持ちます。
type PublishRunner interface {
	Run(ctx context.Context, project *domain.Project, picker publisher.DirectoryPicker) (publisher.ExportResult, error)
	BuildStoryboard(project *domain.Project) string
}

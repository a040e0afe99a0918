package runner

import (
	"context"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
)

// DefaultPublisherRunner は pkg/publisher を利用した標準実装なのだ。
type DefaultPublisherRunner struct {
	publisher *publisher.ShortsPublisher
}

func NewDefaultPublisherRunner(pub *publisher.ShortsPublisher) *DefaultPublisherRunner {
	return &DefaultPublisherRunner{publisher: pub}
}

// Run は picker で選んだディレクトリにプロジェクトを書き出します。
func (pr *DefaultPublisherRunner) Run(ctx context.Context, project *domain.Project, picker publisher.DirectoryPicker) (publisher.ExportResult, error) {
	return pr.publisher.Export(ctx, project, picker)
}

// BuildStoryboard は保存処理を行わず、プロジェクトから Markdown の絵コンテだけを生成して返却します。
func (pr *DefaultPublisherRunner) BuildStoryboard(project *domain.Project) string {
	return publisher.BuildStoryboard(project)
}

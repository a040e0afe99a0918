package workflow

import (
	"github.com/shouni/go-shorts-kit/pkg/orchestrator"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
	"github.com/shouni/go-shorts-kit/pkg/runner"
)

// BuildScriptRunner は、台本生成を担当する Runner を作成します。
func (m *Manager) BuildScriptRunner() (orchestrator.ScriptRunner, error) {
	return runner.NewShortsScriptRunner(m.scriptPrompt, m.client), nil
}

// BuildDesignRunner は、キャラクターデザインを担当する Runner を作成します。
func (m *Manager) BuildDesignRunner() (DesignRunner, error) {
	return runner.NewShortsDesignRunner(m.mediaPrompt, m.client, m.writer), nil
}

// BuildPreviewRunner は、シーンの静止画プレビューを担当する Runner を作成します。
func (m *Manager) BuildPreviewRunner() (orchestrator.PreviewRunner, error) {
	return runner.NewShortsPreviewRunner(m.mediaPrompt, m.client), nil
}

// BuildVideoRunner は、メイン動画と待機ループ動画を担当する Runner を作成します。
func (m *Manager) BuildVideoRunner() (orchestrator.VideoRunner, error) {
	return runner.NewShortsVideoRunner(m.mediaPrompt, m.client), nil
}

// BuildPublishRunner は、成果物のエクスポートを担当する Runner を作成します。
func (m *Manager) BuildPublishRunner() (PublishRunner, error) {
	pub := publisher.NewShortsPublisher(m.writer, m.store, m.events)
	return runner.NewDefaultPublisherRunner(pub), nil
}

// BuildOrchestrator は、すべての Runner を組み合わせた Orchestrator を作成します。
// ワーカーは呼び出し側で Run を起動する必要があります。
func (m *Manager) BuildOrchestrator() (*orchestrator.Orchestrator, error) {
	script, err := m.BuildScriptRunner()
	if err != nil {
		return nil, err
	}
	design, err := m.BuildDesignRunner()
	if err != nil {
		return nil, err
	}
	preview, err := m.BuildPreviewRunner()
	if err != nil {
		return nil, err
	}
	video, err := m.BuildVideoRunner()
	if err != nil {
		return nil, err
	}

	return orchestrator.New(orchestrator.Args{
		Script:       script,
		Design:       design,
		Preview:      preview,
		Video:        video,
		Blobs:        m.store,
		Events:       m.events,
		RateInterval: m.cfg.RateInterval,
	})
}

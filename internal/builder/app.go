package builder

import (
	"fmt"
	"log/slog"

	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/go-shorts-kit/internal/config"
	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/eventlog"
	"github.com/shouni/go-shorts-kit/pkg/orchestrator"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
	"github.com/shouni/go-shorts-kit/pkg/remote"
	"github.com/shouni/go-shorts-kit/pkg/settings"
	"github.com/shouni/go-shorts-kit/pkg/workflow"
)

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持する
// これを各コマンドやサーバーに渡すことで、依存関係の注入を簡素化します。
type AppContext struct {
	Config       *config.Config             // Configは、環境変数から読み込まれたグローバルな設定です（APIキー、モデル名など）。
	Options      config.GenerateOptions     // Optionsは、コマンドラインから渡された実行時の設定です。
	Settings     *settings.Store            // Settingsは、APIキーの上書きなどローカルに保存されるユーザー設定です。nil なら無効です。
	Events       *eventlog.Log              // Eventsは、プロセス全体で共有するイベントログです。
	Manager      *workflow.Manager          // Managerは、各 Runner の構築を担います。
	Orchestrator *orchestrator.Orchestrator // Orchestratorは、プロジェクトの状態と動画生成ワーカーを保持します。
	Publisher    workflow.PublishRunner     // Publisherは、プロジェクトのエクスポートを担います。
}

// Option は AppContext の構築時に依存を差し替えるための関数です。
type Option func(*workflow.ManagerArgs)

// WithBackend はリモート生成サービスを差し替えます。
func WithBackend(b remote.Backend) Option {
	return func(a *workflow.ManagerArgs) { a.Backend = b }
}

// WithClock はポーリングに使う時計を差し替えます。
func WithClock(c remote.Clock) Option {
	return func(a *workflow.ManagerArgs) { a.Clock = c }
}

// WithFetcher は動画のダウンロードに使う HTTP クライアントを差し替えます。
func WithFetcher(f blob.Fetcher) Option {
	return func(a *workflow.ManagerArgs) { a.HTTPClient = f }
}

// WithWriter はエクスポート先の Writer を差し替えます。既定は go-remote-io の OutputWriter です。
func WithWriter(w publisher.Writer) Option {
	return func(a *workflow.ManagerArgs) { a.Writer = w }
}

// NewAppContext は設定から Manager と Orchestrator を組み立てて AppContext を返すのだ。
// ワーカーは起動しないので、呼び出し側で Orchestrator.Run を回す必要があります。
func NewAppContext(cfg *config.Config, opts ...Option) (*AppContext, error) {
	kc := cfg.KitConfig()
	events := eventlog.New(slog.Default())

	args := workflow.ManagerArgs{
		Config:     kc,
		HTTPClient: httpkit.New(kc.RequestTimeout),
		Events:     events,
		Writer:     newRemoteWriter(),
	}

	var store *settings.Store
	if cfg.SettingsPath != "" {
		store = settings.NewStore(cfg.SettingsPath)
		args.Overrides = store
	}
	for _, opt := range opts {
		opt(&args)
	}

	manager, err := workflow.New(args)
	if err != nil {
		return nil, fmt.Errorf("Managerの初期化に失敗しました: %w", err)
	}
	orch, err := manager.BuildOrchestrator()
	if err != nil {
		return nil, fmt.Errorf("Orchestratorの構築に失敗しました: %w", err)
	}
	pub, err := manager.BuildPublishRunner()
	if err != nil {
		return nil, fmt.Errorf("PublishRunnerの構築に失敗しました: %w", err)
	}

	return &AppContext{
		Config:       cfg,
		Options:      cfg.Options,
		Settings:     store,
		Events:       events,
		Manager:      manager,
		Orchestrator: orch,
		Publisher:    pub,
	}, nil
}

package workflow

import (
	"fmt"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/config"
	"github.com/shouni/go-shorts-kit/pkg/eventlog"
	"github.com/shouni/go-shorts-kit/pkg/prompts"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
	"github.com/shouni/go-shorts-kit/pkg/remote"
)

// ManagerArgs は Manager の初期化に必要な依存関係です。
type ManagerArgs struct {
	Config config.Config
	// HTTPClient は生成された動画のダウンロードに使います。
	HTTPClient blob.Fetcher
	// Overrides は設定ファイルに保存された API キーの上書きです。nil なら環境変数だけを使います。
	Overrides remote.OverrideSource
	// Events は記録先のイベントログです。nil なら新しく作ります。
	Events *eventlog.Log
	// Writer はエクスポートとデザイン画像の保存先です。
	Writer publisher.Writer
	// Backend は nil なら Gemini API を使います。
	Backend      remote.Backend
	Clock        remote.Clock
	ScriptPrompt prompts.ScriptPrompt
	MediaPrompt  prompts.MediaPrompt
}

// Manager は、ワークフローの各工程を担う Runner 群を構築・管理します。
type Manager struct {
	cfg          config.Config
	store        *blob.Store
	events       *eventlog.Log
	writer       publisher.Writer
	client       *remote.Client
	scriptPrompt prompts.ScriptPrompt
	mediaPrompt  prompts.MediaPrompt
}

// New は、設定を基に新しい Manager を初期化します。
// API キーは呼び出しのたびに解決するため、ここでは未設定でも失敗しません。
func New(args ManagerArgs) (*Manager, error) {
	if args.HTTPClient == nil {
		return nil, fmt.Errorf("httpClient は必須です")
	}
	if args.Writer == nil {
		return nil, fmt.Errorf("writer は必須です")
	}

	events := args.Events
	if events == nil {
		events = eventlog.New(nil)
	}
	backend := args.Backend
	if backend == nil {
		backend = remote.NewGeminiBackend()
	}

	sPrompt, err := initializeScriptPrompt(args.ScriptPrompt)
	if err != nil {
		return nil, err
	}
	mPrompt := initializeMediaPrompt(args.MediaPrompt, args.Config.StyleSuffix)

	store := blob.NewStore(args.HTTPClient)
	client := remote.NewClient(remote.ClientArgs{
		Config:      args.Config,
		Backend:     backend,
		Credentials: remote.NewCredentialResolver(args.Overrides, args.Config.GeminiAPIKey),
		Fetcher:     args.HTTPClient,
		Store:       store,
		Events:      events,
		Clock:       args.Clock,
	})

	return &Manager{
		cfg:          args.Config,
		store:        store,
		events:       events,
		writer:       args.Writer,
		client:       client,
		scriptPrompt: sPrompt,
		mediaPrompt:  mPrompt,
	}, nil
}

// Store は生成された動画を保持するストアです。
func (m *Manager) Store() *blob.Store { return m.store }

// Events は共有のイベントログです。
func (m *Manager) Events() *eventlog.Log { return m.events }

// Config は Manager の設定です。
func (m *Manager) Config() config.Config { return m.cfg }

// initializeScriptPrompt は ScriptPrompt ビルダーを初期化します。
// 引数として既存のビルダーが渡された場合はそれを返し、nil の場合は新規作成します。
func initializeScriptPrompt(scriptPrompt prompts.ScriptPrompt) (prompts.ScriptPrompt, error) {
	if scriptPrompt != nil {
		return scriptPrompt, nil
	}

	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		return nil, fmt.Errorf("TextPromptBuilder の新規作成に失敗しました: %w", err)
	}
	return pb, nil
}

// initializeMediaPrompt は MediaPromptBuilder を初期化します。
func initializeMediaPrompt(mediaPrompt prompts.MediaPrompt, styleSuffix string) prompts.MediaPrompt {
	if mediaPrompt != nil {
		return mediaPrompt
	}
	return prompts.NewMediaPromptBuilder(styleSuffix)
}

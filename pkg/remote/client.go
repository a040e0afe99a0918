package remote

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/config"
	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/eventlog"
)

const videoMimeType = "video/mp4"

// ClientArgs は Client の依存関係なのだ。
type ClientArgs struct {
	Config      config.Config
	Backend     Backend
	Credentials *CredentialResolver
	// Fetcher は生成された動画のロケーターをダウンロードするのだ。
	Fetcher blob.Fetcher
	Store   *blob.Store
	Events  *eventlog.Log
	// Clock が nil なら RealClock を使うのだ。
	Clock Clock
}

// Client はリモート生成サービスへの呼び出しをまとめるのだ。
// 認証情報は呼び出しのたびに解決し、見つからなければ通信せずに失敗するのだ。
type Client struct {
	cfg     config.Config
	backend Backend
	creds   *CredentialResolver
	fetcher blob.Fetcher
	store   *blob.Store
	events  *eventlog.Log
	clock   Clock
}

// NewClient は Client を作るのだ。
func NewClient(args ClientArgs) *Client {
	clock := args.Clock
	if clock == nil {
		clock = RealClock
	}
	creds := args.Credentials
	if creds == nil {
		creds = NewCredentialResolver(nil, args.Config.GeminiAPIKey)
	}
	return &Client{
		cfg:     args.Config,
		backend: args.Backend,
		creds:   creds,
		fetcher: args.Fetcher,
		store:   args.Store,
		events:  args.Events,
		clock:   clock,
	}
}

// GenerateScript はプロンプトから台本のシーン列を生成するのだ。
func (c *Client) GenerateScript(ctx context.Context, prompt string) ([]domain.ScriptScene, error) {
	apiKey, err := c.creds.Resolve()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	slog.Info("Calling text model", "model", c.cfg.GeminiModel)
	text, err := c.backend.GenerateText(ctx, apiKey, c.cfg.GeminiModel, prompt)
	if err != nil {
		return nil, err
	}
	return parseScript(text)
}

// GenerateImage はプロンプトから縦型の画像を1枚生成するのだ。
func (c *Client) GenerateImage(ctx context.Context, prompt string) (*imgdom.ImageResponse, error) {
	apiKey, err := c.creds.Resolve()
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	slog.Info("Calling image model", "model", c.cfg.ImageModel)
	resp, err := c.backend.GenerateImage(ctx, apiKey, c.cfg.ImageModel, prompt, c.cfg.AspectRatio)
	if err != nil {
		return nil, err
	}
	if resp == nil || len(resp.Data) == 0 {
		return nil, ErrNoContent
	}
	if resp.MimeType == "" {
		resp.MimeType = "image/png"
	}
	return resp, nil
}

// GenerateVideo は動画生成の操作を開始し、完了までポーリングしてから
// 動画をダウンロードし、ストアのハンドルを返すのだ。
// details は進捗ログに添える情報なのだ。
func (c *Client) GenerateVideo(ctx context.Context, prompt string, details map[string]any) (string, error) {
	apiKey, err := c.creds.Resolve()
	if err != nil {
		return "", err
	}

	op, err := c.backend.SubmitVideo(ctx, apiKey, VideoRequest{
		Model:       c.cfg.VideoModel,
		Prompt:      prompt,
		AspectRatio: c.cfg.AspectRatio,
		Resolution:  c.cfg.VideoResolution,
	})
	if err != nil {
		return "", err
	}
	if op == nil {
		return "", ErrNoContent
	}
	c.record(eventlog.LevelInfo, "Video operation started", withDetails(details, "operation", op.Name))

	attempt := 0
	op, err = PollUntil(ctx, c.clock, c.cfg.PollInterval, op,
		func(ctx context.Context, cur *Operation) (*Operation, error) {
			attempt++
			next, err := c.backend.GetVideoOperation(ctx, apiKey, cur)
			if err != nil {
				return nil, err
			}
			if next == nil {
				return nil, &TransportError{Op: "操作状態の取得", Err: ErrNoContent}
			}
			if !next.Done {
				c.record(eventlog.LevelInfo, "Video operation still running", withDetails(details, "attempt", attempt))
			}
			return next, nil
		},
		func(cur *Operation) bool { return cur.Done },
	)
	if err != nil {
		return "", err
	}

	if op.Error != nil {
		return "", newOperationError(op.Error)
	}
	if strings.TrimSpace(op.VideoURI) == "" {
		if len(op.FilteredReasons) > 0 {
			return "", fmt.Errorf("%w: %s", ErrNoVideoOutput, strings.Join(op.FilteredReasons, "; "))
		}
		return "", ErrNoVideoOutput
	}

	return c.download(ctx, op.VideoURI, apiKey)
}

// download はロケーターに認証情報を付けて取得し、ストアに保存するのだ。
func (c *Client) download(ctx context.Context, locator, apiKey string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("%w: 動画のロケーターが不正です: %v", ErrMalformedResponse, err)
	}
	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()

	data, err := c.fetcher.FetchBytes(ctx, u.String())
	if err != nil {
		return "", &TransportError{Op: "動画のダウンロード", Err: err}
	}
	if len(data) == 0 {
		return "", ErrNoContent
	}
	return c.store.Put(data, videoMimeType), nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.cfg.RequestTimeout)
}

func (c *Client) record(level eventlog.Level, message string, details map[string]any) {
	if c.events == nil {
		return
	}
	c.events.Record(level, message, details)
}

func withDetails(base map[string]any, key string, value any) map[string]any {
	out := make(map[string]any, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	out[key] = value
	return out
}

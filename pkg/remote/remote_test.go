package remote

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/config"
	"github.com/shouni/go-shorts-kit/pkg/eventlog"
)

// fakeClock は待たずにすぐ発火し、呼ばれた回数を数えるのだ。
type fakeClock struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type fakeBackend struct {
	text      string
	textErr   error
	image     *imgdom.ImageResponse
	submitted []VideoRequest
	keys      []string
	// polls は GetVideoOperation が順に返す状態なのだ。
	polls    []*Operation
	getCalls int
}

func (b *fakeBackend) GenerateText(_ context.Context, apiKey, _, _ string) (string, error) {
	b.keys = append(b.keys, apiKey)
	return b.text, b.textErr
}

func (b *fakeBackend) GenerateImage(_ context.Context, apiKey, _, _, _ string) (*imgdom.ImageResponse, error) {
	b.keys = append(b.keys, apiKey)
	return b.image, nil
}

func (b *fakeBackend) SubmitVideo(_ context.Context, apiKey string, req VideoRequest) (*Operation, error) {
	b.keys = append(b.keys, apiKey)
	b.submitted = append(b.submitted, req)
	return &Operation{Name: "operations/1"}, nil
}

func (b *fakeBackend) GetVideoOperation(_ context.Context, _ string, _ *Operation) (*Operation, error) {
	op := b.polls[b.getCalls]
	b.getCalls++
	return op, nil
}

type fakeFetcher struct {
	urls []string
	data []byte
	err  error
}

func (f *fakeFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.data, f.err
}

type staticOverride string

func (s staticOverride) APIKeyOverride() (string, error) { return string(s), nil }

func newTestClient(b Backend, f *fakeFetcher, clock Clock, creds *CredentialResolver) (*Client, *blob.Store, *eventlog.Log) {
	cfg := config.NewConfig("env-key")
	store := blob.NewStore(f)
	events := eventlog.New(nil)
	if creds == nil {
		creds = NewCredentialResolver(nil, cfg.GeminiAPIKey)
	}
	return NewClient(ClientArgs{
		Config:      cfg,
		Backend:     b,
		Credentials: creds,
		Fetcher:     f,
		Store:       store,
		Events:      events,
		Clock:       clock,
	}), store, events
}

func TestPollUntil(t *testing.T) {
	t.Run("最初から完了していれば待たないのだ", func(t *testing.T) {
		clock := &fakeClock{}
		got, err := PollUntil(context.Background(), clock, time.Second, 5,
			func(context.Context, int) (int, error) { t.Fatal("fetch が呼ばれたのだ"); return 0, nil },
			func(n int) bool { return n >= 5 })
		if err != nil || got != 5 || len(clock.waits) != 0 {
			t.Fatalf("got=%d err=%v waits=%d", got, err, len(clock.waits))
		}
	})

	t.Run("完了するまで間隔ごとに取り直すのだ", func(t *testing.T) {
		clock := &fakeClock{}
		got, err := PollUntil(context.Background(), clock, 5*time.Second, 0,
			func(_ context.Context, n int) (int, error) { return n + 1, nil },
			func(n int) bool { return n == 3 })
		if err != nil || got != 3 {
			t.Fatalf("got=%d err=%v", got, err)
		}
		if len(clock.waits) != 3 || clock.waits[0] != 5*time.Second {
			t.Errorf("待機が想定と違うのだ: %v", clock.waits)
		}
	})

	t.Run("取得エラーで止まるのだ", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := PollUntil(context.Background(), &fakeClock{}, time.Second, 0,
			func(context.Context, int) (int, error) { return 0, boom },
			func(int) bool { return false })
		if !errors.Is(err, boom) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("キャンセルで止まるのだ", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := PollUntil(ctx, RealClock, time.Hour, 0,
			func(context.Context, int) (int, error) { return 0, nil },
			func(int) bool { return false })
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("err=%v", err)
		}
	})
}

func TestClient_GenerateVideo(t *testing.T) {
	t.Run("3回未完了の後にエラー完了ならダウンロードしないのだ", func(t *testing.T) {
		b := &fakeBackend{polls: []*Operation{
			{Name: "operations/1"},
			{Name: "operations/1"},
			{Name: "operations/1"},
			{Name: "operations/1", Done: true, Error: map[string]any{"code": 3, "message": "prompt blocked"}},
		}}
		f := &fakeFetcher{data: []byte("mp4")}
		clock := &fakeClock{}
		c, store, _ := newTestClient(b, f, clock, nil)

		_, err := c.GenerateVideo(context.Background(), "p", nil)
		var opErr *OperationError
		if !errors.As(err, &opErr) || err.Error() != "prompt blocked" {
			t.Fatalf("操作エラーがそのまま返っていないのだ: %v", err)
		}
		if len(f.urls) != 0 || store.Len() != 0 {
			t.Error("エラー後にダウンロードしているのだ")
		}
		if len(clock.waits) != 4 {
			t.Errorf("ポーリング回数が違うのだ: %d", len(clock.waits))
		}
		if Kind(err) != KindOperation {
			t.Errorf("kind=%s", Kind(err))
		}
	})

	t.Run("メッセージが無ければペイロードを文字列化するのだ", func(t *testing.T) {
		b := &fakeBackend{polls: []*Operation{{Done: true, Error: map[string]any{"code": 13}}}}
		c, _, _ := newTestClient(b, &fakeFetcher{}, &fakeClock{}, nil)
		_, err := c.GenerateVideo(context.Background(), "p", nil)
		if err == nil || !strings.Contains(err.Error(), `"code":13`) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("出力が無ければ安全フィルタの可能性として報告するのだ", func(t *testing.T) {
		b := &fakeBackend{polls: []*Operation{{Done: true}}}
		f := &fakeFetcher{}
		c, _, _ := newTestClient(b, f, &fakeClock{}, nil)
		_, err := c.GenerateVideo(context.Background(), "p", nil)
		if !errors.Is(err, ErrNoVideoOutput) || Kind(err) != KindRejected {
			t.Fatalf("err=%v", err)
		}
		if len(f.urls) != 0 {
			t.Error("ダウンロードしているのだ")
		}
	})

	t.Run("成功すればキー付きで取得してハンドルを返すのだ", func(t *testing.T) {
		b := &fakeBackend{polls: []*Operation{{Done: true, VideoURI: "https://example.com/v.mp4?alt=media"}}}
		f := &fakeFetcher{data: []byte("mp4-bytes")}
		c, store, events := newTestClient(b, f, &fakeClock{}, nil)

		handle, err := c.GenerateVideo(context.Background(), "prompt", map[string]any{"scene": 1})
		if err != nil {
			t.Fatal(err)
		}
		if len(f.urls) != 1 || !strings.Contains(f.urls[0], "key=env-key") || !strings.Contains(f.urls[0], "alt=media") {
			t.Errorf("取得 URL が違うのだ: %v", f.urls)
		}
		obj, ok := store.Get(handle)
		if !ok || string(obj.Data) != "mp4-bytes" || obj.MimeType != "video/mp4" {
			t.Errorf("ストアに保存されていないのだ: %+v", obj)
		}
		req := b.submitted[0]
		if req.AspectRatio != "9:16" || req.Resolution != "720p" || req.Prompt != "prompt" {
			t.Errorf("リクエストが違うのだ: %+v", req)
		}
		if len(events.Entries()) == 0 {
			t.Error("進捗が記録されていないのだ")
		}
	})

	t.Run("ダウンロード失敗は通信エラーなのだ", func(t *testing.T) {
		b := &fakeBackend{polls: []*Operation{{Done: true, VideoURI: "https://example.com/v.mp4"}}}
		f := &fakeFetcher{err: errors.New("403")}
		c, _, _ := newTestClient(b, f, &fakeClock{}, nil)
		_, err := c.GenerateVideo(context.Background(), "p", nil)
		if Kind(err) != KindTransport {
			t.Fatalf("err=%v kind=%s", err, Kind(err))
		}
	})
}

func TestClient_Credentials(t *testing.T) {
	t.Run("認証情報が無ければ通信せずに失敗するのだ", func(t *testing.T) {
		b := &fakeBackend{}
		c, _, _ := newTestClient(b, &fakeFetcher{}, &fakeClock{}, NewCredentialResolver(staticOverride(""), " "))
		if _, err := c.GenerateScript(context.Background(), "p"); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("err=%v", err)
		}
		if _, err := c.GenerateVideo(context.Background(), "p", nil); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("err=%v", err)
		}
		if len(b.keys) != 0 {
			t.Error("通信しているのだ")
		}
	})

	t.Run("上書きが環境変数より優先されるのだ", func(t *testing.T) {
		b := &fakeBackend{text: `[{"scene_number":1,"description":"x"}]`}
		c, _, _ := newTestClient(b, &fakeFetcher{}, &fakeClock{}, NewCredentialResolver(staticOverride("override"), "env"))
		if _, err := c.GenerateScript(context.Background(), "p"); err != nil {
			t.Fatal(err)
		}
		if b.keys[0] != "override" {
			t.Errorf("key=%s", b.keys[0])
		}
	})
}

func TestClient_GenerateScript(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		wantErr error
		want    int
	}{
		{name: "コードブロック", text: "Here you go:\n```json\n[{\"scene_number\":1,\"description\":\"a\"},{\"scene_number\":2,\"description\":\"b\"}]\n```", want: 2},
		{name: "前後に文章", text: "Sure! [{\"scene_number\":1,\"description\":\"a\"}] Enjoy.", want: 1},
		{name: "オブジェクトで包まれている", text: `{"scenes":[{"scene_number":1,"description":"a"}]}`, want: 1},
		{name: "空の応答", text: "  ", wantErr: ErrNoContent},
		{name: "空配列", text: "[]", wantErr: ErrNoContent},
		{name: "壊れた JSON", text: "[{\"scene_number\":", wantErr: ErrMalformedResponse},
		{name: "必須項目の欠落", text: `[{"scene_number":1}]`, wantErr: ErrMalformedResponse},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _, _ := newTestClient(&fakeBackend{text: tc.text}, &fakeFetcher{}, &fakeClock{}, nil)
			scenes, err := c.GenerateScript(context.Background(), "p")
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err=%v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil || len(scenes) != tc.want {
				t.Fatalf("scenes=%d err=%v", len(scenes), err)
			}
		})
	}
}

func TestClient_GenerateImage(t *testing.T) {
	t.Run("空の画像は ErrNoContent なのだ", func(t *testing.T) {
		c, _, _ := newTestClient(&fakeBackend{image: &imgdom.ImageResponse{}}, &fakeFetcher{}, &fakeClock{}, nil)
		if _, err := c.GenerateImage(context.Background(), "p"); !errors.Is(err, ErrNoContent) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("MIME タイプが無ければ PNG とみなすのだ", func(t *testing.T) {
		c, _, _ := newTestClient(&fakeBackend{image: &imgdom.ImageResponse{Data: []byte{1}}}, &fakeFetcher{}, &fakeClock{}, nil)
		img, err := c.GenerateImage(context.Background(), "p")
		if err != nil || img.MimeType != "image/png" {
			t.Fatalf("img=%+v err=%v", img, err)
		}
	})
}

func TestDetails(t *testing.T) {
	err := &TransportError{Op: "x", Err: errors.New("dial")}
	d := Details(err, map[string]any{"scene": 2})
	if d["kind"] != KindTransport || d["scene"] != 2 || d["error"] == "" {
		t.Fatalf("details=%v", d)
	}
}

package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubFetcher struct {
	urls []string
	data []byte
	err  error
}

func (f *stubFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return f.data, f.err
}

func TestStore_PutGetRelease(t *testing.T) {
	s := NewStore(nil)
	h := s.Put([]byte("mp4"), "video/mp4")

	if !strings.HasPrefix(h, Scheme) {
		t.Fatalf("ハンドルに接頭辞が無いのだ: %s", h)
	}
	obj, ok := s.Get(h)
	if !ok || string(obj.Data) != "mp4" || obj.MimeType != "video/mp4" {
		t.Fatalf("保存した内容が取り出せないのだ: %+v", obj)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d", s.Len())
	}

	s.Release(h)
	if _, ok := s.Get(h); ok {
		t.Error("解放したのに残っているのだ")
	}
	s.Release("https://example.com/x.mp4")
}

func TestStore_Open(t *testing.T) {
	f := &stubFetcher{data: []byte("remote")}
	s := NewStore(f)
	ctx := context.Background()

	t.Run("blob ハンドル", func(t *testing.T) {
		h := s.Put([]byte("local"), "video/mp4")
		obj, err := s.Open(ctx, h)
		if err != nil || string(obj.Data) != "local" {
			t.Fatalf("obj=%+v err=%v", obj, err)
		}
	})

	t.Run("存在しないハンドル", func(t *testing.T) {
		if _, err := s.Open(ctx, "blob:missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("ErrNotFound を期待したのだ: %v", err)
		}
	})

	t.Run("data URL", func(t *testing.T) {
		obj, err := s.Open(ctx, DataURL([]byte{0x89, 'P', 'N', 'G'}, "image/png"))
		if err != nil || obj.MimeType != "image/png" || len(obj.Data) != 4 {
			t.Fatalf("obj=%+v err=%v", obj, err)
		}
	})

	t.Run("http URL は fetcher で取得するのだ", func(t *testing.T) {
		obj, err := s.Open(ctx, "https://example.com/v.mp4")
		if err != nil || string(obj.Data) != "remote" {
			t.Fatalf("obj=%+v err=%v", obj, err)
		}
		if len(f.urls) != 1 {
			t.Errorf("fetcher が呼ばれていないのだ")
		}
	})

	t.Run("未知の参照", func(t *testing.T) {
		if _, err := s.Open(ctx, "file:///tmp/x"); !errors.Is(err, ErrUnsupportedReference) {
			t.Fatalf("ErrUnsupportedReference を期待したのだ: %v", err)
		}
	})
}

func TestDecodeDataURL_Invalid(t *testing.T) {
	for _, ref := range []string{"data:image/png;base64", "data:text/plain,hello", "data:image/png;base64,!!!"} {
		if _, err := DecodeDataURL(ref); err == nil {
			t.Errorf("%q でエラーにならないのだ", ref)
		}
	}
}

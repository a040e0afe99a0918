package blob

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const (
	// Scheme はストアが払い出すハンドルの接頭辞なのだ。
	Scheme = "blob:"
	// DataScheme はインライン画像の data URL の接頭辞なのだ。
	DataScheme = "data:"
)

var (
	// ErrNotFound はハンドルに対応するデータが無い場合のエラーなのだ。
	ErrNotFound = errors.New("blob not found")
	// ErrUnsupportedReference は解決方法の分からない参照文字列のエラーなのだ。
	ErrUnsupportedReference = errors.New("unsupported reference")
)

// Fetcher はネットワーク上のロケーターからバイト列を取得するのだ。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Object は保存されたバイト列と MIME タイプなのだ。
type Object struct {
	Data     []byte
	MimeType string
}

// Store は生成された動画のバイト列をプロセス内で保持し、
// 再生やエクスポートから参照できるハンドルを払い出すのだ。
type Store struct {
	cache   *cache.Cache
	fetcher Fetcher
}

// NewStore は期限切れの無いストアを作るのだ。fetcher は http(s) 参照の解決に使うのだ。
func NewStore(fetcher Fetcher) *Store {
	return &Store{
		cache:   cache.New(cache.NoExpiration, 0),
		fetcher: fetcher,
	}
}

// Put はバイト列を保存して新しいハンドルを返すのだ。
func (s *Store) Put(data []byte, mimeType string) string {
	id := uuid.NewString()
	s.cache.Set(id, Object{Data: data, MimeType: mimeType}, cache.NoExpiration)
	return Scheme + id
}

// Get はハンドルに対応するオブジェクトを返すのだ。
func (s *Store) Get(handle string) (Object, bool) {
	v, ok := s.cache.Get(ID(handle))
	if !ok {
		return Object{}, false
	}
	obj, ok := v.(Object)
	return obj, ok
}

// Release はハンドルのデータを解放するのだ。ストア外の参照は無視するのだ。
func (s *Store) Release(handle string) {
	if !strings.HasPrefix(handle, Scheme) {
		return
	}
	s.cache.Delete(ID(handle))
}

// Len は保持しているオブジェクトの数なのだ。
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

// Open は参照文字列 (blob ハンドル、data URL、http(s) URL) を解決してバイト列を返すのだ。
func (s *Store) Open(ctx context.Context, ref string) (Object, error) {
	switch {
	case strings.HasPrefix(ref, Scheme):
		obj, ok := s.Get(ref)
		if !ok {
			return Object{}, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return obj, nil
	case strings.HasPrefix(ref, DataScheme):
		return DecodeDataURL(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		if s.fetcher == nil {
			return Object{}, fmt.Errorf("%w: fetcher が設定されていません: %s", ErrUnsupportedReference, ref)
		}
		data, err := s.fetcher.FetchBytes(ctx, ref)
		if err != nil {
			return Object{}, fmt.Errorf("参照先の取得に失敗しました: %w", err)
		}
		return Object{Data: data, MimeType: "video/mp4"}, nil
	default:
		return Object{}, fmt.Errorf("%w: %q", ErrUnsupportedReference, ref)
	}
}

// ID はハンドルから接頭辞を取り除いたキーを返すのだ。
func ID(handle string) string {
	return strings.TrimPrefix(handle, Scheme)
}

// DataURL はバイト列を base64 の data URL に変換するのだ。
func DataURL(data []byte, mimeType string) string {
	return DataScheme + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL は base64 の data URL をデコードするのだ。
func DecodeDataURL(ref string) (Object, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, DataScheme), ",")
	if !ok {
		return Object{}, fmt.Errorf("%w: data URL の形式が不正です", ErrUnsupportedReference)
	}
	mimeType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return Object{}, fmt.Errorf("%w: base64 以外の data URL には対応していません", ErrUnsupportedReference)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Object{}, fmt.Errorf("data URL のデコードに失敗しました: %w", err)
	}
	return Object{Data: data, MimeType: mimeType}, nil
}

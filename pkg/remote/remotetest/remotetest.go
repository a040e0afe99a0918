// Package remotetest は、リモート生成サービスを使わずにワークフロー全体を動かすためのテスト用実装を提供します。
package remotetest

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/go-shorts-kit/pkg/remote"
)

// RobotScript は3シーンの台本なのだ。2番目のシーンの説明には "trips" が含まれるのだ。
const RobotScript = "```json\n[" +
	`{"scene_number":1,"duration_seconds":4,"description":"The robot wakes up","character":{"name":"Robo","pose":"sitting","expression":"sleepy","actions":["yawn"]},"background":"garage","audio":"hum","dialogue":""},` +
	`{"scene_number":2,"duration_seconds":4,"description":"The robot trips","character":{"name":"Robo","pose":"falling","expression":"surprised","actions":["trip"]},"background":"garage","audio":"crash","dialogue":"Oops"},` +
	`{"scene_number":3,"duration_seconds":4,"description":"The robot dances","character":{"name":"Robo","pose":"arms up","expression":"joyful","actions":["spin"]},"background":"stage","audio":"music","dialogue":"Yay"}` +
	"]\n```"

// Backend はメモリ上で完結する remote.Backend なのだ。
// 動画のプロンプトに Block のいずれかが含まれていると、出力の無い完了操作を返すのだ。
type Backend struct {
	Script string
	Block  []string

	mu      sync.Mutex
	keys    []string
	prompts []string
}

// NewBackend は RobotScript を返し、"trips" を含む動画だけ失敗させる Backend を作るのだ。
func NewBackend() *Backend {
	return &Backend{Script: RobotScript, Block: []string{"trips"}}
}

func (b *Backend) record(apiKey, prompt string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.keys = append(b.keys, apiKey)
	b.prompts = append(b.prompts, prompt)
}

// Keys は各呼び出しで使われた API キーなのだ。
func (b *Backend) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keys...)
}

// Calls は呼び出し回数なのだ。
func (b *Backend) Calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.keys)
}

func (b *Backend) GenerateText(_ context.Context, apiKey, _, prompt string) (string, error) {
	b.record(apiKey, prompt)
	return b.Script, nil
}

func (b *Backend) GenerateImage(_ context.Context, apiKey, _, prompt, _ string) (*imgdom.ImageResponse, error) {
	b.record(apiKey, prompt)
	return &imgdom.ImageResponse{Data: []byte{0x89, 0x50, 0x4e, 0x47}, MimeType: "image/png"}, nil
}

func (b *Backend) SubmitVideo(_ context.Context, apiKey string, req remote.VideoRequest) (*remote.Operation, error) {
	b.record(apiKey, req.Prompt)
	name := "operations/ok"
	for _, word := range b.Block {
		if strings.Contains(req.Prompt, word) {
			name = "operations/blocked"
		}
	}
	return &remote.Operation{Name: name}, nil
}

func (b *Backend) GetVideoOperation(_ context.Context, _ string, op *remote.Operation) (*remote.Operation, error) {
	if op.Name == "operations/blocked" {
		return &remote.Operation{Name: op.Name, Done: true}, nil
	}
	return &remote.Operation{Name: op.Name, Done: true, VideoURI: "https://example.com/files/video.mp4"}, nil
}

// Fetcher は URL をそのまま中身にした偽の MP4 を返すのだ。
type Fetcher struct{}

func (Fetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	return []byte("mp4:" + url), nil
}

// Clock は待たずに即座に発火する remote.Clock なのだ。
type Clock struct{}

func (Clock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// Writer はメモリ上に書き込む publisher.Writer なのだ。
type Writer struct {
	mu    sync.Mutex
	files map[string][]byte
}

// NewWriter は空の Writer を作るのだ。
func NewWriter() *Writer {
	return &Writer{files: map[string][]byte{}}
}

func (w *Writer) Write(ctx context.Context, path string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[normalize(path)] = buf.Bytes()
	return nil
}

// File は path に書き込まれた内容を返すのだ。
func (w *Writer) File(path string) ([]byte, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	data, ok := w.files[normalize(path)]
	return data, ok
}

// Paths は書き込まれたパスを辞書順で返すのだ。
func (w *Writer) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	paths := make([]string, 0, len(w.files))
	for p := range w.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func normalize(path string) string {
	if strings.Contains(path, "://") {
		return path
	}
	return filepath.Clean(path)
}

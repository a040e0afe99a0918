package builder

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"

	"github.com/shouni/go-shorts-kit/pkg/publisher"
)

var _ publisher.Writer = (remoteio.OutputWriter)(nil)

// remoteWriter は最初の書き込みで GCS クライアントファクトリを作り、その OutputWriter に委譲するのだ。
// エクスポートしないコマンドは GCS の認証情報が無くても動くのだ。
type remoteWriter struct {
	newWriter func(ctx context.Context) (publisher.Writer, error)

	once   sync.Once
	writer publisher.Writer
	err    error
}

func newRemoteWriter() *remoteWriter {
	return &remoteWriter{newWriter: newOutputWriter}
}

// newOutputWriter は gcsfactory から OutputWriter を作るのだ。
func newOutputWriter(ctx context.Context) (publisher.Writer, error) {
	factory, err := gcsfactory.NewGCSClientFactory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client factory: %w", err)
	}
	writer, err := factory.NewOutputWriter()
	if err != nil {
		return nil, fmt.Errorf("failed to create output writer: %w", err)
	}
	return writer, nil
}

// Write は path がローカルでも gs:// でも同じように書き込むのだ。
func (w *remoteWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	w.once.Do(func() {
		w.writer, w.err = w.newWriter(context.WithoutCancel(ctx))
	})
	if w.err != nil {
		return fmt.Errorf("出力先の初期化に失敗しました: %w", w.err)
	}
	return w.writer.Write(ctx, path, r, contentType)
}

package publisher

import (
	"context"
	"io"
)

// Writer はデータを出力先に保存するためのインターフェースです。
// remoteio.OutputWriter はこれを満たすので、ローカルにも gs:// にも書き出せます。
type Writer interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

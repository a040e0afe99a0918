package remote

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrMissingCredential は API キーがどこにも設定されていない場合のエラーなのだ。
	// ネットワーク呼び出しの前に返すのだ。
	ErrMissingCredential = errors.New("Gemini API キーが設定されていません。設定 (settings) で API キーを登録してほしいのだ")
	// ErrNoContent は応答は返ったが中身が空だった場合のエラーなのだ。
	ErrNoContent = errors.New("no content returned")
	// ErrMalformedResponse は応答の形式が期待と違う場合のエラーなのだ。
	ErrMalformedResponse = errors.New("malformed response")
	// ErrNoVideoOutput は操作が完了したのに動画が1本も無い場合のエラーなのだ。
	ErrNoVideoOutput = errors.New("operation completed but produced no video output (likely content-safety rejection)")
)

// 記録用の詳細に入れるエラー分類なのだ。
const (
	KindConfiguration = "configuration"
	KindTransport     = "transport"
	KindNoContent     = "no_content"
	KindMalformed     = "malformed"
	KindOperation     = "operation"
	KindRejected      = "rejected"
	KindUnknown       = "unknown"
)

// TransportError はネットワークやクライアント層の失敗なのだ。
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s に失敗しました: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// OperationError は長時間実行操作が完了時に報告したエラーなのだ。
// メッセージがあればそのまま、無ければペイロードをシリアライズして返すのだ。
type OperationError struct {
	Message string
	Payload map[string]any
}

func (e *OperationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Sprintf("%v", e.Payload)
	}
	return string(data)
}

// newOperationError は操作の error ペイロードから OperationError を作るのだ。
func newOperationError(payload map[string]any) *OperationError {
	msg, _ := payload["message"].(string)
	return &OperationError{Message: msg, Payload: payload}
}

// Kind はエラーを記録用の分類に変換するのだ。
// 通信の失敗と、完了したが使える出力が無かった失敗を区別するのだ。
func Kind(err error) string {
	var transportErr *TransportError
	var opErr *OperationError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return KindConfiguration
	case errors.Is(err, ErrNoVideoOutput):
		return KindRejected
	case errors.As(err, &opErr):
		return KindOperation
	case errors.Is(err, ErrNoContent):
		return KindNoContent
	case errors.Is(err, ErrMalformedResponse):
		return KindMalformed
	case errors.As(err, &transportErr):
		return KindTransport
	default:
		return KindUnknown
	}
}

// Details はエラーをイベントログの詳細ペイロードに変換するのだ。
func Details(err error, extra map[string]any) map[string]any {
	details := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		details[k] = v
	}
	if err == nil {
		return details
	}
	details["error"] = err.Error()
	details["kind"] = Kind(err)
	var opErr *OperationError
	if errors.As(err, &opErr) && opErr.Payload != nil {
		details["operation_error"] = opErr.Payload
	}
	return details
}

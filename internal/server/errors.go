package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/orchestrator"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
	"github.com/shouni/go-shorts-kit/pkg/remote"
)

// credentialRemedy は API キーが無いときに画面に出す対処方法なのだ。
const credentialRemedy = "設定画面で Gemini API キーを登録するか、環境変数 GEMINI_API_KEY を設定してください"

var errSettingsUnavailable = errors.New("設定ファイルの場所が分からないため、設定を保存できません")

// errorResponse は API のエラー応答なのだ。
type errorResponse struct {
	Error  string `json:"error"`
	Kind   string `json:"kind,omitempty"`
	Remedy string `json:"remedy,omitempty"`
}

// statusFor はエラーを HTTP ステータスに対応付けるのだ。
func statusFor(err error) int {
	switch {
	case errors.Is(err, remote.ErrMissingCredential):
		return http.StatusPreconditionFailed
	case errors.Is(err, orchestrator.ErrNoProject), errors.Is(err, blob.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrSceneIndex),
		errors.Is(err, orchestrator.ErrEmptyTopic),
		errors.Is(err, orchestrator.ErrEmptyCharacter):
		return http.StatusBadRequest
	case errors.Is(err, orchestrator.ErrSceneBusy), errors.Is(err, orchestrator.ErrProjectChanged):
		return http.StatusConflict
	case errors.Is(err, publisher.ErrPickerUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, orchestrator.ErrStopped), errors.Is(err, errSettingsUnavailable):
		return http.StatusServiceUnavailable
	}
	switch remote.Kind(err) {
	case remote.KindTransport, remote.KindNoContent, remote.KindMalformed, remote.KindOperation, remote.KindRejected:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError はエラーを JSON で返すのだ。
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}
	if kind := remote.Kind(err); kind != remote.KindUnknown {
		resp.Kind = kind
	}
	if errors.Is(err, remote.ErrMissingCredential) {
		resp.Remedy = credentialRemedy
	}
	if status >= http.StatusInternalServerError {
		slog.Error("API request failed", "path", c.FullPath(), "status", status, "error", err)
	}
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-shorts-kit/pkg/settings"
)

// 認証情報の出どころなのだ。
const (
	keySourceSettings    = "settings"
	keySourceEnvironment = "environment"
	keySourceNone        = "none"
)

// settingsResponse は設定画面に返す内容なのだ。API キーは末尾以外を伏せるのだ。
type settingsResponse struct {
	APIKey          string `json:"apiKey"`
	KeySource       string `json:"keySource"`
	ShowDiagnostics bool   `json:"showDiagnostics"`
	Path            string `json:"path,omitempty"`
}

// settingsRequest は nil のフィールドを変更しないのだ。apiKey に空文字を送ると上書きを削除するのだ。
type settingsRequest struct {
	APIKey          *string `json:"apiKey"`
	ShowDiagnostics *bool   `json:"showDiagnostics"`
}

type diagnosticsResponse struct {
	KeySource   string `json:"keySource"`
	Entries     int    `json:"entries"`
	StoredBlobs int    `json:"storedBlobs"`
	HasProject  bool   `json:"hasProject"`
	TextModel   string `json:"textModel"`
	ImageModel  string `json:"imageModel"`
	VideoModel  string `json:"videoModel"`
}

func (s *Server) getSettings(c *gin.Context) {
	resp, err := s.currentSettings()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) updateSettings(c *gin.Context) {
	store := s.app.Settings
	if store == nil {
		respondError(c, errSettingsUnavailable)
		return
	}
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.APIKey != nil {
		if err := store.SetAPIKey(*req.APIKey); err != nil {
			respondError(c, err)
			return
		}
		if *req.APIKey == "" {
			s.app.Events.Info("API key override cleared", nil)
		} else {
			s.app.Events.Info("API key override saved", nil)
		}
	}
	if req.ShowDiagnostics != nil {
		if err := store.SetShowDiagnostics(*req.ShowDiagnostics); err != nil {
			respondError(c, err)
			return
		}
	}

	resp, err := s.currentSettings()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getDiagnostics(c *gin.Context) {
	resp, err := s.currentSettings()
	if err != nil {
		respondError(c, err)
		return
	}
	kc := s.app.Manager.Config()
	c.JSON(http.StatusOK, diagnosticsResponse{
		KeySource:   resp.KeySource,
		Entries:     len(s.app.Events.Entries()),
		StoredBlobs: s.app.Manager.Store().Len(),
		HasProject:  s.app.Orchestrator.Project() != nil,
		TextModel:   kc.GeminiModel,
		ImageModel:  kc.ImageModel,
		VideoModel:  kc.VideoModel,
	})
}

func (s *Server) currentSettings() (settingsResponse, error) {
	var st settings.Settings
	var resp settingsResponse
	if store := s.app.Settings; store != nil {
		loaded, err := store.Load()
		if err != nil {
			return resp, err
		}
		st = loaded
		resp.Path = store.Path()
	}
	resp.ShowDiagnostics = st.ShowDiagnostics

	switch {
	case st.GeminiAPIKey != "":
		resp.KeySource = keySourceSettings
		resp.APIKey = settings.MaskKey(st.GeminiAPIKey)
	case s.app.Config.GeminiAPIKey != "":
		resp.KeySource = keySourceEnvironment
		resp.APIKey = settings.MaskKey(s.app.Config.GeminiAPIKey)
	default:
		resp.KeySource = keySourceNone
	}
	return resp, nil
}

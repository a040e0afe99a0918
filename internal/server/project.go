package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/orchestrator"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
)

type createProjectRequest struct {
	Topic                string `json:"topic"`
	CharacterDescription string `json:"characterDescription"`
}

type characterRequest struct {
	CharacterDescription string `json:"characterDescription"`
}

type exportRequest struct {
	Dir string `json:"dir"`
}

type imageResponse struct {
	ImageURL string `json:"imageUrl"`
}

// playlistItem は通し再生の1クリップなのだ。
type playlistItem struct {
	SceneNumber     int     `json:"scene_number"`
	DurationSeconds float64 `json:"duration_seconds"`
	URL             string  `json:"url"`
}

type playlistResponse struct {
	Items         []playlistItem `json:"items"`
	TotalDuration float64        `json:"totalDuration"`
}

func (s *Server) createProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.app.Orchestrator.CreateProject(c.Request.Context(), req.Topic, req.CharacterDescription)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProject(c *gin.Context) {
	p := s.app.Orchestrator.Project()
	if p == nil {
		respondError(c, orchestrator.ErrNoProject)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) closeProject(c *gin.Context) {
	s.app.Orchestrator.Close()
	c.Status(http.StatusNoContent)
}

func (s *Server) updateScene(c *gin.Context) {
	index, ok := sceneIndex(c)
	if !ok {
		return
	}
	var patch domain.ScenePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.app.Orchestrator.UpdateScene(index, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateCharacter(c *gin.Context) {
	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	p, err := s.app.Orchestrator.UpdateCharacterDescription(req.CharacterDescription)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// generateAllVideos は一括生成を開始するのだ。wait=true なら完了まで待って結果を返すのだ。
func (s *Server) generateAllVideos(c *gin.Context) {
	orch := s.app.Orchestrator
	if orch.Project() == nil {
		respondError(c, orchestrator.ErrNoProject)
		return
	}
	if wantsWait(c) {
		res, err := orch.GenerateAllVideos(c.Request.Context())
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if _, err := orch.GenerateAllVideos(ctx); err != nil {
			slog.Warn("Batch video generation did not start", "error", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

func (s *Server) generateSceneVideo(c *gin.Context) {
	s.generateVideo(c, false)
}

func (s *Server) generateIdleVideo(c *gin.Context) {
	s.generateVideo(c, true)
}

func (s *Server) generateVideo(c *gin.Context, idle bool) {
	index, ok := sceneIndex(c)
	if !ok {
		return
	}
	orch := s.app.Orchestrator
	run := func(ctx context.Context) error {
		if idle {
			return orch.GenerateIdleVideo(ctx, index)
		}
		return orch.GenerateSceneVideo(ctx, index)
	}

	if wantsWait(c) {
		if err := run(c.Request.Context()); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, orch.Project())
		return
	}

	if err := precheckScene(orch.Project(), index, idle); err != nil {
		respondError(c, err)
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		if err := run(ctx); err != nil {
			slog.Warn("Scene video generation failed", "index", index, "idle", idle, "error", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"accepted": true})
}

// precheckScene は非同期で投げる前に、すぐ分かるエラーを返すのだ。
func precheckScene(p *domain.Project, index int, idle bool) error {
	if p == nil {
		return orchestrator.ErrNoProject
	}
	scene, ok := p.Scene(index)
	if !ok {
		return fmt.Errorf("%w: %d", orchestrator.ErrSceneIndex, index)
	}
	st := scene.Video
	if idle {
		st = scene.Idle
	}
	if st.IsActive() {
		return orchestrator.ErrSceneBusy
	}
	return nil
}

func (s *Server) generateScenePreview(c *gin.Context) {
	index, ok := sceneIndex(c)
	if !ok {
		return
	}
	ref, err := s.app.Orchestrator.GenerateScenePreview(c.Request.Context(), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imageResponse{ImageURL: ref})
}

// generateCharacterPreview は説明が空ならプロジェクトのキャラクター説明を使うのだ。
func (s *Server) generateCharacterPreview(c *gin.Context) {
	var req characterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	desc := strings.TrimSpace(req.CharacterDescription)
	if desc == "" {
		if p := s.app.Orchestrator.Project(); p != nil {
			desc = p.CharacterDescription
		}
	}
	ref, err := s.app.Orchestrator.GenerateCharacterPreview(c.Request.Context(), desc)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, imageResponse{ImageURL: ref})
}

func (s *Server) getPlaylist(c *gin.Context) {
	p := s.app.Orchestrator.Project()
	if p == nil {
		respondError(c, orchestrator.ErrNoProject)
		return
	}
	resp := playlistResponse{Items: []playlistItem{}, TotalDuration: p.TotalDuration()}
	for _, scene := range p.Playlist() {
		resp.Items = append(resp.Items, playlistItem{
			SceneNumber:     scene.SceneNumber,
			DurationSeconds: scene.DurationSeconds,
			URL:             playableURL(scene.Video.Locator()),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) getStoryboard(c *gin.Context) {
	p := s.app.Orchestrator.Project()
	if p == nil {
		respondError(c, orchestrator.ErrNoProject)
		return
	}
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(s.app.Publisher.BuildStoryboard(p)))
}

// exportProject は指定ディレクトリに書き出すのだ。省略時は既定の出力先を使うのだ。
func (s *Server) exportProject(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	p := s.app.Orchestrator.Project()
	if p == nil {
		respondError(c, orchestrator.ErrNoProject)
		return
	}

	var picker publisher.DirectoryPicker = publisher.NoPicker{}
	if dir := firstNonBlank(req.Dir, s.app.Options.OutputDir); dir != "" {
		picker = publisher.FixedDir(dir)
	}
	res, err := s.app.Publisher.Run(c.Request.Context(), p, picker)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) getBlob(c *gin.Context) {
	obj, ok := s.app.Manager.Store().Get(c.Param("id"))
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", blob.ErrNotFound, c.Param("id")))
		return
	}
	c.Data(http.StatusOK, obj.MimeType, obj.Data)
}

// playableURL は blob ハンドルを配信用のパスに変換するのだ。それ以外の参照はそのまま返すのだ。
func playableURL(ref string) string {
	if strings.HasPrefix(ref, blob.Scheme) {
		return "/api/blobs/" + blob.ID(ref)
	}
	return ref
}

func sceneIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: %q", orchestrator.ErrSceneIndex, c.Param("index")))
		return 0, false
	}
	return index, true
}

func wantsWait(c *gin.Context) bool {
	wait, _ := strconv.ParseBool(c.Query("wait"))
	return wait
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

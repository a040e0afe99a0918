package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-shorts-kit/internal/builder"
)

const shutdownTimeout = 10 * time.Second

// Server は、エディタ画面から使う HTTP API を提供します。
type Server struct {
	app    *builder.AppContext
	router *gin.Engine
}

// New は AppContext を使ってルーティング済みの Server を作るのだ。
func New(appCtx *builder.AppContext) *Server {
	s := &Server{app: appCtx}
	s.router = s.newRouter()
	return s
}

// Handler はテストや組み込み用に http.Handler を返すのだ。
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) newRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	{
		api.POST("/projects", s.createProject)
		api.GET("/project", s.getProject)
		api.DELETE("/project", s.closeProject)
		api.GET("/project/stream", s.streamProject)
		api.PATCH("/project/scenes/:index", s.updateScene)
		api.PUT("/project/character", s.updateCharacter)
		api.POST("/project/videos", s.generateAllVideos)
		api.POST("/project/scenes/:index/video", s.generateSceneVideo)
		api.POST("/project/scenes/:index/idle", s.generateIdleVideo)
		api.POST("/project/scenes/:index/preview", s.generateScenePreview)
		api.GET("/project/playlist", s.getPlaylist)
		api.GET("/project/storyboard", s.getStoryboard)
		api.POST("/project/export", s.exportProject)
		api.POST("/character/preview", s.generateCharacterPreview)

		api.GET("/blobs/:id", s.getBlob)

		api.GET("/logs", s.getLogs)
		api.DELETE("/logs", s.clearLogs)
		api.GET("/logs/stream", s.streamLogs)

		api.GET("/settings", s.getSettings)
		api.PUT("/settings", s.updateSettings)
		api.GET("/diagnostics", s.getDiagnostics)
	}
	return r
}

// Serve は生成ワーカーと HTTP サーバーを起動し、ctx が終わるまでブロックするのだ。
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.app.Orchestrator.Run(gctx)
	})
	g.Go(func() error {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTPサーバーの起動に失敗しました: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		slog.Info("HTTP server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// requestLogger はリクエストごとに1行の slog を出すミドルウェアなのだ。
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

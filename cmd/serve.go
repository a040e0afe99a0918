package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-shorts-kit/internal/builder"
	"github.com/shouni/go-shorts-kit/internal/server"
)

var listenAddr string

// serveCmd は、エディタ画面から使う HTTP API を起動するのだ。
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "エディタ用の HTTP API を起動するのだ。",
	Long: `プロジェクトの作成・シーンの編集・動画の生成・通し再生・書き出し・ログの購読を
HTTP と WebSocket で提供するのだ。API キーは起動後に設定画面から登録してもよいのだよ。`,
	RunE: serveCommand,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "待ち受けアドレスなのだ。空なら LISTEN_ADDR か :8080 なのだ。")
}

func serveCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := loadConfig()
	if err := requireCredential(cfg); err != nil {
		slog.Warn("API キーが未設定なのだ。設定画面から登録するまで生成はできないのだ", "error", err)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	appCtx, err := builder.NewAppContext(cfg)
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗したのだ: %w", err)
	}

	if err := server.New(appCtx).Serve(ctx, cfg.ListenAddr); err != nil {
		return fmt.Errorf("サーバーが異常終了したのだ: %w", err)
	}
	slog.Info("サーバーを停止したのだ")
	return nil
}

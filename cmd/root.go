package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"

	"github.com/shouni/go-shorts-kit/internal/config"
	"github.com/shouni/go-shorts-kit/pkg/remote"
	"github.com/shouni/go-shorts-kit/pkg/settings"
)

const appName = "go-shorts-kit"

// opts は各サブコマンドが共有する CLI フラグの値なのだ。
var opts config.GenerateOptions

var verbose bool

// stopSignals は preRunAppE で登録したシグナル監視を解除するのだ。
var stopSignals context.CancelFunc = func() {}

// addAppFlags は、アプリケーション全般に適用されるグローバルフラグを定義するのだ。
func addAppFlags(rootCmd *cobra.Command) {
	// --- 生成結果の出力設定 ---
	rootCmd.PersistentFlags().StringVarP(&opts.OutputDir, "output-dir", "o", config.DefaultOutputDir, "動画とプロジェクトデータを書き出すディレクトリ（ローカル or gs://...）なのだ。")

	// --- AIモデル・挙動設定 ---
	rootCmd.PersistentFlags().StringVar(&opts.AIModel, "model", "", "台本生成に使う Gemini モデル名なのだ。空なら環境変数か既定値を使うのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.ImageModel, "image-model", "", "画像生成に使う Gemini モデル名なのだ。")
	rootCmd.PersistentFlags().StringVar(&opts.VideoModel, "video-model", "", "動画生成に使うモデル名なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.HTTPTimeout, "http-timeout", config.DefaultHTTPTimeout, "リクエストのタイムアウトなのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.PollInterval, "poll-interval", 0, "動画生成の完了を確認する間隔なのだ。0 なら既定値なのだ。")
	rootCmd.PersistentFlags().DurationVar(&opts.RateInterval, "rate-interval", 0, "動画生成ジョブの開始間隔の下限なのだ。0 なら既定値なのだ。")

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "デバッグログを出すのだ。")
}

// preRunAppE は、コマンド実行前にログの出力レベルを決めて、
// Ctrl+C で生成を止められるようにコマンドの context を差し替えるのだ。
func preRunAppE(cmd *cobra.Command, args []string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	stopSignals()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	stopSignals = stop
	cmd.SetContext(ctx)
	return nil
}

// subcommands はルートに登録するサブコマンドの一覧なのだ。
func subcommands() []*cobra.Command {
	return []*cobra.Command{createCmd, scriptCmd, designCmd, serveCmd, settingsCmd}
}

// loadConfig は環境変数の設定に CLI フラグを重ねるのだ。
func loadConfig() *config.Config {
	cfg := config.LoadConfig()
	cfg.Options = opts
	return cfg
}

// requireCredential は生成を始める前に、API キーが設定ファイルか環境変数のどちらかにあるかを確認するのだ。
func requireCredential(cfg *config.Config) error {
	var overrides remote.OverrideSource
	if cfg.SettingsPath != "" {
		overrides = settings.NewStore(cfg.SettingsPath)
	}
	if _, err := remote.NewCredentialResolver(overrides, cfg.GeminiAPIKey).Resolve(); err != nil {
		return fmt.Errorf("%w (settings set-key で保存するか、環境変数 GEMINI_API_KEY を設定してほしいのだ)", err)
	}
	return nil
}

// Execute は、アプリケーションのメインエントリポイントなのだ。
// main.go から呼び出されて、cobra のコマンドライン解析を開始するのだよ。
func Execute() {
	defer func() { stopSignals() }()
	clibase.Execute(
		appName,
		addAppFlags,
		preRunAppE,
		subcommands()...,
	)
}

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-shorts-kit/internal/pipeline"
)

// createCmd は、台本作成から動画生成、書き出しまでを一括で実行するのだ。
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "トピックからショート動画を一括生成するのだ。",
	Long: `トピックから台本を作り、動画の無いシーンを1本ずつ順番に生成して、
出力ディレクトリに <name>_data.json と scene_NN.mp4 を書き出すのだ。
最後に絵コンテを Markdown で標準出力に出すのだよ。`,
	RunE: createCommand,
}

func init() {
	createCmd.Flags().StringVarP(&opts.Topic, "topic", "t", "", "動画のトピックなのだ。（必須）")
	createCmd.Flags().StringVarP(&opts.CharacterDescription, "character", "c", "", "キャラクターの外見の説明なのだ。空なら AI におまかせなのだ。")
	createCmd.Flags().BoolVar(&opts.SkipVideos, "skip-videos", false, "動画を生成せず、台本だけ書き出すのだ。")
	createCmd.Flags().BoolVar(&opts.AskOutputDir, "ask-dir", false, "書き出し先のディレクトリを対話的に尋ねるのだ。")
	_ = createCmd.MarkFlagRequired("topic")
}

func createCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := loadConfig()
	if err := requireCredential(cfg); err != nil {
		return err
	}

	kc := cfg.KitConfig()
	slog.Info("ショート動画の生成パイプラインを起動するのだ！",
		"topic", opts.Topic,
		"text_model", kc.GeminiModel,
		"video_model", kc.VideoModel,
		"output", opts.OutputDir)

	if err := pipeline.Execute(ctx, cfg, os.Stdout); err != nil {
		return fmt.Errorf("パイプライン実行中にエラーが発生したのだ: %w", err)
	}

	slog.Info("すべての生成工程が完了したのだ！")
	return nil
}

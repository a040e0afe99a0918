package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shouni/go-shorts-kit/internal/pipeline"
)

// scriptCmd は、台本の生成（JSON出力）のみを実行するのだ。
var scriptCmd = &cobra.Command{
	Use:   "script",
	Short: "台本（JSON）のみを生成して標準出力に出すのだ。",
	Long: `トピックからシーンの並び（説明、キャラクターの演技、背景、音、台詞）を生成して、
プロジェクトの JSON を出力するのだ。動画生成は行わないのだよ。`,
	RunE: scriptCommand,
}

func init() {
	scriptCmd.Flags().StringVarP(&opts.Topic, "topic", "t", "", "動画のトピックなのだ。（必須）")
	scriptCmd.Flags().StringVarP(&opts.CharacterDescription, "character", "c", "", "キャラクターの外見の説明なのだ。")
	_ = scriptCmd.MarkFlagRequired("topic")
}

func scriptCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg := loadConfig()
	if err := requireCredential(cfg); err != nil {
		return err
	}

	slog.Info("台本生成モードを起動するのだ！", "topic", opts.Topic, "text_model", cfg.KitConfig().GeminiModel)

	if err := pipeline.ExecuteScript(ctx, cfg, os.Stdout); err != nil {
		return fmt.Errorf("台本生成中にエラーが発生したのだ: %w", err)
	}

	slog.Info("台本（JSON）の生成が完了したのだ！")
	return nil
}

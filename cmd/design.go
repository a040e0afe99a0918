package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shouni/go-shorts-kit/internal/pipeline"
)

var designCmd = &cobra.Command{
	Use:   "design",
	Short: "キャラクターのリファレンス画像を生成して保存するのだ。",
	Long:  "キャラクターの外見の説明から全身のリファレンス画像を1枚生成し、出力ディレクトリに character_<name>.<ext> として保存するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		name, err := cmd.Flags().GetString("name")
		if err != nil {
			return fmt.Errorf("--name フラグの解析に失敗しました: %w", err)
		}

		cfg := loadConfig()
		if err := requireCredential(cfg); err != nil {
			return err
		}

		slog.Info("Executing character design generation",
			slog.String("name", name),
			slog.String("image_model", cfg.KitConfig().ImageModel),
		)

		path, err := pipeline.ExecuteDesign(ctx, cfg, name)
		if err != nil {
			return err
		}

		slog.Info("Design generation completed successfully", slog.String("output_path", path))
		fmt.Printf("🎨 キャラクターデザイン完成: %s\n", path)
		return nil
	},
}

func init() {
	designCmd.Flags().StringVarP(&opts.CharacterDescription, "character", "c", "", "キャラクターの外見の説明なのだ。（必須）")
	designCmd.Flags().StringP("name", "n", "character", "保存するファイル名に使う名前なのだ。")
	_ = designCmd.MarkFlagRequired("character")
}

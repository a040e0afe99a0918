package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shouni/go-shorts-kit/pkg/settings"
)

// settingsCmd は、ローカルに保存されるユーザー設定を扱うのだ。
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "API キーの上書きなどのユーザー設定を表示・変更するのだ。",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "現在の設定を表示するのだ。API キーは末尾4文字以外を伏せるのだ。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		st, err := store.Load()
		if err != nil {
			return err
		}

		cfg := loadConfig()
		source := "none"
		key := ""
		switch {
		case st.GeminiAPIKey != "":
			source, key = "settings", st.GeminiAPIKey
		case cfg.GeminiAPIKey != "":
			source, key = "environment", cfg.GeminiAPIKey
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "path:             %s\n", store.Path())
		fmt.Fprintf(out, "api key:          %s (%s)\n", settings.MaskKey(key), source)
		fmt.Fprintf(out, "show diagnostics: %t\n", st.ShowDiagnostics)
		return nil
	},
}

var settingsSetKeyCmd = &cobra.Command{
	Use:   "set-key <api-key>",
	Short: "環境変数より優先される API キーを保存するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		if err := store.SetAPIKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "API キーを保存したのだ: %s\n", settings.MaskKey(args[0]))
		return nil
	},
}

var settingsClearKeyCmd = &cobra.Command{
	Use:   "clear-key",
	Short: "保存した API キーを削除して環境変数に戻すのだ。",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openSettings()
		if err != nil {
			return err
		}
		if err := store.SetAPIKey(""); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API キーの上書きを削除したのだ")
		return nil
	},
}

var settingsDiagnosticsCmd = &cobra.Command{
	Use:   "diagnostics <on|off>",
	Short: "診断ログパネルの表示を切り替えるのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		show, err := parseToggle(args[0])
		if err != nil {
			return err
		}
		store, err := openSettings()
		if err != nil {
			return err
		}
		return store.SetShowDiagnostics(show)
	},
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetKeyCmd, settingsClearKeyCmd, settingsDiagnosticsCmd)
}

func openSettings() (*settings.Store, error) {
	cfg := loadConfig()
	if cfg.SettingsPath == "" {
		return nil, errors.New("設定ファイルの場所が分からないのだ。SHORTS_SETTINGS_PATH を指定してほしいのだ")
	}
	return settings.NewStore(cfg.SettingsPath), nil
}

func parseToggle(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("on か off を指定してほしいのだ: %q", s)
	}
	return v, nil
}

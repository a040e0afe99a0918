package config

import (
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("VIDEO_GEMINI_MODEL", "veo-custom")
	t.Setenv("SHORTS_SETTINGS_PATH", "/tmp/shorts/settings.yaml")

	cfg := LoadConfig()
	if cfg.GeminiAPIKey != "env-key" || cfg.GeminiVideoModel != "veo-custom" || cfg.SettingsPath != "/tmp/shorts/settings.yaml" {
		t.Fatalf("cfg=%+v", cfg)
	}

	t.Run("フラグの値が環境変数より優先されるのだ", func(t *testing.T) {
		c := *cfg
		c.Options = GenerateOptions{VideoModel: "veo-flag", PollInterval: time.Second}
		kc := c.KitConfig()
		if kc.VideoModel != "veo-flag" || kc.PollInterval != time.Second || kc.GeminiAPIKey != "env-key" {
			t.Errorf("kc=%+v", kc)
		}
		if kc.AspectRatio != "9:16" {
			t.Errorf("縦型ではないのだ: %s", kc.AspectRatio)
		}
	})
}

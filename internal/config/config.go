package config

import (
	"log/slog"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-utils/envutil"

	kitconfig "github.com/shouni/go-shorts-kit/pkg/config"
	"github.com/shouni/go-shorts-kit/pkg/settings"
)

// デフォルト値の定義なのだ
const (
	DefaultHTTPTimeout = 2 * time.Minute
	DefaultListenAddr  = ":8080"
	DefaultOutputDir   = "output"
)

// Config はアプリケーション全体の環境設定（APIキーやモデル名）を保持する構造体なのだ。
type Config struct {
	GeminiAPIKey      string
	GeminiModel       string
	GeminiImageModel  string
	GeminiVideoModel  string
	StylePromptSuffix string
	SettingsPath      string
	ListenAddr        string

	Options GenerateOptions
}

// LoadConfig は .env と環境変数から設定を読み込み、構造体を返すのだ！
func LoadConfig() *Config {
	if err := godotenv.Load(); err == nil {
		slog.Debug("Loaded .env file")
	}

	cfg := &Config{
		GeminiAPIKey:      envutil.GetEnv("GEMINI_API_KEY", ""),
		GeminiModel:       envutil.GetEnv("GEMINI_MODEL", kitconfig.DefaultGeminiModel),
		GeminiImageModel:  envutil.GetEnv("IMAGE_GEMINI_MODEL", kitconfig.DefaultImageModel),
		GeminiVideoModel:  envutil.GetEnv("VIDEO_GEMINI_MODEL", kitconfig.DefaultVideoModel),
		StylePromptSuffix: envutil.GetEnv("STYLE_PROMPT_SUFFIX", kitconfig.DefaultStyleSuffix),
		SettingsPath:      envutil.GetEnv("SHORTS_SETTINGS_PATH", ""),
		ListenAddr:        envutil.GetEnv("LISTEN_ADDR", DefaultListenAddr),
	}
	if cfg.SettingsPath == "" {
		if p, err := settings.DefaultPath(); err == nil {
			cfg.SettingsPath = p
		} else {
			slog.Warn("Could not resolve settings path, credential overrides are disabled", "error", err)
		}
	}
	return cfg
}

// KitConfig はライブラリ側の Config に変換するのだ。CLI フラグの値で上書きするのだ。
func (c *Config) KitConfig() kitconfig.Config {
	kc := kitconfig.NewConfig(c.GeminiAPIKey)
	kc.GeminiModel = firstNonEmpty(c.Options.AIModel, c.GeminiModel, kc.GeminiModel)
	kc.ImageModel = firstNonEmpty(c.Options.ImageModel, c.GeminiImageModel, kc.ImageModel)
	kc.VideoModel = firstNonEmpty(c.Options.VideoModel, c.GeminiVideoModel, kc.VideoModel)
	kc.StyleSuffix = firstNonEmpty(c.StylePromptSuffix, kc.StyleSuffix)
	if c.Options.PollInterval > 0 {
		kc.PollInterval = c.Options.PollInterval
	}
	if c.Options.RateInterval > 0 {
		kc.RateInterval = c.Options.RateInterval
	}
	if c.Options.HTTPTimeout > 0 {
		kc.RequestTimeout = c.Options.HTTPTimeout
	}
	return kc
}

// GenerateOptions は CLI フラグから渡される実行時のパラメータなのだ。
type GenerateOptions struct {
	// 入力関連
	Topic                string // --topic
	CharacterDescription string // --character

	// 出力関連
	OutputDir    string // --output-dir
	AskOutputDir bool   // --ask-dir: 書き出し先を対話的に尋ねる

	// AI挙動設定
	AIModel    string // --model: テキスト生成用のGeminiモデル
	ImageModel string // --image-model: 画像生成用のGeminiモデル
	VideoModel string // --video-model: 動画生成用のモデル

	// 実行制御
	SkipVideos   bool          // --skip-videos
	HTTPTimeout  time.Duration // --http-timeout
	PollInterval time.Duration // --poll-interval
	RateInterval time.Duration // --rate-interval
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package config

import (
	"time"
)

// デフォルト値の定義
const (
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultImageModel      = "gemini-2.5-flash-image"
	DefaultVideoModel      = "veo-3.1-fast-generate-preview"
	DefaultAspectRatio     = "9:16"
	DefaultVideoResolution = "720p"
	DefaultPollInterval    = 5 * time.Second
	DefaultRateInterval    = 2 * time.Second
	DefaultRequestTimeout  = 2 * time.Minute
	DefaultStyleSuffix     = "3D animated short, soft cinematic lighting, vibrant colors, expressive character animation, smooth motion, high quality"
)

// Config は Go Shorts Kit の各 Runner を動作させるための基本設定です。
type Config struct {
	// --- AI Model Settings ---
	GeminiModel string
	ImageModel  string
	VideoModel  string

	// --- Google AI (Gemini API) Settings ---
	// GeminiAPIKey は設定ファイルに上書きが無いときに使う既定の認証情報です。
	GeminiAPIKey string

	// --- Generation Settings ---
	StyleSuffix     string
	AspectRatio     string // 9:16 固定
	VideoResolution string
	PollInterval    time.Duration
	RateInterval    time.Duration

	// --- Timeout ---
	RequestTimeout time.Duration
}

// DefaultConfig は推奨されるデフォルト設定を返すヘルパー関数です。
func DefaultConfig() Config {
	return Config{
		GeminiModel:     DefaultGeminiModel,
		ImageModel:      DefaultImageModel,
		VideoModel:      DefaultVideoModel,
		StyleSuffix:     DefaultStyleSuffix,
		AspectRatio:     DefaultAspectRatio,
		VideoResolution: DefaultVideoResolution,
		PollInterval:    DefaultPollInterval,
		RateInterval:    DefaultRateInterval,
		RequestTimeout:  DefaultRequestTimeout,
	}
}

// NewConfig はデフォルト値で初期化された Config に既定の API キーをセットして返すのだ。
func NewConfig(apiKey string) Config {
	cfg := DefaultConfig()
	cfg.GeminiAPIKey = apiKey
	return cfg
}

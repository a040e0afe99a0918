package prompts

import "github.com/shouni/go-shorts-kit/pkg/domain"

// ScriptPrompt は、台本生成用のAIプロンプトを構築する契約です。
type ScriptPrompt interface {
	Build(mode string, data TemplateData) (string, error)
}

// MediaPrompt は、画像・動画生成用のAIプロンプトを構築する契約です。
type MediaPrompt interface {
	// BuildCharacterImage は、キャラクターのリファレンス画像用のプロンプトを生成します。
	BuildCharacterImage(characterDescription string) string
	// BuildSceneImage は、シーンの静止画プレビュー用のプロンプトを生成します。
	BuildSceneImage(scene domain.Scene, characterDescription string) string
	// BuildVideo は、シーンのメイン動画用のプロンプトを生成します。
	BuildVideo(scene domain.Scene, characterDescription string) string
	// BuildIdleVideo は、シーンの待機ループ動画用のプロンプトを生成します。
	BuildIdleVideo(scene domain.Scene, characterDescription string) string
}

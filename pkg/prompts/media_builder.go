package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/go-shorts-kit/pkg/domain"
)

const (
	// VerticalFraming は縦型ショート動画の構図指定なのだ。
	VerticalFraming = "Vertical 9:16 composition, the character centered and fully visible in frame"
	// CharacterSheetLayout はキャラクターのリファレンス画像の構図指定なのだ。
	CharacterSheetLayout = "full body character reference, front view, neutral pose, plain white background, sharp focus"
	// NoTextTag は画面内に文字を描かせないための指定なのだ。
	NoTextTag = "no text, no captions, no subtitles, no watermark"
)

// MediaPromptBuilder は、キャラクターの外見とシーン情報から画像・動画のプロンプトを構築します。
type MediaPromptBuilder struct {
	styleSuffix string
}

// NewMediaPromptBuilder は新しい MediaPromptBuilder を生成します。
func NewMediaPromptBuilder(styleSuffix string) *MediaPromptBuilder {
	return &MediaPromptBuilder{styleSuffix: styleSuffix}
}

// BuildCharacterImage はキャラクターのリファレンス画像用プロンプトなのだ。
func (b *MediaPromptBuilder) BuildCharacterImage(characterDescription string) string {
	return joinClean(", ",
		"Character design of "+strings.TrimSpace(characterDescription),
		CharacterSheetLayout,
		b.styleSuffix,
		NoTextTag,
	)
}

// BuildSceneImage はシーンの最初のフレームを想定した静止画プロンプトなのだ。
func (b *MediaPromptBuilder) BuildSceneImage(scene domain.Scene, characterDescription string) string {
	var sb strings.Builder
	sb.WriteString("A single still frame from a vertical animated short.\n")
	writeSection(&sb, "CHARACTER APPEARANCE", characterDescription)
	writeSection(&sb, "SCENE", scene.Description)
	writeSection(&sb, "POSE", scene.Character.Pose)
	writeSection(&sb, "EXPRESSION", scene.Character.Expression)
	writeSection(&sb, "BACKGROUND", scene.Background)
	writeSection(&sb, "STYLE", joinClean(", ", b.styleSuffix, VerticalFraming, NoTextTag))
	return strings.TrimSpace(sb.String())
}

// BuildVideo はメイン動画のプロンプトなのだ。
// キャラクターの外見、シーンの動き、演技 (動作・ポーズ・表情)、背景の順に並べるのだ。
func (b *MediaPromptBuilder) BuildVideo(scene domain.Scene, characterDescription string) string {
	var sb strings.Builder
	writeSection(&sb, "CHARACTER APPEARANCE", characterDescription)
	writeSection(&sb, "SCENE ACTION", scene.Description)
	writeSection(&sb, "CHARACTER ACTION", scene.Character.ActionSummary())
	writeSection(&sb, "POSE", scene.Character.Pose)
	writeSection(&sb, "EXPRESSION", scene.Character.Expression)
	writeSection(&sb, "BACKGROUND", scene.Background)
	if d := strings.TrimSpace(scene.Dialogue); d != "" {
		writeSection(&sb, "DIALOGUE", fmt.Sprintf("The character says: %q", d))
	}
	if a := strings.TrimSpace(scene.Audio); a != "" {
		writeSection(&sb, "AUDIO", a)
	}
	writeSection(&sb, "STYLE", joinClean(", ", b.styleSuffix, VerticalFraming, NoTextTag))
	return strings.TrimSpace(sb.String())
}

// BuildIdleVideo は待機ループ動画のプロンプトなのだ。
// シーンの動きの代わりに待機の説明を使い、台詞と音は入れないのだ。
func (b *MediaPromptBuilder) BuildIdleVideo(scene domain.Scene, characterDescription string) string {
	var sb strings.Builder
	writeSection(&sb, "CHARACTER APPEARANCE", characterDescription)
	writeSection(&sb, "IDLE LOOP", scene.IdlePrompt())
	writeSection(&sb, "POSE", scene.Character.Pose)
	writeSection(&sb, "EXPRESSION", scene.Character.Expression)
	writeSection(&sb, "BACKGROUND", scene.Background)
	writeSection(&sb, "STYLE", joinClean(", ", b.styleSuffix, VerticalFraming, "static camera", NoTextTag))
	return strings.TrimSpace(sb.String())
}

func writeSection(sb *strings.Builder, title, body string) {
	body = strings.TrimSpace(body)
	if body == "" {
		return
	}
	fmt.Fprintf(sb, "### %s ###\n%s\n\n", title, body)
}

// joinClean は空要素を取り除いてから結合するのだ。
func joinClean(sep string, parts ...string) string {
	clean := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			clean = append(clean, s)
		}
	}
	return strings.Join(clean, sep)
}

package prompts

import (
	"strings"
	"testing"

	"github.com/shouni/go-shorts-kit/pkg/domain"
)

func TestTextPromptBuilder_Build(t *testing.T) {
	b, err := NewTextPromptBuilder()
	if err != nil {
		t.Fatalf("初期化に失敗したのだ: %v", err)
	}

	t.Run("トピックとキャラクターが埋め込まれるのだ", func(t *testing.T) {
		out, err := b.Build(ModeScript, TemplateData{Topic: "a robot learns to dance", CharacterDescription: "small silver robot"})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "a robot learns to dance") || !strings.Contains(out, "small silver robot") {
			t.Errorf("プロンプトに入力が含まれていないのだ:\n%s", out)
		}
		if !strings.Contains(out, "scene_number") {
			t.Error("スキーマの説明が含まれていないのだ")
		}
	})

	t.Run("キャラクター未指定ならおまかせの指示になるのだ", func(t *testing.T) {
		out, err := b.Build(ModeScript, TemplateData{Topic: "cats"})
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "Invent a memorable") {
			t.Errorf("おまかせの指示が無いのだ:\n%s", out)
		}
	})

	t.Run("不明なモードはエラーなのだ", func(t *testing.T) {
		if _, err := b.Build("unknown", TemplateData{}); err == nil {
			t.Error("エラーにならないのだ")
		}
	})
}

func TestMediaPromptBuilder(t *testing.T) {
	b := NewMediaPromptBuilder("pixar style")
	scene := domain.Scene{
		Description: "The robot spins under a disco ball",
		Character:   domain.Character{Name: "Robo", Pose: "arms up", Expression: "joyful", Actions: []string{"spin", " ", "jump"}},
		Background:  "a neon dance floor",
		Dialogue:    "Look at me!",
	}

	t.Run("動画プロンプトは外見・動き・演技・背景を含むのだ", func(t *testing.T) {
		p := b.BuildVideo(scene, "small silver robot")
		for _, want := range []string{"small silver robot", "spins under a disco ball", "spin, jump", "arms up", "joyful", "neon dance floor", "Look at me!", "9:16", "pixar style"} {
			if !strings.Contains(p, want) {
				t.Errorf("%q が含まれていないのだ:\n%s", want, p)
			}
		}
		if strings.Index(p, "CHARACTER APPEARANCE") > strings.Index(p, "SCENE ACTION") {
			t.Error("外見が先に来ていないのだ")
		}
	})

	t.Run("待機ループはシーンの動きと台詞を使わないのだ", func(t *testing.T) {
		p := b.BuildIdleVideo(scene, "small silver robot")
		if strings.Contains(p, "disco ball") || strings.Contains(p, "Look at me!") {
			t.Errorf("待機ループにメインの演技が混ざっているのだ:\n%s", p)
		}
		if !strings.Contains(p, domain.DefaultIdleDescription) {
			t.Error("デフォルトの待機説明が使われていないのだ")
		}
	})

	t.Run("空のセクションは出力しないのだ", func(t *testing.T) {
		p := b.BuildSceneImage(domain.Scene{Description: "x"}, "")
		if strings.Contains(p, "CHARACTER APPEARANCE") || strings.Contains(p, "BACKGROUND") {
			t.Errorf("空のセクションが出力されているのだ:\n%s", p)
		}
	})

	t.Run("キャラクター画像", func(t *testing.T) {
		p := b.BuildCharacterImage(" a tiny fox ")
		if !strings.HasPrefix(p, "Character design of a tiny fox") {
			t.Errorf("got %q", p)
		}
	})
}

package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	imgdom "github.com/shouni/gemini-image-kit/pkg/domain"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/prompts"
	"github.com/shouni/go-shorts-kit/pkg/remote/remotetest"
)

type fakeGen struct {
	scenes  []domain.ScriptScene
	image   *imgdom.ImageResponse
	ref     string
	err     error
	prompts []string
	details []map[string]any
}

func (f *fakeGen) GenerateScript(_ context.Context, prompt string) ([]domain.ScriptScene, error) {
	f.prompts = append(f.prompts, prompt)
	return f.scenes, f.err
}

func (f *fakeGen) GenerateImage(_ context.Context, prompt string) (*imgdom.ImageResponse, error) {
	f.prompts = append(f.prompts, prompt)
	return f.image, f.err
}

func (f *fakeGen) GenerateVideo(_ context.Context, prompt string, details map[string]any) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.details = append(f.details, details)
	return f.ref, f.err
}

func TestShortsScriptRunner_Run(t *testing.T) {
	pb, err := prompts.NewTextPromptBuilder()
	if err != nil {
		t.Fatal(err)
	}

	t.Run("台本を draft のシーンに変換するのだ", func(t *testing.T) {
		gen := &fakeGen{scenes: []domain.ScriptScene{
			{SceneNumber: 1, Description: "a"},
			{SceneNumber: 2, Description: "b"},
		}}
		scenes, err := NewShortsScriptRunner(pb, gen).Run(context.Background(), " robots ", "")
		if err != nil {
			t.Fatal(err)
		}
		if len(scenes) != 2 {
			t.Fatalf("scenes=%d", len(scenes))
		}
		for _, s := range scenes {
			if s.Video.Status() != domain.StatusDraft || s.Idle.Status() != domain.StatusDraft {
				t.Errorf("draft ではないのだ: %v", s.Video.Status())
			}
			if s.IdleDescription != domain.DefaultIdleDescription {
				t.Error("待機の説明が入っていないのだ")
			}
		}
		if !strings.Contains(gen.prompts[0], "robots") {
			t.Error("トピックがプロンプトに入っていないのだ")
		}
	})

	t.Run("生成の失敗はそのまま包んで返すのだ", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := NewShortsScriptRunner(pb, &fakeGen{err: boom}).Run(context.Background(), "x", "")
		if !errors.Is(err, boom) {
			t.Fatalf("err=%v", err)
		}
	})
}

func TestShortsDesignRunner(t *testing.T) {
	mb := prompts.NewMediaPromptBuilder("")

	t.Run("data URL を返すのだ", func(t *testing.T) {
		gen := &fakeGen{image: &imgdom.ImageResponse{Data: []byte{1, 2}, MimeType: "image/png"}}
		ref, err := NewShortsDesignRunner(mb, gen, nil).Run(context.Background(), "a fox")
		if err != nil || !strings.HasPrefix(ref, "data:image/png;base64,") {
			t.Fatalf("ref=%q err=%v", ref, err)
		}
	})

	t.Run("空の説明は生成しないのだ", func(t *testing.T) {
		gen := &fakeGen{}
		if _, err := NewShortsDesignRunner(mb, gen, nil).Run(context.Background(), "  "); err == nil {
			t.Fatal("エラーにならないのだ")
		}
		if len(gen.prompts) != 0 {
			t.Error("生成が呼ばれているのだ")
		}
	})

	t.Run("保存先にファイル名を付けて書き出すのだ", func(t *testing.T) {
		gen := &fakeGen{image: &imgdom.ImageResponse{Data: []byte{9}, MimeType: "image/jpeg"}}
		w := remotetest.NewWriter()
		path, err := NewShortsDesignRunner(mb, gen, w).RunAndSave(context.Background(), "a fox", "Fox Hero", "out")
		if err != nil {
			t.Fatal(err)
		}
		data, ok := w.File(path)
		if !strings.HasSuffix(path, "character_fox_hero.jpg") || !ok || len(data) != 1 {
			t.Errorf("path=%s files=%v", path, w.Paths())
		}
	})
}

func TestShortsVideoRunner(t *testing.T) {
	mb := prompts.NewMediaPromptBuilder("")
	scene := domain.ScriptScene{SceneNumber: 2, Description: "dances wildly", Dialogue: "hey"}.Hydrate()

	t.Run("メイン動画はシーンの動きを使うのだ", func(t *testing.T) {
		gen := &fakeGen{ref: "blob:1"}
		ref, err := NewShortsVideoRunner(mb, gen).Run(context.Background(), scene, "robot")
		if err != nil || ref != "blob:1" {
			t.Fatalf("ref=%q err=%v", ref, err)
		}
		if !strings.Contains(gen.prompts[0], "dances wildly") || gen.details[0]["kind"] != KindPrimary {
			t.Errorf("prompt=%s details=%v", gen.prompts[0], gen.details[0])
		}
	})

	t.Run("待機ループは待機の説明を使うのだ", func(t *testing.T) {
		gen := &fakeGen{ref: "blob:2"}
		if _, err := NewShortsVideoRunner(mb, gen).RunIdle(context.Background(), scene, "robot"); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(gen.prompts[0], "dances wildly") || gen.details[0]["kind"] != KindIdle {
			t.Errorf("prompt=%s details=%v", gen.prompts[0], gen.details[0])
		}
	})
}

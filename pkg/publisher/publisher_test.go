package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/eventlog"
	"github.com/shouni/go-shorts-kit/pkg/remote/remotetest"
)

func testProject(t *testing.T, states ...domain.VideoState) *domain.Project {
	t.Helper()
	scenes := make([]domain.Scene, len(states))
	for i, st := range states {
		scenes[i] = domain.ScriptScene{SceneNumber: i + 1, DurationSeconds: 4, Description: "scene"}.Hydrate()
		scenes[i].Video = st
	}
	p, err := domain.NewProject("Robot Dance!", "small silver robot", scenes, time.UnixMilli(1700000000000))
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"Robot Dance!": "robot_dance_",
		"ABC-123":      "abc_123",
		"":             "project",
		"ねこ":           "__",
	}
	for in, want := range cases {
		if got := SanitizeName(in); got != want {
			t.Errorf("SanitizeName(%q) = %q, want %q", in, got, want)
		}
	}
	if SceneFileName(3) != "scene_03.mp4" || SceneFileName(12) != "scene_12.mp4" {
		t.Error("シーンのファイル名が違うのだ")
	}
}

func TestShortsPublisher_Export(t *testing.T) {
	ctx := context.Background()

	t.Run("データと完成済みの動画を書き出すのだ", func(t *testing.T) {
		store := blob.NewStore(nil)
		handle := store.Put([]byte("video-1"), "video/mp4")
		p := testProject(t, domain.Ready(handle), domain.Failed("boom"), domain.Ready(blob.DataURL([]byte("video-3"), "video/mp4")))
		dir := t.TempDir()
		events := eventlog.New(nil)
		writer := remotetest.NewWriter()

		res, err := NewShortsPublisher(writer, store, events).Export(ctx, p, FixedDir(dir))
		if err != nil {
			t.Fatal(err)
		}
		if !res.SavedVideos || len(res.VideoPaths) != 2 {
			t.Fatalf("res=%+v", res)
		}

		data, ok := writer.File(filepath.Join(dir, "robot_dance__data.json"))
		if !ok {
			t.Fatalf("データが書き出されていないのだ: %v", writer.Paths())
		}
		var decoded domain.Project
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatal(err)
		}
		if len(decoded.Scenes) != 3 || decoded.Scenes[1].Video.Status() != domain.StatusError {
			t.Errorf("データが違うのだ: %+v", decoded.Scenes)
		}
		if !strings.Contains(string(data), "\n  ") {
			t.Error("インデントされていないのだ")
		}

		v1, _ := writer.File(filepath.Join(dir, "scene_01.mp4"))
		v3, _ := writer.File(filepath.Join(dir, "scene_03.mp4"))
		if string(v1) != "video-1" || string(v3) != "video-3" {
			t.Errorf("動画の中身が違うのだ: %q %q", v1, v3)
		}
		if _, ok := writer.File(filepath.Join(dir, "scene_02.mp4")); ok {
			t.Error("失敗したシーンが書き出されているのだ")
		}
	})

	t.Run("gs:// の出力先にも同じ名前で書き出すのだ", func(t *testing.T) {
		store := blob.NewStore(nil)
		p := testProject(t, domain.Ready(store.Put([]byte("video-1"), "video/mp4")))
		writer := remotetest.NewWriter()

		res, err := NewShortsPublisher(writer, store, nil).Export(ctx, p, FixedDir("gs://bucket/shorts"))
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"gs://bucket/shorts/robot_dance__data.json", "gs://bucket/shorts/scene_01.mp4"}
		if got := writer.Paths(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
			t.Errorf("paths=%v", got)
		}
		if res.DataPath != want[0] {
			t.Errorf("DataPath=%s", res.DataPath)
		}
	})

	t.Run("完成済みが無くてもエラーにはならないのだ", func(t *testing.T) {
		p := testProject(t, domain.NotStarted(), domain.Failed("x"))
		writer := remotetest.NewWriter()
		res, err := NewShortsPublisher(writer, blob.NewStore(nil), nil).Export(ctx, p, FixedDir(t.TempDir()))
		if err != nil {
			t.Fatal(err)
		}
		if res.SavedVideos || len(res.VideoPaths) != 0 {
			t.Errorf("res=%+v", res)
		}
		if _, ok := writer.File(res.DataPath); !ok {
			t.Errorf("データが書き出されていないのだ: %v", writer.Paths())
		}
	})

	t.Run("個々の動画の失敗はスキップして記録するのだ", func(t *testing.T) {
		store := blob.NewStore(nil)
		good := store.Put([]byte("ok"), "video/mp4")
		p := testProject(t, domain.Ready("blob:missing"), domain.Ready(good))
		events := eventlog.New(nil)

		res, err := NewShortsPublisher(remotetest.NewWriter(), store, events).Export(ctx, p, FixedDir(t.TempDir()))
		if err != nil {
			t.Fatal(err)
		}
		if len(res.VideoPaths) != 1 || !strings.HasSuffix(res.VideoPaths[0], "scene_02.mp4") {
			t.Errorf("res=%+v", res)
		}
		var errorCount int
		for _, e := range events.Entries() {
			if e.Level == eventlog.LevelError {
				errorCount++
			}
		}
		if errorCount != 1 {
			t.Errorf("エラーの記録数が違うのだ: %d", errorCount)
		}
	})

	t.Run("取り消しは結果で返すのだ", func(t *testing.T) {
		res, err := NewShortsPublisher(remotetest.NewWriter(), blob.NewStore(nil), nil).Export(ctx, testProject(t, domain.NotStarted()), FixedDir(""))
		if err != nil || !res.Cancelled {
			t.Fatalf("res=%+v err=%v", res, err)
		}
	})

	t.Run("選択できない環境はエラーなのだ", func(t *testing.T) {
		_, err := NewShortsPublisher(remotetest.NewWriter(), blob.NewStore(nil), nil).Export(ctx, testProject(t, domain.NotStarted()), NoPicker{})
		if !errors.Is(err, ErrPickerUnsupported) {
			t.Fatalf("err=%v", err)
		}
	})
}

func TestPromptPicker(t *testing.T) {
	t.Run("入力されたディレクトリを返すのだ", func(t *testing.T) {
		var out strings.Builder
		dir, err := PromptPicker{In: strings.NewReader(" ./out \n"), Out: &out}.PickDirectory(context.Background())
		if err != nil || dir != "./out" {
			t.Fatalf("dir=%q err=%v", dir, err)
		}
		if out.Len() == 0 {
			t.Error("プロンプトが表示されていないのだ")
		}
	})

	t.Run("空行は取り消しなのだ", func(t *testing.T) {
		_, err := PromptPicker{In: strings.NewReader("\n")}.PickDirectory(context.Background())
		if !errors.Is(err, ErrPickerCancelled) {
			t.Fatalf("err=%v", err)
		}
	})
}

func TestBuildStoryboard(t *testing.T) {
	p := testProject(t, domain.Ready("blob:x"), domain.Failed("safety"))
	md := BuildStoryboard(p)
	for _, want := range []string{"# Robot Dance!", "## Scene 1", "scene_01.mp4", "- error: safety", "[completed]"} {
		if !strings.Contains(md, want) {
			t.Errorf("%q が含まれていないのだ:\n%s", want, md)
		}
	}
}

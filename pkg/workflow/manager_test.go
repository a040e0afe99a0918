package workflow

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-shorts-kit/pkg/config"
	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
	"github.com/shouni/go-shorts-kit/pkg/remote"
	"github.com/shouni/go-shorts-kit/pkg/remote/remotetest"
)

type staticOverride string

func (s staticOverride) APIKeyOverride() (string, error) { return string(s), nil }

func TestManager_EndToEnd(t *testing.T) {
	cfg := config.NewConfig("env-key")
	cfg.RateInterval = 0
	writer := remotetest.NewWriter()
	m, err := New(ManagerArgs{
		Config:     cfg,
		HTTPClient: remotetest.Fetcher{},
		Writer:     writer,
		Backend:    remotetest.NewBackend(),
		Clock:      remotetest.Clock{},
	})
	if err != nil {
		t.Fatal(err)
	}
	o, err := m.BuildOrchestrator()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = o.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	p, err := o.CreateProject(context.Background(), "a robot learns to dance", "small silver robot")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Scenes) != 3 || p.Scenes[0].Character.Name != "Robo" {
		t.Fatalf("台本が違うのだ: %+v", p.Scenes)
	}

	res, err := o.GenerateAllVideos(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed != 2 || res.Failed != 1 {
		t.Fatalf("res=%+v", res)
	}
	final := o.Project()
	if got := final.Timeline(); got[1] != domain.StatusError || len(final.Playlist()) != 2 {
		t.Fatalf("timeline=%v", got)
	}

	var rejected bool
	for _, e := range m.Events().Entries() {
		if e.Details["kind"] == remote.KindRejected {
			rejected = true
		}
	}
	if !rejected {
		t.Error("安全フィルタの可能性が記録されていないのだ")
	}

	pub, err := m.BuildPublishRunner()
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	out, err := pub.Run(context.Background(), final, publisher.FixedDir(dir))
	if err != nil {
		t.Fatal(err)
	}
	if !out.SavedVideos || len(out.VideoPaths) != 2 {
		t.Fatalf("out=%+v", out)
	}
	data, ok := writer.File(filepath.Join(dir, "scene_03.mp4"))
	if !ok || !strings.Contains(string(data), "key=env-key") {
		t.Errorf("動画が書き出されていないのだ: %q", data)
	}
	if _, ok := writer.File(filepath.Join(dir, "a_robot_learns_to_dance_data.json")); !ok {
		t.Errorf("プロジェクトデータが書き出されていないのだ: %v", writer.Paths())
	}
	if !strings.Contains(pub.BuildStoryboard(final), "## Scene 2") {
		t.Error("絵コンテが作られていないのだ")
	}
}

func TestManager_MissingCredential(t *testing.T) {
	backend := remotetest.NewBackend()
	m, err := New(ManagerArgs{
		Config:     config.NewConfig(""),
		HTTPClient: remotetest.Fetcher{},
		Writer:     remotetest.NewWriter(),
		Backend:    backend,
		Overrides:  staticOverride(""),
	})
	if err != nil {
		t.Fatal(err)
	}
	o, err := m.BuildOrchestrator()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := o.CreateProject(context.Background(), "topic", ""); !errors.Is(err, remote.ErrMissingCredential) {
		t.Fatalf("err=%v", err)
	}
	if backend.Calls() != 0 {
		t.Error("通信しているのだ")
	}
}

func TestNew_RequiredArgs(t *testing.T) {
	t.Run("HTTPClient が無いとエラーなのだ", func(t *testing.T) {
		if _, err := New(ManagerArgs{Config: config.DefaultConfig(), Writer: remotetest.NewWriter()}); err == nil {
			t.Error("エラーにならないのだ")
		}
	})
	t.Run("Writer が無いとエラーなのだ", func(t *testing.T) {
		if _, err := New(ManagerArgs{Config: config.DefaultConfig(), HTTPClient: remotetest.Fetcher{}}); err == nil {
			t.Error("エラーにならないのだ")
		}
	})
}

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/remote"
	"github.com/shouni/go-shorts-kit/pkg/runner"
)

// job はワーカーが処理する動画生成1件分なのだ。
type job struct {
	kind  string
	epoch uint64
	index int
	done  chan error
}

// Run はジョブキューを1件ずつ処理するワーカーなのだ。
// ctx が終わるまでブロックし、終了後の投入は ErrStopped になるのだ。
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer o.stop.Do(func() { close(o.stopped) })

	slog.Info("Generation worker started")
	for {
		select {
		case <-ctx.Done():
			slog.Info("Generation worker stopped")
			o.stop.Do(func() { close(o.stopped) })
			o.drain(ctx.Err())
			return nil
		case j := <-o.jobs:
			if err := o.limiter.Wait(ctx); err != nil {
				o.fail(j, err)
				j.done <- err
				continue
			}
			j.done <- o.process(ctx, j)
		}
	}
}

// drain は停止時にキューに残ったジョブを失敗として終わらせるのだ。
func (o *Orchestrator) drain(cause error) {
	for {
		select {
		case j := <-o.jobs:
			o.fail(j, cause)
			j.done <- cause
		default:
			return
		}
	}
}

// enqueue はジョブをキューに積むのだ。
func (o *Orchestrator) enqueue(ctx context.Context, j job) error {
	select {
	case <-o.stopped:
		return ErrStopped
	default:
	}
	select {
	case o.jobs <- j:
		return nil
	case <-o.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// await はジョブの完了を待つのだ。
// ワーカーが止まって取り残されたジョブは失敗として終わらせるのだ。
func (o *Orchestrator) await(j job) error {
	select {
	case err := <-j.done:
		return err
	case <-o.stopped:
		select {
		case err := <-j.done:
			return err
		default:
		}
		o.abandon(j)
		return ErrStopped
	}
}

func (o *Orchestrator) abandon(j job) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.project == nil || o.epoch != j.epoch {
		return
	}
	next := o.project.Clone()
	st := o.stateOf(&next.Scenes[j.index], j.kind)
	if !st.IsActive() {
		return
	}
	o.replaceState(st, domain.Failed(failureMessage(j.kind)))
	o.installLocked(next)
}

// process はジョブを生成中にしてから Runner を呼び、結果を反映するのだ。
func (o *Orchestrator) process(ctx context.Context, j job) error {
	scene, characterDescription, err := o.begin(j)
	if err != nil {
		return err
	}

	number := scene.SceneNumber
	o.events.Info(fmt.Sprintf("Generating %s video for scene %d", j.kind, number), map[string]any{"scene": number, "kind": j.kind})

	var ref string
	if j.kind == runner.KindIdle {
		ref, err = o.video.RunIdle(ctx, scene, characterDescription)
	} else {
		ref, err = o.video.Run(ctx, scene, characterDescription)
	}
	o.finish(j, ref, err)

	if err != nil {
		o.events.Error(fmt.Sprintf("Scene %d %s video failed", number, j.kind), failureDetails(err, map[string]any{"scene": number, "kind": j.kind}))
		return err
	}
	o.events.Success(fmt.Sprintf("Scene %d %s video ready", number, j.kind), map[string]any{"scene": number, "kind": j.kind})
	return nil
}

func (o *Orchestrator) begin(j job) (domain.Scene, string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.project == nil || o.epoch != j.epoch {
		return domain.Scene{}, "", ErrProjectChanged
	}
	next := o.project.Clone()
	sc := &next.Scenes[j.index]
	o.replaceState(o.stateOf(sc, j.kind), domain.InProgress())
	o.installLocked(next)
	return sc.Clone(), next.CharacterDescription, nil
}

func (o *Orchestrator) finish(j job, ref string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.project == nil || o.epoch != j.epoch {
		o.release(ref)
		return
	}
	next := o.project.Clone()
	sc := &next.Scenes[j.index]
	state := domain.Ready(ref)
	if err != nil {
		state = domain.Failed(failureMessage(j.kind))
	}
	o.replaceState(o.stateOf(sc, j.kind), state)
	o.installLocked(next)
}

// fail はジョブを実行せずに失敗として終わらせるのだ。
func (o *Orchestrator) fail(j job, cause error) {
	o.finish(j, "", cause)
	o.events.Error("Video job aborted", failureDetails(cause, map[string]any{"index": j.index, "kind": j.kind}))
}

func (o *Orchestrator) stateOf(sc *domain.Scene, kind string) *domain.VideoState {
	if kind == runner.KindIdle {
		return &sc.Idle
	}
	return &sc.Video
}

func failureMessage(kind string) string {
	if kind == runner.KindIdle {
		return IdleFailureMessage
	}
	return SceneFailureMessage
}

func failureDetails(err error, extra map[string]any) map[string]any {
	return remote.Details(err, extra)
}

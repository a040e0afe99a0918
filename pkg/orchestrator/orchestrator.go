package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/eventlog"
)

const defaultQueueSize = 64

// Args は Orchestrator の依存関係なのだ。
type Args struct {
	Script  ScriptRunner
	Design  DesignRunner
	Preview PreviewRunner
	Video   VideoRunner
	// Blobs は差し替えで使われなくなった動画を解放するのだ。nil なら解放しないのだ。
	Blobs  Releaser
	Events *eventlog.Log
	// RateInterval はジョブの開始間隔の下限なのだ。0 以下なら制限しないのだ。
	RateInterval time.Duration
	// Now は作成時刻の取得に使うのだ。nil なら time.Now なのだ。
	Now func() time.Time
}

// Orchestrator はプロジェクトの状態を保持し、生成の流れを駆動するのだ。
// 状態は不変のスナップショットで、更新はコピーを丸ごと差し替えるのだ。
// 動画の生成は1本のワーカーが1件ずつ処理するのだ。
type Orchestrator struct {
	script  ScriptRunner
	design  DesignRunner
	preview PreviewRunner
	video   VideoRunner
	blobs   Releaser
	events  *eventlog.Log
	now     func() time.Time

	limiter *rate.Limiter
	group   singleflight.Group
	jobs    chan job
	running atomic.Bool
	stopped chan struct{}
	stop    sync.Once

	mu       sync.Mutex
	project  *domain.Project
	epoch    uint64
	watchers map[int]Watcher
	order    []int
	nextID   int
}

// New は Orchestrator を作るのだ。ワーカーは Run で起動するのだ。
func New(args Args) (*Orchestrator, error) {
	if args.Script == nil || args.Design == nil || args.Preview == nil || args.Video == nil {
		return nil, errors.New("Runner はすべて必須です")
	}
	events := args.Events
	if events == nil {
		events = eventlog.New(nil)
	}
	now := args.Now
	if now == nil {
		now = time.Now
	}
	limit := rate.Inf
	if args.RateInterval > 0 {
		limit = rate.Every(args.RateInterval)
	}

	return &Orchestrator{
		script:   args.Script,
		design:   args.Design,
		preview:  args.Preview,
		video:    args.Video,
		blobs:    args.Blobs,
		events:   events,
		now:      now,
		limiter:  rate.NewLimiter(limit, 1),
		jobs:     make(chan job, defaultQueueSize),
		stopped:  make(chan struct{}),
		watchers: make(map[int]Watcher),
	}, nil
}

// Events は記録先のイベントログなのだ。
func (o *Orchestrator) Events() *eventlog.Log { return o.events }

// Project は現在のプロジェクトのコピーを返すのだ。無ければ nil なのだ。
func (o *Orchestrator) Project() *domain.Project {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.project.Clone()
}

// Watch は現在のスナップショットを即座に渡し、以降の差し替えも通知するのだ。
func (o *Orchestrator) Watch(fn Watcher) (cancel func()) {
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.watchers[id] = fn
	o.order = append(o.order, id)
	fn(o.project.Clone())
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.watchers, id)
			for i, v := range o.order {
				if v == id {
					o.order = append(o.order[:i], o.order[i+1:]...)
					break
				}
			}
		})
	}
}

// CreateProject はトピックから台本を生成し、新しいプロジェクトとして差し替えるのだ。
// 失敗した場合は現在のプロジェクトをそのまま残すのだ。
func (o *Orchestrator) CreateProject(ctx context.Context, topic, characterDescription string) (*domain.Project, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	characterDescription = strings.TrimSpace(characterDescription)
	ctx = context.WithoutCancel(ctx)

	o.events.Info("Generating script", map[string]any{"topic": topic})
	scenes, err := o.script.Run(ctx, topic, characterDescription)
	if err != nil {
		o.events.Error("Script generation failed", failureDetails(err, map[string]any{"topic": topic}))
		return nil, err
	}

	p, err := domain.NewProject(topic, characterDescription, scenes, o.now())
	if err != nil {
		o.events.Error("Script generation returned an invalid script", failureDetails(err, map[string]any{"topic": topic}))
		return nil, fmt.Errorf("台本の検証に失敗しました: %w", err)
	}

	o.mu.Lock()
	old := o.project
	o.epoch++
	o.installLocked(p)
	o.mu.Unlock()
	o.releaseProject(old)

	o.events.Success("Script created", map[string]any{"project": p.ID, "scenes": len(p.Scenes)})
	return p.Clone(), nil
}

// UpdateScene はエディタからの変更をシーンに適用するのだ。動画の状態は変えないのだ。
func (o *Orchestrator) UpdateScene(index int, patch domain.ScenePatch) (*domain.Project, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := o.cloneForSceneLocked(index)
	if err != nil {
		return nil, err
	}
	patch.Apply(&next.Scenes[index])
	o.installLocked(next)
	return next.Clone(), nil
}

// UpdateCharacterDescription はキャラクターの説明を差し替えるのだ。
func (o *Orchestrator) UpdateCharacterDescription(description string) (*domain.Project, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.project == nil {
		return nil, ErrNoProject
	}
	next := o.project.Clone()
	next.CharacterDescription = strings.TrimSpace(description)
	o.installLocked(next)
	return next.Clone(), nil
}

// Close は現在のプロジェクトを破棄し、保持している動画を解放するのだ。
// 生成待ちのジョブは実行時に破棄されるのだ。
func (o *Orchestrator) Close() {
	o.mu.Lock()
	old := o.project
	if old == nil {
		o.mu.Unlock()
		return
	}
	o.epoch++
	o.installLocked(nil)
	o.mu.Unlock()

	o.releaseProject(old)
	o.events.Info("Project closed", map[string]any{"project": old.ID})
}

// installLocked はスナップショットを差し替えて Watcher に通知するのだ。
func (o *Orchestrator) installLocked(p *domain.Project) {
	o.project = p
	for _, id := range o.order {
		o.watchers[id](p.Clone())
	}
}

func (o *Orchestrator) cloneForSceneLocked(index int) (*domain.Project, error) {
	if o.project == nil {
		return nil, ErrNoProject
	}
	if index < 0 || index >= len(o.project.Scenes) {
		return nil, fmt.Errorf("%w: %d", ErrSceneIndex, index)
	}
	return o.project.Clone(), nil
}

// replaceState は状態を差し替え、使われなくなった動画を解放するのだ。
func (o *Orchestrator) replaceState(current *domain.VideoState, next domain.VideoState) {
	old := *current
	*current = next
	if old.IsReady() && old.Locator() != next.Locator() {
		o.release(old.Locator())
	}
}

func (o *Orchestrator) release(ref string) {
	if o.blobs != nil && ref != "" {
		o.blobs.Release(ref)
	}
}

func (o *Orchestrator) releaseProject(p *domain.Project) {
	if p == nil {
		return
	}
	for _, s := range p.Scenes {
		o.release(s.Video.Locator())
		o.release(s.Idle.Locator())
	}
}

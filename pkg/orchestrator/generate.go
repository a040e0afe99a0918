package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/runner"
)

// BatchResult は一括生成の結果なのだ。
type BatchResult struct {
	// AlreadyComplete はすべてのシーンが動画を持っていて何もしなかったことを表すのだ。
	AlreadyComplete bool `json:"alreadyComplete"`
	Queued          int  `json:"queued"`
	Completed       int  `json:"completed"`
	Failed          int  `json:"failed"`
	// InFlight は別の要求ですでに生成待ちか生成中だったため選ばなかったシーン数なのだ。
	InFlight int `json:"inFlight,omitempty"`
}

// GenerateAllVideos は動画を持たないシーンをすべて生成待ちにしてから、1件ずつ順に生成するのだ。
// 1シーンの失敗で一括処理は止まらないのだ。
func (o *Orchestrator) GenerateAllVideos(ctx context.Context) (BatchResult, error) {
	ctx = context.WithoutCancel(ctx)

	o.mu.Lock()
	if o.project == nil {
		o.mu.Unlock()
		return BatchResult{}, ErrNoProject
	}
	var selected []int
	inFlight := 0
	for _, i := range o.project.MissingVideos() {
		if o.project.Scenes[i].Video.IsActive() {
			inFlight++
			continue
		}
		selected = append(selected, i)
	}
	if len(selected) == 0 {
		o.mu.Unlock()
		if inFlight == 0 {
			o.events.Info("All scenes already have videos", nil)
			return BatchResult{AlreadyComplete: true}, nil
		}
		return BatchResult{InFlight: inFlight}, nil
	}
	next := o.project.Clone()
	for _, i := range selected {
		o.replaceState(&next.Scenes[i].Video, domain.Queued())
	}
	epoch := o.epoch
	o.installLocked(next)
	o.mu.Unlock()

	result := BatchResult{Queued: len(selected), InFlight: inFlight}
	o.events.Info("Batch video generation queued", map[string]any{"scenes": len(selected)})

	jobs := make([]job, 0, len(selected))
	for _, i := range selected {
		j := job{kind: runner.KindPrimary, epoch: epoch, index: i, done: make(chan error, 1)}
		if err := o.enqueue(ctx, j); err != nil {
			o.fail(j, err)
			result.Failed++
			continue
		}
		jobs = append(jobs, j)
	}
	for _, j := range jobs {
		if err := o.await(j); err != nil {
			result.Failed++
		} else {
			result.Completed++
		}
	}

	details := map[string]any{"completed": result.Completed, "failed": result.Failed}
	if result.Failed > 0 {
		o.events.Warn("Batch video generation finished with failures", details)
	} else {
		o.events.Success("Batch video generation finished", details)
	}
	return result, nil
}

// GenerateSceneVideo は1シーンのメイン動画を生成するのだ。完成済みや失敗したシーンの再生成にも使うのだ。
func (o *Orchestrator) GenerateSceneVideo(ctx context.Context, index int) error {
	return o.generateOne(ctx, runner.KindPrimary, index)
}

// GenerateIdleVideo は1シーンの待機ループ動画を生成するのだ。メイン動画の状態には触れないのだ。
func (o *Orchestrator) GenerateIdleVideo(ctx context.Context, index int) error {
	return o.generateOne(ctx, runner.KindIdle, index)
}

func (o *Orchestrator) generateOne(ctx context.Context, kind string, index int) error {
	ctx = context.WithoutCancel(ctx)
	key := fmt.Sprintf("%d/%s/%d", o.currentEpoch(), kind, index)
	_, err, _ := o.group.Do(key, func() (any, error) {
		j, err := o.submit(kind, index)
		if err != nil {
			return nil, err
		}
		if err := o.enqueue(ctx, j); err != nil {
			o.fail(j, err)
			return nil, err
		}
		return nil, o.await(j)
	})
	return err
}

// submit はジョブを作り、シーンを生成中にするのだ。生成待ちは一括生成だけが使うのだ。
func (o *Orchestrator) submit(kind string, index int) (job, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := o.cloneForSceneLocked(index)
	if err != nil {
		return job{}, err
	}
	st := o.stateOf(&next.Scenes[index], kind)
	if st.IsActive() {
		return job{}, ErrSceneBusy
	}
	o.replaceState(st, domain.InProgress())
	o.installLocked(next)
	return job{kind: kind, epoch: o.epoch, index: index, done: make(chan error, 1)}, nil
}

// GenerateScenePreview はシーンの静止画プレビューを生成し、previewImageUrl だけを更新するのだ。
// 失敗は記録して返すが、シーンの状態は変えないのだ。
func (o *Orchestrator) GenerateScenePreview(ctx context.Context, index int) (string, error) {
	ctx = context.WithoutCancel(ctx)

	o.mu.Lock()
	snapshot, err := o.cloneForSceneLocked(index)
	epoch := o.epoch
	o.mu.Unlock()
	if err != nil {
		return "", err
	}
	scene := snapshot.Scenes[index]

	v, err, _ := o.group.Do(fmt.Sprintf("%d/preview/%d", epoch, index), func() (any, error) {
		return o.preview.Run(ctx, scene, snapshot.CharacterDescription)
	})
	if err != nil {
		o.events.Error(fmt.Sprintf("Preview image failed for scene %d", scene.SceneNumber),
			failureDetails(err, map[string]any{"scene": scene.SceneNumber, "kind": "preview"}))
		return "", err
	}
	ref := v.(string)

	o.mu.Lock()
	if o.project != nil && o.epoch == epoch {
		next := o.project.Clone()
		next.Scenes[index].PreviewImageURL = ref
		o.installLocked(next)
	}
	o.mu.Unlock()

	o.events.Success(fmt.Sprintf("Preview image ready for scene %d", scene.SceneNumber), map[string]any{"scene": scene.SceneNumber})
	return ref, nil
}

// GenerateCharacterPreview はキャラクターのリファレンス画像を生成するのだ。
// 開始時のプロジェクトがまだ開いていれば characterImageUrl も差し替えるのだ。
func (o *Orchestrator) GenerateCharacterPreview(ctx context.Context, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", ErrEmptyCharacter
	}
	ctx = context.WithoutCancel(ctx)
	epoch := o.currentEpoch()

	v, err, _ := o.group.Do(fmt.Sprintf("%d/character/%s", epoch, description), func() (any, error) {
		return o.design.Run(ctx, description)
	})
	if err != nil {
		o.events.Error("Character preview failed", failureDetails(err, map[string]any{"kind": "character"}))
		return "", err
	}
	ref := v.(string)

	o.mu.Lock()
	if o.project != nil && o.epoch == epoch {
		next := o.project.Clone()
		next.CharacterImageURL = ref
		o.installLocked(next)
	}
	o.mu.Unlock()

	o.events.Success("Character preview ready", nil)
	return ref, nil
}

func (o *Orchestrator) currentEpoch() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.epoch
}

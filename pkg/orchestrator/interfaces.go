package orchestrator

import (
	"context"

	"github.com/shouni/go-shorts-kit/pkg/domain"
)

// ScriptRunner はトピックから draft のシーン列を作るのだ。
type ScriptRunner interface {
	Run(ctx context.Context, topic, characterDescription string) ([]domain.Scene, error)
}

// DesignRunner はキャラクターのリファレンス画像を作り、参照を返すのだ。
type DesignRunner interface {
	Run(ctx context.Context, characterDescription string) (string, error)
}

// PreviewRunner はシーンの静止画プレビューを作り、参照を返すのだ。
type PreviewRunner interface {
	Run(ctx context.Context, scene domain.Scene, characterDescription string) (string, error)
}

// VideoRunner はシーンのメイン動画と待機ループ動画を作り、参照を返すのだ。
type VideoRunner interface {
	Run(ctx context.Context, scene domain.Scene, characterDescription string) (string, error)
	RunIdle(ctx context.Context, scene domain.Scene, characterDescription string) (string, error)
}

// Releaser は使われなくなった動画の参照を解放するのだ。
type Releaser interface {
	Release(ref string)
}

// Watcher はプロジェクトのスナップショットが差し替わるたびに呼ばれるのだ。
// プロジェクトが閉じられたときは nil を受け取るのだ。
// Watcher の中から Orchestrator のメソッドを呼んではいけないのだ。
type Watcher func(*domain.Project)

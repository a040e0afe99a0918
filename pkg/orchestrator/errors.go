package orchestrator

import "errors"

var (
	// ErrNoProject は操作対象のプロジェクトが無い場合のエラーなのだ。
	ErrNoProject = errors.New("プロジェクトがありません。先に台本を作成してください")
	// ErrSceneIndex はシーンのインデックスが範囲外の場合のエラーなのだ。
	ErrSceneIndex = errors.New("シーンのインデックスが範囲外です")
	// ErrEmptyTopic はトピックが空の場合のエラーなのだ。
	ErrEmptyTopic = errors.New("トピックを入力してください")
	// ErrEmptyCharacter はキャラクターの説明が空の場合のエラーなのだ。
	ErrEmptyCharacter = errors.New("キャラクターの説明を入力してください")
	// ErrSceneBusy は同じシーンの同じ種類の動画がすでに生成待ちか生成中の場合のエラーなのだ。
	ErrSceneBusy = errors.New("このシーンはすでに生成待ちか生成中です")
	// ErrProjectChanged はジョブの実行前にプロジェクトが差し替えられた場合のエラーなのだ。
	ErrProjectChanged = errors.New("project was replaced while the job was pending")
	// ErrStopped はワーカーが停止している場合のエラーなのだ。
	ErrStopped = errors.New("generation worker is not running")
	// ErrAlreadyRunning は Run が二重に呼ばれた場合のエラーなのだ。
	ErrAlreadyRunning = errors.New("generation worker is already running")
)

const (
	// SceneFailureMessage は生成に失敗したシーンに表示する固定のメッセージなのだ。
	// 詳しい原因はイベントログに記録するのだ。
	SceneFailureMessage = "Video generation failed. Check the logs and try again."
	// IdleFailureMessage は待機ループの生成に失敗したときの固定のメッセージなのだ。
	IdleFailureMessage = "Idle loop generation failed. Check the logs and try again."
)

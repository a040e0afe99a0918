package domain

// Status は動画生成のライフサイクルを表す状態名なのだ。
type Status string

const (
	StatusDraft      Status = "draft"
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// missingLocatorReason は空のロケーターで Ready を作ろうとした場合の失敗理由なのだ。
const missingLocatorReason = "video reference is empty"

// VideoState は1本の動画の状態なのだ。
// フィールドは非公開で、コンストラクタ経由でしか作れないのだ。
// ロケーターを持つのは Ready だけ、理由を持つのは Failed だけなのだ。
// ゼロ値は NotStarted と同じ扱いなのだ。
type VideoState struct {
	status  Status
	locator string
	reason  string
}

// NotStarted はまだ何も依頼されていない状態 (draft) なのだ。
func NotStarted() VideoState { return VideoState{status: StatusDraft} }

// Queued はバッチの待ち行列に入った状態 (pending) なのだ。
func Queued() VideoState { return VideoState{status: StatusPending} }

// InProgress はワーカーが処理中の状態 (generating) なのだ。
func InProgress() VideoState { return VideoState{status: StatusGenerating} }

// Ready は生成済みの動画を指すロケーターを持つ状態 (completed) なのだ。
// 空のロケーターは Failed に落とすのだ。
func Ready(locator string) VideoState {
	if locator == "" {
		return Failed(missingLocatorReason)
	}
	return VideoState{status: StatusCompleted, locator: locator}
}

// Failed は失敗理由を持つ状態 (error) なのだ。
func Failed(reason string) VideoState {
	return VideoState{status: StatusError, reason: reason}
}

// Status は状態名を返すのだ。
func (v VideoState) Status() Status {
	if v.status == "" {
		return StatusDraft
	}
	return v.status
}

// Locator は Ready のときだけ空でない値を返すのだ。
func (v VideoState) Locator() string { return v.locator }

// Reason は Failed のときだけ空でない値を返すのだ。
func (v VideoState) Reason() string { return v.reason }

// IsReady reports whether a playable video is attached.
func (v VideoState) IsReady() bool { return v.Status() == StatusCompleted }

// IsActive は待ち行列にいるか処理中なら true なのだ。
func (v VideoState) IsActive() bool {
	s := v.Status()
	return s == StatusPending || s == StatusGenerating
}

// IsTerminal は completed か error なら true なのだ。
func (v VideoState) IsTerminal() bool {
	s := v.Status()
	return s == StatusCompleted || s == StatusError
}

// restoreState はエクスポートされた JSON の平坦なフィールドから状態を組み立て直すのだ。
func restoreState(status Status, locator, reason string) VideoState {
	switch status {
	case StatusPending:
		return Queued()
	case StatusGenerating:
		return InProgress()
	case StatusCompleted:
		return Ready(locator)
	case StatusError:
		return Failed(reason)
	default:
		return NotStarted()
	}
}

package remote

import (
	"context"
	"time"
)

// Clock は待機のための時計なのだ。テストでは偽物に差し替えるのだ。
type Clock interface {
	After(d time.Duration) <-chan time.Time
}

type realClock struct{}

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// RealClock は time.After を使う本物の時計なのだ。
var RealClock Clock = realClock{}

// PollUntil は done が true を返すまで interval ごとに fetch を繰り返すのだ。
// 最初に current を判定し、未完了なら待ってから取り直すのだ。
// 待機中は他に何もしないのだ。
func PollUntil[T any](
	ctx context.Context,
	clock Clock,
	interval time.Duration,
	current T,
	fetch func(context.Context, T) (T, error),
	done func(T) bool,
) (T, error) {
	for !done(current) {
		select {
		case <-ctx.Done():
			return current, ctx.Err()
		case <-clock.After(interval):
		}

		next, err := fetch(ctx, current)
		if err != nil {
			return current, err
		}
		current = next
	}
	return current, nil
}

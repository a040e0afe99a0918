package eventlog

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newTestLog() (*Log, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	return New(logger), &buf
}

func TestLog_SubscribeReplaysHistory(t *testing.T) {
	l, _ := newTestLog()
	l.Info("first", nil)
	l.Warn("second", nil)

	var got []string
	unsubscribe := l.Subscribe(func(e Entry) { got = append(got, e.Message) })

	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("履歴が元の順番で再生されていないのだ: %v", got)
	}

	l.Success("third", nil)
	if len(got) != 3 || got[2] != "third" {
		t.Fatalf("新しいエントリがライブで届いていないのだ: %v", got)
	}

	unsubscribe()
	unsubscribe()
	l.Info("fourth", nil)
	if len(got) != 3 {
		t.Errorf("購読解除後にも届いているのだ: %v", got)
	}
}

func TestLog_ClearRecordsClearedEntry(t *testing.T) {
	l, _ := newTestLog()
	l.Error("boom", map[string]any{"scene": 1})

	var live []Entry
	l.Subscribe(func(e Entry) { live = append(live, e) })

	l.Clear()

	entries := l.Entries()
	if len(entries) != 1 || entries[0].Message != ClearedMessage {
		t.Fatalf("クリア後はクリアのエントリだけが残るはずなのだ: %+v", entries)
	}
	if last := live[len(live)-1]; last.Message != ClearedMessage {
		t.Errorf("購読者にクリアが通知されていないのだ: %+v", last)
	}
}

func TestLog_EntriesHaveUniqueIDs(t *testing.T) {
	l, _ := newTestLog()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		e := l.Info("x", nil)
		if e.ID == "" || seen[e.ID] {
			t.Fatalf("ID が空か重複しているのだ: %q", e.ID)
		}
		seen[e.ID] = true
		if e.Timestamp.IsZero() {
			t.Fatal("タイムスタンプが入っていないのだ")
		}
	}
}

func TestLog_MirrorsToSlog(t *testing.T) {
	l, buf := newTestLog()
	l.Error("video failed", map[string]any{"kind": "transport"})

	out := buf.String()
	if !strings.Contains(out, "level=ERROR") || !strings.Contains(out, "video failed") {
		t.Errorf("slog に流れていないのだ: %s", out)
	}
}

func TestLog_UnsubscribeKeepsOtherListeners(t *testing.T) {
	l, _ := newTestLog()
	var a, b int
	unsubA := l.Subscribe(func(Entry) { a++ })
	l.Subscribe(func(Entry) { b++ })

	unsubA()
	l.Info("x", nil)
	if a != 0 || b != 1 {
		t.Errorf("a=%d b=%d", a, b)
	}
}

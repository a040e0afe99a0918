package eventlog

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level はログエントリの重要度なのだ。
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
	LevelSuccess Level = "success"
)

// ClearedMessage は Clear の直後に必ず記録されるエントリのメッセージなのだ。
const ClearedMessage = "Log cleared"

// Entry は1件のログエントリなのだ。
type Entry struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
}

// Listener は新しいエントリを受け取るコールバックなのだ。
// Listener の中から Log のメソッドを呼んではいけないのだ。
type Listener func(Entry)

// Log はプロセス全体で共有する追記専用の publish/subscribe ログなのだ。
// 起動時に1つだけ作り、必要なコンポーネントへ参照で渡すのだ。
type Log struct {
	mu        sync.Mutex
	entries   []Entry
	listeners map[int]Listener
	order     []int
	nextID    int
	logger    *slog.Logger
	now       func() time.Time
}

// New は空の Log を作るのだ。logger が nil なら slog.Default を使うのだ。
func New(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{
		listeners: make(map[int]Listener),
		logger:    logger,
		now:       time.Now,
	}
}

// Record はエントリを追記し、購読者全員に同期的に通知し、slog にも流すのだ。
func (l *Log) Record(level Level, message string, details map[string]any) Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.recordLocked(level, message, details)
}

func (l *Log) recordLocked(level Level, message string, details map[string]any) Entry {
	entry := Entry{
		ID:        uuid.NewString(),
		Timestamp: l.now(),
		Level:     level,
		Message:   message,
		Details:   details,
	}
	l.entries = append(l.entries, entry)

	for _, id := range l.order {
		l.listeners[id](entry)
	}

	l.mirror(entry)
	return entry
}

// mirror はエントリを診断用ストリーム (slog) に書き出すのだ。
func (l *Log) mirror(entry Entry) {
	attrs := []any{slog.String("log_id", entry.ID)}
	if len(entry.Details) > 0 {
		attrs = append(attrs, slog.Any("details", entry.Details))
	}

	var lvl slog.Level
	switch entry.Level {
	case LevelWarn:
		lvl = slog.LevelWarn
	case LevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	if entry.Level == LevelSuccess {
		attrs = append(attrs, slog.Bool("success", true))
	}
	l.logger.Log(context.Background(), lvl, entry.Message, attrs...)
}

// Info records an info entry.
func (l *Log) Info(message string, details map[string]any) Entry {
	return l.Record(LevelInfo, message, details)
}

// Warn records a warn entry.
func (l *Log) Warn(message string, details map[string]any) Entry {
	return l.Record(LevelWarn, message, details)
}

// Error records an error entry.
func (l *Log) Error(message string, details map[string]any) Entry {
	return l.Record(LevelError, message, details)
}

// Success records a success entry.
func (l *Log) Success(message string, details map[string]any) Entry {
	return l.Record(LevelSuccess, message, details)
}

// Subscribe は listener を登録し、まず既存の履歴を元の順番で全部渡してから
// 以降のエントリをライブで届けるのだ。戻り値の関数で購読を解除できるのだ。
func (l *Log) Subscribe(listener Listener) (unsubscribe func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		listener(entry)
	}

	id := l.nextID
	l.nextID++
	l.listeners[id] = listener
	l.order = append(l.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.listeners, id)
			for i, v := range l.order {
				if v == id {
					l.order = append(l.order[:i:i], l.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Clear は履歴を捨てた直後に「クリアした」エントリを1件記録するのだ。
// 黙って空になることは無いのだ。
func (l *Log) Clear() Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	return l.recordLocked(LevelInfo, ClearedMessage, nil)
}

// Entries は現在の履歴のコピーを返すのだ。
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

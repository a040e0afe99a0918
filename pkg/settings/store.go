package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	appDirName      = "go-shorts-kit"
	settingsFile    = "settings.yaml"
	settingsDirPerm = 0o700
	settingsPerm    = 0o600
)

// Settings はローカルに永続化されるユーザー設定なのだ。
type Settings struct {
	// GeminiAPIKey は環境変数の既定値より優先される認証情報の上書きなのだ。
	GeminiAPIKey string `yaml:"gemini_api_key,omitempty"`
	// ShowDiagnostics は診断ログパネルの表示トグルなのだ。
	ShowDiagnostics bool `yaml:"show_diagnostics"`
}

// Store は設定ファイルの読み書きを行うのだ。
// 読み込みは毎回ファイルから行い、メモリにはキャッシュしないのだ。
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore は指定パスの設定ファイルを扱う Store を作るのだ。
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath はユーザー設定ディレクトリ配下の既定パスを返すのだ。
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("設定ディレクトリの特定に失敗しました: %w", err)
	}
	return filepath.Join(dir, appDirName, settingsFile), nil
}

// Path は設定ファイルのパスなのだ。
func (s *Store) Path() string { return s.path }

// Load は設定を読み込むのだ。ファイルが無ければゼロ値を返すのだ。
func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Settings, error) {
	var st Settings
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("設定ファイルの読み込みに失敗しました: %w", err)
	}
	if err := yaml.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("設定ファイルのパースに失敗しました (%s): %w", s.path, err)
	}
	return st, nil
}

// Save は設定を書き込むのだ。
func (s *Store) Save(st Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(st)
}

func (s *Store) save(st Settings) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("設定のエンコードに失敗しました: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), settingsDirPerm); err != nil {
		return fmt.Errorf("設定ディレクトリの作成に失敗しました: %w", err)
	}
	if err := os.WriteFile(s.path, data, settingsPerm); err != nil {
		return fmt.Errorf("設定ファイルの書き込みに失敗しました: %w", err)
	}
	return nil
}

func (s *Store) update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := s.load()
	if err != nil {
		return err
	}
	fn(&st)
	return s.save(st)
}

// APIKeyOverride は保存された認証情報の上書きを返すのだ。未設定なら空文字なのだ。
func (s *Store) APIKeyOverride() (string, error) {
	st, err := s.Load()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(st.GeminiAPIKey), nil
}

// SetAPIKey は認証情報の上書きを保存するのだ。空文字なら削除するのだ。
func (s *Store) SetAPIKey(key string) error {
	return s.update(func(st *Settings) { st.GeminiAPIKey = strings.TrimSpace(key) })
}

// SetShowDiagnostics は診断ログ表示のトグルを保存するのだ。
func (s *Store) SetShowDiagnostics(show bool) error {
	return s.update(func(st *Settings) { st.ShowDiagnostics = show })
}

// MaskKey は画面表示用に認証情報の末尾4文字以外を伏せるのだ。
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

package domain

import (
	"encoding/json"
	"strings"
)

// DefaultIdleDescription はシーンに待機ループの説明が無いときに使う説明文なのだ。
const DefaultIdleDescription = "The character stands still in a relaxed idle pose, breathing gently and blinking naturally, " +
	"with subtle natural movement. Seamless loop, the last frame matches the first frame."

// ScriptScene は台本生成 API が返す1シーン分のレコードなのだ。
// 全フィールドが必須のスキーマに対応しているのだ。
type ScriptScene struct {
	SceneNumber     int       `json:"scene_number"`
	DurationSeconds float64   `json:"duration_seconds"`
	Description     string    `json:"description"`
	Character       Character `json:"character"`
	Background      string    `json:"background"`
	Audio           string    `json:"audio"`
	Dialogue        string    `json:"dialogue"`
}

// Hydrate は台本のレコードを draft 状態の Scene に変換するのだ。
func (s ScriptScene) Hydrate() Scene {
	return Scene{
		SceneNumber:     s.SceneNumber,
		DurationSeconds: s.DurationSeconds,
		Description:     s.Description,
		Character:       s.Character.Clone(),
		Background:      s.Background,
		Audio:           s.Audio,
		Dialogue:        s.Dialogue,
		Video:           NotStarted(),
		IdleDescription: DefaultIdleDescription,
		Idle:            NotStarted(),
	}
}

// Scene はストーリーボードの1区間で、短い動画クリップ1本と編集可能な台本情報を持つのだ。
// Video (メイン) と Idle (待機ループ) の状態は互いに独立しているのだ。
type Scene struct {
	SceneNumber     int
	DurationSeconds float64
	Description     string
	Character       Character
	Background      string
	Audio           string
	Dialogue        string

	Video           VideoState
	PreviewImageURL string

	IdleDescription string
	Idle            VideoState
}

// Clone は Scene のディープコピーを返すのだ。
func (s Scene) Clone() Scene {
	copied := s
	copied.Character = s.Character.Clone()
	return copied
}

// IdlePrompt は待機ループ生成に使う説明文を返すのだ。
func (s Scene) IdlePrompt() string {
	if d := strings.TrimSpace(s.IdleDescription); d != "" {
		return d
	}
	return DefaultIdleDescription
}

// sceneJSON はエクスポート用の平坦な JSON 形式なのだ。
type sceneJSON struct {
	SceneNumber      int       `json:"scene_number"`
	DurationSeconds  float64   `json:"duration_seconds"`
	Description      string    `json:"description"`
	Character        Character `json:"character"`
	Background       string    `json:"background"`
	Audio            string    `json:"audio"`
	Dialogue         string    `json:"dialogue"`
	Status           Status    `json:"status"`
	VideoURL         string    `json:"videoUrl,omitempty"`
	ErrorMessage     string    `json:"errorMessage,omitempty"`
	PreviewImageURL  string    `json:"previewImageUrl,omitempty"`
	IdleDescription  string    `json:"idleDescription,omitempty"`
	IdleStatus       Status    `json:"idleStatus"`
	IdleVideoURL     string    `json:"idleVideoUrl,omitempty"`
	IdleErrorMessage string    `json:"idleErrorMessage,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s Scene) MarshalJSON() ([]byte, error) {
	return json.Marshal(sceneJSON{
		SceneNumber:      s.SceneNumber,
		DurationSeconds:  s.DurationSeconds,
		Description:      s.Description,
		Character:        s.Character,
		Background:       s.Background,
		Audio:            s.Audio,
		Dialogue:         s.Dialogue,
		Status:           s.Video.Status(),
		VideoURL:         s.Video.Locator(),
		ErrorMessage:     s.Video.Reason(),
		PreviewImageURL:  s.PreviewImageURL,
		IdleDescription:  s.IdleDescription,
		IdleStatus:       s.Idle.Status(),
		IdleVideoURL:     s.Idle.Locator(),
		IdleErrorMessage: s.Idle.Reason(),
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Scene) UnmarshalJSON(data []byte) error {
	var raw sceneJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Scene{
		SceneNumber:     raw.SceneNumber,
		DurationSeconds: raw.DurationSeconds,
		Description:     raw.Description,
		Character:       raw.Character,
		Background:      raw.Background,
		Audio:           raw.Audio,
		Dialogue:        raw.Dialogue,
		Video:           restoreState(raw.Status, raw.VideoURL, raw.ErrorMessage),
		PreviewImageURL: raw.PreviewImageURL,
		IdleDescription: raw.IdleDescription,
		Idle:            restoreState(raw.IdleStatus, raw.IdleVideoURL, raw.IdleErrorMessage),
	}
	return nil
}

// ScenePatch はエディタからの部分更新なのだ。nil のフィールドは変更しないのだ。
// 動画の状態はここからは変更できないのだ。
type ScenePatch struct {
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`
	Description     *string   `json:"description,omitempty"`
	CharacterName   *string   `json:"character_name,omitempty"`
	Pose            *string   `json:"pose,omitempty"`
	Expression      *string   `json:"expression,omitempty"`
	Actions         *[]string `json:"actions,omitempty"`
	Background      *string   `json:"background,omitempty"`
	Audio           *string   `json:"audio,omitempty"`
	Dialogue        *string   `json:"dialogue,omitempty"`
	IdleDescription *string   `json:"idle_description,omitempty"`
}

// Apply はパッチを Scene に適用するのだ。
func (p ScenePatch) Apply(s *Scene) {
	if p.DurationSeconds != nil {
		s.DurationSeconds = *p.DurationSeconds
	}
	if p.Description != nil {
		s.Description = *p.Description
	}
	if p.CharacterName != nil {
		s.Character.Name = *p.CharacterName
	}
	if p.Pose != nil {
		s.Character.Pose = *p.Pose
	}
	if p.Expression != nil {
		s.Character.Expression = *p.Expression
	}
	if p.Actions != nil {
		s.Character.Actions = append([]string(nil), (*p.Actions)...)
	}
	if p.Background != nil {
		s.Background = *p.Background
	}
	if p.Audio != nil {
		s.Audio = *p.Audio
	}
	if p.Dialogue != nil {
		s.Dialogue = *p.Dialogue
	}
	if p.IdleDescription != nil {
		s.IdleDescription = *p.IdleDescription
	}
}

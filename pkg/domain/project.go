package domain

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ErrInvalidScript は台本のシーン列が不変条件を満たさない場合のエラーなのだ。
var ErrInvalidScript = errors.New("invalid script")

// Project は作業単位のトップレベルなのだ。
// Scenes の順序は台本生成時に決まり、その後の並べ替え・挿入・削除はできないのだ。
type Project struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Topic                string    `json:"topic"`
	CharacterDescription string    `json:"characterDescription"`
	CharacterImageURL    string    `json:"characterImageUrl,omitempty"`
	Scenes               []Scene   `json:"scenes"`
	CreatedAt            time.Time `json:"createdAt"`
}

// NewProject は台本生成の結果から Project を組み立てるのだ。
// ID は作成時刻 (Unix ミリ秒) から導出するのだ。
func NewProject(topic, characterDescription string, scenes []Scene, now time.Time) (*Project, error) {
	p := &Project{
		ID:                   strconv.FormatInt(now.UnixMilli(), 10),
		Name:                 topic,
		Topic:                topic,
		CharacterDescription: characterDescription,
		Scenes:               scenes,
		CreatedAt:            now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate は Scenes が空でなく、scene_number が 1 から始まり単調増加であることを確認するのだ。
func (p *Project) Validate() error {
	if len(p.Scenes) == 0 {
		return fmt.Errorf("%w: シーンが1つもありません", ErrInvalidScript)
	}
	for i, s := range p.Scenes {
		if i == 0 && s.SceneNumber != 1 {
			return fmt.Errorf("%w: 最初のシーン番号が 1 ではありません (got %d)", ErrInvalidScript, s.SceneNumber)
		}
		if i > 0 && s.SceneNumber <= p.Scenes[i-1].SceneNumber {
			return fmt.Errorf("%w: シーン番号が単調増加していません (%d -> %d)", ErrInvalidScript, p.Scenes[i-1].SceneNumber, s.SceneNumber)
		}
	}
	return nil
}

// Clone は Project 全体のディープコピーを返すのだ。
// 状態の更新はコピーを書き換えて丸ごと差し替える形で行うのだ。
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	copied := *p
	copied.Scenes = make([]Scene, len(p.Scenes))
	for i, s := range p.Scenes {
		copied.Scenes[i] = s.Clone()
	}
	return &copied
}

// Scene は index 番目のシーンを返すのだ。
func (p *Project) Scene(index int) (Scene, bool) {
	if index < 0 || index >= len(p.Scenes) {
		return Scene{}, false
	}
	return p.Scenes[index], true
}

// MissingVideos はメイン動画の参照を持たないシーンのインデックスを返すのだ。
func (p *Project) MissingVideos() []int {
	var indices []int
	for i, s := range p.Scenes {
		if s.Video.Locator() == "" {
			indices = append(indices, i)
		}
	}
	return indices
}

// Timeline はシーン順に並んだメイン動画の状態一覧なのだ。
func (p *Project) Timeline() []Status {
	statuses := make([]Status, len(p.Scenes))
	for i, s := range p.Scenes {
		statuses[i] = s.Video.Status()
	}
	return statuses
}

// Playlist は通し再生の対象となる completed のシーンだけを順番に返すのだ。
func (p *Project) Playlist() []Scene {
	var scenes []Scene
	for _, s := range p.Scenes {
		if s.Video.IsReady() {
			scenes = append(scenes, s)
		}
	}
	return scenes
}

// TotalDuration は Playlist の合計秒数なのだ。
func (p *Project) TotalDuration() float64 {
	var total float64
	for _, s := range p.Playlist() {
		total += s.DurationSeconds
	}
	return total
}

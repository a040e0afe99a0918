package domain

import (
	"fmt"
	"strings"
)

// Character は1シーン分のキャラクターの演技指示を保持するのだ。
// 形は固定で、変わるのはフィールドの値だけなのだ。
type Character struct {
	Name       string   `json:"name"`
	Pose       string   `json:"pose"`
	Expression string   `json:"expression"`
	Actions    []string `json:"actions"`
}

// Clone は Actions スライスまで含めたコピーを返すのだ。
func (c Character) Clone() Character {
	copied := c
	if c.Actions != nil {
		copied.Actions = make([]string, len(c.Actions))
		copy(copied.Actions, c.Actions)
	}
	return copied
}

// ActionSummary は動作のリストをプロンプト用の1行にまとめるのだ。
func (c Character) ActionSummary() string {
	actions := make([]string, 0, len(c.Actions))
	for _, a := range c.Actions {
		if a = strings.TrimSpace(a); a != "" {
			actions = append(actions, a)
		}
	}
	return strings.Join(actions, ", ")
}

// String はキャラクターの情報を文字列で返すのだ。
func (c Character) String() string {
	return fmt.Sprintf("%s (pose: %s, expression: %s)", c.Name, c.Pose, c.Expression)
}

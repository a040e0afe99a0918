package remote

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/shouni/go-shorts-kit/pkg/domain"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// extractJSON はモデル出力から JSON 部分を取り出すのだ。
// コードブロック、最も外側の括弧、全文の順に試すのだ。
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := jsonBlockRegex.FindStringSubmatch(raw); len(m) > 1 {
		return m[1]
	}
	if s := outermost(raw, "[", "]"); s != "" {
		return s
	}
	if s := outermost(raw, "{", "}"); s != "" {
		return s
	}
	return raw
}

func outermost(raw, open, closing string) string {
	first := strings.Index(raw, open)
	last := strings.LastIndex(raw, closing)
	if first == -1 || last == -1 || last <= first {
		return ""
	}
	return raw[first : last+1]
}

// parseScript は台本 JSON を解析するのだ。
// 配列そのもの、または {"scenes": [...]} の形を受け付けるのだ。
func parseScript(raw string) ([]domain.ScriptScene, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, ErrNoContent
	}
	body := strings.TrimSpace(extractJSON(raw))

	var scenes []domain.ScriptScene
	if strings.HasPrefix(body, "{") {
		var wrapper struct {
			Scenes []domain.ScriptScene `json:"scenes"`
		}
		if err := json.Unmarshal([]byte(body), &wrapper); err != nil {
			return nil, fmt.Errorf("%w: 台本 JSON の解析に失敗しました (応答抜粋: %q): %v", ErrMalformedResponse, truncate(raw, 200), err)
		}
		scenes = wrapper.Scenes
	} else if err := json.Unmarshal([]byte(body), &scenes); err != nil {
		return nil, fmt.Errorf("%w: 台本 JSON の解析に失敗しました (応答抜粋: %q): %v", ErrMalformedResponse, truncate(raw, 200), err)
	}

	if len(scenes) == 0 {
		return nil, ErrNoContent
	}
	for i, s := range scenes {
		if s.SceneNumber <= 0 || strings.TrimSpace(s.Description) == "" {
			return nil, fmt.Errorf("%w: シーン %d に必須項目がありません", ErrMalformedResponse, i+1)
		}
	}
	return scenes, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

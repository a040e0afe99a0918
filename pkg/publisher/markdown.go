package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-shorts-kit/pkg/domain"
)

// BuildStoryboard はプロジェクトを読みやすい Markdown の絵コンテにするのだ。
// 完成済みのシーンにはエクスポート時の動画ファイル名を添えるのだ。
func BuildStoryboard(project *domain.Project) string {
	if project == nil {
		return ""
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", project.Name)
	if d := strings.TrimSpace(project.CharacterDescription); d != "" {
		fmt.Fprintf(&sb, "> %s\n\n", d)
	}
	fmt.Fprintf(&sb, "- scenes: %d\n- playable: %.1fs\n\n", len(project.Scenes), project.TotalDuration())

	for _, s := range project.Scenes {
		fmt.Fprintf(&sb, "## Scene %d (%.1fs) [%s]\n", s.SceneNumber, s.DurationSeconds, s.Video.Status())
		if s.Video.IsReady() {
			fmt.Fprintf(&sb, "- video: %s\n", SceneFileName(s.SceneNumber))
		}
		if s.Video.Status() == domain.StatusError && s.Video.Reason() != "" {
			fmt.Fprintf(&sb, "- error: %s\n", s.Video.Reason())
		}
		writeItem(&sb, "character", s.Character.String())
		writeItem(&sb, "background", s.Background)
		writeItem(&sb, "audio", s.Audio)
		sb.WriteString("\n")
		if d := strings.TrimSpace(s.Description); d != "" {
			sb.WriteString(d + "\n\n")
		}
		if d := strings.TrimSpace(s.Dialogue); d != "" {
			fmt.Fprintf(&sb, "> %s\n\n", d)
		}
	}
	return sb.String()
}

func writeItem(sb *strings.Builder, key, value string) {
	if v := strings.TrimSpace(value); v != "" {
		fmt.Fprintf(sb, "- %s: %s\n", key, v)
	}
}

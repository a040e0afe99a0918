package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-utils/urlpath"
)

const (
	dataFileSuffix   = "_data.json"
	sceneFilePattern = "scene_%02d.mp4"
	fallbackName     = "project"
)

// SanitizeName はプロジェクト名をファイル名に使える形に変換するのだ。
// 小文字にし、英数字以外はすべて "_" に置き換えるのだ。
func SanitizeName(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return fallbackName
	}
	return sb.String()
}

// DataFileName はプロジェクトデータの JSON ファイル名なのだ。
func DataFileName(projectName string) string {
	return SanitizeName(projectName) + dataFileSuffix
}

// SceneFileName はシーン動画のファイル名なのだ。番号は2桁にゼロ埋めするのだ。
func SceneFileName(sceneNumber int) string {
	return fmt.Sprintf(sceneFilePattern, sceneNumber)
}

// ResolveOutputPath は出力ディレクトリとファイル名から最終的な出力パスを作るのだ。
func ResolveOutputPath(baseDir, fileName string) (string, error) {
	p, err := urlpath.ResolvePath(baseDir, fileName)
	if err != nil {
		return "", fmt.Errorf("出力パスの解決に失敗しました (%s): %w", fileName, err)
	}
	return p, nil
}

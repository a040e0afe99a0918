package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shouni/go-shorts-kit/pkg/blob"
	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/eventlog"
)

// Opener は動画の参照文字列を再生可能なバイト列に解決するのだ。
type Opener interface {
	Open(ctx context.Context, ref string) (blob.Object, error)
}

// ExportResult はエクスポートで書き出されたファイルの情報なのだ。
type ExportResult struct {
	Dir        string   `json:"dir,omitempty"`
	DataPath   string   `json:"dataPath,omitempty"`
	VideoPaths []string `json:"videoPaths,omitempty"`
	// SavedVideos は少なくとも1本の動画を書き出せたかどうかなのだ。
	SavedVideos bool `json:"savedVideos"`
	// Cancelled はユーザーがフォルダ選択を取り消したことを表すのだ。
	Cancelled bool `json:"cancelled"`
}

// ShortsPublisher はプロジェクトと完成済みの動画をディレクトリに書き出すのだ。
type ShortsPublisher struct {
	writer Writer
	opener Opener
	events *eventlog.Log
}

// NewShortsPublisher は ShortsPublisher を作るのだ。events は nil でもよいのだ。
func NewShortsPublisher(writer Writer, opener Opener, events *eventlog.Log) *ShortsPublisher {
	return &ShortsPublisher{writer: writer, opener: opener, events: events}
}

// Export は picker で選んだディレクトリに
// <name>_data.json と completed なシーンの scene_NN.mp4 を書き出すのだ。
// 個々の動画の失敗は記録してスキップし、エクスポート自体は続けるのだ。
func (p *ShortsPublisher) Export(ctx context.Context, project *domain.Project, picker DirectoryPicker) (ExportResult, error) {
	var result ExportResult
	if project == nil {
		return result, errors.New("エクスポートするプロジェクトがありません")
	}
	if picker == nil {
		picker = NoPicker{}
	}

	dir, err := picker.PickDirectory(ctx)
	if errors.Is(err, ErrPickerCancelled) {
		p.record(eventlog.LevelInfo, "Export cancelled", nil)
		result.Cancelled = true
		return result, nil
	}
	if err != nil {
		p.record(eventlog.LevelError, "Export failed", map[string]any{"error": err.Error()})
		return result, err
	}
	result.Dir = dir

	dataPath, err := ResolveOutputPath(dir, DataFileName(project.Name))
	if err != nil {
		return result, err
	}
	data, err := json.MarshalIndent(project, "", "  ")
	if err != nil {
		return result, fmt.Errorf("プロジェクトのエンコードに失敗しました: %w", err)
	}
	if err := p.writer.Write(ctx, dataPath, bytes.NewReader(data), "application/json"); err != nil {
		p.record(eventlog.LevelError, "Export failed", map[string]any{"error": err.Error(), "path": dataPath})
		return result, fmt.Errorf("プロジェクトデータの書き込みに失敗しました: %w", err)
	}
	result.DataPath = dataPath

	for _, scene := range project.Scenes {
		if !scene.Video.IsReady() {
			continue
		}
		path, err := p.writeScene(ctx, dir, scene)
		if err != nil {
			slog.Warn("Skipping scene video on export", "scene", scene.SceneNumber, "error", err)
			p.record(eventlog.LevelError, fmt.Sprintf("Failed to export video for scene %d", scene.SceneNumber),
				map[string]any{"scene": scene.SceneNumber, "error": err.Error()})
			continue
		}
		result.VideoPaths = append(result.VideoPaths, path)
	}
	result.SavedVideos = len(result.VideoPaths) > 0

	p.record(eventlog.LevelSuccess, "Project exported", map[string]any{
		"dir":    dir,
		"videos": len(result.VideoPaths),
	})
	return result, nil
}

func (p *ShortsPublisher) writeScene(ctx context.Context, dir string, scene domain.Scene) (string, error) {
	obj, err := p.opener.Open(ctx, scene.Video.Locator())
	if err != nil {
		return "", fmt.Errorf("動画の取得に失敗しました: %w", err)
	}
	path, err := ResolveOutputPath(dir, SceneFileName(scene.SceneNumber))
	if err != nil {
		return "", err
	}
	if err := p.writer.Write(ctx, path, bytes.NewReader(obj.Data), obj.MimeType); err != nil {
		return "", err
	}
	return path, nil
}

func (p *ShortsPublisher) record(level eventlog.Level, message string, details map[string]any) {
	if p.events != nil {
		p.events.Record(level, message, details)
	}
}

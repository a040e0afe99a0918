package publisher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrPickerUnsupported はディレクトリ選択ができない環境で返すエラーなのだ。
	ErrPickerUnsupported = errors.New("この環境ではフォルダ選択がサポートされていません")
	// ErrPickerCancelled はユーザーが選択を取り消した場合のエラーなのだ。
	ErrPickerCancelled = errors.New("folder selection cancelled")
)

// DirectoryPicker はエクスポート先のディレクトリを選ぶのだ。
type DirectoryPicker interface {
	PickDirectory(ctx context.Context) (string, error)
}

// FixedDir は常に同じディレクトリを返す Picker なのだ。
type FixedDir string

// PickDirectory はディレクトリをそのまま返すのだ。空なら取り消し扱いなのだ。
func (d FixedDir) PickDirectory(context.Context) (string, error) {
	if strings.TrimSpace(string(d)) == "" {
		return "", ErrPickerCancelled
	}
	return string(d), nil
}

// NoPicker はフォルダ選択をサポートしない環境を表すのだ。
type NoPicker struct{}

func (NoPicker) PickDirectory(context.Context) (string, error) {
	return "", ErrPickerUnsupported
}

// PromptPicker は対話的にディレクトリを尋ねる Picker なのだ。
// 空行や入力終端は取り消しとみなすのだ。
type PromptPicker struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
}

func (p PromptPicker) PickDirectory(ctx context.Context) (string, error) {
	if p.In == nil {
		return "", ErrPickerUnsupported
	}
	if p.Out != nil {
		prompt := p.Prompt
		if prompt == "" {
			prompt = "Export directory (empty to cancel): "
		}
		fmt.Fprint(p.Out, prompt)
	}

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		ch <- result{line: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		dir := strings.TrimSpace(r.line)
		if dir == "" {
			if r.err != nil && !errors.Is(r.err, io.EOF) {
				return "", fmt.Errorf("入力の読み込みに失敗しました: %w", r.err)
			}
			return "", ErrPickerCancelled
		}
		return dir, nil
	}
}

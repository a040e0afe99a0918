package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/go-shorts-kit/internal/builder"
	"github.com/shouni/go-shorts-kit/internal/config"
	"github.com/shouni/go-shorts-kit/pkg/domain"
	"github.com/shouni/go-shorts-kit/pkg/publisher"
)

// Execute は、トピックから台本を作り、全シーンの動画を生成してディレクトリに書き出すまでを一括で実行するのだ。
// 最後に絵コンテの Markdown を out に書き出すのだ。
func Execute(ctx context.Context, cfg *config.Config, out io.Writer) error {
	appCtx, err := builder.NewAppContext(cfg)
	if err != nil {
		return err
	}
	_, err = Run(ctx, appCtx, out)
	return err
}

// Run は構築済みの AppContext でワーカーを起動し、作成フローを実行するのだ。
func Run(ctx context.Context, appCtx *builder.AppContext, out io.Writer) (publisher.ExportResult, error) {
	workerCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(workerCtx)
	g.Go(func() error {
		return appCtx.Orchestrator.Run(gctx)
	})

	res, err := runCreate(ctx, appCtx, out)

	cancel()
	if werr := g.Wait(); werr != nil && err == nil {
		err = werr
	}
	return res, err
}

func runCreate(ctx context.Context, appCtx *builder.AppContext, out io.Writer) (publisher.ExportResult, error) {
	opts := appCtx.Options

	// --- Phase 1: Script Phase (台本作成) ---
	project, err := runScriptStep(ctx, appCtx)
	if err != nil {
		return publisher.ExportResult{}, err
	}

	// --- Phase 2: Design Phase (キャラクターデザイン) ---
	if opts.CharacterDescription != "" {
		runDesignStep(ctx, appCtx, project)
	}

	// --- Phase 3: Video Phase (動画生成) ---
	if !opts.SkipVideos {
		if err := runVideoStep(ctx, appCtx); err != nil {
			return publisher.ExportResult{}, err
		}
	}

	// --- Phase 4: Publish Phase (書き出し) ---
	final := appCtx.Orchestrator.Project()
	res, err := runPublishStep(ctx, appCtx, final)
	if err != nil {
		return res, err
	}

	if out != nil {
		if _, err := io.WriteString(out, appCtx.Publisher.BuildStoryboard(final)); err != nil {
			return res, fmt.Errorf("絵コンテの出力に失敗しました: %w", err)
		}
	}
	return res, nil
}

// runScriptStep はトピックから台本を生成してプロジェクトを作るのだ
func runScriptStep(ctx context.Context, appCtx *builder.AppContext) (*domain.Project, error) {
	slog.Info("Phase 1: 台本生成を開始するのだ...", "topic", appCtx.Options.Topic)
	project, err := appCtx.Orchestrator.CreateProject(ctx, appCtx.Options.Topic, appCtx.Options.CharacterDescription)
	if err != nil {
		return nil, fmt.Errorf("台本生成に失敗したのだ: %w", err)
	}
	return project, nil
}

// runDesignStep はキャラクターのリファレンス画像を出力先に保存するのだ。失敗しても続行するのだ。
func runDesignStep(ctx context.Context, appCtx *builder.AppContext, project *domain.Project) {
	slog.Info("Phase 2: キャラクターデザインを生成するのだ...")
	designRunner, err := appCtx.Manager.BuildDesignRunner()
	if err != nil {
		slog.WarnContext(ctx, "DesignRunnerの構築に失敗したのだ", "error", err)
		return
	}
	path, err := designRunner.RunAndSave(ctx, project.CharacterDescription, project.Name, appCtx.Options.OutputDir)
	if err != nil {
		slog.WarnContext(ctx, "キャラクターデザインの保存に失敗したけど続行するのだ", "error", err)
		return
	}
	slog.Info("キャラクターデザインを保存したのだ", "path", path)
}

// runVideoStep は動画の無いシーンをすべて順に生成するのだ
func runVideoStep(ctx context.Context, appCtx *builder.AppContext) error {
	slog.Info("Phase 3: 動画生成を開始するのだ...")
	result, err := appCtx.Orchestrator.GenerateAllVideos(ctx)
	if err != nil {
		return fmt.Errorf("動画の一括生成に失敗したのだ: %w", err)
	}
	slog.Info("動画の一括生成が終わったのだ",
		"queued", result.Queued,
		"completed", result.Completed,
		"failed", result.Failed)
	return nil
}

// runPublishStep は PublishRunner を使って成果物を出力先に保存するのだ
func runPublishStep(ctx context.Context, appCtx *builder.AppContext, project *domain.Project) (publisher.ExportResult, error) {
	opts := appCtx.Options
	var picker publisher.DirectoryPicker = publisher.FixedDir(opts.OutputDir)
	if opts.AskOutputDir {
		picker = publisher.PromptPicker{In: os.Stdin, Out: os.Stderr}
	}

	slog.Info("Phase 4: 書き出しを開始するのだ...", "dir", opts.OutputDir, "ask", opts.AskOutputDir)
	res, err := appCtx.Publisher.Run(ctx, project, picker)
	if err != nil {
		return res, fmt.Errorf("書き出しに失敗したのだ: %w", err)
	}
	if res.Cancelled {
		slog.Warn("書き出しは取り消されたのだ")
		return res, nil
	}
	if !res.SavedVideos {
		slog.Warn("書き出せた動画が1本も無かったのだ", "dir", res.Dir)
	}
	return res, nil
}

// ExecuteScript は台本だけを生成し、プロジェクトを JSON で out に書き出すのだ。
func ExecuteScript(ctx context.Context, cfg *config.Config, out io.Writer) error {
	appCtx, err := builder.NewAppContext(cfg)
	if err != nil {
		return err
	}
	return RunScript(ctx, appCtx, out)
}

// RunScript は ExecuteScript の本体なのだ。動画を生成しないのでワーカーは起動しないのだ。
func RunScript(ctx context.Context, appCtx *builder.AppContext, out io.Writer) error {
	project, err := runScriptStep(ctx, appCtx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(project); err != nil {
		return fmt.Errorf("台本の出力に失敗したのだ: %w", err)
	}
	return nil
}

// ExecuteDesign はキャラクターのリファレンス画像だけを生成して保存するのだ。
func ExecuteDesign(ctx context.Context, cfg *config.Config, name string) (string, error) {
	appCtx, err := builder.NewAppContext(cfg)
	if err != nil {
		return "", err
	}
	return RunDesign(ctx, appCtx, name)
}

// RunDesign は ExecuteDesign の本体なのだ。
func RunDesign(ctx context.Context, appCtx *builder.AppContext, name string) (string, error) {
	designRunner, err := appCtx.Manager.BuildDesignRunner()
	if err != nil {
		return "", fmt.Errorf("DesignRunnerの構築に失敗したのだ: %w", err)
	}
	path, err := designRunner.RunAndSave(ctx, appCtx.Options.CharacterDescription, name, appCtx.Options.OutputDir)
	if err != nil {
		return "", fmt.Errorf("キャラクターデザインの生成に失敗したのだ: %w", err)
	}
	return path, nil
}

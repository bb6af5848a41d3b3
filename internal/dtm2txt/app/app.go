// Package app はdtm2txtコマンドのメインロジックを実装します
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/onvar/go-dtm2txt/internal/dtm2txt/config"
	"github.com/onvar/go-dtm2txt/internal/dtm2txt/fileutil"
	"github.com/onvar/go-dtm2txt/internal/dtm2txt/interfaces"
	"github.com/onvar/go-dtm2txt/pkg/dtm"
)

// App は変換の実行を管理します
type App struct {
	config *config.Config
	logger interfaces.Logger
	fs     interfaces.FileSystem
}

// Options はAppの設定オプション
type Options struct {
	FileSystem interfaces.FileSystem
	Logger     interfaces.Logger
}

// New は新しいAppを作成します
func New(cfg *config.Config) *App {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions は新しいAppをオプション付きで作成します
func NewWithOptions(cfg *config.Config, opts Options) *App {
	fs := opts.FileSystem
	if fs == nil {
		fs = fileutil.NewOSFileSystem()
	}
	logger := opts.Logger
	if logger == nil {
		logger = config.NewDebugLogger(cfg.DebugMode)
	}

	return &App{
		config: cfg,
		logger: logger,
		fs:     fs,
	}
}

// Run は入力ファイルの拡張子に応じた方向の変換を実行します。
// 変換はメモリ上で完結してから書き込まれ、失敗した変換が
// 出力ファイルを残すことはありません。
func (a *App) Run(ctx context.Context) error {
	inputPath := a.config.InputPath
	if inputPath == "" {
		return ErrNoInput
	}
	if !a.fs.FileExists(inputPath) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, inputPath)
	}

	data, err := a.fs.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	a.logger.Printf("入力ファイル: %s (%dバイト)\n", inputPath, len(data))

	var output []byte
	var outputPath string

	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".dtm":
		output, err = dtm.BinaryToText(data)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConvert, err)
		}
		outputPath = a.outputPath(inputPath, ".txt")
	case ".txt":
		output, err = dtm.TextToBinary(data, a.warn)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConvert, err)
		}
		outputPath = a.outputPath(inputPath, ".dtm")
	default:
		return fmt.Errorf("%w: %s", ErrUnknownExtension, inputPath)
	}

	if a.config.DryRun {
		fmt.Printf("ドライラン: %s への書き込みをスキップしました (%dバイト)\n", outputPath, len(output))
		return nil
	}

	if err := a.fs.WriteFile(outputPath, output, 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}

	fmt.Printf("変換が完了しました: %s\n", outputPath)
	return nil
}

// outputPath は-oフラグまたは入力パスから出力先を決定します
func (a *App) outputPath(inputPath, newExt string) string {
	if a.config.OutputPath != "" {
		return a.config.OutputPath
	}
	return fileutil.SiblingPath(inputPath, newExt)
}

// warn は変換中の警告を標準エラー出力へ表示します
func (a *App) warn(msg string) {
	fmt.Fprintf(os.Stderr, "警告: %s\n", msg)
}

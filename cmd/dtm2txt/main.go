package main

import (
	"context"
	"fmt"
	"os"

	"github.com/onvar/go-dtm2txt/internal/dtm2txt/app"
	"github.com/onvar/go-dtm2txt/internal/dtm2txt/config"
)

func main() {
	// コマンドライン引数の解析
	cfg := config.ParseFlags()

	// バージョン表示の処理
	config.HandleVersion(cfg.ShowVersion)

	// 引数なしで起動された場合はバージョンを表示して終了
	if cfg.InputPath == "" {
		fmt.Printf("dtm2txt version %s\n", config.Version)
		return
	}

	// アプリケーションの実行
	application := app.New(cfg)
	if err := application.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "エラー: %v\n", err)
		os.Exit(1)
	}
}

package app

import "errors"

var (
	// ErrNoInput は入力ファイルが指定されていない場合のエラー
	ErrNoInput = errors.New("入力ファイルが指定されていません")

	// ErrInputNotFound は入力ファイルが見つからない場合のエラー
	ErrInputNotFound = errors.New("入力ファイルが見つかりません")

	// ErrReadInput は入力ファイルの読み込みに失敗した場合のエラー
	ErrReadInput = errors.New("入力ファイルの読み込みに失敗しました")

	// ErrUnknownExtension は拡張子から変換方向を決定できない場合のエラー
	ErrUnknownExtension = errors.New("拡張子は .dtm か .txt である必要があります")

	// ErrConvert は変換に失敗した場合のエラー
	ErrConvert = errors.New("変換に失敗しました")

	// ErrWriteOutput は出力ファイルの書き込みに失敗した場合のエラー
	ErrWriteOutput = errors.New("出力ファイルの書き込みに失敗しました")
)

package dtm

import (
	"errors"
	"fmt"
)

var (
	// ErrBadSignature はマジックナンバーが一致しない場合のエラー
	ErrBadSignature = errors.New("DTMムービーファイルとして認識できません")

	// ErrTruncatedInput は宣言されたサイズより入力が短い場合のエラー
	ErrTruncatedInput = errors.New("入力データが宣言されたサイズより短いです")

	// ErrTrailingData は入力フレーム列の後に余分なデータがある場合のエラー
	ErrTrailingData = errors.New("入力フレーム列の後に余分なデータがあります")

	// ErrInvalidToken はテキスト行のトークンを認識できない場合のエラー
	ErrInvalidToken = errors.New("認識できないトークンです")

	// ErrDuplicateSignal は同じシグナルラベルが1行に2回現れた場合のエラー
	ErrDuplicateSignal = errors.New("シグナルラベルが重複しています")

	// ErrUnknownMetadataKey はメタデータブロックに未知のキーがある場合のエラー
	ErrUnknownMetadataKey = errors.New("メタデータブロックに未知のキーがあります")

	// ErrUnsupportedConfiguration はサポート対象外のコントローラ構成の場合のエラー
	ErrUnsupportedConfiguration = errors.New("サポート対象外のコントローラ構成です")

	// ErrInvalidString は文字列フィールドを文字として解釈できない場合のエラー
	ErrInvalidString = errors.New("文字列フィールドを解釈できません")

	// ErrFieldTooLong はフィールドの値が格納幅を超えている場合のエラー
	ErrFieldTooLong = errors.New("フィールドの値が格納幅を超えています")
)

// FormatError は変換を中断させた書式エラーを表します。
// テキスト側ではLine（メタデータブロック直後を1行目とする行番号）、
// バイナリ側ではField（ヘッダのフィールド名）またはFrame（入力フレーム
// 番号）で位置を示します。
type FormatError struct {
	Line  int    // 1始まりの行番号（0なら行情報なし）
	Frame int    // 1始まりの入力フレーム番号（0ならフレーム情報なし）
	Field string // ヘッダのフィールド名（空なら対象外）
	Err   error  // 元のエラー
}

// Error はエラーメッセージを返します
func (e *FormatError) Error() string {
	switch {
	case e.Line > 0:
		return fmt.Sprintf("%d行目: %v", e.Line, e.Err)
	case e.Frame > 0:
		return fmt.Sprintf("入力フレーム %d: %v", e.Frame, e.Err)
	case e.Field != "":
		return fmt.Sprintf("フィールド %s: %v", e.Field, e.Err)
	default:
		return e.Err.Error()
	}
}

// Unwrap は元のエラーを返します
func (e *FormatError) Unwrap() error {
	return e.Err
}

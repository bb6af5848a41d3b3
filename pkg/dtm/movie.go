// Package dtm はDolphinのムービー記録フォーマット（.dtm）と
// 手編集可能なテキスト表現との間の双方向コーデックを実装します。
//
// バイナリ表現は256バイトの固定ヘッダと8バイト固定の入力レコード列、
// テキスト表現は先頭のJSONメタデータブロックと1フレーム1行の入力行です。
// 正しい入力に対してどちらの方向もバイト単位でラウンドトリップします。
package dtm

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// WarnFunc は致命的でない不一致の通知を受け取ります
type WarnFunc func(msg string)

// Movie はヘッダと入力フレーム列からなるムービー全体を表します。
// 1回の変換の中だけで生存し、呼び出しをまたいで共有される状態はありません。
type Movie struct {
	Header Header
	Inputs []ControllerInput
}

// DecodeBinary はバイナリ表現からムービーを復元します。
// フレーム数はヘッダのinput_countを信頼し、宣言より短い入力と
// 宣言を超える余分なデータはどちらも書式エラーです。
func DecodeBinary(r io.Reader) (*Movie, error) {
	h, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.ValidateSupport(); err != nil {
		return nil, err
	}

	// input_countは信頼するが、確保量は実データで伸ばす
	capacity := h.InputCount
	if capacity > 1<<16 {
		capacity = 1 << 16
	}
	inputs := make([]ControllerInput, 0, capacity)

	buf := make([]byte, InputSize)
	for i := uint64(0); i < h.InputCount; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, &FormatError{Frame: int(i + 1), Err: fmt.Errorf("%w: %v", ErrTruncatedInput, err)}
		}
		in, err := DecodeInput(buf)
		if err != nil {
			return nil, &FormatError{Frame: int(i + 1), Err: err}
		}
		inputs = append(inputs, in)
	}

	if _, err := io.ReadFull(r, buf[:1]); err == nil {
		return nil, &FormatError{Err: fmt.Errorf("%w: input_count=%d", ErrTrailingData, h.InputCount)}
	}

	return &Movie{Header: *h, Inputs: inputs}, nil
}

// EncodeBinary はムービーをバイナリ表現で書き出します。
// ヘッダのinput_countは実際のフレーム数で上書きされます。
func (m *Movie) EncodeBinary(w io.Writer) error {
	h := m.Header
	h.InputCount = uint64(len(m.Inputs))

	if err := h.Validate(); err != nil {
		return err
	}
	if err := h.ValidateSupport(); err != nil {
		return err
	}

	encoded, err := h.EncodeHeader()
	if err != nil {
		return err
	}
	if _, err := w.Write(encoded); err != nil {
		return err
	}

	for i, in := range m.Inputs {
		record, err := in.EncodeInput()
		if err != nil {
			return &FormatError{Frame: i + 1, Err: err}
		}
		if _, err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// DecodeText はテキスト表現からムービーを復元します。
// メタデータブロックのinput_countは参考値として扱い、実際の入力行数を
// 採用します。両者が食い違う場合はwarn（nil可）に通知します。
func DecodeText(r io.Reader, warn WarnFunc) (*Movie, error) {
	dec := json.NewDecoder(r)
	h, err := decodeMetadata(dec)
	if err != nil {
		return nil, err
	}
	if err := h.ValidateSupport(); err != nil {
		return nil, err
	}

	// デコーダが先読みした分を入力行の読み取りに引き継ぐ
	rest := io.MultiReader(dec.Buffered(), r)

	var inputs []ControllerInput
	scanner := bufio.NewScanner(rest)
	line := 0
	first := true
	for scanner.Scan() {
		text := scanner.Text()
		if first {
			first = false
			// メタデータブロックの閉じ括弧の行の残り
			if strings.TrimSpace(text) == "" {
				continue
			}
		}
		line++
		if strings.TrimSpace(text) == "" {
			continue
		}
		in, err := ParseLine(text)
		if err != nil {
			return nil, &FormatError{Line: line, Err: err}
		}
		inputs = append(inputs, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	actual := uint64(len(inputs))
	if h.InputCount != actual && warn != nil {
		warn(fmt.Sprintf("input_count (%d) が実際の入力行数 (%d) と一致しません。行数を採用します", h.InputCount, actual))
	}
	h.InputCount = actual

	return &Movie{Header: *h, Inputs: inputs}, nil
}

// EncodeText はムービーをテキスト表現で書き出します。
// メタデータブロックのinput_countは常に出力する行数と一致します。
func (m *Movie) EncodeText(w io.Writer) error {
	h := m.Header
	h.InputCount = uint64(len(m.Inputs))

	metadata, err := encodeMetadata(&h)
	if err != nil {
		return err
	}
	if _, err := w.Write(metadata); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}

	for _, in := range m.Inputs {
		if _, err := io.WriteString(w, in.EncodeLine()); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// BinaryToText はバイナリ表現をテキスト表現へ一括変換します
func BinaryToText(data []byte) ([]byte, error) {
	movie, err := DecodeBinary(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := movie.EncodeText(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// TextToBinary はテキスト表現をバイナリ表現へ一括変換します
func TextToBinary(data []byte, warn WarnFunc) ([]byte, error) {
	movie, err := DecodeText(bytes.NewReader(data), warn)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	if err := movie.EncodeBinary(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

package dtm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// HexBytes はヘッダの不透明なバイト列をJSONでは大文字16進文字列として
// 往復させます。バイナリでは宣言幅のままラウンドトリップされます。
type HexBytes []byte

// MarshalJSON は大文字16進文字列に変換します
func (h HexBytes) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('"')
	for _, b := range h {
		fmt.Fprintf(&sb, "%02X", b)
	}
	sb.WriteByte('"')
	return []byte(sb.String()), nil
}

// UnmarshalJSON は大文字16進文字列からバイト列を復元します。
// 手編集のミスを検出するため、小文字や奇数桁は受け付けません。
func (h *HexBytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if len(s)%2 != 0 {
		return fmt.Errorf("%w: 16進文字列の桁数が奇数です", ErrInvalidToken)
	}

	decoded := make([]byte, len(s)/2)
	for i := 0; i < len(s); i += 2 {
		hi, ok1 := hexNibble(s[i])
		lo, ok2 := hexNibble(s[i+1])
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: %q は大文字16進文字列ではありません", ErrInvalidToken, s)
		}
		decoded[i/2] = hi<<4 | lo
	}
	*h = decoded
	return nil
}

// hexNibble は大文字16進数1桁を値に変換します
func hexNibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// defaultHeader はメタデータブロックでキーが省略された場合の既定値を返します。
// 数値と真偽値はゼロ値、controllersはポート1のみ接続、不透明フィールドは
// バイナリ幅のゼロ埋めです。
func defaultHeader() *Header {
	return &Header{
		Controllers:   0x01,
		AudioEmulator: make(HexBytes, audioEmulatorSize),
		MD5:           make(HexBytes, md5Size),
		Reserved2:     make(HexBytes, reserved2Size),
		GitRevision:   make(HexBytes, gitRevisionSize),
		Reserved3:     make(HexBytes, reserved3Size),
	}
}

// decodeMetadata はテキスト表現先頭のJSONメタデータブロックを読み取ります。
// 未知のキーはタイプミスとみなして拒否します。
func decodeMetadata(dec *json.Decoder) (*Header, error) {
	dec.DisallowUnknownFields()

	h := defaultHeader()
	if err := dec.Decode(h); err != nil {
		return nil, metadataError(err)
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// encodeMetadata はヘッダをメタデータブロックのテキストに変換します。
// キー順と整形は常に同一で、行単位の差分が取れる出力になります。
func encodeMetadata(h *Header) ([]byte, error) {
	return json.MarshalIndent(h, "", "  ")
}

// metadataError はencoding/jsonのエラーをこのパッケージのエラーに対応付けます
func metadataError(err error) error {
	msg := err.Error()
	// encoding/json は未知キーを `json: unknown field "xxx"` で報告します
	if i := strings.Index(msg, "unknown field "); i >= 0 {
		key := strings.Trim(msg[i+len("unknown field "):], `"`)
		return &FormatError{Err: fmt.Errorf("%w: %q", ErrUnknownMetadataKey, key)}
	}
	return fmt.Errorf("メタデータブロックを解析できません: %w", err)
}

package dtm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testMovie はテスト用の小さなムービーを作成します
func testMovie() *Movie {
	neutral := ControllerInput{AnalogX: 128, AnalogY: 128, CX: 128, CY: 128}
	jump := neutral
	jump.A = true
	jump.LPressure = 255
	jump.L = true

	return &Movie{
		Header: *testHeader(),
		Inputs: []ControllerInput{neutral, jump, neutral},
	}
}

func encodeMovieBinary(t *testing.T, m *Movie) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, m.EncodeBinary(&buf))
	return buf.Bytes()
}

func TestBinaryTextBinary_RoundTrip(t *testing.T) {
	original := encodeMovieBinary(t, testMovie())

	text, err := BinaryToText(original)
	require.NoError(t, err)

	restored, err := TextToBinary(text, nil)
	require.NoError(t, err)

	assert.Equal(t, original, restored, "binary -> text -> binary はバイト単位で一致する")
}

func TestTextBinaryText_RoundTrip(t *testing.T) {
	var text bytes.Buffer
	require.NoError(t, testMovie().EncodeText(&text))

	binary, err := TextToBinary(text.Bytes(), nil)
	require.NoError(t, err)

	restored, err := BinaryToText(binary)
	require.NoError(t, err)

	assert.Equal(t, text.String(), string(restored), "text -> binary -> text はバイト単位で一致する")
}

func TestBinaryRoundTrip_PreservesOpaqueFields(t *testing.T) {
	m := testMovie()
	m.Header.Reserved2 = HexBytes{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	m.Header.Reserved3 = HexBytes{11, 22, 33, 44, 55, 66, 77, 88, 99, 110, 121}
	m.Header.GitRevision = HexBytes(bytes.Repeat([]byte{0x5A}, gitRevisionSize))
	m.Header.Reserved1 = 0xFEEDFACE
	original := encodeMovieBinary(t, m)

	text, err := BinaryToText(original)
	require.NoError(t, err)

	restored, err := TextToBinary(text, nil)
	require.NoError(t, err)
	assert.Equal(t, original, restored, "コーデックが解釈しないフィールドも保存される")
}

func TestDecodeBinary_BadSignature(t *testing.T) {
	data := encodeMovieBinary(t, testMovie())
	data[1] = 'X'

	movie, err := DecodeBinary(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrBadSignature)
	assert.Nil(t, movie)
}

func TestDecodeBinary_TruncatedFrames(t *testing.T) {
	data := encodeMovieBinary(t, testMovie())

	// 最後のフレームの途中で切り詰める
	movie, err := DecodeBinary(bytes.NewReader(data[:len(data)-3]))
	require.ErrorIs(t, err, ErrTruncatedInput)
	assert.Nil(t, movie)

	// テキスト側のLineと同様に、バイナリ側もフレーム番号を構造的に持つ
	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 3, fe.Frame)
	assert.Contains(t, err.Error(), "入力フレーム 3")
}

func TestDecodeBinary_TrailingData(t *testing.T) {
	data := encodeMovieBinary(t, testMovie())
	data = append(data, 0x00)

	_, err := DecodeBinary(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrTrailingData)
}

func TestDecodeBinary_UnsupportedConfiguration(t *testing.T) {
	m := testMovie()
	m.Header.Controllers = 0x03
	var buf bytes.Buffer

	// エンコード側も拒否する
	require.ErrorIs(t, m.EncodeBinary(&buf), ErrUnsupportedConfiguration)

	// バイナリを直接書き換えた場合はデコード側が拒否する
	m.Header.Controllers = 0x01
	data := encodeMovieBinary(t, m)
	data[11] = 0x03
	_, err := DecodeBinary(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrUnsupportedConfiguration)
}

func TestEncodeText_InputCountMatchesLines(t *testing.T) {
	m := testMovie()
	m.Header.InputCount = 9999 // ヘッダの値は信頼しない

	var buf bytes.Buffer
	require.NoError(t, m.EncodeText(&buf))

	text := buf.String()
	assert.Contains(t, text, `"input_count": 3`)
	assert.NotContains(t, text, "9999")

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	var inputLines int
	for _, line := range lines {
		if !strings.HasPrefix(line, "s") && !strings.HasPrefix(line, "S") {
			continue
		}
		inputLines++
	}
	assert.Equal(t, 3, inputLines)
}

func TestDecodeText_CountMismatchWarns(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testMovie().EncodeText(&buf))

	// input_countを手編集で壊す
	text := strings.Replace(buf.String(), `"input_count": 3`, `"input_count": 7`, 1)

	var warnings []string
	movie, err := DecodeText(strings.NewReader(text), func(msg string) {
		warnings = append(warnings, msg)
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(3), movie.Header.InputCount, "実際の行数を採用する")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "7")
	assert.Contains(t, warnings[0], "3")
}

func TestDecodeText_LineNumberInError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testMovie().EncodeText(&buf))

	// 2行目の入力行を壊す
	lines := strings.SplitAfter(buf.String(), "\n")
	var frameLine int
	for i, line := range lines {
		if strings.HasPrefix(line, "s") || strings.HasPrefix(line, "S") {
			frameLine++
			if frameLine == 2 {
				lines[i] = "s a b x y z u d l r lt rt 999 0 128 128 128 128\n"
			}
		}
	}

	_, err := DecodeText(strings.NewReader(strings.Join(lines, "")), nil)
	require.ErrorIs(t, err, ErrInvalidToken)

	var fe *FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Line, "行番号はメタデータブロック直後から1始まり")
}

func TestDecodeText_SkipsBlankLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testMovie().EncodeText(&buf))

	text := buf.String() + "\n\n"
	movie, err := DecodeText(strings.NewReader(text), nil)
	require.NoError(t, err)
	assert.Len(t, movie.Inputs, 3)
}

func TestDecodeText_UnknownMetadataKey(t *testing.T) {
	text := "{\n  \"game_id\": \"GALE01\",\n  \"typo_key\": true\n}\n"
	_, err := DecodeText(strings.NewReader(text), nil)
	require.ErrorIs(t, err, ErrUnknownMetadataKey)
}

func TestDecodeText_MinimalMetadata(t *testing.T) {
	// 省略されたキーが既定値を取るため、最小のテキストから変換できる
	text := "{}\n" + ControllerInput{AnalogX: 128, AnalogY: 128, CX: 128, CY: 128}.EncodeLine() + "\n"

	binary, err := TextToBinary([]byte(text), nil)
	require.NoError(t, err)
	assert.Len(t, binary, HeaderSize+InputSize)

	movie, err := DecodeBinary(bytes.NewReader(binary))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), movie.Header.InputCount)
	assert.Equal(t, uint8(0x01), movie.Header.Controllers)
}

func TestBinaryRoundTrip_PressedButtons(t *testing.T) {
	// 押下状態のボタンが大文字トークンで出力され、往復でも保たれる
	example, err := ParseLine("s A b x y z u d l r lt RT   0 255   0 128 128 128 RST")
	require.NoError(t, err)

	allButtons := ControllerInput{
		Start: true, A: true, B: true, X: true, Y: true, Z: true,
		Up: true, Down: true, Left: true, Right: true, L: true, R: true,
		LPressure: 255, RPressure: 255,
		AnalogX: 128, AnalogY: 128, CX: 128, CY: 128,
	}
	reservedOnly := ControllerInput{Reserved: true, AnalogX: 128, AnalogY: 128, CX: 128, CY: 128}

	m := testMovie()
	m.Inputs = append(m.Inputs, example, allButtons, reservedOnly)
	original := encodeMovieBinary(t, m)

	text, err := BinaryToText(original)
	require.NoError(t, err)
	assert.Contains(t, string(text), "s A b x y z u d l r lt RT   0 255   0 128 128 128 RST\n")
	assert.Contains(t, string(text), "S A B X Y Z U D L R LT RT 255 255 128 128 128 128\n")

	restored, err := TextToBinary(text, nil)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}

func TestDocumentedExampleLine(t *testing.T) {
	// ドキュメントに載せている例の行とフレーム状態が相互に対応する
	const line = "s A b x y z u d l r lt RT   0 255   0 128 128 128 RST"

	in, err := ParseLine(line)
	require.NoError(t, err)

	expected := ControllerInput{
		A: true, R: true,
		RPressure: 255, AnalogX: 0, AnalogY: 128, CX: 128, CY: 128,
		Reset: true,
	}
	assert.Equal(t, expected, in)
	assert.Equal(t, line, in.EncodeLine())
}

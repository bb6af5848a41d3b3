package dtm

import (
	"fmt"
	"strconv"
	"strings"
)

// InputSize は1フレーム分のバイナリレコードのバイト数
const InputSize = 8

// inputLayout は入力レコードのビット割り当てを宣言します。
// 先頭2バイトにボタンとシグナルのフラグ、続く6バイトにアナログ値が並びます。
var inputLayout = BitLayout{
	{"start", 1}, {"a", 1}, {"b", 1}, {"x", 1},
	{"y", 1}, {"z", 1}, {"up", 1}, {"down", 1},
	{"left", 1}, {"right", 1}, {"l", 1}, {"r", 1},
	{"change_disc", 1}, {"reset", 1}, {"controller_connected", 1}, {"reserved", 1},
	{"l_pressure", 8}, {"r_pressure", 8},
	{"analog_x", 8}, {"analog_y", 8},
	{"c_x", 8}, {"c_y", 8},
}

// ControllerInput は1フレーム分のGameCubeコントローラ入力を表します
type ControllerInput struct {
	Start bool
	A     bool
	B     bool
	X     bool
	Y     bool
	Z     bool
	Up    bool
	Down  bool
	Left  bool
	Right bool
	L     bool
	R     bool

	// フレームに付随するセッションイベント（コントローラ入力ではない）
	ChangeDisc          bool
	Reset               bool
	ControllerConnected bool
	Reserved            bool

	LPressure uint8
	RPressure uint8
	AnalogX   uint8
	AnalogY   uint8
	CX        uint8
	CY        uint8
}

// DecodeInput は8バイトのレコードからコントローラ入力を復元します
func DecodeInput(buf []byte) (ControllerInput, error) {
	values, err := inputLayout.Unpack(buf)
	if err != nil {
		return ControllerInput{}, err
	}

	flag := func(v uint64) bool { return v != 0 }
	return ControllerInput{
		Start:               flag(values[0]),
		A:                   flag(values[1]),
		B:                   flag(values[2]),
		X:                   flag(values[3]),
		Y:                   flag(values[4]),
		Z:                   flag(values[5]),
		Up:                  flag(values[6]),
		Down:                flag(values[7]),
		Left:                flag(values[8]),
		Right:               flag(values[9]),
		L:                   flag(values[10]),
		R:                   flag(values[11]),
		ChangeDisc:          flag(values[12]),
		Reset:               flag(values[13]),
		ControllerConnected: flag(values[14]),
		Reserved:            flag(values[15]),
		LPressure:           uint8(values[16]),
		RPressure:           uint8(values[17]),
		AnalogX:             uint8(values[18]),
		AnalogY:             uint8(values[19]),
		CX:                  uint8(values[20]),
		CY:                  uint8(values[21]),
	}, nil
}

// EncodeInput はコントローラ入力を8バイトのレコードに詰めます
func (in ControllerInput) EncodeInput() ([]byte, error) {
	bit := func(b bool) uint64 {
		if b {
			return 1
		}
		return 0
	}
	values := []uint64{
		bit(in.Start), bit(in.A), bit(in.B), bit(in.X),
		bit(in.Y), bit(in.Z), bit(in.Up), bit(in.Down),
		bit(in.Left), bit(in.Right), bit(in.L), bit(in.R),
		bit(in.ChangeDisc), bit(in.Reset), bit(in.ControllerConnected), bit(in.Reserved),
		uint64(in.LPressure), uint64(in.RPressure),
		uint64(in.AnalogX), uint64(in.AnalogY),
		uint64(in.CX), uint64(in.CY),
	}
	return inputLayout.Pack(values)
}

// buttonLetter は1ボタン分のトークン定義です。大文字側が押下状態を表します。
type buttonLetter struct {
	upper string
	lower string
}

// buttonLetters はテキスト行の先頭12トークンの文字と並びを固定します
var buttonLetters = [12]buttonLetter{
	{"S", "s"}, {"A", "a"}, {"B", "b"}, {"X", "x"},
	{"Y", "y"}, {"Z", "z"}, {"U", "u"}, {"D", "d"},
	{"L", "l"}, {"R", "r"}, {"LT", "lt"}, {"RT", "rt"},
}

// signalLabels は末尾の任意シグナルトークンの正規順です
var signalLabels = [4]string{"CD", "RST", "CC", "RSV"}

// EncodeLine はコントローラ入力を1行のテキスト表現に変換します。
// 列幅とトークン順は固定で、同じ入力からは常に同一の行が生成されます。
// 例: s A b x y z u d l r lt RT   0 255   0 128 128 128 RST
func (in ControllerInput) EncodeLine() string {
	var sb strings.Builder

	buttons := in.buttons()
	for i, letter := range buttonLetters {
		if *buttons[i] {
			sb.WriteString(letter.upper)
		} else {
			sb.WriteString(letter.lower)
		}
		sb.WriteString(" ")
	}

	fmt.Fprintf(&sb, "%3d %3d %3d %3d %3d %3d",
		in.LPressure, in.RPressure, in.AnalogX, in.AnalogY, in.CX, in.CY)

	signals := in.signals()
	for i, label := range signalLabels {
		if *signals[i] {
			sb.WriteString(" ")
			sb.WriteString(label)
		}
	}

	return sb.String()
}

// ParseLine は1行のテキスト表現からコントローラ入力を復元します。
// トークンは空白区切りで、先頭12個がボタン、続く6個が0〜255の整数、
// 残りが任意シグナルラベル（順不同、重複不可）です。
func ParseLine(line string) (ControllerInput, error) {
	var in ControllerInput
	tokens := strings.Fields(line)

	if len(tokens) < len(buttonLetters)+6 {
		return in, fmt.Errorf("%w: トークンが%d個しかありません", ErrTruncatedInput, len(tokens))
	}

	buttons := in.buttons()
	for i, letter := range buttonLetters {
		switch tokens[i] {
		case letter.upper:
			*buttons[i] = true
		case letter.lower:
			*buttons[i] = false
		default:
			return in, fmt.Errorf("%w: %d番目のボタンは %s か %s のはずですが %q でした",
				ErrInvalidToken, i+1, letter.upper, letter.lower, tokens[i])
		}
	}

	axes := [6]*uint8{&in.LPressure, &in.RPressure, &in.AnalogX, &in.AnalogY, &in.CX, &in.CY}
	for i, p := range axes {
		tok := tokens[len(buttonLetters)+i]
		v, err := strconv.ParseUint(tok, 10, 8)
		if err != nil {
			return in, fmt.Errorf("%w: %q は0〜255の整数ではありません", ErrInvalidToken, tok)
		}
		*p = uint8(v)
	}

	signals := in.signals()
	for _, tok := range tokens[len(buttonLetters)+6:] {
		idx := -1
		for i, label := range signalLabels {
			if tok == label {
				idx = i
				break
			}
		}
		if idx < 0 {
			return in, fmt.Errorf("%w: %q はシグナルラベルではありません", ErrInvalidToken, tok)
		}
		if *signals[idx] {
			return in, fmt.Errorf("%w: %s", ErrDuplicateSignal, tok)
		}
		*signals[idx] = true
	}

	return in, nil
}

// buttons はボタンフラグをbuttonLettersと同じ順で返します
func (in *ControllerInput) buttons() [12]*bool {
	return [12]*bool{
		&in.Start, &in.A, &in.B, &in.X, &in.Y, &in.Z,
		&in.Up, &in.Down, &in.Left, &in.Right, &in.L, &in.R,
	}
}

// signals はシグナルフラグをsignalLabelsと同じ順で返します
func (in *ControllerInput) signals() [4]*bool {
	return [4]*bool{&in.ChangeDisc, &in.Reset, &in.ControllerConnected, &in.Reserved}
}

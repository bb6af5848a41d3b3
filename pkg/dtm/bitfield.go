package dtm

import "fmt"

// BitField はレコード内の1フィールドに割り当てるビット幅を表します
type BitField struct {
	Name  string
	Width uint
}

// BitLayout は固定長レコードのフィールド並びを宣言します。
// ビットは各バイト内でLSBから、バイトは先頭から順に割り当てられます。
// エンコードとデコードで同じ割り当てを使うため、正しい入力に対して
// Pack(Unpack(x)) == x が成り立ちます。
type BitLayout []BitField

// Bits はレイアウト全体のビット数を返します
func (l BitLayout) Bits() uint {
	var total uint
	for _, f := range l {
		total += f.Width
	}
	return total
}

// Size はレイアウト全体を格納するのに必要なバイト数を返します（切り上げ）
func (l BitLayout) Size() int {
	return int((l.Bits() + 7) / 8)
}

// Unpack は buf からレイアウト順にフィールド値を取り出します。
// buf がレイアウトの要求より短い場合は ErrTruncatedInput を返します。
func (l BitLayout) Unpack(buf []byte) ([]uint64, error) {
	if len(buf) < l.Size() {
		return nil, &FormatError{Err: fmt.Errorf("%w: %dバイト必要ですが%dバイトしかありません", ErrTruncatedInput, l.Size(), len(buf))}
	}

	values := make([]uint64, len(l))
	pos := uint(0)
	for i, f := range l {
		if f.Width == 0 || f.Width > 64 {
			return nil, fmt.Errorf("invalid bit width for field %s: %d", f.Name, f.Width)
		}
		var v uint64
		for b := uint(0); b < f.Width; b++ {
			bit := (buf[pos/8] >> (pos % 8)) & 1
			v |= uint64(bit) << b
			pos++
		}
		values[i] = v
	}
	return values, nil
}

// Pack はフィールド値をレイアウト順に詰めたバイト列を返します。
// 値の数がレイアウトと一致しない場合や、値が宣言幅に収まらない場合は
// エラーを返します。
func (l BitLayout) Pack(values []uint64) ([]byte, error) {
	if len(values) != len(l) {
		return nil, fmt.Errorf("value count mismatch: layout has %d fields, got %d values", len(l), len(values))
	}

	buf := make([]byte, l.Size())
	pos := uint(0)
	for i, f := range l {
		if f.Width == 0 || f.Width > 64 {
			return nil, fmt.Errorf("invalid bit width for field %s: %d", f.Name, f.Width)
		}
		v := values[i]
		if f.Width < 64 && v >= 1<<f.Width {
			return nil, fmt.Errorf("value %d does not fit in %d bits for field %s", v, f.Width, f.Name)
		}
		for b := uint(0); b < f.Width; b++ {
			if (v>>b)&1 != 0 {
				buf[pos/8] |= 1 << (pos % 8)
			}
			pos++
		}
	}
	return buf, nil
}

package dtm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/bits"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// HeaderSize はマジックナンバーを含むヘッダ全体のバイト数
const HeaderSize = 256

// dtmMagic はファイル先頭の4バイトのマジックナンバー
var dtmMagic = [4]byte{'D', 'T', 'M', 0x1A}

// ヘッダ内の文字列・バイト列フィールドの格納幅
const (
	gameIDSize        = 6
	authorSize        = 32
	videoBackendSize  = 16
	audioEmulatorSize = 16
	md5Size           = 16
	reserved2Size     = 12
	secondDiscSize    = 40
	gitRevisionSize   = 20
	reserved3Size     = 11
)

// Header はDTMファイルの固定長ヘッダを表します。
// 各フィールドの並びと幅はバイナリレイアウトそのままで、
// コーデックが解釈しないフィールドもラウンドトリップで保存されます。
type Header struct {
	GameID               string   `json:"game_id"`
	WiiGame              bool     `json:"wii_game"`
	Controllers          uint8    `json:"controllers"`
	Savestate            bool     `json:"savestate"`
	VICount              uint64   `json:"vi_count"`
	InputCount           uint64   `json:"input_count"`
	LagCounter           uint64   `json:"lag_counter"`
	Reserved1            uint64   `json:"reserved1"`
	RerecordCount        uint32   `json:"rerecord_count"`
	Author               string   `json:"author"`
	VideoBackend         string   `json:"video_backend"`
	AudioEmulator        HexBytes `json:"audio_emulator"`
	MD5                  HexBytes `json:"md5"`
	StartTime            uint64   `json:"start_time"`
	ValidConfig          bool     `json:"valid_config"`
	IdleSkipping         bool     `json:"idle_skipping"`
	DualCore             bool     `json:"dual_core"`
	ProgressiveScan      bool     `json:"progressive_scan"`
	DSPHLE               bool     `json:"dsp_hle"`
	FastDisc             bool     `json:"fast_disc"`
	CPUCore              uint8    `json:"cpu_core"`
	EFBAccess            bool     `json:"efb_access"`
	EFBCopy              bool     `json:"efb_copy"`
	EFBToTexture         bool     `json:"efb_to_texture"`
	EFBCopyCache         bool     `json:"efb_copy_cache"`
	EmulateFormatChanges bool     `json:"emulate_format_changes"`
	UseXFB               bool     `json:"use_xfb"`
	UseRealXFB           bool     `json:"use_real_xfb"`
	MemoryCards          uint8    `json:"memory_cards"`
	MemoryCardBlank      bool     `json:"memory_card_blank"`
	BongosPlugged        uint8    `json:"bongos_plugged"`
	SyncGPU              bool     `json:"sync_gpu"`
	Netplay              bool     `json:"netplay"`
	SysconfPAL60         bool     `json:"sysconf_pal60"`
	Reserved2            HexBytes `json:"reserved2"`
	SecondDisc           string   `json:"second_disc"`
	GitRevision          HexBytes `json:"git_revision"`
	DSPIROMHash          uint32   `json:"dsp_irom_hash"`
	DSPCoefHash          uint32   `json:"dsp_coef_hash"`
	TickCount            uint64   `json:"tick_count"`
	Reserved3            HexBytes `json:"reserved3"`
}

// DecodeHeader は256バイトのヘッダを復元します。
// 先頭のマジックナンバーを最初に検証し、一致しなければ即座に失敗します。
func DecodeHeader(r io.Reader) (*Header, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, &FormatError{Field: "magic", Err: fmt.Errorf("%w: %v", ErrTruncatedInput, err)}
	}
	if magic != dtmMagic {
		return nil, &FormatError{Field: "magic", Err: ErrBadSignature}
	}

	buf := make([]byte, HeaderSize-len(magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &FormatError{Field: "header", Err: fmt.Errorf("%w: %v", ErrTruncatedInput, err)}
	}

	h := &Header{}
	fr := fieldReader{buf: buf}
	var err error
	if h.GameID, err = fr.str("game_id", gameIDSize); err != nil {
		return nil, err
	}
	h.WiiGame = fr.boolean()
	h.Controllers = fr.u8()
	h.Savestate = fr.boolean()
	h.VICount = fr.u64()
	h.InputCount = fr.u64()
	h.LagCounter = fr.u64()
	h.Reserved1 = fr.u64()
	h.RerecordCount = fr.u32()
	if h.Author, err = fr.str("author", authorSize); err != nil {
		return nil, err
	}
	if h.VideoBackend, err = fr.str("video_backend", videoBackendSize); err != nil {
		return nil, err
	}
	h.AudioEmulator = fr.bytes(audioEmulatorSize)
	h.MD5 = fr.bytes(md5Size)
	h.StartTime = fr.u64()
	h.ValidConfig = fr.boolean()
	h.IdleSkipping = fr.boolean()
	h.DualCore = fr.boolean()
	h.ProgressiveScan = fr.boolean()
	h.DSPHLE = fr.boolean()
	h.FastDisc = fr.boolean()
	h.CPUCore = fr.u8()
	h.EFBAccess = fr.boolean()
	h.EFBCopy = fr.boolean()
	h.EFBToTexture = fr.boolean()
	h.EFBCopyCache = fr.boolean()
	h.EmulateFormatChanges = fr.boolean()
	h.UseXFB = fr.boolean()
	h.UseRealXFB = fr.boolean()
	h.MemoryCards = fr.u8()
	h.MemoryCardBlank = fr.boolean()
	h.BongosPlugged = fr.u8()
	h.SyncGPU = fr.boolean()
	h.Netplay = fr.boolean()
	h.SysconfPAL60 = fr.boolean()
	h.Reserved2 = fr.bytes(reserved2Size)
	if h.SecondDisc, err = fr.str("second_disc", secondDiscSize); err != nil {
		return nil, err
	}
	h.GitRevision = fr.bytes(gitRevisionSize)
	h.DSPIROMHash = fr.u32()
	h.DSPCoefHash = fr.u32()
	h.TickCount = fr.u64()
	h.Reserved3 = fr.bytes(reserved3Size)

	return h, nil
}

// EncodeHeader はヘッダをマジックナンバーを含む256バイトに変換します
func (h *Header) EncodeHeader() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, HeaderSize))
	buf.Write(dtmMagic[:])

	fw := fieldWriter{buf: buf}
	if err := fw.str("game_id", h.GameID, gameIDSize); err != nil {
		return nil, err
	}
	fw.boolean(h.WiiGame)
	fw.u8(h.Controllers)
	fw.boolean(h.Savestate)
	fw.u64(h.VICount)
	fw.u64(h.InputCount)
	fw.u64(h.LagCounter)
	fw.u64(h.Reserved1)
	fw.u32(h.RerecordCount)
	if err := fw.str("author", h.Author, authorSize); err != nil {
		return nil, err
	}
	if err := fw.str("video_backend", h.VideoBackend, videoBackendSize); err != nil {
		return nil, err
	}
	if err := fw.bytes("audio_emulator", h.AudioEmulator, audioEmulatorSize); err != nil {
		return nil, err
	}
	if err := fw.bytes("md5", h.MD5, md5Size); err != nil {
		return nil, err
	}
	fw.u64(h.StartTime)
	fw.boolean(h.ValidConfig)
	fw.boolean(h.IdleSkipping)
	fw.boolean(h.DualCore)
	fw.boolean(h.ProgressiveScan)
	fw.boolean(h.DSPHLE)
	fw.boolean(h.FastDisc)
	fw.u8(h.CPUCore)
	fw.boolean(h.EFBAccess)
	fw.boolean(h.EFBCopy)
	fw.boolean(h.EFBToTexture)
	fw.boolean(h.EFBCopyCache)
	fw.boolean(h.EmulateFormatChanges)
	fw.boolean(h.UseXFB)
	fw.boolean(h.UseRealXFB)
	fw.u8(h.MemoryCards)
	fw.boolean(h.MemoryCardBlank)
	fw.u8(h.BongosPlugged)
	fw.boolean(h.SyncGPU)
	fw.boolean(h.Netplay)
	fw.boolean(h.SysconfPAL60)
	if err := fw.bytes("reserved2", h.Reserved2, reserved2Size); err != nil {
		return nil, err
	}
	if err := fw.str("second_disc", h.SecondDisc, secondDiscSize); err != nil {
		return nil, err
	}
	if err := fw.bytes("git_revision", h.GitRevision, gitRevisionSize); err != nil {
		return nil, err
	}
	fw.u32(h.DSPIROMHash)
	fw.u32(h.DSPCoefHash)
	fw.u64(h.TickCount)
	if err := fw.bytes("reserved3", h.Reserved3, reserved3Size); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ValidateSupport はこのコーデックが扱える構成かを検証します。
// GameCubeコントローラ1台のみを受け付け、Wiiリモコンやボンゴ等の
// 周辺機器データが含まれる構成は拒否します。
func (h *Header) ValidateSupport() error {
	if h.Controllers&0xF0 != 0 {
		return &FormatError{Field: "controllers", Err: fmt.Errorf("%w: Wiiリモコンの入力ストリームは扱えません", ErrUnsupportedConfiguration)}
	}
	if n := bits.OnesCount8(h.Controllers & 0x0F); n != 1 {
		return &FormatError{Field: "controllers", Err: fmt.Errorf("%w: 有効なGCコントローラは1台のみ対応です（%d台）", ErrUnsupportedConfiguration, n)}
	}
	if h.BongosPlugged != 0 {
		return &FormatError{Field: "bongos_plugged", Err: fmt.Errorf("%w: ボンゴの入力ストリームは扱えません", ErrUnsupportedConfiguration)}
	}
	return nil
}

// Validate は編集可能なフィールドがバイナリの格納幅に収まるかを検証します
func (h *Header) Validate() error {
	err := validation.ValidateStruct(h,
		validation.Field(&h.GameID, validation.Length(0, gameIDSize)),
		validation.Field(&h.Author, validation.Length(0, authorSize)),
		validation.Field(&h.VideoBackend, validation.Length(0, videoBackendSize)),
		validation.Field(&h.SecondDisc, validation.Length(0, secondDiscSize)),
		validation.Field(&h.AudioEmulator, validation.Length(audioEmulatorSize, audioEmulatorSize)),
		validation.Field(&h.MD5, validation.Length(md5Size, md5Size)),
		validation.Field(&h.Reserved2, validation.Length(reserved2Size, reserved2Size)),
		validation.Field(&h.GitRevision, validation.Length(gitRevisionSize, gitRevisionSize)),
		validation.Field(&h.Reserved3, validation.Length(reserved3Size, reserved3Size)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFieldTooLong, err)
	}
	return nil
}

// fieldReader は固定長バッファからフィールドを順に読み出します。
// バッファ長はDecodeHeaderで検証済みのため、各読み出しは失敗しません。
type fieldReader struct {
	buf []byte
	off int
}

func (r *fieldReader) next(n int) []byte {
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *fieldReader) bytes(n int) HexBytes {
	return HexBytes(append([]byte(nil), r.next(n)...))
}

func (r *fieldReader) u8() uint8 {
	return r.next(1)[0]
}

func (r *fieldReader) boolean() bool {
	return r.u8() != 0
}

func (r *fieldReader) u32() uint32 {
	return binary.LittleEndian.Uint32(r.next(4))
}

func (r *fieldReader) u64() uint64 {
	return binary.LittleEndian.Uint64(r.next(8))
}

// str は末尾のNULを取り除いた文字列を読み出します。
// UTF-8として不正なバイト列は日本語環境のDolphinが書き出すShift-JISと
// みなして変換を試みます。
func (r *fieldReader) str(field string, n int) (string, error) {
	raw := bytes.TrimRight(r.next(n), "\x00")
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	decoded, err := fromShiftJIS(raw)
	if err != nil {
		return "", &FormatError{Field: field, Err: fmt.Errorf("%w: %v", ErrInvalidString, err)}
	}
	return decoded, nil
}

// fieldWriter は固定長フィールドを順にバッファへ書き込みます
type fieldWriter struct {
	buf *bytes.Buffer
}

func (w *fieldWriter) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *fieldWriter) boolean(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

func (w *fieldWriter) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *fieldWriter) u64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

// str は文字列をNULで埋めてnバイトに固定して書き込みます
func (w *fieldWriter) str(field, v string, n int) error {
	if len(v) > n {
		return &FormatError{Field: field, Err: fmt.Errorf("%w: %dバイトまでですが%dバイトあります", ErrFieldTooLong, n, len(v))}
	}
	w.buf.WriteString(v)
	w.buf.Write(make([]byte, n-len(v)))
	return nil
}

// bytes は不透明フィールドをそのまま書き込みます。幅は厳密に一致が必要です。
func (w *fieldWriter) bytes(field string, v HexBytes, n int) error {
	if len(v) != n {
		return &FormatError{Field: field, Err: fmt.Errorf("%w: %dバイト必要ですが%dバイトです", ErrFieldTooLong, n, len(v))}
	}
	w.buf.Write(v)
	return nil
}

// fromShiftJIS はShift-JISのバイト列をUTF-8文字列に変換します
func fromShiftJIS(raw []byte) (string, error) {
	reader := strings.NewReader(string(raw))
	transformer := japanese.ShiftJIS.NewDecoder()
	decoded, err := io.ReadAll(transform.NewReader(reader, transformer))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

package writers

// Functions for writing to a file.
// Each one mirrors a reader in the readers package.

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"essdump/readers"
	"essdump/types"
)

func Write_uint8(out io.Writer, i uint8) error {
	_, err := out.Write([]byte{i})
	return err
}

func Write_uint16_le(out io.Writer, i uint16) error {
	_, err := out.Write(binary.LittleEndian.AppendUint16(nil, i))
	return err
}

func Write_uint32_le(out io.Writer, i uint32) error {
	_, err := out.Write(binary.LittleEndian.AppendUint32(nil, i))
	return err
}

func Write_int32_le(out io.Writer, i int32) error {
	return Write_uint32_le(out, uint32(i))
}

func Write_float32_le(out io.Writer, f float32) error {
	return Write_uint32_le(out, math.Float32bits(f))
}

func Write_uint32_array(out io.Writer, a []uint32) error {
	buf := make([]byte, 0, 4*len(a))
	for _, n := range a {
		buf = binary.LittleEndian.AppendUint32(buf, n)
	}
	_, err := out.Write(buf)
	return err
}

// Write_wstring writes a u16 length prefix and the raw string, no terminator
func Write_wstring(out io.Writer, s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string of length %v does not fit a 16 bit prefix: %w", len(s), types.ErrValueOutOfRange)
	}
	err := Write_uint16_le(out, uint16(len(s)))
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, s)
	return err
}

// Write_wstring_z is the legacy flavour, with a null on the end (counted in the length)
func Write_wstring_z(out io.Writer, s string) error {
	if len(s)+1 > math.MaxUint16 {
		return fmt.Errorf("string of length %v does not fit a 16 bit prefix: %w", len(s), types.ErrValueOutOfRange)
	}
	err := Write_uint16_le(out, uint16(len(s)+1))
	if err != nil {
		return err
	}
	_, err = out.Write(append([]byte(s), 0))
	return err
}

// Write_bzstring: u8 length, null terminated
func Write_bzstring(out io.Writer, s string) error {
	if len(s)+1 > math.MaxUint8 {
		return fmt.Errorf("string of length %v does not fit an 8 bit prefix: %w", len(s), types.ErrValueOutOfRange)
	}
	err := Write_uint8(out, uint8(len(s)+1))
	if err != nil {
		return err
	}
	_, err = out.Write(append([]byte(s), 0))
	return err
}

func Pack_refid(r types.RefId) ([3]byte, error) {
	if !r.Valid() {
		return [3]byte{}, fmt.Errorf("refid %v: %w", r, types.ErrValueOutOfRange)
	}
	return [3]byte{r.Flag<<6 | uint8(r.Value>>16), uint8(r.Value >> 8), uint8(r.Value)}, nil
}

func Write_refid(out io.Writer, r types.RefId) error {
	b, err := Pack_refid(r)
	if err != nil {
		return err
	}
	_, err = out.Write(b[:])
	return err
}

const (
	VSVAL_MAX_1 = 0x40
	VSVAL_MAX_2 = 0x4000
	VSVAL_MAX_4 = 0x40000000
)

// Pack_vsval picks the smallest width that fits
func Pack_vsval(n uint32) ([]byte, error) {
	switch {
	case n < VSVAL_MAX_1:
		return []byte{uint8(n << 2)}, nil
	case n < VSVAL_MAX_2:
		v := uint16(n<<2) | 1
		return binary.LittleEndian.AppendUint16(nil, v), nil
	case n < VSVAL_MAX_4:
		v := n<<2 | 2
		return binary.LittleEndian.AppendUint32(nil, v), nil
	}
	return nil, fmt.Errorf("vsval %v needs more than 30 bits: %w", n, types.ErrValueOutOfRange)
}

func Write_vsval(out io.Writer, n uint32) error {
	b, err := Pack_vsval(n)
	if err != nil {
		return err
	}
	_, err = out.Write(b)
	return err
}

// Time_to_filetime converts back to 100ns ticks since 1601.  Anything under 100ns is dropped.
func Time_to_filetime(t time.Time) (uint64, error) {
	secs := t.Unix() + readers.FILETIME_EPOCH_DELTA
	if secs < 0 || uint64(secs) > math.MaxUint64/readers.FILETIME_TICKS-1 {
		return 0, fmt.Errorf("time %v can't be a FILETIME: %w", t, types.ErrValueOutOfRange)
	}
	return uint64(secs)*readers.FILETIME_TICKS + uint64(t.Nanosecond()/100), nil
}

// Write_filetime writes low word, then high word
func Write_filetime(out io.Writer, t time.Time) error {
	ticks, err := Time_to_filetime(t)
	if err != nil {
		return err
	}
	err = Write_uint32_le(out, uint32(ticks))
	if err != nil {
		return err
	}
	return Write_uint32_le(out, uint32(ticks>>32))
}

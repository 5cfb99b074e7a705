package readers

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"essdump/types"
)

// Stream is a read cursor over a fully buffered save file.
// Everything is little-endian unless stated otherwise.
//
// An attempt was made to do all this with io.Reader.  It is much easier to say "not enough bytes left"
// (and to refuse a count of 4 billion before allocating for it) when the whole file is already in memory.
type Stream struct {
	buf []byte
	pos int
}

func New_stream(b []byte) *Stream {
	return &Stream{buf: b}
}

func (s *Stream) Pos() int {
	return s.pos
}

func (s *Stream) Remaining() int {
	return len(s.buf) - s.pos
}

func (s *Stream) At_end() bool {
	return s.pos >= len(s.buf)
}

// take returns the next n bytes without copying
func (s *Stream) take(n int) ([]byte, error) {
	if n < 0 || n > s.Remaining() {
		return nil, fmt.Errorf("need %v bytes at %v, only %v left: %w", n, s.pos, s.Remaining(), types.ErrTruncatedInput)
	}
	out := s.buf[s.pos : s.pos+n]
	s.pos += n
	return out, nil
}

// Advance skips forwards.  Like Read_fixed but without the copy.
func Advance(s *Stream, n int) error {
	_, err := s.take(n)
	return err
}

// Read_fixed reads exactly size bytes.  The result is a copy, so it's safe to hang on to.
func Read_fixed(s *Stream, size int) ([]byte, error) {
	b, err := s.take(size)
	if err != nil {
		return nil, err
	}
	return append([]byte{}, b...), nil
}

// Sub_stream carves the next size bytes off as a stream of their own.
// The parent advances by size no matter how much of the child gets read.
func Sub_stream(s *Stream, size int) (*Stream, error) {
	b, err := s.take(size)
	if err != nil {
		return nil, err
	}
	return New_stream(b), nil
}

// Check_count fails fast on a count that can't fit in what's left.
// min_size is the smallest possible encoding of one element.
func Check_count(s *Stream, count uint64, min_size int) error {
	if count*uint64(min_size) > uint64(s.Remaining()) {
		return fmt.Errorf("count %v (at least %v bytes each) at %v, only %v bytes left: %w", count, min_size, s.pos, s.Remaining(), types.ErrMalformedCount)
	}
	return nil
}

func Read_uint8(s *Stream) (uint8, error) {
	b, err := s.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func Read_uint16(s *Stream) (uint16, error) {
	b, err := s.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func Read_uint32(s *Stream) (uint32, error) {
	b, err := s.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func Read_int32(s *Stream) (int32, error) {
	n, err := Read_uint32(s)
	return int32(n), err
}

func Read_float32(s *Stream) (float32, error) {
	n, err := Read_uint32(s)
	return math.Float32frombits(n), err
}

// Read_uint32_array reads count u32s, after checking they can possibly be there
func Read_uint32_array(s *Stream, count uint32) ([]uint32, error) {
	err := Check_count(s, uint64(count), 4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		out[i], _ = Read_uint32(s) // can't fail, see above
	}
	return out, nil
}

// Read_wstring reads a string with a u16 length prefix and no terminator
func Read_wstring(s *Stream) (string, error) {
	length, err := Read_uint16(s)
	if err != nil {
		return "", err
	}
	b, err := s.take(int(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Read_wstring_z is the legacy flavour: the u16 length includes a trailing null, which gets dropped
func Read_wstring_z(s *Stream) (string, error) {
	length, err := Read_uint16(s)
	if err != nil {
		return "", err
	}
	return read_z(s, int(length))
}

// Read_bzstring reads the older sibling format: u8 length, including a trailing null
func Read_bzstring(s *Stream) (string, error) {
	length, err := Read_uint8(s)
	if err != nil {
		return "", err
	}
	return read_z(s, int(length))
}

func read_z(s *Stream, length int) (string, error) {
	b, err := s.take(length)
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}
	if b[length-1] != 0 {
		return "", fmt.Errorf("string at %v is not null-terminated: %w", s.pos-length, types.ErrMalformedRecord)
	}
	return string(b[:length-1]), nil
}

// Read_refid unpacks the 3-byte reference id.
// byte 0: top 2 bits are the flag, low 6 bits are the top of the value.  Bytes 1 and 2 are the rest of the value, high byte first.
func Read_refid(s *Stream) (types.RefId, error) {
	b, err := s.take(3)
	if err != nil {
		return types.RefId{}, err
	}
	return types.RefId{
		Flag:  b[0] >> 6,
		Value: uint32(b[0]&0x3F)<<16 | uint32(b[1])<<8 | uint32(b[2]),
	}, nil
}

// Read_vsval reads the variable-size integer.
// The low 2 bits of the first byte say how many bytes there are (0: 1, 1: 2, 2: 4).
// The value is all of them, little-endian, shifted right by 2.
func Read_vsval(s *Stream) (uint32, error) {
	start := s.pos
	first, err := Read_uint8(s)
	if err != nil {
		return 0, err
	}

	width := 0
	switch first & 3 {
	case 0:
		return uint32(first) >> 2, nil
	case 1:
		width = 2
	case 2:
		width = 4
	default:
		return 0, fmt.Errorf("vsval at %v has width tag 3: %w", start, types.ErrMalformedRecord)
	}

	rest, err := s.take(width - 1)
	if err != nil {
		return 0, err
	}
	n := uint32(first)
	for i, b := range rest {
		n |= uint32(b) << (8 * (i + 1))
	}
	return n >> 2, nil
}

const (
	// Seconds between 1601-01-01 and 1970-01-01
	FILETIME_EPOCH_DELTA = 11644473600
	FILETIME_TICKS       = 10000000 // per second
)

// Read_filetime reads a windows FILETIME: 100ns ticks since 1601, low word first.
// The result has no meaningful time zone; UTC is just somewhere to keep it.
func Read_filetime(s *Stream) (time.Time, error) {
	low, err := Read_uint32(s)
	if err != nil {
		return time.Time{}, err
	}
	high, err := Read_uint32(s)
	if err != nil {
		return time.Time{}, err
	}
	return Filetime_to_time(uint64(high)<<32 | uint64(low)), nil
}

func Filetime_to_time(ticks uint64) time.Time {
	secs := int64(ticks/FILETIME_TICKS) - FILETIME_EPOCH_DELTA
	nsec := int64(ticks%FILETIME_TICKS) * 100
	return time.Unix(secs, nsec).UTC()
}

package writers

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"essdump/readers"
	"essdump/types"
)

func Test_VsvalWidths(t *testing.T) {
	widths := map[uint32]int{
		0:          1,
		1:          1,
		32:         1,
		63:         1,
		64:         2,
		255:        2,
		4096:       2,
		16383:      2,
		16384:      4,
		0xFFFF:     4,
		0x12345:    4,
		0x10000000: 4,
		1<<30 - 1:  4,
	}
	for n, width := range widths {
		b, err := Pack_vsval(n)
		if err != nil {
			t.Errorf("%v: %v", n, err)
			continue
		}
		if len(b) != width {
			t.Errorf("%v: width %v, want %v", n, len(b), width)
		}
		got, err := readers.Read_vsval(readers.New_stream(b))
		if err != nil || got != n {
			t.Errorf("%v: read back %v (%v)", n, got, err)
		}
	}
}

func Test_VsvalBijection(t *testing.T) {
	// Every value near a width boundary, plus a stride through the whole range
	values := []uint32{}
	for _, edge := range []uint32{0x40, 0x4000, 0x40000000} {
		for d := uint32(0); d < 64; d++ {
			values = append(values, edge-1-d)
			if edge+d < 0x40000000 {
				values = append(values, edge+d)
			}
		}
	}
	for n := uint32(0); n < 0x40000000; n += 104729 {
		values = append(values, n)
	}

	for _, n := range values {
		buf := &bytes.Buffer{}
		if err := Write_vsval(buf, n); err != nil {
			t.Fatalf("%v: %v", n, err)
		}
		got, err := readers.Read_vsval(readers.New_stream(buf.Bytes()))
		if err != nil || got != n {
			t.Fatalf("%v: read back %v (%v)", n, got, err)
		}
	}
}

func Test_VsvalOutOfRange(t *testing.T) {
	_, err := Pack_vsval(0x40000000)
	if !errors.Is(err, types.ErrValueOutOfRange) {
		t.Errorf("expected value out of range, got %v", err)
	}
}

func Test_RefidBijection(t *testing.T) {
	for flag := uint8(0); flag <= 3; flag++ {
		for value := uint32(0); value < 1<<22; value += 997 {
			check_refid(t, types.RefId{Flag: flag, Value: value})
		}
		check_refid(t, types.RefId{Flag: flag, Value: 1<<22 - 1})
	}
}

func check_refid(t *testing.T, r types.RefId) {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := Write_refid(buf, r); err != nil {
		t.Fatalf("%v: %v", r, err)
	}
	if buf.Len() != 3 {
		t.Fatalf("%v: wrote %v bytes", r, buf.Len())
	}
	got, err := readers.Read_refid(readers.New_stream(buf.Bytes()))
	if err != nil || got != r {
		t.Fatalf("%v: read back %v (%v)", r, got, err)
	}
}

func Test_RefidOutOfRange(t *testing.T) {
	for _, r := range []types.RefId{{Flag: 4}, {Value: 1 << 22}} {
		if err := Write_refid(&bytes.Buffer{}, r); !errors.Is(err, types.ErrValueOutOfRange) {
			t.Errorf("%v: expected value out of range, got %v", r, err)
		}
	}
}

func Test_StringsRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	Write_wstring(buf, "Prisoner")
	Write_wstring(buf, "")
	Write_wstring_z(buf, "legacy")
	Write_bzstring(buf, "older")

	s := readers.New_stream(buf.Bytes())
	for _, want := range []string{"Prisoner", ""} {
		got, err := readers.Read_wstring(s)
		if err != nil || got != want {
			t.Errorf("got %q (%v), want %q", got, err, want)
		}
	}
	if got, err := readers.Read_wstring_z(s); err != nil || got != "legacy" {
		t.Errorf("got %q (%v)", got, err)
	}
	if got, err := readers.Read_bzstring(s); err != nil || got != "older" {
		t.Errorf("got %q (%v)", got, err)
	}
}

func Test_StringTooLong(t *testing.T) {
	err := Write_wstring(&bytes.Buffer{}, strings.Repeat("x", 0x10000))
	if !errors.Is(err, types.ErrValueOutOfRange) {
		t.Errorf("expected value out of range, got %v", err)
	}
	err = Write_bzstring(&bytes.Buffer{}, strings.Repeat("x", 255))
	if !errors.Is(err, types.ErrValueOutOfRange) {
		t.Errorf("expected value out of range, got %v", err)
	}
}

func Test_FiletimeRoundTrip(t *testing.T) {
	times := []time.Time{
		time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2011, 11, 11, 11, 11, 11, 123456700, time.UTC),
		time.Date(2024, 2, 29, 23, 59, 59, 999999900, time.UTC),
	}
	for _, want := range times {
		buf := &bytes.Buffer{}
		if err := Write_filetime(buf, want); err != nil {
			t.Fatal(err)
		}
		got, err := readers.Read_filetime(readers.New_stream(buf.Bytes()))
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}

	if err := Write_filetime(&bytes.Buffer{}, time.Date(1600, 12, 31, 0, 0, 0, 0, time.UTC)); !errors.Is(err, types.ErrValueOutOfRange) {
		t.Errorf("expected value out of range, got %v", err)
	}
}

func Test_FiletimeWordOrder(t *testing.T) {
	buf := &bytes.Buffer{}
	Write_filetime(buf, readers.Filetime_to_time(0x0102030405060708))
	want := []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x, want % x", buf.Bytes(), want)
	}
}

package readers

import (
	"errors"
	"testing"
	"time"

	"essdump/types"
)

func Test_ReadRefid(t *testing.T) {
	cases := []struct {
		in   []byte
		want types.RefId
	}{
		{[]byte{0x00, 0x00, 0x05}, types.RefId{Flag: 0, Value: 5}},
		{[]byte{0x40, 0x00, 0x00}, types.RefId{Flag: 1, Value: 0}},
		{[]byte{0xFF, 0xFF, 0xFF}, types.RefId{Flag: 3, Value: 0x3FFFFF}},
		{[]byte{0x81, 0x02, 0x03}, types.RefId{Flag: 2, Value: 0x010203}},
	}
	for _, c := range cases {
		got, err := Read_refid(New_stream(c.in))
		if err != nil {
			t.Errorf("%v: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("%v: got %v, want %v", c.in, got, c.want)
		}
	}
}

func Test_ReadRefidTruncated(t *testing.T) {
	s := New_stream([]byte{1, 2})
	_, err := Read_refid(s)
	if !errors.Is(err, types.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
}

func Test_ReadVsval(t *testing.T) {
	cases := []struct {
		in   []byte
		want uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x04}, 1},
		{[]byte{0xFC}, 63},
		{[]byte{0x01, 0x01}, 64},
		{[]byte{0xFD, 0xFF}, 16383},
		{[]byte{0x02, 0x00, 0x01, 0x00}, 16384},
		{[]byte{0xFE, 0xFF, 0xFF, 0xFF}, 1<<30 - 1},
	}
	for _, c := range cases {
		s := New_stream(c.in)
		got, err := Read_vsval(s)
		if err != nil {
			t.Errorf("%v: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("%v: got %v, want %v", c.in, got, c.want)
		}
		if !s.At_end() {
			t.Errorf("%v: %v bytes left over", c.in, s.Remaining())
		}
	}
}

func Test_ReadVsvalBadWidth(t *testing.T) {
	_, err := Read_vsval(New_stream([]byte{0x03, 0, 0, 0}))
	if !errors.Is(err, types.ErrMalformedRecord) {
		t.Errorf("expected malformed record, got %v", err)
	}
	_, err = Read_vsval(New_stream([]byte{0x02, 0}))
	if !errors.Is(err, types.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
}

func Test_ReadStrings(t *testing.T) {
	s := New_stream([]byte{
		3, 0, 'a', 'b', 'c', // wstring
		0, 0, // empty wstring
		3, 0, 'x', 'y', 0, // wstring with null
		4, 'b', 'z', 'z', 0, // bzstring
	})
	want := []string{"abc", "", "xy", "bzz"}
	got := []string{}
	for _, read := range []func(*Stream) (string, error){Read_wstring, Read_wstring, Read_wstring_z, Read_bzstring} {
		str, err := read(s)
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, str)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("string %v: got %q, want %q", i, got[i], want[i])
		}
	}
	if !s.At_end() {
		t.Errorf("%v bytes left over", s.Remaining())
	}
}

func Test_ReadWstringTruncated(t *testing.T) {
	_, err := Read_wstring(New_stream([]byte{5, 0, 'a', 'b'}))
	if !errors.Is(err, types.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
}

func Test_ReadFiletime(t *testing.T) {
	// 2011-11-11 00:00:00, in ticks: (1320969600 + 11644473600) * 10^7
	ticks := uint64(1320969600+FILETIME_EPOCH_DELTA) * FILETIME_TICKS
	b := []byte{}
	for i := 0; i < 8; i++ {
		b = append(b, byte(ticks>>(8*i)))
	}
	got, err := Read_filetime(New_stream(b))
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2011, 11, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if !Filetime_to_time(0).Equal(time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("tick 0 is %v", Filetime_to_time(0))
	}
}

func Test_CheckCount(t *testing.T) {
	s := New_stream(make([]byte, 8))
	if err := Check_count(s, 2, 4); err != nil {
		t.Errorf("2x4 bytes should fit in 8: %v", err)
	}
	if err := Check_count(s, 0xFFFFFFFF, 4); !errors.Is(err, types.ErrMalformedCount) {
		t.Errorf("expected malformed count, got %v", err)
	}
	_, err := Read_uint32_array(s, 3)
	if !errors.Is(err, types.ErrMalformedCount) {
		t.Errorf("expected malformed count, got %v", err)
	}
}

func Test_SubStream(t *testing.T) {
	s := New_stream([]byte{1, 2, 3, 4, 5})
	sub, err := Sub_stream(s, 3)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Read_uint8(sub)
	if b != 1 {
		t.Errorf("sub stream starts at %v", b)
	}
	if s.Pos() != 3 {
		t.Errorf("parent at %v, expected 3", s.Pos())
	}
	if _, err := Sub_stream(s, 3); !errors.Is(err, types.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
}

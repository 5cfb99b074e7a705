package records

import (
	"bytes"
	"errors"
	"testing"

	"essdump/readers"
	"essdump/tables"
	"essdump/types"
)

func Test_ClassRecomputed(t *testing.T) {
	// Class 2 (u32 lengths) holding only 10 bytes
	in := []byte{
		0x40, 0x00, 0x14, // refid 1:000014
		0x01, 0x00, 0x00, 0x80, // flags
		0x80 | 0x01, // class 2, ACHR
		74,          // version
		10, 0, 0, 0, // length1
		0, 0, 0, 0, // length2
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	}
	s := readers.New_stream(in)
	rec, err := Read_change_record(s)
	if err != nil {
		t.Fatal(err)
	}
	if !s.At_end() {
		t.Errorf("%v bytes left over", s.Remaining())
	}
	if rec.RefId != (types.RefId{Flag: 1, Value: 0x14}) || rec.ChangeFlags != 0x80000001 || rec.TypeCode != 1 || rec.Version != 74 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Length1() != 10 || rec.Length2 != 0 {
		t.Errorf("lengths %v, %v", rec.Length1(), rec.Length2)
	}

	buf := &bytes.Buffer{}
	if err := Write_change_record(buf, &rec); err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x40, 0x00, 0x14,
		0x01, 0x00, 0x00, 0x80,
		0x01, // class 0
		74,
		10, // length1
		0,  // length2
		1, 2, 3, 4, 5, 6, 7, 8, 9, 10,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("got % x\nwant % x", buf.Bytes(), want)
	}
	if Encoded_size(&rec) != len(want) {
		t.Errorf("encoded size %v, actual %v", Encoded_size(&rec), len(want))
	}
}

func Test_ClassFromLength2(t *testing.T) {
	rec := types.ChangeRecord{TypeCode: 6, Data: []byte{1, 2, 3}, Length2: 0x1234}
	if c := Size_class(&rec); c != CLASS_U16 {
		t.Errorf("class %v", c)
	}
	rec.Length2 = 0x12345
	if c := Size_class(&rec); c != CLASS_U32 {
		t.Errorf("class %v", c)
	}

	buf := &bytes.Buffer{}
	Write_change_record(buf, &rec)
	got, err := Read_change_record(readers.New_stream(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got.Length2 != 0x12345 || !bytes.Equal(got.Data, rec.Data) {
		t.Errorf("got %+v", got)
	}
}

func Test_ClassBoundaries(t *testing.T) {
	for size, class := range map[int]uint8{0: 0, 0xFF: 0, 0x100: 1, 0xFFFF: 1, 0x10000: 2} {
		rec := types.ChangeRecord{Data: make([]byte, size)}
		if c := Size_class(&rec); c != class {
			t.Errorf("%v bytes: class %v, want %v", size, c, class)
		}
		buf := &bytes.Buffer{}
		Write_change_record(buf, &rec)
		if buf.Len() != Encoded_size(&rec) {
			t.Errorf("%v bytes: wrote %v, expected %v", size, buf.Len(), Encoded_size(&rec))
		}
	}
}

func Test_BadClass(t *testing.T) {
	in := []byte{0, 0, 1, 0, 0, 0, 0, 0xC0, 1, 0, 0, 0, 0, 0, 0, 0, 0}
	_, err := Read_change_record(readers.New_stream(in))
	if !errors.Is(err, types.ErrMalformedRecord) {
		t.Errorf("expected malformed record, got %v", err)
	}
}

func Test_TruncatedData(t *testing.T) {
	in := []byte{0, 0, 1, 0, 0, 0, 0, 0x00, 1, 20, 0, 1, 2, 3}
	_, err := Read_change_record(readers.New_stream(in))
	if !errors.Is(err, types.ErrTruncatedInput) {
		t.Errorf("expected truncated input, got %v", err)
	}
}

func Test_UnknownFormTypeIsNotFatal(t *testing.T) {
	in := []byte{0, 0, 1, 0, 0, 0, 0, 0x3F, 1, 2, 0, 0xAA, 0xBB}
	s := readers.New_stream(in)
	rec, err := Read_change_record(s)
	if err != nil {
		t.Fatalf("decode should not care about the type code: %v", err)
	}
	if _, err := Form_type(&rec); !errors.Is(err, types.ErrUnknownFormType) {
		t.Errorf("expected unknown form type, got %v", err)
	}

	buf := &bytes.Buffer{}
	Write_change_record(buf, &rec)
	if !bytes.Equal(buf.Bytes(), in) {
		t.Errorf("unknown type code did not round trip: % x", buf.Bytes())
	}
}

func Test_FormType(t *testing.T) {
	for code, want := range map[uint8]tables.FormType{0: tables.FT_REFR, 1: tables.FT_ACHR, 6: tables.FT_CELL, 8: tables.FT_QUST, 9: tables.FT_NPC} {
		rec := types.ChangeRecord{TypeCode: code}
		got, err := Form_type(&rec)
		if err != nil || got != want {
			t.Errorf("code %v: got %v (%v), want %v", code, got, err, want)
		}
	}
}

func Test_CompressedPayload(t *testing.T) {
	plain := bytes.Repeat([]byte("dragonborn "), 40)
	rec := types.ChangeRecord{TypeCode: 9, Length2: 1}
	if err := Set_payload(&rec, plain); err != nil {
		t.Fatal(err)
	}
	if rec.Length2 != uint32(len(plain)) {
		t.Errorf("length2 %v, want %v", rec.Length2, len(plain))
	}
	if len(rec.Data) >= len(plain) {
		t.Errorf("%v bytes did not compress (%v)", len(plain), len(rec.Data))
	}

	buf := &bytes.Buffer{}
	Write_change_record(buf, &rec)
	again, err := Read_change_record(readers.New_stream(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	got, err := Payload(&again)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plain) {
		t.Errorf("payload did not survive compression")
	}

	// Lie about the size
	again.Length2 += 1
	if _, err := Payload(&again); !errors.Is(err, types.ErrMalformedRecord) {
		t.Errorf("expected malformed record, got %v", err)
	}
	again.Length2 -= 2
	if _, err := Payload(&again); !errors.Is(err, types.ErrMalformedRecord) {
		t.Errorf("expected malformed record, got %v", err)
	}
}

func Test_UncompressedPayload(t *testing.T) {
	rec := types.ChangeRecord{Data: []byte{1, 2, 3}}
	got, err := Payload(&rec)
	if err != nil || !bytes.Equal(got, rec.Data) {
		t.Errorf("got %v (%v)", got, err)
	}
	Set_payload(&rec, []byte{4, 5})
	if !bytes.Equal(rec.Data, []byte{4, 5}) || rec.Length2 != 0 {
		t.Errorf("got %+v", rec)
	}

	rec = types.ChangeRecord{Data: []byte{0x78, 0x9C, 0xFF}, Length2: 10}
	if _, err := Payload(&rec); !errors.Is(err, types.ErrMalformedRecord) {
		t.Errorf("expected malformed record, got %v", err)
	}
}

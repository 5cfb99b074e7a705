package records

// Change records ("change forms").
//
// refid, u32 change flags, u8 type, u8 version, then two lengths whose width is given by the top 2 bits
// of the type byte, then length1 bytes of payload.  length2 is the uncompressed size when the payload
// is zlib compressed, and 0 otherwise.

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"essdump/readers"
	"essdump/tables"
	"essdump/types"
	"essdump/writers"
)

// Size classes: how wide length1 and length2 are
const (
	CLASS_U8 = iota
	CLASS_U16
	CLASS_U32
)

// Smallest possible record: refid, flags, type, version, two u8 lengths
const MIN_RECORD_SIZE = 3 + 4 + 1 + 1 + 2

func read_length(s *readers.Stream, class uint8) (uint32, error) {
	switch class {
	case CLASS_U8:
		n, err := readers.Read_uint8(s)
		return uint32(n), err
	case CLASS_U16:
		n, err := readers.Read_uint16(s)
		return uint32(n), err
	case CLASS_U32:
		return readers.Read_uint32(s)
	}
	return 0, fmt.Errorf("length size class %v at %v: %w", class, s.Pos(), types.ErrMalformedRecord)
}

// Read_change_record reads one record.  An unmapped type code is not an error here; see Form_type.
func Read_change_record(s *readers.Stream) (types.ChangeRecord, error) {
	rec := types.ChangeRecord{}
	var err error
	if rec.RefId, err = readers.Read_refid(s); err != nil {
		return rec, err
	}
	if rec.ChangeFlags, err = readers.Read_uint32(s); err != nil {
		return rec, err
	}
	type_byte, err := readers.Read_uint8(s)
	if err != nil {
		return rec, err
	}
	rec.TypeCode = type_byte & 0x3F
	class := type_byte >> 6
	if rec.Version, err = readers.Read_uint8(s); err != nil {
		return rec, err
	}

	length1, err := read_length(s, class)
	if err != nil {
		return rec, err
	}
	if rec.Length2, err = read_length(s, class); err != nil {
		return rec, err
	}
	if uint64(length1) > uint64(s.Remaining()) {
		return rec, fmt.Errorf("record %v claims %v bytes, only %v left: %w", rec.RefId, length1, s.Remaining(), types.ErrTruncatedInput)
	}
	rec.Data, err = readers.Read_fixed(s, int(length1))
	return rec, err
}

// Size_class is the narrowest length width that holds both lengths
func Size_class(rec *types.ChangeRecord) uint8 {
	biggest := uint64(len(rec.Data))
	if uint64(rec.Length2) > biggest {
		biggest = uint64(rec.Length2)
	}
	switch {
	case biggest <= 0xFF:
		return CLASS_U8
	case biggest <= 0xFFFF:
		return CLASS_U16
	}
	return CLASS_U32
}

// Write_change_record writes a record, choosing the size class from the data.
// Whatever class the record was read with is irrelevant.
func Write_change_record(out io.Writer, rec *types.ChangeRecord) error {
	if uint64(len(rec.Data)) > 0xFFFFFFFF {
		return fmt.Errorf("record %v has %v bytes of data: %w", rec.RefId, len(rec.Data), types.ErrValueOutOfRange)
	}
	if rec.TypeCode > 0x3F {
		return fmt.Errorf("record %v has type code %v: %w", rec.RefId, rec.TypeCode, types.ErrValueOutOfRange)
	}
	if err := writers.Write_refid(out, rec.RefId); err != nil {
		return err
	}
	writers.Write_uint32_le(out, rec.ChangeFlags)
	class := Size_class(rec)
	writers.Write_uint8(out, class<<6|rec.TypeCode)
	writers.Write_uint8(out, rec.Version)

	for _, n := range []uint32{uint32(len(rec.Data)), rec.Length2} {
		switch class {
		case CLASS_U8:
			writers.Write_uint8(out, uint8(n))
		case CLASS_U16:
			writers.Write_uint16_le(out, uint16(n))
		default:
			writers.Write_uint32_le(out, n)
		}
	}
	_, err := out.Write(rec.Data)
	return err
}

// Encoded_size is how many bytes Write_change_record will produce
func Encoded_size(rec *types.ChangeRecord) int {
	return 3 + 4 + 1 + 1 + 2*(1<<Size_class(rec)) + len(rec.Data)
}

// Form_type maps the record's savegame type code onto a form type
func Form_type(rec *types.ChangeRecord) (tables.FormType, error) {
	ft, err := tables.Form_type(rec.TypeCode)
	if err != nil {
		return ft, fmt.Errorf("record %v: %w", rec.RefId, err)
	}
	return ft, nil
}

func Is_compressed(rec *types.ChangeRecord) bool {
	return rec.Length2 > 0
}

// Payload returns the record data, inflated if it is compressed.
// The inflated size must match length2.
func Payload(rec *types.ChangeRecord) ([]byte, error) {
	if !Is_compressed(rec) {
		return rec.Data, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(rec.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate record %v: %v: %w", rec.RefId, err, types.ErrMalformedRecord)
	}
	defer r.Close()

	// One byte of slack so that oversized data is noticed rather than cut off
	out, err := io.ReadAll(io.LimitReader(r, int64(rec.Length2)+1))
	if err != nil {
		return nil, fmt.Errorf("failed to inflate record %v: %v: %w", rec.RefId, err, types.ErrMalformedRecord)
	}
	if len(out) != int(rec.Length2) {
		return nil, fmt.Errorf("record %v inflated to %v bytes, expected %v: %w", rec.RefId, len(out), rec.Length2, types.ErrMalformedRecord)
	}
	return out, nil
}

// Set_payload replaces the record data.  Compressed records stay compressed.
func Set_payload(rec *types.ChangeRecord, payload []byte) error {
	if !Is_compressed(rec) {
		rec.Data = append([]byte{}, payload...)
		return nil
	}
	if len(payload) == 0 {
		// length2 = 0 means uncompressed, so an empty compressed record can't exist
		return fmt.Errorf("record %v: empty compressed payload: %w", rec.RefId, types.ErrValueOutOfRange)
	}
	if uint64(len(payload)) > 0xFFFFFFFF {
		return fmt.Errorf("record %v: payload of %v bytes: %w", rec.RefId, len(payload), types.ErrValueOutOfRange)
	}

	buf := &bytes.Buffer{}
	w := zlib.NewWriter(buf)
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to deflate record %v: %w", rec.RefId, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to deflate record %v: %w", rec.RefId, err)
	}
	rec.Data = buf.Bytes()
	rec.Length2 = uint32(len(payload))
	return nil
}

package blocks

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"essdump/types"
	"essdump/writers"
)

func Test_OpaqueFallback(t *testing.T) {
	data := make([]byte, 42)
	for i := range data {
		data[i] = byte(i * 7)
	}
	entry, err := Decode(9999, data, types.FC_STANDARD)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Type != 9999 || entry.Name != "Unknown 9999" {
		t.Errorf("got type %v name %q", entry.Type, entry.Name)
	}
	blob, ok := entry.Payload.(types.Opaque)
	if !ok || !bytes.Equal(blob, data) {
		t.Fatalf("expected a 42 byte opaque blob, got %T", entry.Payload)
	}

	out, err := Encode(&entry, types.FC_STANDARD)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("re-encoded bytes differ")
	}

	// The blob must not alias the input
	data[0] = 0xFF
	if blob[0] == 0xFF {
		t.Errorf("opaque payload shares memory with the source")
	}
}

func Test_LookupUnknown(t *testing.T) {
	c, err := Lookup(9999, types.FC_STANDARD)
	if !errors.Is(err, types.ErrUnknownGlobalDataType) {
		t.Errorf("expected unknown global data type, got %v", err)
	}
	if c == nil || !c.Is_opaque() {
		t.Errorf("unknown types should still get an opaque codec")
	}
}

func Test_KnownOpaqueTypes(t *testing.T) {
	for _, bt := range []uint32{4, 5, 6, 7, 8, 100, 114, 1001, 1005} {
		entry, err := Decode(bt, []byte{1, 2, 3}, types.FC_STANDARD)
		if err != nil {
			t.Errorf("%v: %v", bt, err)
			continue
		}
		if !entry.Is_opaque() {
			t.Errorf("%v (%v) should be opaque", bt, entry.Name)
		}
	}
}

func player_location_bytes(extra ...byte) []byte {
	buf := &bytes.Buffer{}
	writers.Write_uint32_le(buf, 0xFF000123)
	writers.Write_refid(buf, types.RefId{Flag: 1, Value: 0x3C})
	for _, n := range []uint32{1, 2, 3, 4} {
		writers.Write_uint32_le(buf, n)
	}
	writers.Write_refid(buf, types.RefId{Flag: 1, Value: 0x3C})
	buf.Write(extra)
	return buf.Bytes()
}

func Test_PlayerLocationVersionGate(t *testing.T) {
	// 30 bytes: the pre-9 layout exactly
	data := player_location_bytes(0, 0, 0x80, 0x3F)

	pre9, err := Decode(1, data, types.Format_class(8))
	if err != nil {
		t.Fatal(err)
	}
	standard, err := Decode(1, data, types.Format_class(9))
	if err != nil {
		t.Fatal(err)
	}
	if reflect.TypeOf(pre9.Payload) == reflect.TypeOf(standard.Payload) {
		t.Fatalf("versions 8 and 9 decoded to the same shape (%T)", pre9.Payload)
	}
	loc, ok := pre9.Payload.(*types.PlayerLocationPre9)
	if !ok {
		t.Fatalf("version 8 gave %T", pre9.Payload)
	}
	if loc.Cell != [4]uint32{1, 2, 3, 4} || loc.Tail != 0x3F800000 {
		t.Errorf("unexpected pre-9 location %+v", loc)
	}
	// The standard layout is a byte longer, so these bytes can't be one
	if !standard.Is_opaque() {
		t.Errorf("version 9 should not have found a structured layout in 30 bytes")
	}

	// 31 bytes: the standard layout
	data = player_location_bytes(0, 0, 0x80, 0x3F, 1)
	standard, _ = Decode(1, data, types.FC_STANDARD)
	std, ok := standard.Payload.(*types.PlayerLocation)
	if !ok {
		t.Fatalf("version 9 gave %T", standard.Payload)
	}
	if std.CoorX != 1 || std.CoorY != 2 || std.PosZ != 1.0 || std.Unknown != 1 {
		t.Errorf("unexpected location %+v", std)
	}
	pre9, _ = Decode(1, data, types.FC_PRE9)
	if !pre9.Is_opaque() {
		t.Errorf("version 8 should not have found a structured layout in 31 bytes")
	}

	for _, e := range []types.GlobalDataEntry{pre9, standard} {
		fc := types.FC_STANDARD
		if e.Is_opaque() {
			fc = types.FC_PRE9
		}
		out, err := Encode(&e, fc)
		if err != nil || !bytes.Equal(out, data) {
			t.Errorf("%T did not re-encode (%v)", e.Payload, err)
		}
	}
}

func Test_PlayerLocationOldVersion(t *testing.T) {
	// 30 bytes: the pre-9 layout
	data := player_location_bytes(0, 0, 0x80, 0x3F)
	for _, version := range []uint32{0, 3, 6, 8} {
		entry, err := Decode(1, data, types.Format_class(version))
		if err != nil {
			t.Fatalf("version %v: %v", version, err)
		}
		if _, ok := entry.Payload.(*types.PlayerLocationPre9); !ok {
			t.Errorf("version %v gave %T", version, entry.Payload)
		}
	}
}

func Test_PlayerLocationNoFormatClass(t *testing.T) {
	_, err := Decode(1, player_location_bytes(0, 0, 0, 0), types.FC_NONE)
	if !errors.Is(err, types.ErrVersionMismatch) {
		t.Errorf("expected version mismatch, got %v", err)
	}
	// Only Player Location is version gated
	if _, err := Decode(3, []byte{0}, types.FC_NONE); err != nil {
		t.Errorf("Global Variables should not care about version: %v", err)
	}
}

func Test_GlobalVariables(t *testing.T) {
	data := []byte{
		0x04,             // vsval 1
		0x00, 0x00, 0x05, // refid 0:5
		0x00, 0x00, 0x60, 0x40, // 3.5
	}
	entry, err := Decode(3, data, types.FC_STANDARD)
	if err != nil {
		t.Fatal(err)
	}
	if entry.Name != "Global Variables" {
		t.Errorf("name is %q", entry.Name)
	}
	globals, ok := entry.Payload.(*types.GlobalVariables)
	if !ok {
		t.Fatalf("got %T", entry.Payload)
	}
	want := []types.GlobalVariable{{RefId: types.RefId{Flag: 0, Value: 5}, Value: 3.5}}
	if !reflect.DeepEqual(globals.Vars, want) {
		t.Errorf("got %+v, want %+v", globals.Vars, want)
	}

	globals.Vars = append(globals.Vars, types.GlobalVariable{RefId: types.RefId{Flag: 2, Value: 0x1234}, Value: -1})
	out, err := Encode(&entry, types.FC_STANDARD)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := Decode(3, out, types.FC_STANDARD)
	if !reflect.DeepEqual(again.Payload, entry.Payload) {
		t.Errorf("edited globals did not survive: %+v", again.Payload)
	}
}

func Test_MiscStats(t *testing.T) {
	stats := &types.MiscStats{Stats: []types.MiscStat{
		{Name: "Locations Discovered", Category: 0, Value: 12},
		{Name: "Bribes", Category: 5, Value: -1},
		{Name: "", Category: 9, Value: 0},
	}}
	entry := types.GlobalDataEntry{Type: 0, Name: "Misc Stats", Payload: stats}
	data, err := Encode(&entry, types.FC_STANDARD)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(0, data, types.FC_STANDARD)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got.Payload, stats) {
		t.Errorf("got %+v", got.Payload)
	}
}

func Test_TesRoundTrip(t *testing.T) {
	tes := &types.Tes{
		List1: []types.TesItem{{RefId: types.RefId{Value: 1}, Unknown: 7}, {RefId: types.RefId{Flag: 1, Value: 2}, Unknown: 0xFFFF}},
		List2: []types.RefId{{Value: 3}},
		List3: []types.RefId{{Flag: 2, Value: 4}, {Flag: 3, Value: 5}},
	}
	entry := types.GlobalDataEntry{Type: 2, Name: "Tes", Payload: tes}
	data, err := Encode(&entry, types.FC_STANDARD)
	if err != nil {
		t.Fatal(err)
	}
	got, _ := Decode(2, data, types.FC_STANDARD)
	if !reflect.DeepEqual(got.Payload, tes) {
		t.Errorf("got %+v", got.Payload)
	}
}

func Test_ResidualBytesFallBack(t *testing.T) {
	// A perfectly good Global Variables block with a stray byte on the end
	data := []byte{0x04, 0x00, 0x00, 0x05, 0x00, 0x00, 0x60, 0x40, 0x99}
	entry, err := Decode(3, data, types.FC_STANDARD)
	if err != nil {
		t.Fatal(err)
	}
	if !entry.Is_opaque() {
		t.Errorf("expected opaque fallback, got %T", entry.Payload)
	}

	// Count claims more than there is
	entry, _ = Decode(0, []byte{0xFF, 0xFF, 0, 0}, types.FC_STANDARD)
	if !entry.Is_opaque() {
		t.Errorf("expected opaque fallback, got %T", entry.Payload)
	}
}

func Test_NonCanonicalVsvalFallsBack(t *testing.T) {
	// Count 1 written in 2 bytes.  Decodes fine, but would re-encode as 1 byte.
	data := []byte{0x05, 0x00, 0x00, 0x00, 0x05, 0x00, 0x00, 0x60, 0x40}
	entry, _ := Decode(3, data, types.FC_STANDARD)
	if !entry.Is_opaque() {
		t.Fatalf("expected opaque fallback, got %T", entry.Payload)
	}
	out, _ := Encode(&entry, types.FC_STANDARD)
	if !bytes.Equal(out, data) {
		t.Errorf("opaque fallback did not preserve bytes")
	}
}

func Test_EncodeWrongPayload(t *testing.T) {
	entry := types.GlobalDataEntry{Type: 3, Name: "Global Variables", Payload: &types.MiscStats{}}
	if _, err := Encode(&entry, types.FC_STANDARD); !errors.Is(err, types.ErrMalformedRecord) {
		t.Errorf("expected malformed record, got %v", err)
	}
	entry = types.GlobalDataEntry{Type: 1, Name: "Player Location", Payload: &types.PlayerLocationPre9{}}
	if _, err := Encode(&entry, types.FC_STANDARD); !errors.Is(err, types.ErrMalformedRecord) {
		t.Errorf("expected malformed record, got %v", err)
	}
}

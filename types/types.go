package types

import (
	"fmt"
	"time"
)

// FormatClass is the layout family of a save, resolved once from the header version.
// Only one block type (Player Location) actually cares.
type FormatClass int

const (
	FC_NONE FormatClass = iota
	FC_PRE9
	FC_STANDARD
)

// First version using the standard Player Location layout
const VERSION_STANDARD = 9

func (fc FormatClass) String() string {
	switch fc {
	case FC_PRE9:
		return "pre-9"
	case FC_STANDARD:
		return "standard"
	}
	return "none"
}

// Format_class maps a header version onto a layout family.
// Every version has one; FC_NONE is only the zero value.
func Format_class(version uint32) FormatClass {
	if version < VERSION_STANDARD {
		return FC_PRE9
	}
	return FC_STANDARD
}

// RefId is the packed 3-byte reference: a 2 bit flag and a 22 bit value.
type RefId struct {
	Flag  uint8
	Value uint32
}

const (
	REFID_FLAG_MAX  = 3
	REFID_VALUE_MAX = 1<<22 - 1
)

func (r RefId) Valid() bool {
	return r.Flag <= REFID_FLAG_MAX && r.Value <= REFID_VALUE_MAX
}

func (r RefId) String() string {
	return fmt.Sprintf("%d:%06X", r.Flag, r.Value)
}

type Screenshot struct {
	Width  uint32
	Height uint32
	// Interleaved RGB, 3 bytes per pixel, row major
	Pixels []byte
}

const MAGIC_LENGTH = 13

type SaveHeader struct {
	Magic [MAGIC_LENGTH]byte
	// Passed through verbatim, the coverage of this size differs between game versions
	HeaderSize         uint32
	Version            uint32
	SaveNumber         uint32
	PlayerName         string
	PlayerLevel        uint32
	PlayerLocation     string
	GameDate           string
	PlayerRaceEditorId string
	Unknown1           uint16
	Unknown2           float32
	Unknown3           float32
	FileTime           time.Time
	Screenshot         Screenshot
	FormVersion        uint8
	// As read from the file.  The writer recomputes it from the plugin list.
	PluginInfoSize uint32
}

func (h *SaveHeader) Format_class() FormatClass {
	return Format_class(h.Version)
}

// FileLocationTable is the 25 u32 table following the plugin list.
// Offsets and counts here are what the file claimed; the writer recomputes them.
type FileLocationTable struct {
	FormIDArrayOffset      uint32
	UnknownTable3Offset    uint32
	GlobalDataTable1Offset uint32
	GlobalDataTable2Offset uint32
	ChangeFormsOffset      uint32
	GlobalDataTable3Offset uint32
	GlobalDataTable1Count  uint32
	GlobalDataTable2Count  uint32
	GlobalDataTable3Count  uint32
	ChangeFormCount        uint32
	// Nobody knows.  Preserve.
	Unused [15]uint32
}

const FILE_LOCATION_FIELDS = 25

// Fields returns the table in file order
func (f *FileLocationTable) Fields() [FILE_LOCATION_FIELDS]uint32 {
	out := [FILE_LOCATION_FIELDS]uint32{
		f.FormIDArrayOffset, f.UnknownTable3Offset,
		f.GlobalDataTable1Offset, f.GlobalDataTable2Offset,
		f.ChangeFormsOffset, f.GlobalDataTable3Offset,
		f.GlobalDataTable1Count, f.GlobalDataTable2Count, f.GlobalDataTable3Count,
		f.ChangeFormCount,
	}
	copy(out[10:], f.Unused[:])
	return out
}

func File_location_table_from(fields [FILE_LOCATION_FIELDS]uint32) FileLocationTable {
	out := FileLocationTable{
		FormIDArrayOffset:      fields[0],
		UnknownTable3Offset:    fields[1],
		GlobalDataTable1Offset: fields[2],
		GlobalDataTable2Offset: fields[3],
		ChangeFormsOffset:      fields[4],
		GlobalDataTable3Offset: fields[5],
		GlobalDataTable1Count:  fields[6],
		GlobalDataTable2Count:  fields[7],
		GlobalDataTable3Count:  fields[8],
		ChangeFormCount:        fields[9],
	}
	copy(out.Unused[:], fields[10:])
	return out
}

// ChangeRecord is one "change form".
// Length1 and the size class are not stored: both come from Data at write time.
type ChangeRecord struct {
	RefId       RefId
	ChangeFlags uint32
	// Raw 6-bit savegame form type code.  Kept as-is so that unmapped codes still round-trip.
	TypeCode uint8
	Version  uint8
	// Bookkeeping from the source (uncompressed size when the payload is compressed).  Never validated.
	Length2 uint32
	Data    []byte
}

func (r *ChangeRecord) Length1() int {
	return len(r.Data)
}

type SaveGame struct {
	Header        SaveHeader
	FileLocations FileLocationTable
	Plugins       []string
	G1            GlobalDataTable
	G2            GlobalDataTable
	ChangeForms   []ChangeRecord
	G3            GlobalDataTable
	FormIDArray   []uint32
	// a.k.a. visited worldspaces
	Unknown2     []uint32
	UnknownBytes uint32
	Unknown3     []string
	// Anything after the last table.  Not seen in the wild, but we don't throw bytes away.
	Trailer []byte
}

// Table returns global data table 1, 2 or 3
func (sg *SaveGame) Table(n int) *GlobalDataTable {
	switch n {
	case 1:
		return &sg.G1
	case 2:
		return &sg.G2
	case 3:
		return &sg.G3
	}
	return nil
}

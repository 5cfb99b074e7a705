package savefile

// Reading a whole save.
//
// The layout, in file order:
//   header (magic, sizes, player info, filetime)
//   screenshot
//   form version
//   plugin table
//   file location table
//   global data table 1
//   global data table 2
//   change records
//   global data table 3 (one more entry than the file location table says)
//   form id array
//   visited worldspaces
//   unknown table 3
// and then, in theory, nothing.

import (
	"fmt"
	"log"
	"os"

	"essdump/blocks"
	"essdump/readers"
	"essdump/records"
	"essdump/types"
)

// Smallest possible global data entry: type and size, no payload
const MIN_BLOCK_SIZE = 8

// Read_savegame decodes a complete save.
// Any failure comes back as a *types.StageError saying where in the file it happened.
func Read_savegame(data []byte) (*types.SaveGame, error) {
	s := readers.New_stream(data)
	sg := &types.SaveGame{}

	if err := read_header(s, &sg.Header); err != nil {
		return nil, err
	}
	fc := sg.Header.Format_class()

	start := s.Pos()
	plugins, err := read_plugins(s, &sg.Header)
	if err != nil {
		return nil, types.Stage_error(types.STAGE_PLUGINS, -1, start, err)
	}
	sg.Plugins = plugins

	start = s.Pos()
	fields := [types.FILE_LOCATION_FIELDS]uint32{}
	for i := range fields {
		if fields[i], err = readers.Read_uint32(s); err != nil {
			return nil, types.Stage_error(types.STAGE_FILE_LOCATIONS, -1, start, err)
		}
	}
	sg.FileLocations = types.File_location_table_from(fields)
	flt := &sg.FileLocations

	if sg.G1.Entries, err = read_global_table(s, types.STAGE_GLOBAL_DATA_1, uint64(flt.GlobalDataTable1Count), fc); err != nil {
		return nil, err
	}
	if sg.G2.Entries, err = read_global_table(s, types.STAGE_GLOBAL_DATA_2, uint64(flt.GlobalDataTable2Count), fc); err != nil {
		return nil, err
	}
	if sg.ChangeForms, err = read_change_records(s, uint64(flt.ChangeFormCount)); err != nil {
		return nil, err
	}
	// The count in the file location table is one short for this table
	if sg.G3.Entries, err = read_global_table(s, types.STAGE_GLOBAL_DATA_3, uint64(flt.GlobalDataTable3Count)+1, fc); err != nil {
		return nil, err
	}

	start = s.Pos()
	if sg.FormIDArray, err = read_counted_uint32s(s); err != nil {
		return nil, types.Stage_error(types.STAGE_FORM_ID_ARRAY, -1, start, err)
	}
	start = s.Pos()
	if sg.Unknown2, err = read_counted_uint32s(s); err != nil {
		return nil, types.Stage_error(types.STAGE_WORLDSPACES, -1, start, err)
	}
	start = s.Pos()
	if err = read_unknown_table_3(s, sg); err != nil {
		return nil, types.Stage_error(types.STAGE_UNKNOWN_TABLE_3, -1, start, err)
	}

	if !s.At_end() {
		log.Printf("%v bytes after the last table, keeping them as they are", s.Remaining())
		sg.Trailer, _ = readers.Read_fixed(s, s.Remaining())
	}
	return sg, nil
}

// Read_header decodes just the header, screenshot and form version, for when that's all that's wanted.
// Whatever follows is not looked at.
func Read_header(data []byte) (*types.SaveHeader, error) {
	h := &types.SaveHeader{}
	if err := read_header(readers.New_stream(data), h); err != nil {
		return nil, err
	}
	return h, nil
}

// Load reads and decodes a save file
func Load(filename string) (*types.SaveGame, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", filename, err)
	}
	sg, err := Read_savegame(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %w", filename, err)
	}
	return sg, nil
}

// Load_header reads a save file's header
func Load_header(filename string) (*types.SaveHeader, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %v: %w", filename, err)
	}
	h, err := Read_header(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %v: %w", filename, err)
	}
	return h, nil
}

// read_header covers the header, screenshot and form version stages
func read_header(s *readers.Stream, h *types.SaveHeader) error {
	start := s.Pos()
	if err := read_header_fields(s, h); err != nil {
		return types.Stage_error(types.STAGE_HEADER, -1, start, err)
	}

	start = s.Pos()
	if err := read_screenshot(s, &h.Screenshot); err != nil {
		return types.Stage_error(types.STAGE_SCREENSHOT, -1, start, err)
	}

	start = s.Pos()
	var err error
	if h.FormVersion, err = readers.Read_uint8(s); err != nil {
		return types.Stage_error(types.STAGE_FORM_VERSION, -1, start, err)
	}
	return nil
}

func read_header_fields(s *readers.Stream, h *types.SaveHeader) error {
	magic, err := readers.Read_fixed(s, types.MAGIC_LENGTH)
	if err != nil {
		return err
	}
	copy(h.Magic[:], magic)

	for _, p := range []*uint32{&h.HeaderSize, &h.Version, &h.SaveNumber} {
		if *p, err = readers.Read_uint32(s); err != nil {
			return err
		}
	}
	if h.PlayerName, err = readers.Read_wstring(s); err != nil {
		return err
	}
	if h.PlayerLevel, err = readers.Read_uint32(s); err != nil {
		return err
	}
	for _, p := range []*string{&h.PlayerLocation, &h.GameDate, &h.PlayerRaceEditorId} {
		if *p, err = readers.Read_wstring(s); err != nil {
			return err
		}
	}
	if h.Unknown1, err = readers.Read_uint16(s); err != nil {
		return err
	}
	if h.Unknown2, err = readers.Read_float32(s); err != nil {
		return err
	}
	if h.Unknown3, err = readers.Read_float32(s); err != nil {
		return err
	}
	h.FileTime, err = readers.Read_filetime(s)
	return err
}

func read_screenshot(s *readers.Stream, shot *types.Screenshot) error {
	var err error
	if shot.Width, err = readers.Read_uint32(s); err != nil {
		return err
	}
	if shot.Height, err = readers.Read_uint32(s); err != nil {
		return err
	}
	// 3 bytes per pixel
	pixels := uint64(shot.Width) * uint64(shot.Height)
	if err := readers.Check_count(s, pixels, 3); err != nil {
		return fmt.Errorf("%vx%v screenshot: %w", shot.Width, shot.Height, err)
	}
	shot.Pixels, err = readers.Read_fixed(s, int(pixels*3))
	return err
}

func read_plugins(s *readers.Stream, h *types.SaveHeader) ([]string, error) {
	var err error
	if h.PluginInfoSize, err = readers.Read_uint32(s); err != nil {
		return nil, err
	}
	count, err := readers.Read_uint8(s)
	if err != nil {
		return nil, err
	}
	if err := readers.Check_count(s, uint64(count), 2); err != nil {
		return nil, err
	}
	plugins := make([]string, 0, count)
	for range count {
		name, err := readers.Read_wstring(s)
		if err != nil {
			return nil, err
		}
		plugins = append(plugins, name)
	}
	return plugins, nil
}

func read_global_table(s *readers.Stream, stage string, count uint64, fc types.FormatClass) ([]types.GlobalDataEntry, error) {
	if err := readers.Check_count(s, count, MIN_BLOCK_SIZE); err != nil {
		return nil, types.Stage_error(stage, -1, s.Pos(), err)
	}
	entries := make([]types.GlobalDataEntry, 0, count)
	for i := range int(count) {
		start := s.Pos()
		entry, err := read_global_data_entry(s, fc)
		if err != nil {
			return nil, types.Stage_error(stage, i, start, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func read_global_data_entry(s *readers.Stream, fc types.FormatClass) (types.GlobalDataEntry, error) {
	block_type, err := readers.Read_uint32(s)
	if err != nil {
		return types.GlobalDataEntry{}, err
	}
	size, err := readers.Read_uint32(s)
	if err != nil {
		return types.GlobalDataEntry{}, err
	}
	if uint64(size) > uint64(s.Remaining()) {
		return types.GlobalDataEntry{}, fmt.Errorf("block type %v claims %v bytes, only %v left: %w", block_type, size, s.Remaining(), types.ErrTruncatedInput)
	}
	payload, err := readers.Read_fixed(s, int(size))
	if err != nil {
		return types.GlobalDataEntry{}, err
	}
	return blocks.Decode(block_type, payload, fc)
}

func read_change_records(s *readers.Stream, count uint64) ([]types.ChangeRecord, error) {
	if err := readers.Check_count(s, count, records.MIN_RECORD_SIZE); err != nil {
		return nil, types.Stage_error(types.STAGE_CHANGE_FORMS, -1, s.Pos(), err)
	}
	out := make([]types.ChangeRecord, 0, count)
	for i := range int(count) {
		start := s.Pos()
		rec, err := records.Read_change_record(s)
		if err != nil {
			return nil, types.Stage_error(types.STAGE_CHANGE_FORMS, i, start, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func read_counted_uint32s(s *readers.Stream) ([]uint32, error) {
	count, err := readers.Read_uint32(s)
	if err != nil {
		return nil, err
	}
	return readers.Read_uint32_array(s, count)
}

func read_unknown_table_3(s *readers.Stream, sg *types.SaveGame) error {
	var err error
	if sg.UnknownBytes, err = readers.Read_uint32(s); err != nil {
		return err
	}
	count, err := readers.Read_uint32(s)
	if err != nil {
		return err
	}
	if err := readers.Check_count(s, uint64(count), 2); err != nil {
		return err
	}
	sg.Unknown3 = make([]string, 0, count)
	for range count {
		str, err := readers.Read_wstring(s)
		if err != nil {
			return err
		}
		sg.Unknown3 = append(sg.Unknown3, str)
	}
	return nil
}

package savefile

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"essdump/blocks"
	"essdump/records"
	"essdump/types"
	"essdump/writers"
)

// Encode serialises a save.
// The plugin info size and every offset and count in the file location table are worked out from
// what is actually written; whatever sg.FileLocations says about them is ignored.  The unused slots
// and the header size are written as they are.
func Encode(sg *types.SaveGame) ([]byte, error) {
	if sg.G3.Len() == 0 {
		// The file stores len-1
		return nil, fmt.Errorf("global data table 3 is empty: %w", types.ErrValueOutOfRange)
	}
	fc := sg.Header.Format_class()
	buf := &bytes.Buffer{}

	if err := write_header(buf, &sg.Header); err != nil {
		return nil, types.Stage_error(types.STAGE_HEADER, -1, buf.Len(), err)
	}
	start := buf.Len()
	if err := write_plugins(buf, sg.Plugins); err != nil {
		return nil, types.Stage_error(types.STAGE_PLUGINS, -1, start, err)
	}

	// Filled in at the end
	flt := sg.FileLocations
	flt_pos := buf.Len()
	buf.Write(make([]byte, 4*types.FILE_LOCATION_FIELDS))

	flt.GlobalDataTable1Offset = uint32(buf.Len())
	flt.GlobalDataTable1Count = uint32(sg.G1.Len())
	if err := write_global_table(buf, types.STAGE_GLOBAL_DATA_1, &sg.G1, fc); err != nil {
		return nil, err
	}
	flt.GlobalDataTable2Offset = uint32(buf.Len())
	flt.GlobalDataTable2Count = uint32(sg.G2.Len())
	if err := write_global_table(buf, types.STAGE_GLOBAL_DATA_2, &sg.G2, fc); err != nil {
		return nil, err
	}

	flt.ChangeFormsOffset = uint32(buf.Len())
	flt.ChangeFormCount = uint32(len(sg.ChangeForms))
	for i := range sg.ChangeForms {
		start := buf.Len()
		if err := records.Write_change_record(buf, &sg.ChangeForms[i]); err != nil {
			return nil, types.Stage_error(types.STAGE_CHANGE_FORMS, i, start, err)
		}
	}

	flt.GlobalDataTable3Offset = uint32(buf.Len())
	flt.GlobalDataTable3Count = uint32(sg.G3.Len() - 1)
	if err := write_global_table(buf, types.STAGE_GLOBAL_DATA_3, &sg.G3, fc); err != nil {
		return nil, err
	}

	flt.FormIDArrayOffset = uint32(buf.Len())
	writers.Write_uint32_le(buf, uint32(len(sg.FormIDArray)))
	writers.Write_uint32_array(buf, sg.FormIDArray)
	writers.Write_uint32_le(buf, uint32(len(sg.Unknown2)))
	writers.Write_uint32_array(buf, sg.Unknown2)

	flt.UnknownTable3Offset = uint32(buf.Len())
	start = buf.Len()
	writers.Write_uint32_le(buf, sg.UnknownBytes)
	writers.Write_uint32_le(buf, uint32(len(sg.Unknown3)))
	for _, str := range sg.Unknown3 {
		if err := writers.Write_wstring(buf, str); err != nil {
			return nil, types.Stage_error(types.STAGE_UNKNOWN_TABLE_3, -1, start, err)
		}
	}
	buf.Write(sg.Trailer)

	if uint64(buf.Len()) > 0xFFFFFFFF {
		return nil, fmt.Errorf("%v bytes is too big for 32 bit offsets: %w", buf.Len(), types.ErrValueOutOfRange)
	}
	fields := flt.Fields()
	table := &bytes.Buffer{}
	writers.Write_uint32_array(table, fields[:])
	out := buf.Bytes()
	copy(out[flt_pos:], table.Bytes())
	return out, nil
}

// Write_savegame encodes a save onto out
func Write_savegame(out io.Writer, sg *types.SaveGame) error {
	data, err := Encode(sg)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}

// Save encodes a save and writes it to a file.  Nothing is written if encoding fails.
func Save(filename string, sg *types.SaveGame) error {
	data, err := Encode(sg)
	if err != nil {
		return fmt.Errorf("failed to encode %v: %w", filename, err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write %v: %w", filename, err)
	}
	return nil
}

// Plugin_info_size is the size field in front of the plugin list: the count byte plus every name
func Plugin_info_size(plugins []string) uint32 {
	size := 1
	for _, p := range plugins {
		size += 2 + len(p)
	}
	return uint32(size)
}

func write_header(out *bytes.Buffer, h *types.SaveHeader) error {
	out.Write(h.Magic[:])
	writers.Write_uint32_le(out, h.HeaderSize)
	writers.Write_uint32_le(out, h.Version)
	writers.Write_uint32_le(out, h.SaveNumber)
	if err := writers.Write_wstring(out, h.PlayerName); err != nil {
		return err
	}
	writers.Write_uint32_le(out, h.PlayerLevel)
	for _, str := range []string{h.PlayerLocation, h.GameDate, h.PlayerRaceEditorId} {
		if err := writers.Write_wstring(out, str); err != nil {
			return err
		}
	}
	writers.Write_uint16_le(out, h.Unknown1)
	writers.Write_float32_le(out, h.Unknown2)
	writers.Write_float32_le(out, h.Unknown3)
	if err := writers.Write_filetime(out, h.FileTime); err != nil {
		return err
	}

	shot := &h.Screenshot
	if uint64(len(shot.Pixels)) != uint64(shot.Width)*uint64(shot.Height)*3 {
		return fmt.Errorf("%vx%v screenshot has %v bytes of pixels: %w", shot.Width, shot.Height, len(shot.Pixels), types.ErrValueOutOfRange)
	}
	writers.Write_uint32_le(out, shot.Width)
	writers.Write_uint32_le(out, shot.Height)
	out.Write(shot.Pixels)

	writers.Write_uint8(out, h.FormVersion)
	return nil
}

func write_plugins(out *bytes.Buffer, plugins []string) error {
	if len(plugins) > 0xFF {
		return fmt.Errorf("%v plugins: %w", len(plugins), types.ErrValueOutOfRange)
	}
	writers.Write_uint32_le(out, Plugin_info_size(plugins))
	writers.Write_uint8(out, uint8(len(plugins)))
	for _, p := range plugins {
		if err := writers.Write_wstring(out, p); err != nil {
			return err
		}
	}
	return nil
}

func write_global_table(out *bytes.Buffer, stage string, table *types.GlobalDataTable, fc types.FormatClass) error {
	for i := range table.Entries {
		start := out.Len()
		entry := &table.Entries[i]
		data, err := blocks.Encode(entry, fc)
		if err != nil {
			return types.Stage_error(stage, i, start, err)
		}
		if uint64(len(data)) > 0xFFFFFFFF {
			return types.Stage_error(stage, i, start, fmt.Errorf("%v is %v bytes: %w", entry.Name, len(data), types.ErrValueOutOfRange))
		}
		writers.Write_uint32_le(out, entry.Type)
		writers.Write_uint32_le(out, uint32(len(data)))
		out.Write(data)
	}
	return nil
}

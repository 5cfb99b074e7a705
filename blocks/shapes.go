package blocks

import (
	"bytes"

	"essdump/readers"
	"essdump/types"
	"essdump/writers"
)

// Misc Stats:
//
// u32 count
// count * (wstring name, u8 category, i32 value)
func decode_misc_stats(s *readers.Stream) (types.Payload, error) {
	count, err := readers.Read_uint32(s)
	if err != nil {
		return nil, err
	}
	// Smallest possible stat: empty name (2) + category (1) + value (4)
	if err := readers.Check_count(s, uint64(count), 7); err != nil {
		return nil, err
	}

	out := &types.MiscStats{Stats: make([]types.MiscStat, 0, count)}
	for range count {
		stat := types.MiscStat{}
		stat.Name, err = readers.Read_wstring(s)
		if err != nil {
			return nil, err
		}
		stat.Category, err = readers.Read_uint8(s)
		if err != nil {
			return nil, err
		}
		stat.Value, err = readers.Read_int32(s)
		if err != nil {
			return nil, err
		}
		out.Stats = append(out.Stats, stat)
	}
	return out, nil
}

func encode_misc_stats(buf *bytes.Buffer, p types.Payload) error {
	stats, ok := p.(*types.MiscStats)
	if !ok {
		return wrong_payload("Misc Stats", p)
	}
	writers.Write_uint32_le(buf, uint32(len(stats.Stats)))
	for _, stat := range stats.Stats {
		if err := writers.Write_wstring(buf, stat.Name); err != nil {
			return err
		}
		writers.Write_uint8(buf, stat.Category)
		writers.Write_int32_le(buf, stat.Value)
	}
	return nil
}

// Player Location, version 9 onwards:
//
// u32 next object id
// refid worldspace
// i32, i32 cell coordinates
// refid worldspace (again?)
// 3 * f32 position
// u8 ???
func decode_player_location(s *readers.Stream) (types.Payload, error) {
	out := &types.PlayerLocation{}
	var err error
	if out.NextObjectId, err = readers.Read_uint32(s); err != nil {
		return nil, err
	}
	if out.Worldspace1, err = readers.Read_refid(s); err != nil {
		return nil, err
	}
	if out.CoorX, err = readers.Read_int32(s); err != nil {
		return nil, err
	}
	if out.CoorY, err = readers.Read_int32(s); err != nil {
		return nil, err
	}
	if out.Worldspace2, err = readers.Read_refid(s); err != nil {
		return nil, err
	}
	for _, f := range []*float32{&out.PosX, &out.PosY, &out.PosZ} {
		if *f, err = readers.Read_float32(s); err != nil {
			return nil, err
		}
	}
	if out.Unknown, err = readers.Read_uint8(s); err != nil {
		return nil, err
	}
	return out, nil
}

func encode_player_location(buf *bytes.Buffer, p types.Payload) error {
	loc, ok := p.(*types.PlayerLocation)
	if !ok {
		return wrong_payload("Player Location", p)
	}
	writers.Write_uint32_le(buf, loc.NextObjectId)
	if err := writers.Write_refid(buf, loc.Worldspace1); err != nil {
		return err
	}
	writers.Write_int32_le(buf, loc.CoorX)
	writers.Write_int32_le(buf, loc.CoorY)
	if err := writers.Write_refid(buf, loc.Worldspace2); err != nil {
		return err
	}
	writers.Write_float32_le(buf, loc.PosX)
	writers.Write_float32_le(buf, loc.PosY)
	writers.Write_float32_le(buf, loc.PosZ)
	writers.Write_uint8(buf, loc.Unknown)
	return nil
}

// Player Location, before version 9:
//
// u32 next object id
// refid worldspace
// 4 * u32 cell (not the same thing as the 2 coordinates above, whatever it is)
// refid worldspace
// u32 ???
func decode_player_location_pre9(s *readers.Stream) (types.Payload, error) {
	out := &types.PlayerLocationPre9{}
	var err error
	if out.NextObjectId, err = readers.Read_uint32(s); err != nil {
		return nil, err
	}
	if out.Worldspace1, err = readers.Read_refid(s); err != nil {
		return nil, err
	}
	for i := range out.Cell {
		if out.Cell[i], err = readers.Read_uint32(s); err != nil {
			return nil, err
		}
	}
	if out.Worldspace2, err = readers.Read_refid(s); err != nil {
		return nil, err
	}
	if out.Tail, err = readers.Read_uint32(s); err != nil {
		return nil, err
	}
	return out, nil
}

func encode_player_location_pre9(buf *bytes.Buffer, p types.Payload) error {
	loc, ok := p.(*types.PlayerLocationPre9)
	if !ok {
		return wrong_payload("Player Location (pre-9)", p)
	}
	writers.Write_uint32_le(buf, loc.NextObjectId)
	if err := writers.Write_refid(buf, loc.Worldspace1); err != nil {
		return err
	}
	writers.Write_uint32_array(buf, loc.Cell[:])
	if err := writers.Write_refid(buf, loc.Worldspace2); err != nil {
		return err
	}
	writers.Write_uint32_le(buf, loc.Tail)
	return nil
}

// Tes.  Only partly understood.
//
// vsval count, count * (refid, u16)
// u32 count, count * refid
// vsval count, count * refid
func decode_tes(s *readers.Stream) (types.Payload, error) {
	out := &types.Tes{}

	count, err := readers.Read_vsval(s)
	if err != nil {
		return nil, err
	}
	if err := readers.Check_count(s, uint64(count), 5); err != nil {
		return nil, err
	}
	for range count {
		item := types.TesItem{}
		if item.RefId, err = readers.Read_refid(s); err != nil {
			return nil, err
		}
		if item.Unknown, err = readers.Read_uint16(s); err != nil {
			return nil, err
		}
		out.List1 = append(out.List1, item)
	}

	count, err = readers.Read_uint32(s)
	if err != nil {
		return nil, err
	}
	if out.List2, err = read_refids(s, count); err != nil {
		return nil, err
	}

	count, err = readers.Read_vsval(s)
	if err != nil {
		return nil, err
	}
	if out.List3, err = read_refids(s, count); err != nil {
		return nil, err
	}
	return out, nil
}

func read_refids(s *readers.Stream, count uint32) ([]types.RefId, error) {
	if err := readers.Check_count(s, uint64(count), 3); err != nil {
		return nil, err
	}
	var out []types.RefId
	for range count {
		r, err := readers.Read_refid(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func encode_tes(buf *bytes.Buffer, p types.Payload) error {
	tes, ok := p.(*types.Tes)
	if !ok {
		return wrong_payload("Tes", p)
	}
	if err := writers.Write_vsval(buf, uint32(len(tes.List1))); err != nil {
		return err
	}
	for _, item := range tes.List1 {
		if err := writers.Write_refid(buf, item.RefId); err != nil {
			return err
		}
		writers.Write_uint16_le(buf, item.Unknown)
	}

	writers.Write_uint32_le(buf, uint32(len(tes.List2)))
	for _, r := range tes.List2 {
		if err := writers.Write_refid(buf, r); err != nil {
			return err
		}
	}

	if err := writers.Write_vsval(buf, uint32(len(tes.List3))); err != nil {
		return err
	}
	for _, r := range tes.List3 {
		if err := writers.Write_refid(buf, r); err != nil {
			return err
		}
	}
	return nil
}

// Global Variables:
//
// vsval count
// count * (refid, f32)
func decode_globals(s *readers.Stream) (types.Payload, error) {
	count, err := readers.Read_vsval(s)
	if err != nil {
		return nil, err
	}
	if err := readers.Check_count(s, uint64(count), 7); err != nil {
		return nil, err
	}

	out := &types.GlobalVariables{Vars: make([]types.GlobalVariable, 0, count)}
	for range count {
		v := types.GlobalVariable{}
		if v.RefId, err = readers.Read_refid(s); err != nil {
			return nil, err
		}
		if v.Value, err = readers.Read_float32(s); err != nil {
			return nil, err
		}
		out.Vars = append(out.Vars, v)
	}
	return out, nil
}

func encode_globals(buf *bytes.Buffer, p types.Payload) error {
	globals, ok := p.(*types.GlobalVariables)
	if !ok {
		return wrong_payload("Global Variables", p)
	}
	if err := writers.Write_vsval(buf, uint32(len(globals.Vars))); err != nil {
		return err
	}
	for _, v := range globals.Vars {
		if err := writers.Write_refid(buf, v.RefId); err != nil {
			return err
		}
		writers.Write_float32_le(buf, v.Value)
	}
	return nil
}

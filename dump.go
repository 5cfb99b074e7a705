package main

// Human readable listings of a save

import (
	"fmt"
	"sort"

	"essdump/records"
	"essdump/tables"
	"essdump/types"
)

func header_lines(h *types.SaveHeader) []string {
	return []string{
		fmt.Sprintf("Magic: %q", h.Magic[:]),
		fmt.Sprintf("Header size: %v", h.HeaderSize),
		fmt.Sprintf("Version: %v (%v layout)", h.Version, h.Format_class()),
		fmt.Sprintf("Save number: %v", h.SaveNumber),
		fmt.Sprintf("Player: %v, level %v, %v", h.PlayerName, h.PlayerLevel, h.PlayerRaceEditorId),
		fmt.Sprintf("Location: %v", h.PlayerLocation),
		fmt.Sprintf("Game date: %v", h.GameDate),
		fmt.Sprintf("Saved: %v", h.FileTime.Format("2006-01-02 15:04:05")),
		fmt.Sprintf("Unknowns: %v %v %v", h.Unknown1, h.Unknown2, h.Unknown3),
		fmt.Sprintf("Screenshot: %vx%v", h.Screenshot.Width, h.Screenshot.Height),
		fmt.Sprintf("Form version: %v", h.FormVersion),
	}
}

func payload_lines(entry *types.GlobalDataEntry) []string {
	out := []string{}
	switch p := entry.Payload.(type) {
	case types.Opaque:
		out = append(out, fmt.Sprintf("   (%v bytes, not decoded)", len(p)))
	case *types.MiscStats:
		for _, stat := range p.Stats {
			out = append(out, fmt.Sprintf("   %v / %v: %v", tables.Stat_category(stat.Category), stat.Name, stat.Value))
		}
	case *types.PlayerLocation:
		out = append(out, fmt.Sprintf("   Next object id: %08X", p.NextObjectId))
		out = append(out, fmt.Sprintf("   Worldspace: %v / %v", p.Worldspace1, p.Worldspace2))
		out = append(out, fmt.Sprintf("   Cell: %v, %v", p.CoorX, p.CoorY))
		out = append(out, fmt.Sprintf("   Position: %.1f, %.1f, %.1f", p.PosX, p.PosY, p.PosZ))
	case *types.PlayerLocationPre9:
		out = append(out, fmt.Sprintf("   Next object id: %08X", p.NextObjectId))
		out = append(out, fmt.Sprintf("   Worldspace: %v / %v", p.Worldspace1, p.Worldspace2))
		out = append(out, fmt.Sprintf("   Cell: %v", p.Cell))
	case *types.Tes:
		out = append(out, fmt.Sprintf("   %v / %v / %v entries", len(p.List1), len(p.List2), len(p.List3)))
	case *types.GlobalVariables:
		for _, v := range p.Vars {
			out = append(out, fmt.Sprintf("   %v = %v", v.RefId, v.Value))
		}
	}
	return out
}

func table_lines(n int, table *types.GlobalDataTable, verbose bool) []string {
	out := []string{fmt.Sprintf("Global data table %v (%v entries):", n, table.Len())}
	for i := range table.Entries {
		e := &table.Entries[i]
		out = append(out, fmt.Sprintf("  %v (type %v)", e.Name, e.Type))
		if verbose {
			out = append(out, payload_lines(e)...)
		}
	}
	return out
}

// record_summary counts change records by form type
func record_summary(recs []types.ChangeRecord) []string {
	counts := map[string]int{}
	compressed := 0
	for i := range recs {
		name := fmt.Sprintf("code %v", recs[i].TypeCode)
		if ft, err := records.Form_type(&recs[i]); err == nil {
			name = ft.String()
		}
		counts[name]++
		if records.Is_compressed(&recs[i]) {
			compressed++
		}
	}
	names := []string{}
	for k := range counts {
		names = append(names, k)
	}
	sort.Strings(names)

	out := []string{fmt.Sprintf("%v change records (%v compressed):", len(recs), compressed)}
	for _, k := range names {
		out = append(out, fmt.Sprintf("  %v: %v", k, counts[k]))
	}
	return out
}

func record_line(rec *types.ChangeRecord) string {
	name := "?"
	if ft, err := records.Form_type(rec); err == nil {
		name = ft.String()
	}
	return fmt.Sprintf("%v %v flags %08X version %v, %v bytes (length2 %v)", rec.RefId, name, rec.ChangeFlags, rec.Version, rec.Length1(), rec.Length2)
}

func dump_lines(sg *types.SaveGame, what string) ([]string, error) {
	out := []string{}
	all := what == "" || what == "all"

	if all || what == "header" {
		out = append(out, header_lines(&sg.Header)...)
		out = append(out, "")
	}
	if all || what == "plugins" {
		out = append(out, fmt.Sprintf("%v plugins:", len(sg.Plugins)))
		for i, p := range sg.Plugins {
			out = append(out, fmt.Sprintf("  %02X %v", i, p))
		}
		out = append(out, "")
	}
	if all || what == "globals" {
		for n := 1; n <= 3; n++ {
			out = append(out, table_lines(n, sg.Table(n), true)...)
		}
		out = append(out, "")
	}
	if all || what == "records" {
		out = append(out, record_summary(sg.ChangeForms)...)
		out = append(out, "")
	}
	if all || what == "tables" {
		flt := sg.FileLocations.Fields()
		out = append(out, fmt.Sprintf("File location table (as read): %v", flt))
		out = append(out, fmt.Sprintf("Form id array: %v entries", len(sg.FormIDArray)))
		out = append(out, fmt.Sprintf("Visited worldspaces: %v entries", len(sg.Unknown2)))
		out = append(out, fmt.Sprintf("Unknown table 3: %v, %v strings", sg.UnknownBytes, len(sg.Unknown3)))
		if len(sg.Trailer) > 0 {
			out = append(out, fmt.Sprintf("Trailing bytes: %v", len(sg.Trailer)))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("don't know how to dump %q (try header, plugins, globals, records, tables or all)", what)
	}
	return out, nil
}

package savefile

import (
	"bytes"
	"fmt"
	"reflect"

	"essdump/types"
)

// Diff lists the differences between two saves, one line per difference.
// Global data is compared by block name, change records by refid.  File location tables are ignored
// since they are a consequence of everything else.
func Diff(a, b *types.SaveGame) []string {
	out := diff_header(&a.Header, &b.Header)

	if !reflect.DeepEqual(a.Plugins, b.Plugins) {
		out = append(out, fmt.Sprintf("plugins: %q -> %q", a.Plugins, b.Plugins))
	}
	for n := 1; n <= 3; n++ {
		out = append(out, diff_table(n, a.Table(n), b.Table(n))...)
	}
	out = append(out, diff_records(a.ChangeForms, b.ChangeForms)...)

	out = append(out, diff_uint32s("form id array", a.FormIDArray, b.FormIDArray)...)
	out = append(out, diff_uint32s("visited worldspaces", a.Unknown2, b.Unknown2)...)
	if a.UnknownBytes != b.UnknownBytes {
		out = append(out, fmt.Sprintf("unknown table 3 bytes: %v -> %v", a.UnknownBytes, b.UnknownBytes))
	}
	if !reflect.DeepEqual(a.Unknown3, b.Unknown3) {
		out = append(out, fmt.Sprintf("unknown table 3: %q -> %q", a.Unknown3, b.Unknown3))
	}
	if !bytes.Equal(a.Trailer, b.Trailer) {
		out = append(out, fmt.Sprintf("trailer: %v bytes -> %v bytes", len(a.Trailer), len(b.Trailer)))
	}
	return out
}

func diff_header(a, b *types.SaveHeader) []string {
	out := []string{}
	fields := []struct {
		name string
		a, b any
	}{
		{"magic", a.Magic, b.Magic},
		{"header size", a.HeaderSize, b.HeaderSize},
		{"version", a.Version, b.Version},
		{"save number", a.SaveNumber, b.SaveNumber},
		{"player name", a.PlayerName, b.PlayerName},
		{"player level", a.PlayerLevel, b.PlayerLevel},
		{"location", a.PlayerLocation, b.PlayerLocation},
		{"game date", a.GameDate, b.GameDate},
		{"race", a.PlayerRaceEditorId, b.PlayerRaceEditorId},
		{"unknown1", a.Unknown1, b.Unknown1},
		{"unknown2", a.Unknown2, b.Unknown2},
		{"unknown3", a.Unknown3, b.Unknown3},
		{"form version", a.FormVersion, b.FormVersion},
	}
	for _, f := range fields {
		if f.a != f.b {
			out = append(out, fmt.Sprintf("%v: %v -> %v", f.name, f.a, f.b))
		}
	}
	if !a.FileTime.Equal(b.FileTime) {
		out = append(out, fmt.Sprintf("filetime: %v -> %v", a.FileTime, b.FileTime))
	}
	sa, sb := &a.Screenshot, &b.Screenshot
	if sa.Width != sb.Width || sa.Height != sb.Height {
		out = append(out, fmt.Sprintf("screenshot: %vx%v -> %vx%v", sa.Width, sa.Height, sb.Width, sb.Height))
	} else if !bytes.Equal(sa.Pixels, sb.Pixels) {
		out = append(out, "screenshot: pixels differ")
	}
	return out
}

func diff_table(n int, a, b *types.GlobalDataTable) []string {
	out := []string{}
	for _, ea := range a.Entries {
		eb, ok := b.Get(ea.Name)
		if !ok {
			out = append(out, fmt.Sprintf("global data %v: %v only in first", n, ea.Name))
			continue
		}
		if ea.Type != eb.Type || !reflect.DeepEqual(ea.Payload, eb.Payload) {
			out = append(out, fmt.Sprintf("global data %v: %v differs", n, ea.Name))
		}
	}
	for _, eb := range b.Entries {
		if !a.Has(eb.Name) {
			out = append(out, fmt.Sprintf("global data %v: %v only in second", n, eb.Name))
		}
	}
	return out
}

func diff_records(a, b []types.ChangeRecord) []string {
	out := []string{}
	index := map[types.RefId]*types.ChangeRecord{}
	for i := range b {
		if _, ok := index[b[i].RefId]; !ok {
			index[b[i].RefId] = &b[i]
		}
	}
	seen := map[types.RefId]bool{}
	for i := range a {
		ra := &a[i]
		if seen[ra.RefId] {
			continue
		}
		seen[ra.RefId] = true
		rb, ok := index[ra.RefId]
		if !ok {
			out = append(out, fmt.Sprintf("change record %v: only in first", ra.RefId))
			continue
		}
		if ra.ChangeFlags != rb.ChangeFlags {
			out = append(out, fmt.Sprintf("change record %v: flags %08X -> %08X", ra.RefId, ra.ChangeFlags, rb.ChangeFlags))
		}
		if ra.TypeCode != rb.TypeCode || ra.Version != rb.Version {
			out = append(out, fmt.Sprintf("change record %v: type %v version %v -> type %v version %v", ra.RefId, ra.TypeCode, ra.Version, rb.TypeCode, rb.Version))
		}
		if ra.Length2 != rb.Length2 || !bytes.Equal(ra.Data, rb.Data) {
			out = append(out, fmt.Sprintf("change record %v: data %v bytes -> %v bytes", ra.RefId, len(ra.Data), len(rb.Data)))
		}
	}
	for i := range b {
		if !seen[b[i].RefId] {
			seen[b[i].RefId] = true
			out = append(out, fmt.Sprintf("change record %v: only in second", b[i].RefId))
		}
	}
	return out
}

func diff_uint32s(name string, a, b []uint32) []string {
	if reflect.DeepEqual(a, b) || (len(a) == 0 && len(b) == 0) {
		return nil
	}
	if len(a) != len(b) {
		return []string{fmt.Sprintf("%v: %v entries -> %v entries", name, len(a), len(b))}
	}
	changed := 0
	for i := range a {
		if a[i] != b[i] {
			changed++
		}
	}
	return []string{fmt.Sprintf("%v: %v entries differ", name, changed)}
}

package main

// savefile reader/editor for Skyrim
//
// example usage:
//
// essedit load Save12.ess
// essedit dump globals
// essedit record NPC_ npc_dump
// essedit screenshot shot.png
// essedit save
// essedit diff Save12.ess Save13.ess
// essedit --dir "C:\elsewhere" list
//
// save file location is read from the ini file

import (
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang/snappy"

	"essdump/ess_index"
	"essdump/records"
	"essdump/savefile"
	"essdump/tables"
	"essdump/types"
	"essdump/utils"
)

// Evil global variables
var g_stash_filename = "essedit.tmp"

func init() {
	// Payloads live behind an interface, so gob needs telling what can be in there
	gob.Register(types.Opaque{})
	gob.Register(&types.MiscStats{})
	gob.Register(&types.PlayerLocation{})
	gob.Register(&types.PlayerLocationPre9{})
	gob.Register(&types.Tes{})
	gob.Register(&types.GlobalVariables{})
}

func main() {
	err := main2(os.Args[1:])
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func main2(args []string) error {
	cfg, err := utils.Load_config(utils.Config_filename)
	if err != nil {
		fmt.Println("Problem with", utils.Config_filename, "-", err)
	}
	dir, args := utils.Get_dir(args, cfg)

	arg := "help"
	if len(args) < 1 {
		fmt.Println("No args detected - falling back to \"help\", since you clearly need it...")
	} else {
		arg = args[0]
	}

	switch arg {
	case "help":
		help_text := []string{
			"Skyrim Save File Editor",
			"",
			"Commands:",
			"help: display this text",
			"load (filename): load a file from the save directory",
			"header (filename): show a file's header without loading all of it",
			"list: index the save directory and list what's in it",
			"dump [what]: show the loaded file.  what is header, plugins, globals, records, tables or all",
			"diff (filename) (filename): compare two files",
			"record (type) [dir]: list change records of a form type (e.g. NPC_), optionally writing their payloads to dir",
			"screenshot (filename): export the screenshot as .bmp or .png",
			"save [filename]: save the loaded file (the original is kept as .old)",
			"watch: print saves as they appear",
			"",
			"--dir (dir) overrides the save directory from " + utils.Config_filename,
		}
		for _, ht := range help_text {
			fmt.Println(ht)
		}

	case "load":
		if len(args) < 2 {
			return errors.New("Load what?  Filename expected.")
		}
		full_filename := filepath.Join(dir, args[1])
		sg, err := savefile.Load(full_filename)
		if err != nil {
			return err
		}
		fmt.Println("Loaded", full_filename)
		fmt.Printf("%v plugins, %v change records\n", len(sg.Plugins), len(sg.ChangeForms))
		return stash(full_filename, sg)

	case "header":
		if len(args) < 2 {
			return errors.New("Header of what?  Filename expected.")
		}
		h, err := savefile.Load_header(filepath.Join(dir, args[1]))
		if err != nil {
			return err
		}
		for _, line := range header_lines(h) {
			fmt.Println(line)
		}

	case "list":
		idx, err := ess_index.New_index(dir, cfg.Index_options())
		if err != nil {
			return err
		}
		defer idx.Close()
		if _, err := idx.Scan(); err != nil {
			return err
		}
		entries, err := idx.Entries()
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("(no saves in", dir+")")
		}
		for _, e := range entries {
			fmt.Println(e)
		}

	case "dump":
		_, sg, err := retrieve()
		if err != nil {
			return err
		}
		what := ""
		if len(args) > 1 {
			what = args[1]
		}
		lines, err := dump_lines(sg, what)
		if err != nil {
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}

	case "diff":
		if len(args) < 3 {
			return errors.New("Diff what?  Two filenames expected.")
		}
		a, err := savefile.Load(filepath.Join(dir, args[1]))
		if err != nil {
			return err
		}
		b, err := savefile.Load(filepath.Join(dir, args[2]))
		if err != nil {
			return err
		}
		diffs := savefile.Diff(a, b)
		if len(diffs) == 0 {
			fmt.Println("No differences")
		}
		for _, d := range diffs {
			fmt.Println(d)
		}

	case "record":
		if len(args) < 2 {
			return errors.New("Which form type?  e.g. NPC_, REFR, CELL")
		}
		_, sg, err := retrieve()
		if err != nil {
			return err
		}
		out_dir := ""
		if len(args) > 2 {
			out_dir = args[2]
		}
		return dump_records(sg, args[1], out_dir)

	case "screenshot":
		if len(args) < 2 {
			return errors.New("Export to where?  Filename expected.")
		}
		_, sg, err := retrieve()
		if err != nil {
			return err
		}
		return export_screenshot(&sg.Header.Screenshot, args[1])

	case "save":
		filename, sg, err := retrieve()
		if err != nil {
			return err
		}
		if len(args) > 1 {
			filename = filepath.Join(dir, args[1])
		}

		// Back up the old file
		// Since this is a "powerful" (i.e. capable of completely trashing savefiles) tool,
		// that's probably a good idea
		if _, err := os.Stat(filename); err == nil {
			newname := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".old"
			err = os.Rename(filename, newname)
			if err != nil {
				return err
			}
			fmt.Println(filename, "renamed to", newname)
		}

		err = savefile.Save(filename, sg)
		if err != nil {
			return err
		}
		fmt.Println("New file written to", filename)

		err = os.Remove(g_stash_filename)
		if err != nil {
			return err
		}
		fmt.Println("Temporary data cleaned up")

	case "watch":
		idx, err := ess_index.New_index(dir, cfg.Index_options())
		if err != nil {
			return err
		}
		defer idx.Close()

		updates := make(chan *ess_index.Entry)
		err = idx.Start_watching(updates)
		if err != nil {
			return err
		}
		fmt.Println("Watching...", dir)
		fmt.Println()

		// Until CTRL-C
		for e := range updates {
			fmt.Println(e)
		}

	default:
		return fmt.Errorf("Unknown command %q; try \"help\"", arg)
	}

	return nil
}

func dump_records(sg *types.SaveGame, code string, out_dir string) error {
	ft, ok := tables.Form_type_by_code(strings.ToUpper(code))
	if !ok {
		return fmt.Errorf("%v is not a form type", code)
	}
	if _, err := tables.Savegame_code(ft); err != nil {
		return err
	}
	if out_dir != "" {
		if err := os.MkdirAll(out_dir, 0755); err != nil {
			return err
		}
	}

	n := 0
	for i := range sg.ChangeForms {
		rec := &sg.ChangeForms[i]
		if got, err := records.Form_type(rec); err != nil || got != ft {
			continue
		}
		n++
		fmt.Println(record_line(rec))
		if out_dir == "" {
			continue
		}
		payload, err := records.Payload(rec)
		if err != nil {
			fmt.Println("   ", err)
			payload = rec.Data
		}
		name := filepath.Join(out_dir, fmt.Sprintf("%v_%v_%06X.bin", ft, rec.RefId.Flag, rec.RefId.Value))
		if err := os.WriteFile(name, payload, 0644); err != nil {
			return err
		}
	}
	fmt.Printf("%v %v records\n", n, ft)
	return nil
}

func export_screenshot(shot *types.Screenshot, filename string) error {
	img, err := utils.Screenshot_image(shot)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := utils.Write_image(w, filename, img); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("%vx%v screenshot written to %v\n", shot.Width, shot.Height, filename)
	return nil
}

// stash keeps the loaded save between commands.  It's gob, squashed with snappy since saves are big.
func stash(filename string, sg *types.SaveGame) error {
	f, err := os.Create(g_stash_filename)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := stash_to(f, filename, sg); err != nil {
		return err
	}
	return f.Sync()
}

func stash_to(out io.Writer, filename string, sg *types.SaveGame) error {
	w := snappy.NewBufferedWriter(out)
	encoder := gob.NewEncoder(w)
	err := encoder.Encode(filename)
	if err != nil {
		return err
	}
	err = encoder.Encode(sg)
	if err != nil {
		return err
	}
	return w.Close()
}

func retrieve() (string, *types.SaveGame, error) {
	f, err := os.Open(g_stash_filename)
	if err != nil {
		return "", nil, fmt.Errorf("nothing loaded (%w)", err)
	}
	defer f.Close()
	return retrieve_from(f)
}

func retrieve_from(in io.Reader) (string, *types.SaveGame, error) {
	decoder := gob.NewDecoder(snappy.NewReader(in))
	var filename string
	sg := types.SaveGame{}
	err := decoder.Decode(&filename)
	if err != nil {
		return "", nil, err
	}
	err = decoder.Decode(&sg)
	if err != nil {
		return "", nil, err
	}
	return filename, &sg, nil
}

package savefile

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/ini.v1"
)

var test_dir = "testdata"

// Every real save listed in testdata/files.ini must come back byte for byte
func Test_CorpusRoundTrip(t *testing.T) {
	inifile, err := ini.Load(filepath.Join(test_dir, "files.ini"))
	if err != nil {
		t.Fatalf("can't even read ini file: %v", err)
	}
	filenames := []string{}
	for _, f := range strings.Split(inifile.Section("saves").Key("files").String(), ",") {
		if f = strings.TrimSpace(f); f != "" {
			filenames = append(filenames, filepath.Join(test_dir, f))
		}
	}
	if len(filenames) == 0 {
		t.Skip("no saves listed")
	}

	error_count := 0
	for _, filename := range filenames {
		data, err := os.ReadFile(filename)
		if err != nil {
			t.Logf("failed to load file %v, %v", filename, err)
			error_count++
			continue
		}
		sg, err := Read_savegame(data)
		if err != nil {
			t.Logf("failed to read file %v, %v", filename, err)
			error_count++
			continue
		}
		out, err := Encode(sg)
		if err != nil {
			t.Logf("failed to encode file %v, %v", filename, err)
			error_count++
			continue
		}
		if !bytes.Equal(out, data) {
			t.Logf("data mangled by load->save (%v, %v -> %v bytes)", filename, len(data), len(out))
			error_count++
		}
	}
	if error_count > 0 {
		t.Errorf("Errors! (%v errors, %v files)", error_count, len(filenames))
	}
}

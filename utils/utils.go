package utils

// Configuration, shared by essedit and the viewer.
//
// essedit.ini:
//
//	dir = C:\Users\me\Documents\My Games\Skyrim\Saves
//
//	[index]
//	db = essindex.db
//	cache_size = 64
//	extensions = .ess,.bak
//
//	[watch]
//	settle_seconds = 2
//
//	[ui]
//	W = 640
//	BACKGROUND_COLOUR = r0g0b32

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"gopkg.in/ini.v1"

	"essdump/ess_index"
)

var Config_filename = "essedit.ini"

type Config struct {
	Dir        string
	Db_path    string
	Cache_size int
	Settle     time.Duration
	Extensions []string
	// Everything in [ui], left as strings; the viewer knows what it wants
	UI map[string]string
}

func default_config() *Config {
	wd, _ := os.Getwd()
	return &Config{
		Dir:        wd,
		Cache_size: ess_index.DEFAULT_CACHE_SIZE,
		Settle:     ess_index.DEFAULT_SETTLE,
		Extensions: ess_index.Default_extensions,
		UI:         map[string]string{},
	}
}

// Load_config reads the ini file.  A missing file just means defaults.
func Load_config(filename string) (*Config, error) {
	cfg := default_config()
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	data, err := ini.Load(filename)
	if err != nil {
		return cfg, err
	}

	// Classic read of values, default section can be represented as empty string
	if dir := data.Section("").Key("dir").String(); dir != "" {
		cfg.Dir = dir
	}

	index := data.Section("index")
	cfg.Db_path = index.Key("db").String()
	if cfg.Db_path != "" && !filepath.IsAbs(cfg.Db_path) {
		cfg.Db_path = filepath.Join(cfg.Dir, cfg.Db_path)
	}
	cfg.Cache_size = index.Key("cache_size").MustInt(cfg.Cache_size)
	if index.HasKey("extensions") {
		cfg.Extensions = []string{}
		for _, ext := range index.Key("extensions").Strings(",") {
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cfg.Extensions = append(cfg.Extensions, ext)
		}
	}

	settle := data.Section("watch").Key("settle_seconds").MustFloat64(cfg.Settle.Seconds())
	cfg.Settle = time.Duration(settle * float64(time.Second))

	for _, key := range data.Section("ui").Keys() {
		cfg.UI[key.Name()] = key.String()
	}
	return cfg, nil
}

// Get_dir is the save directory: --dir on the command line, then the ini file, then the current dir.
// The returned args have the --dir pair removed.
func Get_dir(args []string, cfg *Config) (string, []string) {
	for i, arg := range args {
		if arg == "--dir" && i+1 < len(args) {
			rest := append(append([]string{}, args[:i]...), args[i+2:]...)
			return args[i+1], rest
		}
	}
	return cfg.Dir, args
}

func (cfg *Config) Index_options() ess_index.Options {
	return ess_index.Options{
		Db_path:    cfg.Db_path,
		Cache_size: cfg.Cache_size,
		Settle:     cfg.Settle,
		Extensions: cfg.Extensions,
	}
}

// UI_float reads a number from [ui], falling back to def
func (cfg *Config) UI_float(key string, def float64) float64 {
	s, ok := cfg.UI[key]
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return def
	}
	return f
}

// UI_colour reads a colour from [ui], falling back to def
func (cfg *Config) UI_colour(key string, def color.RGBA) (color.RGBA, error) {
	s, ok := cfg.UI[key]
	if !ok {
		return def, nil
	}
	c, err := Color_from_string(s)
	if err != nil {
		return def, err
	}
	return c, nil
}

// Color_from_string converts an ini file colour string (e.g. "R255g128b0") into a color.RGBA
// the alpha part of RGBA just gets set to 0xff (full opacity) if omitted
// (r, g, and b get set to 0 if omitted)
func Color_from_string(str string) (color.RGBA, error) {
	out := color.RGBA{0, 0, 0, 0xFF}

	name := rune(0)
	numstr := ""
	for _, r := range str + "!" { // the "!" makes sure the final colour index gets processed
		if unicode.IsDigit(r) {
			numstr += string(r)
			continue
		}
		if name != 0 {
			number, _ := strconv.Atoi(numstr)
			if number > 255 {
				number = 255
			}
			switch name {
			case 'r', 'R':
				out.R = uint8(number)
			case 'g', 'G':
				out.G = uint8(number)
			case 'b', 'B':
				out.B = uint8(number)
			case 'a', 'A':
				out.A = uint8(number)
			default:
				return out, errors.New("Unexpected colour index (not 'r', 'g', 'b' or 'a'): " + string(name))
			}
			numstr = ""
		}
		name = r
	}
	return out, nil
}

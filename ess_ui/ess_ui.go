package main

// Graphical save browser: screenshot and vital statistics of each save in the save directory.
// Left/right to flip through saves, newest first.  New saves show up as they're written.

import (
	"fmt"
	"image/color"
	"os"

	"golang.org/x/image/font/basicfont"

	"github.com/gopxl/pixel/v2"
	"github.com/gopxl/pixel/v2/backends/opengl"
	"github.com/gopxl/pixel/v2/ext/text"

	"essdump/ess_index"
	"essdump/savefile"
	"essdump/utils"
)

// shown is what's on screen for one save
type shown struct {
	entry  *ess_index.Entry
	sprite *pixel.Sprite
	text   *text.Text
}

func main() {
	// OpenGL must have the main thread
	opengl.Run(run)
}

// load_shown reads the whole header again for the screenshot; the index only keeps its size
func load_shown(entry *ess_index.Entry, atlas *text.Atlas, colour color.RGBA, max_w, max_h int) *shown {
	s := &shown{entry: entry, text: text.New(pixel.V(0, 0), atlas)}
	s.text.Color = colour
	fmt.Fprintln(s.text, entry.PlayerName, "- level", entry.PlayerLevel)
	fmt.Fprintln(s.text, entry.Location)
	fmt.Fprintln(s.text, entry.GameDate, "(save", fmt.Sprint(entry.SaveNumber)+")")

	h, err := savefile.Load_header(entry.Filename)
	if err != nil {
		fmt.Println(err)
		return s
	}
	img, err := utils.Screenshot_image(&h.Screenshot)
	if err != nil {
		fmt.Println(err)
		return s
	}
	pd := pixel.PictureDataFromImage(utils.Thumbnail(img, max_w, max_h))
	s.sprite = pixel.NewSprite(pd, pd.Bounds())
	return s
}

func run() {
	// superconstants
	const TEXT_LINES = 3
	const LINE_HEIGHT = 13 // because hard-coded basicfont.Face7x13.
	const TEXT_HEIGHT = (TEXT_LINES + 1) * LINE_HEIGHT

	cfg, err := utils.Load_config(utils.Config_filename)
	if err != nil {
		fmt.Println(err)
	}
	dir, _ := utils.Get_dir(os.Args[1:], cfg)

	// Reasonable defaults, all overridable from [ui]
	W, H := cfg.UI_float("W", 480), cfg.UI_float("H", 360)
	X_BORDER, Y_BORDER := cfg.UI_float("X_BORDER", 10), cfg.UI_float("Y_BORDER", 10)
	colour := map[string]color.RGBA{
		"BACKGROUND": {0, 0, 0, 0xFF},
		"TEXT":       {0xFF, 0xFF, 0xFF, 0xFF},
	}
	for k, def := range colour {
		col, err := cfg.UI_colour(k+"_COLOUR", def)
		if err != nil {
			fmt.Println(err)
		}
		colour[k] = col
	}

	wcfg := opengl.WindowConfig{
		Title:  "Skyrim saves - " + dir,
		Bounds: pixel.R(0, 0, W, H),
		VSync:  true,
	}
	win, err := opengl.NewWindow(wcfg)
	if err != nil {
		panic(err)
	}
	defer win.Destroy()

	idx, err := ess_index.New_index(dir, cfg.Index_options())
	if err != nil {
		panic(err)
	}
	defer idx.Close()
	idx.Scan()
	entries, err := idx.Entries()
	if err != nil {
		fmt.Println(err)
	}

	atlas := text.NewAtlas(basicfont.Face7x13, text.ASCII)
	max_w, max_h := int(W-2*X_BORDER), int(H-2*Y_BORDER-TEXT_HEIGHT)
	cache := map[string]*shown{}
	get := func(e *ess_index.Entry) *shown {
		s, ok := cache[e.Filename]
		if !ok || s.entry.Fingerprint != e.Fingerprint {
			s = load_shown(e, atlas, colour["TEXT"], max_w, max_h)
			cache[e.Filename] = s
		}
		return s
	}

	updates := make(chan *ess_index.Entry)
	err = idx.Start_watching(updates)
	if err != nil {
		fmt.Println(err)
	}

	// entries are oldest first; start at the newest
	current := len(entries) - 1
	for !win.Closed() {
		select {
		case e := <-updates:
			replaced := false
			for i := range entries {
				if entries[i].Filename == e.Filename {
					entries[i] = e
					replaced = true
				}
			}
			if !replaced {
				entries = append(entries, e)
			}
			current = len(entries) - 1
		default:
		}

		if win.JustPressed(pixel.KeyLeft) && current > 0 {
			current--
		}
		if win.JustPressed(pixel.KeyRight) && current < len(entries)-1 {
			current++
		}

		// DRAWING STARTS HERE
		win.Clear(colour["BACKGROUND"])
		if current >= 0 && current < len(entries) {
			s := get(entries[current])
			if s.sprite != nil {
				b := s.sprite.Frame()
				s.sprite.Draw(win, pixel.IM.Moved(pixel.V(W/2, H-Y_BORDER-b.H()/2)))
			}
			s.text.Draw(win, pixel.IM.Moved(pixel.V(X_BORDER, Y_BORDER+TEXT_HEIGHT-LINE_HEIGHT)))
		}
		win.Update()
		// DRAWING ENDS HERE
	}
}

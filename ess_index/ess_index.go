package ess_index

// Keeps an index of the saves in a directory: who, where, when, and a fingerprint of the contents.
// Only headers are decoded, so indexing a directory of big saves is cheap.
// The index lives in a leveldb database so that it survives restarts.

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"essdump/savefile"
	"essdump/types"
)

// Entry is what the index knows about one save
type Entry struct {
	Filename    string
	Fingerprint uint64
	Size        int64
	ModTime     time.Time

	Version     uint32
	SaveNumber  uint32
	PlayerName  string
	PlayerLevel uint32
	Location    string
	GameDate    string
	Race        string
	FileTime    time.Time
	ShotWidth   uint32
	ShotHeight  uint32
}

func (e *Entry) String() string {
	return fmt.Sprintf("%v: #%v %v (level %v) in %v, %v", filepath.Base(e.Filename), e.SaveNumber, e.PlayerName, e.PlayerLevel, e.Location, e.GameDate)
}

type Options struct {
	// Where the database lives.  Empty means in memory only.
	Db_path string
	// How many decoded headers to keep around, keyed by fingerprint
	Cache_size int
	// How long to wait after a write before reading the file, so the game can finish with it
	Settle time.Duration
	// File extensions to index, compared case-insensitively
	Extensions []string
}

const (
	DEFAULT_CACHE_SIZE = 64
	DEFAULT_SETTLE     = 2 * time.Second
)

var Default_extensions = []string{".ess"}

type Ess_index interface {
	Start_watching(updates chan<- *Entry) error
	Stop_watching()
	Scan() ([]*Entry, error)
	Entries() ([]*Entry, error)
	Lookup(filename string) (*Entry, bool)
	Close() error
}

func New_index(dir string, opts Options) (Ess_index, error) {
	if opts.Cache_size <= 0 {
		opts.Cache_size = DEFAULT_CACHE_SIZE
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = Default_extensions
	}

	var db *leveldb.DB
	var err error
	if opts.Db_path == "" {
		db, err = leveldb.Open(storage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(opts.Db_path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open index database %q: %w", opts.Db_path, err)
	}

	headers, err := lru.New[uint64, *types.SaveHeader](opts.Cache_size)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &dir_index{dir: dir, opts: opts, db: db, headers: headers}, nil
}

type dir_index struct {
	dir     string
	opts    Options
	db      *leveldb.DB
	headers *lru.Cache[uint64, *types.SaveHeader]

	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	done     chan struct{}
	finished chan struct{}
}

func (di *dir_index) is_save(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range di.opts.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// Start_watching sends an entry on updates for every save written to the directory.
// Sends give up once Stop_watching is called, so nobody has to keep reading.
func (di *dir_index) Start_watching(updates chan<- *Entry) error {
	di.Stop_watching()
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	done := make(chan struct{})
	finished := make(chan struct{})
	di.mu.Lock()
	di.watcher, di.done, di.finished = watcher, done, finished
	di.mu.Unlock()

	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !di.is_save(event.Name) {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					// Wait for the game itself to finish with the file
					select {
					case <-time.After(di.opts.Settle):
					case <-done:
						return
					}
					entry, err := di.handle_file(event.Name)
					if err != nil {
						log.Printf("Failed to index %v: %v", event.Name, err)
						continue
					}
					select {
					case updates <- entry:
					case <-done:
						return
					}
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					di.forget(event.Name)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Watcher error: %v", err)
			}
		}
	}()

	err = watcher.Add(di.dir)
	if err != nil {
		di.Stop_watching()
	}
	return err
}

// Stop_watching returns once the watcher goroutine has gone
func (di *dir_index) Stop_watching() {
	di.mu.Lock()
	watcher, done, finished := di.watcher, di.done, di.finished
	di.watcher, di.done, di.finished = nil, nil, nil
	di.mu.Unlock()
	if watcher == nil {
		return
	}
	close(done)
	watcher.Close()
	<-finished
}

func (di *dir_index) Close() error {
	di.Stop_watching()
	return di.db.Close()
}

// Scan indexes every save currently in the directory.  Files that fail to read are logged and skipped.
func (di *dir_index) Scan() ([]*Entry, error) {
	files, err := os.ReadDir(di.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %v: %w", di.dir, err)
	}
	out := []*Entry{}
	for _, f := range files {
		if f.IsDir() || !di.is_save(f.Name()) {
			continue
		}
		entry, err := di.handle_file(filepath.Join(di.dir, f.Name()))
		if err != nil {
			log.Printf("Failed to index %v: %v", f.Name(), err)
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// handle_file (re)indexes one save.
// The header is only decoded when the contents have changed since it was last seen.
func (di *dir_index) handle_file(filename string) (*Entry, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(filename)
	if err != nil {
		return nil, err
	}

	fingerprint := xxhash.Sum64(data)
	header, ok := di.headers.Get(fingerprint)
	if !ok {
		header, err = savefile.Read_header(data)
		if err != nil {
			return nil, err
		}
		di.headers.Add(fingerprint, header)
	}

	entry := &Entry{
		Filename:    filename,
		Fingerprint: fingerprint,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		Version:     header.Version,
		SaveNumber:  header.SaveNumber,
		PlayerName:  header.PlayerName,
		PlayerLevel: header.PlayerLevel,
		Location:    header.PlayerLocation,
		GameDate:    header.GameDate,
		Race:        header.PlayerRaceEditorId,
		FileTime:    header.FileTime,
		ShotWidth:   header.Screenshot.Width,
		ShotHeight:  header.Screenshot.Height,
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
	if err := di.db.Put([]byte(key(filename)), b, nil); err != nil {
		return nil, fmt.Errorf("failed to store index entry: %w", err)
	}
	return entry, nil
}

func (di *dir_index) forget(filename string) {
	if err := di.db.Delete([]byte(key(filename)), nil); err != nil {
		log.Printf("Failed to drop %v from the index: %v", filename, err)
	}
}

func key(filename string) string {
	return filepath.Base(filename)
}

func (di *dir_index) Lookup(filename string) (*Entry, bool) {
	b, err := di.db.Get([]byte(key(filename)), nil)
	if err != nil {
		return nil, false
	}
	entry := &Entry{}
	if json.Unmarshal(b, entry) != nil {
		return nil, false
	}
	return entry, true
}

// Entries returns everything in the index, ordered by save number
func (di *dir_index) Entries() ([]*Entry, error) {
	out := []*Entry{}
	iter := di.db.NewIterator(nil, nil)
	for iter.Next() {
		entry := &Entry{}
		if err := json.Unmarshal(iter.Value(), entry); err != nil {
			log.Printf("Bad index entry for %s: %v", iter.Key(), err)
			continue
		}
		out = append(out, entry)
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SaveNumber != out[j].SaveNumber {
			return out[i].SaveNumber < out[j].SaveNumber
		}
		return out[i].Filename < out[j].Filename
	})
	return out, nil
}

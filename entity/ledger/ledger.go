package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	jsoniter "github.com/json-iterator/go"
	"github.com/thanhpk/randstr"

	"github.com/ppartarr/mp3renamer/util"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary

	ErrLocked = errors.New("ledger is in use by another process")
)

// Entry records how a file has been processed
type Entry struct {
	OriginalPath string  `json:"original_path"`
	NewPath      string  `json:"new_path"`
	Artist       string  `json:"artist"`
	Album        string  `json:"album"`
	Year         string  `json:"year"`
	Timestamp    float64 `json:"timestamp"` // modification time, in seconds since epoch
}

// Ledger maps original file names to processing entries:
// it is loaded as a whole and rewritten as a whole on every save
type Ledger struct {
	path    string
	lock    *flock.Flock
	entries map[string]Entry
}

// Timestamp converts a modification time to the
// representation entries are persisted with
func Timestamp(modTime time.Time) float64 {
	return float64(modTime.UnixNano()) / float64(time.Second)
}

func New(path string) *Ledger {
	return &Ledger{
		path:    path,
		lock:    flock.New(path + ".lock"),
		entries: make(map[string]Entry),
	}
}

// Load reads the ledger at path: a missing file
// is a brand new, empty, ledger
func Load(path string) (*Ledger, error) {
	ledger := New(path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ledger, nil
	} else if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	if err := json.Unmarshal(data, &ledger.entries); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	if ledger.entries == nil {
		ledger.entries = make(map[string]Entry)
	}
	return ledger, nil
}

func (ledger *Ledger) Path() string {
	return ledger.path
}

// Lock takes an advisory lock on the ledger, failing
// with ErrLocked if another process holds it already
func (ledger *Ledger) Lock() error {
	ok, err := ledger.lock.TryLock()
	if err != nil {
		return fmt.Errorf("lock ledger: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

func (ledger *Ledger) Unlock() error {
	return ledger.lock.Unlock()
}

// Processed tells whether name has been processed already
// and has not been modified since
func (ledger *Ledger) Processed(name string, modTime time.Time) bool {
	entry, ok := ledger.entries[name]
	return ok && Timestamp(modTime) <= entry.Timestamp
}

func (ledger *Ledger) Get(name string) (Entry, bool) {
	entry, ok := ledger.entries[name]
	return entry, ok
}

func (ledger *Ledger) Set(name string, entry Entry) {
	ledger.entries[name] = entry
}

func (ledger *Ledger) Size() int {
	return len(ledger.entries)
}

// Names returns the keys of the ledger, sorted
func (ledger *Ledger) Names() []string {
	names := make([]string, 0, len(ledger.entries))
	for name := range ledger.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Save overwrites the persisted ledger with the full in-memory
// content: data goes to a sibling temporary file first, which
// is then renamed over the target
func (ledger *Ledger) Save() error {
	data, err := json.MarshalIndent(ledger.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	if dir := filepath.Dir(ledger.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("save ledger: %w", err)
		}
	}

	temp := fmt.Sprintf("%s.%s.tmp", ledger.path, randstr.Hex(8))
	if err := os.WriteFile(temp, data, 0o644); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	if err := os.Rename(temp, ledger.path); err != nil {
		util.ErrSuppress(os.Remove(temp))
		return fmt.Errorf("save ledger: %w", err)
	}
	return nil
}

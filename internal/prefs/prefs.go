// Package prefs stores small per-user UI preferences such as dismissed banners.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"sync"

	"github.com/BurntSushi/toml"
)

// KeyChromeExtensionSkip records that the user dismissed the browser extension banner.
const KeyChromeExtensionSkip = "onboarding.chrome_extension_skip"

// Keys lists the preferences polardash understands.
var Keys = []string{KeyChromeExtensionSkip}

// ErrUnknownKey is returned for keys not in Keys.
var ErrUnknownKey = errors.New("unknown preference key")

// Storage persists raw preference values.
type Storage interface {
	Load() (map[string]string, error)
	Save(values map[string]string) error
}

// Store reads and writes preferences through a Storage.
type Store struct {
	mu      sync.Mutex
	storage Storage
}

// New creates a store over storage.
func New(storage Storage) *Store {
	return &Store{storage: storage}
}

// Get returns the value for key and whether it is set.
func (s *Store) Get(key string) (string, bool, error) {
	if !slices.Contains(Keys, key) {
		return "", false, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.storage.Load()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	if !slices.Contains(Keys, key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.storage.Load()
	if err != nil {
		return err
	}
	if values == nil {
		values = make(map[string]string)
	}
	values[key] = value
	return s.storage.Save(values)
}

// Bool returns key parsed as a boolean; unset or unparsable values are false.
func (s *Store) Bool(key string) bool {
	v, ok, err := s.Get(key)
	if err != nil || !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// ChromeExtensionSkipped reports whether the extension banner was dismissed.
func (s *Store) ChromeExtensionSkipped() bool {
	return s.Bool(KeyChromeExtensionSkip)
}

// SkipChromeExtension dismisses the extension banner for good.
func (s *Store) SkipChromeExtension() error {
	return s.Set(KeyChromeExtensionSkip, "true")
}

// All returns every stored preference sorted by key.
func (s *Store) All() ([][2]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.storage.Load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, values[k]})
	}
	return out, nil
}

// File is a Storage backed by a TOML file.
type File struct {
	Path string
}

type fileContents struct {
	Prefs map[string]string `toml:"prefs"`
}

// DefaultPath returns ~/.local/state/polardash/prefs.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", "polardash", "prefs.toml"), nil
}

// Load returns an empty map when the file does not exist yet.
func (f *File) Load() (map[string]string, error) {
	var contents fileContents
	if _, err := toml.DecodeFile(f.Path, &contents); err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading prefs %s: %w", f.Path, err)
	}
	if contents.Prefs == nil {
		contents.Prefs = map[string]string{}
	}
	return contents.Prefs, nil
}

func (f *File) Save(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	fh, err := os.OpenFile(f.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer fh.Close()
	return toml.NewEncoder(fh).Encode(fileContents{Prefs: values})
}

// Memory is an in-process Storage.
type Memory struct {
	values map[string]string
}

func (m *Memory) Load() (map[string]string, error) {
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) Save(values map[string]string) error {
	m.values = make(map[string]string, len(values))
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

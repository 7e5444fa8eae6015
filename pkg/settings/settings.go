// Package settings persists client preferences (theme, admin token, category
// order) in a JSON file with a cache that is dropped when the file changes.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	dashboard "github.com/TatoZhvania/Croco-Dashboard/components/dashboard"
)

// FileName is the default settings file name.
const FileName = "settings.json"

// document mirrors the keys the web client kept in local storage.
type document struct {
	Theme         dashboard.Theme         `json:"theme,omitempty"`
	Token         string                  `json:"dashboard_admin_token,omitempty"`
	CategoryOrder dashboard.CategoryOrder `json:"categoryOrder,omitempty"`
}

// Store is a typed settings file. Reads are served from memory until the file
// is written or Invalidate is called.
type Store struct {
	path   string
	logger *zap.Logger

	mu     sync.RWMutex
	cache  document
	loaded bool
}

var _ dashboard.CategoryOrderStore = (*Store)(nil)

// DefaultPath returns <user config dir>/crocodash/settings.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("settings: locate config dir: %w", err)
	}
	return filepath.Join(dir, "crocodash", FileName), nil
}

// Open returns a store for path. The file is created on first write.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if path == "" {
		return nil, errors.New("settings: path is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}, nil
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// Theme returns the stored theme, light when unset.
func (s *Store) Theme() dashboard.Theme {
	doc, err := s.read()
	if err != nil {
		s.logger.Warn("read settings", zap.String("path", s.path), zap.Error(err))
	}
	return dashboard.ParseTheme(string(doc.Theme))
}

// SetTheme stores the theme.
func (s *Store) SetTheme(theme dashboard.Theme) error {
	if !theme.Valid() {
		return &dashboard.ValidationError{Message: fmt.Sprintf("unknown theme %q", theme)}
	}
	return s.update(func(doc *document) { doc.Theme = theme })
}

// ToggleTheme flips the stored theme and returns the new value.
func (s *Store) ToggleTheme() (dashboard.Theme, error) {
	next := s.Theme().Toggle()
	return next, s.SetTheme(next)
}

// Token returns the stored admin credential.
func (s *Store) Token() string {
	doc, err := s.read()
	if err != nil {
		s.logger.Warn("read settings", zap.String("path", s.path), zap.Error(err))
	}
	return doc.Token
}

// SetToken stores the admin credential; an empty token removes it.
func (s *Store) SetToken(token string) error {
	return s.update(func(doc *document) { doc.Token = token })
}

// CategoryOrder returns a copy of the stored category ranks.
func (s *Store) CategoryOrder() (dashboard.CategoryOrder, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	return doc.CategoryOrder.Clone(), nil
}

// SetCategoryOrder replaces the stored category ranks.
func (s *Store) SetCategoryOrder(order dashboard.CategoryOrder) error {
	return s.update(func(doc *document) { doc.CategoryOrder = order.Clone() })
}

// Invalidate drops the cache so the next read goes to disk.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.cache = document{}
	s.mu.Unlock()
}

func (s *Store) read() (document, error) {
	s.mu.RLock()
	if s.loaded {
		doc := s.cache
		s.mu.RUnlock()
		return doc, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.cache, nil
	}
	doc, err := s.load()
	if err != nil {
		return document{}, err
	}
	s.cache, s.loaded = doc, true
	return doc, nil
}

func (s *Store) update(fn func(*document)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.cache
	if !s.loaded {
		loaded, err := s.load()
		if err != nil {
			return err
		}
		doc = loaded
	}
	doc.CategoryOrder = doc.CategoryOrder.Clone()
	fn(&doc)
	if err := s.write(doc); err != nil {
		return err
	}
	s.cache, s.loaded = doc, true
	return nil
}

func (s *Store) load() (document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return document{}, nil
	}
	if err != nil {
		return document{}, fmt.Errorf("settings: read %s: %w", s.path, err)
	}
	var doc document
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("settings: decode %s: %w", s.path, err)
	}
	return doc, nil
}

// write replaces the file atomically through a temp file in the same
// directory.
func (s *Store) write(doc document) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("settings: create dir: %w", err)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("settings: temp file: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("settings: replace %s: %w", s.path, err)
	}
	return nil
}

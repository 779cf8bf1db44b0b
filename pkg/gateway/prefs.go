package gateway

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Prefs is a per-user preference store backed by a JSON file on disk. An
// empty path keeps the store in memory, which tests use.
type Prefs struct {
	mu   sync.RWMutex
	path string
	data map[string]*UserPrefs
}

// UserPrefs holds launcher and digest state for one user.
type UserPrefs struct {
	AutoOpened     bool   `json:"autoOpened"`     // assistant was auto-opened once
	ManuallyClosed bool   `json:"manuallyClosed"` // user closed it; never auto-open again
	LastDigestDate string `json:"lastDigestDate"` // YYYY-MM-DD of the last digest shown
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewPrefs creates a preference store at path. If the file exists its
// contents are loaded; otherwise the store starts empty.
func NewPrefs(path string) (*Prefs, error) {
	p := &Prefs{
		path: path,
		data: make(map[string]*UserPrefs),
	}
	if path == "" {
		return p, nil
	}
	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&p.data); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return p, nil
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// User returns a copy of the preferences for a user.
func (p *Prefs) User(userID string) UserPrefs {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if u := p.data[userID]; u != nil {
		return *u
	}
	return UserPrefs{}
}

// ShouldAutoOpen reports whether the assistant should open itself for a
// user: once per user, and never after a manual close.
func (p *Prefs) ShouldAutoOpen(userID string) bool {
	u := p.User(userID)
	return !u.AutoOpened && !u.ManuallyClosed
}

// MarkOpened records that the assistant was auto-opened for a user.
func (p *Prefs) MarkOpened(userID string) error {
	return p.update(userID, func(u *UserPrefs) {
		u.AutoOpened = true
	})
}

// MarkManuallyClosed records that the user dismissed the assistant.
func (p *Prefs) MarkManuallyClosed(userID string) error {
	return p.update(userID, func(u *UserPrefs) {
		u.ManuallyClosed = true
	})
}

// DigestShown reports whether the digest was already surfaced on day,
// formatted YYYY-MM-DD.
func (p *Prefs) DigestShown(userID, day string) bool {
	return p.User(userID).LastDigestDate == day
}

// MarkDigestShown records the day the digest was last surfaced.
func (p *Prefs) MarkDigestShown(userID, day string) error {
	return p.update(userID, func(u *UserPrefs) {
		u.LastDigestDate = day
	})
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func (p *Prefs) update(userID string, fn func(*UserPrefs)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := p.data[userID]
	if u == nil {
		u = new(UserPrefs)
		p.data[userID] = u
	}
	fn(u)
	return p.save()
}

// save writes the store to disk as indented JSON, creating parent
// directories as needed. In-memory stores skip the write.
func (p *Prefs) save() error {
	if p.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p.path, data, 0600)
}

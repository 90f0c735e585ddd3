package browser

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/playwright-community/playwright-go"
)

const sessionFileName = "session.json"

// SessionStore persists the session record to a fixed location inside the
// data directory. Absence or corruption of the backing file is treated
// identically to "no session yet" — never an error condition — and a failed
// save degrades gracefully to "login again next time".
type SessionStore struct {
	path string
}

// NewSessionStore creates a store rooted at dataDir. The directory is created
// lazily on the first save.
func NewSessionStore(dataDir string) *SessionStore {
	return &SessionStore{path: filepath.Join(dataDir, sessionFileName)}
}

// Path returns the location of the backing file.
func (s *SessionStore) Path() string {
	return s.path
}

// Load reads the saved session record. An absent, unreadable, or corrupt file
// yields an empty record, never an error.
func (s *SessionStore) Load() SessionRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return SessionRecord{}
	}

	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return SessionRecord{}
	}

	// A cookie set without a host (or vice versa) is not a usable session;
	// treat the half-written record as absent.
	if record.IsEmpty() {
		return SessionRecord{}
	}
	return record
}

// Save atomically replaces the stored record. Best-effort: the error return
// exists for logging only and callers never fail a request on it.
func (s *SessionStore) Save(cookies []playwright.Cookie, authBase string) error {
	if len(cookies) == 0 || authBase == "" {
		// Refuse to persist an inconsistent record.
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return err
	}

	data, err := json.Marshal(SessionRecord{Cookies: cookies, AuthBase: authBase})
	if err != nil {
		return err
	}

	// Write-then-rename so a crash mid-write never leaves a corrupt record
	// (corrupt records are tolerated on load, but the previous session would
	// be lost for nothing).
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

// replayCookies converts stored cookies into the optional form AddCookies
// expects. The engine treats cookies as opaque blobs to be replayed, never
// inspected.
func replayCookies(cookies []playwright.Cookie) []playwright.OptionalCookie {
	out := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		cookie := playwright.OptionalCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   playwright.String(c.Domain),
			Path:     playwright.String(c.Path),
			Expires:  playwright.Float(c.Expires),
			HttpOnly: playwright.Bool(c.HttpOnly),
			Secure:   playwright.Bool(c.Secure),
			SameSite: c.SameSite,
		}
		out = append(out, cookie)
	}
	return out
}

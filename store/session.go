package store

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"
)

// SessionRecord is the persisted backend login. It holds session
// cookies and is written owner-readable only.
type SessionRecord struct {
	BaseURL  string        `json:"base_url"`
	Username string        `json:"username"`
	Role     string        `json:"role"`
	Cookies  []SavedCookie `json:"cookies"`
	SavedAt  time.Time     `json:"saved_at"`
}

type SavedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HTTPCookies converts the saved cookies for a cookie jar.
func (r SessionRecord) HTTPCookies() []*http.Cookie {
	cookies := make([]*http.Cookie, 0, len(r.Cookies))
	for _, c := range r.Cookies {
		if c.Name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return cookies
}

// SavedCookies converts jar cookies for persistence.
func SavedCookies(cookies []*http.Cookie) []SavedCookie {
	out := make([]SavedCookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		out = append(out, SavedCookie{Name: c.Name, Value: c.Value})
	}
	return out
}

func SaveSession(record SessionRecord) error {
	if record.Username == "" {
		return errors.New("username is required")
	}
	if record.SavedAt.IsZero() {
		record.SavedAt = time.Now()
	}
	return writeJSON(configPath, "session.json", record, 0o600)
}

// LoadSession returns the persisted session, or false when there is none.
func LoadSession() (SessionRecord, bool, error) {
	path, err := configPath("session.json")
	if err != nil {
		return SessionRecord{}, false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return SessionRecord{}, false, nil
		}
		return SessionRecord{}, false, err
	}
	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return SessionRecord{}, false, errors.New("invalid session format")
	}
	return record, record.Username != "", nil
}

// DeleteSession removes the persisted session. A missing file is not an error.
func DeleteSession() error {
	path, err := configPath("session.json")
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

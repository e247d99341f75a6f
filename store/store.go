package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"transpo-cli/model"
)

const (
	appDir             = "transpo-cli"
	busCacheTTL        = 24 * time.Hour
	scheduleCacheTTL   = 10 * time.Minute
	searchCacheTTL     = 10 * time.Minute
	maxRecentSelection = 8
)

type cacheEnvelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// RecentSelection is a (bus, schedule) pair the user opened before.
type RecentSelection struct {
	BusNumber  string `json:"bus_number"`
	ScheduleID int64  `json:"schedule_id"`
	Label      string `json:"label"`
}

type selectionHistory struct {
	Selections []RecentSelection `json:"selections"`
}

func LoadBusCache() ([]model.Bus, bool, error) {
	path, err := cachePath("buses.json")
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Bus](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= busCacheTTL, nil
}

func SaveBusCache(buses []model.Bus) error {
	path, err := cachePath("buses.json")
	if err != nil {
		return err
	}
	return saveCache(path, buses)
}

func LoadScheduleCache() ([]model.Schedule, bool, error) {
	path, err := cachePath("schedules.json")
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Schedule](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= scheduleCacheTTL, nil
}

func SaveScheduleCache(schedules []model.Schedule) error {
	path, err := cachePath("schedules.json")
	if err != nil {
		return err
	}
	return saveCache(path, schedules)
}

func LoadSearchCache(pickup string, drop string) ([]model.Schedule, bool, error) {
	path, err := cachePath(searchCacheName(pickup, drop))
	if err != nil {
		return nil, false, err
	}
	cache, err := loadCache[[]model.Schedule](path)
	if err != nil {
		return nil, false, err
	}
	return cache.Data, time.Since(cache.UpdatedAt) <= searchCacheTTL, nil
}

func SaveSearchCache(pickup string, drop string, schedules []model.Schedule) error {
	path, err := cachePath(searchCacheName(pickup, drop))
	if err != nil {
		return err
	}
	return saveCache(path, schedules)
}

func searchCacheName(pickup string, drop string) string {
	return fmt.Sprintf("search_%s_%s.json", cacheKey(pickup), cacheKey(drop))
}

func cacheKey(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		default:
			return '-'
		}
	}, value)
}

func LoadRecentSelections() ([]RecentSelection, error) {
	path, err := configPath("history.json")
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var history selectionHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, errors.New("invalid selection history format")
	}
	return history.Selections, nil
}

// RememberSelection puts a selection at the front of the history.
func RememberSelection(selection RecentSelection) error {
	selection.BusNumber = strings.TrimSpace(selection.BusNumber)
	if selection.BusNumber == "" || selection.ScheduleID <= 0 {
		return errors.New("bus number and schedule id are required")
	}
	history, _ := LoadRecentSelections()
	next := []RecentSelection{selection}

	for _, existing := range history {
		if existing.ScheduleID == selection.ScheduleID && strings.EqualFold(existing.BusNumber, selection.BusNumber) {
			continue
		}
		next = append(next, existing)
		if len(next) >= maxRecentSelection {
			break
		}
	}

	return writeJSON(configPath, "history.json", selectionHistory{Selections: next}, 0o644)
}

func loadCache[T any](path string) (cacheEnvelope[T], error) {
	var cache cacheEnvelope[T]
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cache, nil
		}
		return cache, err
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		return cache, err
	}
	return cache, nil
}

func saveCache[T any](path string, data T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cache := cacheEnvelope[T]{
		UpdatedAt: time.Now(),
		Data:      data,
	}
	payload, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func writeJSON(locate func(string) (string, error), name string, value any, perm os.FileMode) error {
	path, err := locate(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, perm)
}

// ConfigDir returns the directory holding user settings.
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir), nil
}

func configPath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func cachePath(name string) (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDir, name), nil
}

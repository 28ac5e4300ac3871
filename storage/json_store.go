package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"price-scout/models"
	"price-scout/utils"
)

// NormalizeQuery lowercases a query and collapses internal whitespace runs
// into single underscores. This is the cache key for all backends.
func NormalizeQuery(query string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	return strings.Join(fields, "_")
}

func readJSONFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func writeJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// JSONCache is the default file-backed QueryCache: one JSON document
// holding every cache entry, read-modify-written wholesale on each Put.
type JSONCache struct {
	mu     sync.Mutex
	path   string
	logger *utils.Logger
}

// NewJSONCache creates a cache persisted at <dataDir>/cache.json.
func NewJSONCache(dataDir string, logger *utils.Logger) *JSONCache {
	return &JSONCache{path: filepath.Join(dataDir, "cache.json"), logger: logger}
}

// load treats an unreadable or corrupt file as an empty store: a cache
// read failure downgrades to a miss, never to a failed request.
func (c *JSONCache) load() map[string]models.CacheEntry {
	entries := make(map[string]models.CacheEntry)
	if err := readJSONFile(c.path, &entries); err != nil {
		if !os.IsNotExist(err) {
			c.logger.Warn("[cache] Unreadable store, treating as empty: %v", err)
		}
		return make(map[string]models.CacheEntry)
	}
	return entries
}

func (c *JSONCache) Get(query string) ([]*models.Listing, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.load()[NormalizeQuery(query)]
	if !ok {
		return nil, false
	}
	return entry.Results, true
}

func (c *JSONCache) Put(query string, results []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := NormalizeQuery(query)
	entries := c.load()
	entries[key] = models.CacheEntry{
		Query:    key,
		Results:  results,
		StoredAt: time.Now(),
	}
	return writeJSONFile(c.path, entries)
}

// JSONHistory persists the tracked-item map at <dataDir>/price_history.json.
type JSONHistory struct {
	mu     sync.Mutex
	path   string
	logger *utils.Logger
}

func NewJSONHistory(dataDir string, logger *utils.Logger) *JSONHistory {
	return &JSONHistory{path: filepath.Join(dataDir, "price_history.json"), logger: logger}
}

func (h *JSONHistory) Load() (map[string]*models.TrackedItem, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var doc struct {
		TrackedItems map[string]*models.TrackedItem `json:"tracked_items"`
	}
	if err := readJSONFile(h.path, &doc); err != nil {
		if !os.IsNotExist(err) {
			h.logger.Warn("[history] Unreadable store, treating as empty: %v", err)
		}
		return make(map[string]*models.TrackedItem), nil
	}
	if doc.TrackedItems == nil {
		doc.TrackedItems = make(map[string]*models.TrackedItem)
	}
	return doc.TrackedItems, nil
}

func (h *JSONHistory) Save(items map[string]*models.TrackedItem) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	doc := struct {
		TrackedItems map[string]*models.TrackedItem `json:"tracked_items"`
	}{TrackedItems: items}
	return writeJSONFile(h.path, doc)
}

// JSONLog is the file-backed interaction log at <dataDir>/interactions.json.
type JSONLog struct {
	mu     sync.Mutex
	path   string
	logger *utils.Logger
}

func NewJSONLog(dataDir string, logger *utils.Logger) *JSONLog {
	return &JSONLog{path: filepath.Join(dataDir, "interactions.json"), logger: logger}
}

func (l *JSONLog) load() []models.InteractionRecord {
	var records []models.InteractionRecord
	if err := readJSONFile(l.path, &records); err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn("[log] Unreadable store, treating as empty: %v", err)
		}
		return nil
	}
	return records
}

func (l *JSONLog) Append(userID, role, text string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records := append(l.load(), models.InteractionRecord{
		UserID:    userID,
		Role:      role,
		Text:      text,
		Timestamp: time.Now(),
	})
	return writeJSONFile(l.path, records)
}

func (l *JSONLog) Recent(userID string, limit int) ([]models.InteractionRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var matched []models.InteractionRecord
	for _, r := range l.load() {
		if r.UserID == userID {
			matched = append(matched, r)
		}
	}

	// Newest first.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if limit > 0 && limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

// JSONProfile is the file-backed ProfileStore at <dataDir>/profile.json.
type JSONProfile struct {
	mu     sync.Mutex
	path   string
	logger *utils.Logger
}

func NewJSONProfile(dataDir string, logger *utils.Logger) *JSONProfile {
	return &JSONProfile{path: filepath.Join(dataDir, "profile.json"), logger: logger}
}

func (p *JSONProfile) Profile() (models.UserProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	profile := models.UserProfile{
		BudgetRange: "Medium ($50 - $200)",
		Purpose:     "General Use",
	}
	if err := readJSONFile(p.path, &profile); err != nil && !os.IsNotExist(err) {
		p.logger.Warn("[profile] Unreadable store, using defaults: %v", err)
	}
	return profile, nil
}

// UpdatePreference handles the agent's feedback loop. Brand keys append,
// scalar keys overwrite.
func (p *JSONProfile) UpdatePreference(key, value string) error {
	profile, err := p.Profile()
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch key {
	case "liked_brands":
		profile.LikedBrands = appendUnique(profile.LikedBrands, value)
	case "disliked_brands":
		profile.DislikedBrands = appendUnique(profile.DislikedBrands, value)
	case "budget_range":
		profile.BudgetRange = value
	case "purpose":
		profile.Purpose = value
	case "name":
		profile.Name = value
	default:
		return fmt.Errorf("unknown preference key %q", key)
	}
	return writeJSONFile(p.path, profile)
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if strings.EqualFold(v, value) {
			return list
		}
	}
	return append(list, value)
}

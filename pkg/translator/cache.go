package translator

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cctns/copilot/pkg/orchestration"
)

// cacheEntry stores one cached translation on disk.
type cacheEntry struct {
	Question    string                    `json:"question"`
	Locale      string                    `json:"locale"`
	Model       string                    `json:"model"`
	Translation orchestration.Translation `json:"translation"`
	CreatedAt   time.Time                 `json:"created_at"`
	ExpiresAt   time.Time                 `json:"expires_at"`
}

// Cache is a file-backed translation cache. Identical questions skip the
// Gemini round trip until the entry expires.
type Cache struct {
	dir string
	ttl time.Duration
}

// NewCache creates a cache rooted at dir.
func NewCache(dir string, ttl time.Duration) *Cache {
	return &Cache{dir: dir, ttl: ttl}
}

// Get returns the cached translation for a question, or nil on miss.
func (c *Cache) Get(question, locale, model string) *orchestration.Translation {
	data, err := os.ReadFile(c.entryPath(question, locale, model))
	if err != nil {
		return nil
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil
	}
	if time.Now().After(entry.ExpiresAt) {
		return nil
	}
	// Guard against hash collisions and stale key schemes.
	if entry.Question != question || entry.Locale != locale || entry.Model != model {
		return nil
	}

	result := entry.Translation
	return &result
}

// Put stores a translation. Failures are swallowed; the cache is advisory.
func (c *Cache) Put(question, locale, model string, translation *orchestration.Translation) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return
	}

	now := time.Now()
	entry := cacheEntry{
		Question:    question,
		Locale:      locale,
		Model:       model,
		Translation: *translation,
		CreatedAt:   now,
		ExpiresAt:   now.Add(c.ttl),
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return
	}
	os.WriteFile(c.entryPath(question, locale, model), data, 0644)
}

func (c *Cache) entryPath(question, locale, model string) string {
	h := sha256.New()
	h.Write([]byte("translation_v1"))
	fmt.Fprintf(h, "%s|%s|%s", locale, model, question)
	key := hex.EncodeToString(h.Sum(nil))[:16]
	return filepath.Join(c.dir, key+".json")
}

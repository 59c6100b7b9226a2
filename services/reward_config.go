package services

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/luckymart/LuckyMart/models"
	"github.com/luckymart/LuckyMart/utils"
)

// RewardConfigEntry is one reward line item from the config table.
type RewardConfigEntry struct {
	Key       string        `json:"config_key"`
	Name      string        `json:"config_name"`
	Amount    utils.Decimal `json:"reward_amount"`
	Precision int           `json:"output_precision"`
	Active    bool          `json:"is_active"`
}

// RewardConfigSnapshot is an immutable view of the reward config table. One
// snapshot is taken per orchestrator invocation so a single run never sees
// two different config versions.
type RewardConfigSnapshot struct {
	Version  uint64
	LoadedAt time.Time
	entries  map[string]RewardConfigEntry
}

// Get returns the entry for a config key.
func (s *RewardConfigSnapshot) Get(key string) (RewardConfigEntry, bool) {
	entry, ok := s.entries[key]
	return entry, ok
}

// Keys returns every key present in the snapshot.
func (s *RewardConfigSnapshot) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}

// RewardConfigCache serves versioned snapshots with a short TTL. Writers
// (the admin config endpoints) call Invalidate after a change.
type RewardConfigCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	version  uint64
	snapshot *RewardConfigSnapshot
}

// NewRewardConfigCache creates a cache with the given freshness window.
func NewRewardConfigCache(ttl time.Duration) *RewardConfigCache {
	return &RewardConfigCache{ttl: ttl}
}

// Load returns a fresh-enough snapshot, reloading from storage when the TTL
// has elapsed.
func (c *RewardConfigCache) Load(db *gorm.DB) (*RewardConfigSnapshot, error) {
	c.mu.RLock()
	snapshot := c.snapshot
	c.mu.RUnlock()
	if snapshot != nil && time.Since(snapshot.LoadedAt) < c.ttl {
		return snapshot, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot != nil && time.Since(c.snapshot.LoadedAt) < c.ttl {
		return c.snapshot, nil
	}

	var rows []models.RewardConfig
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}

	entries := make(map[string]RewardConfigEntry, len(rows))
	for _, row := range rows {
		entries[row.ConfigKey] = RewardConfigEntry{
			Key:       row.ConfigKey,
			Name:      row.ConfigName,
			Amount:    row.RewardAmount,
			Precision: row.OutputPrecision,
			Active:    row.IsActive,
		}
	}

	c.version++
	c.snapshot = &RewardConfigSnapshot{
		Version:  c.version,
		LoadedAt: time.Now(),
		entries:  entries,
	}
	return c.snapshot, nil
}

// Invalidate drops the cached snapshot so the next Load hits storage.
func (c *RewardConfigCache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

// Package system owns platform settings loaded from sys_config: the weekend
// override dates, the forced provider and the ops chat id. Values are cached
// in Redis; Refresh bypasses the cache after a settings change.
package system

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"sync"

	"launcx-order-api/internal/dal"
	"launcx-order-api/internal/dao"
	"launcx-order-api/internal/fee"
)

const (
	keyWeekendOverrides = "sys.settlement.weekend_override_dates"
	keyForceProvider    = "sys.provider.force"
	keyBotChatID        = "sys.telegram.notify.group"

	redisHashKey = "sys_config_cache"
)

type Settings struct {
	mu               sync.RWMutex
	weekendOverrides fee.OverrideSet
	forceProvider    string
	botChatID        string
}

var current = &Settings{weekendOverrides: fee.OverrideSet{}}

// Init loads settings at boot, reading through the Redis cache so restarts
// do not hammer the database.
func Init() {
	load(false)
}

// Refresh reloads all settings straight from the database, repopulating the
// cache. Called on the explicit settings-change signal.
func Refresh() {
	load(true)
}

func load(skipCache bool) {
	mainDao := dao.NewMainDao()

	overrides := fee.OverrideSet{}
	if raw := loadKey(mainDao, keyWeekendOverrides, skipCache); raw != "" {
		var dates []string
		if err := json.Unmarshal([]byte(raw), &dates); err != nil {
			// Tolerate a comma-separated list as well.
			dates = strings.Split(raw, ",")
		}
		for _, d := range dates {
			d = strings.TrimSpace(d)
			if d != "" {
				overrides[d] = struct{}{}
			}
		}
	}

	force := loadKey(mainDao, keyForceProvider, skipCache)
	chatID := loadKey(mainDao, keyBotChatID, skipCache)

	current.mu.Lock()
	current.weekendOverrides = overrides
	current.forceProvider = strings.TrimSpace(force)
	current.botChatID = strings.TrimSpace(chatID)
	current.mu.Unlock()

	log.Printf("[SYSTEM] settings loaded: %d weekend overrides, forceProvider=%q", len(overrides), force)
}

// loadKey reads one config value, through the Redis cache unless skipCache.
func loadKey(mainDao *dao.MainDao, key string, skipCache bool) string {
	ctx := context.Background()
	if !skipCache && dal.RedisClient != nil {
		if cached, _ := dal.RedisClient.HGet(ctx, redisHashKey, key).Result(); cached != "" {
			return cached
		}
	}
	cfg, err := mainDao.GetSysConfig(key)
	if err != nil || cfg == nil {
		return ""
	}
	if dal.RedisClient != nil {
		_ = dal.RedisClient.HSet(ctx, redisHashKey, key, cfg.ConfigValue).Err()
	}
	return cfg.ConfigValue
}

// WeekendOverrides returns the current override date set. The returned map
// is shared; callers must not mutate it.
func WeekendOverrides() fee.OverrideSet {
	current.mu.RLock()
	defer current.mu.RUnlock()
	return current.weekendOverrides
}

// ForceProvider returns the platform-level provider override, empty when
// unset. Config-file force takes precedence at the orchestrator.
func ForceProvider() string {
	current.mu.RLock()
	defer current.mu.RUnlock()
	return current.forceProvider
}

// BotChatID returns the ops Telegram chat id.
func BotChatID() string {
	current.mu.RLock()
	defer current.mu.RUnlock()
	return current.botChatID
}

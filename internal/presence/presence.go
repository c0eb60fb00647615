// Package presence tracks which displays are currently connected.
// Liveness is a TTL key per display: a display that stops heartbeating
// simply expires.
package presence

import (
	"context"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// TTL should comfortably exceed the heartbeat interval so a single
// dropped heartbeat does not mark a display offline.
const defaultTTL = 45 * time.Second

// RedisPresence stores liveness in redis so multiple server replicas
// agree on who is connected.
type RedisPresence struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisPresence(client *redis.Client) *RedisPresence {
	return &RedisPresence{client: client, ttl: defaultTTL}
}

func key(displayID int) string {
	return fmt.Sprintf("display:online:%d", displayID)
}

func (p *RedisPresence) Touch(displayID int, now time.Time) {
	ctx := context.Background()
	if err := p.client.Set(ctx, key(displayID), now.Unix(), p.ttl).Err(); err != nil {
		log.Error().Err(err).Int("display_id", displayID).Msg("failed to record display presence")
	}
}

// Connected filters displayIDs down to those with a live presence key.
// On a redis error it returns all candidates: a generous answer beats
// false-positive failover.
func (p *RedisPresence) Connected(displayIDs []int) []int {
	if len(displayIDs) == 0 {
		return nil
	}
	ctx := context.Background()
	keys := make([]string, len(displayIDs))
	for i, id := range displayIDs {
		keys[i] = key(id)
	}
	values, err := p.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Error().Err(err).Msg("failed to query display presence")
		return displayIDs
	}
	connected := make([]int, 0, len(displayIDs))
	for i, v := range values {
		if v != nil {
			connected = append(connected, displayIDs[i])
		}
	}
	return connected
}

// MemoryPresence is an in-process implementation used by tests and
// single-node deployments without redis.
type MemoryPresence struct {
	mu   stdsync.RWMutex
	seen map[int]time.Time
	ttl  time.Duration
}

func NewMemoryPresence() *MemoryPresence {
	return &MemoryPresence{seen: make(map[int]time.Time), ttl: defaultTTL}
}

func (p *MemoryPresence) Touch(displayID int, now time.Time) {
	p.mu.Lock()
	p.seen[displayID] = now
	p.mu.Unlock()
}

func (p *MemoryPresence) Connected(displayIDs []int) []int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cutoff := time.Now().Add(-p.ttl)
	connected := make([]int, 0, len(displayIDs))
	for _, id := range displayIDs {
		if at, ok := p.seen[id]; ok && at.After(cutoff) {
			connected = append(connected, id)
		}
	}
	return connected
}

// File: services/intelligence/contextStore.go
package ai

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"apptdesk/models"
	"apptdesk/utils"

	"github.com/go-redis/redis/v8"
)

// maxHistoryTurns bounds how much history is replayed to the model.
const maxHistoryTurns = 40

func trimHistory(turns []models.ChatTurn) []models.ChatTurn {
	if len(turns) > maxHistoryTurns {
		return turns[len(turns)-maxHistoryTurns:]
	}
	return turns
}

type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = utils.DefaultSessionTTL
	}
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) ([]models.ChatTurn, error) {
	data, err := s.client.Get(ctx, utils.SessionKeyPrefix+sessionID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turns []models.ChatTurn
	if err := json.Unmarshal([]byte(data), &turns); err != nil {
		return nil, err
	}
	return turns, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, sessionID string, turns []models.ChatTurn) error {
	b, err := json.Marshal(trimHistory(turns))
	if err != nil {
		return err
	}
	return s.client.Set(ctx, utils.SessionKeyPrefix+sessionID, b, s.ttl).Err()
}

func (s *RedisSessionStore) Clear(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, utils.SessionKeyPrefix+sessionID).Err()
}

type memorySession struct {
	turns   []models.ChatTurn
	expires time.Time
}

// MemorySessionStore is the fallback when Redis is not configured.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = utils.DefaultSessionTTL
	}
	return &MemorySessionStore{sessions: make(map[string]memorySession), ttl: ttl, now: time.Now}
}

func (s *MemorySessionStore) Load(_ context.Context, sessionID string) ([]models.ChatTurn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	if s.now().After(sess.expires) {
		delete(s.sessions, sessionID)
		return nil, nil
	}
	out := make([]models.ChatTurn, len(sess.turns))
	copy(out, sess.turns)
	return out, nil
}

func (s *MemorySessionStore) Save(_ context.Context, sessionID string, turns []models.ChatTurn) error {
	turns = trimHistory(turns)
	stored := make([]models.ChatTurn, len(turns))
	copy(stored, turns)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = memorySession{turns: stored, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemorySessionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

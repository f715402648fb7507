package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vivaha/backend/internal/models"
)

// ChangeChannel carries conversation change events that drive the snapshot
// feed. Every write publishes here; subscribers re-query and push.
const ChangeChannel = "chat.changes"

type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client
func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx := context.Background()

	// Test connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{
		client: client,
		ctx:    ctx,
	}, nil
}

// Close closes the Redis connection
func (r *RedisClient) Close() error {
	return r.client.Close()
}

// Change Events

// PublishChange publishes a conversation change event
func (r *RedisClient) PublishChange(event models.ChangeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return r.client.Publish(r.ctx, ChangeChannel, data).Err()
}

// SubscribeToChanges subscribes to conversation change events
func (r *RedisClient) SubscribeToChanges() *redis.PubSub {
	return r.client.Subscribe(r.ctx, ChangeChannel)
}

// Session Store

// Session is the credential set persisted per login: token, user id, public
// account id and the cached profile JSON. It is written and cleared as one
// unit.
type Session struct {
	Token     string `json:"token"`
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
	UserInfo  string `json:"userInfo"`
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// SetSession stores a session keyed by token with the JWT's lifetime.
func (r *RedisClient) SetSession(session Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, sessionKey(session.Token), data, ttl).Err()
}

// GetSession retrieves a session by token. A missing session returns nil
// without error.
func (r *RedisClient) GetSession(token string) (*Session, error) {
	data, err := r.client.Get(r.ctx, sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, err
	}

	return &session, nil
}

// ClearSession removes a session atomically (single DEL).
func (r *RedisClient) ClearSession(token string) error {
	return r.client.Del(r.ctx, sessionKey(token)).Err()
}

// AllowAction implements a Redis-backed token-bucket limiter per key (user+action).
// Returns true if the action is allowed, false if rate-limited.
func (r *RedisClient) AllowAction(accountID, action string, rate int, burst int) (bool, error) {
	key := fmt.Sprintf("rl:%s:%s", action, accountID)
	// Lua script: manage tokens and last timestamp
	script := `
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local vals = redis.call('HMGET', key, 'tokens', 'last')
local tokens = tonumber(vals[1])
local last = tonumber(vals[2])
if tokens == nil then tokens = burst end
if last == nil then last = now end
local delta = math.max(0, now - last)
local new_tokens = math.min(burst, tokens + (delta * rate / 1000))
if new_tokens >= 1 then
	new_tokens = new_tokens - 1
	redis.call('HMSET', key, 'tokens', new_tokens, 'last', now)
	redis.call('PEXPIRE', key, 60000)
	return 1
else
	redis.call('HMSET', key, 'tokens', new_tokens, 'last', now)
	redis.call('PEXPIRE', key, 60000)
	return 0
end
`

	now := time.Now().UnixNano() / int64(time.Millisecond)
	res, err := r.client.Eval(r.ctx, script, []string{key}, rate, burst, now).Result()
	if err != nil {
		return false, err
	}
	// Eval returns int64 (1 or 0)
	switch v := res.(type) {
	case int64:
		return v == 1, nil
	case int:
		return v == 1, nil
	default:
		return false, fmt.Errorf("unexpected result from rate limiter: %T %v", res, res)
	}
}

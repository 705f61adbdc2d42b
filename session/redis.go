package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/studyhall/tutor-rag/config"
)

const redisPrefix = "tutor:sess:"

// redisStore persists sessions in Redis.
// Data model:
//   - redisPrefix + "session:" + id => JSON(Session), TTL-bound
//   - redisPrefix + "idx"          => sorted set of IDs scored by last update
type redisStore struct {
	cli *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to the configured Redis instance.
func NewRedisStore(cfg *config.SessionConfig) (Store, error) {
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("session redis_addr is required")
	}
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	cli := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		DB:       cfg.RedisDB,
		Password: cfg.RedisPass,
	})
	if err := cli.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect redis failed, err: %w", err)
	}
	return &redisStore{cli: cli, ttl: ttl}, nil
}

func (s *redisStore) idxKey() string           { return redisPrefix + "idx" }
func (s *redisStore) sessKey(id string) string { return redisPrefix + "session:" + id }

func (s *redisStore) Create(ctx context.Context) (*Session, error) {
	now := time.Now()
	sess := &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now, Messages: []Message{}}
	if err := s.save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *redisStore) Get(ctx context.Context, id string) (*Session, error) {
	raw, err := s.cli.Get(ctx, s.sessKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed, err: %w", err)
	}
	sess := &Session{}
	if err := json.Unmarshal([]byte(raw), sess); err != nil {
		return nil, fmt.Errorf("decode session %s failed, err: %w", id, err)
	}
	return sess, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) (bool, error) {
	pipe := s.cli.TxPipeline()
	del := pipe.Del(ctx, s.sessKey(id))
	pipe.ZRem(ctx, s.idxKey(), id)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("redis delete session failed, err: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *redisStore) AddMessage(ctx context.Context, id string, msg Message) error {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if sess == nil {
		return fmt.Errorf("session %s not found", id)
	}
	sess.Messages = append(sess.Messages, msg)
	sess.UpdatedAt = time.Now()
	return s.save(ctx, sess)
}

func (s *redisStore) List(ctx context.Context, offset, limit int) ([]*Session, error) {
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	ids, err := s.cli.ZRevRange(ctx, s.idxKey(), int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list sessions failed, err: %w", err)
	}
	out := make([]*Session, 0, len(ids))
	for _, id := range ids {
		sess, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		// expired entries linger in the index until their next listing
		if sess == nil {
			s.cli.ZRem(ctx, s.idxKey(), id)
			continue
		}
		out = append(out, sess)
	}
	return out, nil
}

func (s *redisStore) save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session failed, err: %w", err)
	}
	pipe := s.cli.TxPipeline()
	pipe.Set(ctx, s.sessKey(sess.ID), raw, s.ttl)
	pipe.ZAdd(ctx, s.idxKey(), redis.Z{Score: float64(sess.UpdatedAt.Unix()), Member: sess.ID})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis save session failed, err: %w", err)
	}
	return nil
}

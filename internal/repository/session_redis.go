package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ticket-counter/internal/model"
)

const sessionKeyPrefix = "session:"

// RedisSessionStore keeps one redis key per session under "session:<token>".
// Keys are written without a TTL so the no-expiry contract matches the file
// backend; revocation is the only way a session ends.
type RedisSessionStore struct {
	rdb *redis.Client
}

func NewRedisSessionStore(rdb *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func (s *RedisSessionStore) Create(ctx context.Context, email string) (string, model.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", model.Session{}, err
	}
	token, err := newSessionToken()
	if err != nil {
		return "", model.Session{}, err
	}
	sess := newSession(email)
	raw, err := json.Marshal(sess)
	if err != nil {
		return "", model.Session{}, err
	}
	if err := s.rdb.Set(ctx, sessionKeyPrefix+token, raw, 0).Err(); err != nil {
		return "", model.Session{}, &StorageError{Op: "write", Path: sessionKeyPrefix + token, Err: err}
	}
	return token, sess, nil
}

func (s *RedisSessionStore) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	raw, err := s.rdb.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: sessionKeyPrefix + token, Err: err}
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(raw), &sess); err == nil && sess.UserID != "" {
		return &sess, nil
	}
	// Legacy shape: the value is the bare user id rather than a JSON object.
	return &model.Session{UserID: raw}, nil
}

func (s *RedisSessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.rdb.Del(ctx, sessionKeyPrefix+token).Err(); err != nil {
		return &StorageError{Op: "delete", Path: sessionKeyPrefix + token, Err: err}
	}
	return nil
}

package repo

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/label-minter/server/internal/agent/model"
	errx "github.com/label-minter/server/internal/core/error"
	logx "github.com/label-minter/server/pkg/logger"
)

var errValueMismatch = errors.New("stored value does not match expected")

// RedisRecordStore keeps label and mint records as plain Redis strings.
// CompareAndSet is built on WATCH/MULTI/EXEC so concurrent writers on the
// same key across processes see at most one winner.
type RedisRecordStore struct {
	rdb redis.UniversalClient
}

func NewRedisRecordStore(rdb redis.UniversalClient) *RedisRecordStore {
	return &RedisRecordStore{rdb: rdb}
}

func (s *RedisRecordStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to get record from redis")
		return nil, false, errx.WrapRedis(err)
	}
	return b, true, nil
}

func (s *RedisRecordStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to set record in redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *RedisRecordStore) CompareAndSet(ctx context.Context, key string, expected, next []byte, ttl time.Duration) (bool, error) {
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if expected != nil {
				return errValueMismatch
			}
		case err != nil:
			return err
		default:
			if expected == nil || !bytes.Equal(current, expected) {
				return errValueMismatch
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errValueMismatch), errors.Is(err, redis.TxFailedErr):
		logx.Debug().Str("key", key).Msg("compare-and-set lost")
		return false, nil
	default:
		logx.Error().Err(err).Str("key", key).Msg("failed to compare-and-set record in redis")
		return false, errx.WrapRedis(err)
	}
}

var _ model.RecordStore = (*RedisRecordStore)(nil)

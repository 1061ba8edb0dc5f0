package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/siftbridge/internal/config"
)

const redisKeyPrefix = "siftbridge:session:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewRedisStore(client *redis.Client) Store {
	return &redisStore{
		client: client,
		ttl:    DefaultTTL,
	}
}

func (s *redisStore) Get(ctx context.Context, token string) (*Data, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *redisStore) Save(ctx context.Context, token string, data *Data) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+token, raw, s.ttl).Err()
}

func (s *redisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, redisKeyPrefix+token).Err()
}

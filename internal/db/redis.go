package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hybridlms/backend/internal/logger"
	"github.com/hybridlms/backend/internal/utils"
)

// RedisService holds the client backing the leaderboard sorted set. The
// backend runs without it; callers fall back to SQL ranking when Client()
// returns nil.
type RedisService struct {
	client *redis.Client
	log    *logger.Logger
}

func NewRedisService(log *logger.Logger) (*RedisService, error) {
	serviceLog := log.With("service", "RedisService")

	redisHost := utils.GetEnv("REDIS_HOST", "localhost", log)
	redisPort := utils.GetEnv("REDIS_PORT", "6379", log)
	redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
	redisDB := utils.GetEnvAsInt("REDIS_DB", 0, log)

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password: redisPassword,
		DB:       redisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		serviceLog.Warn("Redis ping failed", "error", err)
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	serviceLog.Info("Connected to Redis")
	return &RedisService{client: client, log: serviceLog}, nil
}

func (s *RedisService) Client() *redis.Client {
	if s == nil {
		return nil
	}
	return s.client
}

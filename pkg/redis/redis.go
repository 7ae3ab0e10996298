package redis

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"os"
	"strconv"
	"time"
)

type IRedis interface {
	GetCatalogEntries(ctx context.Context, key string) (map[string]string, error)
	Close() error
}

type redisClient struct {
	client *redis.Client
}

func New() (IRedis, error) {
	db, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	redisAddr := os.Getenv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", redisAddr))

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", redisAddr, err)
	}
	logrus.Info("Successfully connected to Redis")

	return &redisClient{client: client}, nil
}

// GetCatalogEntries reads a hash of label -> JSON profile.
func (r *redisClient) GetCatalogEntries(ctx context.Context, key string) (map[string]string, error) {
	logrus.Debug(fmt.Sprintf("Reading catalog hash %s", key))
	entries, err := r.client.HGetAll(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error reading catalog hash %s: %v", key, err))
		return nil, err
	}
	logrus.Debug(fmt.Sprintf("Read %d catalog entries from %s", len(entries), key))
	return entries, nil
}

func (r *redisClient) Close() error {
	return r.client.Close()
}

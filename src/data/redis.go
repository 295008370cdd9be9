package data

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	recoveryPrefix = "recovery:"
	recoveryTTL    = 15 * time.Minute
)

func MustRedis(url string) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	return redis.NewClient(opt)
}

// SetRecoveryCode stores the emailed password-recovery code for a login.
// Codes expire on their own; requesting a new one overwrites the old.
func SetRecoveryCode(ctx context.Context, rdb *redis.Client, login, code string) error {
	return rdb.Set(ctx, recoveryPrefix+login, code, recoveryTTL).Err()
}

func GetRecoveryCode(ctx context.Context, rdb *redis.Client, login string) (string, error) {
	return rdb.Get(ctx, recoveryPrefix+login).Result()
}

func DelRecoveryCode(ctx context.Context, rdb *redis.Client, login string) error {
	return rdb.Del(ctx, recoveryPrefix+login).Err()
}

package worker

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	redisClient "yumcut-cheap-image-generation/modules/common/redis"
)

// JobQueue - 작업 큐 (Push는 큐 길이 반환)
type JobQueue interface {
	Push(ctx context.Context, payload string) (int64, error)
	Pop(ctx context.Context) (string, error)
}

// RedisQueue - LPUSH / BRPOP 기반 큐
type RedisQueue struct {
	rdb *redis.Client
	key string
}

func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: redisClient.QueueKey}
}

// Push - LPUSH 후 LLEN으로 대기 위치 조회
func (q *RedisQueue) Push(ctx context.Context, payload string) (int64, error) {
	if err := q.rdb.LPush(ctx, q.key, payload).Err(); err != nil {
		return 0, fmt.Errorf("redis LPUSH failed: %w", err)
	}
	queueLen, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, nil
	}
	return queueLen, nil
}

// Pop - BRPOP (작업이 들어올 때까지 대기)
func (q *RedisQueue) Pop(ctx context.Context) (string, error) {
	result, err := q.rdb.BRPop(ctx, 0, q.key).Result()
	if err != nil {
		return "", err
	}
	// result[0]은 큐 이름, result[1]이 payload
	if len(result) < 2 {
		return "", fmt.Errorf("unexpected BRPOP result: %v", result)
	}
	return result[1], nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"smartcare/internal/domain/entity"
	"smartcare/internal/domain/repository"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// =============================================================================
// Scripts & Constants
// =============================================================================

// raiseFloorScript sets KEYS[1] to ARGV[1] only if that moves it up.
// Returns the resulting counter value.
var raiseFloorScript = redis.NewScript(`
	local current = tonumber(redis.call('GET', KEYS[1]) or '0')
	local floor = tonumber(ARGV[1])
	if floor > current then
		redis.call('SET', KEYS[1], floor)
		return floor
	end
	return current
`)

const (
	// RedisMRDKey holds the last issued medical record number
	RedisMRDKey = "patient:mrd:seq"

	redisSyncTimeout = 5 * time.Second
)

// =============================================================================
// Types
// =============================================================================

// RedisRecordNumbers issues record numbers with an atomic Redis INCR.
//
// The store sequence stays the durable floor: every issued number is written
// back inside the admission transaction, and SyncOnStartup raises the Redis
// counter to that floor. A number burned by a rolled back admission is never
// reissued.
type RedisRecordNumbers struct {
	db          *gorm.DB
	redisClient *redis.Client
	seqRepo     repository.RecordSequenceRepository
	log         *logrus.Logger
	key         string
}

func NewRedisRecordNumbers(db *gorm.DB, redisClient *redis.Client, seqRepo repository.RecordSequenceRepository, log *logrus.Logger) *RedisRecordNumbers {
	return &RedisRecordNumbers{
		db:          db,
		redisClient: redisClient,
		seqRepo:     seqRepo,
		log:         log,
		key:         RedisMRDKey,
	}
}

// =============================================================================
// Public Methods
// =============================================================================

// SyncOnStartup raises the Redis counter to the store floor.
// Should be called BEFORE accepting traffic.
func (g *RedisRecordNumbers) SyncOnStartup(ctx context.Context) error {
	floor, err := g.seqRepo.Current(g.db.WithContext(ctx), entity.SequenceMRD)
	if err != nil {
		return fmt.Errorf("read mrd floor: %w", err)
	}

	syncCtx, cancel := context.WithTimeout(ctx, redisSyncTimeout)
	defer cancel()
	current, err := raiseFloorScript.Run(syncCtx, g.redisClient, []string{g.key}, floor).Int64()
	if err != nil {
		return fmt.Errorf("sync mrd counter: %w", err)
	}

	g.log.Infof("MRD counter synced: floor=%d, redis=%d", floor, current)
	return nil
}

func (g *RedisRecordNumbers) Next(ctx context.Context, tx *gorm.DB) (string, error) {
	n, err := g.redisClient.Incr(ctx, g.key).Result()
	if err != nil {
		g.log.Warnf("Failed to increment MRD counter: %+v", err)
		return "", err
	}
	if err := g.seqRepo.RaiseFloor(tx, entity.SequenceMRD, n); err != nil {
		return "", err
	}
	return entity.FormatMRD(n), nil
}

func (g *RedisRecordNumbers) Observe(ctx context.Context, tx *gorm.DB, mrd string) error {
	n, ok := entity.ParseMRD(mrd)
	if !ok {
		return nil
	}
	if err := g.seqRepo.RaiseFloor(tx, entity.SequenceMRD, n); err != nil {
		return err
	}
	if err := raiseFloorScript.Run(ctx, g.redisClient, []string{g.key}, n).Err(); err != nil {
		g.log.Warnf("Failed to raise MRD counter to %d: %+v", n, err)
		return err
	}
	return nil
}

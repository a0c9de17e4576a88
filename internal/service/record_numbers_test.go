package service

import (
	"context"
	"errors"
	"testing"

	"smartcare/internal/domain/entity"
	"smartcare/internal/repository"
	"smartcare/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSequenceRecordNumbers_Next(t *testing.T) {
	db := testutil.NewTestDB(t)
	gen := NewSequenceRecordNumbers(repository.NewRecordSequenceRepository())
	ctx := context.Background()

	first, err := gen.Next(ctx, db)
	require.NoError(t, err)
	second, err := gen.Next(ctx, db)
	require.NoError(t, err)

	assert.Equal(t, "MRD-0001", first)
	assert.Equal(t, "MRD-0002", second)
}

func TestSequenceRecordNumbers_RollbackReturnsNumber(t *testing.T) {
	db := testutil.NewTestDB(t)
	gen := NewSequenceRecordNumbers(repository.NewRecordSequenceRepository())
	ctx := context.Background()

	errAbort := errors.New("abort")
	err := db.Transaction(func(tx *gorm.DB) error {
		mrd, err := gen.Next(ctx, tx)
		require.NoError(t, err)
		assert.Equal(t, "MRD-0001", mrd)
		return errAbort
	})
	require.ErrorIs(t, err, errAbort)

	mrd, err := gen.Next(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "MRD-0001", mrd)
}

func TestSequenceRecordNumbers_ObserveRaisesFloor(t *testing.T) {
	db := testutil.NewTestDB(t)
	gen := NewSequenceRecordNumbers(repository.NewRecordSequenceRepository())
	ctx := context.Background()

	require.NoError(t, gen.Observe(ctx, db, "MRD-0040"))
	// Lower and foreign numbers never move the sequence
	require.NoError(t, gen.Observe(ctx, db, "MRD-0007"))
	require.NoError(t, gen.Observe(ctx, db, "LEGACY-9999"))

	mrd, err := gen.Next(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "MRD-0041", mrd)
}

func setupRedisNumbers(t *testing.T) (*gorm.DB, *miniredis.Miniredis, *RedisRecordNumbers) {
	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	log, _ := testutil.NewTestLogger()
	return db, mr, NewRedisRecordNumbers(db, client, repository.NewRecordSequenceRepository(), log)
}

func TestRedisRecordNumbers_SyncOnStartupSeedsFromStore(t *testing.T) {
	db, mr, gen := setupRedisNumbers(t)
	ctx := context.Background()

	seqRepo := repository.NewRecordSequenceRepository()
	require.NoError(t, seqRepo.RaiseFloor(db, entity.SequenceMRD, 5))

	require.NoError(t, gen.SyncOnStartup(ctx))
	val, err := mr.Get(RedisMRDKey)
	require.NoError(t, err)
	assert.Equal(t, "5", val)

	mrd, err := gen.Next(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "MRD-0006", mrd)

	floor, err := seqRepo.Current(db, entity.SequenceMRD)
	require.NoError(t, err)
	assert.Equal(t, int64(6), floor)
}

func TestRedisRecordNumbers_SyncNeverLowersCounter(t *testing.T) {
	db, mr, gen := setupRedisNumbers(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(RedisMRDKey, "20"))
	require.NoError(t, repository.NewRecordSequenceRepository().RaiseFloor(db, entity.SequenceMRD, 3))

	require.NoError(t, gen.SyncOnStartup(ctx))

	mrd, err := gen.Next(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "MRD-0021", mrd)
}

func TestRedisRecordNumbers_Observe(t *testing.T) {
	db, mr, gen := setupRedisNumbers(t)
	ctx := context.Background()

	require.NoError(t, gen.Observe(ctx, db, "MRD-0100"))

	val, err := mr.Get(RedisMRDKey)
	require.NoError(t, err)
	assert.Equal(t, "100", val)

	mrd, err := gen.Next(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "MRD-0101", mrd)
}

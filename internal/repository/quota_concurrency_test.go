package repository

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/testutil"
)

// 記憶體 SQLite 每條連線是獨立的資料庫，
// 併發測試前收斂成單一連線讓所有請求打在同一份資料上
func singleConnection(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
}

func TestDecrementTotalQuota_ConcurrentExactWinners(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	singleConnection(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestTrialPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan,
		testutil.WithRemainingQuota(3, 30))

	repo := NewSubscriptionRepository(db)

	// 剩 3 單位額度，10 個併發請求恰好 3 個成功
	const attempts = 10
	var wg sync.WaitGroup
	var successes int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.DecrementTotalQuota(sub.ID, model.ActionUpload)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(3), successes)

	fresh, err := repo.GetByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, *fresh.RemainingUploadQuota)

	// 額度歸零後再扣必須失敗，計數不會變負
	ok, err := repo.DecrementTotalQuota(sub.ID, model.ActionUpload)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIncrementDailyUsage_ConcurrentStopsAtLimit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	singleConnection(t, db)

	user := testutil.TestUser(t, db)
	repo := NewQuotaRepository(db)

	today := model.QuotaDate(time.Now())
	quota, err := repo.GetOrCreateDaily(user.ID, today, 5, 100)
	require.NoError(t, err)

	const attempts = 12
	var wg sync.WaitGroup
	var successes int64
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.IncrementDailyUsage(quota.ID, model.ActionUpload)
			assert.NoError(t, err)
			if ok {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(5), successes)

	fresh, err := repo.GetDaily(user.ID, today)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.UploadsUsed)
	assert.Equal(t, 5, fresh.UploadsLimit)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
	"github.com/free689594-collab/BurgBug-sub002/internal/testutil"
)

func newSubscriptionService(db *gorm.DB) *SubscriptionService {
	return NewSubscriptionService(
		repository.NewSubscriptionRepository(db),
		repository.NewQuotaRepository(db),
		repository.NewAuditRepository(db),
		repository.NewMessageRepository(db),
		repository.NewPaymentRepository(db),
		nil,
		&config.Config{},
	)
}

func TestGetStatus_TrialSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestTrialPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan)

	svc := newSubscriptionService(db)

	status, err := svc.GetStatus(user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, status.SubscriptionID)
	assert.Equal(t, model.SubStatusTrial, status.Status)
	assert.False(t, status.IsExpired)
	assert.False(t, status.IsVIP)
	assert.Equal(t, model.QuotaTypeTotal, status.QuotaType)
	assert.Equal(t, 10, status.UploadLimit)
	assert.Equal(t, 10, status.UploadRemaining)
	assert.Equal(t, 30, status.QueryLimit)
	assert.Equal(t, 13, status.DaysRemaining)
}

func TestGetStatus_NoSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	svc := newSubscriptionService(db)

	_, err := svc.GetStatus(user.ID)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestGetStatus_LazyExpiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestTrialPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan,
		testutil.WithEndDate(time.Now().AddDate(0, 0, -2)))

	svc := newSubscriptionService(db)

	status, err := svc.GetStatus(user.ID)
	require.NoError(t, err)
	assert.True(t, status.IsExpired)
	assert.Equal(t, model.SubStatusExpired, status.Status)
	assert.Equal(t, 0, status.DaysRemaining)
	assert.Equal(t, 0, status.UploadRemaining)
	assert.Equal(t, 0, status.QueryRemaining)

	var fresh model.MemberSubscription
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.Equal(t, model.SubStatusExpired, fresh.Status)
}

func TestGetStatus_VIPDailyQuota(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	testutil.TestSubscription(t, db, user.ID, plan)

	quota := &model.DailyUsageQuota{
		UserID:       user.ID,
		Date:         model.QuotaDate(time.Now()),
		UploadsUsed:  5,
		UploadsLimit: 20,
		QueriesUsed:  7,
		QueriesLimit: 100,
	}
	require.NoError(t, db.Create(quota).Error)

	svc := newSubscriptionService(db)

	status, err := svc.GetStatus(user.ID)
	require.NoError(t, err)
	assert.True(t, status.IsVIP)
	assert.Equal(t, model.QuotaTypeDaily, status.QuotaType)
	assert.Equal(t, 5, status.UploadUsed)
	assert.Equal(t, 15, status.UploadRemaining)
	assert.Equal(t, 7, status.QueryUsed)
	assert.Equal(t, 93, status.QueryRemaining)
}

func TestStartTrial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestTrialPlan(t, db)

	svc := newSubscriptionService(db)

	sub, err := svc.StartTrial(user.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, sub.PlanID)
	assert.Equal(t, model.SubStatusTrial, sub.Status)
	assert.Equal(t, 10, *sub.RemainingUploadQuota)
	assert.Equal(t, 30, *sub.RemainingQueryQuota)

	expectedEnd := time.Now().AddDate(0, 0, plan.DurationDays)
	assert.WithinDuration(t, expectedEnd, sub.EndDate, time.Minute)
}

func TestActivateFromPayment_UpgradesTrial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	trialPlan := testutil.TestTrialPlan(t, db)
	vipPlan := testutil.TestVIPPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, trialPlan)
	payment := testutil.TestPayment(t, db, user.ID, vipPlan.ID,
		testutil.WithPaymentStatus(model.PaymentPaid))

	svc := newSubscriptionService(db)

	require.NoError(t, svc.ActivateFromPayment(payment))

	var fresh model.MemberSubscription
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.Equal(t, vipPlan.ID, fresh.PlanID)
	assert.Equal(t, model.SubStatusActive, fresh.Status)
	assert.Equal(t, model.PlanVIPMonthly, fresh.SubscriptionType)
	assert.Nil(t, fresh.RemainingUploadQuota)
	assert.Nil(t, fresh.RemainingQueryQuota)
	require.NotNil(t, fresh.PaymentID)
	assert.Equal(t, payment.ID, *fresh.PaymentID)
}

func TestActivateFromPayment_NoExistingSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	vipPlan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, vipPlan.ID,
		testutil.WithPaymentStatus(model.PaymentPaid))

	svc := newSubscriptionService(db)

	require.NoError(t, svc.ActivateFromPayment(payment))

	var sub model.MemberSubscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, model.SubStatusActive, sub.Status)
}

func TestActivateFromPayment_RenewalExtendsFromOldEndDate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	vipPlan := testutil.TestVIPPlan(t, db)
	oldEnd := time.Now().AddDate(0, 0, 10)
	sub := testutil.TestSubscription(t, db, user.ID, vipPlan,
		testutil.WithEndDate(oldEnd))
	payment := testutil.TestPayment(t, db, user.ID, vipPlan.ID,
		testutil.WithPaymentStatus(model.PaymentPaid))

	svc := newSubscriptionService(db)

	require.NoError(t, svc.ActivateFromPayment(payment))

	var fresh model.MemberSubscription
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.WithinDuration(t, oldEnd.AddDate(0, 0, 30), fresh.EndDate, time.Minute)
}

func TestExtend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	user := testutil.TestUser(t, db)
	plan := testutil.TestTrialPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan)

	svc := newSubscriptionService(db)

	result, err := svc.Extend(admin.ID, &dto.ExtendSubscriptionRequest{
		SubscriptionID: sub.ID,
		ExtendDays:     30,
		AdminNote:      "客服補償",
	})
	require.NoError(t, err)
	assert.Equal(t, sub.EndDate.AddDate(0, 0, 30).Format(dateLayout), result.NewEndDate)

	// 留下稽核記錄
	var audit model.AuditLog
	require.NoError(t, db.Where("action = ?", model.AuditExtendSubscription).First(&audit).Error)
	assert.Equal(t, admin.ID, audit.ActorID)
	assert.Equal(t, sub.ID, audit.TargetID)
	assert.Equal(t, "客服補償", audit.Reason)

	// 通知會員
	var msg model.Message
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&msg).Error)
	assert.Equal(t, model.MessageTypeSubscription, msg.Type)
}

func TestExtend_InvalidDays(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	_, err := svc.Extend(1, &dto.ExtendSubscriptionRequest{SubscriptionID: 1, ExtendDays: 0})
	assert.ErrorIs(t, err, ErrInvalidExtendDays)

	_, err = svc.Extend(1, &dto.ExtendSubscriptionRequest{SubscriptionID: 1, ExtendDays: 101})
	assert.ErrorIs(t, err, ErrInvalidExtendDays)
}

func TestExtend_SubscriptionNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	_, err := svc.Extend(1, &dto.ExtendSubscriptionRequest{SubscriptionID: 999, ExtendDays: 10})
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestAdjustDays_Negative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	user := testutil.TestUser(t, db)
	plan := testutil.TestTrialPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan,
		testutil.WithEndDate(time.Now().AddDate(0, 0, 30)))

	svc := newSubscriptionService(db)

	result, err := svc.AdjustDays(admin.ID, &dto.AdjustDaysRequest{
		SubscriptionID: sub.ID,
		DaysToAdjust:   -10,
		Reason:         "誤操作修正",
	})
	require.NoError(t, err)
	assert.Equal(t, sub.EndDate.AddDate(0, 0, -10).Format(dateLayout), result.NewEndDate)
}

func TestAdjustDays_RejectsEndDateBeforeNow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestTrialPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan,
		testutil.WithEndDate(time.Now().AddDate(0, 0, 5)))

	svc := newSubscriptionService(db)

	_, err := svc.AdjustDays(1, &dto.AdjustDaysRequest{
		SubscriptionID: sub.ID,
		DaysToAdjust:   -10,
	})
	assert.ErrorIs(t, err, ErrEndDateTooEarly)
}

func TestAdjustDays_InvalidDelta(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	_, err := svc.AdjustDays(1, &dto.AdjustDaysRequest{SubscriptionID: 1, DaysToAdjust: 0})
	assert.ErrorIs(t, err, ErrInvalidAdjustDays)

	_, err = svc.AdjustDays(1, &dto.AdjustDaysRequest{SubscriptionID: 1, DaysToAdjust: 400})
	assert.ErrorIs(t, err, ErrInvalidAdjustDays)
}

func TestSetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	user := testutil.TestUser(t, db)
	plan := testutil.TestTrialPlan(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, plan)

	svc := newSubscriptionService(db)

	result, err := svc.SetStatus(admin.ID, &dto.SetStatusRequest{
		SubscriptionID: sub.ID,
		NewStatus:      model.SubStatusCancelled,
		AdminNote:      "會員違規",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SubStatusTrial, result.OldStatus)
	assert.Equal(t, model.SubStatusCancelled, result.NewStatus)

	var fresh model.MemberSubscription
	require.NoError(t, db.First(&fresh, sub.ID).Error)
	assert.Equal(t, model.SubStatusCancelled, fresh.Status)
	// 只改狀態，不動到期日
	assert.WithinDuration(t, sub.EndDate, fresh.EndDate, time.Second)

	var audit model.AuditLog
	require.NoError(t, db.Where("action = ?", model.AuditSetStatus).First(&audit).Error)
	assert.Equal(t, model.SubStatusTrial, audit.OldValue)
	assert.Equal(t, model.SubStatusCancelled, audit.NewValue)
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newSubscriptionService(db)

	_, err := svc.SetStatus(1, &dto.SetStatusRequest{SubscriptionID: 1, NewStatus: "frozen"})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestGetStats(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	trialPlan := testutil.TestTrialPlan(t, db)
	vipPlan := testutil.TestVIPPlan(t, db)

	u1 := testutil.TestUser(t, db, testutil.WithAccount("stats_user1"))
	u2 := testutil.TestUser(t, db, testutil.WithAccount("stats_user2"))
	u3 := testutil.TestUser(t, db, testutil.WithAccount("stats_user3"))

	testutil.TestSubscription(t, db, u1.ID, trialPlan)
	testutil.TestSubscription(t, db, u2.ID, vipPlan)
	testutil.TestSubscription(t, db, u3.ID, trialPlan,
		testutil.WithStatus(model.SubStatusExpired))

	testutil.TestPayment(t, db, u2.ID, vipPlan.ID,
		testutil.WithPaymentStatus(model.PaymentPaid))

	svc := newSubscriptionService(db)

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalSubscriptions)
	assert.Equal(t, int64(1), stats.TrialSubscriptions)
	assert.Equal(t, int64(1), stats.ActiveSubscriptions)
	assert.Equal(t, int64(1), stats.ExpiredSubscriptions)
	assert.Equal(t, float64(1500), stats.TotalRevenue)
}

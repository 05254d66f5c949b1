package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/ecpay"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
	"github.com/free689594-collab/BurgBug-sub002/internal/testutil"
)

// 綠界測試環境商店資訊
const (
	testMerchantID = "2000132"
	testHashKey    = "5294y06JbISpM5x9"
	testHashIV     = "v77hoKGq4kWxNNIS"
)

func newPaymentService(db *gorm.DB) *PaymentService {
	cfg := &config.Config{}
	cfg.ECPay.MerchantID = testMerchantID
	cfg.ECPay.HashKey = testHashKey
	cfg.ECPay.HashIV = testHashIV
	cfg.ECPay.TestMode = true
	cfg.ECPay.ReturnURL = "https://example.com/api/payments/callback"

	return NewPaymentService(
		repository.NewPaymentRepository(db),
		newSubscriptionService(db),
		repository.NewSubscriptionRepository(db),
		repository.NewMessageRepository(db),
		nil,
		cfg,
	)
}

func newPaymentServiceWithRedis(t *testing.T, db *gorm.DB) *PaymentService {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	svc := newPaymentService(db)
	svc.redisClient = client
	return svc
}

// signedCallback 組一份通過檢查碼驗證的回調參數
func signedCallback(orderNumber string, rtnCode, amount string, extra map[string]string) map[string]string {
	params := map[string]string{
		"MerchantID":      testMerchantID,
		"MerchantTradeNo": orderNumber,
		"RtnCode":         rtnCode,
		"RtnMsg":          "交易成功",
		"TradeNo":         "2509011234567890",
		"TradeAmt":        amount,
		"PaymentType":     "ATM_TAISHIN",
		"PaymentDate":     "2026/09/01 10:30:00",
	}
	for k, v := range extra {
		params[k] = v
	}
	params[ecpay.CheckMacValueField] = ecpay.GenerateCheckMacValue(params, testHashKey, testHashIV)
	return params
}

func TestCreatePayment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	testutil.TestVIPPlan(t, db)

	svc := newPaymentService(db)

	resp, err := svc.CreatePayment(user.ID, &dto.CreatePaymentRequest{
		PlanType:      model.PlanVIPMonthly,
		PaymentMethod: "atm",
	})
	require.NoError(t, err)
	assert.Len(t, resp.MerchantTradeNo, 20)
	assert.Equal(t, float64(1500), resp.Amount)
	assert.Equal(t, ecpay.EndpointAioTest, resp.ActionURL)

	// 表單欄位含可自我驗證的檢查碼
	assert.Equal(t, "ATM", resp.FormData["ChoosePayment"])
	assert.Equal(t, "1500", resp.FormData["TotalAmount"])
	assert.True(t, ecpay.VerifyCheckMacValue(resp.FormData, testHashKey, testHashIV))

	var payment model.Payment
	require.NoError(t, db.Where("order_number = ?", resp.MerchantTradeNo).First(&payment).Error)
	assert.Equal(t, model.PaymentPending, payment.Status)
	assert.Equal(t, "atm", payment.PaymentMethod)
}

func TestCreatePayment_PlanNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	svc := newPaymentService(db)

	_, err := svc.CreatePayment(user.ID, &dto.CreatePaymentRequest{
		PlanType:      model.PlanVIPMonthly,
		PaymentMethod: "atm",
	})
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestHandleCallback_Paid(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	params := signedCallback(payment.OrderNumber, "1", "1500", nil)
	require.NoError(t, svc.HandleCallback(context.Background(), params))

	var fresh model.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, model.PaymentPaid, fresh.Status)
	assert.Equal(t, "2509011234567890", fresh.ECPayTradeNo)
	assert.NotNil(t, fresh.PaidAt)

	// 付款成功開通 VIP 訂閱
	var sub model.MemberSubscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, model.SubStatusActive, sub.Status)
	assert.Equal(t, model.PlanVIPMonthly, sub.SubscriptionType)

	// 站內訊息通知
	var msg model.Message
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&msg).Error)
	assert.Equal(t, model.MessageTypeSystem, msg.Type)
}

func TestHandleCallback_DuplicateIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	params := signedCallback(payment.OrderNumber, "1", "1500", nil)
	require.NoError(t, svc.HandleCallback(context.Background(), params))
	// 綠界重送同一筆通知，直接確認不重複處理
	require.NoError(t, svc.HandleCallback(context.Background(), params))

	var count int64
	require.NoError(t, db.Model(&model.MemberSubscription{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHandleCallback_RetriesAfterTransientSettleFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentServiceWithRedis(t, db)

	// 第一次結清撞上短暫的資料庫錯誤
	failed := false
	err := db.Callback().Update().Before("gorm:update").
		Register("fail_first_payment_update", func(tx *gorm.DB) {
			if _, ok := tx.Statement.Model.(*model.Payment); ok && !failed {
				failed = true
				tx.AddError(errors.New("connection reset by peer"))
			}
		})
	require.NoError(t, err)

	params := signedCallback(payment.OrderNumber, "1", "1500", nil)
	require.Error(t, svc.HandleCallback(context.Background(), params))

	// 失敗的回調不得寫入重放標記，否則重送會被誤擋
	n, err := svc.redisClient.Exists(context.Background(),
		callbackReplayKey(payment.OrderNumber, 1)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	// 綠界收到 0|Error 後重送，重試必須完成結清與開通
	require.NoError(t, svc.HandleCallback(context.Background(), params))

	var fresh model.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, model.PaymentPaid, fresh.Status)

	var sub model.MemberSubscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, model.SubStatusActive, sub.Status)

	// 處理成功後標記才落地
	n, err = svc.redisClient.Exists(context.Background(),
		callbackReplayKey(payment.OrderNumber, 1)).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestHandleCallback_ResendActivatesAfterActivationFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	// 結清成功但開通訂閱時失敗
	failed := false
	err := db.Callback().Create().Before("gorm:create").
		Register("fail_first_subscription_create", func(tx *gorm.DB) {
			if _, ok := tx.Statement.Model.(*model.MemberSubscription); ok && !failed {
				failed = true
				tx.AddError(errors.New("connection reset by peer"))
			}
		})
	require.NoError(t, err)

	params := signedCallback(payment.OrderNumber, "1", "1500", nil)
	require.Error(t, svc.HandleCallback(context.Background(), params))

	// 付款已入帳，訂閱還沒開通
	var fresh model.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, model.PaymentPaid, fresh.Status)

	var count int64
	require.NoError(t, db.Model(&model.MemberSubscription{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// 重送的回調走終止快速路徑時補做開通
	require.NoError(t, svc.HandleCallback(context.Background(), params))

	var sub model.MemberSubscription
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&sub).Error)
	assert.Equal(t, model.SubStatusActive, sub.Status)
	require.NotNil(t, sub.PaymentID)
	assert.Equal(t, payment.ID, *sub.PaymentID)
}

func TestHandleCallback_MalformedAmount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	// 金額欄位有帶但無法解析，視同金額不符
	params := signedCallback(payment.OrderNumber, "1", "150O", nil)
	err := svc.HandleCallback(context.Background(), params)
	assert.ErrorIs(t, err, ErrAmountMismatch)

	var fresh model.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, model.PaymentPending, fresh.Status)
}

func TestHandleCallback_InvalidCheckMacValue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	params := signedCallback(payment.OrderNumber, "1", "1500", nil)
	params["TradeAmt"] = "1" // 簽章後竄改金額

	err := svc.HandleCallback(context.Background(), params)
	assert.ErrorIs(t, err, ErrInvalidCallback)

	// 整包參數不可信，訂單維持 pending
	var fresh model.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, model.PaymentPending, fresh.Status)
}

func TestHandleCallback_AmountMismatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	// 檢查碼正確但金額與訂單不符
	params := signedCallback(payment.OrderNumber, "1", "999", nil)
	err := svc.HandleCallback(context.Background(), params)
	assert.ErrorIs(t, err, ErrAmountMismatch)
}

func TestHandleCallback_UnknownOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := newPaymentService(db)

	params := signedCallback("ZHX17000000000000001", "1", "1500", nil)
	err := svc.HandleCallback(context.Background(), params)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

func TestHandleCallback_ATMPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	// ATM 取號成功通知：回寫繳費資訊但不結清
	params := signedCallback(payment.OrderNumber, "2", "1500", map[string]string{
		"BankCode":   "812",
		"vAccount":   "9103522175887271",
		"ExpireDate": "2026/09/04",
	})
	require.NoError(t, svc.HandleCallback(context.Background(), params))

	var fresh model.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, model.PaymentPending, fresh.Status)
	assert.Equal(t, "812", fresh.BankCode)
	assert.Equal(t, "9103522175887271", fresh.VirtualAccount)
	assert.Equal(t, "2026/09/04", fresh.PaymentDeadline)

	// 取號階段不開通訂閱
	var count int64
	require.NoError(t, db.Model(&model.MemberSubscription{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestHandleCallback_FailureCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	params := signedCallback(payment.OrderNumber, "10200095", "1500", nil)
	require.NoError(t, svc.HandleCallback(context.Background(), params))

	var fresh model.Payment
	require.NoError(t, db.First(&fresh, payment.ID).Error)
	assert.Equal(t, model.PaymentFailed, fresh.Status)
}

func TestListPayments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db, testutil.WithAccount("other_member"))
	plan := testutil.TestVIPPlan(t, db)

	testutil.TestPayment(t, db, user.ID, plan.ID,
		testutil.WithOrderNumber("ZHX17000000000000011"))
	testutil.TestPayment(t, db, user.ID, plan.ID,
		testutil.WithOrderNumber("ZHX17000000000000012"),
		testutil.WithPaymentStatus(model.PaymentPaid))
	testutil.TestPayment(t, db, other.ID, plan.ID,
		testutil.WithOrderNumber("ZHX17000000000000013"))

	svc := newPaymentService(db)

	records, total, err := svc.ListPayments(user.ID, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, records, 2)
}

func TestGetPayment_OwnershipCheck(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db, testutil.WithAccount("other_member2"))
	plan := testutil.TestVIPPlan(t, db)
	payment := testutil.TestPayment(t, db, user.ID, plan.ID)

	svc := newPaymentService(db)

	got, err := svc.GetPayment(user.ID, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.OrderNumber, got.OrderNumber)

	// 別人的付款記錄查不到
	_, err = svc.GetPayment(other.ID, payment.ID)
	assert.ErrorIs(t, err, ErrPaymentNotFound)
}

package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
)

// TestUser 建立測試會員
func TestUser(t *testing.T, db *gorm.DB, opts ...func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		Account:      fmt.Sprintf("member_%d", time.Now().UnixNano()%1000000),
		Nickname:     "測試會員",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuvwxyz123456", // bcrypt hash placeholder
		Role:         "member",
		Status:       "active",
	}

	for _, opt := range opts {
		opt(user)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// WithAccount 設定帳號
func WithAccount(account string) func(*model.User) {
	return func(u *model.User) {
		u.Account = account
	}
}

// WithRole 設定角色
func WithRole(role string) func(*model.User) {
	return func(u *model.User) {
		u.Role = role
	}
}

// WithEmail 設定信箱
func WithEmail(email string) func(*model.User) {
	return func(u *model.User) {
		u.Email = &email
	}
}

// TestTrialPlan 建立試用方案（total 型額度）
func TestTrialPlan(t *testing.T, db *gorm.DB) *model.SubscriptionPlan {
	t.Helper()

	uploadTotal := 10
	queryTotal := 30
	plan := &model.SubscriptionPlan{
		PlanName:         model.PlanTrial,
		DisplayName:      "免費試用",
		Price:            0,
		DurationDays:     14,
		UploadQuotaTotal: &uploadTotal,
		QueryQuotaTotal:  &queryTotal,
		IsActive:         true,
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create trial plan: %v", err)
	}
	return plan
}

// TestVIPPlan 建立 VIP 月費方案（daily 型額度）
func TestVIPPlan(t *testing.T, db *gorm.DB) *model.SubscriptionPlan {
	t.Helper()

	uploadDaily := 20
	queryDaily := 100
	plan := &model.SubscriptionPlan{
		PlanName:         model.PlanVIPMonthly,
		DisplayName:      "VIP 月費會員",
		Price:            1500,
		DurationDays:     30,
		UploadQuotaDaily: &uploadDaily,
		QueryQuotaDaily:  &queryDaily,
		IsActive:         true,
	}

	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("Failed to create vip plan: %v", err)
	}
	return plan
}

// TestSubscription 建立測試訂閱
func TestSubscription(t *testing.T, db *gorm.DB, userID int64, plan *model.SubscriptionPlan, opts ...func(*model.MemberSubscription)) *model.MemberSubscription {
	t.Helper()

	now := time.Now()
	sub := &model.MemberSubscription{
		UserID:           userID,
		PlanID:           plan.ID,
		Status:           model.SubStatusTrial,
		SubscriptionType: plan.PlanName,
		StartDate:        now,
		EndDate:          now.AddDate(0, 0, plan.DurationDays),
	}

	if plan.QuotaType() == model.QuotaTypeTotal {
		upload := *plan.UploadQuotaTotal
		query := *plan.QueryQuotaTotal
		sub.RemainingUploadQuota = &upload
		sub.RemainingQueryQuota = &query
	}
	if plan.PlanName == model.PlanVIPMonthly {
		sub.Status = model.SubStatusActive
	}

	for _, opt := range opts {
		opt(sub)
	}

	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}
	return sub
}

// WithStatus 設定訂閱狀態
func WithStatus(status string) func(*model.MemberSubscription) {
	return func(s *model.MemberSubscription) {
		s.Status = status
	}
}

// WithEndDate 設定到期日
func WithEndDate(endDate time.Time) func(*model.MemberSubscription) {
	return func(s *model.MemberSubscription) {
		s.EndDate = endDate
	}
}

// WithRemainingQuota 設定剩餘額度（total 型）
func WithRemainingQuota(upload, query int) func(*model.MemberSubscription) {
	return func(s *model.MemberSubscription) {
		s.RemainingUploadQuota = &upload
		s.RemainingQueryQuota = &query
	}
}

// TestPayment 建立測試付款記錄
func TestPayment(t *testing.T, db *gorm.DB, userID, planID int64, opts ...func(*model.Payment)) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		UserID:      userID,
		PlanID:      planID,
		OrderNumber: fmt.Sprintf("ZHX%d%04d", time.Now().UnixMilli(), time.Now().UnixNano()%10000),
		Amount:      1500,
		Status:      model.PaymentPending,
	}

	for _, opt := range opts {
		opt(payment)
	}

	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}
	return payment
}

// WithPaymentStatus 設定付款狀態
func WithPaymentStatus(status string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.Status = status
	}
}

// WithOrderNumber 設定訂單編號
func WithOrderNumber(orderNumber string) func(*model.Payment) {
	return func(p *model.Payment) {
		p.OrderNumber = orderNumber
	}
}

// TestDebt 建立測試債務記錄
func TestDebt(t *testing.T, db *gorm.DB, uploadedBy int64, opts ...func(*model.DebtRecord)) *model.DebtRecord {
	t.Helper()

	debt := &model.DebtRecord{
		UploadedBy:          uploadedBy,
		DebtorName:          "王小明",
		DebtorIDFull:        "A123456789",
		DebtorIDFirstLetter: "A",
		DebtorIDLast5:       "56789",
		Gender:              "男",
		Residence:           "台北市",
		DebtDate:            "2025-01-01",
		FaceValue:           100000,
		PaymentFrequency:    "monthly",
		RepaymentStatus:     "待觀察",
	}

	for _, opt := range opts {
		opt(debt)
	}

	if err := db.Create(debt).Error; err != nil {
		t.Fatalf("Failed to create test debt: %v", err)
	}
	return debt
}

// WithDebtorID 設定債務人證號
func WithDebtorID(full string) func(*model.DebtRecord) {
	return func(d *model.DebtRecord) {
		d.DebtorIDFull = full
		d.DebtorIDFirstLetter = full[:1]
		d.DebtorIDLast5 = full[len(full)-5:]
	}
}

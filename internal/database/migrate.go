package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
)

// Migrate 同步資料表結構
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.SubscriptionPlan{},
		&model.MemberSubscription{},
		&model.DailyUsageQuota{},
		&model.Payment{},
		&model.DebtRecord{},
		&model.Message{},
		&model.AuditLog{},
	)
}

// SeedPlans 建立預設訂閱方案，已存在的方案不覆寫
func SeedPlans(db *gorm.DB, cfg *config.SubscriptionConfig) error {
	trialUpload := cfg.TrialUploadQuota
	trialQuery := cfg.TrialQueryQuota
	vipUpload := cfg.VIPUploadDaily
	vipQuery := cfg.VIPQueryDaily

	plans := []model.SubscriptionPlan{
		{
			PlanName:         model.PlanTrial,
			DisplayName:      "免費試用",
			Description:      "註冊即贈的試用額度",
			Price:            0,
			DurationDays:     cfg.TrialDays,
			UploadQuotaTotal: &trialUpload,
			QueryQuotaTotal:  &trialQuery,
			IsActive:         true,
		},
		{
			PlanName:         model.PlanVIPMonthly,
			DisplayName:      "VIP 月費會員",
			Description:      "每日額度制，到期可續訂",
			Price:            cfg.MonthlyPrice,
			DurationDays:     cfg.VIPDurationDays,
			UploadQuotaDaily: &vipUpload,
			QueryQuotaDaily:  &vipQuery,
			IsActive:         true,
		},
	}

	for i := range plans {
		var existing model.SubscriptionPlan
		err := db.Where("plan_name = ?", plans[i].PlanName).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := db.Create(&plans[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

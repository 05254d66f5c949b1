package dto

// SubscriptionStatus 訂閱狀態查詢結果
type SubscriptionStatus struct {
	SubscriptionID   int64  `json:"subscription_id"`
	PlanName         string `json:"plan_name"`
	DisplayName      string `json:"display_name"`
	Status           string `json:"status"`
	SubscriptionType string `json:"subscription_type"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	DaysRemaining    int    `json:"days_remaining"`
	IsExpired        bool   `json:"is_expired"`
	IsVIP            bool   `json:"is_vip"`
	QuotaType        string `json:"quota_type"`
	UploadUsed       int    `json:"upload_used"`
	UploadLimit      int    `json:"upload_limit"`
	UploadRemaining  int    `json:"upload_remaining"`
	QueryUsed        int    `json:"query_used"`
	QueryLimit       int    `json:"query_limit"`
	QueryRemaining   int    `json:"query_remaining"`
}

// QuotaRequest 額度檢查 / 扣除請求
type QuotaRequest struct {
	ActionType string `json:"action_type" binding:"required,oneof=upload query"`
}

// QuotaCheckResult 額度檢查結果
type QuotaCheckResult struct {
	Allowed   bool   `json:"allowed"`
	Used      int    `json:"used"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	QuotaType string `json:"quota_type"`
	Message   string `json:"message,omitempty"`
}

// QuotaDeductResult 額度扣除結果
type QuotaDeductResult struct {
	Success   bool   `json:"success"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message,omitempty"`
}

// ExtendSubscriptionRequest 管理員延長訂閱
type ExtendSubscriptionRequest struct {
	SubscriptionID int64  `json:"subscription_id" binding:"required"`
	ExtendDays     int    `json:"extend_days" binding:"required,min=1,max=100"`
	AdminNote      string `json:"admin_note" binding:"omitempty,max=200"`
}

// AdjustDaysRequest 管理員調整訂閱天數（可為負值）
type AdjustDaysRequest struct {
	SubscriptionID int64  `json:"subscription_id" binding:"required"`
	DaysToAdjust   int    `json:"days_to_adjust" binding:"required,min=-365,max=365"`
	Reason         string `json:"reason" binding:"omitempty,max=200"`
}

// SetStatusRequest 管理員強制變更訂閱狀態
type SetStatusRequest struct {
	SubscriptionID int64  `json:"subscription_id" binding:"required"`
	NewStatus      string `json:"new_status" binding:"required,oneof=trial active expired cancelled"`
	AdminNote      string `json:"admin_note" binding:"omitempty,max=200"`
}

// AdjustResult 訂閱期限異動結果
type AdjustResult struct {
	SubscriptionID int64  `json:"subscription_id"`
	OldEndDate     string `json:"old_end_date"`
	NewEndDate     string `json:"new_end_date"`
	Message        string `json:"message"`
}

// SetStatusResult 訂閱狀態異動結果
type SetStatusResult struct {
	SubscriptionID int64  `json:"subscription_id"`
	OldStatus      string `json:"old_status"`
	NewStatus      string `json:"new_status"`
	Message        string `json:"message"`
}

// SubscriptionStats 管理後台訂閱統計
type SubscriptionStats struct {
	TotalSubscriptions   int64   `json:"total_subscriptions"`
	TrialSubscriptions   int64   `json:"trial_subscriptions"`
	ActiveSubscriptions  int64   `json:"active_subscriptions"`
	ExpiredSubscriptions int64   `json:"expired_subscriptions"`
	TotalRevenue         float64 `json:"total_revenue"`
	MonthlyRevenue       float64 `json:"monthly_revenue"`
	ExpiringSoonCount    int64   `json:"expiring_soon_count"`
}

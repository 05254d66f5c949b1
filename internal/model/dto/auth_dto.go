package dto

// RegisterRequest 會員註冊請求
type RegisterRequest struct {
	Account        string `json:"account" binding:"required,min=4,max=50"`
	Password       string `json:"password" binding:"required,min=8,max=72"`
	Nickname       string `json:"nickname" binding:"required,max=50"`
	Email          string `json:"email" binding:"omitempty,email"`
	BusinessType   string `json:"business_type" binding:"omitempty,max=50"`
	BusinessRegion string `json:"business_region" binding:"omitempty,max=50"`
}

// RegisterResponse 註冊結果
type RegisterResponse struct {
	UserID         int64  `json:"user_id"`
	SubscriptionID int64  `json:"subscription_id"`
	TrialEndDate   string `json:"trial_end_date"`
}

// LoginRequest 登入請求
type LoginRequest struct {
	Account  string `json:"account" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登入結果
type LoginResponse struct {
	Token string       `json:"token"`
	User  *UserProfile `json:"user"`
}

// UserProfile 會員基本資料
type UserProfile struct {
	ID             int64  `json:"id"`
	Account        string `json:"account"`
	Nickname       string `json:"nickname"`
	Role           string `json:"role"`
	BusinessType   string `json:"business_type,omitempty"`
	BusinessRegion string `json:"business_region,omitempty"`
}

package dto

// CreatePaymentRequest 建立付款訂單請求
// 目前僅開放 VIP 月費方案，付款方式限 ATM 虛擬帳號、超商代碼與超商條碼
type CreatePaymentRequest struct {
	PlanType      string `json:"plan_type" binding:"required,oneof=vip_monthly"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=atm cvs barcode"`
}

// CreatePaymentResponse 建立付款訂單結果
// FormData 為送往綠界 AioCheckOut 的表單欄位（含 CheckMacValue）
type CreatePaymentResponse struct {
	PaymentID       int64             `json:"payment_id"`
	MerchantTradeNo string            `json:"merchant_trade_no"`
	Amount          float64           `json:"amount"`
	FormData        map[string]string `json:"form_data"`
	ActionURL       string            `json:"action_url"`
}

// PaymentRecord 付款記錄（歷史查詢）
type PaymentRecord struct {
	ID            int64   `json:"id"`
	OrderNumber   string  `json:"order_number"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
	PaymentMethod string  `json:"payment_method,omitempty"`
	PaidAt        string  `json:"paid_at,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

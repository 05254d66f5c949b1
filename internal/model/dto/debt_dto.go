package dto

// DebtUploadRequest 債務記錄上傳請求
type DebtUploadRequest struct {
	DebtorName       string  `json:"debtor_name" binding:"required,max=50"`
	DebtorIDFull     string  `json:"debtor_id_full" binding:"required,len=10"`
	DebtorPhone      string  `json:"debtor_phone" binding:"omitempty,max=20"`
	Gender           string  `json:"gender" binding:"omitempty,oneof=男 女 其他"`
	Profession       string  `json:"profession" binding:"omitempty,max=50"`
	Residence        string  `json:"residence" binding:"required,max=50"`
	DebtDate         string  `json:"debt_date" binding:"required,datetime=2006-01-02"`
	FaceValue        float64 `json:"face_value" binding:"required,gt=0"`
	PaymentFrequency string  `json:"payment_frequency" binding:"required,oneof=daily weekly monthly"`
	RepaymentStatus  string  `json:"repayment_status" binding:"required"`
	Note             string  `json:"note" binding:"omitempty,max=500"`
}

// DebtSearchRequest 債務查詢請求
// 以身分證首字母與末五碼比對，可選擇居住地縮小範圍
type DebtSearchRequest struct {
	DebtorIDFirstLetter string `json:"debtor_id_first_letter" binding:"required,len=1"`
	DebtorIDLast5       string `json:"debtor_id_last5" binding:"required,len=5,numeric"`
	Residence           string `json:"residence" binding:"omitempty,max=50"`
}

// DebtSearchResult 債務查詢結果（遮罩版）
type DebtSearchResult struct {
	ID                  int64   `json:"id"`
	DebtorName          string  `json:"debtor_name"`    // 遮罩後
	DebtorIDFull        string  `json:"debtor_id_full"` // 遮罩後
	DebtorPhone         string  `json:"debtor_phone,omitempty"`
	Gender              string  `json:"gender,omitempty"`
	Profession          string  `json:"profession,omitempty"`
	Residence           string  `json:"residence"`
	DebtDate            string  `json:"debt_date"`
	FaceValue           float64 `json:"face_value"`
	PaymentFrequency    string  `json:"payment_frequency"`
	RepaymentStatus     string  `json:"repayment_status"`
	DebtorIDFirstLetter string  `json:"debtor_id_first_letter"`
	DebtorIDLast5       string  `json:"debtor_id_last5"`
	UploaderNickname    string  `json:"uploader_nickname,omitempty"`
	UploaderRegion      string  `json:"uploader_region,omitempty"`
	CreatedAt           string  `json:"created_at"`
}

// DebtStatusUpdateRequest 債務還款狀態更新請求
type DebtStatusUpdateRequest struct {
	RepaymentStatus string `json:"repayment_status" binding:"required"`
	Note            string `json:"note" binding:"omitempty,max=500"`
}

// AdminDebtEditRequest 管理員修正債務記錄
type AdminDebtEditRequest struct {
	RepaymentStatus string `json:"repayment_status" binding:"required"`
	Note            string `json:"note" binding:"omitempty,max=500"`
	Reason          string `json:"reason" binding:"required,max=200"`
}

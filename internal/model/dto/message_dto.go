package dto

// SendMessageRequest 管理員發送站內訊息
type SendMessageRequest struct {
	UserID  int64  `json:"user_id" binding:"required"`
	Title   string `json:"title" binding:"required,max=100"`
	Content string `json:"content" binding:"required,max=2000"`
}

// MessageItem 站內訊息
type MessageItem struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// UnreadCountResult 未讀訊息數
type UnreadCountResult struct {
	Count int64 `json:"count"`
}

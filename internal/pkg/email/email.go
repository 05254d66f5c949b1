package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/free689594-collab/BurgBug-sub002/config"
)

type Service struct {
	cfg *config.EmailConfig
}

func NewService(cfg *config.EmailConfig) *Service {
	return &Service{cfg: cfg}
}

// SendExpiryReminder 發送訂閱到期提醒
func (s *Service) SendExpiryReminder(to, nickname, endDate string, daysRemaining int) error {
	subject := "訂閱到期提醒 - 臻好尋"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">訂閱到期提醒</h2>
        <p>%s 您好，</p>
        <p>您的臻好尋會員訂閱將於 <strong>%s</strong> 到期（剩餘 %d 天）。</p>
        <p>到期後將無法繼續使用上傳與查詢功能，建議您提前續約以免影響使用。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此郵件由系統自動發送，請勿回覆。</p>
    </div>
</body>
</html>
`, nickname, endDate, daysRemaining)

	return s.sendHTML(to, subject, body)
}

// SendSubscriptionChanged 發送訂閱異動通知（管理員調整期限等）
func (s *Service) SendSubscriptionChanged(to, nickname, summary string) error {
	subject := "訂閱異動通知 - 臻好尋"
	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #2563eb;">訂閱異動通知</h2>
        <p>%s 您好，</p>
        <p>%s</p>
        <p>如有疑問請透過站內訊息聯繫客服。</p>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">此郵件由系統自動發送，請勿回覆。</p>
    </div>
</body>
</html>
`, nickname, summary)

	return s.sendHTML(to, subject, body)
}

// sendHTML 發送 HTML 郵件
func (s *Service) sendHTML(to, subject, body string) error {
	headers := make(map[string]string)
	headers["From"] = s.cfg.From
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var msg strings.Builder
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}

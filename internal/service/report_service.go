package service

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/oss"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

// ReportService 管理後台報表匯出
// 產生 CSV 後上傳 OSS，回傳帶簽名的臨時下載連結
type ReportService struct {
	subRepo     *repository.SubscriptionRepository
	paymentRepo *repository.PaymentRepository
	userRepo    *repository.UserRepository
	ossClient   *oss.Client
}

func NewReportService(
	subRepo *repository.SubscriptionRepository,
	paymentRepo *repository.PaymentRepository,
	userRepo *repository.UserRepository,
	ossClient *oss.Client,
) *ReportService {
	return &ReportService{
		subRepo:     subRepo,
		paymentRepo: paymentRepo,
		userRepo:    userRepo,
		ossClient:   ossClient,
	}
}

// 報表一次匯出的上限，超過請分批
const reportMaxRows = 10000

// ExportSubscriptions 匯出訂閱清單 CSV
func (s *ReportService) ExportSubscriptions(status string) (string, error) {
	subs, _, err := s.subRepo.Search(status, 1, reportMaxRows)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	// BOM 讓 Excel 以 UTF-8 開啟
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(&buf)
	header := []string{"訂閱編號", "會員帳號", "會員暱稱", "方案", "狀態", "開始日", "到期日"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range subs {
		sub := &subs[i]
		account, nickname := "", ""
		if user, err := s.userRepo.GetByID(sub.UserID); err == nil {
			account = user.Account
			nickname = user.Nickname
		}
		row := []string{
			strconv.FormatInt(sub.ID, 10),
			account,
			nickname,
			sub.SubscriptionType,
			sub.Status,
			sub.StartDate.Format(dateLayout),
			sub.EndDate.Format(dateLayout),
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return s.ossClient.UploadReport("subscriptions", buf.Bytes())
}

// ExportPayments 匯出指定會員的付款記錄 CSV，userID 為 0 時匯出全部
func (s *ReportService) ExportPayments(userID int64) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(&buf)
	header := []string{"付款編號", "訂單編號", "會員編號", "金額", "狀態", "付款方式", "付款時間"}
	if err := w.Write(header); err != nil {
		return "", err
	}

	var payments []model.Payment
	var err error
	if userID > 0 {
		payments, _, err = s.paymentRepo.ListByUserID(userID, 1, reportMaxRows)
	} else {
		payments, _, err = s.paymentRepo.ListAll(1, reportMaxRows)
	}
	if err != nil {
		return "", err
	}
	for i := range payments {
		p := &payments[i]
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.Format("2006-01-02 15:04:05")
		}
		row := []string{
			strconv.FormatInt(p.ID, 10),
			p.OrderNumber,
			strconv.FormatInt(p.UserID, 10),
			fmt.Sprintf("%.0f", p.Amount),
			p.Status,
			p.PaymentMethod,
			paidAt,
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return s.ossClient.UploadReport("payments", buf.Bytes())
}

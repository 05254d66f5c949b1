package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/ecpay"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

var (
	ErrPlanNotFound        = errors.New("找不到該訂閱方案")
	ErrPaymentNotFound     = errors.New("找不到該筆付款記錄")
	ErrInvalidCallback     = errors.New("檢查碼驗證失敗")
	ErrAmountMismatch      = errors.New("回調金額與訂單金額不符")
	ErrOrderNumberConflict = errors.New("訂單編號產生失敗，請稍後再試")
)

// 產生訂單編號遇唯一鍵衝突時的重試次數
const tradeNoMaxRetries = 3

type PaymentService struct {
	paymentRepo *repository.PaymentRepository
	subService  *SubscriptionService
	subRepo     *repository.SubscriptionRepository
	messageRepo *repository.MessageRepository
	redisClient *redis.Client
	cfg         *config.Config
}

func NewPaymentService(
	paymentRepo *repository.PaymentRepository,
	subService *SubscriptionService,
	subRepo *repository.SubscriptionRepository,
	messageRepo *repository.MessageRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		subService:  subService,
		subRepo:     subRepo,
		messageRepo: messageRepo,
		redisClient: redisClient,
		cfg:         cfg,
	}
}

// CreatePayment 建立付款訂單並產生綠界 AioCheckOut 表單
// 訂單編號衝突時重新產生，最多重試三次
func (s *PaymentService) CreatePayment(userID int64, req *dto.CreatePaymentRequest) (*dto.CreatePaymentResponse, error) {
	plan, err := s.subRepo.GetActivePlanByName(req.PlanType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	var payment *model.Payment
	for i := 0; i < tradeNoMaxRetries; i++ {
		payment = &model.Payment{
			UserID:        userID,
			PlanID:        plan.ID,
			OrderNumber:   ecpay.GenerateMerchantTradeNo(),
			Amount:        plan.Price,
			Status:        model.PaymentPending,
			PaymentMethod: req.PaymentMethod,
		}
		err = s.paymentRepo.Create(payment)
		if err == nil {
			break
		}
		if !repository.IsDuplicateOrderNumber(err) {
			return nil, err
		}
		payment = nil
	}
	if payment == nil {
		return nil, ErrOrderNumberConflict
	}

	formData, actionURL := ecpay.BuildCheckoutForm(
		ecpay.Config{
			MerchantID: s.cfg.ECPay.MerchantID,
			HashKey:    s.cfg.ECPay.HashKey,
			HashIV:     s.cfg.ECPay.HashIV,
			TestMode:   s.cfg.ECPay.TestMode,
		},
		ecpay.CheckoutOrder{
			MerchantTradeNo: payment.OrderNumber,
			TradeDate:       payment.CreatedAt,
			TotalAmount:     int(plan.Price),
			TradeDesc:       "臻好尋會員訂閱",
			ItemName:        plan.DisplayName,
			ReturnURL:       s.cfg.ECPay.ReturnURL,
			PaymentMethod:   req.PaymentMethod,
			ClientBackURL:   s.cfg.ECPay.ClientBackURL,
		},
	)

	return &dto.CreatePaymentResponse{
		PaymentID:       payment.ID,
		MerchantTradeNo: payment.OrderNumber,
		Amount:          payment.Amount,
		FormData:        formData,
		ActionURL:       actionURL,
	}, nil
}

// HandleCallback 處理綠界付款回調
// 回傳 nil 表示應回覆 "1|OK"，任何錯誤都應回覆 "0|Error"。
// 檢查碼不符的回調整包不可信，直接拒絕。重複回調靠
// pending → 終止的單次轉換保證冪等：第二次收到時直接回 OK。
func (s *PaymentService) HandleCallback(ctx context.Context, params map[string]string) error {
	rtnCode, _ := strconv.Atoi(params["RtnCode"])
	result := ecpay.ParsePaymentCallback(params, s.cfg.ECPay.HashKey, s.cfg.ECPay.HashIV, rtnCode)
	if !result.Valid {
		return ErrInvalidCallback
	}

	orderNumber := params["MerchantTradeNo"]
	payment, err := s.paymentRepo.GetByOrderNumber(orderNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPaymentNotFound
		}
		return err
	}

	// 金額欄位有帶就必須可解析且與訂單一致
	if tradeAmt := params["TradeAmt"]; tradeAmt != "" {
		amt, convErr := strconv.ParseFloat(tradeAmt, 64)
		if convErr != nil || amt != payment.Amount {
			return ErrAmountMismatch
		}
	}

	// 已處理過的回調直接確認，不重複處理；
	// 已付款但先前開通失敗的訂單趁重送補開通
	if payment.IsTerminal() {
		if payment.Status == model.PaymentPaid && result.Paid {
			return s.ensureActivated(payment)
		}
		return nil
	}
	if s.isReplayed(ctx, orderNumber, rtnCode) {
		return nil
	}

	var handleErr error
	switch {
	case result.Paid:
		handleErr = s.settlePaid(payment, params, rtnCode)
	case result.Pending:
		handleErr = s.recordPendingInfo(payment, params, rtnCode)
	default:
		handleErr = s.settleFailed(payment, params, rtnCode)
	}
	if handleErr != nil {
		return handleErr
	}

	// 處理成功才標記，失敗的回調留給綠界重送
	s.markCallbackHandled(ctx, orderNumber, rtnCode)
	return nil
}

// ensureActivated 已結清的付款若還沒有訂閱引用，補做開通
// （前次回調結清成功但開通失敗時，綠界重送會走到這裡）
func (s *PaymentService) ensureActivated(payment *model.Payment) error {
	activated, err := s.subRepo.ExistsByPaymentID(payment.ID)
	if err != nil {
		return err
	}
	if activated {
		return nil
	}
	if err := s.subService.ActivateFromPayment(payment); err != nil {
		return err
	}
	s.sendPaidMessage(payment)
	return nil
}

// settlePaid 付款成功：結清訂單並開通訂閱
func (s *PaymentService) settlePaid(payment *model.Payment, params map[string]string, rtnCode int) error {
	now := time.Now()
	ok, err := s.paymentRepo.SettleFromPending(payment.ID, map[string]interface{}{
		"status":             model.PaymentPaid,
		"ec_pay_trade_no":     params["TradeNo"],
		"ec_pay_payment_type": params["PaymentType"],
		"ec_pay_rtn_code":     rtnCode,
		"ec_pay_rtn_msg":      params["RtnMsg"],
		"paid_at":            now,
	})
	if err != nil {
		return err
	}
	if !ok {
		// 已被另一個回調結清
		return nil
	}

	if err := s.subService.ActivateFromPayment(payment); err != nil {
		// 付款已入帳，開通失敗須人工介入
		log.Printf("Payment %d settled but activation failed: %v", payment.ID, err)
		return err
	}

	s.sendPaidMessage(payment)
	return nil
}

// recordPendingInfo 取號成功：回寫繳費資訊，狀態仍為 pending
func (s *PaymentService) recordPendingInfo(payment *model.Payment, params map[string]string, rtnCode int) error {
	fields := map[string]interface{}{
		"ec_pay_trade_no":     params["TradeNo"],
		"ec_pay_payment_type": params["PaymentType"],
		"ec_pay_rtn_code":     rtnCode,
		"ec_pay_rtn_msg":      params["RtnMsg"],
	}
	if v := params["BankCode"]; v != "" {
		fields["bank_code"] = v
	}
	if v := params["vAccount"]; v != "" {
		fields["virtual_account"] = v
	}
	if v := params["PaymentNo"]; v != "" {
		fields["payment_no"] = v
	}
	if v := params["ExpireDate"]; v != "" {
		fields["payment_deadline"] = v
	}
	return s.paymentRepo.UpdatePendingInfo(payment.ID, fields)
}

// settleFailed 付款失敗：結清為 failed
func (s *PaymentService) settleFailed(payment *model.Payment, params map[string]string, rtnCode int) error {
	_, err := s.paymentRepo.SettleFromPending(payment.ID, map[string]interface{}{
		"status":             model.PaymentFailed,
		"ec_pay_trade_no":     params["TradeNo"],
		"ec_pay_payment_type": params["PaymentType"],
		"ec_pay_rtn_code":     rtnCode,
		"ec_pay_rtn_msg":      params["RtnMsg"],
	})
	return err
}

// isReplayed 以 redis 擋同一筆回調的短時間重放
// 標記在處理成功後才寫入，處理失敗的回調重送時不會被擋下。
// redis 不可用時放行，冪等性仍由資料庫的條件式更新兜底
func (s *PaymentService) isReplayed(ctx context.Context, orderNumber string, rtnCode int) bool {
	if s.redisClient == nil {
		return false
	}
	n, err := s.redisClient.Exists(ctx, callbackReplayKey(orderNumber, rtnCode)).Result()
	if err != nil {
		log.Printf("Failed to check callback replay for %s: %v", orderNumber, err)
		return false
	}
	return n > 0
}

func (s *PaymentService) markCallbackHandled(ctx context.Context, orderNumber string, rtnCode int) {
	if s.redisClient == nil {
		return
	}
	key := callbackReplayKey(orderNumber, rtnCode)
	if err := s.redisClient.Set(ctx, key, 1, 24*time.Hour).Err(); err != nil {
		log.Printf("Failed to mark callback handled for %s: %v", orderNumber, err)
	}
}

func callbackReplayKey(orderNumber string, rtnCode int) string {
	return fmt.Sprintf("payment:callback:%s:%d", orderNumber, rtnCode)
}

func (s *PaymentService) sendPaidMessage(payment *model.Payment) {
	msg := &model.Message{
		UserID:  payment.UserID,
		Type:    model.MessageTypeSystem,
		Title:   "付款成功通知",
		Content: fmt.Sprintf("您的訂單 %s 已付款成功（金額 NT$%.0f），VIP 會員權益已開通。", payment.OrderNumber, payment.Amount),
	}
	if err := s.messageRepo.Create(msg); err != nil {
		log.Printf("Failed to create paid message for user %d: %v", payment.UserID, err)
	}
}

// GetPayment 查詢單筆付款（僅限本人）
func (s *PaymentService) GetPayment(userID, paymentID int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	if payment.UserID != userID {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// ListPayments 會員付款歷史
func (s *PaymentService) ListPayments(userID int64, page, pageSize int) ([]dto.PaymentRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	payments, total, err := s.paymentRepo.ListByUserID(userID, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	records := make([]dto.PaymentRecord, 0, len(payments))
	for _, p := range payments {
		record := dto.PaymentRecord{
			ID:            p.ID,
			OrderNumber:   p.OrderNumber,
			Amount:        p.Amount,
			Status:        p.Status,
			PaymentMethod: p.PaymentMethod,
			CreatedAt:     p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if p.PaidAt != nil {
			record.PaidAt = p.PaidAt.Format("2006-01-02 15:04:05")
		}
		records = append(records, record)
	}
	return records, total, nil
}

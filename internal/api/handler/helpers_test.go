package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/config"
	"github.com/free689594-collab/BurgBug-sub002/internal/api/middleware"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/jwt"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/response"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
	"github.com/free689594-collab/BurgBug-sub002/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testJWTSecret = "test-secret-key"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.JWT.Secret = testJWTSecret
	cfg.JWT.ExpireHours = 24
	cfg.ECPay.MerchantID = "2000132"
	cfg.ECPay.HashKey = "5294y06JbISpM5x9"
	cfg.ECPay.HashIV = "v77hoKGq4kWxNNIS"
	cfg.ECPay.TestMode = true
	cfg.ECPay.ReturnURL = "https://example.com/api/v1/payments/callback"
	return cfg
}

func newServices(db *gorm.DB) (*service.AuthService, *service.SubscriptionService, *service.QuotaService, *service.PaymentService, *service.DebtService, *service.MessageService) {
	cfg := testConfig()

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	quotaRepo := repository.NewQuotaRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	debtRepo := repository.NewDebtRepository(db)

	subService := service.NewSubscriptionService(subRepo, quotaRepo, auditRepo, messageRepo, paymentRepo, nil, cfg)
	quotaService := service.NewQuotaService(subRepo, quotaRepo)
	authService := service.NewAuthService(userRepo, subService, cfg)
	paymentService := service.NewPaymentService(paymentRepo, subService, subRepo, messageRepo, nil, cfg)
	debtService := service.NewDebtService(debtRepo, userRepo, auditRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)

	return authService, subService, quotaService, paymentService, debtService, messageService
}

func authToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := jwt.GenerateToken(userID, testJWTSecret, 24)
	require.NoError(t, err)
	return "Bearer " + token
}

func authed(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	return append([]gin.HandlerFunc{middleware.Auth(testJWTSecret)}, handlers...)
}

func performRequest(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err)
	return resp
}

package ecpay

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strings"
	"time"
)

// 綠界 AioCheckOut API 端點
const (
	EndpointAioTest       = "https://payment-stage.ecpay.com.tw/Cashier/AioCheckOut/V5"
	EndpointAioProduction = "https://payment.ecpay.com.tw/Cashier/AioCheckOut/V5"
)

// CheckMacValue 欄位名稱
const CheckMacValueField = "CheckMacValue"

// 回調交易狀態碼
const (
	RtnCodePaid       = 1        // 付款成功
	RtnCodeATMPending = 2        // ATM 取號成功（待繳費）
	RtnCodeCVSPending = 10100073 // 超商取號成功（待繳費）
)

// 付款方式對應的綠界 ChoosePayment 參數
var PaymentMethodMap = map[string]string{
	"atm":     "ATM",
	"webatm":  "WebATM",
	"cvs":     "CVS",
	"barcode": "BARCODE",
	"credit":  "Credit",
}

// urlEncode 綠界專用 URL 編碼
// 等同 encodeURIComponent 後再做六項固定替換：
// %20→+、!→%21、'→%27、(→%28、)→%29、*→%2A。
// Go 的 url.QueryEscape 對空白與這五個符號的處理恰好與替換後的結果一致。
func urlEncode(value string) string {
	return url.QueryEscape(value)
}

// GenerateCheckMacValue 產生檢查碼
//
// 步驟：
// 1. 移除既有的 CheckMacValue（重複簽章須得到相同結果）
// 2. 依 Key 值排序（不分大小寫，A-Z）
// 3. 串接成 key1=value1&key2=value2 格式
// 4. 前後加上 HashKey 和 HashIV
// 5. URL 編碼（綠界變體）
// 6. 轉換為小寫
// 7. SHA256 雜湊
// 8. 轉換為大寫十六進位字串
func GenerateCheckMacValue(params map[string]string, hashKey, hashIV string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == CheckMacValueField {
			continue
		}
		keys = append(keys, k)
	}
	// 不分大小寫排序，小寫後相同的鍵再比原始字串，
	// 確保同一組參數永遠產生同一個簽章
	sort.Slice(keys, func(i, j int) bool {
		li, lj := strings.ToLower(keys[i]), strings.ToLower(keys[j])
		if li != lj {
			return li < lj
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	raw := "HashKey=" + hashKey + "&" + strings.Join(pairs, "&") + "&HashIV=" + hashIV
	encoded := strings.ToLower(urlEncode(raw))

	sum := sha256.Sum256([]byte(encoded))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

// VerifyCheckMacValue 驗證回傳參數中的檢查碼
// params 內須帶有 CheckMacValue 欄位，重新計算後逐位元比對
func VerifyCheckMacValue(params map[string]string, hashKey, hashIV string) bool {
	received, ok := params[CheckMacValueField]
	if !ok || received == "" {
		return false
	}
	return GenerateCheckMacValue(params, hashKey, hashIV) == received
}

// GenerateMerchantTradeNo 產生訂單編號
// 格式：ZHX + 毫秒時間戳（13 碼）+ 隨機數（4 碼）= 20 碼
// 唯一性為盡力而為，寫入資料庫遇唯一鍵衝突時由呼叫端重新產生
func GenerateMerchantTradeNo() string {
	return fmt.Sprintf("ZHX%d%04d", time.Now().UnixMilli(), rand.Intn(10000))
}

// FormatTradeDate 格式化交易時間（yyyy/MM/dd HH:mm:ss）
func FormatTradeDate(t time.Time) string {
	return t.Format("2006/01/02 15:04:05")
}

// CheckoutOrder 建立付款表單所需的訂單資料
type CheckoutOrder struct {
	MerchantTradeNo string
	TradeDate       time.Time
	TotalAmount     int
	TradeDesc       string
	ItemName        string
	ReturnURL       string
	PaymentMethod   string // atm, cvs, barcode...
	ClientBackURL   string
	OrderResultURL  string
}

// Config 綠界商店設定
type Config struct {
	MerchantID string
	HashKey    string
	HashIV     string
	TestMode   bool
}

// BuildCheckoutForm 建立 AioCheckOut 付款表單欄位
// 回傳含 CheckMacValue 的完整參數與表單送出網址
func BuildCheckoutForm(cfg Config, order CheckoutOrder) (map[string]string, string) {
	params := map[string]string{
		"MerchantID":        cfg.MerchantID,
		"MerchantTradeNo":   order.MerchantTradeNo,
		"MerchantTradeDate": FormatTradeDate(order.TradeDate),
		"PaymentType":       "aio",
		"TotalAmount":       fmt.Sprintf("%d", order.TotalAmount),
		"TradeDesc":         order.TradeDesc,
		"ItemName":          order.ItemName,
		"ReturnURL":         order.ReturnURL,
		"ChoosePayment":     PaymentMethodMap[order.PaymentMethod],
		"EncryptType":       "1", // SHA256
	}

	if order.ClientBackURL != "" {
		params["ClientBackURL"] = order.ClientBackURL
	}
	if order.OrderResultURL != "" {
		params["OrderResultURL"] = order.OrderResultURL
	}

	// ATM 與超商付款需要回傳取號資訊
	switch order.PaymentMethod {
	case "atm", "cvs", "barcode":
		params["NeedExtraPaidInfo"] = "Y"
	}

	params[CheckMacValueField] = GenerateCheckMacValue(params, cfg.HashKey, cfg.HashIV)

	actionURL := EndpointAioProduction
	if cfg.TestMode {
		actionURL = EndpointAioTest
	}
	return params, actionURL
}

// CallbackResult 付款回調解析結果
type CallbackResult struct {
	Valid     bool              // 檢查碼是否通過
	Paid      bool              // 付款成功
	Pending   bool              // ATM / 超商取號成功，待繳費
	RtnCode   int
	RtnMsg    string
	Params    map[string]string // 原始回傳參數（僅檢查碼通過時提供）
	ErrReason string
}

// ParsePaymentCallback 驗證並解析綠界付款回調
// 檢查碼不符時整包參數視為不可信，不做任何後續處理
func ParsePaymentCallback(params map[string]string, hashKey, hashIV string, rtnCode int) CallbackResult {
	if !VerifyCheckMacValue(params, hashKey, hashIV) {
		return CallbackResult{Valid: false, ErrReason: "檢查碼驗證失敗"}
	}

	result := CallbackResult{
		Valid:   true,
		RtnCode: rtnCode,
		RtnMsg:  params["RtnMsg"],
		Params:  params,
	}
	switch rtnCode {
	case RtnCodePaid:
		result.Paid = true
	case RtnCodeATMPending, RtnCodeCVSPending:
		result.Pending = true
	default:
		result.ErrReason = params["RtnMsg"]
	}
	return result
}

// CallbackAck 產生回應給綠界的字串，付款通知處理完成須回 "1|OK"
func CallbackAck(ok bool) string {
	if ok {
		return "1|OK"
	}
	return "0|Error"
}

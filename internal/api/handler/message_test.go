package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/pkg/response"
	"github.com/free689594-collab/BurgBug-sub002/internal/testutil"
)

func messageTestRouter(db *gorm.DB) *gin.Engine {
	_, _, _, _, _, messageService := newServices(db)
	h := NewMessageHandler(messageService)

	router := gin.New()
	router.GET("/messages", authed(h.List)...)
	router.GET("/messages/unread-count", authed(h.UnreadCount)...)
	router.PUT("/messages/:id/read", authed(h.MarkRead)...)
	router.POST("/admin/messages", authed(h.Send)...)
	return router
}

func seedMessage(t *testing.T, db *gorm.DB, userID int64, title string) *model.Message {
	t.Helper()
	msg := &model.Message{
		UserID:  userID,
		Type:    model.MessageTypeSystem,
		Title:   title,
		Content: "內容",
	}
	require.NoError(t, db.Create(msg).Error)
	return msg
}

func TestMessageHandler_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	seedMessage(t, db, user.ID, "第一則")
	seedMessage(t, db, user.ID, "第二則")

	router := messageTestRouter(db)

	w := performRequest(router, "GET", "/messages", nil, map[string]string{
		"Authorization": authToken(t, user.ID),
	})

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
}

func TestMessageHandler_UnreadCount_And_MarkRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	user := testutil.TestUser(t, db)
	msg := seedMessage(t, db, user.ID, "未讀")

	router := messageTestRouter(db)
	headers := map[string]string{"Authorization": authToken(t, user.ID)}

	w := performRequest(router, "GET", "/messages/unread-count", nil, headers)
	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), resp.Data.(map[string]interface{})["count"])

	w = performRequest(router, "PUT", "/messages/"+itoa(msg.ID)+"/read", nil, headers)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", "/messages/unread-count", nil, headers)
	resp = parseResponse(t, w)
	assert.Equal(t, float64(0), resp.Data.(map[string]interface{})["count"])
}

func TestMessageHandler_MarkRead_NotOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	owner := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db, testutil.WithAccount("not_recipient"))
	msg := seedMessage(t, db, owner.ID, "別人的訊息")

	router := messageTestRouter(db)

	// 非收件人一律回找不到，不洩漏訊息存在
	w := performRequest(router, "PUT", "/messages/"+itoa(msg.ID)+"/read", nil, map[string]string{
		"Authorization": authToken(t, other.ID),
	})

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

func TestMessageHandler_Send(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	member := testutil.TestUser(t, db, testutil.WithAccount("recipient"))

	router := messageTestRouter(db)

	w := performRequest(router, "POST", "/admin/messages", dto.SendMessageRequest{
		UserID:  member.ID,
		Title:   "公告",
		Content: "系統維護通知",
	}, map[string]string{"Authorization": authToken(t, admin.ID)})

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, response.CodeSuccess, resp.Code)

	var msg model.Message
	require.NoError(t, db.Where("user_id = ?", member.ID).First(&msg).Error)
	assert.Equal(t, model.MessageTypeAdmin, msg.Type)
	assert.Equal(t, "公告", msg.Title)
	require.NotNil(t, msg.SenderID)
	assert.Equal(t, admin.ID, *msg.SenderID)
}

func TestMessageHandler_Send_UnknownRecipient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	admin := testutil.TestUser(t, db, testutil.WithRole("admin"))
	router := messageTestRouter(db)

	w := performRequest(router, "POST", "/admin/messages", dto.SendMessageRequest{
		UserID:  99999,
		Title:   "公告",
		Content: "內容",
	}, map[string]string{"Authorization": authToken(t, admin.ID)})

	resp := parseResponse(t, w)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.CodeResourceNotFound, resp.Code)
}

package apiserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"places-go/internal/config"
	"places-go/internal/middleware"
	"places-go/internal/models"
	"places-go/internal/services"
	"places-go/internal/session"
	"places-go/internal/storage"
)

// testServer 装配一个带真实服务与内存后端的路由器。
type testServer struct {
	db      *gorm.DB
	router  *mux.Router
	session session.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.AutoMigrateTables(db))

	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })
	sessionStore := session.NewRedisStore(redisClient, 30*time.Minute)

	userRepo := storage.NewGormUserRepository(db)
	friendReqRepo := storage.NewGormFriendRequestRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)
	groupRepo := storage.NewGormGroupRepository(db)
	messageRepo := storage.NewGormMessageRepository(db)
	notificationRepo := storage.NewGormNotificationRepository(db)
	categoryRepo := storage.NewGormCategoryRepository(db)
	placeRepo := storage.NewGormPlaceRepository(db)

	friendHandler := NewFriendHandler(services.NewFriendService(db, userRepo, friendReqRepo, friendshipRepo))
	groupHandler := NewGroupHandler(services.NewGroupService(db, groupRepo, userRepo), nil,
		config.StorageConfig{MaxFileSizeMB: 10})
	messageHandler := NewMessageHandler(services.NewMessageService(messageRepo, groupRepo))
	notificationHandler := NewNotificationHandler(
		services.NewNotificationService(db, notificationRepo, userRepo, categoryRepo, placeRepo))

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/request/{senderId:[0-9]+}", friendHandler.SendFriendRequest).Methods(http.MethodPost)
	api.HandleFunc("/accept/{requestId:[0-9]+}", friendHandler.AcceptFriendRequest).Methods(http.MethodPut)
	api.HandleFunc("/friends/{userId:[0-9]+}", friendHandler.GetFriendsList).Methods(http.MethodGet)
	api.HandleFunc("/groups/{groupId:[0-9]+}/messages", messageHandler.SendGroupMessage).Methods(http.MethodPost)
	api.HandleFunc("/groups/{groupId:[0-9]+}/add-member/{userId:[0-9]+}", groupHandler.AddMember).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(middleware.CheckSession(sessionStore))
	protected.HandleFunc("/notifications", notificationHandler.GetNotifications).Methods(http.MethodGet)

	return &testServer{db: db, router: r, session: sessionStore}
}

func (ts *testServer) createUser(t *testing.T, email, firstName, lastName string) uint {
	t.Helper()
	user := &models.User{Email: email, PasswordHash: "x", FirstName: firstName, LastName: lastName}
	require.NoError(t, ts.db.Create(user).Error)
	return user.ID
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	ts.router.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestFriendRequestFlow(t *testing.T) {
	ts := newTestServer(t)

	alice := ts.createUser(t, "alice@example.com", "Alice", "Ahmed")
	bob := ts.createUser(t, "bob@example.com", "Bob", "Brik")

	// alice → bob 发送请求
	rr := ts.do(t, http.MethodPost, fmt.Sprintf("/api/request/%d", alice),
		map[string]uint{"receiverId": bob}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decodeEnvelope(t, rr)
	require.True(t, resp.Success)
	requestID := uint(resp.Data.(map[string]interface{})["id"].(float64))

	// 重复发送冲突
	rr = ts.do(t, http.MethodPost, fmt.Sprintf("/api/request/%d", alice),
		map[string]uint{"receiverId": bob}, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	// bob 接受
	rr = ts.do(t, http.MethodPut, fmt.Sprintf("/api/accept/%d", requestID),
		map[string]uint{"userId": bob}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	// 双方好友列表互相出现
	rr = ts.do(t, http.MethodGet, fmt.Sprintf("/api/friends/%d", alice), nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp = decodeEnvelope(t, rr)
	friends := resp.Data.([]interface{})
	require.Len(t, friends, 1)
	assert.Equal(t, "Bob", friends[0].(map[string]interface{})["first_name"])
}

func TestSendMessageRequiresMembership(t *testing.T) {
	ts := newTestServer(t)

	creator := ts.createUser(t, "owner@example.com", "Omar", "Ouali")
	outsider := ts.createUser(t, "eve@example.com", "Eve", "Essaid")

	group := &models.Group{Name: "Hikers", CreatorID: creator}
	require.NoError(t, ts.db.Create(group).Error)
	require.NoError(t, ts.db.Create(&models.GroupMember{
		GroupID: group.ID, UserID: creator, Role: models.AdminRole,
	}).Error)

	rr := ts.do(t, http.MethodPost, fmt.Sprintf("/api/groups/%d/messages", group.ID),
		map[string]interface{}{"userId": outsider, "content": "hi"}, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.do(t, http.MethodPost, fmt.Sprintf("/api/groups/%d/messages", group.ID),
		map[string]interface{}{"userId": creator, "content": "hi"}, nil)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestAddMemberUnknownGroup(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice@example.com", "Alice", "Ahmed")

	rr := ts.do(t, http.MethodPost, fmt.Sprintf("/api/groups/9999/add-member/%d", user), nil, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSessionMiddleware(t *testing.T) {
	ts := newTestServer(t)
	user := ts.createUser(t, "alice@example.com", "Alice", "Ahmed")

	// 无会话头被拒
	rr := ts.do(t, http.MethodGet, "/api/notifications", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// 伪造的会话 ID 也被拒
	rr = ts.do(t, http.MethodGet, "/api/notifications", nil,
		map[string]string{middleware.SessionHeader: "deadbeef"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// 有效会话放行
	token, err := ts.session.Create(context.Background(), user, "", "")
	require.NoError(t, err)
	rr = ts.do(t, http.MethodGet, "/api/notifications", nil,
		map[string]string{middleware.SessionHeader: token})
	assert.Equal(t, http.StatusOK, rr.Code)
	resp := decodeEnvelope(t, rr)
	assert.True(t, resp.Success)
}

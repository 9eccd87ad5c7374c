package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"tutormatch_backend/internal/algorithms"
	"tutormatch_backend/internal/auth"
	"tutormatch_backend/internal/models"
	"tutormatch_backend/internal/services"
	"tutormatch_backend/internal/services/dto"
	"tutormatch_backend/internal/validator"
	"tutormatch_backend/pkg/apperrors"
	"tutormatch_backend/pkg/contextkeys"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type registrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

var testTokens = auth.NewTokenManager("handler-secret", time.Hour)

func newBase() *BaseHandler {
	return NewBaseHandler(validator.New(), testTokens)
}

// newTestRouter mounts h under /api/v1 with a nil *gorm.DB in the context;
// the fake services never touch it.
func newTestRouter(h registrar) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		var db *gorm.DB
		c.Set(string(contextkeys.DBContextKey), db)
		c.Next()
	})
	h.RegisterRoutes(r.Group("/api/v1"))
	return r
}

func tokenFor(t *testing.T, userID string, role models.UserRole) string {
	t.Helper()
	token, _, err := testTokens.GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func perform(r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

// --- fakes ---

type stubMatching struct {
	services.MatchingService
	gotUser string
	gotReq  *dto.MatchRequest
	detail  map[string]*dto.MatchHistoryDetail
}

func (s *stubMatching) Submit(_ context.Context, _ *gorm.DB, userID string, req *dto.MatchRequest) (*dto.MatchResponse, error) {
	s.gotUser, s.gotReq = userID, req
	return &dto.MatchResponse{
		MatchID: "m1",
		Results: []algorithms.MatchResult{{TutorID: "t1", MatchScore: 70}},
	}, nil
}

func (s *stubMatching) History(_ context.Context, _ *gorm.DB, _ string, page dto.Pagination) (*dto.MatchHistoryList, error) {
	return &dto.MatchHistoryList{List: []dto.MatchHistoryItem{}, Page: page.Page, PageSize: page.PageSize}, nil
}

func (s *stubMatching) HistoryDetail(_ context.Context, _ *gorm.DB, userID, matchID string) (*dto.MatchHistoryDetail, error) {
	if d, ok := s.detail[userID+"/"+matchID]; ok {
		return d, nil
	}
	return nil, apperrors.ErrHistoryNotFound
}

type stubFavorites struct {
	services.FavoriteService
	collected map[string]bool
}

func (s *stubFavorites) Toggle(_ context.Context, _ *gorm.DB, _ string, tutorID string) (*dto.ToggleFavoriteResponse, error) {
	if s.collected[tutorID] {
		delete(s.collected, tutorID)
		return &dto.ToggleFavoriteResponse{Action: services.ActionUncollected, TutorID: tutorID}, nil
	}
	s.collected[tutorID] = true
	return &dto.ToggleFavoriteResponse{Action: services.ActionCollected, TutorID: tutorID}, nil
}

func (s *stubFavorites) BatchStatus(_ context.Context, _ *gorm.DB, _ string, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = s.collected[id]
	}
	return out, nil
}

func (s *stubFavorites) Remove(_ context.Context, _ *gorm.DB, _ string, tutorID string) error {
	if !s.collected[tutorID] {
		return apperrors.ErrNotCollected
	}
	delete(s.collected, tutorID)
	return nil
}

type stubExport struct {
	services.ExportService
	err error
}

func (s *stubExport) Export(_ context.Context, _ *gorm.DB, q *dto.ExportQuery) (*dto.ExportFile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ExportFile{
		Filename:    "导师信息_20240101_120000.csv",
		ContentType: "text/csv; charset=utf-8",
		Data:        []byte("a,b\n"),
		Rows:        1,
	}, nil
}

type stubBooking struct {
	services.BookingService
}

func (s *stubBooking) Book(_ context.Context, _ *gorm.DB, userID string, req *dto.CreateBookingRequest) (*dto.CreateBookingResponse, error) {
	if userID == "plain" {
		return nil, apperrors.ErrVIPRequired
	}
	return &dto.CreateBookingResponse{BookingID: "b1", Status: models.BookingPending}, nil
}

// --- tests ---

func TestMatchingHandler_Submit(t *testing.T) {
	svc := &stubMatching{}
	r := newTestRouter(NewMatchingHandler(newBase(), svc))
	token := tokenFor(t, "u1", models.RoleUser)

	w := perform(r, http.MethodPost, "/api/v1/match/submit", "", map[string]string{"discipline": "计算机"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = perform(r, http.MethodPost, "/api/v1/match/submit", token, map[string]string{"keywords": "AI"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.CodeValidationFailed), errorCode(t, w))

	w = perform(r, http.MethodPost, "/api/v1/match/submit", token, map[string]string{"discipline": "计算机", "keywords": "AI, 机器学习"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", svc.gotUser)
	assert.Equal(t, "AI, 机器学习", svc.gotReq.Keywords)

	var resp dto.MatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "m1", resp.MatchID)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "t1", resp.Results[0].TutorID)
}

func TestMatchingHandler_History(t *testing.T) {
	svc := &stubMatching{detail: map[string]*dto.MatchHistoryDetail{
		"u1/m1": {MatchID: "m1", Discipline: "化学"},
	}}
	r := newTestRouter(NewMatchingHandler(newBase(), svc))

	w := perform(r, http.MethodGet, "/api/v1/match/history?page=2&page_size=500", tokenFor(t, "u1", models.RoleUser), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.MatchHistoryList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Page)
	assert.Equal(t, 100, list.PageSize)

	w = perform(r, http.MethodGet, "/api/v1/match/history", tokenFor(t, "u1", models.RoleUser), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, services.HistoryPageSize, list.PageSize)

	w = perform(r, http.MethodGet, "/api/v1/match/history/m1", tokenFor(t, "u1", models.RoleUser), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodGet, "/api/v1/match/history/m1", tokenFor(t, "u2", models.RoleUser), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.CodeHistoryNotFound), errorCode(t, w))
}

func TestFavoriteHandler(t *testing.T) {
	svc := &stubFavorites{collected: map[string]bool{}}
	r := newTestRouter(NewFavoriteHandler(newBase(), svc))
	token := tokenFor(t, "u1", models.RoleUser)

	w := perform(r, http.MethodPost, "/api/v1/user/favorite/toggle", token, map[string]string{"tutor_id": "t1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), services.ActionCollected)

	w = perform(r, http.MethodPost, "/api/v1/user/favorite/batch-status", token, map[string][]string{"tutor_ids": {"t1", "t2"}})
	require.Equal(t, http.StatusOK, w.Code)
	var status struct {
		Status map[string]bool `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, map[string]bool{"t1": true, "t2": false}, status.Status)

	w = perform(r, http.MethodDelete, "/api/v1/user/favorite/t1", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = perform(r, http.MethodDelete, "/api/v1/user/favorite/t1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.CodeNotCollected), errorCode(t, w))

	w = perform(r, http.MethodPost, "/api/v1/user/favorite/toggle", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_Book(t *testing.T) {
	r := newTestRouter(NewBookingHandler(newBase(), &stubBooking{}))
	body := map[string]interface{}{
		"tutor_id": "t1",
		"date":     time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	}

	w := perform(r, http.MethodPost, "/api/v1/service/book", tokenFor(t, "vip", models.RoleUser), body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = perform(r, http.MethodPost, "/api/v1/service/book", tokenFor(t, "plain", models.RoleUser), body)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, string(apperrors.CodeVIPRequired), errorCode(t, w))
}

func TestTutorHandler_ExportRequiresAdmin(t *testing.T) {
	r := newTestRouter(NewTutorHandler(newBase(), nil, &stubExport{}))

	w := perform(r, http.MethodGet, "/api/v1/tutor/export?format=csv", tokenFor(t, "u1", models.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = perform(r, http.MethodGet, "/api/v1/tutor/export?format=pdf", tokenFor(t, "a1", models.RoleAdmin), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/api/v1/tutor/export?format=csv", tokenFor(t, "a1", models.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-Export-Rows"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "filename*=UTF-8''")
	assert.Equal(t, "a,b\n", w.Body.String())
}

func TestTutorHandler_ExportNoData(t *testing.T) {
	r := newTestRouter(NewTutorHandler(newBase(), nil, &stubExport{err: apperrors.ErrNoExportData}))

	w := perform(r, http.MethodGet, "/api/v1/tutor/export", tokenFor(t, "a1", models.RoleAdmin), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

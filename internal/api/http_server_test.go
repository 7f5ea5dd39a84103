package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/models"
	"shareit/internal/repository"
	"shareit/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type apiHarness struct {
	db     *database.DB
	clock  *testClock
	server *HTTPServer
}

func testConfig() *config.Config {
	return &config.Config{
		HTTP:      config.HTTPConfig{Port: 8080, ReadHeaderTimeoutMs: 1000, WriteTimeoutMs: 1000},
		RateLimit: config.RateLimitConfig{Enabled: false, Requests: 100, Window: 60},
	}
}

func newHarness(t *testing.T, cfg *config.Config, limiter domain.RateLimiter) *apiHarness {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(context.Background(), ":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	clock := &testClock{now: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
	bus := events.NewEventBus(&logger)

	svc := Services{
		Bookings: service.NewBookingService(db, bus, clock.Now, &logger),
		Items:    service.NewItemService(db, bus, clock.Now, &logger),
		Requests: service.NewRequestService(db, bus, clock.Now, &logger),
		Users:    service.NewUserService(db, &logger),
	}

	return &apiHarness{db: db, clock: clock, server: NewHTTPServer(cfg, svc, limiter, db, &logger)}
}

func (h *apiHarness) do(t *testing.T, method, path string, userID int64, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}

	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		req.Header.Set(userIDHeader, fmt.Sprint(userID))
	}

	rec := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}

func (h *apiHarness) createUser(t *testing.T, name string) models.User {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/users", 0, map[string]string{"name": name, "email": name + "@example.com"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.User](t, rec)
}

func (h *apiHarness) createItem(t *testing.T, ownerID int64, name string) models.ItemResponse {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/items", ownerID, map[string]any{
		"name":        name,
		"description": name + " for rent",
		"available":   true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.ItemResponse](t, rec)
}

func (h *apiHarness) createBooking(t *testing.T, bookerID, itemID int64, start, end time.Time) models.BookingResponse {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/bookings", bookerID, map[string]any{
		"itemId": itemID,
		"start":  start.Format(localTimestampLayout),
		"end":    end.Format(localTimestampLayout),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.BookingResponse](t, rec)
}

func TestBookingLifecycle(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	owner := h.createUser(t, "owner")
	booker := h.createUser(t, "booker")
	drill := h.createItem(t, owner.ID, "Drill")

	now := h.clock.Now()
	booking := h.createBooking(t, booker.ID, drill.ID, now.Add(time.Hour), now.Add(2*time.Hour))
	assert.Equal(t, models.StatusWaiting, booking.Status)
	assert.Equal(t, drill.ID, booking.Item.ID)
	assert.Equal(t, "Drill", booking.Item.Name)
	assert.Equal(t, booker.ID, booking.Booker.ID)
	assert.True(t, booking.Start.Equal(now.Add(time.Hour)))

	path := fmt.Sprintf("/bookings/%d?approved=true", booking.ID)
	rec := h.do(t, http.MethodPatch, path, owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, models.StatusApproved, decode[models.BookingResponse](t, rec).Status)

	// повторное решение
	rec = h.do(t, http.MethodPatch, path, owner.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, "/bookings?state=FUTURE", booker.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	future := decode[[]models.BookingResponse](t, rec)
	require.Len(t, future, 1)
	assert.Equal(t, booking.ID, future[0].ID)

	rec = h.do(t, http.MethodGet, "/bookings/owner", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.BookingResponse](t, rec), 1)

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/items/%d", drill.ID), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode[models.ItemResponse](t, rec)
	assert.Nil(t, item.LastBooking)
	require.NotNil(t, item.NextBooking)
	assert.Equal(t, booking.ID, item.NextBooking.ID)
	assert.Equal(t, booker.ID, item.NextBooking.BookerID)
}

func TestCommentRequiresFinishedBooking(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	owner := h.createUser(t, "owner")
	booker := h.createUser(t, "Alice")
	drill := h.createItem(t, owner.ID, "Drill")

	now := h.clock.Now()
	booking := h.createBooking(t, booker.ID, drill.ID, now.Add(time.Hour), now.Add(2*time.Hour))
	rec := h.do(t, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=true", booking.ID), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	commentPath := fmt.Sprintf("/items/%d/comment", drill.ID)
	rec = h.do(t, http.MethodPost, commentPath, booker.ID, map[string]string{"text": "Great drill"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h.clock.Advance(3 * time.Hour)

	rec = h.do(t, http.MethodPost, commentPath, booker.ID, map[string]string{"text": "Great drill"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	comment := decode[models.CommentResponse](t, rec)
	assert.Equal(t, "Great drill", comment.Text)
	assert.Equal(t, "Alice", comment.AuthorName)

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/items/%d", drill.ID), booker.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	item := decode[models.ItemResponse](t, rec)
	require.Len(t, item.Comments, 1)
	assert.Equal(t, "Alice", item.Comments[0].AuthorName)
	// чужой вещи бронирования не показываются
	assert.Nil(t, item.LastBooking)
	assert.Nil(t, item.NextBooking)
}

func TestBookingAccessAndStates(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	owner := h.createUser(t, "owner")
	booker := h.createUser(t, "booker")
	stranger := h.createUser(t, "stranger")
	drill := h.createItem(t, owner.ID, "Drill")

	now := h.clock.Now()
	booking := h.createBooking(t, booker.ID, drill.ID, now.Add(time.Hour), now.Add(2*time.Hour))

	rec := h.do(t, http.MethodGet, fmt.Sprintf("/bookings/%d", booking.ID), stranger.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/bookings/%d", booking.ID), owner.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPatch, fmt.Sprintf("/bookings/%d?approved=false", booking.ID), booker.ID, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, "/bookings/owner?state=BOGUS", owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "UNSUPPORTED_STATUS")

	// собственную вещь бронировать нельзя
	rec = h.do(t, http.MethodPost, "/bookings", owner.ID, map[string]any{
		"itemId": drill.ID,
		"start":  now.Add(time.Hour).Format(time.RFC3339),
		"end":    now.Add(2 * time.Hour).Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookingValidation(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	owner := h.createUser(t, "owner")
	booker := h.createUser(t, "booker")
	drill := h.createItem(t, owner.ID, "Drill")
	now := h.clock.Now()

	tests := []struct {
		name string
		body map[string]any
	}{
		{"end before start", map[string]any{
			"itemId": drill.ID,
			"start":  now.Add(2 * time.Hour).Format(localTimestampLayout),
			"end":    now.Add(time.Hour).Format(localTimestampLayout),
		}},
		{"start in the past", map[string]any{
			"itemId": drill.ID,
			"start":  now.Add(-time.Hour).Format(localTimestampLayout),
			"end":    now.Add(time.Hour).Format(localTimestampLayout),
		}},
		{"missing end", map[string]any{
			"itemId": drill.ID,
			"start":  now.Add(time.Hour).Format(localTimestampLayout),
		}},
		{"malformed timestamp", map[string]any{
			"itemId": drill.ID,
			"start":  "tomorrow",
			"end":    now.Add(time.Hour).Format(localTimestampLayout),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/bookings", booker.ID, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestMissingUserHeader(t *testing.T) {
	h := newHarness(t, testConfig(), nil)

	rec := h.do(t, http.MethodGet, "/items", 0, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), userIDHeader)

	req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
	req.Header.Set(userIDHeader, "abc")
	rr := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	// поиск доступен без заголовка
	rec = h.do(t, http.MethodGet, "/items/search?text=drill", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.ItemResponse](t, rec))
}

func TestItemEndpoints(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	owner := h.createUser(t, "owner")
	other := h.createUser(t, "other")
	drill := h.createItem(t, owner.ID, "Drill")

	rec := h.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", drill.ID), owner.ID, map[string]any{"available": false})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.ItemResponse](t, rec)
	assert.False(t, updated.Available)
	assert.Equal(t, "Drill", updated.Name)

	rec = h.do(t, http.MethodPatch, fmt.Sprintf("/items/%d", drill.ID), other.ID, map[string]any{"name": "Mine"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// недоступные вещи тоже находятся
	rec = h.do(t, http.MethodGet, "/items/search?text=DRI", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]models.ItemResponse](t, rec)
	require.Len(t, found, 1)
	assert.Equal(t, drill.ID, found[0].ID)

	rec = h.do(t, http.MethodGet, "/items", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ItemResponse](t, rec), 1)

	rec = h.do(t, http.MethodGet, "/items/999", owner.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodPost, "/items", owner.ID, map[string]any{"name": "", "description": "x", "available": true})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestEndpoints(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	requestor := h.createUser(t, "requestor")
	owner := h.createUser(t, "owner")

	rec := h.do(t, http.MethodPost, "/requests", requestor.ID, map[string]string{"description": "Need a ladder"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	request := decode[models.ItemRequestResponse](t, rec)
	assert.Equal(t, "Need a ladder", request.Description)
	assert.Empty(t, request.Items)

	rec = h.do(t, http.MethodPost, "/items", owner.ID, map[string]any{
		"name":        "Ladder",
		"description": "Three metres",
		"available":   true,
		"requestId":   request.ID,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodGet, "/requests", requestor.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	own := decode[[]models.ItemRequestResponse](t, rec)
	require.Len(t, own, 1)
	require.Len(t, own[0].Items, 1)
	assert.Equal(t, "Ladder", own[0].Items[0].Name)

	rec = h.do(t, http.MethodGet, "/requests/all", requestor.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.ItemRequestResponse](t, rec))

	rec = h.do(t, http.MethodGet, "/requests/all?from=0&size=5", owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.ItemRequestResponse](t, rec), 1)

	rec = h.do(t, http.MethodGet, "/requests/all?from=0&size=0", owner.ID, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/requests/%d", request.ID), owner.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, request.ID, decode[models.ItemRequestResponse](t, rec).ID)

	rec = h.do(t, http.MethodPost, "/requests", requestor.ID, map[string]string{"description": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserEndpoints(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	alice := h.createUser(t, "alice")

	rec := h.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "dup", "email": "alice@example.com"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(t, http.MethodPost, "/users", 0, map[string]string{"name": "bad", "email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPatch, fmt.Sprintf("/users/%d", alice.ID), 0, map[string]string{"name": "Alice"})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.User](t, rec)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)

	rec = h.do(t, http.MethodGet, "/users", 0, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.User](t, rec), 1)

	rec = h.do(t, http.MethodDelete, fmt.Sprintf("/users/%d", alice.ID), 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, fmt.Sprintf("/users/%d", alice.ID), 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndReadiness(t *testing.T) {
	h := newHarness(t, testConfig(), nil)

	rec := h.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, h.db.Close())
	rec = h.do(t, http.MethodGet, "/readyz", 0, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "store unavailable", errorMessage(t, rec))
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t, testConfig(), nil)

	rec := h.do(t, http.MethodGet, "/nowhere", 0, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorMessage(t, rec))
}

func TestRequestIDHeader(t *testing.T) {
	h := newHarness(t, testConfig(), nil)

	rec := h.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "fixed-id")
	rr := httptest.NewRecorder()
	h.server.Handler().ServeHTTP(rr, req)
	assert.Equal(t, "fixed-id", rr.Header().Get(requestIDHeader))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 2, Window: 60}
	h := newHarness(t, cfg, repository.NewMemoryRateLimiter())
	user := h.createUser(t, "user")

	for i := 0; i < 2; i++ {
		rec := h.do(t, http.MethodGet, "/items", user.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := h.do(t, http.MethodGet, "/items", user.ID, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "rate limit exceeded", errorMessage(t, rec))

	// у другого пользователя своё окно
	other := h.createUser(t, "other")
	rec = h.do(t, http.MethodGet, "/items", other.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// health вне лимита
	rec = h.do(t, http.MethodGet, "/healthz", user.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

type failingLimiter struct{}

func (failingLimiter) CheckRateLimit(context.Context, int64, int, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}

func TestRateLimiterFailureLetsRequestsThrough(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, Requests: 1, Window: 60}
	h := newHarness(t, cfg, nil)
	h.server.limiter = failingLimiter{}
	user := h.createUser(t, "user")

	for i := 0; i < 3; i++ {
		rec := h.do(t, http.MethodGet, "/items", user.ID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

type brokenUsers struct {
	domain.UserService
}

func (brokenUsers) GetAllUsers(context.Context) ([]*models.User, error) {
	return nil, errors.New("disk on fire")
}

func TestInternalErrorsAreHidden(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	h.server.svc.Users = brokenUsers{}

	rec := h.do(t, http.MethodGet, "/users", 0, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, internalErrorMessage, errorMessage(t, rec))
	assert.NotContains(t, rec.Body.String(), "disk on fire")
}

type panickingUsers struct {
	domain.UserService
}

func (panickingUsers) GetAllUsers(context.Context) ([]*models.User, error) {
	panic("nil map write")
}

func TestPanicAnswersWithJSONError(t *testing.T) {
	h := newHarness(t, testConfig(), nil)
	h.server.svc.Users = panickingUsers{}

	rec := h.do(t, http.MethodGet, "/users", 0, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, internalErrorMessage, errorMessage(t, rec))

	// сервер продолжает обслуживать запросы
	rec = h.do(t, http.MethodGet, "/healthz", 0, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseTimestamp(t *testing.T) {
	got, err := parseTimestamp("start", "2026-06-01T12:30:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC), got)

	got, err = parseTimestamp("start", "2026-06-01T12:30:00+03:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC)))

	got, err = parseTimestamp("start", "")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = parseTimestamp("end", "01/06/2026")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end")
}

package ginserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentops/internal/app/commands"
	"rentops/internal/app/dto"
	availabilityapp "rentops/internal/app/handlers/availability"
	bookingapp "rentops/internal/app/handlers/booking"
	"rentops/internal/app/middleware"
	"rentops/internal/app/queries"
	"rentops/internal/app/sideeffects"
	domainproperty "rentops/internal/domain/property"
	"rentops/internal/infra/config"
	"rentops/internal/infra/obs"
	"rentops/internal/infra/security"
	"rentops/internal/infra/storage/memory"
)

const (
	adminToken   = "root-token"
	managerToken = "mgr-token"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger := obs.Discard()
	tokens, err := security.ParseTokens(adminToken + ":ana:admin," + managerToken + ":bo:manager:villa-2")
	require.NoError(t, err)
	auth := security.RoleAuthorizer{}
	ledger := memory.NewLedger()
	bookings := memory.NewBookingRepository()

	lc := &bookingapp.Lifecycle{
		Bookings:   bookings,
		Properties: memory.NewPropertyDirectory(domainproperty.Property{ID: "villa-1", Currency: "EUR", Active: true}),
		Auth:       auth,
		Effects: &sideeffects.Dispatcher{
			Ledger: []sideeffects.Handler{sideeffects.LedgerHandler{Ledger: ledger}},
			Logger: logger,
		},
		Logger: logger,
		Clock:  func() time.Time { return time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC) },
	}
	svc := &availabilityapp.Service{Ledger: ledger, Bookings: bookings, Auth: auth, Logger: logger}

	cmdBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	bookingapp.Register(cmdBus, queryBus, lc)
	availabilityapp.Register(cmdBus, queryBus, svc)

	validator := middleware.NewStructValidator()
	authCmd, authQuery := middleware.Authorization(auth)
	cmds := middleware.ChainCommands(cmdBus,
		middleware.Logging(logger),
		authCmd,
		middleware.Validation(validator),
		middleware.Idempotency(memory.NewIdempotencyStore(), nil),
	)
	qs := middleware.ChainQueries(queryBus, authQuery, middleware.QueryValidation(validator))

	return NewRouter(config.Config{Env: "test"}, obs.Middleware{Logger: logger}, obs.HealthHandlers{}, Handlers{
		Booking:        BookingHandler{Commands: cmds, Queries: qs, Logger: logger},
		Availability:   AvailabilityHandler{Commands: cmds, Queries: qs, Logger: logger},
		AuthMiddleware: AuthMiddleware{Tokens: tokens, Logger: logger}.Handle,
	})
}

func do(t *testing.T, r http.Handler, method, path, token string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBody(in, out string) map[string]any {
	return map[string]any{
		"property_id":  "villa-1",
		"guest":        map[string]any{"name": "Ana Silva", "email": "ana@example.com"},
		"check_in":     in,
		"check_out":    out,
		"guests":       2,
		"nightly_rate": 12000,
	}
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestBookingRoutes_Lifecycle(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, http.MethodPost, "/api/v1/bookings", adminToken, createBody("2025-06-01", "2025-06-05"), "Idempotency-Key", "req-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[dto.Booking](t, w)
	assert.Equal(t, "confirmed", created.Status)
	assert.Equal(t, 4, created.Nights)

	w = do(t, r, http.MethodPost, "/api/v1/bookings", adminToken, createBody("2025-06-01", "2025-06-05"), "Idempotency-Key", "req-1")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, created.ID, decode[dto.Booking](t, w).ID, "retried request replays the first result")

	w = do(t, r, http.MethodPost, "/api/v1/bookings", adminToken, createBody("2025-06-04", "2025-06-08"))
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decode[map[string]any](t, w)
	assert.Equal(t, created.ID, conflict["conflict"].(map[string]any)["booking_id"])

	w = do(t, r, http.MethodGet, "/api/v1/properties/villa-1/calendar?from=2025-06-01&to=2025-06-06", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cal := decode[dto.Calendar](t, w)
	require.Len(t, cal.Days, 5)
	assert.True(t, cal.Days[3].Blocked)
	assert.False(t, cal.Days[4].Blocked)

	w = do(t, r, http.MethodPost, "/api/v1/bookings/"+created.ID+"/cancel", adminToken, map[string]any{"reason": "guest request"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelled", decode[dto.Booking](t, w).Status)

	w = do(t, r, http.MethodPost, "/api/v1/bookings/"+created.ID+"/cancel", adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/bookings?property_id=villa-1", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[dto.BookingCollection](t, w).Items, 1)
}

func TestBookingRoutes_HoldActions(t *testing.T) {
	r := newTestRouter(t)
	body := createBody("2025-06-01", "2025-06-05")
	body["status"] = "on-hold"
	w := do(t, r, http.MethodPost, "/api/v1/bookings", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	hold := decode[dto.Booking](t, w)

	w = do(t, r, http.MethodPost, "/api/v1/bookings/"+hold.ID+"/extend-hold", adminToken, map[string]any{"hours": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/bookings/"+hold.ID+"/extend-hold", adminToken, map[string]any{"hours": 6})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, hold.HoldUntil.Add(6*time.Hour), *decode[dto.Booking](t, w).HoldUntil)

	w = do(t, r, http.MethodPost, "/api/v1/bookings/"+hold.ID+"/convert-hold", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "confirmed", decode[dto.Booking](t, w).Status)

	w = do(t, r, http.MethodPost, "/api/v1/bookings/bulk/cancel", adminToken, map[string]any{"booking_ids": []string{hold.ID, "missing"}})
	require.Equal(t, http.StatusOK, w.Code)
	res := decode[dto.BulkResult](t, w)
	assert.Equal(t, 0, res.SuccessCount)
	assert.Equal(t, 2, res.FailCount)
}

func TestBookingRoutes_ErrorStatuses(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/api/v1/bookings", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/api/v1/bookings", "forged", nil).Code)
	assert.Equal(t, http.StatusForbidden, do(t, r, http.MethodPost, "/api/v1/bookings", managerToken, createBody("2025-06-01", "2025-06-05")).Code)
	assert.Equal(t, http.StatusNotFound, do(t, r, http.MethodGet, "/api/v1/bookings/nope", adminToken, nil).Code)

	bad := createBody("2025-06-01", "2025-06-05")
	bad["check_in"] = "June 1st"
	w := do(t, r, http.MethodPost, "/api/v1/bookings", adminToken, bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "check_in")

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/livez", "", nil).Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
	assert.Equal(t, http.StatusNotImplemented, statusFor(commands.ErrHandlerNotFound))
}

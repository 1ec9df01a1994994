package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/vtu_api/internal/cache"
	"github.com/GTDGit/vtu_api/internal/catalog"
	"github.com/GTDGit/vtu_api/internal/config"
	"github.com/GTDGit/vtu_api/internal/engine"
	"github.com/GTDGit/vtu_api/internal/service"
	"github.com/GTDGit/vtu_api/internal/sse"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, err := catalog.Default()
	require.NoError(t, err)
	store := catalog.NewStaticStore(c)
	eng := engine.New(store, engine.DefaultRules(config.LimitsConfig{
		AirtimeMin: 50, AirtimeMax: 50000, WalletMin: 100, WalletMax: 1000000,
	}))
	hub := sse.NewHub()
	sessions := cache.NewMemorySessionStore(time.Hour, time.Minute)
	orderSvc := service.NewOrderService(eng, store, sessions, service.NewSimulatedSubmitter(0), nil, sse.NewHubNotifier(hub), time.Second)
	fundingSvc := service.NewFundingService(store, config.DepositConfig{AccountNumber: "1023456789", AccountName: "TEST LTD"})

	catalogH := NewCatalogHandler(store)
	orderH := NewOrderHandler(orderSvc)
	sessionH := NewSessionHandler(orderSvc, hub)

	r := gin.New()
	v1 := r.Group("/v1")
	v1.GET("/health", NewHealthHandler(store, hub, nil).GetHealth)
	v1.GET("/catalog/durations", catalogH.GetDurations)
	v1.GET("/catalog/banks", catalogH.GetBanks)
	v1.GET("/catalog/:service", catalogH.GetService)
	v1.GET("/catalog/:service/:provider/:category/plans", catalogH.GetPlans)
	v1.POST("/orders/validate", orderH.Validate)
	v1.POST("/orders/quote", orderH.Quote)
	v1.GET("/orders", orderH.History)
	v1.POST("/sessions", sessionH.Create)
	v1.GET("/sessions/:id", sessionH.Get)
	v1.PATCH("/sessions/:id", sessionH.Update)
	v1.POST("/sessions/:id/submit", sessionH.Submit)
	v1.GET("/sessions/:id/orders", sessionH.Orders)
	v1.GET("/funding/instructions", NewFundingHandler(fundingSvc).GetInstructions)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestCatalogRoutes(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/v1/catalog/airtime", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"key":"mtn"`)
	assert.NotContains(t, string(env.Data), `"plans"`)

	w, env = do(t, r, http.MethodGet, "/v1/catalog/insurance", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_SERVICE", env.Error.Code)

	w, env = do(t, r, http.MethodGet, "/v1/catalog/data/mtn/sme/plans", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var plans struct {
		Plans []struct {
			ID      string `json:"id"`
			Display string `json:"display"`
		} `json:"plans"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &plans))
	require.NotEmpty(t, plans.Plans)
	assert.Equal(t, "mtn-sme-500mb", plans.Plans[0].ID)
	assert.Equal(t, "₦200", plans.Plans[0].Display)

	w, env = do(t, r, http.MethodGet, "/v1/catalog/data/mtn/nope/plans", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_CATEGORY", env.Error.Code)

	w, env = do(t, r, http.MethodGet, "/v1/catalog/durations", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"discountPercent":15`)

	w, env = do(t, r, http.MethodGet, "/v1/catalog/banks", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"code":"058"`)
}

func TestValidateRoute(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/v1/orders/validate", map[string]any{
		"service":     "airtime",
		"provider":    "mtn",
		"category":    "regular",
		"amount":      "1000",
		"phoneNumber": "080123",
		"pin":         "98",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)

	var data struct {
		Valid  bool `json:"valid"`
		Errors map[string]struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.False(t, data.Valid)
	assert.Equal(t, "FORMAT_ERROR", data.Errors["phoneNumber"].Code)
	assert.Equal(t, "FORMAT_ERROR", data.Errors["pin"].Code)
	assert.NotContains(t, w.Body.String(), `"98"`)

	w, _ = do(t, r, http.MethodPost, "/v1/orders/validate", map[string]any{
		"service":     "airtime",
		"provider":    "mtn",
		"category":    "regular",
		"amount":      "1000",
		"phoneNumber": "0801 234 5678",
		"pin":         "1234",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestQuoteRoute(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/v1/orders/quote", map[string]any{
		"service":         "cable",
		"provider":        "dstv",
		"category":        "compact",
		"planId":          "dstv-compact-monthly",
		"months":          6,
		"smartCardNumber": "1234567890",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var q engine.Quotation
	require.NoError(t, json.Unmarshal(env.Data, &q))
	assert.Equal(t, 67500, q.Total)
	require.NotNil(t, q.Discount)
	assert.Equal(t, 7500, *q.Discount)

	w, env = do(t, r, http.MethodPost, "/v1/orders/quote", map[string]any{
		"service":  "airtime",
		"provider": "mtn",
		"category": "regular",
		"amount":   "abc",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Data), `"amount"`)
}

func TestSessionFlow(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodPost, "/v1/sessions", map[string]any{
		"service":     "airtime",
		"provider":    "mtn",
		"category":    "regular",
		"amount":      "1000",
		"phoneNumber": "08012345678",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var sess struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &sess))
	assert.Equal(t, "editing", sess.Status)

	w, env = do(t, r, http.MethodPost, "/v1/sessions/"+sess.ID+"/submit", map[string]any{"pin": "12"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, string(env.Data), `"status":"invalid"`)

	w, env = do(t, r, http.MethodPatch, "/v1/sessions/"+sess.ID, map[string]any{"amount": "2000"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"editing"`)

	w, env = do(t, r, http.MethodPost, "/v1/sessions/"+sess.ID+"/submit", map[string]any{"pin": "1234"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Successfully recharged ₦2,000 to 08012345678", env.Message)
	assert.NotContains(t, w.Body.String(), `"pin"`)

	w, env = do(t, r, http.MethodPost, "/v1/sessions/"+sess.ID+"/submit", map[string]any{"pin": "1234"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SESSION_CLOSED", env.Error.Code)

	w, env = do(t, r, http.MethodGet, "/v1/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"status":"success"`)

	w, env = do(t, r, http.MethodGet, "/v1/sessions/"+sess.ID+"/orders", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"orders":[]}`, string(env.Data), "history disabled without a database")
}

func TestSessionErrors(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/v1/sessions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error.Code)

	w, env = do(t, r, http.MethodPost, "/v1/sessions", map[string]any{"service": "insurance"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "UNKNOWN_SERVICE", env.Error.Code)
}

func TestFundingRoute(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/v1/funding/instructions?method=ussd&bank=gtb&amount=5000", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `*737*50*5000*123456#`)

	w, env = do(t, r, http.MethodGet, "/v1/funding/instructions?method=card", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "UNSUPPORTED_METHOD", env.Error.Code)

	w, _ = do(t, r, http.MethodGet, "/v1/funding/instructions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndHistory(t *testing.T) {
	r := newTestRouter(t)

	w, env := do(t, r, http.MethodGet, "/v1/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"source":"embedded"`)

	w, env = do(t, r, http.MethodGet, "/v1/orders?limit=500", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"orders":[]}`, string(env.Data))
}

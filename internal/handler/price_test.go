package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crypto-price-service/internal/model"
	"crypto-price-service/internal/service"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePriceService struct {
	price          decimal.Decimal
	priceErr       error
	priceCalls     int
	lastPair       string
	observations   []model.PriceObservation
	historicalErr  error
	lastStart      time.Time
	lastEnd        time.Time
	supportedPairs []string
}

func (f *fakePriceService) GetPrice(ctx context.Context, pair string) (decimal.Decimal, error) {
	f.priceCalls++
	f.lastPair = pair
	if f.priceErr != nil {
		return decimal.Zero, f.priceErr
	}
	return f.price, nil
}

func (f *fakePriceService) GetHistoricalPrices(ctx context.Context, pair string, start, end time.Time) ([]model.PriceObservation, error) {
	f.lastPair = pair
	f.lastStart = start
	f.lastEnd = end
	if f.historicalErr != nil {
		return nil, f.historicalErr
	}
	return f.observations, nil
}

func (f *fakePriceService) SupportedPairs() []string {
	return f.supportedPairs
}

func newTestRouter(svc PriceServiceInterface) *mux.Router {
	router := mux.NewRouter()
	NewPriceHandler(svc).SetupRoutes(router)
	return router
}

func decodeError(t *testing.T, body *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(body.Body).Decode(&resp))
	return resp
}

func TestHandlePrice_Success(t *testing.T) {
	svc := &fakePriceService{price: decimal.RequireFromString("2.35")}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/crypto-price/TON_USDT", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "TON_USDT", svc.lastPair)

	var resp model.PriceResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "TON_USDT", resp.Pair)
	assert.True(t, decimal.RequireFromString("2.35").Equal(resp.Price))
	assert.InDelta(t, time.Now().UnixMilli(), resp.Timestamp, float64(5*time.Second/time.Millisecond))
}

func TestHandlePrice_InvalidFormat(t *testing.T) {
	svc := &fakePriceService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/crypto-price/ton-usdt", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, svc.priceCalls, "malformed pairs never reach the service")

	resp := decodeError(t, rec)
	assert.Equal(t, http.StatusBadRequest, resp.Error.Code)
	assert.Equal(t, "Invalid trading pair format", resp.Error.Message)
}

func TestHandlePrice_ServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "unsupported pair",
			err:         &service.Error{Kind: service.KindUnsupportedPair, Pair: "BTC_USD"},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "unsupported trading pair: BTC_USD",
		},
		{
			name:        "rate limited",
			err:         &service.Error{Kind: service.KindRateLimited, Pair: "TON_USDT"},
			wantStatus:  http.StatusTooManyRequests,
			wantMessage: "rate limit exceeded",
		},
		{
			name:        "upstream timeout",
			err:         &service.Error{Kind: service.KindUpstreamTimeout, Pair: "TON_USDT"},
			wantStatus:  http.StatusGatewayTimeout,
			wantMessage: "external API timeout",
		},
		{
			name:        "upstream unavailable",
			err:         &service.Error{Kind: service.KindUpstreamUnavailable, Pair: "TON_USDT"},
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "failed to fetch cryptocurrency price",
		},
		{
			name:        "missing configuration",
			err:         &service.Error{Kind: service.KindMissingConfiguration, Pair: "TON_USDT"},
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "price service is not configured",
		},
		{
			name:        "unclassified error falls back to 503",
			err:         errors.New("surprise"),
			wantStatus:  http.StatusServiceUnavailable,
			wantMessage: "Price service temporarily unavailable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakePriceService{priceErr: tt.err}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/crypto-price/TON_USDT", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantStatus, resp.Error.Code)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestHandleHistorical_Success(t *testing.T) {
	observedAt := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)
	svc := &fakePriceService{
		observations: []model.PriceObservation{
			{ID: 1, Pair: "TON_USDT", Price: decimal.RequireFromString("2.1"), ObservedAt: observedAt},
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/crypto-price/historical?pair=TON_USDT&startDate=2024-05-01&endDate=2024-05-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "TON_USDT", svc.lastPair)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), svc.lastStart)
	assert.Equal(t, time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC), svc.lastEnd)

	var payload []model.PriceObservation
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	require.Len(t, payload, 1)
	assert.Equal(t, uint(1), payload[0].ID)
}

func TestHandleHistorical_AcceptsRFC3339(t *testing.T) {
	svc := &fakePriceService{observations: []model.PriceObservation{}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/crypto-price/historical?pair=TON_USDT&startDate=2024-05-01T00:00:00Z&endDate=2024-05-31T23:59:59Z", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 23, svc.lastEnd.Hour())
}

func TestHandleHistorical_Validation(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		wantMessage string
	}{
		{
			name:        "bad pair",
			target:      "/api/v1/crypto-price/historical?pair=ton&startDate=2024-05-01&endDate=2024-05-31",
			wantMessage: "Invalid trading pair format",
		},
		{
			name:        "missing start",
			target:      "/api/v1/crypto-price/historical?pair=TON_USDT&endDate=2024-05-31",
			wantMessage: "Start date and end date are required",
		},
		{
			name:        "missing end",
			target:      "/api/v1/crypto-price/historical?pair=TON_USDT&startDate=2024-05-01",
			wantMessage: "Start date and end date are required",
		},
		{
			name:        "unparseable date",
			target:      "/api/v1/crypto-price/historical?pair=TON_USDT&startDate=May%201&endDate=2024-05-31",
			wantMessage: "Start date and end date are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakePriceService{})

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantMessage, resp.Error.Message)
		})
	}
}

func TestHandleHistorical_InvertedRange(t *testing.T) {
	svc := &fakePriceService{
		historicalErr: &service.Error{Kind: service.KindInvalidRange, Pair: "TON_USDT"},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		"/api/v1/crypto-price/historical?pair=TON_USDT&startDate=2024-05-31&endDate=2024-05-01", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "start date must be before end date", resp.Error.Message)
}

func TestHistoricalRouteDoesNotMatchAsPair(t *testing.T) {
	// "historical" would be an invalid pair name; the dedicated route must win
	svc := &fakePriceService{}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/crypto-price/historical?pair=TON_USDT&startDate=2024-05-01&endDate=2024-05-31", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, svc.priceCalls)
}

func TestHandleHealth(t *testing.T) {
	router := newTestRouter(&fakePriceService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHandleSupportedPairs(t *testing.T) {
	svc := &fakePriceService{supportedPairs: []string{"TON_USDT", "USDT_TON"}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pairs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.ElementsMatch(t, []string{"TON_USDT", "USDT_TON"}, resp["supported_pairs"])
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    time.Time
		wantErr bool
	}{
		{name: "plain date", value: "2024-05-01", want: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{name: "rfc3339", value: "2024-05-01T12:30:00Z", want: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)},
		{name: "empty", value: "", wantErr: true},
		{name: "garbage", value: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got))
		})
	}
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"crypto-price-service/internal/logger"
	"crypto-price-service/internal/middleware"
	"crypto-price-service/internal/model"
	"crypto-price-service/internal/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "crypto-price-service/internal/docs"
)

// dateOnly is the fallback layout for historical query dates.
const dateOnly = "2006-01-02"

// PriceServiceInterface defines the service operations the handler needs
type PriceServiceInterface interface {
	GetPrice(ctx context.Context, pair string) (decimal.Decimal, error)
	GetHistoricalPrices(ctx context.Context, pair string, start, end time.Time) ([]model.PriceObservation, error)
	SupportedPairs() []string
}

// PriceHandler handles HTTP requests for price endpoints
type PriceHandler struct {
	priceService PriceServiceInterface
}

// NewPriceHandler creates a new price handler instance
func NewPriceHandler(priceService PriceServiceInterface) *PriceHandler {
	return &PriceHandler{
		priceService: priceService,
	}
}

// HandlePrice handles GET /api/v1/crypto-price/{pair}
//
//	@Summary		Get cryptocurrency price for a trading pair
//	@Description	Returns the current price, cache-first with a 30 minute TTL
//	@Tags			crypto-price
//	@Param			pair	path	string	true	"Trading pair in BASE_QUOTE format"	example(TON_USDT)
//	@Success		200	{object}	model.PriceResponse
//	@Failure		400	{object}	ErrorResponse
//	@Failure		429	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Failure		504	{object}	ErrorResponse
//	@Router			/api/v1/crypto-price/{pair} [get]
func (h *PriceHandler) HandlePrice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pair := mux.Vars(r)["pair"]

	if !model.IsValidPairFormat(pair) {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid trading pair format")
		return
	}

	price, err := h.priceService.GetPrice(ctx, pair)
	if err != nil {
		h.writeServiceError(ctx, w, pair, err)
		return
	}

	response := model.PriceResponse{
		Pair:      pair,
		Price:     price,
		Timestamp: time.Now().UnixMilli(),
	}

	h.writeJSON(ctx, w, http.StatusOK, response)
}

// HandleHistorical handles GET /api/v1/crypto-price/historical
//
//	@Summary		Get historical cryptocurrency prices
//	@Description	Returns persisted observations within the inclusive date range, newest first
//	@Tags			crypto-price
//	@Param			pair		query	string	true	"Trading pair in BASE_QUOTE format"
//	@Param			startDate	query	string	true	"Range start (RFC3339 or YYYY-MM-DD)"
//	@Param			endDate		query	string	true	"Range end (RFC3339 or YYYY-MM-DD)"
//	@Success		200	{array}		model.PriceObservation
//	@Failure		400	{object}	ErrorResponse
//	@Failure		503	{object}	ErrorResponse
//	@Router			/api/v1/crypto-price/historical [get]
func (h *PriceHandler) HandleHistorical(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	pair := query.Get("pair")
	if !model.IsValidPairFormat(pair) {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid trading pair format")
		return
	}

	start, err := parseDate(query.Get("startDate"))
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Start date and end date are required")
		return
	}
	end, err := parseDate(query.Get("endDate"))
	if err != nil {
		h.writeErrorResponse(w, http.StatusBadRequest, "Start date and end date are required")
		return
	}

	observations, err := h.priceService.GetHistoricalPrices(ctx, pair, start, end)
	if err != nil {
		h.writeServiceError(ctx, w, pair, err)
		return
	}

	h.writeJSON(ctx, w, http.StatusOK, observations)
}

// HandleHealth handles the health check endpoint
func (h *PriceHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]string{
		"status":  "healthy",
		"service": "crypto-price-service",
	}

	json.NewEncoder(w).Encode(response)
}

// HandleSupportedPairs handles requests for supported trading pairs
func (h *PriceHandler) HandleSupportedPairs(w http.ResponseWriter, r *http.Request) {
	response := map[string][]string{
		"supported_pairs": h.priceService.SupportedPairs(),
	}

	h.writeJSON(r.Context(), w, http.StatusOK, response)
}

// parseDate accepts RFC3339 timestamps or plain dates.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("missing date")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse(dateOnly, value)
}

// ErrorResponse is the JSON error envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the error code and message
type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeServiceError maps a classified service error onto the HTTP envelope
func (h *PriceHandler) writeServiceError(ctx context.Context, w http.ResponseWriter, pair string, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		h.writeErrorResponse(w, svcErr.HTTPStatus(), svcErr.Error())
		return
	}

	logger.GetLogger().WithFields(map[string]interface{}{
		"request_id": logger.GetRequestID(ctx),
		"error":      err.Error(),
		"pair":       pair,
		"event":      "unclassified_error",
	}).Error("Unclassified service error")
	h.writeErrorResponse(w, http.StatusServiceUnavailable, "Price service temporarily unavailable")
}

// writeJSON writes a JSON response body
func (h *PriceHandler) writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.GetLogger().WithFields(map[string]interface{}{
			"request_id": logger.GetRequestID(ctx),
			"error":      err.Error(),
			"event":      "encode_error",
		}).Error("Failed to encode response")
	}
}

// writeErrorResponse writes an error response in JSON format
func (h *PriceHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := ErrorResponse{
		Error: ErrorBody{
			Code:    statusCode,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// SetupRoutes sets up HTTP routes for the price service
func (h *PriceHandler) SetupRoutes(router *mux.Router) {
	// API endpoints; the historical route must be registered before the
	// {pair} route so "historical" never matches as a pair name.
	router.HandleFunc("/api/v1/crypto-price/historical", h.HandleHistorical).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/crypto-price/{pair}", h.HandlePrice).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/pairs", h.HandleSupportedPairs).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HandleHealth).Methods(http.MethodGet)

	// Monitoring endpoints
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Documentation endpoints
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}

// CreateServer creates an HTTP server with middleware
func CreateServer(handler *PriceHandler, port string) *http.Server {
	router := mux.NewRouter()
	handler.SetupRoutes(router)

	var h http.Handler = router
	h = middleware.CORSMiddleware(h)
	h = middleware.LoggingMiddleware(h)
	h = middleware.MetricsMiddleware(h)

	return &http.Server{
		Addr:         ":" + port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

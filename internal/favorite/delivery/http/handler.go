package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/internal/favorite/usecase/command"
	"github.com/tair/tip-favorites/internal/favorite/usecase/query"
	"github.com/tair/tip-favorites/pkg/logger"
)

// FavoriteHandler handles HTTP requests for favorites
type FavoriteHandler struct {
	addHandler    *command.AddFavoriteHandler
	removeHandler *command.RemoveFavoriteHandler
	mergeHandler  *command.MergeFavoritesHandler
	clearHandler  *command.ClearFavoritesHandler
	searchHandler *query.SearchFavoritesHandler

	auth func(http.HandlerFunc) http.HandlerFunc

	requestCounter *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
	mergeOutcomes  *prometheus.CounterVec
}

// NewFavoriteHandler creates a new favorite handler and registers its
// metrics on reg
func NewFavoriteHandler(
	addHandler *command.AddFavoriteHandler,
	removeHandler *command.RemoveFavoriteHandler,
	mergeHandler *command.MergeFavoritesHandler,
	clearHandler *command.ClearFavoritesHandler,
	searchHandler *query.SearchFavoritesHandler,
	validator TokenValidator,
	reg prometheus.Registerer,
) *FavoriteHandler {
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_service_requests_total",
			Help: "Total number of requests to favorites service",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestLatency := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "favorites_service_request_duration_seconds",
			Help:    "Duration of favorites service requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	mergeOutcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "favorites_service_merge_items_total",
			Help: "Tip ids processed by favorites merges, by outcome",
		},
		[]string{"outcome"},
	)

	reg.MustRegister(requestCounter, requestLatency, mergeOutcomes)

	return &FavoriteHandler{
		addHandler:     addHandler,
		removeHandler:  removeHandler,
		mergeHandler:   mergeHandler,
		clearHandler:   clearHandler,
		searchHandler:  searchHandler,
		auth:           AuthMiddleware(validator),
		requestCounter: requestCounter,
		requestLatency: requestLatency,
		mergeOutcomes:  mergeOutcomes,
	}
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware wraps handlers with Prometheus metrics
func (h *FavoriteHandler) metricsMiddleware(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		h.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		h.requestLatency.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

func (h *FavoriteHandler) route(endpoint string, fn http.HandlerFunc) http.HandlerFunc {
	return h.metricsMiddleware(endpoint, h.auth(fn))
}

func (h *FavoriteHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/favorites", h.route("/api/favorites", h.SearchFavorites)).Methods("GET")
	router.HandleFunc("/api/favorites", h.route("/api/favorites", h.AddFavorite)).Methods("POST")
	router.HandleFunc("/api/favorites", h.route("/api/favorites", h.ClearFavorites)).Methods("DELETE")
	router.HandleFunc("/api/favorites/merge", h.route("/api/favorites/merge", h.MergeFavorites)).Methods("POST")
	router.HandleFunc("/api/favorites/{tipId}", h.route("/api/favorites/{tipId}", h.RemoveFavorite)).Methods("DELETE")
}

// AddFavorite handles POST /api/favorites
func (h *FavoriteHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		TipID string `json:"tipId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	favorite, err := h.addHandler.Handle(r.Context(), command.AddFavoriteCommand{UserID: userID, TipID: req.TipID})
	if err != nil {
		h.respondDomainError(w, r, err, "Failed to add favorite")
		return
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Favorite added successfully",
		Data:    favorite,
	})
}

// RemoveFavorite handles DELETE /api/favorites/{tipId}
func (h *FavoriteHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	tipID := mux.Vars(r)["tipId"]

	if err := h.removeHandler.Handle(r.Context(), command.RemoveFavoriteCommand{UserID: userID, TipID: tipID}); err != nil {
		h.respondDomainError(w, r, err, "Failed to remove favorite")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Favorite removed successfully",
	})
}

// MergeFavorites handles POST /api/favorites/merge
func (h *FavoriteHandler) MergeFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	var req struct {
		TipIDs []string `json:"tipIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	outcome, err := h.mergeHandler.Handle(r.Context(), command.MergeFavoritesCommand{UserID: userID, TipIDs: req.TipIDs})
	if err != nil {
		h.respondDomainError(w, r, err, "Failed to merge favorites")
		return
	}

	h.mergeOutcomes.WithLabelValues("added").Add(float64(outcome.Added))
	h.mergeOutcomes.WithLabelValues("skipped").Add(float64(outcome.Skipped))
	h.mergeOutcomes.WithLabelValues("failed").Add(float64(len(outcome.Failed)))

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    outcome,
	})
}

// ClearFavorites handles DELETE /api/favorites
func (h *FavoriteHandler) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())

	removed, err := h.clearHandler.Handle(r.Context(), command.ClearFavoritesCommand{UserID: userID})
	if err != nil {
		h.respondDomainError(w, r, err, "Failed to clear favorites")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Favorites cleared successfully",
		Data:    map[string]int{"removed": removed},
	})
}

// SearchFavorites handles GET /api/favorites
func (h *FavoriteHandler) SearchFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserIDFromContext(r.Context())
	params := r.URL.Query()

	pageNumber, _ := strconv.Atoi(params.Get("pageNumber"))
	pageSize, _ := strconv.Atoi(params.Get("pageSize"))

	var tags []string
	if raw := params.Get("tags"); raw != "" {
		tags = strings.Split(raw, ",")
	}

	q := query.SearchFavoritesQuery{
		UserID: userID,
		Criteria: domain.SearchCriteria{
			Term:          params.Get("term"),
			CategoryID:    params.Get("categoryId"),
			Tags:          tags,
			SortBy:        params.Get("sortBy"),
			SortDirection: params.Get("sortDirection"),
			PageNumber:    pageNumber,
			PageSize:      pageSize,
		},
	}

	page, err := h.searchHandler.Handle(r.Context(), q)
	if err != nil {
		h.respondDomainError(w, r, err, "Failed to search favorites")
		return
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    page,
	})
}

func (h *FavoriteHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respondError(w, http.StatusServiceUnavailable, "Database unavailable")
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Favorites service is healthy",
		})
	}).Methods("GET")
}

// respondDomainError maps error kinds to status codes. Unexpected errors
// are logged and answered with a generic message.
func (h *FavoriteHandler) respondDomainError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	default:
		logger.Error(r.Context()).Err(err).Str("path", r.URL.Path).Msg(fallback)
		respondError(w, http.StatusInternalServerError, fallback)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, Response{Success: false, Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

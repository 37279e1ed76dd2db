package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/tip-favorites/internal/favorite/domain"
	"github.com/tair/tip-favorites/internal/favorite/favoritetest"
	"github.com/tair/tip-favorites/internal/favorite/repository"
	"github.com/tair/tip-favorites/internal/favorite/usecase/command"
	"github.com/tair/tip-favorites/internal/favorite/usecase/query"
	"github.com/tair/tip-favorites/pkg/auth"
)

const testSecret = "test-secret"

type testServer struct {
	router    *mux.Router
	handler   *FavoriteHandler
	store     *favoritetest.Store
	validator *auth.Validator
	registry  *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := favoritetest.NewStore()
	tips := favoritetest.NewTips(
		domain.Tip{ID: "A", Title: "Goroutines", CategoryID: "c1", Tags: []string{"go"}},
		domain.Tip{ID: "B", Title: "Table tests", CategoryID: "c2", Tags: []string{"testing"}},
	)
	categories := favoritetest.NewCategories(map[string]string{"c1": "Go", "c2": "Testing"})
	users := favoritetest.Users{"U": {ID: "U", Username: "alice"}}
	repo := repository.NewFavoritesRepository(store, tips, categories)
	validator := auth.NewValidator(testSecret, "")
	registry := prometheus.NewRegistry()

	h := NewFavoriteHandler(
		command.NewAddFavoriteHandler(repo, users, tips),
		command.NewRemoveFavoriteHandler(repo, users),
		command.NewMergeFavoritesHandler(repo, users, tips, 5),
		command.NewClearFavoritesHandler(repo, users),
		query.NewSearchFavoritesHandler(repo, users),
		validator,
		registry,
	)

	router := mux.NewRouter()
	h.RegisterRoutes(router)

	return &testServer{router: router, handler: h, store: store, validator: validator, registry: registry}
}

type testResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (s *testServer) do(t *testing.T, userID, method, path string, body interface{}) (int, testResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		token, err := s.validator.GenerateToken(userID, userID, "user", time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var resp testResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

// counterValue sums the counter samples of name whose label has value
func (s *testServer) counterValue(t *testing.T, name, label, value string) float64 {
	t.Helper()

	families, err := s.registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == label && l.GetValue() == value {
					total += m.GetCounter().GetValue()
				}
			}
		}
	}
	return total
}

func TestAddFavoriteEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(t, "U", http.MethodPost, "/api/favorites", map[string]string{"tipId": "A"})
	require.Equal(t, http.StatusCreated, code)
	assert.True(t, resp.Success)

	var fav domain.FavoriteWithTip
	require.NoError(t, json.Unmarshal(resp.Data, &fav))
	assert.Equal(t, "A", fav.TipID)
	assert.Equal(t, "Go", fav.CategoryName)

	code, resp = s.do(t, "U", http.MethodPost, "/api/favorites", map[string]string{"tipId": "A"})
	assert.Equal(t, http.StatusConflict, code)
	assert.False(t, resp.Success)

	code, _ = s.do(t, "U", http.MethodPost, "/api/favorites", map[string]string{"tipId": "missing"})
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, "U", http.MethodPost, "/api/favorites", map[string]string{"tipId": "bad_id"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRemoveFavoriteEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, "U", http.MethodDelete, "/api/favorites/A", nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, "U", http.MethodPost, "/api/favorites", map[string]string{"tipId": "A"})
	require.Equal(t, http.StatusCreated, code)

	code, resp := s.do(t, "U", http.MethodDelete, "/api/favorites/A", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	assert.Equal(t, 0, s.store.Count("U"))
}

func TestMergeFavoritesEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(t, "U", http.MethodPost, "/api/favorites/merge",
		map[string][]string{"tipIds": {"A", "B", "X"}})
	require.Equal(t, http.StatusOK, code)

	var outcome domain.MergeOutcome
	require.NoError(t, json.Unmarshal(resp.Data, &outcome))
	assert.Equal(t, 3, outcome.TotalReceived)
	assert.Equal(t, 2, outcome.Added)
	assert.Equal(t, 0, outcome.Skipped)
	assert.Equal(t, []domain.MergeFailure{{TipID: "X", Reason: domain.ReasonTipNotFound}}, outcome.Failed)

	assert.Equal(t, float64(2), s.counterValue(t, "favorites_service_merge_items_total", "outcome", "added"))
	assert.Equal(t, float64(1), s.counterValue(t, "favorites_service_merge_items_total", "outcome", "failed"))
	assert.Equal(t, float64(1), s.counterValue(t, "favorites_service_requests_total", "status", "200"))

	code, _ = s.do(t, "U", http.MethodPost, "/api/favorites/merge",
		map[string][]string{"tipIds": {"1", "2", "3", "4", "5", "6"}})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSearchFavoritesEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, "U", http.MethodPost, "/api/favorites/merge",
		map[string][]string{"tipIds": {"A", "B"}})
	require.Equal(t, http.StatusOK, code)

	code, resp := s.do(t, "U", http.MethodGet, "/api/favorites?tags=GO,rust&sortBy=title&pageSize=10", nil)
	require.Equal(t, http.StatusOK, code)

	var page domain.FavoritePage
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, 1, page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "A", page.Items[0].TipID)

	code, _ = s.do(t, "U", http.MethodGet, "/api/favorites?sortBy=popularity", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestClearFavoritesEndpoint(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, "U", http.MethodPost, "/api/favorites/merge",
		map[string][]string{"tipIds": {"A", "B"}})
	require.Equal(t, http.StatusOK, code)

	code, resp := s.do(t, "U", http.MethodDelete, "/api/favorites", nil)
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"removed":2}`, string(resp.Data))
	assert.Equal(t, 0, s.store.Count("U"))
}

func TestUnknownUserIsNotFound(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(t, "ghost", http.MethodGet, "/api/favorites", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAuthMiddleware(t *testing.T) {
	s := newTestServer(t)

	code, resp := s.do(t, "", http.MethodGet, "/api/favorites", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization header required", resp.Error)

	req := httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	forged, err := auth.NewValidator("other-secret", "").GenerateToken("U", "alice", "user", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/api/favorites", nil)
	req.Header.Set("Authorization", "Bearer "+forged)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInternalErrorsAreNotLeaked(t *testing.T) {
	store := favoritetest.NewStore()
	tips := favoritetest.NewTips(domain.Tip{ID: "A", Title: "Goroutines"})
	tips.Err = &domain.InfrastructureError{Op: "tips.find", Err: assert.AnError}
	users := favoritetest.Users{"U": {ID: "U"}}
	repo := repository.NewFavoritesRepository(store, tips, favoritetest.NewCategories(nil))
	validator := auth.NewValidator(testSecret, "")

	h := NewFavoriteHandler(
		command.NewAddFavoriteHandler(repo, users, tips),
		command.NewRemoveFavoriteHandler(repo, users),
		command.NewMergeFavoritesHandler(repo, users, tips, 0),
		command.NewClearFavoritesHandler(repo, users),
		query.NewSearchFavoritesHandler(repo, users),
		validator,
		prometheus.NewRegistry(),
	)
	router := mux.NewRouter()
	h.RegisterRoutes(router)
	s := &testServer{router: router, handler: h, store: store, validator: validator}

	code, resp := s.do(t, "U", http.MethodPost, "/api/favorites", map[string]string{"tipId": "A"})
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Failed to add favorite", resp.Error)
	assert.NotContains(t, resp.Error, assert.AnError.Error())
}

func TestRequestIDMiddleware(t *testing.T) {
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := r.Context().Value(RequestIDKey).(string)
		w.Write([]byte(id))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc", rec.Body.String())
}

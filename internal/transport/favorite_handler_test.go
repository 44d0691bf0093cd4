package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"favorites-api/internal/catalog"
	"favorites-api/internal/domain"
	"favorites-api/internal/middleware"
	"favorites-api/internal/repository"
	"favorites-api/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type favoriteKey struct {
	userID    int64
	productID int64
}

type mockFavoriteRepository struct {
	favorites map[favoriteKey]*domain.FavoriteProduct
	nextID    int64
}

func newMockFavoriteRepository() *mockFavoriteRepository {
	return &mockFavoriteRepository{
		favorites: make(map[favoriteKey]*domain.FavoriteProduct),
		nextID:    1,
	}
}

func (m *mockFavoriteRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.FavoriteProduct, error) {
	favorites := []*domain.FavoriteProduct{}
	for key, favorite := range m.favorites {
		if key.userID == userID {
			favorites = append(favorites, favorite)
		}
	}
	return favorites, nil
}

func (m *mockFavoriteRepository) FindByUserAndProduct(ctx context.Context, userID, productID int64) (*domain.FavoriteProduct, error) {
	favorite, exists := m.favorites[favoriteKey{userID, productID}]
	if !exists {
		return nil, repository.ErrFavoriteNotFound
	}
	return favorite, nil
}

func (m *mockFavoriteRepository) Create(ctx context.Context, favorite *domain.FavoriteProduct) error {
	key := favoriteKey{favorite.UserID, favorite.ProductID}
	if _, exists := m.favorites[key]; exists {
		return repository.ErrDuplicateFavorite
	}
	favorite.ID = m.nextID
	m.nextID++
	favorite.CreatedAt = time.Now()
	favorite.UpdatedAt = favorite.CreatedAt
	m.favorites[key] = favorite
	return nil
}

func (m *mockFavoriteRepository) Delete(ctx context.Context, userID, productID int64) error {
	key := favoriteKey{userID, productID}
	if _, exists := m.favorites[key]; !exists {
		return repository.ErrFavoriteNotFound
	}
	delete(m.favorites, key)
	return nil
}

type mockProductLookup struct {
	products map[int64]*domain.CatalogProduct
}

func (m *mockProductLookup) GetProduct(ctx context.Context, productID int64) (*domain.CatalogProduct, error) {
	product, exists := m.products[productID]
	if !exists {
		return nil, catalog.ErrProductNotFound
	}
	return product, nil
}

// newFavoriteRouter mounts the favorite routes with a stubbed authenticated
// client and the real ownership gate
func newFavoriteRouter(favoriteService service.FavoriteService, authID int64) http.Handler {
	logger, _ := zap.NewDevelopment()
	handler := NewFavoriteHandler(favoriteService, logger)
	router := chi.NewRouter()
	handler.RegisterRoutes(router, stubAuth(authID), middleware.RequireClientOwnership(logger))
	return router
}

func newTestFavoriteService() service.FavoriteService {
	lookup := &mockProductLookup{
		products: map[int64]*domain.CatalogProduct{
			10: {
				ID:     10,
				Title:  "Widget",
				Price:  9.99,
				Image:  "https://example.com/w.jpg",
				Rating: &domain.CatalogRating{Rate: 4.2, Count: 130},
			},
		},
	}
	return service.NewFavoriteService(newMockFavoriteRepository(), lookup)
}

func TestFavoriteLifecycle(t *testing.T) {
	favoriteService := newTestFavoriteService()
	router := newFavoriteRouter(favoriteService, 1)

	// Initially the list is empty but present
	req := httptest.NewRequest(http.MethodGet, "/api/clients/1/favorite-products", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for empty list, got %d", w.Code)
	}
	var list []FavoriteResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %d entries", len(list))
	}

	// Add product 10
	body, _ := json.Marshal(AddFavoriteRequest{ProductID: 10})
	req = httptest.NewRequest(http.MethodPost, "/api/clients/1/favorite-products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var created FavoriteResponse
	if err := json.NewDecoder(w.Body).Decode(&created); err != nil {
		t.Fatalf("decode created favorite: %v", err)
	}
	if created.ProductID != 10 || created.Title != "Widget" || created.Price != 9.99 {
		t.Errorf("snapshot mismatch: %+v", created)
	}
	if created.Image != "https://example.com/w.jpg" {
		t.Errorf("unexpected image %q", created.Image)
	}
	if created.Review == nil || *created.Review != 4.2 {
		t.Errorf("expected review 4.2, got %v", created.Review)
	}

	// The favorite shows up in the list
	req = httptest.NewRequest(http.MethodGet, "/api/clients/1/favorite-products", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].ProductID != 10 {
		t.Fatalf("expected the added favorite in the list, got %+v", list)
	}

	// Remove it
	req = httptest.NewRequest(http.MethodDelete, "/api/clients/1/favorite-products/10", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	// Removing again reports the domain error
	req = httptest.NewRequest(http.MethodDelete, "/api/clients/1/favorite-products/10", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing favorite, got %d", w.Code)
	}
	var errBody map[string]string
	if err := json.NewDecoder(w.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] != "favorite product not found" {
		t.Errorf("unexpected error message %q", errBody["error"])
	}
}

func TestAddFavoriteTwiceReturnsDomainError(t *testing.T) {
	favoriteService := newTestFavoriteService()
	router := newFavoriteRouter(favoriteService, 1)

	body, _ := json.Marshal(AddFavoriteRequest{ProductID: 10})

	req := httptest.NewRequest(http.MethodPost, "/api/clients/1/favorite-products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/clients/1/favorite-products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate favorite, got %d", w.Code)
	}
	var errBody map[string]string
	if err := json.NewDecoder(w.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] != "this product is already in your favorites" {
		t.Errorf("unexpected error message %q", errBody["error"])
	}
}

func TestAddUnknownProductReturnsDomainError(t *testing.T) {
	favoriteService := newTestFavoriteService()
	router := newFavoriteRouter(favoriteService, 1)

	body, _ := json.Marshal(AddFavoriteRequest{ProductID: 9999})
	req := httptest.NewRequest(http.MethodPost, "/api/clients/1/favorite-products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown product, got %d", w.Code)
	}
	var errBody map[string]string
	if err := json.NewDecoder(w.Body).Decode(&errBody); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if errBody["error"] != "product not found" {
		t.Errorf("unexpected error message %q", errBody["error"])
	}
}

func TestAddFavoriteWithoutProductIDFailsValidation(t *testing.T) {
	favoriteService := newTestFavoriteService()
	router := newFavoriteRouter(favoriteService, 1)

	req := httptest.NewRequest(http.MethodPost, "/api/clients/1/favorite-products", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for missing product_id, got %d", w.Code)
	}
}

func TestFavoriteRoutesRejectOtherClients(t *testing.T) {
	favoriteService := newTestFavoriteService()

	// Authenticated as client 2, touching client 1's favorites
	router := newFavoriteRouter(favoriteService, 2)

	urls := []struct {
		method string
		url    string
		body   string
	}{
		{http.MethodGet, "/api/clients/1/favorite-products", ""},
		{http.MethodPost, "/api/clients/1/favorite-products", `{"product_id":10}`},
		{http.MethodDelete, "/api/clients/1/favorite-products/10", ""},
	}

	for _, tc := range urls {
		t.Run(fmt.Sprintf("%s %s", tc.method, tc.url), func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.url, bytes.NewReader([]byte(tc.body)))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tc.method, tc.url, nil)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusForbidden {
				t.Errorf("expected 403, got %d", w.Code)
			}
		})
	}
}

package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

func newOwnershipRouter(logger *zap.Logger, handlerCalled *bool) http.Handler {
	r := chi.NewRouter()
	r.Route("/clients/{clientID}/favorite-products", func(r chi.Router) {
		r.Use(RequireClientOwnership(logger))
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			*handlerCalled = true
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func TestProperty_OwnershipMismatchRejectedBeforeHandler(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests for another client's resources never reach the handler", prop.ForAll(
		func(authenticatedID, requestedID int64) bool {
			if authenticatedID == requestedID {
				return true // covered by the matching-id property
			}

			logger, _ := zap.NewDevelopment()
			handlerCalled := false
			router := newOwnershipRouter(logger, &handlerCalled)

			req := httptest.NewRequest("GET", fmt.Sprintf("/clients/%d/favorite-products", requestedID), nil)
			req = req.WithContext(context.WithValue(req.Context(), UserIDKey, authenticatedID))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			return !handlerCalled && w.Code == http.StatusForbidden
		},
		gen.Int64Range(1, 1000000),
		gen.Int64Range(1, 1000000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_OwnershipMatchAllowsRequest(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests for the caller's own resources pass through", prop.ForAll(
		func(clientID int64) bool {
			logger, _ := zap.NewDevelopment()
			handlerCalled := false
			router := newOwnershipRouter(logger, &handlerCalled)

			req := httptest.NewRequest("GET", fmt.Sprintf("/clients/%d/favorite-products", clientID), nil)
			req = req.WithContext(context.WithValue(req.Context(), UserIDKey, clientID))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			return handlerCalled && w.Code == http.StatusOK
		},
		gen.Int64Range(1, 1000000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestOwnershipRejectsMissingIdentity(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	handlerCalled := false
	router := newOwnershipRouter(logger, &handlerCalled)

	// No authenticated user on the context at all
	req := httptest.NewRequest("GET", "/clients/1/favorite-products", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if handlerCalled {
		t.Error("handler should not be called without an authenticated identity")
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
}

func TestOwnershipRejectsNonNumericClientID(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	handlerCalled := false
	router := newOwnershipRouter(logger, &handlerCalled)

	req := httptest.NewRequest("GET", "/clients/abc/favorite-products", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, int64(1)))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if handlerCalled {
		t.Error("handler should not be called for a malformed client id")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

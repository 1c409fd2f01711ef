package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/recipebox/internal/domain/recipe"
	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/geocoder89/recipebox/internal/http/handlers"
	"github.com/geocoder89/recipebox/internal/validation"
)

type fakeTagStore struct {
	listFn   func(ctx context.Context, ownerID string) ([]recipe.Tag, error)
	createFn func(ctx context.Context, ownerID string, in recipe.CreateTagRequest) (recipe.Tag, error)
}

func (f *fakeTagStore) List(ctx context.Context, ownerID string) ([]recipe.Tag, error) {
	if f.listFn != nil {
		return f.listFn(ctx, ownerID)
	}
	return []recipe.Tag{}, nil
}

func (f *fakeTagStore) Create(ctx context.Context, ownerID string, in recipe.CreateTagRequest) (recipe.Tag, error) {
	if f.createFn != nil {
		return f.createFn(ctx, ownerID, in)
	}
	return recipe.NewTag(ownerID, in), nil
}

func TestOwnedHandler_ListScopesToCaller(t *testing.T) {
	me := user.User{ID: "owner-1"}

	var askedFor string
	store := &fakeTagStore{
		listFn: func(_ context.Context, ownerID string) ([]recipe.Tag, error) {
			askedFor = ownerID
			return []recipe.Tag{{ID: "t1", UserID: ownerID, Name: "Vegan"}}, nil
		},
	}

	h := handlers.NewOwnedHandler[recipe.Tag, recipe.CreateTagRequest]("tags", store)
	w := do(setupRouter(http.MethodGet, "/tags", &me, h.List), http.MethodGet, "/tags", "")

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d", w.Code)
	}
	if askedFor != "owner-1" {
		t.Fatalf("store queried for %q", askedFor)
	}
	if w.Body.String() != `[{"id":"t1","name":"Vegan"}]` {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestOwnedHandler_Create(t *testing.T) {
	me := user.User{ID: "owner-1"}

	tests := []struct {
		name           string
		body           string
		storeSetup     func(*fakeTagStore)
		wantStatusCode int
	}{
		{"success", `{"name":"Dessert"}`, nil, http.StatusCreated},
		{"empty_name", `{"name":""}`, nil, http.StatusBadRequest},
		{"blank_name", `{"name":"   "}`, nil, http.StatusBadRequest},
		{
			name: "store_validation_error",
			body: `{"name":"Dessert"}`,
			storeSetup: func(f *fakeTagStore) {
				f.createFn = func(context.Context, string, recipe.CreateTagRequest) (recipe.Tag, error) {
					return recipe.Tag{}, validation.New("name", "exists", "bad")
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "store_error",
			body: `{"name":"Dessert"}`,
			storeSetup: func(f *fakeTagStore) {
				f.createFn = func(context.Context, string, recipe.CreateTagRequest) (recipe.Tag, error) {
					return recipe.Tag{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeTagStore{}
			if tt.storeSetup != nil {
				tt.storeSetup(store)
			}

			h := handlers.NewOwnedHandler[recipe.Tag, recipe.CreateTagRequest]("tags", store)
			w := do(setupRouter(http.MethodPost, "/tags", &me, h.Create), http.MethodPost, "/tags", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestOwnedHandler_CreateIgnoresOwnerInBody(t *testing.T) {
	me := user.User{ID: "owner-1"}

	var ownerSeen string
	store := &fakeTagStore{
		createFn: func(_ context.Context, ownerID string, in recipe.CreateTagRequest) (recipe.Tag, error) {
			ownerSeen = ownerID
			return recipe.NewTag(ownerID, in), nil
		},
	}

	h := handlers.NewOwnedHandler[recipe.Tag, recipe.CreateTagRequest]("tags", store)
	w := do(setupRouter(http.MethodPost, "/tags", &me, h.Create), http.MethodPost, "/tags", `{"name":"Mine","user":"someone-else","user_id":"someone-else"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d", w.Code)
	}
	if ownerSeen != "owner-1" {
		t.Fatalf("owner taken from body: %q", ownerSeen)
	}

	var body map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	if _, ok := body["user_id"]; ok {
		t.Fatalf("owner must not be serialized: %v", body)
	}
}

package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/geocoder89/recipebox/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type fakeUserAdmin struct {
	users   map[string]user.User
	updates []user.Update
}

func (f *fakeUserAdmin) List(context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserAdmin) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserAdmin) UpdateUser(_ context.Context, u user.User, upd user.Update) (user.User, error) {
	f.updates = append(f.updates, upd)
	if upd.Active != nil {
		u.IsActive = *upd.Active
	}
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserAdmin) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(f.users, id)
	return nil
}

const knownID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"

func adminRouter(f *fakeUserAdmin) *gin.Engine {
	h := handlers.NewAdminUsersHandler(f)

	r := gin.New()
	r.GET("/users", h.List)
	r.GET("/users/:id", h.Get)
	r.PATCH("/users/:id", h.Update)
	r.DELETE("/users/:id", h.Delete)
	return r
}

func TestAdminUsersHandler(t *testing.T) {
	tests := []struct {
		name           string
		method, path   string
		body           string
		wantStatusCode int
	}{
		{"list", http.MethodGet, "/users", "", http.StatusOK},
		{"get", http.MethodGet, "/users/" + knownID, "", http.StatusOK},
		{"get_bad_id", http.MethodGet, "/users/not-a-uuid", "", http.StatusBadRequest},
		{"get_missing", http.MethodGet, "/users/00000000-0000-4000-8000-000000000000", "", http.StatusNotFound},
		{"deactivate", http.MethodPatch, "/users/" + knownID, `{"is_active":false}`, http.StatusOK},
		{"delete_missing", http.MethodDelete, "/users/00000000-0000-4000-8000-000000000000", "", http.StatusNotFound},
		{"delete", http.MethodDelete, "/users/" + knownID, "", http.StatusNoContent},
	}

	f := &fakeUserAdmin{users: map[string]user.User{
		knownID: {ID: knownID, Email: "cook@example.com", IsActive: true},
	}}
	r := adminRouter(f)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}

	if len(f.updates) != 1 || f.updates[0].Active == nil || *f.updates[0].Active {
		t.Fatalf("expected one deactivation update, got %+v", f.updates)
	}
	if _, ok := f.users[knownID]; ok {
		t.Fatalf("user should be deleted")
	}
}

package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/geocoder89/recipebox/internal/accounts"
	"github.com/geocoder89/recipebox/internal/domain/user"
	"github.com/geocoder89/recipebox/internal/http/handlers"
	"github.com/geocoder89/recipebox/internal/validation"
)

type fakeUserService struct {
	createFn func(ctx context.Context, email, password string, attrs user.Attrs) (user.User, error)
	updateFn func(ctx context.Context, u user.User, upd user.Update) (user.User, error)
}

func (f *fakeUserService) CreateUser(ctx context.Context, email, password string, attrs user.Attrs) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, password, attrs)
	}
	return user.User{Email: email, Name: attrs.Name}, nil
}

func (f *fakeUserService) UpdateUser(ctx context.Context, u user.User, upd user.Update) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, u, upd)
	}
	return u, nil
}

type fakeTokenService struct {
	issueFn func(ctx context.Context, email, password string) (string, error)
}

func (f *fakeTokenService) IssueToken(ctx context.Context, email, password string) (string, error) {
	return f.issueFn(ctx, email, password)
}

type countingObserver map[string]int

func (c countingObserver) ObserveToken(result string) { c[result]++ }

func TestCreateUserHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		serviceSetup   func(*fakeUserService)
		wantStatusCode int
		wantField      string
	}{
		{
			name:           "success",
			body:           `{"email_add":"test@example.com","password":"testpass123","name":"Test"}`,
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "short_password",
			body:           `{"email_add":"test@example.com","password":"pw","name":"Test"}`,
			wantStatusCode: http.StatusBadRequest,
			wantField:      "password",
		},
		{
			name:           "missing_email",
			body:           `{"password":"testpass123"}`,
			wantStatusCode: http.StatusBadRequest,
			wantField:      "email_add",
		},
		{
			name: "duplicate_email",
			body: `{"email_add":"test@example.com","password":"testpass123"}`,
			serviceSetup: func(f *fakeUserService) {
				f.createFn = func(context.Context, string, string, user.Attrs) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantField:      "email_add",
		},
		{
			name: "store_validation_error",
			body: `{"email_add":"test@example.com","password":"testpass123"}`,
			serviceSetup: func(f *fakeUserService) {
				f.createFn = func(context.Context, string, string, user.Attrs) (user.User, error) {
					return user.User{}, validation.New("password", "max", "must be at most 72 bytes")
				}
			},
			wantStatusCode: http.StatusBadRequest,
			wantField:      "password",
		},
		{
			name: "store_error",
			body: `{"email_add":"test@example.com","password":"testpass123"}`,
			serviceSetup: func(f *fakeUserService) {
				f.createFn = func(context.Context, string, string, user.Attrs) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUserService{}
			if tt.serviceSetup != nil {
				tt.serviceSetup(svc)
			}

			h := handlers.NewUsersHandler(svc, nil, nil)
			w := do(setupRouter(http.MethodPost, "/api/user/create", nil, h.Create), http.MethodPost, "/api/user/create", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantField != "" {
				if _, ok := fieldRules(decodeError(t, w))[tt.wantField]; !ok {
					t.Fatalf("expected field error on %q, body=%s", tt.wantField, w.Body.String())
				}
			}

			if w.Code == http.StatusCreated {
				var body map[string]any
				_ = json.Unmarshal(w.Body.Bytes(), &body)
				if _, leaked := body["password"]; leaked {
					t.Fatalf("password must not be echoed: %v", body)
				}
				if body["email_add"] != "test@example.com" || body["name"] != "Test" {
					t.Fatalf("unexpected profile: %v", body)
				}
			}
		})
	}
}

func TestTokenHandler(t *testing.T) {
	tokens := &fakeTokenService{
		issueFn: func(_ context.Context, email, password string) (string, error) {
			switch {
			case email == "boom@example.com":
				return "", errors.New("db error")
			case email == "test@example.com" && password == "testpass123":
				return "tok-1", nil
			default:
				return "", accounts.ErrInvalidCredentials
			}
		},
	}

	tests := []struct {
		name           string
		body           string
		wantStatusCode int
		wantCode       string
	}{
		{"success", `{"email_add":"test@example.com","password":"testpass123"}`, http.StatusOK, ""},
		{"bad_credentials", `{"email_add":"test@example.com","password":"wrong"}`, http.StatusBadRequest, "authentication_failed"},
		{"missing_password", `{"email_add":"test@example.com"}`, http.StatusBadRequest, "authentication_failed"},
		{"missing_email", `{"password":"testpass123"}`, http.StatusBadRequest, "invalid_request"},
		{"store_error", `{"email_add":"boom@example.com","password":"x"}`, http.StatusInternalServerError, "internal_error"},
	}

	obs := countingObserver{}
	h := handlers.NewUsersHandler(&fakeUserService{}, tokens, obs)
	r := setupRouter(http.MethodPost, "/api/user/token", nil, h.Token)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/api/user/token", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantCode != "" {
				if got := decodeError(t, w).Error.Code; got != tt.wantCode {
					t.Fatalf("got code %q, want %q", got, tt.wantCode)
				}
				return
			}

			var body struct {
				Token string `json:"token"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &body)
			if body.Token != "tok-1" {
				t.Fatalf("expected token in body, got %s", w.Body.String())
			}
		})
	}

	if obs["issued"] != 1 || obs["rejected"] != 2 || obs["error"] != 1 {
		t.Fatalf("unexpected observations: %v", obs)
	}
}

func TestMeHandlers(t *testing.T) {
	me := user.User{ID: "u1", Email: "me@example.com", Name: "Me", IsActive: true}

	t.Run("get_profile", func(t *testing.T) {
		h := handlers.NewUsersHandler(&fakeUserService{}, nil, nil)
		w := do(setupRouter(http.MethodGet, "/me", &me, h.Me), http.MethodGet, "/me", "")

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d", w.Code)
		}
		if w.Body.String() != `{"email_add":"me@example.com","name":"Me"}` {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
	})

	t.Run("no_identity_fails_closed", func(t *testing.T) {
		h := handlers.NewUsersHandler(&fakeUserService{}, nil, nil)
		w := do(setupRouter(http.MethodGet, "/me", nil, h.Me), http.MethodGet, "/me", "")

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("got status %d", w.Code)
		}
	})

	t.Run("patch_passes_only_present_fields", func(t *testing.T) {
		var got user.Update
		svc := &fakeUserService{
			updateFn: func(_ context.Context, u user.User, upd user.Update) (user.User, error) {
				got = upd
				u.Name = *upd.Name
				return u, nil
			},
		}
		h := handlers.NewUsersHandler(svc, nil, nil)
		w := do(setupRouter(http.MethodPatch, "/me", &me, h.UpdateMe), http.MethodPatch, "/me", `{"name":"New","password":"newpassword"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("got status %d body=%s", w.Code, w.Body.String())
		}
		if got.Email != nil || got.Name == nil || got.Password == nil || *got.Password != "newpassword" {
			t.Fatalf("unexpected update %+v", got)
		}
		if w.Body.String() != `{"email_add":"me@example.com","name":"New"}` {
			t.Fatalf("unexpected body %s", w.Body.String())
		}
	})

	t.Run("patch_short_password", func(t *testing.T) {
		h := handlers.NewUsersHandler(&fakeUserService{}, nil, nil)
		w := do(setupRouter(http.MethodPatch, "/me", &me, h.UpdateMe), http.MethodPatch, "/me", `{"password":"abc"}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d", w.Code)
		}
	})

	t.Run("put_requires_email_and_password", func(t *testing.T) {
		h := handlers.NewUsersHandler(&fakeUserService{}, nil, nil)
		w := do(setupRouter(http.MethodPut, "/me", &me, h.ReplaceMe), http.MethodPut, "/me", `{"name":"Only"}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("got status %d", w.Code)
		}
		rules := fieldRules(decodeError(t, w))
		if rules["email_add"] != "required" || rules["password"] != "required" {
			t.Fatalf("unexpected rules %v", rules)
		}
	})
}

func TestMethodNotAllowed(t *testing.T) {
	r := setupRouter(http.MethodDelete, "/me", nil, handlers.MethodNotAllowed(http.MethodGet, http.MethodPatch))
	w := do(r, http.MethodDelete, "/me", "")

	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("got status %d", w.Code)
	}
	if w.Header().Get("Allow") != "GET, PATCH" {
		t.Fatalf("unexpected Allow header %q", w.Header().Get("Allow"))
	}
	if decodeError(t, w).Error.Code != "method_not_allowed" {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

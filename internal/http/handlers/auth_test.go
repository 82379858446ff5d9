package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/soladu1/Q-A-By-SOL/internal/auth"
	"github.com/soladu1/Q-A-By-SOL/internal/domain/user"
	"github.com/soladu1/Q-A-By-SOL/internal/http/handlers"
	"github.com/soladu1/Q-A-By-SOL/internal/repo/postgres"
	"github.com/soladu1/Q-A-By-SOL/internal/security"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

// Fake repository implementation of the handlers.UserReader/UserWriter interfaces

type fakeUsersRepo struct {
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	existsFn     func(ctx context.Context, username, email string) (bool, error)
	createFn     func(ctx context.Context, username, firstname, lastname, email, passwordHash string) (user.User, error)
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsersRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	if f.existsFn != nil {
		return f.existsFn(ctx, username, email)
	}

	return false, nil
}

func (f *fakeUsersRepo) Create(ctx context.Context, username, firstname, lastname, email, passwordHash string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, username, firstname, lastname, email, passwordHash)
	}

	return user.User{
		ID:           uuid.NewString(),
		Username:     username,
		FirstName:    firstname,
		LastName:     lastname,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func newJWTManager(t *testing.T) *auth.Manager {
	t.Helper()

	m, err := auth.NewManager("handlers-test-secret", 24*time.Hour, 168*time.Hour)

	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	return m
}

func setupAuthRouter(t *testing.T, repo *fakeUsersRepo) (*gin.Engine, *auth.Manager) {
	t.Helper()

	m := newJWTManager(t)
	h := handlers.NewAuthHandler(repo, repo, m)

	r := gin.New()
	r.POST("/users/register", h.Register)
	r.POST("/users/login", h.Login)

	return r, m
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

const validRegisterBody = `{
	"username": "sol",
	"firstname": "Sol",
	"lastname": "Adu",
	"email": "sol@example.com",
	"password": "longenough"
}`

func TestRegisterIssuesTokenBoundToNewUser(t *testing.T) {
	var insertedID string

	repo := &fakeUsersRepo{
		createFn: func(ctx context.Context, username, firstname, lastname, email, passwordHash string) (user.User, error) {
			if passwordHash == "longenough" {
				t.Fatalf("password must be hashed before the insert")
			}

			insertedID = uuid.NewString()

			return user.User{
				ID:           insertedID,
				Username:     username,
				FirstName:    firstname,
				LastName:     lastname,
				Email:        email,
				PasswordHash: passwordHash,
			}, nil
		},
	}

	r, m := setupAuthRouter(t, repo)

	w := postJSON(r, "/users/register", validRegisterBody)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want 201, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		UserID   string `json:"userId"`
		Username string `json:"username"`
		Token    string `json:"token"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v body=%s", err, w.Body.String())
	}

	if resp.UserID != insertedID {
		t.Fatalf("response userId %q does not match inserted row %q", resp.UserID, insertedID)
	}

	claims, err := m.Verify(resp.Token)

	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	if claims.UserID != insertedID || claims.Username != "sol" {
		t.Fatalf("token claims do not match the inserted row: %+v", claims)
	}
}

func TestRegisterRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		repoSetUp  func(*fakeUsersRepo)
		wantStatus int
	}{
		{
			name:       "missing fields",
			body:       `{"username": "sol", "password": "longenough"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "short password",
			body: `{
				"username": "sol",
				"firstname": "Sol",
				"lastname": "Adu",
				"email": "sol@example.com",
				"password": "short"
			}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate caught by pre-check",
			body: validRegisterBody,
			repoSetUp: func(f *fakeUsersRepo) {
				f.existsFn = func(ctx context.Context, username, email string) (bool, error) {
					return true, nil
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "duplicate caught by unique constraint",
			body: validRegisterBody,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, username, firstname, lastname, email, passwordHash string) (user.User, error) {
					return user.User{}, postgres.ErrUserExists
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "store failure",
			body: validRegisterBody,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, username, firstname, lastname, email, passwordHash string) (user.User, error) {
					return user.User{}, errors.New("boom")
				}
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "store saturated",
			body: validRegisterBody,
			repoSetUp: func(f *fakeUsersRepo) {
				f.existsFn = func(ctx context.Context, username, email string) (bool, error) {
					return false, context.DeadlineExceeded
				}
			},
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tc.repoSetUp != nil {
				tc.repoSetUp(repo)
			}

			r, _ := setupAuthRouter(t, repo)

			w := postJSON(r, "/users/register", tc.body)

			if w.Code != tc.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestRegisterConflictDoesNotRevealWhichFieldCollided(t *testing.T) {
	repo := &fakeUsersRepo{
		existsFn: func(ctx context.Context, username, email string) (bool, error) {
			return true, nil
		},
	}

	r, _ := setupAuthRouter(t, repo)

	w := postJSON(r, "/users/register", validRegisterBody)

	var resp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Error.Message != "Username or email already exists" {
		t.Fatalf("conflict message leaks detail: %q", resp.Error.Message)
	}
}

func TestLoginSuccess(t *testing.T) {
	hash, err := security.HashPassword("longenough")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	stored := user.User{
		ID:           uuid.NewString(),
		Username:     "sol",
		Email:        "sol@example.com",
		PasswordHash: hash,
	}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email != "sol@example.com" {
				return user.User{}, postgres.ErrUserNotFound
			}
			return stored, nil
		},
	}

	r, m := setupAuthRouter(t, repo)

	w := postJSON(r, "/users/login", `{"email": "sol@example.com", "password": "longenough"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
			UserID   string `json:"userid"`
		} `json:"user"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v body=%s", err, w.Body.String())
	}

	if resp.User.UserID != stored.ID || resp.User.Username != "sol" {
		t.Fatalf("unexpected user summary: %+v", resp.User)
	}

	claims, err := m.Verify(resp.Token)

	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	if claims.UserID != stored.ID {
		t.Fatalf("token bound to wrong user: %+v", claims)
	}
}

// Unknown email and wrong password must be indistinguishable to the caller.
func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	hash, err := security.HashPassword("longenough")

	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	repo := &fakeUsersRepo{
		getByEmailFn: func(ctx context.Context, email string) (user.User, error) {
			if email == "sol@example.com" {
				return user.User{ID: "u1", Username: "sol", PasswordHash: hash}, nil
			}
			return user.User{}, postgres.ErrUserNotFound
		},
	}

	r, _ := setupAuthRouter(t, repo)

	unknown := postJSON(r, "/users/login", `{"email": "nobody@example.com", "password": "longenough"}`)
	wrongPw := postJSON(r, "/users/login", `{"email": "sol@example.com", "password": "not-the-password"}`)

	if unknown.Code != http.StatusUnauthorized || wrongPw.Code != http.StatusUnauthorized {
		t.Fatalf("both failures must be 401, got %d and %d", unknown.Code, wrongPw.Code)
	}

	type errBody struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	var a, b errBody

	if err := json.Unmarshal(unknown.Body.Bytes(), &a); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if err := json.Unmarshal(wrongPw.Body.Bytes(), &b); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if a.Error.Code != b.Error.Code || a.Error.Message != b.Error.Message {
		t.Fatalf("failure responses differ: %+v vs %+v", a.Error, b.Error)
	}
}

func TestLoginValidation(t *testing.T) {
	r, _ := setupAuthRouter(t, &fakeUsersRepo{})

	for _, body := range []string{
		`{}`,
		`{"email": "sol@example.com"}`,
		`{"password": "longenough"}`,
	} {
		w := postJSON(r, "/users/login", body)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: got status %d, want 400", body, w.Code)
		}
	}
}

func TestCheckReissuesToken(t *testing.T) {
	m := newJWTManager(t)
	h := handlers.NewAuthHandler(&fakeUsersRepo{}, &fakeUsersRepo{}, m)

	r := gin.New()
	r.GET("/users/check", func(c *gin.Context) {
		// identity normally attached by the auth middleware
		c.Set("auth.userID", "user-9")
		c.Set("auth.username", "sol")
	}, h.Check)

	req := httptest.NewRequest(http.MethodGet, "/users/check", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
			UserID   string `json:"userid"`
		} `json:"user"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	claims, err := m.Verify(resp.Token)

	if err != nil {
		t.Fatalf("reissued token does not verify: %v", err)
	}

	if claims.UserID != "user-9" || resp.User.Username != "sol" {
		t.Fatalf("unexpected identity: %+v / %+v", claims, resp.User)
	}
}

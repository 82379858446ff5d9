package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soladu1/Q-A-By-SOL/internal/auth"
	"github.com/soladu1/Q-A-By-SOL/internal/config"
	"github.com/soladu1/Q-A-By-SOL/internal/domain/user"
	"github.com/soladu1/Q-A-By-SOL/internal/http/middlewares"
	"github.com/soladu1/Q-A-By-SOL/internal/repo/postgres"
	"github.com/soladu1/Q-A-By-SOL/internal/security"
)

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	Create(ctx context.Context, username, firstname, lastname, email, passwordHash string) (user.User, error)
}

type AuthHandler struct {
	users      UserReader
	userWriter UserWriter
	jwt        *auth.Manager
}

func NewAuthHandler(users UserReader, userWriter UserWriter, jwtManager *auth.Manager) *AuthHandler {
	return &AuthHandler{
		users:      users,
		userWriter: userWriter,
		jwt:        jwtManager,
	}
}

type RegisterRequest struct {
	Username  string `json:"username" binding:"required"`
	FirstName string `json:"firstname" binding:"required"`
	LastName  string `json:"lastname" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// Fast-path conflict check before doing the expensive hash. The unique
	// constraints on the table stay authoritative for concurrent signups.
	exists, err := h.userWriter.ExistsByUsernameOrEmail(cctx, req.Username, req.Email)

	if err != nil {
		respondStoreError(ctx, err, "Could not register user")
		return
	}

	if exists {
		RespondConflict(ctx, "user_exists", "Username or email already exists")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not register user")
		return
	}

	u, err := h.userWriter.Create(cctx, req.Username, req.FirstName, req.LastName, req.Email, hash)

	if err != nil {
		if errors.Is(err, postgres.ErrUserExists) {
			RespondConflict(ctx, "user_exists", "Username or email already exists")
			return
		}

		respondStoreError(ctx, err, "Could not register user")
		return
	}

	token, err := h.jwt.IssueRegistrationToken(u.Username, u.ID)

	if err != nil {
		RespondInternal(ctx, "Could not register user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message":  "User registered successfully",
		"userId":   u.ID,
		"username": u.Username,
		"token":    token,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			// Same message as a wrong password so callers cannot probe which
			// emails are registered.
			RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
			return
		}

		respondStoreError(ctx, err, "Could not log in")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		if errors.Is(err, security.ErrInvalidDigest) {
			RespondInternal(ctx, "Could not log in")
			return
		}

		RespondUnauthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	token, err := h.jwt.IssueLoginToken(foundUser.Username, foundUser.ID)

	if err != nil {
		RespondInternal(ctx, "Could not log in")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful!",
		"token":   token,
		"user": gin.H{
			"username": foundUser.Username,
			"userid":   foundUser.ID,
		},
	})
}

// Check confirms the presented token and hands back a fresh one so the client
// can extend its session without re-entering credentials.
func (h *AuthHandler) Check(ctx *gin.Context) {
	userID, okID := middlewares.UserIDFromContext(ctx)
	username, okName := middlewares.UsernameFromContext(ctx)

	if !okID || !okName {
		RespondUnauthorized(ctx, "unauthorized", "User not authenticated")
		return
	}

	token, err := h.jwt.IssueLoginToken(username, userID)

	if err != nil {
		RespondInternal(ctx, "Could not refresh token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"username": username,
			"userid":   userID,
		},
		"token":   token,
		"message": "User is authenticated",
	})
}

// respondStoreError separates "the pool is saturated or the store is slow"
// from every other store failure.
func respondStoreError(ctx *gin.Context, err error, message string) {
	if errors.Is(err, context.DeadlineExceeded) {
		RespondUnavailable(ctx, "Service is busy, please retry shortly")
		return
	}

	RespondInternal(ctx, message)
}

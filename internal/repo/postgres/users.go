package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/soladu1/Q-A-By-SOL/internal/domain/user"
	"github.com/soladu1/Q-A-By-SOL/internal/observability"
)

var (
	ErrUserNotFound = errors.New("user not found")

	// ErrUserExists covers both unique columns; callers must not reveal which
	// one collided.
	ErrUserExists = errors.New("username or email already exists")
)

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		prom: prom,
	}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := r.observe("users.get_by_email", func() error {
		return r.pool.QueryRow(
			ctx,
			`SELECT userid, username, firstname, lastname, email, password_hash, created_at
	         FROM users
	         WHERE email = $1`,
			email,
		).Scan(
			&u.ID,
			&u.Username,
			&u.FirstName,
			&u.LastName,
			&u.Email,
			&u.PasswordHash,
			&u.CreatedAt,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, ErrUserNotFound
		}

		return user.User{}, err
	}
	return u, nil
}

// ExistsByUsernameOrEmail is the fast-path pre-check used at registration.
// The unique constraints on the table remain the authoritative guard; this
// only exists to give a clean conflict response before hashing a password.
func (r *UsersRepo) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool

	err := r.observe("users.exists_check", func() error {
		return r.pool.QueryRow(ctx, `SELECT EXISTS(
			SELECT 1 FROM users
			WHERE username = $1 OR email = $2
		)`, username, email).Scan(&exists)
	})

	if err != nil {
		return false, err
	}

	return exists, nil
}

// Create inserts the new user; the identifier is assigned here. A concurrent
// registration that slips past the pre-check surfaces as ErrUserExists via the
// unique constraints.
func (r *UsersRepo) Create(ctx context.Context, username, firstname, lastname, email, passwordHash string) (user.User, error) {
	u := user.User{
		ID:           uuid.NewString(),
		Username:     username,
		FirstName:    firstname,
		LastName:     lastname,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	err := r.observe("users.create", func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO users (userid, username, firstname, lastname, email, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			u.ID, u.Username, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.CreatedAt,
		)
		return execErr
	})

	if err != nil {
		var pgErr *pgconn.PgError

		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return user.User{}, ErrUserExists
		}

		return user.User{}, err
	}

	return u, nil
}

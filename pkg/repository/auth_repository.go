package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"railway/pkg/apperr"
	"railway/pkg/models"
)

type AuthRepository interface {
	CreateUser(ctx context.Context, email, hashedPassword string, staff bool) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, string, error)
	GetUserByID(ctx context.Context, id int) (models.User, error)
	UpdateUser(ctx context.Context, id int, email *string, hashedPassword *string) (models.User, error)
	CreateSession(ctx context.Context, userID int, refreshToken, userAgent, ip string, expiresAt time.Time) error
	GetSessionByToken(ctx context.Context, token string) (models.Session, models.User, error)
	UpdateSession(ctx context.Context, sessionID int, oldRefresh, newRefresh string, expiresAt time.Time) error
	DeleteSessionByToken(ctx context.Context, userID int, token string) error
	DeleteAllSessionsByUserID(ctx context.Context, userID int) error
}

type authRepository struct {
	db *sql.DB
}

func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(ctx context.Context, email, hashedPassword string, staff bool) (models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password, is_staff) VALUES ($1, $2, $3)
		 RETURNING id, email, is_staff, created_at`,
		strings.ToLower(email), hashedPassword, staff,
	).Scan(&user.ID, &user.Email, &user.IsStaff, &user.CreatedAt)
	if isUniqueViolation(err) {
		return user, apperr.Invalid("email", "user with this email already exists")
	}
	return user, translate(err, "user")
}

func (r *authRepository) GetUserByEmail(ctx context.Context, email string) (models.User, string, error) {
	var user models.User
	var hashedPw string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, is_staff, password, created_at FROM users WHERE email = $1`,
		strings.ToLower(email),
	).Scan(&user.ID, &user.Email, &user.IsStaff, &hashedPw, &user.CreatedAt)
	return user, hashedPw, translate(err, "user")
}

func (r *authRepository) GetUserByID(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, is_staff, created_at FROM users WHERE id = $1`, id,
	).Scan(&user.ID, &user.Email, &user.IsStaff, &user.CreatedAt)
	return user, translate(err, "user")
}

// UpdateUser changes whichever of email and password hash is non-nil.
func (r *authRepository) UpdateUser(ctx context.Context, id int, email *string, hashedPassword *string) (models.User, error) {
	var lowered *string
	if email != nil {
		e := strings.ToLower(*email)
		lowered = &e
	}

	var user models.User
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET email = COALESCE($1, email), password = COALESCE($2, password)
		 WHERE id = $3
		 RETURNING id, email, is_staff, created_at`,
		lowered, hashedPassword, id,
	).Scan(&user.ID, &user.Email, &user.IsStaff, &user.CreatedAt)
	if isUniqueViolation(err) {
		return user, apperr.Invalid("email", "user with this email already exists")
	}
	return user, translate(err, "user")
}

func (r *authRepository) CreateSession(ctx context.Context, userID int, refreshToken, userAgent, ip string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, refresh_token, user_agent, ip, expires_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		userID, refreshToken, userAgent, ip, expiresAt.UTC(),
	)
	return err
}

func (r *authRepository) GetSessionByToken(ctx context.Context, token string) (models.Session, models.User, error) {
	var session models.Session
	var user models.User
	err := r.db.QueryRowContext(ctx,
		`SELECT s.id, s.user_id, s.expires_at, u.email, u.is_staff, u.created_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.refresh_token = $1`, token,
	).Scan(&session.ID, &session.UserID, &session.ExpiresAt, &user.Email, &user.IsStaff, &user.CreatedAt)
	user.ID = session.UserID
	return session, user, translate(err, "session")
}

// UpdateSession swaps oldRefresh for newRefresh. It is NotFound when the
// session was rotated or removed since oldRefresh was read.
func (r *authRepository) UpdateSession(ctx context.Context, sessionID int, oldRefresh, newRefresh string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET refresh_token = $1, expires_at = $2 WHERE id = $3 AND refresh_token = $4`,
		newRefresh, expiresAt.UTC(), sessionID, oldRefresh,
	)
	if err != nil {
		return err
	}
	return rowsAffected(res, "session")
}

func (r *authRepository) DeleteSessionByToken(ctx context.Context, userID int, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1 AND user_id = $2`, token, userID)
	return err
}

func (r *authRepository) DeleteAllSessionsByUserID(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"scribesnap/internal/entities"
)

// ErrNotFound is returned when a row does not exist or is not visible to the
// caller.
var ErrNotFound = errors.New("not found")

const userColumns = "id, email, password_hash, name, avatar_url, email_verified, created_at, updated_at"

// UserRepository defines the interface for user database operations.
type UserRepository interface {
	Create(email string, passwordHash *string, name *string, verified bool) (*entities.User, error)
	FindByEmail(email string) (*entities.User, error)
	FindByID(id string) (*entities.User, error)
	MarkVerified(id string) error
	UpdatePassword(id, passwordHash string) error
	UpdateProfile(id string, name, avatarURL *string) (*entities.User, error)
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row *sql.Row) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.AvatarURL,
		&user.EmailVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user. Verified is true for OAuth accounts, whose email
// is attested by the provider.
func (r *userRepository) Create(email string, passwordHash *string, name *string, verified bool) (*entities.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, email_verified)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(query, email, passwordHash, name, verified))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindByEmail finds a user by email.
func (r *userRepository) FindByEmail(email string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(query, email))
}

// FindByID finds a user by ID (UUID).
func (r *userRepository) FindByID(id string) (*entities.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(query, id))
}

// MarkVerified flips the email_verified flag after OTP verification.
func (r *userRepository) MarkVerified(id string) error {
	res, err := r.db.Exec(`UPDATE users SET email_verified = TRUE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return requireRow(res)
}

// UpdatePassword replaces the stored password hash.
func (r *userRepository) UpdatePassword(id, passwordHash string) error {
	res, err := r.db.Exec(`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return requireRow(res)
}

// UpdateProfile sets the display name and/or avatar URL. Nil fields are left
// unchanged.
func (r *userRepository) UpdateProfile(id string, name, avatarURL *string) (*entities.User, error) {
	query := `
		UPDATE users
		SET name = COALESCE($2, name),
		    avatar_url = COALESCE($3, avatar_url),
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	return scanUser(r.db.QueryRow(query, id, name, avatarURL))
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

package db

import (
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/roomcast/roomcast/internal/model"
)

const userColumns = `id, email, hashed_password, name, created_at, updated_at`

// CreateUser inserts an operator account and returns its id. These are
// package-level rather than pgStore methods because the JWT middleware
// resolves users before any request-scoped store exists.
func CreateUser(email, hashedPassword string, name *string) (int, error) {
	var id int
	err := DB.QueryRow(`
		INSERT INTO users (email, hashed_password, name, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
		RETURNING id
		`, email, hashedPassword, name).Scan(&id)
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("failed to create user")
		return 0, err
	}
	return id, nil
}

// GetUserByEmail returns sql.ErrNoRows when no account matches.
func GetUserByEmail(email string) (*model.User, error) {
	var u model.User
	err := DB.Get(&u, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1
		`, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Msg("failed to get user by email")
		}
		return nil, err
	}
	return &u, nil
}

// GetUserByID returns sql.ErrNoRows when no account matches.
func GetUserByID(id int) (*model.User, error) {
	var u model.User
	err := DB.Get(&u, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
		`, id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Int("user_id", id).Msg("failed to get user by id")
		}
		return nil, err
	}
	return &u, nil
}

// UpdateUserProfile rewrites an operator's email and display name and
// bumps updated_at. Errors when the account no longer exists.
func UpdateUserProfile(id int, email string, name *string) error {
	res, err := DB.Exec(`
		UPDATE users
		SET email = $2, name = $3, updated_at = now()
		WHERE id = $1
		`, id, email, name)
	if err != nil {
		log.Error().Err(err).Int("user_id", id).Msg("failed to update user profile")
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return errors.New("no such user")
	}
	return nil
}

package repository

import (
	"database/sql"

	entity "book-market/internal/domain"

	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(user *entity.User) error
	GetUserByID(userID uuid.UUID) (*entity.User, error)
	GetUserByUsername(username string) (*entity.User, error)
	ListUsers(limit, offset int) ([]entity.User, error)
	SetUserActive(userID uuid.UUID, active bool) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, email, full_name, password_hash, role, active, created_at, updated_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*entity.User, error) {
	var u entity.User
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.FullName, &u.PasswordHash,
		&u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) CreateUser(user *entity.User) error {
	query := `
		INSERT INTO users (id, username, email, full_name, password_hash, role, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, true, NOW(), NOW())
	`
	_, err := r.db.Exec(query,
		user.ID, user.Username, user.Email, user.FullName, user.PasswordHash, user.Role,
	)
	return err
}

func (r *userRepository) GetUserByID(userID uuid.UUID) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) GetUserByUsername(username string) (*entity.User, error) {
	user, err := scanUser(r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = $1`, username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return user, err
}

func (r *userRepository) ListUsers(limit, offset int) ([]entity.User, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *userRepository) SetUserActive(userID uuid.UUID, active bool) error {
	_, err := r.db.Exec(`UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2`, active, userID)
	return err
}

package userrepo

import (
	"context"
	"errors"

	"github.com/GlebRadaev/tokenwallet/internal/domain"
	"github.com/GlebRadaev/tokenwallet/internal/pg"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	userColumns = "id, username, email, password_hash, role, balance, created_at"

	uniqueViolation       = "23505"
	emailUniqueConstraint = "users_email_key"
)

type Repository struct {
	db pg.Database
}

func New(db pg.Database) *Repository {
	return &Repository{
		db: db,
	}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Role, &user.Balance, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (repo *Repository) findOne(ctx context.Context, msg, query string, args ...any) (*domain.User, error) {
	user, err := scanUser(repo.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		zap.L().Error(msg, zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (repo *Repository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return repo.findOne(ctx, "can't find user by username",
		"SELECT "+userColumns+" FROM users WHERE username = $1", username)
}

func (repo *Repository) FindByID(ctx context.Context, id int) (*domain.User, error) {
	return repo.findOne(ctx, "can't find user by id",
		"SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

// LockByID reads the user row and holds a row lock until the surrounding
// transaction ends. Outside of a transaction the lock is released immediately.
func (repo *Repository) LockByID(ctx context.Context, id int) (*domain.User, error) {
	return repo.findOne(ctx, "can't lock user row",
		"SELECT "+userColumns+" FROM users WHERE id = $1 FOR UPDATE", id)
}

func (repo *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
		INSERT INTO users (username, email, password_hash, role, balance)
		VALUES ($1, $2, $3, $4, 0)
		RETURNING id, created_at
	`
	err := repo.db.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, string(user.Role)).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == emailUniqueConstraint {
				return nil, domain.ErrConflict("Email already exists")
			}
			return nil, domain.ErrConflict("Username already exists")
		}
		zap.L().Error("can't save user", zap.Error(err))
		return nil, err
	}
	user.Balance = 0
	return user, nil
}

func (repo *Repository) UpdateBalance(ctx context.Context, id int, balance int64) error {
	_, err := repo.db.Exec(ctx, "UPDATE users SET balance = $1 WHERE id = $2", balance, id)
	if err != nil {
		zap.L().Error("can't update user balance", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) UpdateRole(ctx context.Context, id int, role domain.Role) error {
	_, err := repo.db.Exec(ctx, "UPDATE users SET role = $1 WHERE id = $2", string(role), id)
	if err != nil {
		zap.L().Error("can't update user role", zap.Error(err))
		return err
	}
	return nil
}

func (repo *Repository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := repo.db.Query(ctx, "SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("can't scan user", zap.Error(err))
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		zap.L().Error("rows iteration error", zap.Error(err))
		return nil, err
	}
	return users, nil
}

// ExistingUsernames reports which of the given usernames are already taken.
func (repo *Repository) ExistingUsernames(ctx context.Context, usernames []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	if len(usernames) == 0 {
		return existing, nil
	}
	rows, err := repo.db.Query(ctx, "SELECT username FROM users WHERE username = ANY($1)", usernames)
	if err != nil {
		zap.L().Error("can't check existing usernames", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			zap.L().Error("can't scan username", zap.Error(err))
			return nil, err
		}
		existing[username] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return existing, nil
}

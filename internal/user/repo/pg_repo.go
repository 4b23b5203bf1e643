package repo

import (
	"context"
	"errors"

	usererrors "github.com/storehub/storehub/internal/user/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for unique constraint violations.
const uniqueViolation = "23505"

// PgRepository implements UserRepository using a PostgreSQL connection pool.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewPgRepository creates a new instance of PgRepository.
func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

const userColumns = `id, name, email, password, created_at, updated_at`

func (p *PgRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, usererrors.ErrFailedToFindUser
	}
	return user, nil
}

func (p *PgRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, usererrors.ErrUserNotFound
		}
		return nil, usererrors.ErrFailedToFindUser
	}
	return user, nil
}

func (p *PgRepository) Create(ctx context.Context, name, email, passwordHash string) (*User, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO users (name, email, password) VALUES ($1, $2, $3) RETURNING `+userColumns,
		name, email, passwordHash)

	user, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, usererrors.ErrEmailTaken
		}
		return nil, usererrors.ErrCreateUser
	}
	return user, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

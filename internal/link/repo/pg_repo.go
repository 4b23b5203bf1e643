package repo

import (
	"context"
	"errors"

	linkerrors "github.com/storehub/storehub/internal/link/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgRepository implements LinkRepository using a PostgreSQL connection pool.
type PgRepository struct {
	db *pgxpool.Pool
}

// NewPgRepository creates a new instance of PgRepository.
func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

const linkColumns = `id, user_id, full_link, short_link, views, created_at, updated_at`

func (p *PgRepository) FindAllByUser(ctx context.Context, userID int64, limit, offset int32) ([]Link, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+linkColumns+` FROM links WHERE user_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`,
		userID, limit, offset)
	if err != nil {
		return nil, linkerrors.ErrFailedToListLinks
	}
	defer rows.Close()
	return collectLinks(rows)
}

func (p *PgRepository) FindByID(ctx context.Context, id int64) (*Link, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM links WHERE id = $1`, id)

	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, linkerrors.ErrLinkNotFound
		}
		return nil, linkerrors.ErrFailedToFindLink
	}
	return link, nil
}

func (p *PgRepository) FindByFullLink(ctx context.Context, fullLink string) (*Link, error) {
	row := p.db.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM links WHERE full_link = $1 ORDER BY id LIMIT 1`, fullLink)

	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, linkerrors.ErrLinkNotFound
		}
		return nil, linkerrors.ErrFailedToFindLink
	}
	return link, nil
}

func (p *PgRepository) SearchByShortLink(ctx context.Context, userID int64, fragment string) ([]Link, error) {
	rows, err := p.db.Query(ctx,
		`SELECT `+linkColumns+` FROM links WHERE user_id = $1 AND short_link LIKE '%' || $2 || '%' ORDER BY id DESC`,
		userID, fragment)
	if err != nil {
		return nil, linkerrors.ErrFailedToListLinks
	}
	defer rows.Close()
	return collectLinks(rows)
}

func (p *PgRepository) Create(ctx context.Context, userID int64, fullLink, shortLink string) (*Link, error) {
	row := p.db.QueryRow(ctx,
		`INSERT INTO links (user_id, full_link, short_link) VALUES ($1, $2, $3) RETURNING `+linkColumns,
		userID, fullLink, shortLink)

	link, err := scanLink(row)
	if err != nil {
		return nil, linkerrors.ErrCreateLink
	}
	return link, nil
}

func (p *PgRepository) Update(ctx context.Context, id int64, fullLink, shortLink string) (*Link, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE links SET full_link = $2, short_link = $3, updated_at = now() WHERE id = $1 RETURNING `+linkColumns,
		id, fullLink, shortLink)

	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, linkerrors.ErrLinkNotFound
		}
		return nil, linkerrors.ErrUpdateLink
	}
	return link, nil
}

func (p *PgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := p.db.Exec(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return linkerrors.ErrDeleteLink
	}
	if tag.RowsAffected() == 0 {
		return linkerrors.ErrLinkNotFound
	}
	return nil
}

func (p *PgRepository) DeleteAllByUser(ctx context.Context, userID int64) ([]string, error) {
	rows, err := p.db.Query(ctx, `DELETE FROM links WHERE user_id = $1 RETURNING short_link`, userID)
	if err != nil {
		return nil, linkerrors.ErrDeleteLink
	}
	defer rows.Close()

	shortLinks := make([]string, 0)
	for rows.Next() {
		var shortLink string
		if err := rows.Scan(&shortLink); err != nil {
			return nil, linkerrors.ErrDeleteLink
		}
		shortLinks = append(shortLinks, shortLink)
	}
	if rows.Err() != nil {
		return nil, linkerrors.ErrDeleteLink
	}
	return shortLinks, nil
}

func (p *PgRepository) IncrementViews(ctx context.Context, shortLink string) (*Link, error) {
	row := p.db.QueryRow(ctx,
		`UPDATE links SET views = views + 1, updated_at = now()
		 WHERE id = (SELECT id FROM links WHERE short_link = $1 ORDER BY id LIMIT 1)
		 RETURNING `+linkColumns,
		shortLink)

	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, linkerrors.ErrLinkNotFound
		}
		return nil, linkerrors.ErrUpdateLink
	}
	return link, nil
}

func (p *PgRepository) BumpViews(ctx context.Context, shortLink string) error {
	_, err := p.db.Exec(ctx,
		`UPDATE links SET views = views + 1, updated_at = now()
		 WHERE id = (SELECT id FROM links WHERE short_link = $1 ORDER BY id LIMIT 1)`,
		shortLink)
	if err != nil {
		return linkerrors.ErrUpdateLink
	}
	return nil
}

func collectLinks(rows pgx.Rows) ([]Link, error) {
	links := make([]Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, linkerrors.ErrFailedToListLinks
		}
		links = append(links, *link)
	}
	if rows.Err() != nil {
		return nil, linkerrors.ErrFailedToListLinks
	}
	return links, nil
}

func scanLink(row pgx.Row) (*Link, error) {
	var link Link
	err := row.Scan(&link.ID, &link.UserID, &link.FullLink, &link.ShortLink, &link.Views, &link.CreatedAt, &link.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &link, nil
}

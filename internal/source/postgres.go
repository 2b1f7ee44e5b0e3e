package source

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CaioVictorMota/whitedwarf/internal/errors"
)

// Options control which files a provider lists and in what order.
type Options struct {
	// SizeOrder is "asc" or "desc", ordering files by size.
	SizeOrder string
	// Limit caps the number of listed files; 0 lists all of them.
	Limit int
	// Offset skips the first files of the listing.
	Offset int
}

// Queries are the three statements the Postgres provider runs. Deployments
// with a diverging schema adjust these through the configuration.
type Queries struct {
	// FileType resolves the id of the PGDASD file type. One row, one
	// bigint column.
	FileType string
	// Main lists the ids of the files of one type, ordered by size.
	// One bigint parameter (the type id); the provider appends the
	// direction, limit and offset.
	Main string
	// Extract fetches one file. One bigint parameter (the file id);
	// returns the content bytes and the file name.
	Extract string
}

// Postgres fetches source files straight out of the file store database.
type Postgres struct {
	pool    *pgxpool.Pool
	queries Queries
	opts    Options
}

// NewPostgres creates a provider on top of an established connection pool.
func NewPostgres(pool *pgxpool.Pool, queries Queries, opts Options) *Postgres {
	return &Postgres{
		pool:    pool,
		queries: queries,
		opts:    opts,
	}
}

// List resolves the PGDASD type id and returns the ordered file ids.
func (p *Postgres) List(ctx context.Context) ([]string, error) {
	var typeID int64
	if err := p.pool.QueryRow(ctx, p.queries.FileType).Scan(&typeID); err != nil {
		return nil, errors.Wrap(err, "resolving PGDASD file type")
	}

	query := fmt.Sprintf("%s %s", p.queries.Main, p.opts.SizeOrder)
	if p.opts.Limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, p.opts.Limit)
	}
	if p.opts.Offset > 0 {
		query = fmt.Sprintf("%s OFFSET %d", query, p.opts.Offset)
	}

	rows, err := p.pool.Query(ctx, query, typeID)
	if err != nil {
		return nil, errors.Wrap(err, "listing source files")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning file id")
		}
		ids = append(ids, strconv.FormatInt(id, 10))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "listing source files")
	}
	return ids, nil
}

// Fetch downloads one file's name and content.
func (p *Postgres) Fetch(ctx context.Context, id string) (string, io.ReadCloser, error) {
	fileID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return "", nil, errors.Wrapf(err, "invalid file id %q", id)
	}

	var content []byte
	var name string
	err = p.pool.QueryRow(ctx, p.queries.Extract, fileID).Scan(&content, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, errors.Wrapf(errors.ErrFileNotFound, "file id %s", id)
		}
		return "", nil, errors.Wrapf(errors.ErrFetchFailed, "file id %s: %v", id, err)
	}

	return name, io.NopCloser(bytes.NewReader(content)), nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mzton/vantage/internal/contextkeys"
	"github.com/mzton/vantage/internal/core/domain"
	"github.com/mzton/vantage/internal/core/port"
)

const listingColumns = `l.id, l.title, l.price, l.currency, l.description, l.address, l.image_url,
	l.bedrooms, l.bathrooms, l.square_feet, l.latitude, l.longitude, l.property_type`

const createListingsTable = `
	CREATE TABLE IF NOT EXISTS listings (
		position      BIGSERIAL PRIMARY KEY,
		id            TEXT NOT NULL UNIQUE,
		title         TEXT NOT NULL,
		price         DOUBLE PRECISION NOT NULL,
		currency      TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		address       TEXT NOT NULL DEFAULT '',
		image_url     TEXT NOT NULL DEFAULT '',
		bedrooms      INTEGER NOT NULL,
		bathrooms     DOUBLE PRECISION NOT NULL,
		square_feet   DOUBLE PRECISION NOT NULL,
		latitude      DOUBLE PRECISION NOT NULL CHECK (latitude BETWEEN -90 AND 90),
		longitude     DOUBLE PRECISION NOT NULL CHECK (longitude BETWEEN -180 AND 180),
		property_type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS listings_lat_lng_idx ON listings (latitude, longitude);
`

// ListingRepository reads listings from PostgreSQL. Rows come back in insertion order.
type ListingRepository struct {
	pool *pgxpool.Pool
}

func NewListingRepository(pool *pgxpool.Pool) (*ListingRepository, error) {
	if pool == nil {
		return nil, fmt.Errorf("pgxpool.Pool cannot be nil")
	}
	return &ListingRepository{pool: pool}, nil
}

// EnsureSchema creates the listings table when it is missing.
func (r *ListingRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, createListingsTable); err != nil {
		return fmt.Errorf("failed to create listings table: %w", err)
	}
	return nil
}

// SeedIfEmpty copies listings into an empty table. Listings with invalid coordinates are skipped.
func (r *ListingRepository) SeedIfEmpty(ctx context.Context, listings []domain.Listing) (int64, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "PostgresListingRepository"})

	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM listings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	if count > 0 {
		logger.Debug("Listings table already seeded", port.Fields{"count": count})
		return 0, nil
	}

	kept, dropped := domain.FilterPlaceable(listings)
	for _, l := range dropped {
		logger.Warn("Listing has invalid coordinates, skipping", port.Fields{"listing_id": l.ID})
	}

	rows := make([][]interface{}, 0, len(kept))
	for _, l := range kept {
		rows = append(rows, []interface{}{
			l.ID, l.Title, l.Price, l.Currency, l.Description, l.Address, l.ImageURL,
			l.Bedrooms, l.Bathrooms, l.SquareFeet, l.Latitude, l.Longitude, string(l.PropertyType),
		})
	}

	copied, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"listings"},
		[]string{"id", "title", "price", "currency", "description", "address", "image_url",
			"bedrooms", "bathrooms", "square_feet", "latitude", "longitude", "property_type"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to copy listings: %w", err)
	}
	logger.Info("Listings table seeded", port.Fields{"count": copied})
	return copied, nil
}

func scanListing(row pgx.Row) (domain.Listing, error) {
	var l domain.Listing
	var propertyType string
	err := row.Scan(
		&l.ID, &l.Title, &l.Price, &l.Currency, &l.Description, &l.Address, &l.ImageURL,
		&l.Bedrooms, &l.Bathrooms, &l.SquareFeet, &l.Latitude, &l.Longitude, &propertyType,
	)
	l.PropertyType = domain.PropertyType(propertyType)
	return l, err
}

func (r *ListingRepository) query(ctx context.Context, sql string, args ...interface{}) ([]domain.Listing, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *ListingRepository) FindAll(ctx context.Context) ([]domain.Listing, error) {
	return r.query(ctx, fmt.Sprintf(`SELECT %s FROM listings l ORDER BY l.position`, listingColumns))
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (domain.Listing, bool, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`SELECT %s FROM listings l WHERE l.id = $1`, listingColumns), id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Listing{}, false, nil
		}
		return domain.Listing{}, false, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return l, true, nil
}

func (r *ListingRepository) FindByBounds(ctx context.Context, bounds domain.Bounds) ([]domain.Listing, error) {
	qb := newQueryBuilder()
	qb.AddBoundsFilter(&bounds)
	whereClause, args := qb.build()
	return r.query(ctx, fmt.Sprintf(`SELECT %s FROM listings l %s ORDER BY l.position`, listingColumns, whereClause), args...)
}

func (r *ListingRepository) FindNearby(ctx context.Context, lat, lng, radiusKm float64) ([]domain.Listing, error) {
	qb := newQueryBuilder()
	qb.AddRadiusPrefilter(lat, lng, radiusKm)
	whereClause, args := qb.build()

	candidates, err := r.query(ctx, fmt.Sprintf(`SELECT %s FROM listings l %s ORDER BY l.position`, listingColumns, whereClause), args...)
	if err != nil {
		return nil, err
	}
	return domain.FilterNearby(candidates, lat, lng, radiusKm), nil
}

func (r *ListingRepository) Search(ctx context.Context, q domain.SearchQuery) (domain.SearchResult, error) {
	whereClause, args := applySearch(q)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM listings l %s`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return domain.SearchResult{}, fmt.Errorf("failed to count search results: %w", err)
	}

	limit, offset := q.Page()
	if offset >= total {
		return domain.SearchResult{Listings: []domain.Listing{}, Total: total, HasMore: false}, nil
	}

	pageArgs := append(args, limit, offset)
	pageQuery := fmt.Sprintf(`SELECT %s FROM listings l %s ORDER BY l.position LIMIT $%d OFFSET $%d`,
		listingColumns, whereClause, len(args)+1, len(args)+2)
	listings, err := r.query(ctx, pageQuery, pageArgs...)
	if err != nil {
		return domain.SearchResult{}, err
	}

	return domain.SearchResult{
		Listings: listings,
		Total:    total,
		HasMore:  offset+len(listings) < total,
	}, nil
}

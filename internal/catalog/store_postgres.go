package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/nijidex/internal/platform/dberr"
)

// workSelectColumns is the shared projection for work rows. Array columns
// are coalesced to empty arrays so NULL scans stay uniform.
const workSelectColumns = `
	w.id, w.circle_id, c.name, w.title, w.genre, w.category, w.release_date,
	w.dlsite_product_id, w.dlsite_url, w.fanza_product_id, w.fanza_url,
	w.thumbnail_url, w.sample_images,
	w.price_dlsite, w.price_fanza,
	w.discount_rate_dlsite, w.discount_rate_fanza,
	w.sale_end_date_dlsite, w.sale_end_date_fanza,
	w.dlsite_rank, w.fanza_rank,
	w.rating_dlsite, w.rating_fanza,
	w.review_count_dlsite, w.review_count_fanza,
	COALESCE(w.cv_names, '{}'), COALESCE(w.ai_tags, '{}'),
	w.duration_minutes, w.cg_count,
	w.is_available`

type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (store *PostgresStore) ListWorkRows(ctx context.Context) ([]WorkRow, error) {
	query := `
		SELECT ` + workSelectColumns + `
		FROM works w
		LEFT JOIN circles c ON w.circle_id = c.id
		ORDER BY w.release_date DESC NULLS LAST, w.id DESC`

	rows, err := store.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_work_rows")
	}
	defer rows.Close()

	workRows := make([]WorkRow, 0, 1024)
	for rows.Next() {
		var r WorkRow
		err := rows.Scan(
			&r.ID, &r.CircleID, &r.CircleName, &r.Title, &r.Genre, &r.Category, &r.ReleaseDate,
			&r.DLsiteProductID, &r.DLsiteURL, &r.FanzaProductID, &r.FanzaURL,
			&r.ThumbnailURL, &r.SampleImages,
			&r.PriceDLsite, &r.PriceFanza,
			&r.DiscountRateDLsite, &r.DiscountRateFanza,
			&r.SaleEndDLsite, &r.SaleEndFanza,
			&r.RankDLsite, &r.RankFanza,
			&r.RatingDLsite, &r.RatingFanza,
			&r.ReviewCountDLsite, &r.ReviewCountFanza,
			&r.CastNames, &r.Tags,
			&r.DurationMinutes, &r.CGCount,
			&r.Available,
		)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_work_row")
		}
		workRows = append(workRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_work_rows")
	}

	return workRows, nil
}

func (store *PostgresStore) ListCircles(ctx context.Context) ([]Circle, error) {
	query := `
		SELECT
			c.id, c.name,
			COALESCE(c.dlsite_id, ''), COALESCE(c.fanza_id, ''), COALESCE(c.main_genre, ''),
			COUNT(w.id)::int AS work_count
		FROM circles c
		LEFT JOIN works w ON c.id = w.circle_id AND w.is_available = true
		GROUP BY c.id
		HAVING COUNT(w.id) > 0
		ORDER BY work_count DESC, c.name ASC`

	rows, err := store.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_circles")
	}
	defer rows.Close()

	circles := make([]Circle, 0)
	for rows.Next() {
		var c Circle
		if err := rows.Scan(&c.ID, &c.Name, &c.DLsiteID, &c.FanzaID, &c.MainGenre, &c.WorkCount); err != nil {
			return nil, dberr.Wrap(err, "scan_circle")
		}
		circles = append(circles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "iterate_circles")
	}

	return circles, nil
}

func (store *PostgresStore) ListCastNames(ctx context.Context) ([]NameCount, error) {
	query := `
		SELECT unnest(cv_names) AS name, COUNT(*)::int AS work_count
		FROM works
		WHERE is_available = true AND cv_names IS NOT NULL
		GROUP BY name
		ORDER BY work_count DESC, name ASC`

	return store.listNameCounts(ctx, query, "list_cast_names")
}

func (store *PostgresStore) ListTagNames(ctx context.Context) ([]NameCount, error) {
	query := `
		SELECT unnest(ai_tags) AS name, COUNT(*)::int AS work_count
		FROM works
		WHERE is_available = true AND ai_tags IS NOT NULL
		GROUP BY name
		ORDER BY work_count DESC, name ASC`

	return store.listNameCounts(ctx, query, "list_tag_names")
}

func (store *PostgresStore) listNameCounts(ctx context.Context, query, action string) ([]NameCount, error) {
	rows, err := store.db.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	counts := make([]NameCount, 0)
	for rows.Next() {
		var nc NameCount
		if err := rows.Scan(&nc.Name, &nc.WorkCount); err != nil {
			return nil, dberr.Wrap(err, "scan_name_count")
		}
		counts = append(counts, nc)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, action)
	}

	return counts, nil
}

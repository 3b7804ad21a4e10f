package catalog

import "context"

// # Catalog Data Access

// Circle is one publishing circle with its available-work count.
type Circle struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	DLsiteID  string `json:"dlsiteId,omitempty"`
	FanzaID   string `json:"fanzaId,omitempty"`
	MainGenre string `json:"mainGenre,omitempty"`
	WorkCount int    `json:"workCount"`
}

// NameCount is an aggregated dimension value (cast name or tag) with the
// number of available works carrying it.
type NameCount struct {
	Name      string `json:"name"`
	WorkCount int    `json:"workCount"`
}

// Store defines the read-only query contract against the source relational
// store. Every method is side-effect free; the engine never writes.
type Store interface {

	/*
		ListWorkRows returns one raw row per work, available or not, in
		canonical order (release date descending, nulls last, id descending).

		Returns:
		  - []WorkRow: Raw rows for the normalizer
		  - error: Query or scan failures (fatal to the run)
	*/
	ListWorkRows(ctx context.Context) ([]WorkRow, error)

	/*
		ListCircles returns all circles joined with their available-work
		counts, most prolific first.
	*/
	ListCircles(ctx context.Context) ([]Circle, error)

	/*
		ListCastNames returns the distinct cast names across available works
		with per-name work counts, most frequent first.
	*/
	ListCastNames(ctx context.Context) ([]NameCount, error)

	/*
		ListTagNames returns the distinct tags across available works with
		per-tag work counts, most frequent first.
	*/
	ListTagNames(ctx context.Context) ([]NameCount, error)
}

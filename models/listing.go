package models

import "time"

// Listing is one candidate product offer from one marketplace, post-extraction.
// URL is the stable identity key used by both the query cache and the price
// tracker.
type Listing struct {
	Title    string            `json:"title"`
	Price    float64           `json:"price"`
	Currency string            `json:"currency"`
	Source   string            `json:"source"`
	URL      string            `json:"url"`
	Score    float64           `json:"score"`
	Trend    string            `json:"trend,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// PricePoint is one daily price sample for a tracked item.
type PricePoint struct {
	Date  string  `json:"date"` // calendar day, YYYY-MM-DD
	Price float64 `json:"price"`
}

// TrackedItem is the per-URL price history record. History is append-only
// with at most one point per calendar day.
type TrackedItem struct {
	Title    string       `json:"title"`
	URL      string       `json:"url"`
	Currency string       `json:"currency"`
	Source   string       `json:"source"`
	History  []PricePoint `json:"history"`
}

// CacheEntry is the persisted value for one normalized query: the ranked
// top-N listings plus the time they were stored. Entries have no expiry —
// a stale hit is valid until the next successful re-scrape overwrites it.
type CacheEntry struct {
	Query    string     `json:"query"`
	Results  []*Listing `json:"results"`
	StoredAt time.Time  `json:"stored_at"`
}

// InteractionRecord is one conversational turn in the append-only log.
type InteractionRecord struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"` // "user" or "assistant"
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Purchase is one entry in a profile's purchase history.
type Purchase struct {
	ProductName  string  `json:"product_name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	PurchaseDate string  `json:"purchase_date"`
}

// UserProfile holds the preference data the agent folds into its prompts.
// The core aggregation/tracking logic never mutates it.
type UserProfile struct {
	Name            string     `json:"name"`
	BudgetRange     string     `json:"budget_range"`
	Purpose         string     `json:"purpose"`
	LikedBrands     []string   `json:"liked_brands"`
	DislikedBrands  []string   `json:"disliked_brands"`
	PurchaseHistory []Purchase `json:"purchase_history"`
}

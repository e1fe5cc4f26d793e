package model

// SearchResult is one listing shaped for the result card UI. Created per
// response, never persisted.
type SearchResult struct {
	ID    string `json:"id"`
	AdID  string `json:"ad_id,omitempty"`
	Title string `json:"title"`
	// Description is truncated for the card preview.
	Description string   `json:"description"`
	Price       *float64 `json:"price,omitempty"`
	Currency    string   `json:"currency"`
	// Location is the display string "City, Area".
	Location   string   `json:"location"`
	Categories []string `json:"categories"`
	Surface    string   `json:"surface,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Date       string   `json:"date,omitempty"`
	Images     []string `json:"images"`
	ImageCount int      `json:"image_count"`
	Source     string   `json:"source,omitempty"`
	URL        string   `json:"url,omitempty"`
	// Score is the relevance indicator for the UI, always in 0..100.
	Score      int    `json:"score"`
	IsAgency   bool   `json:"is_agency"`
	SellerType string `json:"seller_type"`
}

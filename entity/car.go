package entity

// Car is a catalog vehicle snapshot, consumed read-only by the chat and
// checkout flows.
type Car struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Year     int     `json:"year"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
}

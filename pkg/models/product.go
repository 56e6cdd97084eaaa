package models

// Product is a catalog entry from the product-search demo subsystem.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	ImageURL    string   `json:"imageUrl"`
	Tags        []string `json:"tags,omitempty"`
}

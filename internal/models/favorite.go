package models

import "strconv"

// FavoriteRecord is the denormalized row persisted for a favorite toggle.
type FavoriteRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	ProductType string  `json:"product_type"`
	Price       float64 `json:"price"`
	IsFavorite  bool    `json:"is_favorite"`
	ImageURL    string  `json:"image_url,omitempty"`
	Rating      float64 `json:"rating"`
}

// NewFavoriteRecord snapshots p with the given favorite state.
func NewFavoriteRecord(p *Product, isFavorite bool) FavoriteRecord {
	img, _ := p.ImageURL()
	return FavoriteRecord{
		ID:          p.ID(),
		Name:        p.Name(),
		ProductType: p.Type(),
		Price:       p.Price(),
		IsFavorite:  isFavorite,
		ImageURL:    img,
		Rating:      p.Rating(),
	}
}

// ToProduct rebuilds a Product from the persisted columns.
func (r FavoriteRecord) ToProduct() *Product {
	src := Source{
		ID:       FlexID(r.ID),
		Name:     r.Name,
		Type:     r.ProductType,
		ImageURL: r.ImageURL,
	}
	if r.Price > 0 {
		src.Price = FlexText(strconv.FormatFloat(r.Price, 'f', -1, 64))
	}
	if r.Rating > 0 {
		rating := r.Rating
		src.Rating = &rating
	}
	p := NewProduct(src)
	p.SetFavorite(r.IsFavorite)
	return p
}

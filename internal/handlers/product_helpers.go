package handlers

import (
	"strings"

	"afrizone/internal/models"
	"afrizone/internal/store"
)

type originRequest struct {
	Country string `json:"country" binding:"required"`
	Region  string `json:"region"`
}

// productRequest is the full set of admin-editable fields. Price and Stock
// are pointers so an explicit 0 passes "required".
type productRequest struct {
	Name        string        `json:"name" binding:"required"`
	Description string        `json:"description" binding:"required"`
	Price       *float64      `json:"price" binding:"required,min=0"`
	Category    string        `json:"category" binding:"required,oneof=food beverage textile beauty art"`
	Origin      originRequest `json:"origin"`
	Images      []string      `json:"images"`
	Stock       *int          `json:"stock" binding:"required,min=0"`
}

func (r productRequest) toFields() store.ProductFields {
	images := make([]string, 0, len(r.Images))
	for _, img := range r.Images {
		if trimmed := strings.TrimSpace(img); trimmed != "" {
			images = append(images, trimmed)
		}
	}

	return store.ProductFields{
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Category:    models.Category(r.Category),
		Origin:      models.Origin{Country: strings.TrimSpace(r.Origin.Country), Region: strings.TrimSpace(r.Origin.Region)},
		Images:      images,
		Stock:       *r.Stock,
	}
}

type reviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

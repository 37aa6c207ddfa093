package models

// Category is the closed set of product families sold in the catalog.
type Category string

const (
	CategoryFood     Category = "food"
	CategoryBeverage Category = "beverage"
	CategoryTextile  Category = "textile"
	CategoryBeauty   Category = "beauty"
	CategoryArt      Category = "art"
)

// CategoryAll is the listing filter value that disables category filtering.
const CategoryAll = "all"

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFood,
	CategoryBeverage,
	CategoryTextile,
	CategoryBeauty,
	CategoryArt,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategoryCount is the number of visible products in one category.
type CategoryCount struct {
	Name  Category `json:"name"`
	Count int64    `json:"count"`
}

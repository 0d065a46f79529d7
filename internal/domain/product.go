package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"pName" bson:"pName"`
	Description string             `json:"pDescription" bson:"pDescription"`
	Price       float64            `json:"pPrice" bson:"pPrice"`
	Sold        int                `json:"pSold" bson:"pSold"`
	Quantity    int                `json:"pQuantity" bson:"pQuantity"`
	CategoryID  primitive.ObjectID `json:"-" bson:"pCategory"`
	Category    *CategoryRef       `json:"pCategory,omitempty" bson:"-"`
	Images      []string           `json:"pImages" bson:"pImages"`
	Offer       string             `json:"pOffer" bson:"pOffer"`
	Status      string             `json:"pStatus" bson:"pStatus"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// ProductFilter narrows a product listing. Zero-valued fields do not filter.
type ProductFilter struct {
	Title      string
	CategoryID primitive.ObjectID
	MinPrice   *float64
	MaxPrice   *float64
}

// IsEmpty reports whether the filter matches every product.
func (f ProductFilter) IsEmpty() bool {
	return f.Title == "" && f.CategoryID.IsZero() && f.MinPrice == nil && f.MaxPrice == nil
}

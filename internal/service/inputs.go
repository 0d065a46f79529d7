package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

type CategoryInput struct {
	Name        string `json:"cName" validate:"required,max=255"`
	Description string `json:"cDescription" validate:"required,max=3000"`
	Image       string `json:"cImage" validate:"required"`
	Status      string `json:"cStatus" validate:"required,oneof=Active Disabled"`
}

type CategoryUpdate struct {
	ID          string `json:"cId" validate:"required"`
	Description string `json:"cDescription" validate:"required,max=3000"`
	Status      string `json:"cStatus" validate:"required,oneof=Active Disabled"`
}

type ProductInput struct {
	Name        string   `json:"pName" validate:"required,max=255"`
	Description string   `json:"pDescription" validate:"required,max=3000"`
	Price       float64  `json:"pPrice" validate:"gt=0"`
	Quantity    int      `json:"pQuantity" validate:"gte=0"`
	CategoryID  string   `json:"pCategory" validate:"required"`
	Images      []string `json:"pImages" validate:"min=2,dive,required"`
	Offer       string   `json:"pOffer"`
	Status      string   `json:"pStatus" validate:"required,oneof=Active Disabled"`
}

// ProductUpdate replaces every mutable field. Images are kept when none are
// supplied.
type ProductUpdate struct {
	ID          string   `json:"pId" validate:"required"`
	Name        string   `json:"pName" validate:"required,max=255"`
	Description string   `json:"pDescription" validate:"required,max=3000"`
	Price       float64  `json:"pPrice" validate:"gt=0"`
	Quantity    int      `json:"pQuantity" validate:"gte=0"`
	CategoryID  string   `json:"pCategory" validate:"required"`
	Images      []string `json:"pImages" validate:"omitempty,min=2,dive,required"`
	Offer       string   `json:"pOffer"`
	Status      string   `json:"pStatus" validate:"required,oneof=Active Disabled"`
}

type SlideInput struct {
	Image string `json:"image" validate:"required"`
}

// FilterParams carries raw search-filter parameters as received from a
// query string.
type FilterParams struct {
	Title    string
	Category string
	MinPrice string
	MaxPrice string
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

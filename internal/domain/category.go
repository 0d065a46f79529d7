package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive   = "Active"
	StatusDisabled = "Disabled"
)

type Category struct {
	ID          primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name        string             `json:"cName" bson:"cName"`
	Description string             `json:"cDescription" bson:"cDescription"`
	Image       string             `json:"cImage" bson:"cImage"`
	Status      string             `json:"cStatus" bson:"cStatus"`
	CreatedAt   time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// CategoryRef is the populated form of a product's category reference.
type CategoryRef struct {
	ID   primitive.ObjectID `json:"_id"`
	Name string             `json:"cName,omitempty"`
}

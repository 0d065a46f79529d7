package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SlideImage is one image of the home page slider.
type SlideImage struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Image     string             `json:"slideImage" bson:"slideImage"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

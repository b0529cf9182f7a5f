package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Author    string             `bson:"author" json:"author"`
	Rating    int                `bson:"rating" json:"rating"`
	Body      string             `bson:"body,omitempty" json:"body,omitempty"`
	Approved  bool               `bson:"approved" json:"approved"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

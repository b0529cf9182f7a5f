package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoleAssignment is a pending role grant for an email that has not registered
// yet. Consumed (and marked so) on first registration with that email.
type RoleAssignment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email      string             `bson:"email" json:"email"`
	Role       Role               `bson:"role" json:"role"`
	AssignedBy string             `bson:"assignedBy" json:"assignedBy"`
	Consumed   bool               `bson:"consumed" json:"consumed"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

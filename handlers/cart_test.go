package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCartLinePull(t *testing.T) {
	id := primitive.NewObjectID()

	assert.Equal(t, bson.M{"productId": id, "unitId": "silver-7"}, cartLinePull(id, "silver-7"))

	// the default line must not match the product's variant lines
	assert.Equal(t,
		bson.M{"productId": id, "unitId": bson.M{"$in": bson.A{nil, ""}}},
		cartLinePull(id, ""))
}

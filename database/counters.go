package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nanorand/nanorand"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NextOrderNumber mints a unique human-readable order number of the form
// ORD-<unixMillis>-<4-digit-sequence>. The sequence comes from an atomic
// $inc on a counter document, so concurrent checkouts cannot collide even
// when they land on the same millisecond.
func NextOrderNumber(ctx context.Context) (string, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}

	err := DB.Collection("counters").FindOneAndUpdate(
		ctx,
		bson.M{"_id": "orderNumber"},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ORD-%d-%04d", time.Now().UnixMilli(), counter.Seq%10000), nil
}

// NextCustomOrderNumber mints a CO-<last6ofMillis>-<6-char-random> number for
// bespoke order submissions.
func NextCustomOrderNumber() (string, error) {
	suffix, err := nanorand.Gen(6)
	if err != nil {
		return "", err
	}
	millis := fmt.Sprintf("%d", time.Now().UnixMilli())
	return fmt.Sprintf("CO-%s-%s", millis[len(millis)-6:], suffix), nil
}

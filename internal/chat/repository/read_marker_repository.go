package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jobboard_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReadMarkerRepository per (conversation, user) watermark
type ReadMarkerRepository interface {
	// Advance 以 $max 更新, 回傳更新後的 marker (永不倒退)
	Advance(ctx context.Context, conversationID, userID string, seq int64) (int64, error)
	Get(ctx context.Context, conversationID, userID string) (int64, error)
}

type mongoReadMarkerRepository struct {
	coll *mongo.Collection
}

// NewMongoReadMarkerRepository create a ReadMarkerRepository
func NewMongoReadMarkerRepository(db *mongo.Database) ReadMarkerRepository {
	return &mongoReadMarkerRepository{
		coll: db.Collection("read_markers"),
	}
}

// EnsureReadMarkerIndexes one marker per (conversation, user)
func EnsureReadMarkerIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("read_markers").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (r *mongoReadMarkerRepository) Advance(ctx context.Context, conversationID, userID string, seq int64) (int64, error) {
	filter := bson.M{"conversation_id": conversationID, "user_id": userID}
	update := bson.M{
		"$max": bson.M{"seq": seq},
		"$set": bson.M{"updated_at": time.Now().UnixMilli()},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var marker domain.ReadMarker
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		err = r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&marker)
		if err == nil {
			return marker.Seq, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	return 0, fmt.Errorf("advance read marker %s/%s: %w", conversationID, userID, err)
}

func (r *mongoReadMarkerRepository) Get(ctx context.Context, conversationID, userID string) (int64, error) {
	var marker domain.ReadMarker
	err := r.coll.FindOne(ctx, bson.M{"conversation_id": conversationID, "user_id": userID}).Decode(&marker)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return marker.Seq, nil
}

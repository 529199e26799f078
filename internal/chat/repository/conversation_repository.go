package repository

import (
	"context"
	"errors"
	"fmt"

	"jobboard_chat_service/internal/chat/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConversationRepository definition conversation storage
type ConversationRepository interface {
	Create(ctx context.Context, conv *domain.Conversation) error
	FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error)
	UpdateStatus(ctx context.Context, conversationID string, status domain.ConversationStatus) error
	FindByParticipant(ctx context.Context, memberID string) ([]domain.Conversation, error)
}

type mongoConversationRepository struct {
	coll *mongo.Collection
}

// NewMongoConversationRepository create new mongo conversation repository
func NewMongoConversationRepository(db *mongo.Database) ConversationRepository {
	return &mongoConversationRepository{
		coll: db.Collection("conversations"),
	}
}

// EnsureConversationIndexes participant lookups for the unread badge
func EnsureConversationIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("conversations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "applicant_id", Value: 1}}},
		{Keys: bson.D{{Key: "counterpart_id", Value: 1}}},
	})
	return err
}

// Create insert a conversation, ErrConversationExists when _id is taken
func (r *mongoConversationRepository) Create(ctx context.Context, conv *domain.Conversation) error {
	_, err := r.coll.InsertOne(ctx, conv)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrConversationExists
	}
	return err
}

// FindByID find conversation by job application id
func (r *mongoConversationRepository) FindByID(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var conv domain.Conversation
	err := r.coll.FindOne(ctx, bson.M{"_id": conversationID}).Decode(&conv)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find conversation %s: %w", conversationID, err)
	}
	return &conv, nil
}

// UpdateStatus status 是唯一可變欄位
func (r *mongoConversationRepository) UpdateStatus(ctx context.Context, conversationID string, status domain.ConversationStatus) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": conversationID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("update conversation %s: %w", conversationID, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// FindByParticipant conversations where memberID is applicant or counterpart
func (r *mongoConversationRepository) FindByParticipant(ctx context.Context, memberID string) ([]domain.Conversation, error) {
	filter := bson.M{"$or": []bson.M{
		{"applicant_id": memberID},
		{"counterpart_id": memberID},
	}}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var convs []domain.Conversation
	if err := cur.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

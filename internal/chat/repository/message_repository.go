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

// MessageRepository definition message storage
type MessageRepository interface {
	// NextSequence 原子遞增 conversation 的 seq, 並回傳不小於上一則的 created_at
	NextSequence(ctx context.Context, conversationID string, now int64) (seq int64, createdAt int64, err error)
	// ReleaseSequence 插入失敗時歸還 seq, 只有 counter 仍停在 seq 才會退回
	ReleaseSequence(ctx context.Context, conversationID string, seq int64) (bool, error)
	Insert(ctx context.Context, msg *domain.ChatMessage) error
	// FindPage seq 由小到大
	FindPage(ctx context.Context, conversationID string, skip, limit int64) ([]domain.ChatMessage, error)
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
	LatestSequence(ctx context.Context, conversationID string) (int64, error)
	CountUnread(ctx context.Context, conversationID, recipientID string, afterSeq int64) (int64, error)
	MarkReadUpTo(ctx context.Context, conversationID, recipientID string, uptoSeq int64) error
	FindAll(ctx context.Context, conversationID string) ([]domain.ChatMessage, error)
}

type chatMessageRepository struct {
	coll     *mongo.Collection
	counters *mongo.Collection
}

// NewMongoChatMessageRepository create a MessageRepository
func NewMongoChatMessageRepository(db *mongo.Database) MessageRepository {
	return &chatMessageRepository{
		coll:     db.Collection("chat_messages"),
		counters: db.Collection("conversation_counters"),
	}
}

// EnsureMessageIndexes (conversation_id, seq) 唯一, 跨節點時保證 seq 不重複
func EnsureMessageIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("chat_messages").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "seq", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "conversation_id", Value: 1}, {Key: "recipient_id", Value: 1}, {Key: "seq", Value: 1}},
		},
	})
	return err
}

type counterDoc struct {
	Seq           int64 `bson:"seq"`
	LastCreatedAt int64 `bson:"last_created_at"`
}

func (r *chatMessageRepository) NextSequence(ctx context.Context, conversationID string, now int64) (int64, int64, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "seq", Value: bson.D{{Key: "$add", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$seq", 0}}}, 1,
			}}}},
			{Key: "last_created_at", Value: bson.D{{Key: "$max", Value: bson.A{
				bson.D{{Key: "$ifNull", Value: bson.A{"$last_created_at", 0}}}, now,
			}}}},
		}}},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc counterDoc
	var err error
	// 兩個 upsert 同時建立 counter 時其中一個會撞 duplicate key, 重試即可
	for attempt := 0; attempt < 3; attempt++ {
		err = r.counters.FindOneAndUpdate(ctx, bson.M{"_id": conversationID}, update, opts).Decode(&doc)
		if err == nil {
			return doc.Seq, doc.LastCreatedAt, nil
		}
		if !mongo.IsDuplicateKeyError(err) {
			break
		}
	}
	return 0, 0, fmt.Errorf("next sequence %s: %w", conversationID, err)
}

func (r *chatMessageRepository) ReleaseSequence(ctx context.Context, conversationID string, seq int64) (bool, error) {
	res, err := r.counters.UpdateOne(ctx,
		bson.M{"_id": conversationID, "seq": seq},
		bson.M{"$inc": bson.M{"seq": -1}},
	)
	if err != nil {
		return false, fmt.Errorf("release sequence %s#%d: %w", conversationID, seq, err)
	}
	return res.ModifiedCount == 1, nil
}

// Insert 寫入一筆聊天訊息
func (r *chatMessageRepository) Insert(ctx context.Context, msg *domain.ChatMessage) error {
	if _, err := r.coll.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("insert message %s#%d: %w", msg.ConversationID, msg.Seq, err)
	}
	return nil
}

func (r *chatMessageRepository) FindPage(ctx context.Context, conversationID string, skip, limit int64) ([]domain.ChatMessage, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)
	return r.find(ctx, bson.M{"conversation_id": conversationID}, opts)
}

func (r *chatMessageRepository) FindAll(ctx context.Context, conversationID string) ([]domain.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
	return r.find(ctx, bson.M{"conversation_id": conversationID}, opts)
}

func (r *chatMessageRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.ChatMessage, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	messages := make([]domain.ChatMessage, 0)
	if err := cur.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("cursor All error: %w", err)
	}
	return messages, nil
}

func (r *chatMessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"conversation_id": conversationID})
}

func (r *chatMessageRepository) LatestSequence(ctx context.Context, conversationID string) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetProjection(bson.M{"seq": 1})

	var msg domain.ChatMessage
	err := r.coll.FindOne(ctx, bson.M{"conversation_id": conversationID}, opts).Decode(&msg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return msg.Seq, nil
}

func (r *chatMessageRepository) CountUnread(ctx context.Context, conversationID, recipientID string, afterSeq int64) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{
		"conversation_id": conversationID,
		"recipient_id":    recipientID,
		"seq":             bson.M{"$gt": afterSeq},
	})
}

// MarkReadUpTo read flag 只會由 false 變 true
func (r *chatMessageRepository) MarkReadUpTo(ctx context.Context, conversationID, recipientID string, uptoSeq int64) error {
	_, err := r.coll.UpdateMany(ctx,
		bson.M{
			"conversation_id": conversationID,
			"recipient_id":    recipientID,
			"seq":             bson.M{"$lte": uptoSeq},
			"read":            false,
		},
		bson.M{"$set": bson.M{"read": true}},
	)
	return err
}

package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/hireloop-backend/internal/models"
)

type ConversationRepo interface {
	Insert(ctx context.Context, c *models.Conversation) error
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	FindDirectByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error)
	ListByParticipant(ctx context.Context, userID string) ([]*models.Conversation, error)
	ApplyMessageSent(ctx context.Context, convID, messageID string, recipients []string) error
	ResetUnread(ctx context.Context, convID, userID string) error
	Delete(ctx context.Context, convID string) error
}

type mongoConversationRepo struct {
	coll *mongo.Collection
}

func NewMongoConversationRepo(coll *mongo.Collection) ConversationRepo {
	// unique index enforces one direct conversation per participant pair
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "participants", Value: 1}, {Key: "type", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("participants_type_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &mongoConversationRepo{coll: coll}
}

func (r *mongoConversationRepo) Insert(ctx context.Context, c *models.Conversation) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.coll.InsertOne(ctx, c)
	return err
}

func (r *mongoConversationRepo) FindByID(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoConversationRepo) FindDirectByParticipants(ctx context.Context, userA, userB string) (*models.Conversation, error) {
	filter := bson.M{
		"type":         models.ConversationTypeDirect,
		"participants": models.DirectPair(userA, userB),
	}
	var c models.Conversation
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *mongoConversationRepo) ListByParticipant(ctx context.Context, userID string) ([]*models.Conversation, error) {
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Conversation
	for cur.Next(ctx) {
		var c models.Conversation
		if err := cur.Decode(&c); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, cur.Err()
}

// ApplyMessageSent advances the last-message pointer and bumps every
// recipient's unread counter in one update. $inc keeps concurrent sends
// from losing increments.
func (r *mongoConversationRepo) ApplyMessageSent(ctx context.Context, convID, messageID string, recipients []string) error {
	inc := bson.M{}
	for _, uid := range recipients {
		inc["unread_counts."+uid] = 1
	}
	update := bson.M{
		"$set": bson.M{
			"last_message_id": messageID,
			"updated_at":      time.Now().UTC(),
		},
	}
	if len(inc) > 0 {
		update["$inc"] = inc
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": convID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ResetUnread zeroes the reader's counter. A full reset rather than a
// decrement: a racing send may leave the value briefly stale, but the next
// read corrects it.
func (r *mongoConversationRepo) ResetUnread(ctx context.Context, convID, userID string) error {
	update := bson.M{"$set": bson.M{"unread_counts." + userID: int64(0)}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": convID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoConversationRepo) Delete(ctx context.Context, convID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": convID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

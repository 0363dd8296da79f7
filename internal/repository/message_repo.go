package repository

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/hireloop-backend/internal/models"
)

type MessageRepo interface {
	Insert(ctx context.Context, m *models.Message) error
	FindByID(ctx context.Context, id string) (*models.Message, error)
	// ListByConversation returns a page sorted newest-first.
	ListByConversation(ctx context.Context, convID string, page, pageSize int64) ([]*models.Message, error)
	UpdateContent(ctx context.Context, id, content string) error
	SoftDelete(ctx context.Context, id string) error
	AddReadBy(ctx context.Context, id, userID string) error
	DeleteByConversation(ctx context.Context, convID string) (int64, error)
	CountByConversation(ctx context.Context, convID string) (int64, error)
	Search(ctx context.Context, convIDs []string, query string, page, pageSize int64) ([]*models.Message, error)
}

type mongoMessageRepo struct {
	coll *mongo.Collection
}

func NewMongoMessageRepo(coll *mongo.Collection) MessageRepo {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("conversation_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &mongoMessageRepo{coll: coll}
}

func (r *mongoMessageRepo) Insert(ctx context.Context, m *models.Message) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.ID == "" {
		m.ID = primitive.NewObjectID().Hex()
	}
	if m.ReadBy == nil {
		m.ReadBy = []string{}
	}
	_, err := r.coll.InsertOne(ctx, m)
	return err
}

func (r *mongoMessageRepo) FindByID(ctx context.Context, id string) (*models.Message, error) {
	var m models.Message
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *mongoMessageRepo) ListByConversation(ctx context.Context, convID string, page, pageSize int64) ([]*models.Message, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)
	cur, err := r.coll.Find(ctx, bson.M{"conversation_id": convID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

func (r *mongoMessageRepo) UpdateContent(ctx context.Context, id, content string) error {
	update := bson.M{"$set": bson.M{
		"content":    content,
		"is_edited":  true,
		"updated_at": time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoMessageRepo) SoftDelete(ctx context.Context, id string) error {
	update := bson.M{
		"$set": bson.M{
			"content":    models.DeletedMessageContent,
			"is_deleted": true,
			"updated_at": time.Now().UTC(),
		},
		"$unset": bson.M{"attachments": ""},
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoMessageRepo) AddReadBy(ctx context.Context, id, userID string) error {
	update := bson.M{"$addToSet": bson.M{"read_by": userID}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoMessageRepo) DeleteByConversation(ctx context.Context, convID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"conversation_id": convID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoMessageRepo) CountByConversation(ctx context.Context, convID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"conversation_id": convID})
}

func (r *mongoMessageRepo) Search(ctx context.Context, convIDs []string, query string, page, pageSize int64) ([]*models.Message, error) {
	if len(convIDs) == 0 {
		return nil, nil
	}
	if page < 1 {
		page = 1
	}
	// literal substring match: metacharacters in the query must not reach
	// the regex engine
	filter := bson.M{
		"conversation_id": bson.M{"$in": convIDs},
		"is_deleted":      false,
		"content":         bson.M{"$regex": regexp.QuoteMeta(query), "$options": "i"},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Message
	for cur.Next(ctx) {
		var m models.Message
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, cur.Err()
}

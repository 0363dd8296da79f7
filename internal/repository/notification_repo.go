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

// NotificationRepo scopes every lookup and mutation by recipient, so a
// notification owned by someone else is indistinguishable from one that
// does not exist.
type NotificationRepo interface {
	Insert(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, recipientID string, filter models.NotificationFilter, page, pageSize int64) ([]*models.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, id, recipientID string) error
	MarkManyRead(ctx context.Context, ids []string, recipientID string) (int64, error)
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	Delete(ctx context.Context, id, recipientID string) error
	DeleteMany(ctx context.Context, ids []string, recipientID string) (int64, error)
	DeleteAll(ctx context.Context, recipientID string) (int64, error)
}

type mongoNotificationRepo struct {
	coll *mongo.Collection
}

func NewMongoNotificationRepo(coll *mongo.Collection) NotificationRepo {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "recipient_id", Value: 1}, {Key: "created_at", Value: -1}},
		Options: options.Index().SetName("recipient_created_idx"),
	}
	_, _ = coll.Indexes().CreateOne(context.Background(), idx)
	return &mongoNotificationRepo{coll: coll}
}

func (r *mongoNotificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	n.CreatedAt = time.Now().UTC()
	if n.ID == "" {
		n.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.coll.InsertOne(ctx, n)
	return err
}

func buildFilter(recipientID string, f models.NotificationFilter) bson.M {
	filter := bson.M{"recipient_id": recipientID}
	if f.IsRead != nil {
		filter["is_read"] = *f.IsRead
	}
	if f.Type != "" {
		filter["type"] = f.Type
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	return filter
}

func (r *mongoNotificationRepo) List(ctx context.Context, recipientID string, f models.NotificationFilter, page, pageSize int64) ([]*models.Notification, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip((page - 1) * pageSize).
		SetLimit(pageSize)
	cur, err := r.coll.Find(ctx, buildFilter(recipientID, f), opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []*models.Notification
	for cur.Next(ctx) {
		var n models.Notification
		if err := cur.Decode(&n); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, cur.Err()
}

func (r *mongoNotificationRepo) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"recipient_id": recipientID, "is_read": false})
}

func (r *mongoNotificationRepo) MarkRead(ctx context.Context, id, recipientID string) error {
	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"is_read": true, "read_at": now}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id, "recipient_id": recipientID}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepo) MarkManyRead(ctx context.Context, ids []string, recipientID string) (int64, error) {
	now := time.Now().UTC()
	filter := bson.M{"_id": bson.M{"$in": ids}, "recipient_id": recipientID}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true, "read_at": now}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *mongoNotificationRepo) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	now := time.Now().UTC()
	filter := bson.M{"recipient_id": recipientID, "is_read": false}
	res, err := r.coll.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true, "read_at": now}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *mongoNotificationRepo) Delete(ctx context.Context, id, recipientID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "recipient_id": recipientID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoNotificationRepo) DeleteMany(ctx context.Context, ids []string, recipientID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}, "recipient_id": recipientID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (r *mongoNotificationRepo) DeleteAll(ctx context.Context, recipientID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"recipient_id": recipientID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

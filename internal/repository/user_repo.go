package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fathima-sithara/hireloop-backend/internal/models"
)

// UserRepo is the read-only boundary to the user directory. Account
// management lives in another service; this one only resolves ids to
// role/active-status records.
type UserRepo interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type mongoUserRepo struct {
	coll *mongo.Collection
}

func NewMongoUserRepo(coll *mongo.Collection) UserRepo {
	return &mongoUserRepo{coll: coll}
}

func (r *mongoUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

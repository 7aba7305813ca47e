package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoRepo keeps users in a MongoDB collection with a unique email index.
type MongoRepo struct {
	coll *mongo.Collection
}

// NewMongoRepo wraps coll and ensures the email index exists.
func NewMongoRepo(ctx context.Context, coll *mongo.Collection) (*MongoRepo, error) {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create email index: %w", err)
	}
	return &MongoRepo{coll: coll}, nil
}

// ConnectMongo dials uri and verifies the deployment is reachable.
func ConnectMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

func (r *MongoRepo) Create(ctx context.Context, user User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	_, err := r.coll.InsertOne(ctx, user)
	return insertError(err)
}

func (r *MongoRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	var user User
	err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user)
	if err != nil {
		return User{}, findError(err)
	}
	return user, nil
}

// insertError maps a unique index violation on email to ErrEmailTaken.
func insertError(err error) error {
	if err != nil && mongo.IsDuplicateKeyError(err) {
		return ErrEmailTaken
	}
	return err
}

func findError(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

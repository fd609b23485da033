package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inkwellhq/inkwell/internal/core/domain"
	"github.com/inkwellhq/inkwell/internal/core/ports"
)

const userCollection = "users"

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique email index duplicate detection relies on.
func (r *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create email index: %w", err)
	}
	return nil
}

type mongoUser struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Email           string             `bson:"email"`
	PasswordHash    string             `bson:"password_hash"`
	Name            string             `bson:"name"`
	Surname         string             `bson:"surname"`
	Role            string             `bson:"role"`
	Status          string             `bson:"status"`
	Enabled         bool               `bson:"enabled"`
	RefreshToken    string             `bson:"refresh_token,omitempty"`
	TwoFactorToken  string             `bson:"two_factor_token,omitempty"`
	ActivationToken string             `bson:"activation_token,omitempty"`
	Language        string             `bson:"language"`
	CreatedAt       int64              `bson:"created_at"`
	UpdatedAt       int64              `bson:"updated_at"`
}

func toMongoUser(u *domain.User) mongoUser {
	return mongoUser{
		Email:           u.Email,
		PasswordHash:    u.PasswordHash,
		Name:            u.Name,
		Surname:         u.Surname,
		Role:            u.Role,
		Status:          u.Status,
		Enabled:         u.Enabled,
		RefreshToken:    u.RefreshToken,
		TwoFactorToken:  u.TwoFactorToken,
		ActivationToken: u.ActivationToken,
		Language:        u.Language,
		CreatedAt:       u.CreatedAt.Unix(),
		UpdatedAt:       u.UpdatedAt.Unix(),
	}
}

func (mu mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:              mu.ID.Hex(),
		Email:           mu.Email,
		PasswordHash:    mu.PasswordHash,
		Name:            mu.Name,
		Surname:         mu.Surname,
		Role:            mu.Role,
		Status:          mu.Status,
		Enabled:         mu.Enabled,
		RefreshToken:    mu.RefreshToken,
		TwoFactorToken:  mu.TwoFactorToken,
		ActivationToken: mu.ActivationToken,
		Language:        mu.Language,
		CreatedAt:       unixToTime(mu.CreatedAt),
		UpdatedAt:       unixToTime(mu.UpdatedAt),
	}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	doc := toMongoUser(user)
	doc.CreatedAt = now.Unix()
	doc.UpdatedAt = now.Unix()

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, _ := res.InsertedID.(primitive.ObjectID)
	return r.FindByID(ctx, id.Hex())
}

func (r *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mu); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *MongoUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var mu mongoUser
		if err := cur.Decode(&mu); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, mu.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// SetSessionTokens overwrites the refresh and two-factor slots. Last write
// wins; a concurrent login from another device simply revokes this one.
func (r *MongoUserRepository) SetSessionTokens(ctx context.Context, id, refreshToken, twoFactorToken string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"refresh_token":    refreshToken,
			"two_factor_token": twoFactorToken,
			"updated_at":       time.Now().UTC().Unix(),
		},
	})
}

func (r *MongoUserRepository) SetActivationToken(ctx context.Context, id, token string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"activation_token": token,
			"updated_at":       time.Now().UTC().Unix(),
		},
	})
}

func (r *MongoUserRepository) ClearTwoFactorToken(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$unset": bson.M{"two_factor_token": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC().Unix()},
	})
}

func (r *MongoUserRepository) Activate(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"enabled":    true,
			"status":     domain.StatusActive,
			"updated_at": time.Now().UTC().Unix(),
		},
		"$unset": bson.M{"activation_token": ""},
	})
}

func (r *MongoUserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"password_hash": passwordHash,
			"updated_at":    time.Now().UTC().Unix(),
		},
	})
}

func (r *MongoUserRepository) SetLanguage(ctx context.Context, id, language string) error {
	return r.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"language":   language,
			"updated_at": time.Now().UTC().Unix(),
		},
	})
}

func (r *MongoUserRepository) UpdateAccess(ctx context.Context, id string, update ports.AccessUpdate) (*domain.User, error) {
	set := bson.M{"updated_at": time.Now().UTC().Unix()}
	if update.Status != nil {
		set["status"] = *update.Status
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if err := r.updateByID(ctx, id, bson.M{"$set": set}); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *MongoUserRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrUserNotFound
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

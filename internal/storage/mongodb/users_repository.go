package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
)

type userDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Name           string               `bson:"name"`
	Email          string               `bson:"email"`
	PasswordHash   string               `bson:"password_hash"`
	Avatar         string               `bson:"avatar"`
	JoinedEventIDs []primitive.ObjectID `bson:"joined_event_ids"`
	CreatedAt      time.Time            `bson:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at"`
}

func (d userDoc) toDomain() *users.User {
	joined := make([]string, 0, len(d.JoinedEventIDs))
	for _, id := range d.JoinedEventIDs {
		joined = append(joined, id.Hex())
	}
	return &users.User{
		ID:             d.ID.Hex(),
		Name:           d.Name,
		Email:          d.Email,
		PasswordHash:   d.PasswordHash,
		Avatar:         d.Avatar,
		JoinedEventIDs: joined,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

type UsersRepository struct {
	c *mongo.Collection
}

func NewUsersRepository(db *mongo.Database) *UsersRepository {
	return &UsersRepository{c: db.Collection("users")}
}

func (r *UsersRepository) Create(ctx context.Context, user users.User) (users.User, error) {
	now := time.Now().UTC()
	doc := userDoc{
		ID:             primitive.NewObjectID(),
		Name:           user.Name,
		Email:          user.Email,
		PasswordHash:   user.PasswordHash,
		Avatar:         user.Avatar,
		JoinedEventIDs: []primitive.ObjectID{},
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := r.c.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return users.User{}, users.ErrEmailTaken
		}
		return users.User{}, fmt.Errorf("insert user: %w", err)
	}
	return *doc.toDomain(), nil
}

func (r *UsersRepository) GetByID(ctx context.Context, id string) (*users.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, users.ErrNotFound
	}
	var doc userDoc
	if err := r.c.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	var doc userDoc
	if err := r.c.FindOne(ctx, bson.M{"email": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, users.ErrNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *UsersRepository) Update(ctx context.Context, id string, update users.ProfileUpdate) (*users.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, users.ErrNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}
	if update.PasswordHash != nil {
		set["password_hash"] = *update.PasswordHash
	}

	var doc userDoc
	err = r.c.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, users.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, users.ErrEmailTaken
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return doc.toDomain(), nil
}

// Summaries returns client-safe projections for the given ids. Unknown ids
// are skipped rather than failing the whole lookup.
func (r *UsersRepository) Summaries(ctx context.Context, ids []string) ([]users.Summary, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []users.Summary{}, nil
	}

	cursor, err := r.c.Find(
		ctx,
		bson.M{"_id": bson.M{"$in": oids}},
		options.Find().SetProjection(bson.M{"name": 1, "email": 1, "avatar": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	summaries := make([]users.Summary, 0, len(oids))
	for cursor.Next(ctx) {
		var doc userDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		summaries = append(summaries, users.Summary{
			ID:     doc.ID.Hex(),
			Name:   doc.Name,
			Email:  doc.Email,
			Avatar: doc.Avatar,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return summaries, nil
}

// AddJoinedEvent appends eventID to the user's joined set. $addToSet keeps
// the list duplicate-free even if the same join is replayed.
func (r *UsersRepository) AddJoinedEvent(ctx context.Context, userID, eventID string) error {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return users.ErrNotFound
	}
	eid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return fmt.Errorf("invalid event id %q", eventID)
	}

	res, err := r.c.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{
		"$addToSet": bson.M{"joined_event_ids": eid},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("add joined event: %w", err)
	}
	if res.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index.
func (r *UsersRepository) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_users_email").SetUnique(true),
		},
	}
	_, err := r.c.Indexes().CreateMany(ctx, indexes)
	return err
}

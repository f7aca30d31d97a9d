package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/compliance-track/internal/domain/model"
)

// findOne decodes the first document matching filter. A missing document yields nil, nil.
func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// findByHexIDs loads the documents whose _id is one of ids. Malformed ids are skipped.
func findByHexIDs[T any](ctx context.Context, coll *mongo.Collection, ids []string) ([]*T, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			oids = append(oids, oid)
		}
	}
	if len(oids) == 0 {
		return []*T{}, nil
	}

	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	docs := []*T{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// upsertOptions returns the stored document after an Ensure.
func upsertOptions() *options.FindOneAndUpdateOptions {
	return options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
}

// UsersRepository stores accounts.
type UsersRepository struct {
	collection *mongo.Collection
}

// NewUsersRepository creates a users repository.
func NewUsersRepository(db *MongoDB) *UsersRepository {
	return &UsersRepository{collection: db.Users}
}

// Create inserts the user. A taken email or username returns ErrDuplicate.
func (r *UsersRepository) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := r.collection.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *UsersRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return findOne[model.User](ctx, r.collection, bson.M{"_id": id})
}

func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.collection, bson.M{"email": email})
}

// RolesRepository stores roles keyed by unique name.
type RolesRepository struct {
	collection *mongo.Collection
}

// NewRolesRepository creates a roles repository.
func NewRolesRepository(db *MongoDB) *RolesRepository {
	return &RolesRepository{collection: db.Roles}
}

// Ensure creates the role when its name is new and adds any of role.Permissions the stored
// role lacks. Permissions granted by other means are kept. role is refreshed from the store.
func (r *RolesRepository) Ensure(ctx context.Context, role *model.Role) error {
	now := time.Now().UTC()
	permissions := role.Permissions
	if permissions == nil {
		permissions = []string{}
	}
	update := bson.M{
		"$setOnInsert": bson.M{"description": role.Description, "active": role.Active, "created_at": now},
		"$set":         bson.M{"updated_at": now},
		"$addToSet":    bson.M{"permissions": bson.M{"$each": permissions}},
	}
	return r.collection.FindOneAndUpdate(ctx, bson.M{"name": role.Name}, update, upsertOptions()).Decode(role)
}

func (r *RolesRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	return findOne[model.Role](ctx, r.collection, bson.M{"name": name})
}

func (r *RolesRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Role, error) {
	return findByHexIDs[model.Role](ctx, r.collection, ids)
}

// PermissionsRepository stores permissions keyed by resource and action.
type PermissionsRepository struct {
	collection *mongo.Collection
}

// NewPermissionsRepository creates a permissions repository.
func NewPermissionsRepository(db *MongoDB) *PermissionsRepository {
	return &PermissionsRepository{collection: db.Permissions}
}

// Ensure creates the permission when its resource and action are new. permission is
// refreshed from the store, so its ID is set either way.
func (r *PermissionsRepository) Ensure(ctx context.Context, permission *model.Permission) error {
	now := time.Now().UTC()
	filter := bson.M{"resource": permission.Resource, "action": permission.Action}
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":        permission.Name,
			"description": permission.Description,
			"active":      permission.Active,
			"created_at":  now,
		},
		"$set": bson.M{"updated_at": now},
	}
	return r.collection.FindOneAndUpdate(ctx, filter, update, upsertOptions()).Decode(permission)
}

func (r *PermissionsRepository) FindByIDs(ctx context.Context, ids []string) ([]*model.Permission, error) {
	return findByHexIDs[model.Permission](ctx, r.collection, ids)
}

// TokensRepository stores refresh tokens and revoked access tokens. The TTL index on
// expires_at removes both once they lapse.
type TokensRepository struct {
	collection *mongo.Collection
}

// NewTokensRepository creates a tokens repository.
func NewTokensRepository(db *MongoDB) *TokensRepository {
	return &TokensRepository{collection: db.Tokens}
}

func (r *TokensRepository) Create(ctx context.Context, token *model.Token) error {
	if token.ID.IsZero() {
		token.ID = primitive.NewObjectID()
	}
	token.CreatedAt = time.Now().UTC()

	_, err := r.collection.InsertOne(ctx, token)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

func (r *TokensRepository) FindByToken(ctx context.Context, raw string) (*model.Token, error) {
	return findOne[model.Token](ctx, r.collection, bson.M{"token": raw})
}

// IsRevoked reports whether the access token was revoked by a logout.
func (r *TokensRepository) IsRevoked(ctx context.Context, raw string) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"token": raw, "type": model.TokenRevoked}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *TokensRepository) DeleteByToken(ctx context.Context, raw string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"token": raw})
	return err
}

// DeleteByUser removes the user's tokens of the given kind.
func (r *TokensRepository) DeleteByUser(ctx context.Context, userID primitive.ObjectID, kind model.TokenKind) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"user_id": userID, "type": kind})
	return err
}

package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

// ResourceRepository stores each resource kind in its own collection named
// after the kind.
type ResourceRepository struct {
	db *mongo.Database
}

func NewResourceRepository(db *mongo.Database) *ResourceRepository {
	return &ResourceRepository{db: db}
}

func (r *ResourceRepository) col(kind string) *mongo.Collection {
	return r.db.Collection(kind)
}

// EnsureIndexes creates the listing indexes for every kind.
func (r *ResourceRepository) EnsureIndexes(ctx context.Context, kinds []domain.ResourceKind) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}}},
	}
	for _, k := range kinds {
		if _, err := r.col(k.Name).Indexes().CreateMany(ctx, indexes); err != nil {
			return fmt.Errorf("indexes %s: %w", k.Name, err)
		}
	}
	return nil
}

func (r *ResourceRepository) Insert(ctx context.Context, res *domain.Resource) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col(res.Kind).InsertOne(ctx, res); err != nil {
		return fmt.Errorf("insert %s: %w", res.Kind, err)
	}
	return nil
}

func (r *ResourceRepository) FindByID(ctx context.Context, kind, id string) (*domain.Resource, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var res domain.Resource
	if err := r.col(kind).FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResourceNotFound
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	res.Kind = kind
	if res.Fields == nil {
		res.Fields = map[string]any{}
	}
	return &res, nil
}

// List returns one page sorted by created_at descending along with the
// total number of matching documents.
func (r *ResourceRepository) List(ctx context.Context, f ports.ListResourcesFilter) ([]*domain.Resource, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.OwnerID != "" {
		filter["owner_id"] = f.OwnerID
	}

	total, err := r.col(f.Kind).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", f.Kind, err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col(f.Kind).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", f.Kind, err)
	}
	defer cur.Close(ctx)

	items := make([]*domain.Resource, 0, f.Limit)
	for cur.Next(ctx) {
		var res domain.Resource
		if err := cur.Decode(&res); err != nil {
			return nil, 0, fmt.Errorf("decode %s: %w", f.Kind, err)
		}
		res.Kind = f.Kind
		items = append(items, &res)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", f.Kind, err)
	}
	return items, total, nil
}

// Update replaces the mutable part of the document. Ownership and creation
// time are never written here.
func (r *ResourceRepository) Update(ctx context.Context, res *domain.Resource) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := r.col(res.Kind).UpdateOne(ctx, bson.M{"_id": res.ID}, bson.M{
		"$set": bson.M{"fields": res.Fields, "updated_at": res.UpdatedAt},
	})
	if err != nil {
		return fmt.Errorf("update %s: %w", res.Kind, err)
	}
	if out.MatchedCount == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

func (r *ResourceRepository) Delete(ctx context.Context, kind, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	out, err := r.col(kind).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if out.DeletedCount == 0 {
		return domain.ErrResourceNotFound
	}
	return nil
}

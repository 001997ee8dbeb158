package db

import (
	"context"

	"github.com/ukydev/car-showroom/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBrandCollection implements BrandCollection for MongoDB.
type MongoBrandCollection struct {
	Collection *mongo.Collection
}

// brandQuery builds the listing filter.
func brandQuery(filter BrandFilter) bson.M {
	query := bson.M{}
	if filter.Active != nil {
		query["isActive"] = *filter.Active
	}
	if filter.Search != "" {
		query["$text"] = bson.M{"$search": filter.Search}
	}
	return query
}

func (c *MongoBrandCollection) InsertBrand(ctx context.Context, brand *models.Brand) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	brand.ID = primitive.NewObjectID()
	brand.CreatedAt = now()
	brand.UpdatedAt = brand.CreatedAt
	_, err := c.Collection.InsertOne(ctx, brand)
	return duplicate(err)
}

// FindBrands lists brands ordered by (order, name).
func (c *MongoBrandCollection) FindBrands(ctx context.Context, filter BrandFilter) ([]models.Brand, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}})
	cursor, err := c.Collection.Find(ctx, brandQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	brands := []models.Brand{}
	if err := cursor.All(ctx, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}

func (c *MongoBrandCollection) FindBrandByID(ctx context.Context, id string) (*models.Brand, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var brand models.Brand
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&brand); err != nil {
		return nil, notFound(err)
	}
	return &brand, nil
}

func (c *MongoBrandCollection) FindBrandByName(ctx context.Context, name string) (*models.Brand, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	var brand models.Brand
	if err := c.Collection.FindOne(ctx, bson.M{"name": exactNameRegex(name)}).Decode(&brand); err != nil {
		return nil, notFound(err)
	}
	return &brand, nil
}

// BrandNameExists reports whether another brand already uses name, ignoring
// case. excludeID may be NilObjectID.
func (c *MongoBrandCollection) BrandNameExists(ctx context.Context, name string, excludeID primitive.ObjectID) (bool, error) {
	if c.Collection == nil {
		return false, ErrNilCollection
	}
	query := bson.M{"name": exactNameRegex(name)}
	if !excludeID.IsZero() {
		query["_id"] = bson.M{"$ne": excludeID}
	}
	n, err := c.Collection.CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpdateBrand writes the editable fields. carCount is owned by the integrity
// maintainer and never overwritten here.
func (c *MongoBrandCollection) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	brand.UpdatedAt = now()
	fields, err := setFields(brand, "_id", "carCount", "createdAt")
	if err != nil {
		return err
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": brand.ID}, bson.M{"$set": fields})
	if err != nil {
		return duplicate(err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoBrandCollection) SetBrandStatus(ctx context.Context, id string, active bool) (*models.Brand, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var brand models.Brand
	err = c.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&brand)
	if err != nil {
		return nil, notFound(err)
	}
	return &brand, nil
}

func (c *MongoBrandCollection) DeleteBrand(ctx context.Context, id primitive.ObjectID) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoBrandCollection) IncrementCarCount(ctx context.Context, id primitive.ObjectID, delta int64) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	if delta == 0 {
		return nil
	}
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["carCount"] = bson.M{"$gte": -delta}
	}
	result, err := c.Collection.UpdateOne(ctx, filter, bson.M{
		"$inc": bson.M{"carCount": delta},
		"$set": bson.M{"updatedAt": now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 && delta > 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoBrandCollection) SetCarCount(ctx context.Context, id primitive.ObjectID, count int64) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"carCount": count, "updatedAt": now()},
	})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

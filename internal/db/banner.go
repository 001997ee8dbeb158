package db

import (
	"context"

	"github.com/ukydev/car-showroom/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBannerCollection implements BannerCollection for MongoDB.
type MongoBannerCollection struct {
	Collection *mongo.Collection
}

func (c *MongoBannerCollection) InsertBanner(ctx context.Context, banner *models.Banner) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	banner.ID = primitive.NewObjectID()
	banner.CreatedAt = now()
	banner.UpdatedAt = banner.CreatedAt
	_, err := c.Collection.InsertOne(ctx, banner)
	return err
}

// FindBanners lists banners in display order: order ascending, then newest
// first.
func (c *MongoBannerCollection) FindBanners(ctx context.Context, active *bool) ([]models.Banner, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	query := bson.M{}
	if active != nil {
		query["isActive"] = *active
	}
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}})
	cursor, err := c.Collection.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	banners := []models.Banner{}
	if err := cursor.All(ctx, &banners); err != nil {
		return nil, err
	}
	return banners, nil
}

func (c *MongoBannerCollection) FindBannerByID(ctx context.Context, id string) (*models.Banner, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var banner models.Banner
	if err := c.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&banner); err != nil {
		return nil, notFound(err)
	}
	return &banner, nil
}

func (c *MongoBannerCollection) UpdateBanner(ctx context.Context, banner *models.Banner) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	banner.UpdatedAt = now()
	fields, err := setFields(banner, "_id", "createdAt")
	if err != nil {
		return err
	}
	result, err := c.Collection.UpdateOne(ctx, bson.M{"_id": banner.ID}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *MongoBannerCollection) SetBannerStatus(ctx context.Context, id string, active bool) (*models.Banner, error) {
	if c.Collection == nil {
		return nil, ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	var banner models.Banner
	err = c.Collection.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"isActive": active, "updatedAt": now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&banner)
	if err != nil {
		return nil, notFound(err)
	}
	return &banner, nil
}

func (c *MongoBannerCollection) DeleteBanner(ctx context.Context, id string) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	result, err := c.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderBanners assigns each banner its order in one unordered bulk write.
// Unknown ids are skipped.
func (c *MongoBannerCollection) ReorderBanners(ctx context.Context, items []models.BannerOrderItem) error {
	if c.Collection == nil {
		return ErrNilCollection
	}
	if len(items) == 0 {
		return nil
	}
	ts := now()
	writes := make([]mongo.WriteModel, 0, len(items))
	for _, item := range items {
		oid, err := objectID(item.ID)
		if err != nil {
			return err
		}
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": oid}).
			SetUpdate(bson.M{"$set": bson.M{"order": item.Order, "updatedAt": ts}}))
	}
	_, err := c.Collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false))
	return err
}

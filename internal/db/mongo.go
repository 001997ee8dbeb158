package db

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/ukydev/car-showroom/internal/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no document matches the lookup.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate key")
	// ErrNilCollection is returned by collections built without a Mongo handle.
	ErrNilCollection = errors.New("mongo collection is nil")
)

// Collection names.
const (
	UsersCollection   = "users"
	BrandsCollection  = "brands"
	CarsCollection    = "cars"
	BannersCollection = "banners"
	RentalsCollection = "rentals"
)

// ConnectMongo connects to MongoDB and verifies the connection with a ping.
func ConnectMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}
	return client, nil
}

// Transactor runs fn so that its writes commit or abort together.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store groups the showroom collections over one Mongo database.
type Store struct {
	Client       *mongo.Client
	Database     *mongo.Database
	Users        *MongoUserCollection
	Brands       *MongoBrandCollection
	Cars         *MongoCarCollection
	Banners      *MongoBannerCollection
	Rentals      *MongoRentalCollection
	transactions bool
}

// NewStore wires the collections of the configured database.
func NewStore(client *mongo.Client, cfg config.MongoConfig) *Store {
	database := client.Database(cfg.Database)
	return &Store{
		Client:       client,
		Database:     database,
		Users:        &MongoUserCollection{Collection: database.Collection(UsersCollection)},
		Brands:       &MongoBrandCollection{Collection: database.Collection(BrandsCollection)},
		Cars:         &MongoCarCollection{Collection: database.Collection(CarsCollection)},
		Banners:      &MongoBannerCollection{Collection: database.Collection(BannersCollection)},
		Rentals:      &MongoRentalCollection{Collection: database.Collection(RentalsCollection)},
		transactions: cfg.Transactions,
	}
}

// WithTransaction runs fn inside a multi-document transaction when
// transactions are enabled. Otherwise fn runs directly and each write inside
// it is atomic on its own.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}
	session, err := s.Client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the unique and text indexes the queries rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	caseInsensitive := options.Index().SetCollation(&options.Collation{Locale: "en", Strength: 2})

	indexes := map[*mongo.Collection][]mongo.IndexModel{
		s.Users.Collection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		s.Brands.Collection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: caseInsensitive.SetUnique(true)},
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
			{Keys: bson.D{{Key: "order", Value: 1}, {Key: "name", Value: 1}}},
		},
		s.Cars.Collection: {
			{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "brand", Value: "text"}, {Key: "model", Value: "text"}, {Key: "description", Value: "text"}}},
			{Keys: bson.D{{Key: "brand", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "isFeatured", Value: 1}}},
		},
		s.Banners.Collection: {
			{Keys: bson.D{{Key: "order", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		s.Rentals.Collection: {
			{Keys: bson.D{{Key: "brand", Value: 1}}},
		},
	}

	for coll, models := range indexes {
		if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll.Name(), err)
		}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// objectID parses a hex id. A malformed id can never match a document, so it
// is reported as ErrNotFound.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, ErrNotFound)
	}
	return oid, nil
}

// exactNameRegex matches name as a whole string, ignoring case.
func exactNameRegex(name string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}
}

// containsRegex matches s anywhere in the field, ignoring case.
func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// setFields converts doc into a $set document, dropping the listed keys.
// Counters and identity fields are excluded by callers so concurrent $inc
// updates are not overwritten.
func setFields(doc interface{}, omit ...string) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var fields bson.M
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	for _, key := range omit {
		delete(fields, key)
	}
	return fields, nil
}

// notFound translates the driver's no-documents error.
func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// IsNotFound reports whether err means the document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err is a unique index violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// duplicate translates unique index violations.
func duplicate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ListOptions carries pagination and sorting for list queries.
type ListOptions struct {
	Page  int
	Limit int
	Sort  string
	Order string
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps page and limit into their valid ranges.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultPageSize
	}
	if o.Limit > MaxPageSize {
		o.Limit = MaxPageSize
	}
	return o
}

// Skip is the number of documents before the requested page.
func (o ListOptions) Skip() int64 {
	return int64((o.Page - 1) * o.Limit)
}

// TotalPages returns ceil(total / limit).
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}

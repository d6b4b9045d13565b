package verification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"productverification/internal/product/models"
	id "productverification/pkg/domain"
	"productverification/pkg/platform/sentinel"
)

const CollectionName = "verifications"

type verificationDocument struct {
	ProductID  string          `bson:"product_id"`
	Checks     map[string]bool `bson:"checks"`
	Reasons    []string        `bson:"reasons"`
	VerifiedAt time.Time       `bson:"verified_at"`
}

// MongoStore persists verification records in MongoDB. Each insert is durable
// on its own; it does not join the entity store's transaction.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongo(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(CollectionName)}
}

// EnsureIndexes creates the lookup index on (product_id, verified_at desc).
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "product_id", Value: 1}, {Key: "verified_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create verification index: %w", err)
	}
	return nil
}

func (s *MongoStore) SaveVerification(ctx context.Context, record *models.VerificationRecord) error {
	if record == nil {
		return fmt.Errorf("verification record is required")
	}
	doc := verificationDocument{
		ProductID:  record.ProductID.String(),
		Checks:     record.Checks,
		Reasons:    record.Reasons,
		VerifiedAt: record.VerifiedAt.UTC(),
	}
	if doc.Reasons == nil {
		doc.Reasons = []string{}
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert verification: %w", err)
	}
	return nil
}

// FindByProductID returns the most recent record for the product.
func (s *MongoStore) FindByProductID(ctx context.Context, productID id.ProductID) (*models.VerificationRecord, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "verified_at", Value: -1}})
	var doc verificationDocument
	err := s.collection.FindOne(ctx, bson.M{"product_id": productID.String()}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find verification: %w", err)
	}
	return &models.VerificationRecord{
		ProductID:  id.ProductID(doc.ProductID),
		Checks:     doc.Checks,
		Reasons:    doc.Reasons,
		VerifiedAt: doc.VerifiedAt.UTC(),
	}, nil
}

package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

const (
	farmersCollection      = "farmers"
	transactionsCollection = "transactions"
	batchesCollection      = "crop_batches"
	snapshotsCollection    = "farm_snapshots"
)

// Repository is the keyed farm store. Transactions and batches are
// append/remove only; nothing here keeps running totals.
type Repository interface {
	UpsertFarmer(ctx context.Context, farmer models.Farmer) error
	GetFarmer(ctx context.Context, farmerID string) (models.Farmer, error)
	FindFarmerByPhone(ctx context.Context, phone string) (models.Farmer, error)
	ListFarmers(ctx context.Context) ([]models.Farmer, error)

	AppendTransaction(ctx context.Context, tx models.Transaction) error
	RemoveTransaction(ctx context.Context, farmerID string, txID uuid.UUID) error
	ListTransactions(ctx context.Context, farmerID string) ([]models.Transaction, error)

	RegisterBatch(ctx context.Context, batch models.CropBatch) error
	ListBatches(ctx context.Context, farmerID string) ([]models.CropBatch, error)
	ListBatchesByLocation(ctx context.Context, locationID string) ([]models.CropBatch, error)

	SaveFarmSnapshot(ctx context.Context, snapshot models.FarmSnapshot) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDBRepository connects, pings and ensures indexes.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{client: client, db: client.Database(dbName)}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoDBRepository) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		farmersCollection: {
			{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		transactionsCollection: {
			{Keys: bson.D{{Key: "farmer_id", Value: 1}, {Key: "_id", Value: 1}}},
		},
		batchesCollection: {
			{Keys: bson.D{{Key: "farmer_id", Value: 1}}},
			{Keys: bson.D{{Key: "location_id", Value: 1}}},
		},
		snapshotsCollection: {
			{Keys: bson.D{{Key: "farmer_id", Value: 1}, {Key: "date", Value: -1}}},
		},
	}

	for coll, idx := range indexes {
		if _, err := r.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

type transactionDoc struct {
	ID        string               `bson:"_id"`
	FarmerID  string               `bson:"farmer_id"`
	Date      time.Time            `bson:"date"`
	Kind      string               `bson:"kind"`
	Category  string               `bson:"category"`
	Amount    primitive.Decimal128 `bson:"amount"`
	Label     string               `bson:"label"`
	CreatedAt time.Time            `bson:"created_at"`
}

type batchDoc struct {
	ID           string    `bson:"_id"`
	FarmerID     string    `bson:"farmer_id"`
	CropType     string    `bson:"crop_type"`
	WeightKg     float64   `bson:"weight_kg"`
	StorageType  string    `bson:"storage_type"`
	RegisteredAt time.Time `bson:"registered_at"`
	LocationID   string    `bson:"location_id"`
}

// UpsertFarmer creates or replaces a farmer profile.
func (r *MongoDBRepository) UpsertFarmer(ctx context.Context, farmer models.Farmer) error {
	_, err := r.db.Collection(farmersCollection).ReplaceOne(ctx,
		bson.M{"_id": farmer.ID}, farmer, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert farmer %s: %w", farmer.ID, err)
	}
	return nil
}

// GetFarmer loads a farmer by ID.
func (r *MongoDBRepository) GetFarmer(ctx context.Context, farmerID string) (models.Farmer, error) {
	return r.findFarmer(ctx, bson.M{"_id": farmerID})
}

// FindFarmerByPhone loads a farmer by registered phone number.
func (r *MongoDBRepository) FindFarmerByPhone(ctx context.Context, phone string) (models.Farmer, error) {
	return r.findFarmer(ctx, bson.M{"phone": phone})
}

func (r *MongoDBRepository) findFarmer(ctx context.Context, filter bson.M) (models.Farmer, error) {
	var farmer models.Farmer
	err := r.db.Collection(farmersCollection).FindOne(ctx, filter).Decode(&farmer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Farmer{}, fmt.Errorf("farmer: %w", models.ErrNotFound)
	}
	if err != nil {
		return models.Farmer{}, fmt.Errorf("failed to load farmer: %w", err)
	}
	return farmer, nil
}

// ListFarmers returns every registered farmer.
func (r *MongoDBRepository) ListFarmers(ctx context.Context) ([]models.Farmer, error) {
	cursor, err := r.db.Collection(farmersCollection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list farmers: %w", err)
	}

	var farmers []models.Farmer
	if err := cursor.All(ctx, &farmers); err != nil {
		return nil, fmt.Errorf("failed to decode farmers: %w", err)
	}
	return farmers, nil
}

// AppendTransaction inserts a new ledger entry.
func (r *MongoDBRepository) AppendTransaction(ctx context.Context, tx models.Transaction) error {
	amount, err := primitive.ParseDecimal128(tx.Amount.String())
	if err != nil {
		return fmt.Errorf("encode amount %s: %w", tx.Amount, err)
	}

	doc := transactionDoc{
		ID:        tx.ID.String(),
		FarmerID:  tx.FarmerID,
		Date:      tx.Date,
		Kind:      string(tx.Kind),
		Category:  string(tx.Category),
		Amount:    amount,
		Label:     tx.Label,
		CreatedAt: tx.CreatedAt,
	}

	if _, err := r.db.Collection(transactionsCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// RemoveTransaction deletes a farmer's transaction by ID.
func (r *MongoDBRepository) RemoveTransaction(ctx context.Context, farmerID string, txID uuid.UUID) error {
	res, err := r.db.Collection(transactionsCollection).DeleteOne(ctx, bson.M{"_id": txID.String(), "farmer_id": farmerID})
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", txID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("transaction %s: %w", txID, models.ErrNotFound)
	}
	return nil
}

// ListTransactions returns a farmer's ledger in creation order. UUIDv7
// strings sort by creation time.
func (r *MongoDBRepository) ListTransactions(ctx context.Context, farmerID string) ([]models.Transaction, error) {
	cursor, err := r.db.Collection(transactionsCollection).Find(ctx,
		bson.M{"farmer_id": farmerID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	var docs []transactionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	out := make([]models.Transaction, 0, len(docs))
	for _, d := range docs {
		tx, err := d.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (d transactionDoc) toModel() (models.Transaction, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.Transaction{}, fmt.Errorf("decode transaction id %q: %w", d.ID, err)
	}
	amount, err := decimal.NewFromString(d.Amount.String())
	if err != nil {
		return models.Transaction{}, fmt.Errorf("decode amount of %s: %w", d.ID, err)
	}
	return models.Transaction{
		ID:        id,
		FarmerID:  d.FarmerID,
		Date:      d.Date,
		Kind:      models.TransactionKind(d.Kind),
		Category:  models.Category(d.Category),
		Amount:    amount,
		Label:     d.Label,
		CreatedAt: d.CreatedAt,
	}, nil
}

// RegisterBatch stores a new crop batch.
func (r *MongoDBRepository) RegisterBatch(ctx context.Context, batch models.CropBatch) error {
	doc := batchDoc{
		ID:           batch.ID.String(),
		FarmerID:     batch.FarmerID,
		CropType:     string(batch.CropType),
		WeightKg:     batch.WeightKg,
		StorageType:  string(batch.StorageType),
		RegisteredAt: batch.RegisteredAt,
		LocationID:   batch.LocationID,
	}
	if _, err := r.db.Collection(batchesCollection).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert crop batch: %w", err)
	}
	return nil
}

// ListBatches returns a farmer's batches, newest first.
func (r *MongoDBRepository) ListBatches(ctx context.Context, farmerID string) ([]models.CropBatch, error) {
	return r.findBatches(ctx, bson.M{"farmer_id": farmerID})
}

// ListBatchesByLocation returns every batch stored in a district.
func (r *MongoDBRepository) ListBatchesByLocation(ctx context.Context, locationID string) ([]models.CropBatch, error) {
	return r.findBatches(ctx, bson.M{"location_id": locationID})
}

func (r *MongoDBRepository) findBatches(ctx context.Context, filter bson.M) ([]models.CropBatch, error) {
	cursor, err := r.db.Collection(batchesCollection).Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "registered_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list crop batches: %w", err)
	}

	var docs []batchDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode crop batches: %w", err)
	}

	out := make([]models.CropBatch, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, fmt.Errorf("decode batch id %q: %w", d.ID, err)
		}
		out = append(out, models.CropBatch{
			ID:           id,
			FarmerID:     d.FarmerID,
			CropType:     models.CropType(d.CropType),
			WeightKg:     d.WeightKg,
			StorageType:  models.StorageType(d.StorageType),
			RegisteredAt: d.RegisteredAt,
			LocationID:   d.LocationID,
		})
	}
	return out, nil
}

// SaveFarmSnapshot saves a daily farm snapshot.
func (r *MongoDBRepository) SaveFarmSnapshot(ctx context.Context, snapshot models.FarmSnapshot) error {
	if _, err := r.db.Collection(snapshotsCollection).InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to insert farm snapshot: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

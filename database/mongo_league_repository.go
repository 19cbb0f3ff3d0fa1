package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"prediction-league/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LeagueCollection holds one record per league
const LeagueCollection = "league_states"

// leagueRecord is the stored shape. Data is the league document as JSON text
// because user keys are email addresses and contain dots.
type leagueRecord struct {
	ID        string    `bson:"_id"`
	Version   int64     `bson:"version"`
	Data      string    `bson:"data"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoLeagueRepository stores league documents in MongoDB
type MongoLeagueRepository struct {
	db         *MongoDB
	collection *mongo.Collection
}

// NewMongoLeagueRepository creates a new MongoDB league repository
func NewMongoLeagueRepository(db *MongoDB) *MongoLeagueRepository {
	return &MongoLeagueRepository{
		db:         db,
		collection: db.GetCollection(LeagueCollection),
	}
}

// Get loads a league document and its version
func (r *MongoLeagueRepository) Get(ctx context.Context, leagueID string) (*models.LeagueDocument, int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	var rec leagueRecord
	err := r.collection.FindOne(ctx, bson.M{"_id": leagueID}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, 0, fmt.Errorf("%w: %s", models.ErrLeagueNotFound, leagueID)
		}
		return nil, 0, fmt.Errorf("failed to read league %s: %w", leagueID, err)
	}

	doc, err := decodeDocument(rec.Data)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode league %s: %w", leagueID, err)
	}
	return doc, rec.Version, nil
}

// Set writes a league document following the DocumentStore version rules
func (r *MongoLeagueRepository) Set(ctx context.Context, leagueID string, doc *models.LeagueDocument, expectedVersion int64) (int64, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return 0, fmt.Errorf("failed to encode league %s: %w", leagueID, err)
	}
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	switch {
	case expectedVersion == 0:
		_, err := r.collection.InsertOne(ctx, leagueRecord{ID: leagueID, Version: 1, Data: string(data), UpdatedAt: now})
		if mongo.IsDuplicateKeyError(err) {
			return 0, fmt.Errorf("%w: league %s already exists", models.ErrVersionConflict, leagueID)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to insert league %s: %w", leagueID, err)
		}
		return 1, nil

	case expectedVersion > 0:
		update := bson.M{
			"$set": bson.M{"data": string(data), "updated_at": now},
			"$inc": bson.M{"version": 1},
		}
		res, err := r.collection.UpdateOne(ctx, bson.M{"_id": leagueID, "version": expectedVersion}, update)
		if err != nil {
			return 0, fmt.Errorf("failed to update league %s: %w", leagueID, err)
		}
		if res.MatchedCount == 0 {
			return 0, fmt.Errorf("%w: league %s expected version %d", models.ErrVersionConflict, leagueID, expectedVersion)
		}
		return expectedVersion + 1, nil

	case expectedVersion == models.AnyVersion:
		update := bson.M{
			"$set": bson.M{"data": string(data), "updated_at": now},
			"$inc": bson.M{"version": 1},
		}
		opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
		var rec leagueRecord
		if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": leagueID}, update, opts).Decode(&rec); err != nil {
			return 0, fmt.Errorf("failed to save league %s: %w", leagueID, err)
		}
		return rec.Version, nil

	default:
		return 0, &models.ValidationError{Field: "version", Reason: fmt.Sprintf("invalid version %d", expectedVersion)}
	}
}

// Ping checks the database connection
func (r *MongoLeagueRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Count returns the number of stored leagues
func (r *MongoLeagueRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.db.WithTimeout(ctx)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{})
}

func decodeDocument(data string) (*models.LeagueDocument, error) {
	var doc models.LeagueDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, err
	}
	doc.EnsureMaps()
	return &doc, nil
}

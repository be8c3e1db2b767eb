package mongo

import (
	"context"
	"errors"
	"time"

	"gymflow/gym-app/internal/domain"
	"gymflow/gym-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	dietSettingsCollectionName = "diet_settings"
	dietSummaryCollectionName  = "diet_summaries"
)

// mongoDietRepository implements repository.DietRepository across the
// settings and summaries collections.
type mongoDietRepository struct {
	settings  *mongo.Collection
	summaries *mongo.Collection
}

// NewMongoDietRepository creates a new diet repository.
func NewMongoDietRepository(db *mongo.Database) repository.DietRepository {
	return &mongoDietRepository{
		settings:  db.Collection(dietSettingsCollectionName),
		summaries: db.Collection(dietSummaryCollectionName),
	}
}

// GetSettings retrieves a client's diet settings.
func (r *mongoDietRepository) GetSettings(ctx context.Context, clientID primitive.ObjectID) (*domain.DietSettings, error) {
	var settings domain.DietSettings
	err := r.settings.FindOne(ctx, bson.M{"clientId": clientID}).Decode(&settings)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

// SaveSettings upserts the full settings document for a client.
func (r *mongoDietRepository) SaveSettings(ctx context.Context, settings *domain.DietSettings) error {
	if settings.ClientID == primitive.NilObjectID {
		return errors.New("diet settings require a clientId")
	}
	settings.LastResetDate = domain.DayOf(settings.LastResetDate)
	settings.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"current":       settings.Current,
			"target":        settings.Target,
			"lastResetDate": settings.LastResetDate,
			"updatedAt":     settings.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"_id":      primitive.NewObjectID(),
			"clientId": settings.ClientID,
		},
	}
	_, err := r.settings.UpdateOne(ctx, bson.M{"clientId": settings.ClientID}, update, options.Update().SetUpsert(true))
	return err
}

// InsertSummary archives one finished day. The unique (client, date)
// index turns a second archive attempt into ErrDuplicate, which keeps
// the lazy rollover idempotent.
func (r *mongoDietRepository) InsertSummary(ctx context.Context, summary *domain.DailyDietSummary) error {
	if summary.ClientID == primitive.NilObjectID {
		return errors.New("diet summary requires a clientId")
	}
	summary.ID = primitive.NewObjectID()
	summary.Date = domain.DayOf(summary.Date)
	summary.CreatedAt = time.Now().UTC()

	_, err := r.summaries.InsertOne(ctx, summary)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

// GetSummary retrieves the archived summary for one day.
func (r *mongoDietRepository) GetSummary(ctx context.Context, clientID primitive.ObjectID, date time.Time) (*domain.DailyDietSummary, error) {
	var summary domain.DailyDietSummary
	filter := bson.M{"clientId": clientID, "date": domain.DayOf(date)}
	err := r.summaries.FindOne(ctx, filter).Decode(&summary)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &summary, nil
}

// ListSummariesInRange retrieves summaries with from <= date <= to.
func (r *mongoDietRepository) ListSummariesInRange(ctx context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.DailyDietSummary, error) {
	var summaries []domain.DailyDietSummary
	filter := bson.M{
		"clientId": clientID,
		"date": bson.M{
			"$gte": domain.DayOf(from),
			"$lte": domain.DayOf(to),
		},
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})

	cursor, err := r.summaries.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &summaries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// EnsureDietIndexes creates necessary indexes on both collections.
// Call during startup.
func EnsureDietIndexes(ctx context.Context, settings, summaries *mongo.Collection) {
	_, err := settings.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
	_, err = summaries.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Unique per (client, day); the rollover idempotency guard.
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		// Non-fatal, see EnsureUserIndexes.
	}
}

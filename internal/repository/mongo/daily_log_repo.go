package mongo

import (
	"context"
	"errors"
	"sort"
	"time"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dailyLogCollectionName = "dailyLog"

// mongoDailyLogRepository implements repository.DailyLogRepository.
//
// The dailyLog collection holds two document kinds under string _id values:
// session singletons (session_{uid}) and day entries (entry_{uid}_{dateKey}).
// Entry documents are distinguished by carrying a dateKey field.
type mongoDailyLogRepository struct {
	collection *mongo.Collection
}

// NewMongoDailyLogRepository creates a new DailyLog repository backed by MongoDB.
func NewMongoDailyLogRepository(db *mongo.Database) repository.DailyLogRepository {
	return &mongoDailyLogRepository{
		collection: db.Collection(dailyLogCollectionName),
	}
}

// GetSession retrieves the user's session singleton.
func (r *mongoDailyLogRepository) GetSession(ctx context.Context, ownerUID string) (*domain.PlanSession, error) {
	var session domain.PlanSession
	filter := bson.M{"_id": domain.SessionDocID(ownerUID)}

	err := r.collection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// PutSession fully replaces the user's session document, creating it when
// absent. A full replace (not a merge) is deliberate: there is exactly one
// session at a time and stale fields from a prior plan must not survive.
func (r *mongoDailyLogRepository) PutSession(ctx context.Context, session *domain.PlanSession) error {
	if session.OwnerUID == "" {
		return errors.New("session requires ownerUid")
	}
	session.ID = domain.SessionDocID(session.OwnerUID)
	session.UpdatedAt = time.Now().UTC()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}

	filter := bson.M{"_id": session.ID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, session, opts)
	return err
}

// GetEntry retrieves the entry for one (user, day) pair.
func (r *mongoDailyLogRepository) GetEntry(ctx context.Context, ownerUID, dateKey string) (*domain.DailyEntry, error) {
	var entry domain.DailyEntry
	filter := bson.M{"_id": domain.EntryDocID(ownerUID, dateKey)}

	err := r.collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// PutEntry fully replaces the entry document for its (user, day) key.
func (r *mongoDailyLogRepository) PutEntry(ctx context.Context, entry *domain.DailyEntry) error {
	if entry.OwnerUID == "" || entry.DateKey == "" {
		return errors.New("entry requires ownerUid and dateKey")
	}
	entry.ID = domain.EntryDocID(entry.OwnerUID, entry.DateKey)
	entry.UpdatedAt = time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = entry.UpdatedAt
	}

	filter := bson.M{"_id": entry.ID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, entry, opts)
	return err
}

// UpdateEntryStatuses writes the full status map and its derived completed
// count in a single document update, so the two can never drift apart.
func (r *mongoDailyLogRepository) UpdateEntryStatuses(ctx context.Context, ownerUID, dateKey string, statuses map[string]domain.ExerciseStatus, completedCount int) error {
	filter := bson.M{"_id": domain.EntryDocID(ownerUID, dateKey)}
	update := bson.M{
		"$set": bson.M{
			"statuses":       statuses,
			"completedCount": completedCount,
			"updatedAt":      time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListEntriesByPlan fetches all entry documents for a user + plan identity.
// Equality filters only (no date range), so no composite index is needed
// beyond the single-field ones below; sorting happens client-side.
func (r *mongoDailyLogRepository) ListEntriesByPlan(ctx context.Context, ownerUID string, planType domain.PlanType, planID string) ([]domain.DailyEntry, error) {
	filter := bson.M{
		"ownerUid": ownerUID,
		"planId":   planID,
		"planType": planType,
		// session docs match owner+plan too; the dateKey check keeps them out
		"dateKey": bson.M{"$type": "string"},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var entries []domain.DailyEntry
	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].DateKey < entries[j].DateKey
	})
	return entries, nil
}

// EnsureDailyLogIndexes creates necessary indexes for the dailyLog collection.
func EnsureDailyLogIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerUid", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

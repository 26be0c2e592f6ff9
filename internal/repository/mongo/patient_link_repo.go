package mongo

import (
	"context"
	"errors"
	"time"

	"recoverly/physio-app/internal/domain"
	"recoverly/physio-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const patientLinkCollectionName = "patients"

// mongoPatientLinkRepository implements repository.PatientLinkRepository
type mongoPatientLinkRepository struct {
	collection *mongo.Collection
}

// NewMongoPatientLinkRepository creates a new PatientLink repository backed by MongoDB.
func NewMongoPatientLinkRepository(db *mongo.Database) repository.PatientLinkRepository {
	return &mongoPatientLinkRepository{
		collection: db.Collection(patientLinkCollectionName),
	}
}

// Create inserts a new patient link (an invite) into the database.
func (r *mongoPatientLinkRepository) Create(ctx context.Context, link *domain.PatientLink) (primitive.ObjectID, error) {
	if link.DoctorUID == "" || link.InvitedEmail == "" {
		return primitive.NilObjectID, errors.New("patient link requires doctorUid and invitedEmail")
	}

	link.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	link.CreatedAt = now
	link.UpdatedAt = now
	if link.Status == "" {
		link.Status = domain.LinkInvited
	}

	result, err := r.collection.InsertOne(ctx, link)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted link ID")
	}
	return insertedID, nil
}

// GetByID retrieves a patient link by its ID.
func (r *mongoPatientLinkRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.PatientLink, error) {
	var link domain.PatientLink
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&link)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &link, nil
}

// GetByDoctorUID retrieves all links created by a doctor, most recent first.
func (r *mongoPatientLinkRepository) GetByDoctorUID(ctx context.Context, doctorUID string) ([]domain.PatientLink, error) {
	var links []domain.PatientLink
	filter := bson.M{"doctorUid": doctorUID}
	findOptions := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// GetInvitesForPatient finds links addressed to an email or bound to a uid.
func (r *mongoPatientLinkRepository) GetInvitesForPatient(ctx context.Context, email, patientUID string) ([]domain.PatientLink, error) {
	var conditions []bson.M
	if email != "" {
		conditions = append(conditions, bson.M{"invitedEmail": email})
	}
	if patientUID != "" {
		conditions = append(conditions, bson.M{"patientUid": patientUID})
	}
	if len(conditions) == 0 {
		return []domain.PatientLink{}, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"$or": conditions})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var links []domain.PatientLink
	if err = cursor.All(ctx, &links); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return links, nil
}

// Update modifies the mutable fields of an existing link.
func (r *mongoPatientLinkRepository) Update(ctx context.Context, link *domain.PatientLink) error {
	if link.ID == primitive.NilObjectID {
		return errors.New("link ID is required for update")
	}

	filter := bson.M{"_id": link.ID}
	updateFields := bson.M{
		"status":    link.Status,
		"updatedAt": time.Now().UTC(),
	}
	if link.PatientUID != "" {
		updateFields["patientUid"] = link.PatientUID
	}
	if link.PatientName != "" {
		updateFields["patientName"] = link.PatientName
	}
	if link.InvitedEmail != "" {
		updateFields["invitedEmail"] = link.InvitedEmail
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": updateFields})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetProgressForPatient stamps the progress percentage on all active links
// of the patient. Matching zero documents is not an error: a patient without
// a doctor simply has nobody watching.
func (r *mongoPatientLinkRepository) SetProgressForPatient(ctx context.Context, patientUID string, percent int, at time.Time) error {
	filter := bson.M{"patientUid": patientUID, "status": domain.LinkActive}
	update := bson.M{
		"$set": bson.M{
			"progressPercent": percent,
			"lastProgressAt":  at,
			"updatedAt":       time.Now().UTC(),
		},
	}

	_, err := r.collection.UpdateMany(ctx, filter, update)
	return err
}

// EnsurePatientLinkIndexes creates necessary indexes for the patients collection.
func EnsurePatientLinkIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "doctorUid", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "invitedEmail", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "patientUid", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}

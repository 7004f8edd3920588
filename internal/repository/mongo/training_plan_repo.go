// internal/repository/mongo/training_plan_repo.go
package mongo

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const trainingPlanCollectionName = "training_plans"

type trainingPlanDocument struct {
	ID                   string    `bson:"_id"`
	OwnerID              string    `bson:"ownerId"`
	Name                 string    `bson:"name"`
	Description          string    `bson:"description,omitempty"`
	StartDate            time.Time `bson:"startDate"`
	MicrocycleLengthDays int       `bson:"microcycleLengthDays"`
	TotalMicrocycles     int       `bson:"totalMicrocycles"`
	IsArchived           bool      `bson:"isArchived"`
	IsCurrentlyActive    bool      `bson:"isCurrentlyActive"`
	CreatedAt            time.Time `bson:"createdAt"`
	UpdatedAt            time.Time `bson:"updatedAt"`
}

func (d trainingPlanDocument) toDomain() domain.TrainingPlan {
	return domain.TrainingPlan{
		ID:                   parseID(d.ID),
		OwnerID:              parseID(d.OwnerID),
		Name:                 d.Name,
		Description:          d.Description,
		StartDate:            domain.DateOnly(d.StartDate),
		MicrocycleLengthDays: d.MicrocycleLengthDays,
		TotalMicrocycles:     d.TotalMicrocycles,
		IsArchived:           d.IsArchived,
		IsCurrentlyActive:    d.IsCurrentlyActive,
		CreatedAt:            d.CreatedAt,
		UpdatedAt:            d.UpdatedAt,
	}
}

// mongoTrainingPlanRepository implements repository.TrainingPlanRepository
type mongoTrainingPlanRepository struct {
	collection *mongo.Collection
}

// NewMongoTrainingPlanRepository creates a new TrainingPlan repository.
func NewMongoTrainingPlanRepository(db *mongo.Database) repository.TrainingPlanRepository {
	return &mongoTrainingPlanRepository{
		collection: db.Collection(trainingPlanCollectionName),
	}
}

// Create inserts a new training plan.
func (r *mongoTrainingPlanRepository) Create(ctx context.Context, plan *domain.TrainingPlan) (uuid.UUID, error) {
	if plan.OwnerID == uuid.Nil || plan.Name == "" {
		return uuid.Nil, errors.New("plan requires ownerId and name")
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now
	plan.StartDate = domain.DateOnly(plan.StartDate)

	doc := trainingPlanDocument{
		ID:                   idString(plan.ID),
		OwnerID:              idString(plan.OwnerID),
		Name:                 plan.Name,
		Description:          plan.Description,
		StartDate:            plan.StartDate,
		MicrocycleLengthDays: plan.MicrocycleLengthDays,
		TotalMicrocycles:     plan.TotalMicrocycles,
		IsArchived:           plan.IsArchived,
		IsCurrentlyActive:    plan.IsCurrentlyActive,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uuid.Nil, repository.ErrDuplicate
		}
		return uuid.Nil, err
	}
	return plan.ID, nil
}

// GetByID retrieves a single training plan by its ID.
func (r *mongoTrainingPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TrainingPlan, error) {
	var doc trainingPlanDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": idString(id)}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	plan := doc.toDomain()
	return &plan, nil
}

// ListByOwner returns the owner's plans, newest first.
func (r *mongoTrainingPlanRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, includeArchived bool) ([]domain.TrainingPlan, error) {
	filter := bson.M{"ownerId": idString(ownerID)}
	if !includeArchived {
		filter["isArchived"] = false
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []trainingPlanDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	plans := make([]domain.TrainingPlan, 0, len(docs))
	for _, d := range docs {
		plans = append(plans, d.toDomain())
	}
	return plans, nil
}

// Update writes the mutable fields. Owner, pattern shape and CreatedAt are never changed here.
func (r *mongoTrainingPlanRepository) Update(ctx context.Context, plan *domain.TrainingPlan) error {
	if plan.ID == uuid.Nil {
		return errors.New("training plan ID is required for update")
	}
	plan.UpdatedAt = time.Now().UTC()
	updateDoc := bson.M{
		"$set": bson.M{
			"name":              plan.Name,
			"description":       plan.Description,
			"startDate":         domain.DateOnly(plan.StartDate),
			"isArchived":        plan.IsArchived,
			"isCurrentlyActive": plan.IsCurrentlyActive,
			"updatedAt":         plan.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": idString(plan.ID)}, updateDoc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoTrainingPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": idString(id)})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeactivateAllForOwner clears the active flag on all of the owner's plans in one write.
func (r *mongoTrainingPlanRepository) DeactivateAllForOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	filter := bson.M{
		"ownerId":           idString(ownerID),
		"isCurrentlyActive": true,
	}
	update := bson.M{"$set": bson.M{"isCurrentlyActive": false, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoTrainingPlanRepository) CountNonArchivedByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"ownerId": idString(ownerID), "isArchived": false})
}

func (r *mongoTrainingPlanRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	filter := bson.M{"ownerId": idString(ownerID), "name": name}
	if excludeID != uuid.Nil {
		filter["_id"] = bson.M{"$ne": idString(excludeID)}
	}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// EnsureTrainingPlanIndexes creates necessary indexes. Call during startup.
func EnsureTrainingPlanIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			// listing and ceiling checks
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "isArchived", Value: 1}},
			Options: options.Index(),
		},
		{
			// at most one currently-active plan per owner
			Keys: bson.D{{Key: "ownerId", Value: 1}, {Key: "isCurrentlyActive", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"isCurrentlyActive": true}),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// internal/repository/mongo/workout_session_repo.go
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

const workoutSessionCollectionName = "workout_sessions"

type workoutSessionDocument struct {
	ID          string    `bson:"_id"`
	UserID      string    `bson:"userId"`
	PlanID      *string   `bson:"planId"`
	PlanName    string    `bson:"planName,omitempty"`
	PlanDay     *int      `bson:"planDay,omitempty"`
	RoutineID   *string   `bson:"routineId,omitempty"`
	RoutineName string    `bson:"routineName,omitempty"`
	Notes       string    `bson:"notes,omitempty"`
	PerformedAt time.Time `bson:"performedAt"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

func (d workoutSessionDocument) toDomain() domain.WorkoutSession {
	return domain.WorkoutSession{
		ID:          parseID(d.ID),
		UserID:      parseID(d.UserID),
		PlanID:      parseOptionalID(d.PlanID),
		PlanName:    d.PlanName,
		PlanDay:     d.PlanDay,
		RoutineID:   parseOptionalID(d.RoutineID),
		RoutineName: d.RoutineName,
		Notes:       d.Notes,
		PerformedAt: d.PerformedAt,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// mongoWorkoutSessionRepository implements repository.WorkoutSessionRepository
type mongoWorkoutSessionRepository struct {
	collection *mongo.Collection
}

// NewMongoWorkoutSessionRepository creates a new WorkoutSession repository.
func NewMongoWorkoutSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoWorkoutSessionRepository{
		collection: db.Collection(workoutSessionCollectionName),
	}
}

// Create inserts a new history record.
func (r *mongoWorkoutSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (uuid.UUID, error) {
	if session.UserID == uuid.Nil {
		return uuid.Nil, errors.New("workout session requires userId")
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	doc := workoutSessionDocument{
		ID:          idString(session.ID),
		UserID:      idString(session.UserID),
		PlanID:      optionalIDString(session.PlanID),
		PlanName:    session.PlanName,
		PlanDay:     session.PlanDay,
		RoutineID:   optionalIDString(session.RoutineID),
		RoutineName: session.RoutineName,
		Notes:       session.Notes,
		PerformedAt: session.PerformedAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return uuid.Nil, err
	}
	return session.ID, nil
}

func (r *mongoWorkoutSessionRepository) CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"planId": idString(planID)})
}

// DissociatePlan nulls planId on the user's sessions; planName and planDay stay as a snapshot.
func (r *mongoWorkoutSessionRepository) DissociatePlan(ctx context.Context, userID, planID uuid.UUID) (int64, error) {
	filter := bson.M{"userId": idString(userID), "planId": idString(planID)}
	update := bson.M{"$set": bson.M{"planId": nil, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

func (r *mongoWorkoutSessionRepository) ExistsForDay(ctx context.Context, userID, planID uuid.UUID, day int) (bool, error) {
	filter := bson.M{"userId": idString(userID), "planId": idString(planID), "planDay": day}
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByUser returns the user's history, most recent first.
func (r *mongoWorkoutSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.WorkoutSession, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "performedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"userId": idString(userID)}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []workoutSessionDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	sessions := make([]domain.WorkoutSession, 0, len(docs))
	for _, d := range docs {
		sessions = append(sessions, d.toDomain())
	}
	return sessions, nil
}

// EnsureWorkoutSessionIndexes creates necessary indexes. Call during startup.
func EnsureWorkoutSessionIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "performedAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// duplicate-day lookup and dissociation
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "planId", Value: 1}, {Key: "planDay", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

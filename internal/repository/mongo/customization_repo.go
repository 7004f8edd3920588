package mongo

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dayCustomizationCollectionName = "day_customizations"

type dayCustomizationDocument struct {
	ID                string    `bson:"_id"`
	PlanID            string    `bson:"planId"`
	DayNumber         int       `bson:"dayNumber"`
	ExerciseSetID     string    `bson:"exerciseSetId"`
	RoutineExerciseID string    `bson:"routineExerciseId"`
	CustomRepsMin     *int      `bson:"customRepsMin"`
	CustomRepsMax     *int      `bson:"customRepsMax"`
	CustomWeight      *float64  `bson:"customWeight"`
	CustomRIR         *int      `bson:"customRir"`
	CustomRPE         *int      `bson:"customRpe"`
	CustomNotes       *string   `bson:"customNotes"`
	CreatedAt         time.Time `bson:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

func (d dayCustomizationDocument) toDomain() domain.DayCustomization {
	return domain.DayCustomization{
		ID:                parseID(d.ID),
		PlanID:            parseID(d.PlanID),
		DayNumber:         d.DayNumber,
		ExerciseSetID:     parseID(d.ExerciseSetID),
		RoutineExerciseID: parseID(d.RoutineExerciseID),
		CustomRepsMin:     d.CustomRepsMin,
		CustomRepsMax:     d.CustomRepsMax,
		CustomWeight:      d.CustomWeight,
		CustomRIR:         d.CustomRIR,
		CustomRPE:         d.CustomRPE,
		CustomNotes:       d.CustomNotes,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// mongoDayCustomizationRepository implements repository.DayCustomizationRepository
type mongoDayCustomizationRepository struct {
	collection *mongo.Collection
}

func NewMongoDayCustomizationRepository(db *mongo.Database) repository.DayCustomizationRepository {
	return &mongoDayCustomizationRepository{
		collection: db.Collection(dayCustomizationCollectionName),
	}
}

func dayFilter(planID uuid.UUID, day int) bson.M {
	return bson.M{"planId": idString(planID), "dayNumber": day}
}

func setFilter(planID uuid.UUID, day int, setID uuid.UUID) bson.M {
	return bson.M{"planId": idString(planID), "dayNumber": day, "exerciseSetId": idString(setID)}
}

func (r *mongoDayCustomizationRepository) FindByDay(ctx context.Context, planID uuid.UUID, day int) ([]domain.DayCustomization, error) {
	cursor, err := r.collection.Find(ctx, dayFilter(planID, day))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []dayCustomizationDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	rows := make([]domain.DayCustomization, 0, len(docs))
	for _, d := range docs {
		rows = append(rows, d.toDomain())
	}
	return rows, nil
}

func (r *mongoDayCustomizationRepository) Find(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (*domain.DayCustomization, error) {
	var doc dayCustomizationDocument
	if err := r.collection.FindOne(ctx, setFilter(planID, day, setID)).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	row := doc.toDomain()
	return &row, nil
}

func (r *mongoDayCustomizationRepository) Exists(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, setFilter(planID, day, setID), options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoDayCustomizationRepository) CountByDay(ctx context.Context, planID uuid.UUID, day int) (int64, error) {
	return r.collection.CountDocuments(ctx, dayFilter(planID, day))
}

func (r *mongoDayCustomizationRepository) CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"planId": idString(planID)})
}

func (r *mongoDayCustomizationRepository) ListCustomizedDays(ctx context.Context, planID uuid.UUID) ([]int, error) {
	values, err := r.collection.Distinct(ctx, "dayNumber", bson.M{"planId": idString(planID)})
	if err != nil {
		return nil, err
	}
	days := make([]int, 0, len(values))
	for _, v := range values {
		switch n := v.(type) {
		case int32:
			days = append(days, int(n))
		case int64:
			days = append(days, int(n))
		}
	}
	sort.Ints(days)
	return days, nil
}

// Upsert replaces the override fields at (planId, dayNumber, exerciseSetId). Nil fields are
// written as null so a cleared discipline does not linger.
func (r *mongoDayCustomizationRepository) Upsert(ctx context.Context, c *domain.DayCustomization) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	c.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"routineExerciseId": idString(c.RoutineExerciseID),
			"customRepsMin":     c.CustomRepsMin,
			"customRepsMax":     c.CustomRepsMax,
			"customWeight":      c.CustomWeight,
			"customRir":         c.CustomRIR,
			"customRpe":         c.CustomRPE,
			"customNotes":       c.CustomNotes,
			"updatedAt":         now,
		},
		"$setOnInsert": bson.M{
			"_id":       idString(c.ID),
			"createdAt": now,
		},
	}
	_, err := r.collection.UpdateOne(ctx, setFilter(c.PlanID, c.DayNumber, c.ExerciseSetID), update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoDayCustomizationRepository) Delete(ctx context.Context, planID uuid.UUID, day int, setID uuid.UUID) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, setFilter(planID, day, setID))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoDayCustomizationRepository) DeleteByDay(ctx context.Context, planID uuid.UUID, day int) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, dayFilter(planID, day))
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoDayCustomizationRepository) DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"planId": idString(planID)})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoDayCustomizationRepository) DeleteBySetIDs(ctx context.Context, setIDs []uuid.UUID) (int64, error) {
	if len(setIDs) == 0 {
		return 0, nil
	}
	result, err := r.collection.DeleteMany(ctx, bson.M{"exerciseSetId": bson.M{"$in": idStrings(setIDs)}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureDayCustomizationIndexes enforces one override row per (plan, day, set).
func EnsureDayCustomizationIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "planId", Value: 1},
				{Key: "dayNumber", Value: 1},
				{Key: "exerciseSetId", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "exerciseSetId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

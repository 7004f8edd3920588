package mongo

import (
	"alcyxob/fitness-planner/internal/domain"
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const dayPlanSlotCollectionName = "day_plan_slots"

type dayPlanSlotDocument struct {
	ID        string    `bson:"_id"`
	PlanID    string    `bson:"planId"`
	DayNumber int       `bson:"dayNumber"`
	IsRestDay bool      `bson:"isRestDay"`
	RoutineID *string   `bson:"routineId"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d dayPlanSlotDocument) toDomain() domain.DayPlanSlot {
	return domain.DayPlanSlot{
		ID:        parseID(d.ID),
		PlanID:    parseID(d.PlanID),
		DayNumber: d.DayNumber,
		IsRestDay: d.IsRestDay,
		RoutineID: parseOptionalID(d.RoutineID),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// mongoDayPlanSlotRepository implements repository.DayPlanSlotRepository
type mongoDayPlanSlotRepository struct {
	collection *mongo.Collection
}

func NewMongoDayPlanSlotRepository(db *mongo.Database) repository.DayPlanSlotRepository {
	return &mongoDayPlanSlotRepository{
		collection: db.Collection(dayPlanSlotCollectionName),
	}
}

// Upsert replaces the slot at (planId, dayNumber), keeping the original _id and createdAt.
func (r *mongoDayPlanSlotRepository) Upsert(ctx context.Context, slot *domain.DayPlanSlot) error {
	if slot.ID == uuid.Nil {
		slot.ID = uuid.New()
	}
	now := time.Now().UTC()
	slot.UpdatedAt = now

	filter := bson.M{"planId": idString(slot.PlanID), "dayNumber": slot.DayNumber}
	update := bson.M{
		"$set": bson.M{
			"isRestDay": slot.IsRestDay,
			"routineId": optionalIDString(slot.RoutineID),
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       idString(slot.ID),
			"createdAt": now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var doc dayPlanSlotDocument
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		return err
	}
	*slot = doc.toDomain()
	return nil
}

func (r *mongoDayPlanSlotRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.DayPlanSlot, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"planId": idString(planID)}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []dayPlanSlotDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	slots := make([]domain.DayPlanSlot, 0, len(docs))
	for _, d := range docs {
		slots = append(slots, d.toDomain())
	}
	return slots, nil
}

func (r *mongoDayPlanSlotRepository) DeleteByPlanAndDay(ctx context.Context, planID uuid.UUID, dayNumber int) (int64, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"planId": idString(planID), "dayNumber": dayNumber})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoDayPlanSlotRepository) DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"planId": idString(planID)})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *mongoDayPlanSlotRepository) ListPlanIDsByRoutine(ctx context.Context, routineID uuid.UUID) ([]uuid.UUID, error) {
	values, err := r.collection.Distinct(ctx, "planId", bson.M{"routineId": idString(routineID)})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			ids = append(ids, parseID(s))
		}
	}
	return ids, nil
}

// EnsureDayPlanSlotIndexes creates the (planId, dayNumber) uniqueness and the routine lookup.
func EnsureDayPlanSlotIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

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

const (
	routineCollectionName         = "routines"
	routineExerciseCollectionName = "routine_exercises"
	exerciseSetCollectionName     = "exercise_sets"
)

type routineDocument struct {
	ID          string    `bson:"_id"`
	OwnerID     string    `bson:"ownerId"`
	Name        string    `bson:"name"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt"`
}

type routineExerciseDocument struct {
	ID           string    `bson:"_id"`
	RoutineID    string    `bson:"routineId"`
	ExerciseName string    `bson:"exerciseName"`
	Position     int       `bson:"position"`
	Notes        string    `bson:"notes,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

type exerciseSetDocument struct {
	ID                string    `bson:"_id"`
	RoutineExerciseID string    `bson:"routineExerciseId"`
	Position          int       `bson:"position"`
	TargetRepsMin     *int      `bson:"targetRepsMin,omitempty"`
	TargetRepsMax     *int      `bson:"targetRepsMax,omitempty"`
	TargetWeight      *float64  `bson:"targetWeight,omitempty"`
	TargetRIR         *int      `bson:"targetRir,omitempty"`
	TargetRPE         *int      `bson:"targetRpe,omitempty"`
	Notes             string    `bson:"notes,omitempty"`
	CreatedAt         time.Time `bson:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt"`
}

func (d routineDocument) toDomain() domain.Routine {
	return domain.Routine{
		ID:          parseID(d.ID),
		OwnerID:     parseID(d.OwnerID),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (d routineExerciseDocument) toDomain() domain.RoutineExercise {
	return domain.RoutineExercise{
		ID:           parseID(d.ID),
		RoutineID:    parseID(d.RoutineID),
		ExerciseName: d.ExerciseName,
		Position:     d.Position,
		Notes:        d.Notes,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (d exerciseSetDocument) toDomain() domain.ExerciseSet {
	return domain.ExerciseSet{
		ID:                parseID(d.ID),
		RoutineExerciseID: parseID(d.RoutineExerciseID),
		Position:          d.Position,
		TargetRepsMin:     d.TargetRepsMin,
		TargetRepsMax:     d.TargetRepsMax,
		TargetWeight:      d.TargetWeight,
		TargetRIR:         d.TargetRIR,
		TargetRPE:         d.TargetRPE,
		Notes:             d.Notes,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

// mongoRoutineRepository keeps routines, their exercises and sets in three collections.
type mongoRoutineRepository struct {
	routines  *mongo.Collection
	exercises *mongo.Collection
	sets      *mongo.Collection
}

// NewMongoRoutineRepository creates a new Routine repository backed by MongoDB.
func NewMongoRoutineRepository(db *mongo.Database) repository.RoutineRepository {
	return &mongoRoutineRepository{
		routines:  db.Collection(routineCollectionName),
		exercises: db.Collection(routineExerciseCollectionName),
		sets:      db.Collection(exerciseSetCollectionName),
	}
}

func (r *mongoRoutineRepository) Create(ctx context.Context, routine *domain.Routine) (uuid.UUID, error) {
	if routine.OwnerID == uuid.Nil || routine.Name == "" {
		return uuid.Nil, errors.New("routine requires ownerId and name")
	}
	if routine.ID == uuid.Nil {
		routine.ID = uuid.New()
	}
	now := time.Now().UTC()
	routine.CreatedAt = now
	routine.UpdatedAt = now

	doc := routineDocument{
		ID:          idString(routine.ID),
		OwnerID:     idString(routine.OwnerID),
		Name:        routine.Name,
		Description: routine.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := r.routines.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uuid.Nil, repository.ErrDuplicate
		}
		return uuid.Nil, err
	}
	return routine.ID, nil
}

func (r *mongoRoutineRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Routine, error) {
	var doc routineDocument
	if err := r.routines.FindOne(ctx, bson.M{"_id": idString(id)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	routine := doc.toDomain()
	return &routine, nil
}

func (r *mongoRoutineRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Routine, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.routines.Find(ctx, bson.M{"ownerId": idString(ownerID)}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []routineDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	routines := make([]domain.Routine, 0, len(docs))
	for _, d := range docs {
		routines = append(routines, d.toDomain())
	}
	return routines, nil
}

func (r *mongoRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	if routine.ID == uuid.Nil {
		return errors.New("routine ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"name":        routine.Name,
			"description": routine.Description,
			"updatedAt":   time.Now().UTC(),
		},
	}
	result, err := r.routines.UpdateOne(ctx, bson.M{"_id": idString(routine.ID)}, update)
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

// Delete removes the routine, its exercises and their sets.
func (r *mongoRoutineRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exerciseIDs, err := r.exercises.Distinct(ctx, "_id", bson.M{"routineId": idString(id)})
	if err != nil {
		return err
	}
	if len(exerciseIDs) > 0 {
		if _, err := r.sets.DeleteMany(ctx, bson.M{"routineExerciseId": bson.M{"$in": exerciseIDs}}); err != nil {
			return err
		}
		if _, err := r.exercises.DeleteMany(ctx, bson.M{"routineId": idString(id)}); err != nil {
			return err
		}
	}
	result, err := r.routines.DeleteOne(ctx, bson.M{"_id": idString(id)})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRoutineRepository) ExistsByOwnerAndName(ctx context.Context, ownerID uuid.UUID, name string, excludeID uuid.UUID) (bool, error) {
	filter := bson.M{"ownerId": idString(ownerID), "name": name}
	if excludeID != uuid.Nil {
		filter["_id"] = bson.M{"$ne": idString(excludeID)}
	}
	n, err := r.routines.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *mongoRoutineRepository) AddExercise(ctx context.Context, exercise *domain.RoutineExercise) (uuid.UUID, error) {
	if exercise.RoutineID == uuid.Nil || exercise.ExerciseName == "" {
		return uuid.Nil, errors.New("routine exercise requires routineId and exerciseName")
	}
	if exercise.ID == uuid.Nil {
		exercise.ID = uuid.New()
	}
	now := time.Now().UTC()
	exercise.CreatedAt = now
	exercise.UpdatedAt = now

	doc := routineExerciseDocument{
		ID:           idString(exercise.ID),
		RoutineID:    idString(exercise.RoutineID),
		ExerciseName: exercise.ExerciseName,
		Position:     exercise.Position,
		Notes:        exercise.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := r.exercises.InsertOne(ctx, doc); err != nil {
		return uuid.Nil, err
	}
	return exercise.ID, nil
}

func (r *mongoRoutineRepository) AddSet(ctx context.Context, set *domain.ExerciseSet) (uuid.UUID, error) {
	if set.RoutineExerciseID == uuid.Nil {
		return uuid.Nil, errors.New("exercise set requires routineExerciseId")
	}
	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	now := time.Now().UTC()
	set.CreatedAt = now
	set.UpdatedAt = now

	doc := exerciseSetDocument{
		ID:                idString(set.ID),
		RoutineExerciseID: idString(set.RoutineExerciseID),
		Position:          set.Position,
		TargetRepsMin:     set.TargetRepsMin,
		TargetRepsMax:     set.TargetRepsMax,
		TargetWeight:      set.TargetWeight,
		TargetRIR:         set.TargetRIR,
		TargetRPE:         set.TargetRPE,
		Notes:             set.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if _, err := r.sets.InsertOne(ctx, doc); err != nil {
		return uuid.Nil, err
	}
	return set.ID, nil
}

// UpdateSet rewrites the target values; nil targets are stored as null.
func (r *mongoRoutineRepository) UpdateSet(ctx context.Context, set *domain.ExerciseSet) error {
	update := bson.M{
		"$set": bson.M{
			"targetRepsMin": set.TargetRepsMin,
			"targetRepsMax": set.TargetRepsMax,
			"targetWeight":  set.TargetWeight,
			"targetRir":     set.TargetRIR,
			"targetRpe":     set.TargetRPE,
			"notes":         set.Notes,
			"updatedAt":     time.Now().UTC(),
		},
	}
	result, err := r.sets.UpdateOne(ctx, bson.M{"_id": idString(set.ID)}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoRoutineRepository) GetExercisesOrdered(ctx context.Context, routineID uuid.UUID) ([]domain.RoutineExercise, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.exercises.Find(ctx, bson.M{"routineId": idString(routineID)}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []routineExerciseDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	exercises := make([]domain.RoutineExercise, 0, len(docs))
	for _, d := range docs {
		exercises = append(exercises, d.toDomain())
	}
	return exercises, nil
}

func (r *mongoRoutineRepository) GetSetsOrdered(ctx context.Context, routineExerciseID uuid.UUID) ([]domain.ExerciseSet, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "position", Value: 1}})
	cursor, err := r.sets.Find(ctx, bson.M{"routineExerciseId": idString(routineExerciseID)}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []exerciseSetDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	sets := make([]domain.ExerciseSet, 0, len(docs))
	for _, d := range docs {
		sets = append(sets, d.toDomain())
	}
	return sets, nil
}

func (r *mongoRoutineRepository) GetSetByID(ctx context.Context, setID uuid.UUID) (*domain.ExerciseSet, error) {
	var doc exerciseSetDocument
	if err := r.sets.FindOne(ctx, bson.M{"_id": idString(setID)}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	set := doc.toDomain()
	return &set, nil
}

// EnsureRoutineIndexes makes routine names unique per owner.
func EnsureRoutineIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func EnsureRoutineExerciseIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "routineId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func EnsureExerciseSetIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "routineExerciseId", Value: 1}, {Key: "position", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

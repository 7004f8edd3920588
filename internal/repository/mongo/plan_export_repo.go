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

const planExportCollectionName = "plan_exports"

type planExportDocument struct {
	ID           string    `bson:"_id"`
	PlanID       string    `bson:"planId"`
	OwnerID      string    `bson:"ownerId"`
	ObjectKey    string    `bson:"objectKey"`
	ContentType  string    `bson:"contentType"`
	SizeBytes    int64     `bson:"sizeBytes"`
	DaysExported int       `bson:"daysExported"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d planExportDocument) toDomain() domain.PlanExport {
	return domain.PlanExport{
		ID:           parseID(d.ID),
		PlanID:       parseID(d.PlanID),
		OwnerID:      parseID(d.OwnerID),
		ObjectKey:    d.ObjectKey,
		ContentType:  d.ContentType,
		SizeBytes:    d.SizeBytes,
		DaysExported: d.DaysExported,
		CreatedAt:    d.CreatedAt,
	}
}

// mongoPlanExportRepository implements repository.PlanExportRepository
type mongoPlanExportRepository struct {
	collection *mongo.Collection
}

// NewMongoPlanExportRepository creates a new PlanExport repository backed by MongoDB.
func NewMongoPlanExportRepository(db *mongo.Database) repository.PlanExportRepository {
	return &mongoPlanExportRepository{
		collection: db.Collection(planExportCollectionName),
	}
}

// Create inserts export metadata. The object itself is already in storage.
func (r *mongoPlanExportRepository) Create(ctx context.Context, export *domain.PlanExport) (uuid.UUID, error) {
	if export.PlanID == uuid.Nil || export.OwnerID == uuid.Nil || export.ObjectKey == "" {
		return uuid.Nil, errors.New("plan export requires planId, ownerId, and objectKey")
	}
	if export.ID == uuid.Nil {
		export.ID = uuid.New()
	}
	export.CreatedAt = time.Now().UTC()

	doc := planExportDocument{
		ID:           idString(export.ID),
		PlanID:       idString(export.PlanID),
		OwnerID:      idString(export.OwnerID),
		ObjectKey:    export.ObjectKey,
		ContentType:  export.ContentType,
		SizeBytes:    export.SizeBytes,
		DaysExported: export.DaysExported,
		CreatedAt:    export.CreatedAt,
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return uuid.Nil, repository.ErrDuplicate
		}
		return uuid.Nil, err
	}
	return export.ID, nil
}

func (r *mongoPlanExportRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]domain.PlanExport, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"planId": idString(planID)}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []planExportDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	exports := make([]domain.PlanExport, 0, len(docs))
	for _, d := range docs {
		exports = append(exports, d.toDomain())
	}
	return exports, nil
}

func (r *mongoPlanExportRepository) DeleteByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"planId": idString(planID)})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsurePlanExportIndexes creates necessary indexes for the plan_exports collection.
func EnsurePlanExportIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// storage keys are unique within the bucket
			Keys:    bson.D{{Key: "objectKey", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

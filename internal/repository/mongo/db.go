package mongo

import (
	"alcyxob/fitness-planner/internal/repository"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary: the connection may succeed while the server is unresponsive.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}
	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewStore wires every Mongo repository onto db. Transactions need a replica set.
func NewStore(client *mongo.Client, db *mongo.Database) *repository.Store {
	return &repository.Store{
		Tx:             NewTransactor(client),
		Users:          NewMongoUserRepository(db),
		Plans:          NewMongoTrainingPlanRepository(db),
		Slots:          NewMongoDayPlanSlotRepository(db),
		Routines:       NewMongoRoutineRepository(db),
		Customizations: NewMongoDayCustomizationRepository(db),
		Sessions:       NewMongoWorkoutSessionRepository(db),
		Exports:        NewMongoPlanExportRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection concurrently. Call during startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	g, ctx := errgroup.WithContext(ctx)
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:             EnsureUserIndexes,
		trainingPlanCollectionName:     EnsureTrainingPlanIndexes,
		dayPlanSlotCollectionName:      EnsureDayPlanSlotIndexes,
		routineCollectionName:          EnsureRoutineIndexes,
		routineExerciseCollectionName:  EnsureRoutineExerciseIndexes,
		exerciseSetCollectionName:      EnsureExerciseSetIndexes,
		dayCustomizationCollectionName: EnsureDayCustomizationIndexes,
		workoutSessionCollectionName:   EnsureWorkoutSessionIndexes,
		planExportCollectionName:       EnsurePlanExportIndexes,
	}
	for name, fn := range ensure {
		name, fn := name, fn
		g.Go(func() error {
			if err := fn(ctx, db.Collection(name)); err != nil {
				return fmt.Errorf("indexes for %s: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// --- Transactions ---

type transactor struct {
	client *mongo.Client
}

// NewTransactor returns a repository.Transactor running fn inside a session transaction.
func NewTransactor(client *mongo.Client) repository.Transactor {
	return &transactor{client: client}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if mongo.SessionFromContext(ctx) != nil {
		return fn(ctx)
	}
	sess, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// --- ID helpers ---
// Documents store ids as canonical uuid strings.

func idString(id uuid.UUID) string {
	return id.String()
}

func optionalIDString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseID(s string) uuid.UUID {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func parseOptionalID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/smallbiznis/quotation/internal/assignment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// setupMongoDB connects to MONGO_URI and returns a throwaway database that is
// dropped when the test ends. Tests are skipped without a server.
func setupMongoDB(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	require.NoError(t, client.Ping(ctx, nil))

	db := client.Database(fmt.Sprintf("quotation_test_%d", time.Now().UnixNano()))
	require.NoError(t, EnsureIndexes(ctx, db))

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	return db
}

func testContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 10*time.Second)
}

func TestVersionFilter(t *testing.T) {
	assert.Equal(t, bson.M{"_id": "a-1", "version": int64(3)}, versionFilter("a-1", 3))

	legacy := versionFilter("a-1", 0)
	assert.Equal(t, "a-1", legacy["_id"])
	assert.Equal(t, bson.A{
		bson.M{"version": int64(0)},
		bson.M{"version": bson.M{"$exists": false}},
	}, legacy["$or"])
}

func TestMongoInsertAndFind(t *testing.T) {
	repo := NewMongo(setupMongoDB(t))
	ctx, cancel := testContext()
	defer cancel()

	a := newAssignment("a-1", "user-1", now)
	require.NoError(t, repo.Insert(ctx, a))
	assert.Equal(t, int64(1), a.Version)

	got, err := repo.FindByID(ctx, "a-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, 225.0, got.TotalPrice)
	assert.Len(t, got.PaymentMilestones, 2)
	assert.Len(t, got.SelectedAddOns, 1)

	missing, err := repo.FindByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	err = repo.Insert(ctx, newAssignment("a-1", "user-2", now))
	assert.ErrorIs(t, err, domain.ErrAssignmentExists)
}

func TestMongoUpdateRejectsStaleVersion(t *testing.T) {
	repo := NewMongo(setupMongoDB(t))
	ctx, cancel := testContext()
	defer cancel()

	require.NoError(t, repo.Insert(ctx, newAssignment("a-1", "user-1", now)))

	first, err := repo.FindByID(ctx, "a-1")
	require.NoError(t, err)
	stale, err := repo.FindByID(ctx, "a-1")
	require.NoError(t, err)

	first.Notes = "first"
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	stale.Notes = "stale"
	assert.ErrorIs(t, repo.Update(ctx, stale), domain.ErrVersionConflict)

	got, err := repo.FindByID(ctx, "a-1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Notes)
	assert.Equal(t, int64(2), got.Version)
}

func TestMongoListOrdering(t *testing.T) {
	repo := NewMongo(setupMongoDB(t))
	ctx, cancel := testContext()
	defer cancel()

	require.NoError(t, repo.Insert(ctx, newAssignment("a-old", "user-1", now)))
	require.NoError(t, repo.Insert(ctx, newAssignment("a-new", "user-1", now.AddDate(0, 0, 1))))
	require.NoError(t, repo.Insert(ctx, newAssignment("a-other", "user-2", now)))

	items, err := repo.ListByUser(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a-new", items[0].ID)
	assert.Equal(t, "a-old", items[1].ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a-new", all[0].ID)
	assert.Equal(t, "a-old", all[1].ID)
	assert.Equal(t, "a-other", all[2].ID)
}

func TestMongoUpdatesUnversionedDocument(t *testing.T) {
	db := setupMongoDB(t)
	repo := NewMongo(db)
	ctx, cancel := testContext()
	defer cancel()

	_, err := db.Collection(collectionName).InsertOne(ctx, bson.M{
		"_id":              "legacy-1",
		"userId":           "user-1",
		"packageId":        "svc-1",
		"basePrice":        100.0,
		"totalPrice":       100.0,
		"status":           "assigned",
		"totalPaid":        0.0,
		"remainingBalance": 100.0,
		"assignedDate":     now,
		"paymentMilestones": bson.A{
			bson.M{"id": "payment-1", "name": "Payment 1 (100%)", "percentage": 100.0, "amount": 100.0, "dueDate": now, "status": "pending"},
		},
	})
	require.NoError(t, err)

	updated, err := Mutate(ctx, repo, "legacy-1", 1, func(a *domain.Assignment) error {
		assert.Equal(t, int64(0), a.Version)
		return a.ApplyPayment("payment-1", 100, now)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.Version)

	got, err := repo.FindByID(ctx, "legacy-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, 100.0, got.TotalPaid)
	assert.Equal(t, domain.PaymentPaid, got.PaymentMilestones[0].Status)
}

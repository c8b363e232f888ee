package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/quotation/internal/audit/domain"
	"github.com/smallbiznis/quotation/internal/audit/repository"
	"github.com/smallbiznis/quotation/internal/clock"
	"github.com/smallbiznis/quotation/pkg/log/ctxlogger"
	"github.com/smallbiznis/quotation/pkg/telemetry/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) auditdomain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&auditdomain.AuditLog{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  repository.Provide(),
		Clock: clock.NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
}

func TestAuditLogRecordsEntry(t *testing.T) {
	svc := setupService(t)
	ctx := correlation.ContextWithCorrelationID(context.Background(), "corr-1")

	err := svc.AuditLog(ctx, "admin-1", "assignment.created", "assignment", "a-1", map[string]any{
		"userEmail":  "jane@example.com",
		"totalPrice": 275.0,
	})
	require.NoError(t, err)

	logs, err := svc.ListByTarget(ctx, "assignment", "a-1")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "admin-1", logs[0].ActorID)
	assert.Equal(t, "assignment.created", logs[0].Action)
	assert.Equal(t, "ja****@example.com", logs[0].Metadata["userEmail"])
	assert.Equal(t, "corr-1", logs[0].Metadata["correlation_id"])
}

func TestAuditLogResolvesActorFromContext(t *testing.T) {
	svc := setupService(t)
	ctx := ctxlogger.ContextWithActor(context.Background(), "admin-2")

	require.NoError(t, svc.AuditLog(ctx, "", "assignment.payment_recorded", "assignment", "a-1", nil))
	require.NoError(t, svc.AuditLog(context.Background(), "", "assignment.payment_recorded", "assignment", "a-1", nil))

	logs, err := svc.ListByTarget(context.Background(), "assignment", "a-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	actors := []string{logs[0].ActorID, logs[1].ActorID}
	assert.ElementsMatch(t, []string{"admin-2", "system"}, actors)
}

func TestAuditLogValidates(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.AuditLog(ctx, "a", " ", "assignment", "a-1", nil), auditdomain.ErrInvalidAction)
	assert.ErrorIs(t, svc.AuditLog(ctx, "a", "x", "assignment", "", nil), auditdomain.ErrInvalidTarget)

	_, err := svc.ListByTarget(ctx, "", "a-1")
	assert.ErrorIs(t, err, auditdomain.ErrInvalidTarget)
}

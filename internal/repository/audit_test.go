package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"pharmatrack/domain"
)

func TestAuditTrailFollowsMutations(t *testing.T) {
	inv, audit := newTestInventory(t)
	ctx := context.Background()

	rec := sampleRecord("alice")
	id, err := inv.Create(ctx, rec)
	require.NoError(t, err)

	updated := sampleRecord("alice")
	updated.Quantity = 3
	updated.UpdatedBy = "bob"
	require.NoError(t, inv.Update(ctx, id, updated))
	require.NoError(t, inv.Delete(ctx, id, "alice"))

	entries, err := audit.List(ctx, domain.AuditFilter{RecordID: id})
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	require.Equal(t, domain.AuditDelete, entries[0].Action)
	require.Equal(t, domain.AuditUpdate, entries[1].Action)
	require.Equal(t, domain.AuditInsert, entries[2].Action)

	require.Nil(t, entries[2].OldValues)
	require.NotNil(t, entries[2].NewValues)
	require.Contains(t, *entries[2].NewValues, "Amoxicillin")

	require.NotNil(t, entries[1].OldValues)
	require.NotNil(t, entries[1].NewValues)
	require.Equal(t, "bob", entries[1].ChangedBy)

	require.NotNil(t, entries[0].OldValues)
	require.Nil(t, entries[0].NewValues)
}

func TestAuditFilters(t *testing.T) {
	inv, audit := newTestInventory(t)
	ctx := context.Background()

	id1, err := inv.Create(ctx, sampleRecord("alice"))
	require.NoError(t, err)
	_, err = inv.Create(ctx, sampleRecord("bob"))
	require.NoError(t, err)
	require.NoError(t, inv.Delete(ctx, id1, "alice"))

	byAction, err := audit.List(ctx, domain.AuditFilter{Action: domain.AuditDelete})
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	require.Equal(t, id1, byAction[0].RecordID)

	byUser, err := audit.List(ctx, domain.AuditFilter{ChangedBy: "bob"})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	require.Equal(t, domain.AuditInsert, byUser[0].Action)

	limited, err := audit.List(ctx, domain.AuditFilter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestAuditAppendDefaultsActor(t *testing.T) {
	db := setupTestDB(t)
	audit := NewAuditLog(db, testLogger())
	ctx := context.Background()

	audit.Append(ctx, "inventory", 42, domain.AuditInsert, nil, map[string]string{"k": "v"}, "")

	entries, err := audit.List(ctx, domain.AuditFilter{RecordID: 42})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "system", entries[0].ChangedBy)
}

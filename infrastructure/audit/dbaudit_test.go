package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joestar02/fleetdesk/domain"
)

type captureRecorder struct {
	events []domain.AuditEvent
}

func (c *captureRecorder) Emit(_ context.Context, ev domain.AuditEvent) {
	c.events = append(c.events, ev)
}

func TestNormalizeStatement(t *testing.T) {
	q := `
		SELECT id, status
		FROM   reservations
		WHERE  vehicle_id = $1`
	assert.Equal(t, "SELECT id, status FROM reservations WHERE vehicle_id = $1", normalizeStatement(q))
}

func TestStatementVerb(t *testing.T) {
	assert.Equal(t, "SELECT", statementVerb("select * from vehicles"))
	assert.Equal(t, "INSERT", statementVerb("INSERT INTO reservations (a) VALUES ($1)"))
	assert.Equal(t, "UPDATE", statementVerb("update vehicles set x = $1"))
	assert.Equal(t, "", statementVerb("   "))
}

func TestStatementTable(t *testing.T) {
	tests := []struct {
		query string
		table string
	}{
		{"SELECT * FROM reservations WHERE id = $1", "reservations"},
		{"INSERT INTO users (username) VALUES ($1)", "users"},
		{"UPDATE vehicles SET current_mileage = $1 WHERE id = $2", "vehicles"},
		{"DELETE FROM drivers WHERE id = $1", "drivers"},
		{`SELECT COUNT(*) FROM "organizations"`, "organizations"},
		{"BEGIN", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.table, statementTable(tt.query), tt.query)
	}
}

func TestParamDigest(t *testing.T) {
	assert.Empty(t, paramDigest(nil))

	a := paramDigest([]interface{}{int64(1), "pending"})
	b := paramDigest([]interface{}{int64(1), "pending"})
	c := paramDigest([]interface{}{int64(2), "pending"})
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	// raw values never appear in the digest
	assert.NotContains(t, a, "pending")
}

func TestDataOperationChangeSet(t *testing.T) {
	rec := &captureRecorder{}
	old := map[string]interface{}{"status": "pending", "purpose": "visit"}
	updated := map[string]interface{}{"status": "confirmed", "purpose": "visit"}

	DataOperation(context.Background(), rec, "update", "reservation", "7", old, updated)

	assert.Len(t, rec.events, 1)
	details := rec.events[0].Details
	changes := details["changes"].(map[string]interface{})
	assert.Len(t, changes, 1)
	statusChange := changes["status"].(map[string]interface{})
	assert.Equal(t, "pending", statusChange["from"])
	assert.Equal(t, "confirmed", statusChange["to"])
}

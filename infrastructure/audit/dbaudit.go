package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/joestar02/fleetdesk/domain"
	"github.com/joestar02/fleetdesk/infrastructure/clock"
)

// Querier is the common query surface of DB and Tx, so repository code can
// run inside or outside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// DB wraps *sql.DB with statement timing, slow-query capture, tracked-table
// events and transaction boundary tracing.
type DB struct {
	inner         *sql.DB
	rec           Recorder
	clock         clock.Clock
	slowThreshold time.Duration
	tracked       map[string]struct{}
}

func NewDB(inner *sql.DB, rec Recorder, clk clock.Clock, slowThreshold time.Duration, trackedTables []string) *DB {
	tracked := make(map[string]struct{}, len(trackedTables))
	for _, t := range trackedTables {
		tracked[strings.ToLower(t)] = struct{}{}
	}
	return &DB{inner: inner, rec: rec, clock: clk, slowThreshold: slowThreshold, tracked: tracked}
}

// Unwrap exposes the raw handle for Ping and Close.
func (d *DB) Unwrap() *sql.DB { return d.inner }

func (d *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := d.clock.Now()
	res, err := d.inner.ExecContext(ctx, query, args...)
	d.observe(ctx, query, args, d.clock.Now().Sub(start), res, err)
	return res, err
}

func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := d.clock.Now()
	rows, err := d.inner.QueryContext(ctx, query, args...)
	d.observe(ctx, query, args, d.clock.Now().Sub(start), nil, err)
	return rows, err
}

func (d *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := d.clock.Now()
	row := d.inner.QueryRowContext(ctx, query, args...)
	d.observe(ctx, query, args, d.clock.Now().Sub(start), nil, nil)
	return row
}

// BeginTx opens a traced transaction. The tx_begin event is emitted
// immediately; commit and rollback emit their own events.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	inner, err := d.inner.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	d.rec.Emit(ctx, domain.AuditEvent{
		Operation: domain.AuditTxBegin,
		Resource:  "transaction",
		Details:   map[string]interface{}{"action": "begin"},
	})
	return &Tx{inner: inner, db: d, ctx: ctx}, nil
}

// Tx is a traced transaction. It counts mutating statements so tx_commit can
// report the shape of the change set.
type Tx struct {
	inner    *sql.Tx
	db       *DB
	ctx      context.Context
	inserted int
	updated  int
	deleted  int
	done     bool
}

func (t *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	start := t.db.clock.Now()
	res, err := t.inner.ExecContext(ctx, query, args...)
	t.db.observe(ctx, query, args, t.db.clock.Now().Sub(start), res, err)
	if err == nil {
		switch statementVerb(query) {
		case "INSERT":
			t.inserted++
		case "UPDATE":
			t.updated++
		case "DELETE":
			t.deleted++
		}
	}
	return res, err
}

func (t *Tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	start := t.db.clock.Now()
	rows, err := t.inner.QueryContext(ctx, query, args...)
	t.db.observe(ctx, query, args, t.db.clock.Now().Sub(start), nil, err)
	return rows, err
}

func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	start := t.db.clock.Now()
	row := t.inner.QueryRowContext(ctx, query, args...)
	t.db.observe(ctx, query, args, t.db.clock.Now().Sub(start), nil, nil)
	return row
}

func (t *Tx) Commit() error {
	err := t.inner.Commit()
	if err != nil {
		t.emitRollback(rollbackReason(t.ctx, err))
		return err
	}
	t.done = true
	t.db.rec.Emit(t.ctx, domain.AuditEvent{
		Operation: domain.AuditTxCommit,
		Resource:  "transaction",
		Details: map[string]interface{}{
			"action":  "commit",
			"new":     t.inserted,
			"dirty":   t.updated,
			"deleted": t.deleted,
		},
	})
	return nil
}

// Rollback is safe to defer after Commit; the duplicate call is ignored.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	err := t.inner.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	t.emitRollback(rollbackReason(t.ctx, nil))
	return err
}

func (t *Tx) emitRollback(reason string) {
	t.done = true
	details := map[string]interface{}{"action": "rollback"}
	if reason != "" {
		details["reason"] = reason
	}
	t.db.rec.Emit(t.ctx, domain.AuditEvent{
		Operation: domain.AuditTxRollback,
		Resource:  "transaction",
		Severity:  "WARNING",
		Details:   details,
	})
}

func rollbackReason(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "deadline"
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// observe emits db_operation events: every statement over the slow-query
// threshold, and every mutation on a tracked table regardless of duration.
func (d *DB) observe(ctx context.Context, query string, args []interface{}, elapsed time.Duration, res sql.Result, execErr error) {
	verb := statementVerb(query)
	table := statementTable(query)
	slow := elapsed > d.slowThreshold
	_, isTracked := d.tracked[table]
	mutation := verb == "INSERT" || verb == "UPDATE" || verb == "DELETE"

	if !slow && !(isTracked && mutation) {
		return
	}

	details := map[string]interface{}{
		"statement":    normalizeStatement(query),
		"verb":         verb,
		"param_digest": paramDigest(args),
	}
	if slow {
		details["slow_query"] = true
	}
	if execErr != nil {
		details["error"] = execErr.Error()
	}
	if res != nil {
		if affected, err := res.RowsAffected(); err == nil {
			details["affected_rows"] = affected
		}
	}

	severity := "INFO"
	if slow {
		severity = "WARNING"
	}
	d.rec.Emit(ctx, domain.AuditEvent{
		Operation:  domain.AuditDBOperation,
		Resource:   table,
		Severity:   severity,
		DurationMS: float64(elapsed.Microseconds()) / 1000.0,
		Details:    details,
	})
}

var whitespaceRE = regexp.MustCompile(`\s+`)

func normalizeStatement(query string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(query, " "))
}

func statementVerb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// statementTable extracts the target table of simple single-table
// statements, which is all the repositories issue.
func statementTable(query string) string {
	fields := strings.Fields(normalizeStatement(query))
	upper := make([]string, len(fields))
	for i, f := range fields {
		upper[i] = strings.ToUpper(f)
	}
	for i, f := range upper {
		switch f {
		case "INTO", "UPDATE", "FROM":
			if f == "UPDATE" && i != 0 {
				continue
			}
			if i+1 < len(fields) {
				return strings.ToLower(strings.Trim(fields[i+1], `"(`))
			}
		}
	}
	return "unknown"
}

func paramDigest(args []interface{}) string {
	if len(args) == 0 {
		return ""
	}
	h := fnv.New64a()
	fmt.Fprint(h, args...)
	return fmt.Sprintf("%x", h.Sum64())
}

// Package cascade implements delete_with_cascade (§4.6): a single
// transaction that walks the one-hop foreign-key back-references of a
// target row, honoring each declared ON DELETE rule, before deleting the
// target row itself. The engine never recurses past one hop.
package cascade

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/relaydata/corebridge/internal/bridgeerr"
	"github.com/relaydata/corebridge/internal/identifier"
	"github.com/relaydata/corebridge/internal/value"
)

// Executor is the minimal contract the engine needs from a database
// handle: execute a parameterized statement and return rows or an
// affected count. *pgxpool.Pool, pgx.Tx and pgx.Conn all satisfy it.
type Executor interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgx.CommandTag, error)
}

// Transactor additionally knows how to begin a transaction, so the engine
// can run its multi-statement cascade atomically.
type Transactor interface {
	Executor
	Begin(ctx context.Context) (pgx.Tx, error)
}

// FKRule mirrors the ON DELETE action declared by a foreign key.
type FKRule string

const (
	Cascade    FKRule = "CASCADE"
	Restrict   FKRule = "RESTRICT"
	SetNull    FKRule = "SET NULL"
	SetDefault FKRule = "SET DEFAULT"
	NoAction   FKRule = "NO ACTION"
)

// BackReference is one foreign key elsewhere in the catalog that targets
// the table being deleted from.
type BackReference struct {
	SourceTable  string
	SourceColumn string
	OnDelete     FKRule
}

const backReferenceQuery = `
SELECT
	tc.table_name AS source_table,
	kcu.column_name AS source_column,
	rc.delete_rule AS on_delete
FROM information_schema.table_constraints tc
JOIN information_schema.key_column_usage kcu
	ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
JOIN information_schema.referential_constraints rc
	ON tc.constraint_name = rc.constraint_name AND tc.table_schema = rc.constraint_schema
JOIN information_schema.constraint_column_usage ccu
	ON rc.unique_constraint_name = ccu.constraint_name AND rc.unique_constraint_schema = ccu.table_schema
WHERE tc.constraint_type = 'FOREIGN KEY' AND ccu.table_name = $1
`

// loadBackReferences discovers every foreign key elsewhere in the catalog
// that targets table, per §4.6 step 1.
func loadBackReferences(ctx context.Context, exec Executor, table string) ([]BackReference, error) {
	rows, err := exec.Query(ctx, backReferenceQuery, table)
	if err != nil {
		return nil, bridgeerr.NewBackendError("load back-references", err)
	}
	defer rows.Close()

	var refs []BackReference
	for rows.Next() {
		var r BackReference
		var onDelete string
		if err := rows.Scan(&r.SourceTable, &r.SourceColumn, &onDelete); err != nil {
			return nil, bridgeerr.NewBackendError("scan back-reference row", err)
		}
		r.OnDelete = FKRule(onDelete)
		refs = append(refs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, bridgeerr.NewBackendError("iterate back-references", err)
	}
	return refs, nil
}

// validateBackReferences re-validates every catalog-sourced identifier
// before it is ever spliced into SQL text — the catalog is untrusted with
// respect to quoting, per §9's "Identifier catalog-trust boundary".
func validateBackReferences(refs []BackReference) error {
	for _, r := range refs {
		if err := identifier.Validate(r.SourceTable); err != nil {
			return err
		}
		if err := identifier.Validate(r.SourceColumn); err != nil {
			return err
		}
	}
	return nil
}

// Result is the outcome of one cascade delete.
type Result struct {
	TotalRowsAffected int64
}

// DeleteWithCascade deletes the row identified by idColumn = id in table,
// first honoring every one-hop foreign-key back-reference's declared
// ON DELETE rule, per §4.6. The catalog lookup runs on pool first; every
// statement after it runs inside one transaction: any sub-statement failure
// (including a Restrict/NoAction probe finding a child row) aborts the
// whole delete.
func DeleteWithCascade(ctx context.Context, pool Transactor, table string, id value.Value, idColumn string) (Result, error) {
	if err := identifier.Validate(table); err != nil {
		return Result{}, err
	}
	if err := identifier.Validate(idColumn); err != nil {
		return Result{}, err
	}

	refs, err := loadBackReferences(ctx, pool, table)
	if err != nil {
		return Result{}, err
	}
	if err := validateBackReferences(refs); err != nil {
		return Result{}, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return Result{}, bridgeerr.NewBackendError("begin cascade transaction", err)
	}
	defer tx.Rollback(ctx)

	idArg, err := id.PgxArg()
	if err != nil {
		return Result{}, err
	}

	var total int64
	for _, ref := range refs {
		n, err := applyBackReference(ctx, tx, ref, idArg)
		if err != nil {
			return Result{}, err
		}
		total += n
	}

	tag, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s = $1", identifier.Quote(table), identifier.Quote(idColumn)), idArg)
	if err != nil {
		return Result{}, bridgeerr.NewBackendError("delete target row", err)
	}
	total += tag.RowsAffected()

	if err := tx.Commit(ctx); err != nil {
		return Result{}, bridgeerr.NewBackendError("commit cascade transaction", err)
	}

	return Result{TotalRowsAffected: total}, nil
}

// restrictProbeSQL, cascadeDeleteSQL, setNullSQL and setDefaultSQL render the
// one SQL statement each back-reference rule issues, given already-quoted
// source table/column identifiers. Kept as pure functions so the exact text
// can be tested without a live connection.
func restrictProbeSQL(quotedTable, quotedColumn string) string {
	return fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE %s = $1)", quotedTable, quotedColumn)
}

func cascadeDeleteSQL(quotedTable, quotedColumn string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", quotedTable, quotedColumn)
}

func setNullSQL(quotedTable, quotedColumn string) string {
	return fmt.Sprintf("UPDATE %s SET %s = NULL WHERE %s = $1", quotedTable, quotedColumn, quotedColumn)
}

func setDefaultSQL(quotedTable, quotedColumn string) string {
	return fmt.Sprintf("UPDATE %s SET %s = DEFAULT WHERE %s = $1", quotedTable, quotedColumn, quotedColumn)
}

func applyBackReference(ctx context.Context, tx pgx.Tx, ref BackReference, idArg any) (int64, error) {
	src := identifier.Quote(ref.SourceTable)
	col := identifier.Quote(ref.SourceColumn)

	switch ref.OnDelete {
	case Restrict, NoAction, "":
		var exists bool
		if err := tx.QueryRow(ctx, restrictProbeSQL(src, col), idArg).Scan(&exists); err != nil {
			return 0, bridgeerr.NewBackendError("restrict probe", err)
		}
		if exists {
			return 0, bridgeerr.NewCascadeBlockedError(ref.SourceTable, ref.SourceColumn)
		}
		return 0, nil

	case Cascade:
		tag, err := tx.Exec(ctx, cascadeDeleteSQL(src, col), idArg)
		if err != nil {
			return 0, bridgeerr.NewBackendError("cascade delete", err)
		}
		return tag.RowsAffected(), nil

	case SetNull:
		tag, err := tx.Exec(ctx, setNullSQL(src, col), idArg)
		if err != nil {
			return 0, bridgeerr.NewBackendError("set-null update", err)
		}
		return tag.RowsAffected(), nil

	case SetDefault:
		tag, err := tx.Exec(ctx, setDefaultSQL(src, col), idArg)
		if err != nil {
			return 0, bridgeerr.NewBackendError("set-default update", err)
		}
		return tag.RowsAffected(), nil

	default:
		return 0, bridgeerr.NewBackendError("apply back-reference", fmt.Errorf("unrecognized ON DELETE rule %q", ref.OnDelete))
	}
}

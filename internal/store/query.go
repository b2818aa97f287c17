package store

import (
	"fmt"
	"strings"
)

// MutationFilter selects journal entries. Zero fields match everything.
type MutationFilter struct {
	RunID  string
	Kinds  []string
	Status string
	// FromSeq and ToSeq bound seq inclusively when non-zero.
	FromSeq int64
	ToSeq   int64
}

// mutationColumns is the column list scanMutation expects.
const mutationColumns = "run_id, seq, kind, args, op_hash, fingerprint, status, error"

// compileMutationFilter converts a filter to parameterized SQL.
//
// Values are never interpolated. Every query ends with the stable order
// key so results are identical across replays.
func compileMutationFilter(f MutationFilter) (string, []any, error) {
	var where []string
	var params []any

	if f.RunID != "" {
		where = append(where, "run_id = ?")
		params = append(params, f.RunID)
	}
	if len(f.Kinds) > 0 {
		marks := make([]string, len(f.Kinds))
		for i, k := range f.Kinds {
			if k == "" {
				return "", nil, fmt.Errorf("compile filter: empty kind")
			}
			marks[i] = "?"
			params = append(params, k)
		}
		where = append(where, "kind IN ("+strings.Join(marks, ", ")+")")
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		params = append(params, f.Status)
	}
	if f.FromSeq != 0 {
		where = append(where, "seq >= ?")
		params = append(params, f.FromSeq)
	}
	if f.ToSeq != 0 {
		if f.FromSeq != 0 && f.ToSeq < f.FromSeq {
			return "", nil, fmt.Errorf("compile filter: seq range %d..%d is empty", f.FromSeq, f.ToSeq)
		}
		where = append(where, "seq <= ?")
		params = append(params, f.ToSeq)
	}

	var whereClause string
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	sql := fmt.Sprintf("SELECT %s FROM mutations%s ORDER BY %s",
		mutationColumns,
		whereClause,
		stableOrderKey())
	return sql, params, nil
}

// stableOrderKey returns the ORDER BY clause of every journal query.
// COLLATE BINARY keeps text ordering identical across SQLite versions.
func stableOrderKey() string {
	return "seq ASC, kind ASC COLLATE BINARY, run_id ASC COLLATE BINARY"
}

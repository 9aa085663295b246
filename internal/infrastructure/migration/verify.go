package migration

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// LedgerRelations are the tables and views the billing service reads or writes
var LedgerRelations = []string{
	"campuses",
	"players",
	"enrollments",
	"guardians",
	"player_guardians",
	"teams",
	"team_assignments",
	"charge_types",
	"charges",
	"payments",
	"payment_allocations",
	"v_enrollment_balances",
}

// MissingRelationsError lists relations absent from the database
type MissingRelationsError struct {
	Relations []string
}

func (e *MissingRelationsError) Error() string {
	return "missing relations: " + strings.Join(e.Relations, ", ")
}

// VerifyLedgerSchema checks that every relation in LedgerRelations exists
func VerifyLedgerSchema(ctx context.Context, db *sql.DB) error {
	var missing []string
	for _, name := range LedgerRelations {
		var regclass sql.NullString
		if err := db.QueryRowContext(ctx, "SELECT to_regclass($1)::text", name).Scan(&regclass); err != nil {
			return fmt.Errorf("failed to look up %s: %w", name, err)
		}
		if !regclass.Valid {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingRelationsError{Relations: missing}
	}
	return nil
}

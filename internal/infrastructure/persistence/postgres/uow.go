package postgres

import (
	"context"

	"github.com/stvt-hub/stvt-training-hub/internal/application/command"
	"github.com/stvt-hub/stvt-training-hub/internal/domain/trainee"

	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK IMPLEMENTATION
// One transition, one transaction. The trainee row is locked FOR UPDATE at
// the start, which totally orders the transitions of one trainee: two
// concurrent calls run one after the other, and the loser re-reads the state
// the winner committed, so its guard rejects cleanly instead of double
// applying.
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork implements command.UnitOfWork for PostgreSQL.
type UnitOfWork struct {
	conn *Connection
}

// NewUnitOfWork creates a unit of work over the connection.
func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// RunInTx executes fn inside a transaction serialized per trainee.
func (u *UnitOfWork) RunInTx(ctx context.Context, traineeID string, fn func(s command.Stores) error) error {
	return u.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		// Serialize on the trainee row. A registration has no row yet;
		// matching zero rows is fine, email uniqueness covers that race.
		if traineeID != "" {
			var locked string
			err := tx.QueryRow(ctx,
				`SELECT id FROM trainees WHERE id = $1 FOR UPDATE`, traineeID,
			).Scan(&locked)
			if err != nil && !IsNoRows(err) {
				return err
			}
		}

		stores := command.Stores{
			Trainees:   (&TraineeRepository{}).withQuerier(tx),
			Projects:   (&ProjectRepository{}).withQuerier(tx),
			Enrollment: (&EnrollmentRepository{}).withQuerier(tx),
			Sequences:  (&SequenceGenerator{}).withQuerier(tx),
		}

		return fn(stores)
	})
}

// compile-time interface checks
var (
	_ command.UnitOfWork = (*UnitOfWork)(nil)
	_ trainee.Repository = (*TraineeRepository)(nil)
)

package repositories

import "context"

// TxRunner executes fn atomically against the backing store. Repository calls
// made with the context passed to fn join the same transaction. The memory
// adapter serializes on a store-wide lock; the pgsql adapter opens a database
// transaction and carries it in the context.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

package repositories

import "context"

// TxFn is a function that runs within a transaction
type TxFn func(ctx context.Context) error

// TransactionManager handles database transactions. Each logical membership
// operation (redeem, quota check-and-increment) runs as one transaction.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}

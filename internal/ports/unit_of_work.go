package ports

import "context"

// Tx is the transaction handle a UnitOfWork places in ctx. The gorm store uses *gorm.DB.
type Tx interface{}

// UnitOfWork groups repository writes that must land together, such as a task
// completion and its history row, or a user and everything the user owns.
//
// fn's error rolls the group back; nil commits it. Repositories called with the ctx
// handed to fn share the transaction.
type UnitOfWork interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func WithTxContext(ctx context.Context, tx Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns nil outside a transaction.
func TxFromContext(ctx context.Context) Tx {
	return ctx.Value(txKey{})
}

// InTx reports whether ctx already carries a transaction.
func InTx(ctx context.Context) bool {
	return ctx != nil && TxFromContext(ctx) != nil
}

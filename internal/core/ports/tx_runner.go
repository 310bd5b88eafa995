package ports

import "context"

// TxRunner executes fn inside a single multi-document transaction. Repository
// calls made with the ctx handed to fn take part in the transaction. fn's
// error aborts the transaction; a nil return commits it.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

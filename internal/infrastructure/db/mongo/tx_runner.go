package mongo

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/99minutos/client-portal/internal/core/domain"
)

// TxRunner runs a function inside one multi-document transaction.
//
// The session API is driven by hand instead of through
// mongo.Session.WithTransaction, which retries the callback on transient
// errors. A failed attempt here is reported to the caller as is.
type TxRunner struct {
	sessions sessionStarter
	log      zerolog.Logger
}

// sessionStarter is satisfied by *mongo.Client.
type sessionStarter interface {
	StartSession(opts ...*options.SessionOptions) (mongo.Session, error)
}

func NewTxRunner(client *mongo.Client, log zerolog.Logger) *TxRunner {
	return &TxRunner{sessions: client, log: log}
}

func (r *TxRunner) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := r.sessions.StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %w", domain.ErrTransactionFailed, err)
	}
	defer sess.EndSession(context.WithoutCancel(ctx))

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())
	if err := sess.StartTransaction(opts); err != nil {
		return fmt.Errorf("%w: start transaction: %w", domain.ErrTransactionFailed, err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// The request context may already be cancelled; the abort must still run.
		if err := sess.AbortTransaction(context.WithoutCancel(ctx)); err != nil {
			r.log.Warn().Err(err).Msg("abort transaction failed")
		}
	}()

	sc := mongo.NewSessionContext(ctx, sess)
	if err := fn(sc); err != nil {
		return err
	}
	if err := sess.CommitTransaction(sc); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

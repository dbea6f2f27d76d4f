package pantry

import (
	"context"
	"errors"
	"sync/atomic"
)

var errInjected = errors.New("injected store failure")

// faultyStore fails the failOn-th mutation inside a unit of work.
type faultyStore struct {
	Store
	failOn int32
}

func (s *faultyStore) WithinTx(ctx context.Context, householdID string, fn func(tx Tx) error) error {
	return s.Store.WithinTx(ctx, householdID, func(tx Tx) error {
		return fn(&faultyTx{Tx: tx, failOn: s.failOn})
	})
}

type faultyTx struct {
	Tx
	failOn int32
	writes atomic.Int32
}

func (t *faultyTx) fail() error {
	if t.writes.Add(1) == t.failOn {
		return errInjected
	}
	return nil
}

func (t *faultyTx) Increment(ctx context.Context, inc Increment) error {
	if err := t.fail(); err != nil {
		return err
	}
	return t.Tx.Increment(ctx, inc)
}

func (t *faultyTx) Create(ctx context.Context, item Item) error {
	if err := t.fail(); err != nil {
		return err
	}
	return t.Tx.Create(ctx, item)
}

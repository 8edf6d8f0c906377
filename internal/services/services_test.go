package services

import (
	"context"
	"errors"

	"plutus/internal/amqp"
	"plutus/internal/core"
	"plutus/internal/storage"
)

// In-memory fakes shared by the service tests.

type fakeTxStore struct {
	txs map[string]core.Transaction
	err error
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{txs: map[string]core.Transaction{}}
}

func (f *fakeTxStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	if f.err != nil {
		return f.err
	}
	f.txs[t.ID] = t
	return nil
}

func (f *fakeTxStore) GetTransaction(_ context.Context, ownerID, id string) (core.Transaction, error) {
	t, ok := f.txs[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, storage.ErrNotFound
	}
	return t, nil
}

func (f *fakeTxStore) ListTransactions(_ context.Context, ownerID string, rng core.Range) ([]core.Transaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []core.Transaction
	for _, t := range f.txs {
		if t.OwnerID == ownerID && rng.Contains(t.Datetime) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTxStore) ListOwnerTransactions(_ context.Context, ownerID string) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.txs {
		if t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTxStore) DeleteTransaction(_ context.Context, ownerID, id string) error {
	t, ok := f.txs[id]
	if !ok || t.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(f.txs, id)
	return nil
}

type fakePublisher struct {
	events []*amqp.TransactionEvent
	err    error
}

func (f *fakePublisher) PublishTransactionChanged(_ context.Context, ev *amqp.TransactionEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type fakeAllocStore struct {
	allocs map[string]core.Allocation // by category
}

func newFakeAllocStore() *fakeAllocStore {
	return &fakeAllocStore{allocs: map[string]core.Allocation{}}
}

func (f *fakeAllocStore) ListAllocations(_ context.Context, ownerID string) ([]core.Allocation, error) {
	var out []core.Allocation
	for _, a := range f.allocs {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAllocStore) UpsertAllocation(_ context.Context, a core.Allocation) error {
	f.allocs[a.Category] = a
	return nil
}

func (f *fakeAllocStore) DeleteAllocation(_ context.Context, ownerID, category string) error {
	a, ok := f.allocs[category]
	if !ok || a.OwnerID != ownerID {
		return storage.ErrNotFound
	}
	delete(f.allocs, category)
	return nil
}

type fakeShareStore struct {
	links map[string]core.ShareLink // by share_id
}

func newFakeShareStore() *fakeShareStore {
	return &fakeShareStore{links: map[string]core.ShareLink{}}
}

func (f *fakeShareStore) CreateShareLink(_ context.Context, l core.ShareLink) error {
	f.links[l.ShareID] = l
	return nil
}

func (f *fakeShareStore) GetShareLink(_ context.Context, shareID string) (core.ShareLink, error) {
	l, ok := f.links[shareID]
	if !ok {
		return core.ShareLink{}, storage.ErrNotFound
	}
	return l, nil
}

func (f *fakeShareStore) ListShareLinks(_ context.Context, ownerID string) ([]core.ShareLink, error) {
	var out []core.ShareLink
	for _, l := range f.links {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeShareStore) DeleteShareLink(_ context.Context, ownerID, id string) error {
	for shareID, l := range f.links {
		if l.ID == id && l.OwnerID == ownerID {
			delete(f.links, shareID)
			return nil
		}
	}
	return storage.ErrNotFound
}

func (f *fakeShareStore) DeleteAllShareLinks(_ context.Context, ownerID string) (int64, error) {
	var deleted int64
	for shareID, l := range f.links {
		if l.OwnerID == ownerID {
			delete(f.links, shareID)
			deleted++
		}
	}
	return deleted, nil
}

type fakeUserLister struct {
	users []storage.User
	err   error
}

func (f *fakeUserLister) ListUsers(_ context.Context) ([]storage.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users, nil
}

var errBoom = errors.New("boom")

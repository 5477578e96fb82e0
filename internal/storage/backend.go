package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Collection names shared by every backend.
const (
	UsersCollection     = "users"
	AnswersCollection   = "answers"
	QuestionsCollection = "questions"
)

// Backend stores whole JSON documents by collection name. Load returns
// (nil, nil) when the collection was never written.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// document is a JSON value kept in one backend collection. All updates go
// through a single mutex so read-modify-write cycles on the same collection
// never interleave.
type document[T any] struct {
	backend Backend
	name    string
	mu      sync.Mutex
}

func newDocument[T any](backend Backend, name string) *document[T] {
	return &document[T]{backend: backend, name: name}
}

func (d *document[T]) load(ctx context.Context) (T, error) {
	var value T
	data, err := d.backend.Load(ctx, d.name)
	if err != nil {
		return value, fmt.Errorf("load %s: %w", d.name, err)
	}
	if len(data) == 0 {
		return value, nil
	}
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("decode %s: %w", d.name, err)
	}
	return value, nil
}

func (d *document[T]) save(ctx context.Context, value T) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.name, err)
	}
	if err := d.backend.Save(ctx, d.name, data); err != nil {
		return fmt.Errorf("save %s: %w", d.name, err)
	}
	return nil
}

// read loads the document under the lock so it never observes a half-applied update.
func (d *document[T]) read(ctx context.Context) (T, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

// put overwrites the document without reading the stored value first.
func (d *document[T]) put(ctx context.Context, value T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.save(ctx, value)
}

func (d *document[T]) update(ctx context.Context, fn func(*T) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	value, err := d.load(ctx)
	if err != nil {
		return err
	}
	if err := fn(&value); err != nil {
		return err
	}
	return d.save(ctx, value)
}

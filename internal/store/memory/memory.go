// Package memory is an in-process store backend. It keeps the same
// referential rules as the SQL backends: books need an existing category and
// deleting a category deletes its books.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"booksapi/internal/entity"
	"booksapi/internal/store"
)

var _ store.Store = (*Store)(nil)

type state struct {
	categories map[int64]entity.Category
	books      map[int64]entity.Book
	tags       map[int64]entity.Tag
	bookTags   map[int64]map[int64]struct{}
}

func newState() *state {
	return &state{
		categories: make(map[int64]entity.Category),
		books:      make(map[int64]entity.Book),
		tags:       make(map[int64]entity.Tag),
		bookTags:   make(map[int64]map[int64]struct{}),
	}
}

func (s *state) clone() *state {
	c := newState()
	for id, v := range s.categories {
		c.categories[id] = v
	}
	for id, v := range s.books {
		c.books[id] = v
	}
	for id, v := range s.tags {
		c.tags[id] = v
	}
	for id, set := range s.bookTags {
		cp := make(map[int64]struct{}, len(set))
		for t := range set {
			cp[t] = struct{}{}
		}
		c.bookTags[id] = cp
	}
	return c
}

type op func(st *state) error

type Store struct {
	mu   sync.RWMutex
	st   *state
	seq  atomic.Int64
	down atomic.Bool
}

func New() *Store {
	return &Store{st: newState()}
}

// SetUnavailable makes every following call fail with store.ErrUnavailable
// until it is called again with false.
func (s *Store) SetUnavailable(down bool) {
	s.down.Store(down)
}

func (s *Store) check() error {
	if s.down.Load() {
		return store.ErrUnavailable
	}
	return nil
}

func (s *Store) nextID() int64 {
	return s.seq.Add(1)
}

func (s *Store) read(fn func(st *state) error) error {
	if err := s.check(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.st)
}

// apply runs ops against a copy of the current state and publishes the copy
// only when all of them succeed.
func (s *Store) apply(ops []op) error {
	if err := s.check(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.st.clone()
	for _, o := range ops {
		if err := o(next); err != nil {
			return err
		}
	}
	s.st = next
	return nil
}

func (s *Store) Categories() store.CategoryRepository { return &categoryRepo{s: s} }
func (s *Store) Books() store.BookRepository          { return &bookRepo{s: s} }
func (s *Store) Tags() store.TagRepository            { return &tagRepo{s: s} }

func (s *Store) Begin(ctx context.Context) (store.UnitOfWork, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return &unitOfWork{s: s}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.check()
}

func (s *Store) Close() error {
	return nil
}

type unitOfWork struct {
	s    *Store
	mu   sync.Mutex
	ops  []op
	done bool
}

func (u *unitOfWork) Categories() store.CategoryRepository { return &categoryRepo{s: u.s, uow: u} }
func (u *unitOfWork) Books() store.BookRepository          { return &bookRepo{s: u.s, uow: u} }
func (u *unitOfWork) Tags() store.TagRepository            { return &tagRepo{s: u.s, uow: u} }

func (u *unitOfWork) enqueue(o op) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return fmt.Errorf("memory: unit of work already finished")
	}
	u.ops = append(u.ops, o)
	return nil
}

func (u *unitOfWork) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return fmt.Errorf("memory: unit of work already finished")
	}
	u.done = true
	return u.s.apply(u.ops)
}

func (u *unitOfWork) Rollback(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.done = true
	u.ops = nil
	return nil
}

// write applies o immediately outside a unit of work and journals it inside
// one. Existence is checked against committed state up front so callers get
// store.ErrNotFound from the call itself.
func write(s *Store, u *unitOfWork, precheck func(st *state) error, o op) error {
	if precheck != nil {
		if err := s.read(precheck); err != nil {
			return err
		}
	}
	if u != nil {
		if err := s.check(); err != nil {
			return err
		}
		return u.enqueue(o)
	}
	return s.apply([]op{o})
}

func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func tagsOf(st *state, bookID int64) []entity.Tag {
	set := st.bookTags[bookID]
	if len(set) == 0 {
		return nil
	}
	tags := make([]entity.Tag, 0, len(set))
	for _, id := range sortedIDs(set) {
		tags = append(tags, st.tags[id])
	}
	return tags
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("memory: %s %d: %w", kind, id, store.ErrNotFound)
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mrcoldpotato/talentflow-v2/pkg/fault"
)

type dataStore[T any] struct {
	db        *sqlx.DB
	tablename string
	hooks     Hooks
	mu        sync.RWMutex
}

func NewDataStore[T any](db *sqlx.DB, tablename string) *dataStore[T] {
	return &dataStore[T]{
		db:        db,
		tablename: tablename,
		mu:        sync.RWMutex{},
	}
}

func (s *dataStore[T]) Base() *sqlx.DB {
	return s.db
}

func (s *dataStore[T]) SetHooks(hooks Hooks) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hooks.PreSave = append(s.hooks.PreSave, hooks.PreSave...)
	s.hooks.PostSave = append(s.hooks.PostSave, hooks.PostSave...)
	s.hooks.AfterSaveCommit = append(s.hooks.AfterSaveCommit, hooks.AfterSaveCommit...)
}

func (s *dataStore[T]) snapshotHooks() Hooks {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hooks
}

func (s *dataStore[T]) QueryRow(ctx context.Context, query string, args ...any) (any, error) {
	row := s.db.QueryRowContext(ctx, s.db.Rebind(query), args...)

	var result any

	err := row.Scan(&result)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}

	return result, nil
}

func (s *dataStore[T]) Get(ctx context.Context, query string, args ...any) (*T, error) {
	var result T

	if err := s.db.GetContext(ctx, &result, s.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (s *dataStore[T]) Select(ctx context.Context, query string, args ...any) ([]T, error) {
	results := []T{}

	if err := s.db.SelectContext(ctx, &results, s.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return []T{}, nil
		}
		return nil, err
	}

	return results, nil
}

func (s *dataStore[T]) Create(ctx context.Context, data DTO) (any, error) {
	return s.Insert(ctx, uuid.NewString(), data)
}

func (s *dataStore[T]) Insert(ctx context.Context, id string, data DTO) (model any, err error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	hooks := s.snapshotHooks()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, hook := range hooks.PreSave {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if err = hook(ctx, tx, id, data, true); err != nil {
			return nil, err
		}
	}

	if err = InsertTx(ctx, tx, s.tablename, id, data); err != nil {
		return nil, err
	}

	model = data.ToModel(id)

	for _, hook := range hooks.PostSave {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if err = hook(ctx, tx, data, model, true); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, hooks, data, model, true)
	return model, nil
}

func (s *dataStore[T]) Update(ctx context.Context, id string, data DTO) (updated *T, err error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	params := map[string]any{"id": id}
	setClause := getNonEmptyFieldsFromDTO(data, params)

	if setClause == "" {
		return nil, fault.NewClientError("no fields to update", fault.ErrInvalidInput)
	}

	hooks := s.snapshotHooks()

	tx, err := s.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	for _, hook := range hooks.PreSave {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if err = hook(ctx, tx, id, data, false); err != nil {
			return nil, err
		}
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", s.tablename, setClause)

	res, err := tx.NamedExecContext(ctx, query, params)
	if err != nil {
		err = translate(err)
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		err = fault.ErrNotFound
		return nil, err
	}

	updated, err = s.getByIDTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	for _, hook := range hooks.PostSave {
		if err = ctx.Err(); err != nil {
			return nil, err
		}
		if err = hook(ctx, tx, data, updated, false); err != nil {
			return nil, err
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, hooks, data, updated, false)
	return updated, nil
}

// BulkUpdate runs query once per row of args inside a single transaction.
func (s *dataStore[T]) BulkUpdate(ctx context.Context, query string, rows [][]any) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(query))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, args := range rows {
		if err = ctx.Err(); err != nil {
			return err
		}
		if _, err = stmt.ExecContext(ctx, args...); err != nil {
			err = translate(err)
			return err
		}
	}

	return nil
}

func (s *dataStore[T]) afterCommit(ctx context.Context, hooks Hooks, data DTO, model any, isNew bool) {
	for _, hook := range hooks.AfterSaveCommit {
		if fn := hook(ctx, data, model, isNew); fn != nil {
			fn()
		}
	}
}

func (s *dataStore[T]) getByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*T, error) {
	instance := new(T)

	fields := strings.Join(getStructFieldNamesFromInstance(instance), ", ")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", fields, s.tablename)

	if err := tx.GetContext(ctx, instance, tx.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}

	return instance, nil
}

// translate maps driver constraint errors onto the fault sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505": // unique_violation
			return fault.ErrUniqueViolation
		case "23503": // foreign_key_violation
			return fault.ErrForeignKeyViolation
		}
		return err
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fault.ErrUniqueViolation
		case sqlite3lib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fault.ErrForeignKeyViolation
		}
	}

	return err
}

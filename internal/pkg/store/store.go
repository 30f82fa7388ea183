package store

import (
	"context"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx"
)

// DTO is a write payload. Its columns come from the `db` struct tags.
type DTO interface {
	// ToModel builds the model that was written under id.
	ToModel(id string) any
}

// This type of hook separates from the regular PostSave hook since it has side effects
type AfterSaveCommitHook func()

// Hooks for database operations
type Hooks struct {
	PreSave         []func(ctx context.Context, tx *sqlx.Tx, id string, data DTO, isNew bool) error
	PostSave        []func(ctx context.Context, tx *sqlx.Tx, data DTO, model any, isNew bool) error
	AfterSaveCommit []func(ctx context.Context, data DTO, model any, isNew bool) AfterSaveCommitHook
}

type Datastorer[T any] interface {
	// Create inserts data under a freshly generated id.
	Create(ctx context.Context, data DTO) (any, error)
	// Insert writes data under a caller chosen id.
	Insert(ctx context.Context, id string, data DTO) (any, error)
	Update(ctx context.Context, id string, data DTO) (*T, error)
	QueryRow(ctx context.Context, query string, args ...any) (any, error)
	Get(ctx context.Context, query string, args ...any) (*T, error)
	Select(ctx context.Context, query string, args ...any) ([]T, error)

	// WARN: BulkUpdate does not run hooks.
	BulkUpdate(ctx context.Context, query string, rows [][]any) error
	// Set hooks.
	SetHooks(hooks Hooks)

	// useful for complex operations wherein store interface does not supported.
	Base() *sqlx.DB
}

// InsertTx writes data as a new row of table inside tx.
func InsertTx(ctx context.Context, tx *sqlx.Tx, table, id string, data DTO) error {
	params := map[string]any{"id": id}
	columns, placeholders := getStructFieldsFromDTO(data, params)

	query := "INSERT INTO " + table + " (id, " + columns + ") VALUES (:id, " + placeholders + ")"
	_, err := tx.NamedExecContext(ctx, query, params)
	return translate(err)
}

func getStructFieldNamesFromInstance(instance any) []string {
	typ := reflect.TypeOf(instance)
	if typ.Kind() == reflect.Ptr { // Handle pointer types
		typ = typ.Elem()
	}

	var fields []string

	for i := range typ.NumField() {
		field := typ.Field(i)
		dbTag := field.Tag.Get("db")

		if dbTag != "" && dbTag != "-" {
			fields = append(fields, dbTag)
		}
	}

	return fields
}

// getStructFieldsFromDTO extracts column names and named placeholders from a
// DTO struct and records each value in params.
func getStructFieldsFromDTO(dto DTO, params map[string]any) (columns string, placeholders string) {
	v := reflect.ValueOf(dto)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var columnNames []string
	var placeholderNames []string

	for i := range t.NumField() {
		field := t.Field(i)

		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}

		columnNames = append(columnNames, dbTag)
		placeholderNames = append(placeholderNames, ":"+dbTag)
		params[dbTag] = fieldValue(v.Field(i))
	}

	return strings.Join(columnNames, ", "), strings.Join(placeholderNames, ", ")
}

func getNonEmptyFieldsFromDTO(dto DTO, params map[string]any) string {
	v := reflect.ValueOf(dto)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := v.Type()

	var fields []string

	for i := range v.NumField() {
		field := t.Field(i)
		value := v.Field(i)

		// Check if the field should be skipped entirely
		if field.Tag.Get("db") == "-" {
			continue
		}

		// Convert field names to SQL column names (assumes struct tag `db:"column_name"`)
		columnName := field.Tag.Get("db")
		if columnName == "" {
			columnName = strings.ToLower(field.Name)
		}

		// Skip empty fields
		if value.Kind() == reflect.Ptr && value.IsNil() || value.Kind() == reflect.String && value.String() == "" {
			continue
		}

		fields = append(fields, columnName+" = :"+columnName)
		params[columnName] = fieldValue(value)
	}

	return strings.Join(fields, ", ")
}

// fieldValue dereferences set pointers so drivers see the plain value.
func fieldValue(v reflect.Value) any {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}
		return v.Elem().Interface()
	}
	return v.Interface()
}

package postgres

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"restaurant-menu/internal/core/domain"
	"restaurant-menu/internal/core/port"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const codeConstraint = "entities_kind_code_key"

// SQLQuerier is satisfied by *sql.DB and *sql.Tx
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlEntityRepository struct {
	db SQLQuerier
}

// NewSqlEntityRepository creates sqlEntityRepository that implements port.EntityRepository
func NewSqlEntityRepository(db SQLQuerier) port.EntityRepository {
	return &sqlEntityRepository{
		db: db,
	}
}

// FindByID finds by kind and id
func (s *sqlEntityRepository) FindByID(ctx context.Context, kind domain.EntityKind, id uuid.UUID) (*domain.Entity, error) {
	query := `SELECT id, kind, code, body, created_at, created_by, updated_at, updated_by
              FROM entities
              WHERE kind = $1 AND id = $2`

	var row dbEntity
	err := s.db.QueryRowContext(ctx, query, kind, id).Scan(
		&row.ID,
		&row.Kind,
		&row.Code,
		&row.Body,
		&row.CreatedAt,
		&row.CreatedBy,
		&row.UpdatedAt,
		&row.UpdatedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s %s: %w", kind, id, domain.ErrEntityNotFound)
		}
		return nil, fmt.Errorf("error querying entity: %w", err)
	}

	return row.ToDomain()
}

// FindLatestCode returns the code of the latest created entity of kind
// starting with prefix
func (s *sqlEntityRepository) FindLatestCode(ctx context.Context, kind domain.EntityKind, prefix string) (*string, error) {
	query := `SELECT code
              FROM entities
              WHERE kind = $1 AND code LIKE $2
              ORDER BY created_at DESC, seq DESC
              LIMIT 1`

	var code string
	err := s.db.QueryRowContext(ctx, query, kind, prefix+"%").Scan(&code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying latest code: %w", err)
	}
	return &code, nil
}

// Create inserts a new entity
func (s *sqlEntityRepository) Create(ctx context.Context, entity domain.Entity) error {
	body, err := json.Marshal(entity.Fields)
	if err != nil {
		return fmt.Errorf("error encoding entity body: %w", err)
	}

	query := `INSERT INTO entities (id, kind, code, body, created_at, created_by, updated_at, updated_by)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = s.db.ExecContext(ctx, query,
		entity.ID,
		entity.Kind,
		sql.NullString{String: entity.Code, Valid: entity.Code != ""},
		string(body),
		entity.CreatedAt,
		entity.CreatedBy,
		entity.UpdatedAt,
		entity.UpdatedBy,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == codeConstraint {
				return fmt.Errorf("%s %s: %w", entity.Kind, entity.Code, domain.ErrCodeConflict)
			}
			return fmt.Errorf("%s %s: %w", entity.Kind, entity.ID, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("error inserting entity: %w", err)
	}
	return nil
}

// Save replaces the body and the update stamps of an existing entity
func (s *sqlEntityRepository) Save(ctx context.Context, entity domain.Entity) error {
	body, err := json.Marshal(entity.Fields)
	if err != nil {
		return fmt.Errorf("error encoding entity body: %w", err)
	}

	query := `UPDATE entities
              SET body = $1, updated_at = $2, updated_by = $3
              WHERE kind = $4 AND id = $5`

	result, err := s.db.ExecContext(ctx, query, string(body), entity.UpdatedAt, entity.UpdatedBy, entity.Kind, entity.ID)
	if err != nil {
		return fmt.Errorf("error updating entity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s %s: %w", entity.Kind, entity.ID, domain.ErrEntityNotFound)
	}
	return nil
}

// List returns the entities of kind whose body contains query.Filter
func (s *sqlEntityRepository) List(ctx context.Context, kind domain.EntityKind, query domain.EntityQuery) ([]domain.Entity, error) {
	where, args, err := filterClause(kind, query.Filter)
	if err != nil {
		return nil, err
	}
	order, args := sortClause(kind, query.Sort, args)
	args = append(args,
		sql.NullInt64{Int64: int64(query.Limit), Valid: query.Limit > 0},
		query.Skip,
	)

	statement := fmt.Sprintf(`SELECT id, kind, code, body, created_at, created_by, updated_at, updated_by
              FROM entities
              WHERE %s
              ORDER BY %s
              LIMIT $%d OFFSET $%d`, where, order, len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying entities: %w", err)
	}
	defer rows.Close()

	entities := []domain.Entity{}
	for rows.Next() {
		var row dbEntity
		if err := rows.Scan(
			&row.ID,
			&row.Kind,
			&row.Code,
			&row.Body,
			&row.CreatedAt,
			&row.CreatedBy,
			&row.UpdatedAt,
			&row.UpdatedBy,
		); err != nil {
			return nil, fmt.Errorf("error scanning entity: %w", err)
		}
		entity, err := row.ToDomain()
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entities: %w", err)
	}
	return entities, nil
}

// Count returns the number of entities of kind whose body contains filter
func (s *sqlEntityRepository) Count(ctx context.Context, kind domain.EntityKind, filter domain.Document) (int64, error) {
	where, args, err := filterClause(kind, filter)
	if err != nil {
		return 0, err
	}

	var total int64
	statement := fmt.Sprintf(`SELECT COUNT(*) FROM entities WHERE %s`, where)
	if err := s.db.QueryRowContext(ctx, statement, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("error counting entities: %w", err)
	}
	return total, nil
}

// filterClause matches the code column on the code field of kind and the
// JSONB body by containment on every other key
func filterClause(kind domain.EntityKind, filter domain.Document) (string, []any, error) {
	body := maps.Clone(filter)
	if body == nil {
		body = domain.Document{}
	}
	args := []any{kind}
	clauses := []string{"kind = $1"}

	if field := kind.CodeField(); field != "" {
		if code, ok := body[field]; ok {
			delete(body, field)
			args = append(args, fmt.Sprint(code))
			clauses = append(clauses, fmt.Sprintf("code = $%d", len(args)))
		}
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", nil, fmt.Errorf("error encoding filter: %w", err)
	}
	args = append(args, string(encoded))
	clauses = append(clauses, fmt.Sprintf("body @> $%d::jsonb", len(args)))

	return strings.Join(clauses, " AND "), args, nil
}

// sortClause orders by columns for metadata keys and by JSONB path for the
// others, dotted keys reaching nested objects
func sortClause(kind domain.EntityKind, sort []domain.SortField, args []any) (string, []any) {
	if len(sort) == 0 {
		return "created_at DESC, seq DESC", args
	}

	parts := make([]string, 0, len(sort)+1)
	for _, field := range sort {
		direction := "ASC"
		if field.Descending {
			direction = "DESC"
		}

		var column string
		switch {
		case field.Key == "createdAt":
			column = "created_at"
		case field.Key == "updatedAt":
			column = "updated_at"
		case field.Key == kind.CodeField() && field.Key != "":
			column = "code"
		default:
			args = append(args, pq.Array(strings.Split(field.Key, ".")))
			column = fmt.Sprintf("body #> $%d::text[]", len(args))
		}
		parts = append(parts, column+" "+direction)
	}
	parts = append(parts, "seq DESC")
	return strings.Join(parts, ", "), args
}

type dbEntity struct {
	ID        uuid.UUID
	Kind      string
	Code      sql.NullString
	Body      []byte
	CreatedAt sql.NullTime
	CreatedBy string
	UpdatedAt sql.NullTime
	UpdatedBy string
}

func (e dbEntity) ToDomain() (*domain.Entity, error) {
	decoder := json.NewDecoder(bytes.NewReader(e.Body))
	decoder.UseNumber()

	var fields domain.Document
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: body of %s is not an object: %w", domain.ErrValidationMismatch, e.ID, err)
	}
	if fields == nil {
		fields = domain.Document{}
	}

	return &domain.Entity{
		ID:        e.ID,
		Kind:      domain.EntityKind(e.Kind),
		Code:      e.Code.String,
		Fields:    fields,
		CreatedAt: e.CreatedAt.Time,
		CreatedBy: e.CreatedBy,
		UpdatedAt: e.UpdatedAt.Time,
		UpdatedBy: e.UpdatedBy,
	}, nil
}

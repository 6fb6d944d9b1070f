package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/techflow/techflow-backend/internal/db/interfaces"
	"github.com/techflow/techflow-backend/internal/db/query"
)

// Repository implements the Repository interface against postgres.
// All identifiers are validated against the schema before they reach
// generated SQL; values always travel as bind parameters.
type Repository struct {
	db        *Database
	schema    *interfaces.Schema
	builder   *query.Builder
	tableName string
}

// NewRepository creates a new postgres repository
func NewRepository(db *Database, schema *interfaces.Schema) *Repository {
	return &Repository{
		db:        db,
		schema:    schema,
		builder:   query.NewBuilder(schema),
		tableName: schema.TableName,
	}
}

// GetByID retrieves a single record by its ID
func (r *Repository) GetByID(ctx context.Context, id interfaces.ID) (map[string]interface{}, error) {
	pool := r.db.pool
	if pool == nil {
		return nil, interfaces.ErrDatabaseNotConnected
	}

	sql := fmt.Sprintf("SELECT * FROM %s WHERE id = $1", r.tableName)
	rows, err := pool.Query(ctx, sql, id.String())
	if err != nil {
		return nil, wrapError("get_by_id", err)
	}

	records, err := collectRecords(rows)
	if err != nil {
		return nil, wrapError("get_by_id", err)
	}
	if len(records) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return records[0], nil
}

// FindOne retrieves the first record matching the query
func (r *Repository) FindOne(ctx context.Context, q *interfaces.Query) (map[string]interface{}, error) {
	if q == nil {
		q = &interfaces.Query{}
	}

	limit := 1
	q.Limit = &limit

	result, err := r.FindMany(ctx, q)
	if err != nil {
		return nil, err
	}

	if len(result.Data) == 0 {
		return nil, interfaces.ErrNotFound
	}

	return result.Data[0], nil
}

// FindMany retrieves multiple records matching the query with pagination
func (r *Repository) FindMany(ctx context.Context, q *interfaces.Query) (*interfaces.ResultPage, error) {
	if q == nil {
		q = &interfaces.Query{}
	}

	pool := r.db.pool
	if pool == nil {
		return nil, interfaces.ErrDatabaseNotConnected
	}

	cols := "*"
	if len(q.Select) > 0 {
		for _, field := range q.Select {
			if err := r.validateField(field); err != nil {
				return nil, err
			}
		}
		cols = strings.Join(q.Select, ", ")
	}

	var args []interface{}
	where, err := r.buildWhere(q.Where, &args)
	if err != nil {
		return nil, err
	}

	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.tableName, where)
	var total int64
	if err := pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, wrapError("count", err)
	}

	sql := fmt.Sprintf("SELECT %s FROM %s%s", cols, r.tableName, where)

	if len(q.OrderBy) > 0 {
		var orders []string
		for _, order := range q.OrderBy {
			if err := r.validateField(order.Field); err != nil {
				return nil, err
			}
			dir := "ASC"
			if strings.EqualFold(order.Direction, "desc") {
				dir = "DESC"
			}
			orders = append(orders, order.Field+" "+dir)
		}
		sql += " ORDER BY " + strings.Join(orders, ", ")
	}

	offset := 0
	if q.Offset != nil {
		offset = *q.Offset
	}
	pageSize := 0
	if q.Limit != nil {
		pageSize = *q.Limit
		args = append(args, pageSize)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		sql += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapError("find_many", err)
	}

	records, err := collectRecords(rows)
	if err != nil {
		return nil, wrapError("find_many", err)
	}

	if pageSize == 0 {
		pageSize = len(records)
	}
	page := 1
	if pageSize > 0 {
		page = (offset / pageSize) + 1
	}

	return &interfaces.ResultPage{
		Data:     records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Create inserts a new record
func (r *Repository) Create(ctx context.Context, data map[string]interface{}) (map[string]interface{}, error) {
	if err := r.builder.ValidateData(data); err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	pool := r.db.pool
	if pool == nil {
		return nil, interfaces.ErrDatabaseNotConnected
	}

	record := make(map[string]interface{})
	for k, v := range data {
		record[k] = v
	}

	if _, exists := record["id"]; !exists {
		record["id"] = uuid.New().String()
	}

	now := time.Now()
	record["created_at"] = now
	if _, hasUpdated := r.schema.Fields["updated_at"]; hasUpdated {
		record["updated_at"] = now
	}

	for fieldName, fieldSchema := range r.schema.Fields {
		if _, exists := record[fieldName]; !exists && fieldSchema.DefaultValue != nil {
			record[fieldName] = fieldSchema.DefaultValue
		}
	}

	names := make([]string, 0, len(record))
	for name := range record {
		if err := r.validateField(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	placeholders := make([]string, 0, len(names))
	args := make([]interface{}, 0, len(names))
	for i, name := range names {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, record[name])
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		r.tableName, strings.Join(names, ", "), strings.Join(placeholders, ", "))

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapError("create", err)
	}

	records, err := collectRecords(rows)
	if err != nil {
		return nil, wrapError("create", err)
	}
	if len(records) == 0 {
		return nil, wrapError("create", errors.New("insert returned no row"))
	}
	return records[0], nil
}

// Update modifies an existing record by ID
func (r *Repository) Update(ctx context.Context, id interfaces.ID, data map[string]interface{}) (map[string]interface{}, error) {
	pool := r.db.pool
	if pool == nil {
		return nil, interfaces.ErrDatabaseNotConnected
	}

	names := make([]string, 0, len(data))
	for name := range data {
		if err := r.validateField(name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	sets := make([]string, 0, len(names)+1)
	args := make([]interface{}, 0, len(names)+2)
	for _, name := range names {
		args = append(args, data[name])
		sets = append(sets, fmt.Sprintf("%s = $%d", name, len(args)))
	}

	if _, hasUpdated := r.schema.Fields["updated_at"]; hasUpdated {
		args = append(args, time.Now())
		sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	args = append(args, id.String())
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING *",
		r.tableName, strings.Join(sets, ", "), len(args))

	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, wrapError("update", err)
	}

	records, err := collectRecords(rows)
	if err != nil {
		return nil, wrapError("update", err)
	}
	if len(records) == 0 {
		return nil, interfaces.ErrNotFound
	}
	return records[0], nil
}

// Upsert inserts or updates based on unique field constraints
func (r *Repository) Upsert(ctx context.Context, uniqueFields map[string]interface{}, data map[string]interface{}) (map[string]interface{}, error) {
	q := &interfaces.Query{
		Where: &interfaces.Filters{
			Conditions: make([]interfaces.Filter, 0, len(uniqueFields)),
		},
	}

	for field, value := range uniqueFields {
		q.Where.Conditions = append(q.Where.Conditions, interfaces.Filter{
			Field: field,
			Value: value,
		})
	}

	existing, err := r.FindOne(ctx, q)
	if err != nil && !errors.Is(err, interfaces.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		id, _ := existing["id"].(string)
		return r.Update(ctx, interfaces.StringID(id), data)
	}

	createData := make(map[string]interface{})
	for k, v := range data {
		createData[k] = v
	}
	for k, v := range uniqueFields {
		createData[k] = v
	}

	return r.Create(ctx, createData)
}

// Delete removes a record by ID
func (r *Repository) Delete(ctx context.Context, id interfaces.ID) error {
	pool := r.db.pool
	if pool == nil {
		return interfaces.ErrDatabaseNotConnected
	}

	sql := fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.tableName)
	tag, err := pool.Exec(ctx, sql, id.String())
	if err != nil {
		return wrapError("delete", err)
	}

	if tag.RowsAffected() == 0 {
		return interfaces.ErrNotFound
	}
	return nil
}

// Count returns the number of records matching the query
func (r *Repository) Count(ctx context.Context, q *interfaces.Query) (int64, error) {
	pool := r.db.pool
	if pool == nil {
		return 0, interfaces.ErrDatabaseNotConnected
	}

	var args []interface{}
	where := ""
	if q != nil {
		var err error
		where, err = r.buildWhere(q.Where, &args)
		if err != nil {
			return 0, err
		}
	}

	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", r.tableName, where)
	var total int64
	if err := pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, wrapError("count", err)
	}
	return total, nil
}

// GetSchema returns the schema for this repository
func (r *Repository) GetSchema() *interfaces.Schema {
	return r.schema
}

func (r *Repository) validateField(name string) error {
	if _, ok := r.schema.Fields[name]; !ok {
		return fmt.Errorf("%w: unknown field %q", interfaces.ErrInvalidQuery, name)
	}
	return nil
}

// buildWhere renders a Filters tree into a WHERE clause. Returns an
// empty string when there is nothing to filter on.
func (r *Repository) buildWhere(filters *interfaces.Filters, args *[]interface{}) (string, error) {
	if filters == nil {
		return "", nil
	}

	expr, err := r.renderFilters(filters, args)
	if err != nil {
		return "", err
	}
	if expr == "" {
		return "", nil
	}
	return " WHERE " + expr, nil
}

func (r *Repository) renderFilters(filters *interfaces.Filters, args *[]interface{}) (string, error) {
	var parts []string

	for _, condition := range filters.Conditions {
		expr, err := r.renderCondition(condition, args)
		if err != nil {
			return "", err
		}
		parts = append(parts, expr)
	}

	for _, group := range filters.AND {
		expr, err := r.renderFilters(group, args)
		if err != nil {
			return "", err
		}
		if expr != "" {
			parts = append(parts, "("+expr+")")
		}
	}

	if len(filters.OR) > 0 {
		var orParts []string
		for _, group := range filters.OR {
			expr, err := r.renderFilters(group, args)
			if err != nil {
				return "", err
			}
			if expr != "" {
				orParts = append(orParts, "("+expr+")")
			}
		}
		if len(orParts) > 0 {
			parts = append(parts, "("+strings.Join(orParts, " OR ")+")")
		}
	}

	return strings.Join(parts, " AND "), nil
}

func (r *Repository) renderCondition(condition interfaces.Filter, args *[]interface{}) (string, error) {
	if err := r.validateField(condition.Field); err != nil {
		return "", err
	}
	field := condition.Field

	bind := func(value interface{}) string {
		*args = append(*args, value)
		return fmt.Sprintf("$%d", len(*args))
	}

	op := condition.Operator
	if op == nil {
		if condition.Value == nil {
			return field + " IS NULL", nil
		}
		return field + " = " + bind(condition.Value), nil
	}

	var exprs []string

	if op.Eq != nil {
		exprs = append(exprs, field+" = "+bind(op.Eq))
	}
	if op.Ne != nil {
		exprs = append(exprs, field+" <> "+bind(op.Ne))
	}
	if op.Gt != nil {
		exprs = append(exprs, field+" > "+bind(op.Gt))
	}
	if op.Gte != nil {
		exprs = append(exprs, field+" >= "+bind(op.Gte))
	}
	if op.Lt != nil {
		exprs = append(exprs, field+" < "+bind(op.Lt))
	}
	if op.Lte != nil {
		exprs = append(exprs, field+" <= "+bind(op.Lte))
	}
	if len(op.In) > 0 {
		exprs = append(exprs, field+" = ANY("+bind(op.In)+")")
	}
	if len(op.NotIn) > 0 {
		exprs = append(exprs, "NOT ("+field+" = ANY("+bind(op.NotIn)+"))")
	}
	if op.Like != "" {
		like := "ILIKE"
		if op.CaseSensitive != nil && *op.CaseSensitive {
			like = "LIKE"
		}
		exprs = append(exprs, field+" "+like+" "+bind(op.Like))
	}
	if op.NotLike != "" {
		like := "ILIKE"
		if op.CaseSensitive != nil && *op.CaseSensitive {
			like = "LIKE"
		}
		exprs = append(exprs, field+" NOT "+like+" "+bind(op.NotLike))
	}
	if op.IsNull {
		exprs = append(exprs, field+" IS NULL")
	}
	if op.IsNotNull {
		exprs = append(exprs, field+" IS NOT NULL")
	}

	if len(exprs) == 0 {
		return "", fmt.Errorf("%w: empty operator for field %q", interfaces.ErrInvalidQuery, field)
	}
	return strings.Join(exprs, " AND "), nil
}

// collectRecords drains rows into generic maps keyed by column name
func collectRecords(rows pgx.Rows) ([]map[string]interface{}, error) {
	defer rows.Close()

	descriptions := rows.FieldDescriptions()
	var records []map[string]interface{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		record := make(map[string]interface{}, len(descriptions))
		for i, desc := range descriptions {
			record[string(desc.Name)] = values[i]
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func wrapError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", interfaces.ErrUniqueConstraint, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", interfaces.ErrForeignKeyConstraint, pgErr.ConstraintName)
		}
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return interfaces.ErrNotFound
	}
	return &interfaces.DatabaseError{Op: op, Err: err}
}

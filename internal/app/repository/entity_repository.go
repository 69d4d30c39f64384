package repository

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/tabletime/tabletime-backend/internal/errors"
	"github.com/tabletime/tabletime-backend/pkg/logger"
	"github.com/tabletime/tabletime-backend/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when an id based read, update or delete targets a missing row.
	ErrNotFound = errors.New("record not found")
	// ErrConstraintViolation is returned when a write would break a unique index.
	ErrConstraintViolation = errors.New("constraint violation")
	// ErrEmptyFilter guards bulk deletes against wiping a whole collection.
	ErrEmptyFilter = errors.New("bulk operation requires a filter")
)

// Filter is a set of column equality conditions. Slice values become IN conditions.
type Filter map[string]interface{}

// QueryOption refines a FindMany query.
type QueryOption func(*gorm.DB) *gorm.DB

func OrderBy(order string) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Order(order) }
}

func Paginate(p util.Pagination) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Offset(p.Offset()).Limit(p.Limit) }
}

func Preload(association string, args ...interface{}) QueryOption {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(association, args...) }
}

// EntityRepository is the single-kind store contract shared by every entity.
type EntityRepository[T any] interface {
	FindByID(ctx context.Context, id uint) (*T, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*T, error)
	FindMany(ctx context.Context, filter Filter, opts ...QueryOption) ([]T, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Insert(ctx context.Context, entity *T) error
	Save(ctx context.Context, entity *T) error
	UpdateByID(ctx context.Context, id uint, patch map[string]interface{}) error
	DeleteByID(ctx context.Context, id uint) error
	DeleteMany(ctx context.Context, filter Filter) (int64, error)
}

type entityRepository[T any] struct {
	db   *gorm.DB
	kind string
}

func newEntityRepository[T any](db *gorm.DB, kind string) *entityRepository[T] {
	return &entityRepository[T]{db: db, kind: kind}
}

// translate maps driver errors onto the store error contract.
func (r *entityRepository[T]) translate(op string, err error, fields map[string]interface{}) error {
	switch {
	case apperrors.IsRecordNotFound(err):
		return ErrNotFound
	case apperrors.IsUniqueViolation(err):
		logger.Warn("Constraint violation in database", withKind(r.kind, op, fields))
		return fmt.Errorf("%w: %s %s: %v", ErrConstraintViolation, r.kind, op, err)
	default:
		logger.Error("Database operation failed", err, withKind(r.kind, op, fields))
		return err
	}
}

func withKind(kind, op string, fields map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{"kind": kind, "op": op}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func (r *entityRepository[T]) FindByID(ctx context.Context, id uint) (*T, error) {
	logger.Debug("Finding record by ID", map[string]interface{}{"kind": r.kind, "id": id})

	var entity T
	if err := r.db.WithContext(ctx).First(&entity, id).Error; err != nil {
		return nil, r.translate("find", err, map[string]interface{}{"id": id})
	}
	return &entity, nil
}

// FindByIDForUpdate locks the row until the surrounding transaction ends.
func (r *entityRepository[T]) FindByIDForUpdate(ctx context.Context, id uint) (*T, error) {
	logger.Debug("Locking record by ID", map[string]interface{}{"kind": r.kind, "id": id})

	var entity T
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&entity, id).Error
	if err != nil {
		return nil, r.translate("lock", err, map[string]interface{}{"id": id})
	}
	return &entity, nil
}

func (r *entityRepository[T]) FindMany(ctx context.Context, filter Filter, opts ...QueryOption) ([]T, error) {
	logger.Debug("Finding records", map[string]interface{}{"kind": r.kind, "filter": filter})

	query := r.db.WithContext(ctx).Model(new(T))
	if len(filter) > 0 {
		query = query.Where(map[string]interface{}(filter))
	}
	for _, opt := range opts {
		query = opt(query)
	}

	var entities []T
	if err := query.Find(&entities).Error; err != nil {
		return nil, r.translate("find_many", err, map[string]interface{}{"filter": filter})
	}
	return entities, nil
}

func (r *entityRepository[T]) Count(ctx context.Context, filter Filter) (int64, error) {
	query := r.db.WithContext(ctx).Model(new(T))
	if len(filter) > 0 {
		query = query.Where(map[string]interface{}(filter))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, r.translate("count", err, map[string]interface{}{"filter": filter})
	}
	return count, nil
}

func (r *entityRepository[T]) Insert(ctx context.Context, entity *T) error {
	logger.Debug("Inserting record", map[string]interface{}{"kind": r.kind})

	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return r.translate("insert", err, nil)
	}
	return nil
}

// Save writes every column of an already loaded entity.
func (r *entityRepository[T]) Save(ctx context.Context, entity *T) error {
	logger.Debug("Saving record", map[string]interface{}{"kind": r.kind})

	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return r.translate("save", err, nil)
	}
	return nil
}

func (r *entityRepository[T]) UpdateByID(ctx context.Context, id uint, patch map[string]interface{}) error {
	logger.Debug("Updating record by ID", map[string]interface{}{"kind": r.kind, "id": id})

	result := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(patch)
	if result.Error != nil {
		return r.translate("update", result.Error, map[string]interface{}{"id": id})
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *entityRepository[T]) DeleteByID(ctx context.Context, id uint) error {
	logger.Debug("Deleting record by ID", map[string]interface{}{"kind": r.kind, "id": id})

	result := r.db.WithContext(ctx).Delete(new(T), id)
	if result.Error != nil {
		return r.translate("delete", result.Error, map[string]interface{}{"id": id})
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *entityRepository[T]) DeleteMany(ctx context.Context, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, ErrEmptyFilter
	}

	result := r.db.WithContext(ctx).Where(map[string]interface{}(filter)).Delete(new(T))
	if result.Error != nil {
		return 0, r.translate("delete_many", result.Error, map[string]interface{}{"filter": filter})
	}

	logger.Debug("Deleted records", map[string]interface{}{
		"kind":   r.kind,
		"filter": filter,
		"count":  result.RowsAffected,
	})
	return result.RowsAffected, nil
}

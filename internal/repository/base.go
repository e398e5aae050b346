package repository

import (
	"context"

	"gorm.io/gorm"
)

// Scope narrows a query; repositories express their predicates as scopes.
type Scope = func(*gorm.DB) *gorm.DB

// Page offset/limit window, zero Limit means no limit
type Page struct {
	Offset int
	Limit  int
}

func (p Page) scope(db *gorm.DB) *gorm.DB {
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	if p.Offset > 0 {
		db = db.Offset(p.Offset)
	}
	return db
}

// crud is the shared gorm plumbing behind each aggregate repository
type crud[T any] struct {
	db *gorm.DB
}

func (r crud[T]) create(ctx context.Context, v *T) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r crud[T]) createBatch(ctx context.Context, vs []T) error {
	if len(vs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&vs).Error
}

func (r crud[T]) save(ctx context.Context, v *T) error {
	return r.db.WithContext(ctx).Save(v).Error
}

func (r crud[T]) first(ctx context.Context, scopes ...Scope) (*T, error) {
	var v T
	if err := r.db.WithContext(ctx).Scopes(scopes...).First(&v).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r crud[T]) find(ctx context.Context, scopes ...Scope) ([]T, error) {
	var vs []T
	err := r.db.WithContext(ctx).Scopes(scopes...).Find(&vs).Error
	return vs, err
}

// page counts the filtered rows, then loads one window ordered by order.
// Associations in preloads are loaded for the window only.
func (r crud[T]) page(ctx context.Context, p Page, order string, preloads []string, scopes ...Scope) ([]T, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []T{}, 0, nil
	}

	var vs []T
	db := r.db.WithContext(ctx).Scopes(scopes...)
	for _, assoc := range preloads {
		db = db.Preload(assoc)
	}
	if order != "" {
		db = db.Order(order)
	}
	if err := db.Scopes(p.scope).Find(&vs).Error; err != nil {
		return nil, 0, err
	}
	return vs, total, nil
}

func (r crud[T]) count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Scopes(scopes...).Count(&n).Error
	return n, err
}

func (r crud[T]) exists(ctx context.Context, scopes ...Scope) (bool, error) {
	n, err := r.count(ctx, scopes...)
	return n > 0, err
}

func (r crud[T]) delete(ctx context.Context, scopes ...Scope) error {
	return r.db.WithContext(ctx).Scopes(scopes...).Delete(new(T)).Error
}

// ── common scopes ──

func where(query string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

// whereIf applies the condition only when ok
func whereIf(ok bool, query string, args ...any) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if !ok {
			return db
		}
		return db.Where(query, args...)
	}
}

// excluding drops the row with id from uniqueness checks on update
func excluding(column, id string) Scope {
	return whereIf(id != "", column+" <> ?", id)
}

func preload(assoc string) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Preload(assoc) }
}

func orderBy(order string) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Order(order) }
}

func likePattern(keyword string) string {
	return "%" + keyword + "%"
}

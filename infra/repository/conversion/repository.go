package conversion

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/amirasaad/convlog/pkg/domain/conversion"
	repo "github.com/amirasaad/convlog/pkg/repository/conversion"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// New returns a conversion repository bound to db, which may be a transaction.
func New(db *gorm.DB) repo.Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(
	ctx context.Context,
	record *conversion.Record,
) (bool, error) {
	model := mapDomainToModel(record)
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(model).Error; err != nil {
		return false, fmt.Errorf("upsert conversion %q: %w", record.ID, err)
	}

	// The conflict update rewrites updated_at but never created_at, and the
	// row stays locked until the transaction ends, so the stamps read back
	// here are the ones this statement wrote.
	var createdAt, updatedAt time.Time
	row := r.db.WithContext(ctx).
		Model(&Conversion{}).
		Select("created_at", "updated_at").
		Where("id = ?", record.ID).
		Row()
	if err := row.Scan(&createdAt, &updatedAt); err != nil {
		return false, fmt.Errorf("read back conversion %q: %w", record.ID, err)
	}
	return createdAt.Equal(updatedAt), nil
}

func (r *repository) ListRecent(
	ctx context.Context,
	limit int,
) ([]*conversion.Record, error) {
	var rows []Conversion
	if err := r.db.WithContext(ctx).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "updated_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}

	result := make([]*conversion.Record, 0, len(rows))
	for i := range rows {
		result = append(result, mapModelToDomain(&rows[i]))
	}
	return result, nil
}

func (r *repository) DeleteAll(ctx context.Context) error {
	if err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&Conversion{}).Error; err != nil {
		return fmt.Errorf("delete conversions: %w", err)
	}
	return nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&Conversion{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count conversions: %w", err)
	}
	return n, nil
}

func (r *repository) Version(ctx context.Context) (string, error) {
	var (
		n      int64
		latest sql.NullString
	)
	row := r.db.WithContext(ctx).
		Model(&Conversion{}).
		Select("COUNT(*), MAX(updated_at)").
		Row()
	if err := row.Scan(&n, &latest); err != nil {
		return "", fmt.Errorf("read conversions version: %w", err)
	}
	return fmt.Sprintf("%d@%s", n, latest.String), nil
}

func mapDomainToModel(r *conversion.Record) *Conversion {
	return &Conversion{
		ID:         r.ID,
		InputValue: r.InputValue,
		FromUnit:   r.FromUnit,
		ToUnit:     r.ToUnit,
		Result:     r.Result,
		Timestamp:  r.Timestamp.UTC(),
	}
}

func mapModelToDomain(m *Conversion) *conversion.Record {
	return &conversion.Record{
		ID:         m.ID,
		InputValue: m.InputValue,
		FromUnit:   m.FromUnit,
		ToUnit:     m.ToUnit,
		Result:     m.Result,
		Timestamp:  m.Timestamp.UTC(),
	}
}

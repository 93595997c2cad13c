package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/draftops/outreach-engine/internal/domain"
)

type ListParams struct {
	Domain   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// DraftRepository persists the audit trail of created drafts. The recipient
// batch itself is session-scoped and never stored here.
type DraftRepository interface {
	Create(ctx context.Context, record *domain.DraftRecord) error
	GetByID(ctx context.Context, id string) (*domain.DraftRecord, error)
	List(ctx context.Context, params ListParams) ([]domain.DraftRecord, int64, error)
}

type GormDraftRepo struct {
	db *gorm.DB
}

func NewGormDraftRepo(db *gorm.DB) *GormDraftRepo {
	return &GormDraftRepo{db: db}
}

func (r *GormDraftRepo) Create(ctx context.Context, record *domain.DraftRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *GormDraftRepo) GetByID(ctx context.Context, id string) (*domain.DraftRecord, error) {
	var record domain.DraftRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *GormDraftRepo) List(ctx context.Context, params ListParams) ([]domain.DraftRecord, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.DraftRecord{})

	if params.Domain != "" {
		query = query.Where("domain = ?", params.Domain)
	}
	if params.From != nil {
		query = query.Where("created_at >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("created_at <= ?", *params.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var records []domain.DraftRecord
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&records).Error
	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

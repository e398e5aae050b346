package repository

import (
	"context"

	"gorm.io/gorm"

	"aptcare/backend/internal/model"
)

// ContractFilter contract list criteria
type ContractFilter struct {
	Keyword         string
	RepairRequestID string
	Status          model.ActiveStatus
	Page
}

// ContractRepository outsourcing contract data access
type ContractRepository interface {
	Create(ctx context.Context, c *model.Contract) error
	Update(ctx context.Context, c *model.Contract) error
	GetByID(ctx context.Context, id string) (*model.Contract, error)
	ExistsCode(ctx context.Context, code, excludeID string) (bool, error)
	List(ctx context.Context, f ContractFilter) ([]model.Contract, int64, error)
}

type contractRepo struct {
	crud[model.Contract]
}

// NewContractRepo creates a ContractRepository
func NewContractRepo(db *gorm.DB) ContractRepository {
	return &contractRepo{crud[model.Contract]{db: db}}
}

func (r *contractRepo) Create(ctx context.Context, c *model.Contract) error { return r.create(ctx, c) }
func (r *contractRepo) Update(ctx context.Context, c *model.Contract) error { return r.save(ctx, c) }

func (r *contractRepo) GetByID(ctx context.Context, id string) (*model.Contract, error) {
	return r.first(ctx, where("contract_id = ?", id))
}

func (r *contractRepo) ExistsCode(ctx context.Context, code, excludeID string) (bool, error) {
	return r.exists(ctx, where("UPPER(contract_code) = UPPER(?)", code), excluding("contract_id", excludeID))
}

func (r *contractRepo) List(ctx context.Context, f ContractFilter) ([]model.Contract, int64, error) {
	return r.page(ctx, f.Page, "created_at DESC", nil,
		whereIf(f.Keyword != "", "(contract_code ILIKE ? OR contractor_name ILIKE ?)", likePattern(f.Keyword), likePattern(f.Keyword)),
		whereIf(f.RepairRequestID != "", "repair_request_id = ?", f.RepairRequestID),
		whereIf(f.Status != "", "status = ?", f.Status),
	)
}

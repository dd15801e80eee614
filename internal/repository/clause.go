package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pactly/contract-analyzer/internal/entity"
)

type ClauseRepository interface {
	// BulkCreate replaces any existing clauses for the contract, so a
	// redelivered clause stage leaves exactly one clause set.
	BulkCreate(ctx context.Context, contractID uuid.UUID, clauses []entity.Clause) error
	GetByContractID(ctx context.Context, contractID uuid.UUID) ([]entity.Clause, error)
}

type clauseRepo struct {
	db  *gorm.DB
	log *slog.Logger
}

func NewClauseRepository(db *gorm.DB, log *slog.Logger) ClauseRepository {
	return &clauseRepo{db: db, log: log}
}

func (r *clauseRepo) BulkCreate(ctx context.Context, contractID uuid.UUID, clauses []entity.Clause) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entity.Clause{}, "contract_id = ?", contractID).Error; err != nil {
			return err
		}
		if len(clauses) == 0 {
			return nil
		}
		for i := range clauses {
			if clauses[i].ID == uuid.Nil {
				clauses[i].ID = uuid.New()
			}
			clauses[i].ContractID = contractID
		}
		if err := tx.Create(&clauses).Error; err != nil {
			r.log.Error("clause bulk create failed", "contract_id", contractID, "count", len(clauses), "err", err)
			return err
		}
		r.log.Info("clauses created", "contract_id", contractID, "count", len(clauses))
		return nil
	})
}

func (r *clauseRepo) GetByContractID(ctx context.Context, contractID uuid.UUID) ([]entity.Clause, error) {
	var out []entity.Clause
	err := r.db.WithContext(ctx).
		Where("contract_id = ?", contractID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

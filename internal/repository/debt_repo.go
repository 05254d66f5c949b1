package repository

import (
	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
)

type DebtRepository struct {
	db *gorm.DB
}

func NewDebtRepository(db *gorm.DB) *DebtRepository {
	return &DebtRepository{db: db}
}

func (r *DebtRepository) Create(debt *model.DebtRecord) error {
	return r.db.Create(debt).Error
}

func (r *DebtRepository) GetByID(id int64) (*model.DebtRecord, error) {
	var debt model.DebtRecord
	err := r.db.Where("id = ?", id).First(&debt).Error
	if err != nil {
		return nil, err
	}
	return &debt, nil
}

func (r *DebtRepository) Update(debt *model.DebtRecord) error {
	return r.db.Save(debt).Error
}

// SearchByDebtorID 以身分證首字母 + 末五碼查詢
func (r *DebtRepository) SearchByDebtorID(firstLetter, last5, residence string) ([]model.DebtRecord, error) {
	query := r.db.Where("debtor_id_first_letter = ? AND debtor_id_last5 = ?", firstLetter, last5)
	if residence != "" {
		query = query.Where("residence = ?", residence)
	}

	var debts []model.DebtRecord
	err := query.Order("created_at desc").Find(&debts).Error
	return debts, err
}

// ListByUploader 會員上傳的債務記錄
func (r *DebtRepository) ListByUploader(uploadedBy int64, page, pageSize int) ([]model.DebtRecord, int64, error) {
	query := r.db.Model(&model.DebtRecord{}).Where("uploaded_by = ?", uploadedBy)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var debts []model.DebtRecord
	err := query.Order("created_at desc").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&debts).Error
	return debts, total, err
}

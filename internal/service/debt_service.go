package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/free689594-collab/BurgBug-sub002/internal/model"
	"github.com/free689594-collab/BurgBug-sub002/internal/model/dto"
	"github.com/free689594-collab/BurgBug-sub002/internal/repository"
)

var (
	ErrDebtNotFound           = errors.New("找不到該筆債務記錄")
	ErrInvalidDebtorID        = errors.New("身分證字號格式錯誤")
	ErrInvalidRepaymentStatus = errors.New("無效的還款狀態")
	ErrNotDebtOwner           = errors.New("只有上傳者可以更新還款狀態")
)

type DebtService struct {
	debtRepo  *repository.DebtRepository
	userRepo  *repository.UserRepository
	auditRepo *repository.AuditRepository
}

func NewDebtService(debtRepo *repository.DebtRepository, userRepo *repository.UserRepository, auditRepo *repository.AuditRepository) *DebtService {
	return &DebtService{
		debtRepo:  debtRepo,
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

// Upload 上傳債務記錄
// 身分證字號拆出首字母與末五碼作為查詢索引，額度扣除由中介層處理
func (s *DebtService) Upload(userID int64, req *dto.DebtUploadRequest) (*model.DebtRecord, error) {
	idNumber := strings.ToUpper(strings.TrimSpace(req.DebtorIDFull))
	if len(idNumber) != 10 || idNumber[0] < 'A' || idNumber[0] > 'Z' {
		return nil, ErrInvalidDebtorID
	}
	if !model.IsValidRepaymentStatus(req.RepaymentStatus) {
		return nil, ErrInvalidRepaymentStatus
	}

	debt := &model.DebtRecord{
		UploadedBy:          userID,
		DebtorName:          req.DebtorName,
		DebtorIDFull:        idNumber,
		DebtorIDFirstLetter: idNumber[:1],
		DebtorIDLast5:       idNumber[5:],
		DebtorPhone:         req.DebtorPhone,
		Gender:              req.Gender,
		Profession:          req.Profession,
		Residence:           req.Residence,
		DebtDate:            req.DebtDate,
		FaceValue:           req.FaceValue,
		PaymentFrequency:    req.PaymentFrequency,
		RepaymentStatus:     req.RepaymentStatus,
		Note:                req.Note,
	}
	if err := s.debtRepo.Create(debt); err != nil {
		return nil, err
	}
	return debt, nil
}

// Search 以身分證首字母 + 末五碼查詢債務記錄
// 回傳遮罩版結果：姓名只留姓氏、證號只留首字母與末五碼、電話不提供
func (s *DebtService) Search(req *dto.DebtSearchRequest) ([]dto.DebtSearchResult, error) {
	firstLetter := strings.ToUpper(req.DebtorIDFirstLetter)
	debts, err := s.debtRepo.SearchByDebtorID(firstLetter, req.DebtorIDLast5, req.Residence)
	if err != nil {
		return nil, err
	}

	results := make([]dto.DebtSearchResult, 0, len(debts))
	for _, d := range debts {
		result := dto.DebtSearchResult{
			ID:                  d.ID,
			DebtorName:          maskName(d.DebtorName),
			DebtorIDFull:        maskIDNumber(d.DebtorIDFull),
			Gender:              d.Gender,
			Profession:          d.Profession,
			Residence:           d.Residence,
			DebtDate:            d.DebtDate,
			FaceValue:           d.FaceValue,
			PaymentFrequency:    d.PaymentFrequency,
			RepaymentStatus:     d.RepaymentStatus,
			DebtorIDFirstLetter: d.DebtorIDFirstLetter,
			DebtorIDLast5:       d.DebtorIDLast5,
			CreatedAt:           d.CreatedAt.Format("2006-01-02"),
		}
		if uploader, err := s.userRepo.GetByID(d.UploadedBy); err == nil {
			result.UploaderNickname = uploader.Nickname
			result.UploaderRegion = uploader.BusinessRegion
		}
		results = append(results, result)
	}
	return results, nil
}

// ListMine 會員自己上傳的債務記錄（不遮罩）
func (s *DebtService) ListMine(userID int64, page, pageSize int) ([]model.DebtRecord, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.debtRepo.ListByUploader(userID, page, pageSize)
}

// UpdateStatus 上傳者更新還款狀態
func (s *DebtService) UpdateStatus(userID, debtID int64, req *dto.DebtStatusUpdateRequest) (*model.DebtRecord, error) {
	if !model.IsValidRepaymentStatus(req.RepaymentStatus) {
		return nil, ErrInvalidRepaymentStatus
	}

	debt, err := s.getDebt(debtID)
	if err != nil {
		return nil, err
	}
	if debt.UploadedBy != userID {
		return nil, ErrNotDebtOwner
	}

	debt.RepaymentStatus = req.RepaymentStatus
	if req.Note != "" {
		debt.Note = req.Note
	}
	if err := s.debtRepo.Update(debt); err != nil {
		return nil, err
	}
	return debt, nil
}

// AdminEdit 管理員修正債務記錄的還款狀態，留下稽核記錄
func (s *DebtService) AdminEdit(actorID, debtID int64, req *dto.DebtStatusUpdateRequest, reason string) (*model.DebtRecord, error) {
	if !model.IsValidRepaymentStatus(req.RepaymentStatus) {
		return nil, ErrInvalidRepaymentStatus
	}

	debt, err := s.getDebt(debtID)
	if err != nil {
		return nil, err
	}

	oldStatus := debt.RepaymentStatus
	now := time.Now()
	debt.RepaymentStatus = req.RepaymentStatus
	debt.AdminEditedBy = &actorID
	debt.AdminEditReason = reason
	debt.AdminEditedAt = &now
	if req.Note != "" {
		debt.Note = req.Note
	}
	if err := s.debtRepo.Update(debt); err != nil {
		return nil, err
	}

	entry := &model.AuditLog{
		ActorID:    actorID,
		Action:     model.AuditEditDebt,
		TargetType: "debt_record",
		TargetID:   debt.ID,
		OldValue:   oldStatus,
		NewValue:   req.RepaymentStatus,
		Reason:     reason,
	}
	if err := s.auditRepo.Create(entry); err != nil {
		log.Printf("Failed to create audit log for debt %d: %v", debt.ID, err)
	}
	return debt, nil
}

func (s *DebtService) getDebt(id int64) (*model.DebtRecord, error) {
	debt, err := s.debtRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDebtNotFound
		}
		return nil, err
	}
	return debt, nil
}

// maskName 姓名遮罩：只留姓氏，其餘以〇取代
func maskName(name string) string {
	runes := []rune(name)
	if len(runes) <= 1 {
		return name
	}
	return string(runes[0]) + strings.Repeat("〇", len(runes)-1)
}

// maskIDNumber 證號遮罩：首字母 + **** + 末五碼
func maskIDNumber(id string) string {
	if len(id) != 10 {
		return "****"
	}
	return fmt.Sprintf("%s****%s", id[:1], id[5:])
}

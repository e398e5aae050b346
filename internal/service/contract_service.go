package service

import (
	"context"

	"go.uber.org/zap"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/model"
	"aptcare/backend/internal/repository"
	"aptcare/backend/pkg/apperr"
)

const contractFolder = "contracts"

var (
	ErrContractNotFound        = apperr.NotFound("Hợp đồng không tồn tại")
	ErrContractFileRequired    = apperr.Validation("Vui lòng tải lên tệp hợp đồng định dạng PDF")
	ErrContractFileNotPDF      = apperr.Validation("Tệp hợp đồng phải là định dạng PDF")
	ErrContractCodeExists      = apperr.Conflict("Mã hợp đồng đã tồn tại")
	ErrContractDateRange       = apperr.Validation("Ngày bắt đầu hợp đồng không được sau ngày kết thúc")
	ErrContractRequestClosed   = apperr.Validation("Không thể tạo hợp đồng cho yêu cầu đã hủy hoặc bị từ chối")
	ErrContractNoOutsource     = apperr.Validation("Yêu cầu chưa có báo cáo kiểm tra thuê ngoài được duyệt")
	ErrContractInactive        = apperr.Validation("Chỉ được chỉnh sửa hợp đồng đang hoạt động")
	ErrContractAlreadyActive   = apperr.Validation("Hợp đồng đang hoạt động")
	ErrContractAlreadyInactive = apperr.Validation("Hợp đồng đã ngừng hoạt động")
)

// ContractService outsourcing contracts of repair requests
type ContractService interface {
	Create(ctx context.Context, caller dto.Caller, req *dto.CreateContractRequest) (*dto.ContractResponse, error)
	Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateContractRequest) (*dto.ContractResponse, error)
	Activate(ctx context.Context, caller dto.Caller, id string) (*dto.ContractResponse, error)
	Deactivate(ctx context.Context, caller dto.Caller, id string) (*dto.ContractResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ContractResponse, error)
	List(ctx context.Context, req *dto.ContractListRequest) ([]dto.ContractResponse, int64, error)
}

type contractService struct {
	repo    *repository.Repository
	storage FileStorage
	logger  *zap.Logger
}

// NewContractService creates a ContractService
func NewContractService(repo *repository.Repository, storage FileStorage, logger *zap.Logger) ContractService {
	return &contractService{repo: repo, storage: storage, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *contractService) Create(ctx context.Context, caller dto.Caller, req *dto.CreateContractRequest) (*dto.ContractResponse, error) {
	if req.ContractFile == nil || len(req.ContractFile.Data) == 0 {
		return nil, ErrContractFileRequired
	}
	if !req.ContractFile.IsPDF() {
		return nil, ErrContractFileNotPDF
	}
	if req.StartDate.After(req.EndDate) {
		return nil, ErrContractDateRange
	}

	if _, err := get(ctx, s.logger, s.repo.RepairRequest.GetByID, req.RepairRequestID, ErrRepairRequestNotFound); err != nil {
		return nil, err
	}
	status, err := currentRequestStatus(ctx, s.repo, req.RepairRequestID)
	if err != nil {
		s.logger.Error("load request status failed", zap.String("id", req.RepairRequestID), zap.Error(err))
		return nil, err
	}
	if status == model.RequestCancelled || status == model.RequestRejected {
		return nil, ErrContractRequestClosed
	}
	if err := s.checkOutsourced(ctx, req.RepairRequestID); err != nil {
		return nil, err
	}
	if err := s.checkCode(ctx, req.ContractCode, ""); err != nil {
		return nil, err
	}

	url, err := s.storage.UploadFile(ctx, contractFolder, req.ContractFile.FileName, req.ContractFile.ContentType, req.ContractFile.Data)
	if err != nil || url == "" {
		s.logger.Error("upload contract failed", zap.String("code", req.ContractCode), zap.Error(err))
		return nil, ErrUploadFailed
	}

	contract := &model.Contract{
		RepairRequestID: req.RepairRequestID,
		ContractCode:    req.ContractCode,
		ContractorName:  req.ContractorName,
		Description:     req.Description,
		Amount:          req.Amount,
		StartDate:       truncateDay(req.StartDate),
		EndDate:         truncateDay(req.EndDate),
		Status:          model.StatusActive,
	}
	contract.Stamp(caller.UserID)

	media := model.Media{
		Entity:      model.MediaContract,
		FilePath:    url,
		FileName:    req.ContractFile.FileName,
		ContentType: req.ContractFile.ContentType,
		Status:      model.StatusActive,
	}
	media.Stamp(caller.UserID)

	err = withTx(ctx, s.repo, s.logger, "create contract", func(tx *repository.Repository) error {
		if err := tx.Contract.Create(ctx, contract); err != nil {
			return err
		}
		media.EntityID = contract.ContractID
		return tx.Media.CreateBatch(ctx, []model.Media{media})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("contract created",
		zap.String("id", contract.ContractID),
		zap.String("code", contract.ContractCode),
		zap.String("repair_request_id", req.RepairRequestID))

	resp := toContractResponse(contract)
	resp.Media = toMediaResponses([]model.Media{media})
	return resp, nil
}

// checkOutsourced one of the request's appointments has an approved outsource inspection
func (s *contractService) checkOutsourced(ctx context.Context, requestID string) error {
	appointments, err := s.repo.Appointment.ListByRequest(ctx, requestID)
	if err != nil {
		s.logger.Error("list appointments failed", zap.String("repair_request_id", requestID), zap.Error(err))
		return err
	}
	if len(appointments) == 0 {
		return ErrContractNoOutsource
	}
	ids := make([]string, 0, len(appointments))
	for _, a := range appointments {
		ids = append(ids, a.AppointmentID)
	}

	reports, err := s.repo.InspectionReport.ListByAppointments(ctx, ids)
	if err != nil {
		s.logger.Error("list inspection reports failed", zap.String("repair_request_id", requestID), zap.Error(err))
		return err
	}
	for _, r := range reports {
		if r.Status == model.ReportApproved && r.SolutionType == model.SolutionOutsource {
			return nil
		}
	}
	return ErrContractNoOutsource
}

func (s *contractService) checkCode(ctx context.Context, code, excludeID string) error {
	exists, err := s.repo.Contract.ExistsCode(ctx, code, excludeID)
	if err != nil {
		s.logger.Error("check contract code failed", zap.String("code", code), zap.Error(err))
		return err
	}
	if exists {
		return ErrContractCodeExists
	}
	return nil
}

// ────────────────────── Update ──────────────────────

func (s *contractService) Update(ctx context.Context, caller dto.Caller, id string, req *dto.UpdateContractRequest) (*dto.ContractResponse, error) {
	contract, err := get(ctx, s.logger, s.repo.Contract.GetByID, id, ErrContractNotFound)
	if err != nil {
		return nil, err
	}
	if contract.Status != model.StatusActive {
		return nil, ErrContractInactive
	}

	if req.ContractCode != nil && *req.ContractCode != contract.ContractCode {
		if err := s.checkCode(ctx, *req.ContractCode, id); err != nil {
			return nil, err
		}
		contract.ContractCode = *req.ContractCode
	}
	if req.ContractorName != nil {
		contract.ContractorName = *req.ContractorName
	}
	if req.Description != nil {
		contract.Description = *req.Description
	}
	if req.Amount != nil {
		contract.Amount = *req.Amount
	}
	if req.StartDate != nil {
		contract.StartDate = truncateDay(*req.StartDate)
	}
	if req.EndDate != nil {
		contract.EndDate = truncateDay(*req.EndDate)
	}
	if contract.StartDate.After(contract.EndDate) {
		return nil, ErrContractDateRange
	}

	contract.Stamp(caller.UserID)
	if err := s.repo.Contract.Update(ctx, contract); err != nil {
		s.logger.Error("update contract failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return s.detail(ctx, contract)
}

func (s *contractService) Activate(ctx context.Context, caller dto.Caller, id string) (*dto.ContractResponse, error) {
	return s.setStatus(ctx, caller, id, model.StatusActive, ErrContractAlreadyActive)
}

func (s *contractService) Deactivate(ctx context.Context, caller dto.Caller, id string) (*dto.ContractResponse, error) {
	return s.setStatus(ctx, caller, id, model.StatusInactive, ErrContractAlreadyInactive)
}

func (s *contractService) setStatus(ctx context.Context, caller dto.Caller, id string, status model.ActiveStatus, already error) (*dto.ContractResponse, error) {
	contract, err := get(ctx, s.logger, s.repo.Contract.GetByID, id, ErrContractNotFound)
	if err != nil {
		return nil, err
	}
	if contract.Status == status {
		return nil, already
	}
	contract.Status = status
	contract.Stamp(caller.UserID)
	if err := s.repo.Contract.Update(ctx, contract); err != nil {
		s.logger.Error("update contract status failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	s.logger.Info("contract status changed", zap.String("id", id), zap.String("status", string(status)))
	return toContractResponse(contract), nil
}

// ────────────────────── Query ──────────────────────

func (s *contractService) GetByID(ctx context.Context, id string) (*dto.ContractResponse, error) {
	contract, err := get(ctx, s.logger, s.repo.Contract.GetByID, id, ErrContractNotFound)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, contract)
}

func (s *contractService) detail(ctx context.Context, c *model.Contract) (*dto.ContractResponse, error) {
	media, err := s.repo.Media.ListByEntity(ctx, model.MediaContract, c.ContractID)
	if err != nil {
		s.logger.Error("list media failed", zap.String("id", c.ContractID), zap.Error(err))
		return nil, err
	}
	resp := toContractResponse(c)
	resp.Media = toMediaResponses(media)
	return resp, nil
}

func (s *contractService) List(ctx context.Context, req *dto.ContractListRequest) ([]dto.ContractResponse, int64, error) {
	contracts, total, err := s.repo.Contract.List(ctx, repository.ContractFilter{
		Keyword:         req.Keyword,
		RepairRequestID: req.RepairRequestID,
		Status:          model.ActiveStatus(req.Status),
		Page:            toPage(req.PaginationRequest),
	})
	if err != nil {
		s.logger.Error("list contracts failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ContractResponse, 0, len(contracts))
	for i := range contracts {
		result = append(result, *toContractResponse(&contracts[i]))
	}
	return result, total, nil
}

func toContractResponse(c *model.Contract) *dto.ContractResponse {
	return &dto.ContractResponse{
		ID:              c.ContractID,
		RepairRequestID: c.RepairRequestID,
		ContractCode:    c.ContractCode,
		ContractorName:  c.ContractorName,
		Description:     c.Description,
		Amount:          c.Amount,
		StartDate:       formatDate(c.StartDate),
		EndDate:         formatDate(c.EndDate),
		Status:          string(c.Status),
		CreatedAt:       formatTime(c.CreatedAt),
	}
}

package handler

import (
	"github.com/gin-gonic/gin"

	"aptcare/backend/internal/dto"
	"aptcare/backend/internal/service"
	"aptcare/backend/pkg/response"
)

// ContractHandler outsourcing contracts
type ContractHandler struct {
	contractSvc service.ContractService
}

// NewContractHandler creates a ContractHandler
func NewContractHandler(contractSvc service.ContractService) *ContractHandler {
	return &ContractHandler{contractSvc: contractSvc}
}

// CreateContract multipart form with the signed PDF under "file"
// POST /api/v1/contracts
func (h *ContractHandler) CreateContract(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateContractRequest
	if err := c.ShouldBind(&req); err != nil {
		bindFailed(c, err)
		return
	}
	file, err := formFile(c, "file")
	if err != nil {
		handleError(c, err)
		return
	}
	req.ContractFile = file

	contract, err := h.contractSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, contract)
}

// UpdateContract PUT /api/v1/contracts/:id
func (h *ContractHandler) UpdateContract(c *gin.Context) {
	callerUpdate(c, h.contractSvc.Update)
}

// ActivateContract PUT /api/v1/contracts/:id/activate
func (h *ContractHandler) ActivateContract(c *gin.Context) {
	callerAction(c, h.contractSvc.Activate)
}

// DeactivateContract PUT /api/v1/contracts/:id/deactivate
func (h *ContractHandler) DeactivateContract(c *gin.Context) {
	callerAction(c, h.contractSvc.Deactivate)
}

// GetContract GET /api/v1/contracts/:id
func (h *ContractHandler) GetContract(c *gin.Context) {
	getByID(c, h.contractSvc.GetByID)
}

// ListContracts GET /api/v1/contracts
func (h *ContractHandler) ListContracts(c *gin.Context) {
	listPaged(c, h.contractSvc.List)
}

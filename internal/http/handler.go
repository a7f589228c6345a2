package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TDXM1001/zugou-rental/internal/http/middleware"
	"github.com/TDXM1001/zugou-rental/internal/model"
	"github.com/TDXM1001/zugou-rental/internal/service"
)

type Handler struct {
	contracts *service.ContractService
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)
	protected.POST("/contracts", h.createContract)
	protected.GET("/contracts", h.listContracts)
	protected.GET("/contracts/expiring", h.expiringContracts)
	protected.GET("/contracts/statistics", h.statistics)
	protected.GET("/contracts/export", h.exportContracts)
	protected.GET("/contracts/:id", h.getContract)
	protected.PUT("/contracts/:id", h.updateContract)
	protected.DELETE("/contracts/:id", h.deleteContract)
	protected.POST("/contracts/:id/sign", h.signContract)
	protected.POST("/contracts/:id/activate", h.activateContract)
	protected.POST("/contracts/:id/terminate", h.terminateContract)
	protected.POST("/contracts/:id/breach", h.breachContract)
	protected.GET("/contracts/:id/document", h.contractDocument)
}

type createContractRequest struct {
	LandlordID    uint              `json:"landlordId" binding:"required"`
	TenantID      uint              `json:"tenantId" binding:"required"`
	PropertyID    uint              `json:"propertyId" binding:"required"`
	MonthlyRent   int64             `json:"monthlyRent" binding:"required"`
	Deposit       int64             `json:"deposit"`
	ManagementFee int64             `json:"managementFee"`
	OtherFees     int64             `json:"otherFees"`
	SignedDate    string            `json:"signedDate" binding:"required"`
	EffectiveDate string            `json:"effectiveDate" binding:"required"`
	ExpiryDate    string            `json:"expiryDate" binding:"required"`
	LeaseDuration int               `json:"leaseDuration" binding:"required"`
	PaymentMethod string            `json:"paymentMethod" binding:"required"`
	PaymentDay    int               `json:"paymentDay" binding:"required"`
	Terms         map[string]string `json:"terms"`
	Notes         string            `json:"notes"`
}

type updateContractRequest struct {
	PropertyID    *uint             `json:"propertyId"`
	MonthlyRent   *int64            `json:"monthlyRent"`
	Deposit       *int64            `json:"deposit"`
	ManagementFee *int64            `json:"managementFee"`
	OtherFees     *int64            `json:"otherFees"`
	SignedDate    *string           `json:"signedDate"`
	EffectiveDate *string           `json:"effectiveDate"`
	ExpiryDate    *string           `json:"expiryDate"`
	LeaseDuration *int              `json:"leaseDuration"`
	PaymentMethod *string           `json:"paymentMethod"`
	PaymentDay    *int              `json:"paymentDay"`
	Terms         map[string]string `json:"terms"`
	Notes         *string           `json:"notes"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	signed, err := parseDate(req.SignedDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signedDate"})
		return
	}
	effective, err := parseDate(req.EffectiveDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid effectiveDate"})
		return
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid expiryDate"})
		return
	}

	contract, err := h.contracts.CreateContract(c.Request.Context(), service.CreateContractInput{
		LandlordID:    req.LandlordID,
		TenantID:      req.TenantID,
		PropertyID:    req.PropertyID,
		MonthlyRent:   req.MonthlyRent,
		Deposit:       req.Deposit,
		ManagementFee: req.ManagementFee,
		OtherFees:     req.OtherFees,
		SignedDate:    signed,
		EffectiveDate: effective,
		ExpiryDate:    expiry,
		LeaseDuration: req.LeaseDuration,
		PaymentMethod: model.PaymentMethod(req.PaymentMethod),
		PaymentDay:    req.PaymentDay,
		Terms:         req.Terms,
		Notes:         req.Notes,
	}, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}

	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.UpdateContractInput{
		PropertyID:    req.PropertyID,
		MonthlyRent:   req.MonthlyRent,
		Deposit:       req.Deposit,
		ManagementFee: req.ManagementFee,
		OtherFees:     req.OtherFees,
		LeaseDuration: req.LeaseDuration,
		PaymentDay:    req.PaymentDay,
		Terms:         req.Terms,
		Notes:         req.Notes,
	}
	if req.PaymentMethod != nil {
		method := model.PaymentMethod(*req.PaymentMethod)
		patch.PaymentMethod = &method
	}
	for _, field := range []struct {
		raw  *string
		dest **time.Time
		name string
	}{
		{req.SignedDate, &patch.SignedDate, "signedDate"},
		{req.EffectiveDate, &patch.EffectiveDate, "effectiveDate"},
		{req.ExpiryDate, &patch.ExpiryDate, "expiryDate"},
	} {
		if field.raw == nil {
			continue
		}
		parsed, err := parseDate(*field.raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + field.name})
			return
		}
		*field.dest = &parsed
	}

	contract, err := h.contracts.UpdateContract(c.Request.Context(), id, patch, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	if err := h.contracts.DeleteContract(c.Request.Context(), id, principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	contract, err := h.contracts.GetContract(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) signContract(c *gin.Context) {
	h.transition(c, h.contracts.SignContract)
}

func (h *Handler) activateContract(c *gin.Context) {
	h.transition(c, h.contracts.ActivateContract)
}

func (h *Handler) transition(c *gin.Context, op func(ctx context.Context, id uint, actor model.Principal) (*model.Contract, error)) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	contract, err := op(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) terminateContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.contracts.TerminateContract(c.Request.Context(), id, req.Reason, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) breachContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	var req reasonRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	contract, err := h.contracts.MarkBreached(c.Request.Context(), id, req.Reason, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	input := service.ListContractsInput{
		Status:     model.ContractStatus(c.Query("status")),
		PropertyID: uint(queryInt(c, "propertyId")),
		Page:       queryInt(c, "page"),
		PageSize:   queryInt(c, "pageSize"),
	}

	page, err := h.contracts.ListContracts(c.Request.Context(), input, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) expiringContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	contracts, err := h.contracts.ExpiringContracts(c.Request.Context(), queryInt(c, "days"), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": contracts})
}

func (h *Handler) statistics(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	stats, err := h.contracts.Statistics(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) exportContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	result, err := h.contracts.ExportContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", result.Content)
}

func (h *Handler) contractDocument(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid contract id"})
		return
	}
	result, err := h.contracts.ContractDocument(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, "application/pdf", result.Content)
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrBusinessRule):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("contract operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 32)
	if err != nil || id == 0 {
		return 0, service.ErrInvalidInput
	}
	return uint(id), nil
}

func queryInt(c *gin.Context, name string) int {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

package handler

import (
	"context"
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"

	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/service"
	"ops-panel/pkg/response"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// TollHandler 过路费支付、收费配置与对账 HTTP 处理器
type TollHandler struct {
	paymentSvc   service.TollPaymentService
	configSvc    service.TollConfigService
	reconcileSvc service.TollReconciliationService
}

// NewTollHandler 创建 TollHandler
func NewTollHandler(paymentSvc service.TollPaymentService, configSvc service.TollConfigService, reconcileSvc service.TollReconciliationService) *TollHandler {
	return &TollHandler{
		paymentSvc:   paymentSvc,
		configSvc:    configSvc,
		reconcileSvc: reconcileSvc,
	}
}

// ════════════════════════════════════════════
// 支付台账
// ════════════════════════════════════════════

// CreatePayment 登记过路费支付
// POST /api/v1/toll-payments
func (h *TollHandler) CreatePayment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTollPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.paymentSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.Created(c, p)
}

// ListPayments 支付列表
// GET /api/v1/toll-payments
func (h *TollHandler) ListPayments(c *gin.Context) {
	var req dto.TollPaymentListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.paymentSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// GetPayment 支付详情
// GET /api/v1/toll-payments/:id
func (h *TollHandler) GetPayment(c *gin.Context) {
	p, err := h.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, p)
}

// UpdatePayment 修改草稿
// PATCH /api/v1/toll-payments/:id
func (h *TollHandler) UpdatePayment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTollPaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.paymentSvc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, p)
}

// SubmitPayment DRAFT → SUBMITTED
// POST /api/v1/toll-payments/:id/submit
func (h *TollHandler) SubmitPayment(c *gin.Context) {
	h.transition(c, h.paymentSvc.Submit)
}

// ApprovePayment SUBMITTED → APPROVED
// POST /api/v1/toll-payments/:id/approve
func (h *TollHandler) ApprovePayment(c *gin.Context) {
	h.transition(c, h.paymentSvc.Approve)
}

// PostPayment APPROVED → POSTED
// POST /api/v1/toll-payments/:id/post
func (h *TollHandler) PostPayment(c *gin.Context) {
	h.transition(c, h.paymentSvc.Post)
}

// DeletePayment 删除支付记录
// DELETE /api/v1/toll-payments/:id
func (h *TollHandler) DeletePayment(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.paymentSvc.Delete(c.Request.Context(), c.Param("id"), userID, GetPermissions(c)); err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, nil)
}

// ════════════════════════════════════════════
// 路线与收费标准
// ════════════════════════════════════════════

// CreateRoute 创建收费路线
// POST /api/v1/toll-routes
func (h *TollHandler) CreateRoute(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTollRouteRequest
	if !bindJSON(c, &req) {
		return
	}

	route, err := h.configSvc.CreateRoute(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.Created(c, route)
}

// ListRoutes 路线列表（含收费站顺序）
// GET /api/v1/toll-routes
func (h *TollHandler) ListRoutes(c *gin.Context) {
	var req dto.TollRouteListRequest
	if !bindQuery(c, &req) {
		return
	}

	routes, err := h.configSvc.ListRoutes(c.Request.Context(), req.IncludeInactive)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, gin.H{"list": routes})
}

// UpdateRoute 修改路线名称或启停用
// PATCH /api/v1/toll-routes/:id
func (h *TollHandler) UpdateRoute(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTollRouteRequest
	if !bindJSON(c, &req) {
		return
	}

	route, err := h.configSvc.UpdateRoute(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, route)
}

// CreateRate 创建收费标准
// POST /api/v1/toll-rates
func (h *TollHandler) CreateRate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTollRateRequest
	if !bindJSON(c, &req) {
		return
	}

	rate, err := h.configSvc.CreateRate(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.Created(c, rate)
}

// UpdateRate 关闭或启停用收费标准
// PATCH /api/v1/toll-rates/:id
func (h *TollHandler) UpdateRate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateTollRateRequest
	if !bindJSON(c, &req) {
		return
	}

	rate, err := h.configSvc.UpdateRate(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, rate)
}

// ListRates 收费标准列表
// GET /api/v1/toll-rates
func (h *TollHandler) ListRates(c *gin.Context) {
	var req dto.TollRateListRequest
	if !bindQuery(c, &req) {
		return
	}

	rates, err := h.configSvc.ListRates(c.Request.Context(), &req)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rates})
}

// ════════════════════════════════════════════
// 对账
// ════════════════════════════════════════════

// Reconcile 应付 vs 实付对账
// POST /api/v1/toll-payments/reconcile
func (h *TollHandler) Reconcile(c *gin.Context) {
	var req dto.ReconcileRequest
	if !bindJSON(c, &req) {
		return
	}

	report, err := h.reconcileSvc.Reconcile(c.Request.Context(), &req)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, report)
}

// ExportReconciliation 导出对账 Excel
// POST /api/v1/toll-payments/reconcile/export
func (h *TollHandler) ExportReconciliation(c *gin.Context) {
	var req dto.ReconcileRequest
	if !bindJSON(c, &req) {
		return
	}

	buf, filename, err := h.reconcileSvc.ExportXLSX(c.Request.Context(), &req)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(200, xlsxMIME, buf.Bytes())
}

// ── 内部方法 ──

// transition 支付状态流转的公共流程
func (h *TollHandler) transition(c *gin.Context, fn func(ctx context.Context, id, callerID string) (*model.TollPayment, error)) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	p, err := fn(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleTollError(c, err)
		return
	}

	response.OK(c, p)
}

func (h *TollHandler) handleTollError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTollPaymentNotFound),
		errors.Is(err, service.ErrTollRouteNotFound),
		errors.Is(err, service.ErrTollRateNotFound):
		response.NotFound(c, 30001, err.Error())
	case errors.Is(err, service.ErrTollPaymentForbidden),
		errors.Is(err, service.ErrTollDeleteForbidden):
		response.Forbidden(c, 30002, err.Error())
	case errors.Is(err, service.ErrTollPaymentNotDraft),
		errors.Is(err, service.ErrTollPaymentInvalidState),
		errors.Is(err, service.ErrTollPaymentPosted):
		response.Conflict(c, 30003, err.Error())
	case errors.Is(err, service.ErrTollRateOverlap):
		response.Conflict(c, 30004, err.Error())
	case errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrReconcileRangeTooLarge):
		response.BadRequest(c, 30005, err.Error())
	case errors.Is(err, service.ErrReferenceInvalid):
		response.BadRequest(c, 30006, err.Error())
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, 500, 30007, err.Error())
	default:
		response.InternalError(c)
	}
}

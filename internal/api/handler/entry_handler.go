package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/repository"
	"ops-panel/internal/service"
	"ops-panel/pkg/response"
)

type entryCreator[T any] interface {
	NewEntry() *T
}

type entryPatcher[T any] interface {
	ApplyTo(*T)
}

// EntryHandler 产量记录 HTTP 处理器，四类记录共用
type EntryHandler[T any] struct {
	svc service.EntryService[T]
	// equipmentParam 列表接口中按设备过滤的查询参数名
	equipmentParam string
	newCreate      func() entryCreator[T]
	newPatch       func() entryPatcher[T]
}

// NewExcavatorEntryHandler 挖掘机记录
func NewExcavatorEntryHandler(svc service.EntryService[model.ExcavatorEntry]) *EntryHandler[model.ExcavatorEntry] {
	return &EntryHandler[model.ExcavatorEntry]{
		svc:            svc,
		equipmentParam: "excavatorId",
		newCreate:      func() entryCreator[model.ExcavatorEntry] { return &dto.CreateExcavatorEntryRequest{} },
		newPatch:       func() entryPatcher[model.ExcavatorEntry] { return &dto.UpdateExcavatorEntryRequest{} },
	}
}

// NewHaulingEntryHandler 运输记录
func NewHaulingEntryHandler(svc service.EntryService[model.HaulingEntry]) *EntryHandler[model.HaulingEntry] {
	return &EntryHandler[model.HaulingEntry]{
		svc:            svc,
		equipmentParam: "truckId",
		newCreate:      func() entryCreator[model.HaulingEntry] { return &dto.CreateHaulingEntryRequest{} },
		newPatch:       func() entryPatcher[model.HaulingEntry] { return &dto.UpdateHaulingEntryRequest{} },
	}
}

// NewCrusherFeedEntryHandler 破碎机进料记录
func NewCrusherFeedEntryHandler(svc service.EntryService[model.CrusherFeedEntry]) *EntryHandler[model.CrusherFeedEntry] {
	return &EntryHandler[model.CrusherFeedEntry]{
		svc:            svc,
		equipmentParam: "crusherId",
		newCreate:      func() entryCreator[model.CrusherFeedEntry] { return &dto.CreateCrusherFeedEntryRequest{} },
		newPatch:       func() entryPatcher[model.CrusherFeedEntry] { return &dto.UpdateCrusherFeedEntryRequest{} },
	}
}

// NewCrusherOutputEntryHandler 破碎机产出记录
func NewCrusherOutputEntryHandler(svc service.EntryService[model.CrusherOutputEntry]) *EntryHandler[model.CrusherOutputEntry] {
	return &EntryHandler[model.CrusherOutputEntry]{
		svc:            svc,
		equipmentParam: "crusherId",
		newCreate:      func() entryCreator[model.CrusherOutputEntry] { return &dto.CreateCrusherOutputEntryRequest{} },
		newPatch:       func() entryPatcher[model.CrusherOutputEntry] { return &dto.UpdateCrusherOutputEntryRequest{} },
	}
}

// Create 创建产量记录（状态固定为 PENDING）
// POST /api/v1/quarry-production/{kind}-entries
func (h *EntryHandler[T]) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	req := h.newCreate()
	if !bindJSON(c, req) {
		return
	}

	entry, err := h.svc.Create(c.Request.Context(), req.NewEntry(), userID)
	if err != nil {
		handleEntryError(c, err)
		return
	}

	response.Created(c, entry)
}

// List 产量记录列表
// GET /api/v1/quarry-production/{kind}-entries
func (h *EntryHandler[T]) List(c *gin.Context) {
	var req dto.EntryListRequest
	if !bindQuery(c, &req) {
		return
	}

	f := repository.EntryFilter{
		Shift:  req.Shift,
		Status: req.Status,
		Offset: req.GetOffset(),
		Limit:  req.GetLimit(),
	}
	if equipmentID := c.Query(h.equipmentParam); equipmentID != "" {
		if _, err := uuid.Parse(equipmentID); err != nil {
			response.BadRequest(c, 10001, h.equipmentParam+" 格式无效")
			return
		}
		f.EquipmentID = equipmentID
	}
	if req.DateFrom != "" {
		d, _ := model.ParseDate(req.DateFrom)
		f.DateFrom = &d
	}
	if req.DateTo != "" {
		d, _ := model.ParseDate(req.DateTo)
		f.DateTo = &d
	}

	items, total, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		handleEntryError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// Get 产量记录详情
// GET /api/v1/quarry-production/{kind}-entries/:id
func (h *EntryHandler[T]) Get(c *gin.Context) {
	entry, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// Update 修改产量记录，仅创建人可改，已审批记录不可改
// PATCH /api/v1/quarry-production/{kind}-entries/:id
func (h *EntryHandler[T]) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	req := h.newPatch()
	if !bindJSON(c, req) {
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.ApplyTo, userID)
	if err != nil {
		handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// Approve 审批通过
// POST /api/v1/quarry-production/{kind}-entries/:id/approve
func (h *EntryHandler[T]) Approve(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ApproveEntryRequest
	// 请求体可省略
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	entry, err := h.svc.Approve(c.Request.Context(), c.Param("id"), userID, req.Notes)
	if err != nil {
		handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// Reject 驳回
// POST /api/v1/quarry-production/{kind}-entries/:id/reject
func (h *EntryHandler[T]) Reject(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RejectEntryRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.svc.Reject(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// Resubmit 驳回后重新提交
// POST /api/v1/quarry-production/{kind}-entries/:id/resubmit
func (h *EntryHandler[T]) Resubmit(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.svc.Resubmit(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleEntryError(c, err)
		return
	}

	response.OK(c, entry)
}

// Delete 删除待审批记录
// DELETE /api/v1/quarry-production/{kind}-entries/:id
func (h *EntryHandler[T]) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Remove(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleEntryError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── 错误映射 ──

func handleEntryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEntryNotFound):
		response.NotFound(c, 20001, err.Error())
	case errors.Is(err, service.ErrEntryForbidden):
		response.Forbidden(c, 20002, err.Error())
	case errors.Is(err, service.ErrEntryNotPending),
		errors.Is(err, service.ErrEntryNotEditable),
		errors.Is(err, service.ErrEntryNotRejected):
		response.Conflict(c, 20003, err.Error())
	case errors.Is(err, service.ErrRejectReasonRequired):
		response.BadRequest(c, 20004, err.Error())
	case errors.Is(err, service.ErrReferenceInvalid):
		response.BadRequest(c, 20005, err.Error())
	default:
		response.InternalError(c)
	}
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/repository"
	"ops-panel/internal/service"
	"ops-panel/pkg/response"
)

type referenceCreator[T any] interface {
	NewModel() *T
}

// ReferenceHandler 基础资料 HTTP 处理器（物料、地点、设备、收费站）
type ReferenceHandler[T any] struct {
	svc       service.ReferenceService[T]
	newCreate func() referenceCreator[T]
	newPatch  func() entryPatcher[T]
}

func newReferenceHandler[T any](svc service.ReferenceService[T], newCreate func() referenceCreator[T], newPatch func() entryPatcher[T]) *ReferenceHandler[T] {
	return &ReferenceHandler[T]{svc: svc, newCreate: newCreate, newPatch: newPatch}
}

// Create 新建基础资料
// POST /api/v1/reference/{kind}
func (h *ReferenceHandler[T]) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	req := h.newCreate()
	if !bindJSON(c, req) {
		return
	}

	m, err := h.svc.Create(c.Request.Context(), req.NewModel(), userID)
	if err != nil {
		handleReferenceError(c, err)
		return
	}

	response.Created(c, m)
}

// List 基础资料列表，默认仅返回启用项
// GET /api/v1/reference/{kind}
func (h *ReferenceHandler[T]) List(c *gin.Context) {
	var req dto.ReferenceListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.svc.List(c.Request.Context(), repository.ReferenceFilter{
		Search:          req.Search,
		IncludeInactive: req.IncludeInactive,
		Offset:          req.GetOffset(),
		Limit:           req.GetLimit(),
	})
	if err != nil {
		handleReferenceError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// Get 基础资料详情
// GET /api/v1/reference/{kind}/:id
func (h *ReferenceHandler[T]) Get(c *gin.Context) {
	m, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleReferenceError(c, err)
		return
	}

	response.OK(c, m)
}

// Update 修改基础资料
// PATCH /api/v1/reference/{kind}/:id
func (h *ReferenceHandler[T]) Update(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	req := h.newPatch()
	if !bindJSON(c, req) {
		return
	}

	m, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.ApplyTo, userID)
	if err != nil {
		handleReferenceError(c, err)
		return
	}

	response.OK(c, m)
}

// Deactivate 停用基础资料
// DELETE /api/v1/reference/{kind}/:id
func (h *ReferenceHandler[T]) Deactivate(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Deactivate(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleReferenceError(c, err)
		return
	}

	response.OK(c, nil)
}

func handleReferenceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrReferenceNotFound):
		response.NotFound(c, 21001, err.Error())
	case errors.Is(err, service.ErrReferenceCodeExists):
		response.Conflict(c, 21002, err.Error())
	default:
		response.InternalError(c)
	}
}

// ── 各类基础资料 ──

// ReferenceHandlers 八类基础资料处理器集合
type ReferenceHandlers struct {
	MaterialType      *ReferenceHandler[model.MaterialType]
	ProductType       *ReferenceHandler[model.ProductType]
	PitLocation       *ReferenceHandler[model.PitLocation]
	StockpileLocation *ReferenceHandler[model.StockpileLocation]
	Crusher           *ReferenceHandler[model.Crusher]
	Truck             *ReferenceHandler[model.Truck]
	Excavator         *ReferenceHandler[model.Excavator]
	TollStation       *ReferenceHandler[model.TollStation]
}

// NewReferenceHandlers 创建全部基础资料处理器
func NewReferenceHandlers(svc *service.Service) *ReferenceHandlers {
	return &ReferenceHandlers{
		MaterialType: newReferenceHandler(svc.MaterialType,
			func() referenceCreator[model.MaterialType] { return &dto.CreateMaterialTypeRequest{} },
			func() entryPatcher[model.MaterialType] { return &dto.UpdateMaterialTypeRequest{} }),
		ProductType: newReferenceHandler(svc.ProductType,
			func() referenceCreator[model.ProductType] { return &dto.CreateProductTypeRequest{} },
			func() entryPatcher[model.ProductType] { return &dto.UpdateProductTypeRequest{} }),
		PitLocation: newReferenceHandler(svc.PitLocation,
			func() referenceCreator[model.PitLocation] { return &dto.CreatePitLocationRequest{} },
			func() entryPatcher[model.PitLocation] { return &dto.UpdatePitLocationRequest{} }),
		StockpileLocation: newReferenceHandler(svc.StockpileLocation,
			func() referenceCreator[model.StockpileLocation] { return &dto.CreateStockpileLocationRequest{} },
			func() entryPatcher[model.StockpileLocation] { return &dto.UpdateStockpileLocationRequest{} }),
		Crusher: newReferenceHandler(svc.Crusher,
			func() referenceCreator[model.Crusher] { return &dto.CreateCrusherRequest{} },
			func() entryPatcher[model.Crusher] { return &dto.UpdateCrusherRequest{} }),
		Truck: newReferenceHandler(svc.Truck,
			func() referenceCreator[model.Truck] { return &dto.CreateTruckRequest{} },
			func() entryPatcher[model.Truck] { return &dto.UpdateTruckRequest{} }),
		Excavator: newReferenceHandler(svc.Excavator,
			func() referenceCreator[model.Excavator] { return &dto.CreateExcavatorRequest{} },
			func() entryPatcher[model.Excavator] { return &dto.UpdateExcavatorRequest{} }),
		TollStation: newReferenceHandler(svc.TollStation,
			func() referenceCreator[model.TollStation] { return &dto.CreateTollStationRequest{} },
			func() entryPatcher[model.TollStation] { return &dto.UpdateTollStationRequest{} }),
	}
}

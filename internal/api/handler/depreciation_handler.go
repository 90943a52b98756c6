package handler

import (
	"errors"
	"net/url"

	"github.com/gin-gonic/gin"

	"ops-panel/internal/dto"
	"ops-panel/internal/service"
	"ops-panel/pkg/response"
)

// AssetHandler 固定资产与折旧 HTTP 处理器
type AssetHandler struct {
	assetSvc        service.AssetService
	depreciationSvc service.DepreciationService
}

// NewAssetHandler 创建 AssetHandler
func NewAssetHandler(assetSvc service.AssetService, depreciationSvc service.DepreciationService) *AssetHandler {
	return &AssetHandler{assetSvc: assetSvc, depreciationSvc: depreciationSvc}
}

// ── 资产 ──

// CreateAsset 登记资产
// POST /api/v1/assets
func (h *AssetHandler) CreateAsset(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	asset, err := h.assetSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.Created(c, asset)
}

// ListAssets 资产列表
// GET /api/v1/assets
func (h *AssetHandler) ListAssets(c *gin.Context) {
	var req dto.AssetListRequest
	if !bindQuery(c, &req) {
		return
	}

	items, total, err := h.assetSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetLimit())
}

// GetAsset 资产详情
// GET /api/v1/assets/:id
func (h *AssetHandler) GetAsset(c *gin.Context) {
	asset, err := h.assetSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, asset)
}

// UpdateAsset 修改资产（含报废）
// PATCH /api/v1/assets/:id
func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	asset, err := h.assetSvc.Update(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, asset)
}

// GetProfile 查询折旧方案
// GET /api/v1/assets/:id/depreciation-profile
func (h *AssetHandler) GetProfile(c *gin.Context) {
	profile, err := h.assetSvc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, profile)
}

// UpsertProfile 设置折旧方案
// PUT /api/v1/assets/:id/depreciation-profile
func (h *AssetHandler) UpsertProfile(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpsertDepreciationProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.assetSvc.UpsertProfile(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, profile)
}

// ── 折旧 ──

// ListEntries 资产折旧明细
// GET /api/v1/assets/:id/depreciation-entries
func (h *AssetHandler) ListEntries(c *gin.Context) {
	entries, err := h.depreciationSvc.ListEntries(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, gin.H{"list": entries})
}

// ExportSchedulePDF 下载折旧计划表
// GET /api/v1/assets/:id/depreciation-schedule.pdf
func (h *AssetHandler) ExportSchedulePDF(c *gin.Context) {
	buf, filename, err := h.depreciationSvc.ExportSchedulePDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleAssetError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(200, "application/pdf", buf.Bytes())
}

// RunMonthly 月度折旧计提
// POST /api/v1/depreciation/run-monthly
func (h *AssetHandler) RunMonthly(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RunMonthlyRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.depreciationSvc.RunMonthly(c.Request.Context(), req.Period, userID)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, result)
}

// PostEntry 单条折旧明细过账
// POST /api/v1/depreciation/post/:assetId/:period
func (h *AssetHandler) PostEntry(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	entry, err := h.depreciationSvc.PostEntry(c.Request.Context(), c.Param("assetId"), c.Param("period"), userID)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, entry)
}

// PostPeriod 期间批量过账
// POST /api/v1/depreciation/post-period/:period
func (h *AssetHandler) PostPeriod(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.depreciationSvc.PostAllForPeriod(c.Request.Context(), c.Param("period"), userID)
	if err != nil {
		handleAssetError(c, err)
		return
	}

	response.OK(c, result)
}

func handleAssetError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAssetNotFound):
		response.NotFound(c, 40001, err.Error())
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 40002, err.Error())
	case errors.Is(err, service.ErrDepreciationEntryNotFound):
		response.NotFound(c, 40003, err.Error())
	case errors.Is(err, service.ErrAssetCodeExists):
		response.Conflict(c, 40004, err.Error())
	case errors.Is(err, service.ErrSalvageExceedsCost),
		errors.Is(err, service.ErrProfileBeforeAcquiring),
		errors.Is(err, service.ErrInvalidPeriod):
		response.BadRequest(c, 40005, err.Error())
	case errors.Is(err, service.ErrPDFGenerateFail):
		response.Error(c, 500, 40006, err.Error())
	default:
		response.InternalError(c)
	}
}

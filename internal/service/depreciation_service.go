package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/repository"
	"ops-panel/pkg/metrics"
)

// ── 折旧业务错误 ──

var (
	ErrDepreciationEntryNotFound = errors.New("该资产在此期间没有折旧明细")
	ErrInvalidPeriod             = errors.New("无效的会计期间，格式应为 YYYY-MM")
	ErrPDFGenerateFail           = errors.New("生成 PDF 文件失败")
	ErrPeriodBeforeLatest        = errors.New("该方案已有更晚期间的折旧明细，不能补提更早期间")
)

// 跳过原因
const (
	skipAssetDisposed    = "资产已报废"
	skipNotStarted       = "折旧尚未开始"
	skipAlreadyExists    = "本期已计提"
	skipFullyDepreciated = "已折旧至残值"
	skipLifeEnded        = "使用年限已满"
)

// DepreciationService 折旧引擎接口
type DepreciationService interface {
	// RunMonthly 为所有启用方案计提 period 期间折旧，逐项隔离，可重复执行
	RunMonthly(ctx context.Context, period string, actorID string) (*dto.RunMonthlyResult, error)
	// PostEntry 过账单条明细，已过账时不做任何修改
	PostEntry(ctx context.Context, assetID, period, actorID string) (*model.DepreciationEntry, error)
	PostAllForPeriod(ctx context.Context, period string, actorID string) (*dto.PostPeriodResult, error)

	ListEntries(ctx context.Context, assetID string) ([]model.DepreciationEntry, error)
	// Schedule 返回已计提明细，并按当前方案预测剩余期间
	Schedule(ctx context.Context, assetID string) ([]dto.DepreciationScheduleRow, error)
	ExportSchedulePDF(ctx context.Context, assetID string) (*bytes.Buffer, string, error)
}

type depreciationService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewDepreciationService 创建 DepreciationService 实例
func NewDepreciationService(repo *repository.Repository, logger *zap.Logger) DepreciationService {
	return &depreciationService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ════════════════════════════════════════════════════════════
// RunMonthly
// ════════════════════════════════════════════════════════════

func (s *depreciationService) RunMonthly(ctx context.Context, period string, actorID string) (*dto.RunMonthlyResult, error) {
	p, err := model.ParsePeriod(period)
	if err != nil {
		return nil, ErrInvalidPeriod
	}

	profiles, err := s.repo.Depreciation.ListActiveProfiles(ctx)
	if err != nil {
		s.logger.Error("查询折旧方案失败", zap.Error(err))
		return nil, err
	}

	result := &dto.RunMonthlyResult{
		Period:  p.String(),
		Created: make([]dto.DepreciationRunItem, 0),
		Skipped: make([]dto.DepreciationRunItem, 0),
		Failed:  make([]dto.DepreciationRunItem, 0),
	}

	for i := range profiles {
		profile := &profiles[i]
		item := dto.DepreciationRunItem{ProfileID: profile.ID, AssetID: profile.AssetID}
		if profile.Asset != nil {
			item.AssetCode = profile.Asset.Code
		}

		entry, reason, err := s.runOne(ctx, profile, p, actorID)
		switch {
		case err != nil:
			s.logger.Warn("折旧计提失败",
				zap.String("profile_id", profile.ID),
				zap.String("period", p.String()),
				zap.Error(err),
			)
			item.Reason = err.Error()
			result.Failed = append(result.Failed, item)
			metrics.DepreciationRunResults.WithLabelValues("failed").Inc()
		case entry == nil:
			item.Reason = reason
			result.Skipped = append(result.Skipped, item)
			metrics.DepreciationRunResults.WithLabelValues("skipped").Inc()
		default:
			item.EntryID = entry.ID
			amount := entry.Amount
			item.Amount = &amount
			result.Created = append(result.Created, item)
			metrics.DepreciationRunResults.WithLabelValues("created").Inc()
		}
	}

	s.logger.Info("月度折旧完成",
		zap.String("period", p.String()),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// runOne 处理单个方案；返回 nil 明细和原因表示跳过
func (s *depreciationService) runOne(ctx context.Context, profile *model.DepreciationProfile, p model.Period, actorID string) (*model.DepreciationEntry, string, error) {
	asset := profile.Asset
	if asset == nil {
		return nil, "", ErrAssetNotFound
	}
	if asset.Status == model.AssetDisposed {
		return nil, skipAssetDisposed, nil
	}
	if profile.StartDate.After(p.End().Time) {
		return nil, skipNotStarted, nil
	}
	lifeEnd := lifeEndPeriod(profile)
	if p.String() > lifeEnd.String() {
		return nil, skipLifeEnded, nil
	}

	exists, err := s.repo.Depreciation.HasEntry(ctx, profile.ID, p.String())
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, skipAlreadyExists, nil
	}

	// 累计折旧沿最近一期向后滚动，已有更晚期间时拒绝补提
	accumulated := decimal.Zero
	latest, err := s.repo.Depreciation.LatestEntry(ctx, profile.ID)
	switch {
	case err == nil:
		if latest.Period > p.String() {
			return nil, "", ErrPeriodBeforeLatest
		}
		accumulated = latest.AccumulatedDepreciation
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, "", err
	}

	bookValue := asset.AcquisitionCost.Sub(accumulated)
	amount := periodAmount(asset, profile, bookValue, p, lifeEnd)
	if !amount.IsPositive() {
		return nil, skipFullyDepreciated, nil
	}

	entry := &model.DepreciationEntry{
		ProfileID:               profile.ID,
		AssetID:                 profile.AssetID,
		Period:                  p.String(),
		Amount:                  amount,
		AccumulatedDepreciation: accumulated.Add(amount),
		BookValueAfter:          bookValue.Sub(amount),
		CreatedByID:             actorID,
		CreatedAt:               s.now(),
	}
	created, err := s.repo.Depreciation.CreateEntryIfAbsent(ctx, entry)
	if err != nil {
		return nil, "", err
	}
	if !created {
		// 并发执行时另一实例已写入
		return nil, skipAlreadyExists, nil
	}
	return entry, "", nil
}

// lifeEndPeriod 使用年限内的最后一个期间
func lifeEndPeriod(profile *model.DepreciationProfile) model.Period {
	return model.PeriodOf(profile.StartDate.Time).AddMonths(profile.UsefulLifeMonths - 1)
}

// periodAmount 计算 p 期折旧额；使用年限最后一期计提全部剩余可折旧额
func periodAmount(asset *model.Asset, profile *model.DepreciationProfile, bookValue decimal.Decimal, p, lifeEnd model.Period) decimal.Decimal {
	if p == lifeEnd {
		remaining := bookValue.Sub(profile.SalvageValue)
		if !remaining.IsPositive() {
			return decimal.Zero
		}
		return remaining
	}
	return MonthlyDepreciation(profile.Method, asset.AcquisitionCost, profile.SalvageValue, profile.UsefulLifeMonths, bookValue)
}

// ════════════════════════════════════════════════════════════
// 过账
// ════════════════════════════════════════════════════════════

func (s *depreciationService) PostEntry(ctx context.Context, assetID, period, actorID string) (*model.DepreciationEntry, error) {
	p, err := model.ParsePeriod(period)
	if err != nil {
		return nil, ErrInvalidPeriod
	}

	entry, err := s.repo.Depreciation.GetEntry(ctx, assetID, p.String())
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepreciationEntryNotFound
		}
		s.logger.Error("查询折旧明细失败", zap.String("asset_id", assetID), zap.Error(err))
		return nil, err
	}
	if entry.IsPosted {
		return entry, nil
	}

	if err := s.markPosted(ctx, entry, actorID); err != nil {
		return nil, err
	}
	return s.repo.Depreciation.GetEntry(ctx, assetID, p.String())
}

func (s *depreciationService) PostAllForPeriod(ctx context.Context, period string, actorID string) (*dto.PostPeriodResult, error) {
	p, err := model.ParsePeriod(period)
	if err != nil {
		return nil, ErrInvalidPeriod
	}

	entries, err := s.repo.Depreciation.ListUnpostedByPeriod(ctx, p.String())
	if err != nil {
		s.logger.Error("查询未过账明细失败", zap.String("period", p.String()), zap.Error(err))
		return nil, err
	}

	result := &dto.PostPeriodResult{
		Period: p.String(),
		Posted: make([]dto.PostItem, 0, len(entries)),
		Failed: make([]dto.PostItem, 0),
	}
	for i := range entries {
		e := &entries[i]
		item := dto.PostItem{EntryID: e.ID, AssetID: e.AssetID}
		if err := s.markPosted(ctx, e, actorID); err != nil {
			item.Reason = err.Error()
			result.Failed = append(result.Failed, item)
			continue
		}
		result.Posted = append(result.Posted, item)
	}

	s.logger.Info("折旧期间过账完成",
		zap.String("period", p.String()),
		zap.Int("posted", len(result.Posted)),
		zap.Int("failed", len(result.Failed)),
	)
	return result, nil
}

// markPosted 条件更新；未命中说明已被并发过账，按成功处理
func (s *depreciationService) markPosted(ctx context.Context, e *model.DepreciationEntry, actorID string) error {
	changed, err := s.repo.Depreciation.MarkPosted(ctx, e.ID, actorID, s.now())
	if err != nil {
		s.logger.Error("折旧过账失败", zap.String("entry_id", e.ID), zap.Error(err))
		return err
	}
	if !changed {
		s.logger.Debug("折旧明细已过账", zap.String("entry_id", e.ID))
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 明细与计划表
// ════════════════════════════════════════════════════════════

func (s *depreciationService) ListEntries(ctx context.Context, assetID string) ([]model.DepreciationEntry, error) {
	if _, err := s.loadAsset(ctx, assetID); err != nil {
		return nil, err
	}
	entries, err := s.repo.Depreciation.ListEntriesByAsset(ctx, assetID)
	if err != nil {
		s.logger.Error("查询折旧明细失败", zap.String("asset_id", assetID), zap.Error(err))
		return nil, err
	}
	return entries, nil
}

func (s *depreciationService) Schedule(ctx context.Context, assetID string) ([]dto.DepreciationScheduleRow, error) {
	asset, err := s.loadAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	profile, err := s.repo.Depreciation.GetProfileByAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	entries, err := s.repo.Depreciation.ListEntriesByAsset(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return buildSchedule(asset, profile, entries), nil
}

// buildSchedule 已计提期间原样输出；此后从最后一期（或开始期间）起预测，
// 直到使用年限结束或折旧至残值
func buildSchedule(asset *model.Asset, profile *model.DepreciationProfile, entries []model.DepreciationEntry) []dto.DepreciationScheduleRow {
	rows := make([]dto.DepreciationScheduleRow, 0, profile.UsefulLifeMonths)
	accumulated := decimal.Zero
	next := model.PeriodOf(profile.StartDate.Time)

	for _, e := range entries {
		rows = append(rows, dto.DepreciationScheduleRow{
			Period:                  e.Period,
			Amount:                  e.Amount,
			AccumulatedDepreciation: e.AccumulatedDepreciation,
			BookValueAfter:          e.BookValueAfter,
			IsPosted:                e.IsPosted,
		})
		accumulated = e.AccumulatedDepreciation
		if p, err := model.ParsePeriod(e.Period); err == nil && p.String() >= next.String() {
			next = p.Next()
		}
	}

	if asset.Status == model.AssetDisposed || !profile.IsActive {
		return rows
	}

	last := lifeEndPeriod(profile)
	for p := next; p.String() <= last.String(); p = p.Next() {
		bookValue := asset.AcquisitionCost.Sub(accumulated)
		amount := periodAmount(asset, profile, bookValue, p, last)
		if !amount.IsPositive() {
			break
		}
		accumulated = accumulated.Add(amount)
		rows = append(rows, dto.DepreciationScheduleRow{
			Period:                  p.String(),
			Amount:                  amount,
			AccumulatedDepreciation: accumulated,
			BookValueAfter:          bookValue.Sub(amount),
			Projected:               true,
		})
	}
	return rows
}

func (s *depreciationService) loadAsset(ctx context.Context, assetID string) (*model.Asset, error) {
	asset, err := s.repo.Asset.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		s.logger.Error("查询资产失败", zap.String("id", assetID), zap.Error(err))
		return nil, err
	}
	return asset, nil
}

// ════════════════════════════════════════════════════════════
// ExportSchedulePDF
// ════════════════════════════════════════════════════════════

func (s *depreciationService) ExportSchedulePDF(ctx context.Context, assetID string) (*bytes.Buffer, string, error) {
	asset, err := s.loadAsset(ctx, assetID)
	if err != nil {
		return nil, "", err
	}
	profile, err := s.repo.Depreciation.GetProfileByAsset(ctx, assetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProfileNotFound
		}
		return nil, "", err
	}
	entries, err := s.repo.Depreciation.ListEntriesByAsset(ctx, assetID)
	if err != nil {
		return nil, "", err
	}
	rows := buildSchedule(asset, profile, entries)

	// 内置字体不含中文字形，PDF 使用英文标题
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Depreciation Schedule", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", s.now().Format("2006-01-02 15:04 UTC")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Asset", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 7, fmt.Sprintf("Code: %s", asset.Code), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Status: %s", asset.Status), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Cost: %s", asset.AcquisitionCost.StringFixed(2)), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Salvage: %s", profile.SalvageValue.StringFixed(2)), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Method: %s", profile.Method), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Useful life: %d months from %s", profile.UsefulLifeMonths, profile.StartDate), "RB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(30, 7, "Period", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Amount", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Accumulated", "1", 0, "C", true, 0, "")
	pdf.CellFormat(45, 7, "Book Value", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 7, "State", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, r := range rows {
		state := "Unposted"
		switch {
		case r.Projected:
			state = "Projected"
		case r.IsPosted:
			state = "Posted"
		}
		pdf.CellFormat(30, 6, r.Period, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, r.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, r.AccumulatedDepreciation.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(45, 6, r.BookValueAfter.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, state, "1", 1, "C", false, 0, "")
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		s.logger.Error("生成折旧计划 PDF 失败", zap.String("asset_id", assetID), zap.Error(err))
		return nil, "", ErrPDFGenerateFail
	}
	return buf, fmt.Sprintf("depreciation_schedule_%s.pdf", asset.Code), nil
}

package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ops-panel/config"
	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/repository"
)

// maxReconcileDays 单次对账最长天数
const maxReconcileDays = 366

// ── 对账业务错误 ──

var (
	ErrReconcileRangeTooLarge = fmt.Errorf("对账区间不能超过 %d 天", maxReconcileDays)
	ErrExportGenerateFail     = errors.New("生成 Excel 文件失败")
)

// TollReconciliationService 过路费对账接口（只读）
//
// 应付侧：范围内每条路线（指定路线，否则全部启用路线）的每个收费站，区间内每天计一次通行，
// 按当天生效的收费标准计价；当天无生效标准的通行计入 unratedCrossings，不计金额。
// 实付侧：状态为 APPROVED/POSTED、paidAt 落在区间内、路线与车型条件一致的支付，按收费站汇总。
// 两侧只统计对账币种，其他币种的实付单独列入 otherCurrencies。
// 差额 = 实付 − 应付，总额与各收费站明细之和严格相等。
type TollReconciliationService interface {
	Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconciliationReport, error)
	// ExportXLSX 将对账结果导出为 Excel：汇总表 + 收费站明细表
	ExportXLSX(ctx context.Context, req *dto.ReconcileRequest) (*bytes.Buffer, string, error)
}

type tollReconciliationService struct {
	cfg    *config.TollConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTollReconciliationService 创建 TollReconciliationService 实例
func NewTollReconciliationService(cfg *config.TollConfig, repo *repository.Repository, logger *zap.Logger) TollReconciliationService {
	return &tollReconciliationService{cfg: cfg, repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Reconcile
// ════════════════════════════════════════════════════════════

func (s *tollReconciliationService) Reconcile(ctx context.Context, req *dto.ReconcileRequest) (*dto.ReconciliationReport, error) {
	start, end := req.StartDate, req.EndDate
	if end.Before(start.Time) {
		return nil, ErrInvalidDateRange
	}
	if int(end.Sub(start.Time).Hours()/24)+1 > maxReconcileDays {
		return nil, ErrReconcileRangeTooLarge
	}

	vehicleType := req.VehicleType
	if vehicleType == "" {
		vehicleType = s.cfg.DefaultVehicleType
	}
	currency := req.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}

	// 1. 确定路线范围
	routes, err := s.routesInScope(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}

	rows := newStationRows()
	for _, route := range routes {
		for _, rs := range route.Stations {
			rows.get(rs.StationID, rs.Station)
		}
	}
	stationIDs := append([]string(nil), rows.order...)

	// 2. 应付：逐路线、逐收费站、逐日按当日生效标准计价
	ratesByStation := make(map[string][]model.TollRate)
	if len(stationIDs) > 0 {
		rates, err := s.repo.TollConfig.ListRates(ctx, repository.TollRateFilter{
			StationIDs:  stationIDs,
			VehicleType: vehicleType,
			From:        &start,
			To:          &end,
			Currency:    currency,
			ActiveOnly:  true,
		})
		if err != nil {
			s.logger.Error("查询收费标准失败", zap.Error(err))
			return nil, err
		}
		for _, r := range rates {
			ratesByStation[r.StationID] = append(ratesByStation[r.StationID], r)
		}
	}

	for _, route := range routes {
		for _, rs := range route.Stations {
			row := rows.get(rs.StationID, rs.Station)
			for day := start; !day.After(end.Time); day = day.AddDays(1) {
				rate := rateOn(ratesByStation[rs.StationID], day)
				if rate == nil {
					row.UnratedCrossings++
					continue
				}
				row.ExpectedCrossings++
				row.Expected = row.Expected.Add(rate.Amount)
			}
		}
	}

	// 3. 实付：按收费站汇总已审批/已过账支付
	paidFrom, paidTo := start.Time, end.AddDays(1).Time
	filter := repository.TollPaymentFilter{
		PaidFrom:    &paidFrom,
		PaidTo:      &paidTo,
		Statuses:    []model.TollPaymentStatus{model.TollApproved, model.TollPosted},
		VehicleType: vehicleType,
	}
	if req.RouteID != nil {
		filter.RouteID = *req.RouteID
	}
	byCurrency, err := s.repo.TollPayment.SumByCurrency(ctx, filter)
	if err != nil {
		s.logger.Error("按币种汇总过路费支付失败", zap.Error(err))
		return nil, err
	}
	filter.Currency = currency
	totals, err := s.repo.TollPayment.SumByStation(ctx, filter)
	if err != nil {
		s.logger.Error("汇总过路费支付失败", zap.Error(err))
		return nil, err
	}
	for _, t := range totals {
		row := rows.rows[t.StationID]
		if row == nil {
			row = rows.get(t.StationID, s.lookupStation(ctx, t.StationID))
		}
		row.Actual = row.Actual.Add(t.Total)
		row.PaymentCount += int(t.Count)
	}

	// 4. 差额
	report := &dto.ReconciliationReport{
		StartDate:       start,
		EndDate:         end,
		RouteID:         req.RouteID,
		VehicleType:     vehicleType,
		Currency:        currency,
		ExpectedTotal:   decimal.Zero,
		ActualTotal:     decimal.Zero,
		ByStation:       make([]dto.StationReconciliation, 0, len(rows.order)),
		OtherCurrencies: make([]dto.CurrencyTotal, 0),
	}
	for _, ct := range byCurrency {
		if ct.Currency == currency {
			continue
		}
		report.OtherCurrencies = append(report.OtherCurrencies, dto.CurrencyTotal{
			Currency: ct.Currency,
			Total:    ct.Total,
			Count:    ct.Count,
		})
	}
	for _, row := range rows.sorted() {
		row.Variance = row.Actual.Sub(row.Expected)
		report.ExpectedTotal = report.ExpectedTotal.Add(row.Expected)
		report.ActualTotal = report.ActualTotal.Add(row.Actual)
		report.ExpectedCrossings += row.ExpectedCrossings
		report.UnratedCrossings += row.UnratedCrossings
		report.PaymentCount += row.PaymentCount
		report.ByStation = append(report.ByStation, *row)
	}
	report.Variance = report.ActualTotal.Sub(report.ExpectedTotal)

	return report, nil
}

func (s *tollReconciliationService) routesInScope(ctx context.Context, routeID *string) ([]model.TollRoute, error) {
	if routeID == nil || *routeID == "" {
		routes, err := s.repo.TollConfig.ListRoutes(ctx, false)
		if err != nil {
			s.logger.Error("列出收费路线失败", zap.Error(err))
		}
		return routes, err
	}

	route, err := s.repo.TollConfig.GetRoute(ctx, *routeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTollRouteNotFound
		}
		s.logger.Error("查询收费路线失败", zap.String("id", *routeID), zap.Error(err))
		return nil, err
	}
	return []model.TollRoute{*route}, nil
}

// lookupStation 为只出现在实付侧的收费站补充名称，查不到时返回 nil
func (s *tollReconciliationService) lookupStation(ctx context.Context, id string) *model.TollStation {
	if id == "" {
		return nil
	}
	station, err := s.repo.TollStation.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询收费站失败", zap.String("id", id), zap.Error(err))
		}
		return nil
	}
	return station
}

// rateOn 选出 day 当天生效的标准；多条同时生效时取生效日期最晚的一条
func rateOn(rates []model.TollRate, day model.Date) *model.TollRate {
	var picked *model.TollRate
	for i := range rates {
		r := &rates[i]
		if !r.EffectiveOn(day) {
			continue
		}
		if picked == nil || r.EffectiveFrom.After(picked.EffectiveFrom.Time) {
			picked = r
		}
	}
	return picked
}

// stationRows 按出现顺序收集收费站行
type stationRows struct {
	rows  map[string]*dto.StationReconciliation
	order []string
}

func newStationRows() *stationRows {
	return &stationRows{rows: make(map[string]*dto.StationReconciliation)}
}

func (r *stationRows) get(id string, station *model.TollStation) *dto.StationReconciliation {
	if row, ok := r.rows[id]; ok {
		return row
	}
	row := &dto.StationReconciliation{
		StationID: id,
		Expected:  decimal.Zero,
		Actual:    decimal.Zero,
	}
	if station != nil {
		row.StationCode = station.Code
		row.StationName = station.Name
	}
	r.rows[id] = row
	r.order = append(r.order, id)
	return row
}

// sorted 路线上的收费站保持路线顺序，其后是仅有实付的收费站，未关联收费站的支付排在最后
func (r *stationRows) sorted() []*dto.StationReconciliation {
	result := make([]*dto.StationReconciliation, 0, len(r.order))
	var unassigned *dto.StationReconciliation
	for _, id := range r.order {
		if id == "" {
			unassigned = r.rows[id]
			continue
		}
		result = append(result, r.rows[id])
	}
	if unassigned != nil {
		result = append(result, unassigned)
	}
	return result
}

// ════════════════════════════════════════════════════════════
// ExportXLSX
// ════════════════════════════════════════════════════════════

func (s *tollReconciliationService) ExportXLSX(ctx context.Context, req *dto.ReconcileRequest) (*bytes.Buffer, string, error) {
	report, err := s.Reconcile(ctx, req)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeReconcileWorkbook(f, report); err != nil {
		s.logger.Error("生成对账 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("toll_reconciliation_%s_%s.xlsx", report.StartDate, report.EndDate)
	return buf, filename, nil
}

// writeReconcileWorkbook 写入汇总表与收费站明细表，返回遇到的第一个错误
func writeReconcileWorkbook(f *excelize.File, report *dto.ReconciliationReport) error {
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}

	// 汇总表
	summary := "对账汇总"
	idx, err := f.NewSheet(summary)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	w := &sheetWriter{f: f, sheet: summary}
	w.width("A", 18)
	w.width("B", 40)

	routeText := "全部启用路线"
	if report.RouteID != nil {
		routeText = *report.RouteID
	}
	summaryRows := [][]interface{}{
		{"开始日期", report.StartDate.String()},
		{"结束日期", report.EndDate.String()},
		{"路线", routeText},
		{"车型", report.VehicleType},
		{"币种", report.Currency},
		{"应付合计", report.ExpectedTotal.InexactFloat64()},
		{"实付合计", report.ActualTotal.InexactFloat64()},
		{"差额", report.Variance.InexactFloat64()},
		{"应付通行次数", report.ExpectedCrossings},
		{"无标准通行次数", report.UnratedCrossings},
		{"支付笔数", report.PaymentCount},
	}
	for _, ct := range report.OtherCurrencies {
		summaryRows = append(summaryRows, []interface{}{"其他币种实付 " + ct.Currency, ct.Total.InexactFloat64()})
	}
	for i, values := range summaryRows {
		row := i + 1
		w.set(cell("A", row), values[0])
		w.set(cell("B", row), values[1])
	}
	w.style("A1", fmt.Sprintf("A%d", len(summaryRows)), headerStyle)
	w.style("B6", "B8", moneyStyle)
	if err := w.err; err != nil {
		return err
	}

	// 收费站明细表
	detail := "收费站明细"
	if _, err := f.NewSheet(detail); err != nil {
		return err
	}
	w = &sheetWriter{f: f, sheet: detail}
	headers := []string{"收费站编码", "收费站名称", "应付通行次数", "无标准通行次数", "应付", "实付", "差额", "支付笔数"}
	for i, h := range headers {
		w.set(cell(colName(i), 1), h)
		w.width(colName(i), 16)
	}
	w.style("A1", cell(colName(len(headers)-1), 1), headerStyle)

	for i, st := range report.ByStation {
		row := i + 2
		code, name := st.StationCode, st.StationName
		if st.StationID == "" {
			name = "未关联收费站"
		}
		w.set(cell("A", row), code)
		w.set(cell("B", row), name)
		w.set(cell("C", row), st.ExpectedCrossings)
		w.set(cell("D", row), st.UnratedCrossings)
		w.set(cell("E", row), st.Expected.InexactFloat64())
		w.set(cell("F", row), st.Actual.InexactFloat64())
		w.set(cell("G", row), st.Variance.InexactFloat64())
		w.set(cell("H", row), st.PaymentCount)
	}
	if n := len(report.ByStation); n > 0 {
		w.style("E2", cell("G", n+1), moneyStyle)
	}
	return w.err
}

// sheetWriter 记录第一个写入错误，之后的写入全部跳过
type sheetWriter struct {
	f     *excelize.File
	sheet string
	err   error
}

func (w *sheetWriter) set(axis string, value interface{}) {
	if w.err == nil {
		w.err = w.f.SetCellValue(w.sheet, axis, value)
	}
}

func (w *sheetWriter) style(from, to string, styleID int) {
	if w.err == nil {
		w.err = w.f.SetCellStyle(w.sheet, from, to, styleID)
	}
}

func (w *sheetWriter) width(col string, width float64) {
	if w.err == nil {
		w.err = w.f.SetColWidth(w.sheet, col, col, width)
	}
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

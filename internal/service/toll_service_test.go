package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"ops-panel/config"
	"ops-panel/internal/dto"
	"ops-panel/internal/model"
	"ops-panel/internal/repository"
)

var testTollConfig = &config.TollConfig{DefaultVehicleType: "TRUCK", Currency: "USD"}

func newTollPaymentTestService(t *testing.T) (TollPaymentService, *repository.Repository) {
	t.Helper()
	repo := newMockRepository()
	seedReferences(t, repo)
	return NewTollPaymentService(testTollConfig, repo, zap.NewNop()), repo
}

func newPaymentRequest() *dto.CreateTollPaymentRequest {
	return &dto.CreateTollPaymentRequest{
		Amount:      dec("12.50"),
		VehicleType: "TRUCK",
		PaidAt:      time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
		TruckID:     strPtr("truck-1"),
	}
}

// ────────────────────── 支付台账 ──────────────────────

func TestTollPayment_Create(t *testing.T) {
	svc, _ := newTollPaymentTestService(t)

	p, err := svc.Create(context.Background(), newPaymentRequest(), operatorID)
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if p.Status != model.TollDraft {
		t.Errorf("期望状态 DRAFT，实际=%s", p.Status)
	}
	if p.PaidByUserID != operatorID {
		t.Errorf("期望登记人=%s，实际=%s", operatorID, p.PaidByUserID)
	}
	if p.Currency != "USD" {
		t.Errorf("未指定币种时应使用默认币种，实际=%s", p.Currency)
	}
}

func TestTollPayment_Create_UnknownStation(t *testing.T) {
	svc, _ := newTollPaymentTestService(t)

	req := newPaymentRequest()
	req.TollStationID = strPtr("station-missing")
	if _, err := svc.Create(context.Background(), req, operatorID); !errors.Is(err, ErrReferenceInvalid) {
		t.Errorf("期望 ErrReferenceInvalid，实际=%v", err)
	}
}

func TestTollPayment_Lifecycle(t *testing.T) {
	svc, _ := newTollPaymentTestService(t)
	ctx := context.Background()

	p, _ := svc.Create(ctx, newPaymentRequest(), operatorID)

	if _, err := svc.Submit(ctx, p.ID, otherID); !errors.Is(err, ErrTollPaymentForbidden) {
		t.Errorf("非登记人提交应返回 ErrTollPaymentForbidden，实际=%v", err)
	}
	if _, err := svc.Approve(ctx, p.ID, approverID); !errors.Is(err, ErrTollPaymentInvalidState) {
		t.Errorf("草稿不能直接审批，实际=%v", err)
	}

	submitted, err := svc.Submit(ctx, p.ID, operatorID)
	if err != nil {
		t.Fatalf("Submit 应成功: %v", err)
	}
	if submitted.Status != model.TollSubmitted || submitted.SubmittedAt == nil {
		t.Errorf("期望 SUBMITTED 且有提交时间，实际=%s", submitted.Status)
	}

	if _, err := svc.Update(ctx, p.ID, &dto.UpdateTollPaymentRequest{Notes: strPtr("x")}, operatorID); !errors.Is(err, ErrTollPaymentNotDraft) {
		t.Errorf("提交后不可修改，实际=%v", err)
	}

	approved, err := svc.Approve(ctx, p.ID, approverID)
	if err != nil {
		t.Fatalf("Approve 应成功: %v", err)
	}
	if approved.ApprovedByID == nil || *approved.ApprovedByID != approverID {
		t.Errorf("期望审批人=%s，实际=%v", approverID, approved.ApprovedByID)
	}

	posted, err := svc.Post(ctx, p.ID, approverID)
	if err != nil {
		t.Fatalf("Post 应成功: %v", err)
	}
	if posted.Status != model.TollPosted || posted.PostedAt == nil {
		t.Errorf("期望 POSTED 且有过账时间，实际=%s", posted.Status)
	}

	// 只能向前流转
	if _, err := svc.Submit(ctx, p.ID, operatorID); !errors.Is(err, ErrTollPaymentInvalidState) {
		t.Errorf("已过账不可再提交，实际=%v", err)
	}
}

func TestTollPayment_Delete_Rules(t *testing.T) {
	svc, _ := newTollPaymentTestService(t)
	ctx := context.Background()
	admin := []string{PermTollDelete}

	draft, _ := svc.Create(ctx, newPaymentRequest(), operatorID)
	if err := svc.Delete(ctx, draft.ID, otherID, nil); !errors.Is(err, ErrTollDeleteForbidden) {
		t.Errorf("他人删除草稿应被拒绝，实际=%v", err)
	}
	if err := svc.Delete(ctx, draft.ID, operatorID, nil); err != nil {
		t.Errorf("登记人应可删除草稿: %v", err)
	}

	submitted, _ := svc.Create(ctx, newPaymentRequest(), operatorID)
	_, _ = svc.Submit(ctx, submitted.ID, operatorID)
	if err := svc.Delete(ctx, submitted.ID, operatorID, nil); !errors.Is(err, ErrTollDeleteForbidden) {
		t.Errorf("已提交的支付需要 toll:delete，实际=%v", err)
	}
	if err := svc.Delete(ctx, submitted.ID, otherID, admin); err != nil {
		t.Errorf("持 toll:delete 应可删除已提交支付: %v", err)
	}

	posted, _ := svc.Create(ctx, newPaymentRequest(), operatorID)
	_, _ = svc.Submit(ctx, posted.ID, operatorID)
	_, _ = svc.Approve(ctx, posted.ID, approverID)
	_, _ = svc.Post(ctx, posted.ID, approverID)
	if err := svc.Delete(ctx, posted.ID, operatorID, admin); !errors.Is(err, ErrTollPaymentPosted) {
		t.Errorf("已过账支付不可删除，实际=%v", err)
	}
}

func TestTollPayment_List_DateRange(t *testing.T) {
	svc, _ := newTollPaymentTestService(t)
	ctx := context.Background()

	for _, day := range []int{1, 2, 3} {
		req := newPaymentRequest()
		req.PaidAt = time.Date(2024, 3, day, 23, 0, 0, 0, time.UTC)
		_, _ = svc.Create(ctx, req, operatorID)
	}

	items, total, err := svc.List(ctx, &dto.TollPaymentListRequest{DateFrom: "2024-03-02", DateTo: "2024-03-02"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Errorf("dateTo 当天应整天包含，期望 1 条，实际=%d", total)
	}
}

// ────────────────────── 收费配置 ──────────────────────

func seedStations(t *testing.T, repo *repository.Repository, ids ...string) {
	t.Helper()
	for _, id := range ids {
		err := repo.TollStation.Create(context.Background(), &model.TollStation{
			ReferenceBase: model.ReferenceBase{ID: id, Code: "C-" + id, Name: "收费站 " + id, IsActive: true},
		})
		if err != nil {
			t.Fatalf("写入收费站失败: %v", err)
		}
	}
}

func TestTollConfig_CreateRouteKeepsOrder(t *testing.T) {
	repo := newMockRepository()
	seedStations(t, repo, "st-a", "st-b")
	svc := NewTollConfigService(testTollConfig, repo, zap.NewNop())
	ctx := context.Background()

	route, err := svc.CreateRoute(ctx, &dto.CreateTollRouteRequest{Code: "R1", Name: "矿区-港口", StationIDs: []string{"st-b", "st-a"}}, operatorID)
	if err != nil {
		t.Fatalf("CreateRoute 应成功: %v", err)
	}

	got, err := svc.GetRoute(ctx, route.ID)
	if err != nil {
		t.Fatalf("GetRoute 应成功: %v", err)
	}
	if len(got.Stations) != 2 || got.Stations[0].StationID != "st-b" || got.Stations[1].Sequence != 2 {
		t.Errorf("收费站顺序应与请求一致，实际=%+v", got.Stations)
	}

	if _, err := svc.GetRoute(ctx, "missing"); !errors.Is(err, ErrTollRouteNotFound) {
		t.Errorf("期望 ErrTollRouteNotFound，实际=%v", err)
	}
}

func TestTollConfig_CreateRate_RejectsOverlap(t *testing.T) {
	repo := newMockRepository()
	seedStations(t, repo, "st-a")
	svc := NewTollConfigService(testTollConfig, repo, zap.NewNop())
	ctx := context.Background()

	to := mustDate("2024-03-31")
	_, err := svc.CreateRate(ctx, &dto.CreateTollRateRequest{
		StationID: "st-a", VehicleType: "TRUCK", Amount: dec("10"),
		EffectiveFrom: mustDate("2024-03-01"), EffectiveTo: &to,
	}, operatorID)
	if err != nil {
		t.Fatalf("CreateRate 应成功: %v", err)
	}

	_, err = svc.CreateRate(ctx, &dto.CreateTollRateRequest{
		StationID: "st-a", VehicleType: "TRUCK", Amount: dec("12"),
		EffectiveFrom: mustDate("2024-03-15"),
	}, operatorID)
	if !errors.Is(err, ErrTollRateOverlap) {
		t.Errorf("期望 ErrTollRateOverlap，实际=%v", err)
	}

	_, err = svc.CreateRate(ctx, &dto.CreateTollRateRequest{
		StationID: "st-a", VehicleType: "TRUCK", Amount: dec("12"),
		EffectiveFrom: mustDate("2024-04-01"),
	}, operatorID)
	if err != nil {
		t.Errorf("相邻区间不应视为重叠: %v", err)
	}
}

func TestTollConfig_UpdateRate_ClosesThenReprices(t *testing.T) {
	repo := newMockRepository()
	seedStations(t, repo, "st-a")
	svc := NewTollConfigService(testTollConfig, repo, zap.NewNop())
	ctx := context.Background()

	route, err := svc.CreateRoute(ctx, &dto.CreateTollRouteRequest{Code: "R1", Name: "矿区-港口", StationIDs: []string{"st-a"}}, operatorID)
	if err != nil {
		t.Fatalf("CreateRoute 应成功: %v", err)
	}
	old, err := svc.CreateRate(ctx, &dto.CreateTollRateRequest{
		StationID: "st-a", VehicleType: "TRUCK", Amount: dec("10"), EffectiveFrom: mustDate("2024-01-01"),
	}, operatorID)
	if err != nil {
		t.Fatalf("CreateRate 应成功: %v", err)
	}

	newRate := &dto.CreateTollRateRequest{
		StationID: "st-a", VehicleType: "TRUCK", Amount: dec("12"), EffectiveFrom: mustDate("2024-01-16"),
	}
	if _, err := svc.CreateRate(ctx, newRate, operatorID); !errors.Is(err, ErrTollRateOverlap) {
		t.Fatalf("旧标准未关闭时新建应冲突，实际=%v", err)
	}

	closeOn := mustDate("2024-01-15")
	closed, err := svc.UpdateRate(ctx, old.ID, &dto.UpdateTollRateRequest{EffectiveTo: &closeOn}, approverID)
	if err != nil {
		t.Fatalf("UpdateRate 应成功: %v", err)
	}
	if closed.EffectiveTo == nil || closed.EffectiveTo.String() != "2024-01-15" || *closed.UpdatedBy != approverID {
		t.Errorf("失效日期与修改人应被记录，实际=%+v", closed)
	}
	if _, err := svc.CreateRate(ctx, newRate, operatorID); err != nil {
		t.Fatalf("关闭旧标准后新建应成功: %v", err)
	}

	report, err := NewTollReconciliationService(testTollConfig, repo, zap.NewNop()).Reconcile(ctx, &dto.ReconcileRequest{
		StartDate: mustDate("2024-01-10"),
		EndDate:   mustDate("2024-01-20"),
		RouteID:   &route.ID,
	})
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	// 6 天 × 10 + 5 天 × 12 = 120
	if !report.ExpectedTotal.Equal(dec("120")) || report.ExpectedCrossings != 11 {
		t.Errorf("期望应付=120、11 次通行，实际=%s/%d", report.ExpectedTotal, report.ExpectedCrossings)
	}

	reopen := mustDate("2024-01-20")
	if _, err := svc.UpdateRate(ctx, old.ID, &dto.UpdateTollRateRequest{EffectiveTo: &reopen}, approverID); !errors.Is(err, ErrTollRateOverlap) {
		t.Errorf("延长后与新标准重叠，期望 ErrTollRateOverlap，实际=%v", err)
	}
	early := mustDate("2023-12-31")
	if _, err := svc.UpdateRate(ctx, old.ID, &dto.UpdateTollRateRequest{EffectiveTo: &early}, approverID); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际=%v", err)
	}
	if _, err := svc.UpdateRate(ctx, "missing", &dto.UpdateTollRateRequest{}, approverID); !errors.Is(err, ErrTollRateNotFound) {
		t.Errorf("期望 ErrTollRateNotFound，实际=%v", err)
	}
}

func TestTollConfig_UpdateRate_DeactivateSkipsOverlapCheck(t *testing.T) {
	repo := newMockRepository()
	seedStations(t, repo, "st-a")
	svc := NewTollConfigService(testTollConfig, repo, zap.NewNop())
	ctx := context.Background()

	rate, err := svc.CreateRate(ctx, &dto.CreateTollRateRequest{
		StationID: "st-a", VehicleType: "TRUCK", Amount: dec("10"), EffectiveFrom: mustDate("2024-01-01"),
	}, operatorID)
	if err != nil {
		t.Fatalf("CreateRate 应成功: %v", err)
	}
	inactive := false
	got, err := svc.UpdateRate(ctx, rate.ID, &dto.UpdateTollRateRequest{IsActive: &inactive}, operatorID)
	if err != nil {
		t.Fatalf("停用收费标准应成功: %v", err)
	}
	if got.IsActive {
		t.Error("收费标准应已停用")
	}

	// 停用后同区间可新建
	if _, err := svc.CreateRate(ctx, &dto.CreateTollRateRequest{
		StationID: "st-a", VehicleType: "TRUCK", Amount: dec("11"), EffectiveFrom: mustDate("2024-01-01"),
	}, operatorID); err != nil {
		t.Fatalf("停用后新建应成功: %v", err)
	}
	active := true
	if _, err := svc.UpdateRate(ctx, rate.ID, &dto.UpdateTollRateRequest{IsActive: &active}, operatorID); !errors.Is(err, ErrTollRateOverlap) {
		t.Errorf("重新启用与现行标准重叠，期望 ErrTollRateOverlap，实际=%v", err)
	}
}

func TestTollConfig_UpdateRoute_Deactivate(t *testing.T) {
	svc, repo, routeID := reconcileFixture(t)
	cfgSvc := NewTollConfigService(testTollConfig, repo, zap.NewNop())
	ctx := context.Background()

	name := "矿区-新港"
	inactive := false
	route, err := cfgSvc.UpdateRoute(ctx, routeID, &dto.UpdateTollRouteRequest{Name: &name, IsActive: &inactive}, approverID)
	if err != nil {
		t.Fatalf("UpdateRoute 应成功: %v", err)
	}
	if route.Name != name || route.IsActive {
		t.Errorf("名称与启用状态应被更新，实际=%+v", route)
	}
	if len(route.Stations) != 2 {
		t.Errorf("收费站顺序不应改变，实际=%d", len(route.Stations))
	}

	active, _ := cfgSvc.ListRoutes(ctx, false)
	if len(active) != 0 {
		t.Errorf("停用后启用路线列表应为空，实际=%d", len(active))
	}

	report, err := svc.Reconcile(ctx, &dto.ReconcileRequest{
		StartDate: mustDate("2024-03-01"),
		EndDate:   mustDate("2024-03-03"),
	})
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if !report.ExpectedTotal.IsZero() || report.ExpectedCrossings != 0 {
		t.Errorf("停用路线不应计入应付，实际=%s/%d", report.ExpectedTotal, report.ExpectedCrossings)
	}

	if _, err := cfgSvc.UpdateRoute(ctx, "missing", &dto.UpdateTollRouteRequest{}, approverID); !errors.Is(err, ErrTollRouteNotFound) {
		t.Errorf("期望 ErrTollRouteNotFound，实际=%v", err)
	}
}

// ────────────────────── 对账 ──────────────────────

// reconcileFixture 两个收费站的路线：
//   - st-a 3 月全月 10.00
//   - st-b 3 月 2 日起 5.00（1 日无标准）
//
// 实付：st-a 两笔已过账、st-b 一笔已审批、一笔无收费站、一笔草稿（不计入）
func reconcileFixture(t *testing.T) (TollReconciliationService, *repository.Repository, string) {
	t.Helper()
	repo := newMockRepository()
	seedStations(t, repo, "st-a", "st-b")
	ctx := context.Background()

	cfgSvc := NewTollConfigService(testTollConfig, repo, zap.NewNop())
	route, err := cfgSvc.CreateRoute(ctx, &dto.CreateTollRouteRequest{Code: "R1", Name: "矿区-港口", StationIDs: []string{"st-a", "st-b"}}, operatorID)
	if err != nil {
		t.Fatalf("CreateRoute 应成功: %v", err)
	}
	for _, r := range []dto.CreateTollRateRequest{
		{StationID: "st-a", VehicleType: "TRUCK", Amount: dec("10"), EffectiveFrom: mustDate("2024-03-01")},
		{StationID: "st-b", VehicleType: "TRUCK", Amount: dec("5"), EffectiveFrom: mustDate("2024-03-02")},
		{StationID: "st-a", VehicleType: "VAN", Amount: dec("99"), EffectiveFrom: mustDate("2024-01-01")},
	} {
		req := r
		if _, err := cfgSvc.CreateRate(ctx, &req, operatorID); err != nil {
			t.Fatalf("CreateRate 应成功: %v", err)
		}
	}

	payments := repo.TollPayment
	add := func(station *string, amount string, status model.TollPaymentStatus, day int) {
		_ = payments.Create(ctx, &model.TollPayment{
			Amount:        dec(amount),
			Currency:      "USD",
			VehicleType:   "TRUCK",
			PaidAt:        time.Date(2024, 3, day, 12, 0, 0, 0, time.UTC),
			RouteID:       &route.ID,
			TollStationID: station,
			Status:        status,
			PaidByUserID:  operatorID,
		})
	}
	add(strPtr("st-a"), "10", model.TollPosted, 1)
	add(strPtr("st-a"), "10", model.TollPosted, 2)
	add(strPtr("st-b"), "5", model.TollApproved, 2)
	add(nil, "7.25", model.TollApproved, 3)
	add(strPtr("st-a"), "10", model.TollDraft, 3)
	add(strPtr("st-a"), "10", model.TollPosted, 4) // 区间外

	return NewTollReconciliationService(testTollConfig, repo, zap.NewNop()), repo, route.ID
}

func TestReconcile_ExpectedAndActual(t *testing.T) {
	svc, _, routeID := reconcileFixture(t)

	report, err := svc.Reconcile(context.Background(), &dto.ReconcileRequest{
		StartDate: mustDate("2024-03-01"),
		EndDate:   mustDate("2024-03-03"),
		RouteID:   &routeID,
	})
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}

	// 应付：st-a 3 天 × 10 + st-b 2 天 × 5 = 40
	if !report.ExpectedTotal.Equal(dec("40")) {
		t.Errorf("期望应付=40，实际=%s", report.ExpectedTotal)
	}
	// 实付：10 + 10 + 5 + 7.25 = 32.25
	if !report.ActualTotal.Equal(dec("32.25")) {
		t.Errorf("期望实付=32.25，实际=%s", report.ActualTotal)
	}
	if !report.Variance.Equal(dec("-7.75")) {
		t.Errorf("期望差额=-7.75，实际=%s", report.Variance)
	}
	if report.ExpectedCrossings != 5 || report.UnratedCrossings != 1 {
		t.Errorf("期望 5 次计价通行、1 次无标准，实际=%d/%d", report.ExpectedCrossings, report.UnratedCrossings)
	}
	if report.PaymentCount != 4 {
		t.Errorf("期望 4 笔支付，实际=%d", report.PaymentCount)
	}
	if report.VehicleType != "TRUCK" {
		t.Errorf("未指定车型时应使用默认车型，实际=%s", report.VehicleType)
	}

	if len(report.ByStation) != 3 {
		t.Fatalf("期望 3 行收费站明细（含未关联），实际=%d", len(report.ByStation))
	}
	if report.ByStation[0].StationID != "st-a" || report.ByStation[2].StationID != "" {
		t.Errorf("明细顺序应为路线顺序，未关联收费站排最后，实际=%+v", report.ByStation)
	}
}

func TestReconcile_VarianceSumsExactly(t *testing.T) {
	svc, _, _ := reconcileFixture(t)

	report, err := svc.Reconcile(context.Background(), &dto.ReconcileRequest{
		StartDate: mustDate("2024-03-01"),
		EndDate:   mustDate("2024-03-31"),
	})
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}

	sumVariance, sumExpected, sumActual := dec("0"), dec("0"), dec("0")
	for _, st := range report.ByStation {
		if !st.Variance.Equal(st.Actual.Sub(st.Expected)) {
			t.Errorf("收费站 %s 差额不一致", st.StationID)
		}
		sumVariance = sumVariance.Add(st.Variance)
		sumExpected = sumExpected.Add(st.Expected)
		sumActual = sumActual.Add(st.Actual)
	}
	if !sumVariance.Equal(report.Variance) {
		t.Errorf("明细差额之和=%s 应等于总差额=%s", sumVariance, report.Variance)
	}
	if !sumExpected.Equal(report.ExpectedTotal) || !sumActual.Equal(report.ActualTotal) {
		t.Error("明细应付/实付之和应等于总额")
	}
}

func TestReconcile_VehicleTypeFilter(t *testing.T) {
	svc, _, _ := reconcileFixture(t)

	report, err := svc.Reconcile(context.Background(), &dto.ReconcileRequest{
		StartDate:   mustDate("2024-03-01"),
		EndDate:     mustDate("2024-03-02"),
		VehicleType: "VAN",
	})
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	// VAN 仅 st-a 有标准：2 天 × 99；无 VAN 支付
	if !report.ExpectedTotal.Equal(dec("198")) || !report.ActualTotal.IsZero() {
		t.Errorf("期望应付=198 实付=0，实际=%s/%s", report.ExpectedTotal, report.ActualTotal)
	}
	if report.UnratedCrossings != 2 {
		t.Errorf("st-b 无 VAN 标准，期望 2 次无标准通行，实际=%d", report.UnratedCrossings)
	}
}

func TestReconcile_OtherCurrencyKeptSeparate(t *testing.T) {
	svc, repo, routeID := reconcileFixture(t)
	ctx := context.Background()

	st := "st-a"
	_ = repo.TollPayment.Create(ctx, &model.TollPayment{
		Amount:        dec("50000"),
		Currency:      "CDF",
		VehicleType:   "TRUCK",
		PaidAt:        time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC),
		RouteID:       &routeID,
		TollStationID: &st,
		Status:        model.TollPosted,
		PaidByUserID:  operatorID,
	})

	report, err := svc.Reconcile(ctx, &dto.ReconcileRequest{
		StartDate: mustDate("2024-03-01"),
		EndDate:   mustDate("2024-03-03"),
		RouteID:   &routeID,
	})
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if report.Currency != "USD" {
		t.Errorf("未指定币种时应使用默认币种，实际=%s", report.Currency)
	}
	if !report.ActualTotal.Equal(dec("32.25")) || report.PaymentCount != 4 {
		t.Errorf("其他币种不应计入实付，实际=%s/%d", report.ActualTotal, report.PaymentCount)
	}
	if len(report.OtherCurrencies) != 1 {
		t.Fatalf("期望 1 个其他币种，实际=%+v", report.OtherCurrencies)
	}
	other := report.OtherCurrencies[0]
	if other.Currency != "CDF" || !other.Total.Equal(dec("50000")) || other.Count != 1 {
		t.Errorf("其他币种汇总不符，实际=%+v", other)
	}

	// 按 CDF 对账：收费标准均为 USD，全部通行无标准
	cdf, err := svc.Reconcile(ctx, &dto.ReconcileRequest{
		StartDate: mustDate("2024-03-01"),
		EndDate:   mustDate("2024-03-03"),
		RouteID:   &routeID,
		Currency:  "CDF",
	})
	if err != nil {
		t.Fatalf("Reconcile 应成功: %v", err)
	}
	if !cdf.ActualTotal.Equal(dec("50000")) || !cdf.ExpectedTotal.IsZero() || cdf.UnratedCrossings != 6 {
		t.Errorf("CDF 对账不符，实际 actual=%s expected=%s unrated=%d", cdf.ActualTotal, cdf.ExpectedTotal, cdf.UnratedCrossings)
	}
	if len(cdf.OtherCurrencies) != 1 || cdf.OtherCurrencies[0].Currency != "USD" {
		t.Errorf("USD 实付应列入其他币种，实际=%+v", cdf.OtherCurrencies)
	}
}

func TestReconcile_InvalidRange(t *testing.T) {
	svc, _, _ := reconcileFixture(t)
	ctx := context.Background()

	_, err := svc.Reconcile(ctx, &dto.ReconcileRequest{StartDate: mustDate("2024-03-05"), EndDate: mustDate("2024-03-01")})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("期望 ErrInvalidDateRange，实际=%v", err)
	}
	_, err = svc.Reconcile(ctx, &dto.ReconcileRequest{StartDate: mustDate("2022-01-01"), EndDate: mustDate("2024-01-01")})
	if !errors.Is(err, ErrReconcileRangeTooLarge) {
		t.Errorf("期望 ErrReconcileRangeTooLarge，实际=%v", err)
	}
	missing := "route-missing"
	_, err = svc.Reconcile(ctx, &dto.ReconcileRequest{StartDate: mustDate("2024-03-01"), EndDate: mustDate("2024-03-01"), RouteID: &missing})
	if !errors.Is(err, ErrTollRouteNotFound) {
		t.Errorf("期望 ErrTollRouteNotFound，实际=%v", err)
	}
}

func TestReconcile_ExportXLSX(t *testing.T) {
	svc, _, _ := reconcileFixture(t)

	buf, filename, err := svc.ExportXLSX(context.Background(), &dto.ReconcileRequest{
		StartDate: mustDate("2024-03-01"),
		EndDate:   mustDate("2024-03-03"),
	})
	if err != nil {
		t.Fatalf("ExportXLSX 应成功: %v", err)
	}
	if filename != "toll_reconciliation_2024-03-01_2024-03-03.xlsx" {
		t.Errorf("文件名不符，实际=%s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出文件应可读取: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("收费站明细")
	if err != nil {
		t.Fatalf("应包含收费站明细表: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("期望表头 + 3 行明细，实际=%d", len(rows))
	}
	if v, _ := f.GetCellValue("对账汇总", "A8"); v != "差额" {
		t.Errorf("汇总表第 8 行应为差额，实际=%s", v)
	}
}

func TestSheetWriter_KeepsFirstError(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	w := &sheetWriter{f: f, sheet: "不存在的表"}
	w.set("A1", "x")
	if w.err == nil {
		t.Fatal("写入不存在的工作表应返回错误")
	}
	first := w.err
	w.width("A", 10)
	w.style("A1", "A1", 0)
	if w.err != first {
		t.Errorf("应保留第一个错误，实际=%v", w.err)
	}

	ok := &sheetWriter{f: f, sheet: "Sheet1"}
	ok.set("A1", "x")
	ok.width("A", 10)
	if ok.err != nil {
		t.Errorf("写入已有工作表不应出错: %v", ok.err)
	}
}

package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"ops-panel/internal/model"
	"ops-panel/internal/repository"
	pkgerrors "ops-panel/pkg/errors"
)

// newMockRepository 组装全部内存仓储，供 Service 单测使用
func newMockRepository() *repository.Repository {
	stations := newMockRefRepo[model.TollStation]()
	assets := newMockAssetRepo()
	tollConfig := newMockTollConfigRepo()
	tollConfig.stations = stations
	depreciation := newMockDepreciationRepo()
	depreciation.assets = assets

	return &repository.Repository{
		MaterialType:      newMockRefRepo[model.MaterialType](),
		ProductType:       newMockRefRepo[model.ProductType](),
		PitLocation:       newMockRefRepo[model.PitLocation](),
		StockpileLocation: newMockRefRepo[model.StockpileLocation](),
		Crusher:           newMockRefRepo[model.Crusher](),
		Truck:             newMockRefRepo[model.Truck](),
		Excavator:         newMockRefRepo[model.Excavator](),
		TollStation:       stations,

		ExcavatorEntry:     newMockEntryRepo[model.ExcavatorEntry](),
		HaulingEntry:       newMockEntryRepo[model.HaulingEntry](),
		CrusherFeedEntry:   &mockCrusherFeedRepo{mockEntryRepo: newMockEntryRepo[model.CrusherFeedEntry]()},
		CrusherOutputEntry: newMockEntryRepo[model.CrusherOutputEntry](),

		TollPayment: newMockTollPaymentRepo(),
		TollConfig:  tollConfig,

		Asset:        assets,
		Depreciation: depreciation,
	}
}

// ── Mock ReferenceRepository ──

type mockRefRepo[T any, P refPtr[T]] struct {
	items map[string]*T
	seq   int
}

func newMockRefRepo[T any, P refPtr[T]]() *mockRefRepo[T, P] {
	return &mockRefRepo[T, P]{items: make(map[string]*T)}
}

func (m *mockRefRepo[T, P]) Create(_ context.Context, item *T) error {
	ref := P(item).Ref()
	if ref.ID == "" {
		m.seq++
		ref.ID = fmt.Sprintf("ref-%d", m.seq)
	}
	cp := *item
	m.items[ref.ID] = &cp
	return nil
}

func (m *mockRefRepo[T, P]) GetByID(_ context.Context, id string) (*T, error) {
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRefRepo[T, P]) List(_ context.Context, f repository.ReferenceFilter) ([]T, int64, error) {
	result := make([]T, 0)
	for _, item := range m.items {
		ref := P(item).Ref()
		if !f.IncludeInactive && !ref.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(ref.Code, f.Search) && !strings.Contains(ref.Name, f.Search) {
			continue
		}
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool {
		return P(&result[i]).Ref().Code < P(&result[j]).Ref().Code
	})
	return page(result, f.Offset, f.Limit)
}

func (m *mockRefRepo[T, P]) Update(_ context.Context, item *T) error {
	id := P(item).Ref().ID
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *item
	m.items[id] = &cp
	return nil
}

func (m *mockRefRepo[T, P]) Deactivate(_ context.Context, id string, updatedBy string) error {
	if item, ok := m.items[id]; ok {
		ref := P(item).Ref()
		ref.IsActive = false
		ref.UpdatedBy = &updatedBy
	}
	return nil
}

func (m *mockRefRepo[T, P]) ExistsByCode(_ context.Context, code string, excludeID string) (bool, error) {
	for id, item := range m.items {
		if id != excludeID && P(item).Ref().Code == code {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock EntryRepository ──

type mockEntryRepo[T any, P entryPtr[T]] struct {
	items map[string]*T
	seq   int
	// beforeTransition 在条件判断前调用，用于模拟并发审批
	beforeTransition func(id string)
}

func newMockEntryRepo[T any, P entryPtr[T]]() *mockEntryRepo[T, P] {
	return &mockEntryRepo[T, P]{items: make(map[string]*T)}
}

func (m *mockEntryRepo[T, P]) Create(_ context.Context, e *T) error {
	h := P(e).Header()
	if h.ID == "" {
		m.seq++
		h.ID = fmt.Sprintf("entry-%d", m.seq)
	}
	h.CreatedAt = time.Now().UTC()
	h.UpdatedAt = h.CreatedAt
	cp := *e
	m.items[h.ID] = &cp
	return nil
}

func (m *mockEntryRepo[T, P]) GetByID(_ context.Context, id string) (*T, error) {
	if e, ok := m.items[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEntryRepo[T, P]) List(_ context.Context, f repository.EntryFilter) ([]T, int64, error) {
	result := make([]T, 0)
	for _, e := range m.items {
		h := P(e).Header()
		if f.Status != "" && string(h.Status) != f.Status {
			continue
		}
		if f.Shift != "" && string(h.Shift) != f.Shift {
			continue
		}
		if f.EquipmentID != "" && P(e).EquipmentRef() != f.EquipmentID {
			continue
		}
		if f.DateFrom != nil && h.Date.Before(f.DateFrom.Time) {
			continue
		}
		if f.DateTo != nil && h.Date.After(f.DateTo.Time) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool {
		return P(&result[i]).Header().Date.After(P(&result[j]).Header().Date.Time)
	})
	return page(result, f.Offset, f.Limit)
}

func (m *mockEntryRepo[T, P]) UpdateEditable(_ context.Context, e *T, actorID string) error {
	h := P(e).Header()
	stored, ok := m.items[h.ID]
	if !ok {
		return pkgerrors.ErrStateConflict
	}
	sh := P(stored).Header()
	if sh.CreatedByID != actorID || sh.Status == model.EntryApproved {
		return pkgerrors.ErrStateConflict
	}

	cp := *e
	ch := P(&cp).Header()
	ch.Status = sh.Status
	ch.ApproverID = sh.ApproverID
	ch.ApprovedAt = sh.ApprovedAt
	ch.CreatedByID = sh.CreatedByID
	ch.CreatedAt = sh.CreatedAt
	m.items[h.ID] = &cp
	return nil
}

func (m *mockEntryRepo[T, P]) Transition(_ context.Context, id string, from model.EntryStatus, t repository.EntryTransition) error {
	if m.beforeTransition != nil {
		m.beforeTransition(id)
	}
	e, ok := m.items[id]
	if !ok || P(e).Header().Status != from {
		return pkgerrors.ErrStateConflict
	}

	h := P(e).Header()
	h.Status = t.To
	h.ApproverID = t.ApproverID
	h.ApprovedAt = t.ApprovedAt
	if t.AppendNote != "" {
		if h.Notes == "" {
			h.Notes = t.AppendNote
		} else {
			h.Notes += "\n" + t.AppendNote
		}
	}
	return nil
}

func (m *mockEntryRepo[T, P]) DeleteOwnedPending(_ context.Context, id string, actorID string) error {
	e, ok := m.items[id]
	if !ok {
		return pkgerrors.ErrStateConflict
	}
	h := P(e).Header()
	if h.Status != model.EntryPending || h.CreatedByID != actorID {
		return pkgerrors.ErrStateConflict
	}
	delete(m.items, id)
	return nil
}

// setStatus 直接改写存储状态，模拟其他请求已完成流转
func (m *mockEntryRepo[T, P]) setStatus(id string, status model.EntryStatus) {
	if e, ok := m.items[id]; ok {
		P(e).Header().Status = status
	}
}

type mockCrusherFeedRepo struct {
	*mockEntryRepo[model.CrusherFeedEntry, *model.CrusherFeedEntry]
}

func (m *mockCrusherFeedRepo) SumApprovedTonnage(_ context.Context, crusherID string, date model.Date, shift model.Shift) (decimal.Decimal, int64, error) {
	total := decimal.Zero
	var count int64
	for _, e := range m.items {
		if e.CrusherID == crusherID && e.Date.Equal(date.Time) && e.Shift == shift && e.Status == model.EntryApproved {
			total = total.Add(e.WeighBridgeTonnage)
			count++
		}
	}
	return total, count, nil
}

// ── Mock TollPaymentRepository ──

type mockTollPaymentRepo struct {
	payments map[string]*model.TollPayment
	seq      int
}

func newMockTollPaymentRepo() *mockTollPaymentRepo {
	return &mockTollPaymentRepo{payments: make(map[string]*model.TollPayment)}
}

func (m *mockTollPaymentRepo) Create(_ context.Context, p *model.TollPayment) error {
	if p.ID == "" {
		m.seq++
		p.ID = fmt.Sprintf("pay-%d", m.seq)
	}
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockTollPaymentRepo) GetByID(_ context.Context, id string) (*model.TollPayment, error) {
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTollPaymentRepo) match(p *model.TollPayment, f repository.TollPaymentFilter) bool {
	if f.PaidFrom != nil && p.PaidAt.Before(*f.PaidFrom) {
		return false
	}
	if f.PaidTo != nil && !p.PaidAt.Before(*f.PaidTo) {
		return false
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if p.Status == s {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if f.RouteID != "" && (p.RouteID == nil || *p.RouteID != f.RouteID) {
		return false
	}
	if f.StationID != "" && (p.TollStationID == nil || *p.TollStationID != f.StationID) {
		return false
	}
	if f.VehicleType != "" && p.VehicleType != f.VehicleType {
		return false
	}
	if f.Currency != "" && p.Currency != f.Currency {
		return false
	}
	return true
}

func (m *mockTollPaymentRepo) List(_ context.Context, f repository.TollPaymentFilter) ([]model.TollPayment, int64, error) {
	result := make([]model.TollPayment, 0)
	for _, p := range m.payments {
		if m.match(p, f) {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PaidAt.After(result[j].PaidAt) })
	return page(result, f.Offset, f.Limit)
}

func (m *mockTollPaymentRepo) UpdateDraft(_ context.Context, p *model.TollPayment) error {
	stored, ok := m.payments[p.ID]
	if !ok || stored.Status != model.TollDraft || stored.PaidByUserID != p.PaidByUserID {
		return pkgerrors.ErrStateConflict
	}
	cp := *p
	cp.Status = stored.Status
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockTollPaymentRepo) Transition(_ context.Context, id string, from, to model.TollPaymentStatus, fields map[string]interface{}) error {
	p, ok := m.payments[id]
	if !ok || p.Status != from {
		return pkgerrors.ErrStateConflict
	}
	p.Status = to
	for k, v := range fields {
		switch k {
		case "submitted_at":
			t := v.(time.Time)
			p.SubmittedAt = &t
		case "approved_at":
			t := v.(time.Time)
			p.ApprovedAt = &t
		case "posted_at":
			t := v.(time.Time)
			p.PostedAt = &t
		case "approved_by_id":
			s := v.(string)
			p.ApprovedByID = &s
		case "updated_by":
			s := v.(string)
			p.UpdatedBy = &s
		}
	}
	return nil
}

func (m *mockTollPaymentRepo) DeleteInStatus(_ context.Context, id string, status model.TollPaymentStatus) error {
	p, ok := m.payments[id]
	if !ok || p.Status != status {
		return pkgerrors.ErrStateConflict
	}
	delete(m.payments, id)
	return nil
}

func (m *mockTollPaymentRepo) SumByStation(_ context.Context, f repository.TollPaymentFilter) ([]repository.StationTotal, error) {
	byStation := make(map[string]*repository.StationTotal)
	var order []string
	for _, p := range m.payments {
		if !m.match(p, f) {
			continue
		}
		id := ""
		if p.TollStationID != nil {
			id = *p.TollStationID
		}
		st, ok := byStation[id]
		if !ok {
			st = &repository.StationTotal{StationID: id, Total: decimal.Zero}
			byStation[id] = st
			order = append(order, id)
		}
		st.Total = st.Total.Add(p.Amount)
		st.Count++
	}
	sort.Strings(order)
	result := make([]repository.StationTotal, 0, len(order))
	for _, id := range order {
		result = append(result, *byStation[id])
	}
	return result, nil
}

func (m *mockTollPaymentRepo) SumByCurrency(_ context.Context, f repository.TollPaymentFilter) ([]repository.CurrencyTotal, error) {
	byCurrency := make(map[string]*repository.CurrencyTotal)
	var order []string
	for _, p := range m.payments {
		if !m.match(p, f) {
			continue
		}
		ct, ok := byCurrency[p.Currency]
		if !ok {
			ct = &repository.CurrencyTotal{Currency: p.Currency, Total: decimal.Zero}
			byCurrency[p.Currency] = ct
			order = append(order, p.Currency)
		}
		ct.Total = ct.Total.Add(p.Amount)
		ct.Count++
	}
	sort.Strings(order)
	result := make([]repository.CurrencyTotal, 0, len(order))
	for _, c := range order {
		result = append(result, *byCurrency[c])
	}
	return result, nil
}

// ── Mock TollConfigRepository ──

type mockTollConfigRepo struct {
	routes   map[string]*model.TollRoute
	rates    map[string]*model.TollRate
	stations repository.ReferenceRepository[model.TollStation]
	seq      int
}

func newMockTollConfigRepo() *mockTollConfigRepo {
	return &mockTollConfigRepo{
		routes: make(map[string]*model.TollRoute),
		rates:  make(map[string]*model.TollRate),
	}
}

func (m *mockTollConfigRepo) CreateRoute(_ context.Context, route *model.TollRoute) error {
	if route.ID == "" {
		m.seq++
		route.ID = fmt.Sprintf("route-%d", m.seq)
	}
	for i := range route.Stations {
		route.Stations[i].RouteID = route.ID
	}
	cp := *route
	cp.Stations = append([]model.RouteStation(nil), route.Stations...)
	m.routes[route.ID] = &cp
	return nil
}

// withStations 模拟 Preload("Stations.Station")
func (m *mockTollConfigRepo) withStations(ctx context.Context, r *model.TollRoute) model.TollRoute {
	cp := *r
	cp.Stations = make([]model.RouteStation, len(r.Stations))
	copy(cp.Stations, r.Stations)
	sort.Slice(cp.Stations, func(i, j int) bool { return cp.Stations[i].Sequence < cp.Stations[j].Sequence })
	if m.stations != nil {
		for i := range cp.Stations {
			if st, err := m.stations.GetByID(ctx, cp.Stations[i].StationID); err == nil {
				cp.Stations[i].Station = st
			}
		}
	}
	return cp
}

func (m *mockTollConfigRepo) GetRoute(ctx context.Context, id string) (*model.TollRoute, error) {
	r, ok := m.routes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	route := m.withStations(ctx, r)
	return &route, nil
}

func (m *mockTollConfigRepo) ListRoutes(ctx context.Context, includeInactive bool) ([]model.TollRoute, error) {
	result := make([]model.TollRoute, 0)
	for _, r := range m.routes {
		if !includeInactive && !r.IsActive {
			continue
		}
		result = append(result, m.withStations(ctx, r))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

func (m *mockTollConfigRepo) UpdateRoute(_ context.Context, route *model.TollRoute) error {
	stored, ok := m.routes[route.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name = route.Name
	stored.IsActive = route.IsActive
	stored.UpdatedBy = route.UpdatedBy
	return nil
}

func (m *mockTollConfigRepo) GetRate(_ context.Context, id string) (*model.TollRate, error) {
	if r, ok := m.rates[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTollConfigRepo) UpdateRate(_ context.Context, rate *model.TollRate) error {
	stored, ok := m.rates[rate.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.EffectiveTo = rate.EffectiveTo
	stored.IsActive = rate.IsActive
	stored.UpdatedBy = rate.UpdatedBy
	return nil
}

func (m *mockTollConfigRepo) CreateRate(_ context.Context, rate *model.TollRate) error {
	if rate.ID == "" {
		m.seq++
		rate.ID = fmt.Sprintf("rate-%d", m.seq)
	}
	cp := *rate
	m.rates[rate.ID] = &cp
	return nil
}

func (m *mockTollConfigRepo) ListRates(_ context.Context, f repository.TollRateFilter) ([]model.TollRate, error) {
	result := make([]model.TollRate, 0)
	for _, r := range m.rates {
		if len(f.StationIDs) > 0 {
			found := false
			for _, id := range f.StationIDs {
				if r.StationID == id {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if f.VehicleType != "" && r.VehicleType != f.VehicleType {
			continue
		}
		if f.Currency != "" && r.Currency != f.Currency {
			continue
		}
		if f.ActiveOnly && !r.IsActive {
			continue
		}
		if f.To != nil && r.EffectiveFrom.After(f.To.Time) {
			continue
		}
		if f.From != nil && r.EffectiveTo != nil && r.EffectiveTo.Before(f.From.Time) {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EffectiveFrom.Before(result[j].EffectiveFrom.Time) })
	return result, nil
}

// ── Mock AssetRepository ──

type mockAssetRepo struct {
	assets map[string]*model.Asset
	seq    int
}

func newMockAssetRepo() *mockAssetRepo {
	return &mockAssetRepo{assets: make(map[string]*model.Asset)}
}

func (m *mockAssetRepo) Create(_ context.Context, a *model.Asset) error {
	if a.ID == "" {
		m.seq++
		a.ID = fmt.Sprintf("asset-%d", m.seq)
	}
	cp := *a
	m.assets[a.ID] = &cp
	return nil
}

func (m *mockAssetRepo) GetByID(_ context.Context, id string) (*model.Asset, error) {
	if a, ok := m.assets[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssetRepo) List(_ context.Context, f repository.AssetFilter) ([]model.Asset, int64, error) {
	result := make([]model.Asset, 0)
	for _, a := range m.assets {
		if f.Status != "" && string(a.Status) != f.Status {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return page(result, f.Offset, f.Limit)
}

func (m *mockAssetRepo) Update(_ context.Context, a *model.Asset) error {
	cp := *a
	m.assets[a.ID] = &cp
	return nil
}

func (m *mockAssetRepo) ExistsByCode(_ context.Context, code string) (bool, error) {
	for _, a := range m.assets {
		if a.Code == code {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock DepreciationRepository ──

type mockDepreciationRepo struct {
	profiles map[string]*model.DepreciationProfile // key: assetID
	entries  map[string]*model.DepreciationEntry   // key: profileID|period
	assets   repository.AssetRepository
	seq      int
	// failProfile 命中的方案在 HasEntry 时返回错误，用于验证逐项隔离
	failProfile string
}

func newMockDepreciationRepo() *mockDepreciationRepo {
	return &mockDepreciationRepo{
		profiles: make(map[string]*model.DepreciationProfile),
		entries:  make(map[string]*model.DepreciationEntry),
	}
}

func entryKey(profileID, period string) string { return profileID + "|" + period }

func (m *mockDepreciationRepo) GetProfileByAsset(_ context.Context, assetID string) (*model.DepreciationProfile, error) {
	if p, ok := m.profiles[assetID]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepreciationRepo) SaveProfile(_ context.Context, p *model.DepreciationProfile) error {
	if existing, ok := m.profiles[p.AssetID]; ok {
		p.ID = existing.ID
	} else if p.ID == "" {
		m.seq++
		p.ID = fmt.Sprintf("profile-%d", m.seq)
	}
	cp := *p
	m.profiles[p.AssetID] = &cp
	return nil
}

func (m *mockDepreciationRepo) ListActiveProfiles(ctx context.Context) ([]model.DepreciationProfile, error) {
	result := make([]model.DepreciationProfile, 0)
	for _, p := range m.profiles {
		if !p.IsActive {
			continue
		}
		cp := *p
		if m.assets != nil {
			if a, err := m.assets.GetByID(ctx, p.AssetID); err == nil {
				cp.Asset = a
			}
		}
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockDepreciationRepo) LatestEntry(_ context.Context, profileID string) (*model.DepreciationEntry, error) {
	var latest *model.DepreciationEntry
	for _, e := range m.entries {
		if e.ProfileID == profileID && (latest == nil || e.Period > latest.Period) {
			latest = e
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (m *mockDepreciationRepo) HasEntry(_ context.Context, profileID string, period string) (bool, error) {
	if profileID == m.failProfile {
		return false, fmt.Errorf("模拟数据库错误")
	}
	_, ok := m.entries[entryKey(profileID, period)]
	return ok, nil
}

func (m *mockDepreciationRepo) CreateEntryIfAbsent(_ context.Context, e *model.DepreciationEntry) (bool, error) {
	key := entryKey(e.ProfileID, e.Period)
	if _, ok := m.entries[key]; ok {
		return false, nil
	}
	if e.ID == "" {
		m.seq++
		e.ID = fmt.Sprintf("dep-%d", m.seq)
	}
	cp := *e
	m.entries[key] = &cp
	return true, nil
}

func (m *mockDepreciationRepo) GetEntry(_ context.Context, assetID string, period string) (*model.DepreciationEntry, error) {
	for _, e := range m.entries {
		if e.AssetID == assetID && e.Period == period {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepreciationRepo) ListEntriesByAsset(_ context.Context, assetID string) ([]model.DepreciationEntry, error) {
	result := make([]model.DepreciationEntry, 0)
	for _, e := range m.entries {
		if e.AssetID == assetID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period < result[j].Period })
	return result, nil
}

func (m *mockDepreciationRepo) ListUnpostedByPeriod(_ context.Context, period string) ([]model.DepreciationEntry, error) {
	result := make([]model.DepreciationEntry, 0)
	for _, e := range m.entries {
		if e.Period == period && !e.IsPosted {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *mockDepreciationRepo) MarkPosted(_ context.Context, entryID string, actorID string, at time.Time) (bool, error) {
	for _, e := range m.entries {
		if e.ID != entryID {
			continue
		}
		if e.IsPosted {
			return false, nil
		}
		e.IsPosted = true
		e.PostedAt = &at
		e.PostedByID = &actorID
		return true, nil
	}
	return false, nil
}

// ── 辅助函数 ──

func page[T any](items []T, offset, limit int) ([]T, int64, error) {
	total := int64(len(items))
	if limit <= 0 {
		return items, total, nil
	}
	if offset >= len(items) {
		return []T{}, total, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end], total, nil
}

func strPtr(s string) *string { return &s }

func mustDate(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

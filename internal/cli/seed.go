package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"ops-panel/internal/model"
	"ops-panel/internal/repository"
)

var seedFilePath string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "从 YAML 导入基础资料、收费站路线与收费标准（单事务）",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(seedFilePath)
		if err != nil {
			return fmt.Errorf("打开种子文件失败: %w", err)
		}
		defer f.Close()

		seed, err := parseSeed(f)
		if err != nil {
			return err
		}

		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()

		summary, err := applySeed(context.Background(), repository.NewRepository(db), seed, cfg.Toll.Currency)
		if err != nil {
			return err
		}

		logger.Info("种子数据导入完成",
			zap.Int("created", summary.created),
			zap.Int("skipped", summary.skipped),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "新增 %d 条，已存在跳过 %d 条\n", summary.created, summary.skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFilePath, "file", "seed.yaml", "种子文件路径")
}

// ── 文件格式 ──

type seedFile struct {
	Actor string `yaml:"actor"`

	MaterialTypes      []seedMaterial  `yaml:"materialTypes"`
	ProductTypes       []seedProduct   `yaml:"productTypes"`
	PitLocations       []seedLocation  `yaml:"pitLocations"`
	StockpileLocations []seedLocation  `yaml:"stockpileLocations"`
	Crushers           []seedCrusher   `yaml:"crushers"`
	Trucks             []seedTruck     `yaml:"trucks"`
	Excavators         []seedExcavator `yaml:"excavators"`
	TollStations       []seedStation   `yaml:"tollStations"`
	TollRoutes         []seedRoute     `yaml:"tollRoutes"`
	TollRates          []seedRate      `yaml:"tollRates"`
}

type seedMaterial struct {
	Code    string `yaml:"code"`
	Name    string `yaml:"name"`
	Density string `yaml:"density"`
}

type seedProduct struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	SizeSpec string `yaml:"sizeSpec"`
}

type seedLocation struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type seedCrusher struct {
	Code          string `yaml:"code"`
	Name          string `yaml:"name"`
	RatedCapacity string `yaml:"ratedCapacity"`
}

type seedTruck struct {
	Code         string `yaml:"code"`
	Name         string `yaml:"name"`
	PlateNumber  string `yaml:"plateNumber"`
	VehicleType  string `yaml:"vehicleType"`
	LoadCapacity string `yaml:"loadCapacity"`
}

type seedExcavator struct {
	Code           string `yaml:"code"`
	Name           string `yaml:"name"`
	BucketCapacity string `yaml:"bucketCapacity"`
}

type seedStation struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

type seedRoute struct {
	Code     string   `yaml:"code"`
	Name     string   `yaml:"name"`
	Stations []string `yaml:"stations"` // 收费站编码，按通行顺序
}

type seedRate struct {
	Station       string `yaml:"station"`
	VehicleType   string `yaml:"vehicleType"`
	Amount        string `yaml:"amount"`
	Currency      string `yaml:"currency"`
	EffectiveFrom string `yaml:"effectiveFrom"`
	EffectiveTo   string `yaml:"effectiveTo"`
}

// parseSeed 解析并校验种子文件；路线与收费标准引用的收费站必须在同一文件中声明
func parseSeed(r io.Reader) (*seedFile, error) {
	var s seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("解析种子文件失败: %w", err)
	}

	if s.Actor == "" {
		return nil, fmt.Errorf("种子文件缺少 actor")
	}

	stations := make(map[string]bool, len(s.TollStations))
	for _, st := range s.TollStations {
		stations[st.Code] = true
	}
	for _, route := range s.TollRoutes {
		if len(route.Stations) == 0 {
			return nil, fmt.Errorf("路线 %s 未配置收费站", route.Code)
		}
		for _, code := range route.Stations {
			if !stations[code] {
				return nil, fmt.Errorf("路线 %s 引用了未声明的收费站 %s", route.Code, code)
			}
		}
	}
	for _, rate := range s.TollRates {
		if !stations[rate.Station] {
			return nil, fmt.Errorf("收费标准引用了未声明的收费站 %s", rate.Station)
		}
	}
	return &s, nil
}

type seedSummary struct {
	created int
	skipped int
}

// applySeed 在单个事务内写入种子数据，编码已存在的基础资料跳过
func applySeed(ctx context.Context, repo *repository.Repository, s *seedFile, defaultCurrency string) (seedSummary, error) {
	var sum seedSummary

	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		actor := &s.Actor
		base := func(code, name string) model.ReferenceBase {
			return model.ReferenceBase{
				Code:      code,
				Name:      name,
				IsActive:  true,
				BaseModel: model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
			}
		}

		for _, m := range s.MaterialTypes {
			density, err := nullDecimal(m.Density)
			if err != nil {
				return fmt.Errorf("物料 %s 密度无效: %w", m.Code, err)
			}
			if _, err := seedReference(ctx, tx.MaterialType, &model.MaterialType{ReferenceBase: base(m.Code, m.Name), Density: density}, &sum); err != nil {
				return err
			}
		}
		for _, m := range s.ProductTypes {
			if _, err := seedReference(ctx, tx.ProductType, &model.ProductType{ReferenceBase: base(m.Code, m.Name), SizeSpec: m.SizeSpec}, &sum); err != nil {
				return err
			}
		}
		for _, m := range s.PitLocations {
			if _, err := seedReference(ctx, tx.PitLocation, &model.PitLocation{ReferenceBase: base(m.Code, m.Name), Description: m.Description}, &sum); err != nil {
				return err
			}
		}
		for _, m := range s.StockpileLocations {
			if _, err := seedReference(ctx, tx.StockpileLocation, &model.StockpileLocation{ReferenceBase: base(m.Code, m.Name), Description: m.Description}, &sum); err != nil {
				return err
			}
		}
		for _, m := range s.Crushers {
			capacity, err := nullDecimal(m.RatedCapacity)
			if err != nil {
				return fmt.Errorf("破碎机 %s 额定产能无效: %w", m.Code, err)
			}
			if _, err := seedReference(ctx, tx.Crusher, &model.Crusher{ReferenceBase: base(m.Code, m.Name), RatedCapacity: capacity}, &sum); err != nil {
				return err
			}
		}
		for _, m := range s.Trucks {
			capacity, err := decimal.NewFromString(m.LoadCapacity)
			if err != nil {
				return fmt.Errorf("车辆 %s 载重无效: %w", m.Code, err)
			}
			truck := &model.Truck{
				ReferenceBase: base(m.Code, m.Name),
				PlateNumber:   m.PlateNumber,
				VehicleType:   m.VehicleType,
				LoadCapacity:  capacity,
			}
			if _, err := seedReference(ctx, tx.Truck, truck, &sum); err != nil {
				return err
			}
		}
		for _, m := range s.Excavators {
			capacity, err := decimal.NewFromString(m.BucketCapacity)
			if err != nil {
				return fmt.Errorf("挖掘机 %s 斗容无效: %w", m.Code, err)
			}
			if _, err := seedReference(ctx, tx.Excavator, &model.Excavator{ReferenceBase: base(m.Code, m.Name), BucketCapacity: capacity}, &sum); err != nil {
				return err
			}
		}

		stationIDs := make(map[string]string, len(s.TollStations))
		for _, st := range s.TollStations {
			station, err := seedReference(ctx, tx.TollStation, &model.TollStation{ReferenceBase: base(st.Code, st.Name)}, &sum)
			if err != nil {
				return err
			}
			stationIDs[st.Code] = station.ID
		}

		routes, err := tx.TollConfig.ListRoutes(ctx, true)
		if err != nil {
			return err
		}
		existingRoutes := make(map[string]bool, len(routes))
		for _, r := range routes {
			existingRoutes[r.Code] = true
		}

		for _, r := range s.TollRoutes {
			if existingRoutes[r.Code] {
				sum.skipped++
				continue
			}
			route := &model.TollRoute{
				Code:      r.Code,
				Name:      r.Name,
				IsActive:  true,
				BaseModel: model.BaseModel{CreatedBy: actor, UpdatedBy: actor},
			}
			for i, code := range r.Stations {
				route.Stations = append(route.Stations, model.RouteStation{StationID: stationIDs[code], Sequence: i + 1})
			}
			if err := tx.TollConfig.CreateRoute(ctx, route); err != nil {
				return fmt.Errorf("创建路线 %s 失败: %w", r.Code, err)
			}
			sum.created++
		}

		for _, r := range s.TollRates {
			rate, err := buildSeedRate(r, defaultCurrency)
			if err != nil {
				return fmt.Errorf("收费站 %s 收费标准无效: %w", r.Station, err)
			}
			rate.StationID = stationIDs[r.Station]
			rate.CreatedBy, rate.UpdatedBy = actor, actor

			// 同站同车型生效区间已有收费标准时视为已导入
			overlapping, err := tx.TollConfig.ListRates(ctx, repository.TollRateFilter{
				StationIDs:  []string{rate.StationID},
				VehicleType: rate.VehicleType,
				From:        &rate.EffectiveFrom,
				To:          rate.EffectiveTo,
				ActiveOnly:  true,
			})
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				sum.skipped++
				continue
			}
			if err := tx.TollConfig.CreateRate(ctx, rate); err != nil {
				return fmt.Errorf("创建收费标准失败: %w", err)
			}
			sum.created++
		}
		return nil
	})
	if err != nil {
		return seedSummary{}, err
	}
	return sum, nil
}

type refPtr[T any] interface {
	*T
	Ref() *model.ReferenceBase
}

// seedReference 编码已存在时返回现有记录
func seedReference[T any, P refPtr[T]](ctx context.Context, repo repository.ReferenceRepository[T], m P, sum *seedSummary) (P, error) {
	ref := m.Ref()

	existing, _, err := repo.List(ctx, repository.ReferenceFilter{Search: ref.Code, IncludeInactive: true, Limit: 100})
	if err != nil {
		return nil, err
	}
	for i := range existing {
		if P(&existing[i]).Ref().Code == ref.Code {
			sum.skipped++
			return P(&existing[i]), nil
		}
	}

	if err := repo.Create(ctx, (*T)(m)); err != nil {
		return nil, fmt.Errorf("创建 %s 失败: %w", ref.Code, err)
	}
	sum.created++
	return m, nil
}

func buildSeedRate(r seedRate, defaultCurrency string) (*model.TollRate, error) {
	amt, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, err
	}
	start, err := model.ParseDate(r.EffectiveFrom)
	if err != nil {
		return nil, err
	}

	rate := &model.TollRate{
		VehicleType:   strings.ToUpper(r.VehicleType),
		Amount:        amt,
		Currency:      r.Currency,
		EffectiveFrom: start,
		IsActive:      true,
	}
	if rate.Currency == "" {
		rate.Currency = defaultCurrency
	}
	if r.EffectiveTo != "" {
		end, err := model.ParseDate(r.EffectiveTo)
		if err != nil {
			return nil, err
		}
		if end.Before(start.Time) {
			return nil, fmt.Errorf("结束日期早于开始日期")
		}
		rate.EffectiveTo = &end
	}
	return rate, nil
}

func nullDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

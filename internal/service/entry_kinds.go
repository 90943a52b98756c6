package service

import (
	"context"

	"go.uber.org/zap"

	"ops-panel/internal/model"
	"ops-panel/internal/repository"
)

// 四类产量记录共用 entryWorkflow，各自只提供引用校验与派生量计算

// NewExcavatorEntryService 挖掘机记录：体积 = 斗数 × 斗容，吨位 = 体积 × 物料密度
func NewExcavatorEntryService(repo *repository.Repository, logger *zap.Logger) EntryService[model.ExcavatorEntry] {
	derive := func(ctx context.Context, e *model.ExcavatorEntry) error {
		excavator, err := activeRef(ctx, repo.Excavator, e.ExcavatorID, "挖掘机")
		if err != nil {
			return err
		}
		material, err := activeRef(ctx, repo.MaterialType, e.MaterialTypeID, "物料类型")
		if err != nil {
			return err
		}
		if err := optionalRef(ctx, repo.PitLocation, e.PitLocationID, "采场"); err != nil {
			return err
		}

		e.EstimatedVolume, e.EstimatedTonnage = EstimateExcavation(e.BucketCount, excavator.BucketCapacity, material.Density)
		return nil
	}
	return newEntryWorkflow("excavator", repo.ExcavatorEntry, derive, logger)
}

// NewHaulingEntryService 运输记录：运输量 = 趟数 × 车辆载重
func NewHaulingEntryService(repo *repository.Repository, logger *zap.Logger) EntryService[model.HaulingEntry] {
	derive := func(ctx context.Context, e *model.HaulingEntry) error {
		truck, err := activeRef(ctx, repo.Truck, e.TruckID, "车辆")
		if err != nil {
			return err
		}
		if _, err := activeRef(ctx, repo.MaterialType, e.MaterialTypeID, "物料类型"); err != nil {
			return err
		}
		if err := optionalRef(ctx, repo.Excavator, e.ExcavatorID, "挖掘机"); err != nil {
			return err
		}
		if err := optionalRef(ctx, repo.PitLocation, e.PitLocationID, "采场"); err != nil {
			return err
		}
		if err := optionalRef(ctx, repo.StockpileLocation, e.StockpileLocationID, "料场"); err != nil {
			return err
		}

		e.TotalHauled = TotalHauled(e.TripCount, truck.LoadCapacity)
		return nil
	}
	return newEntryWorkflow("hauling", repo.HaulingEntry, derive, logger)
}

// NewCrusherFeedEntryService 进料记录：速率 = 地磅吨位 / 进料小时数
func NewCrusherFeedEntryService(repo *repository.Repository, logger *zap.Logger) EntryService[model.CrusherFeedEntry] {
	derive := func(ctx context.Context, e *model.CrusherFeedEntry) error {
		if _, err := activeRef(ctx, repo.Crusher, e.CrusherID, "破碎机"); err != nil {
			return err
		}
		if _, err := activeRef(ctx, repo.MaterialType, e.MaterialTypeID, "物料类型"); err != nil {
			return err
		}
		if err := optionalRef(ctx, repo.StockpileLocation, e.StockpileLocationID, "料场"); err != nil {
			return err
		}

		e.FeedRate = FeedRate(e.WeighBridgeTonnage, e.FeedStartTime, e.FeedEndTime)
		return nil
	}
	return newEntryWorkflow("crusher_feed", repository.EntryRepository[model.CrusherFeedEntry](repo.CrusherFeedEntry), derive, logger)
}

// NewCrusherOutputEntryService 产出记录：产出率 = 产出 / 同破碎机同日同班次已审批进料 × 100
func NewCrusherOutputEntryService(repo *repository.Repository, logger *zap.Logger) EntryService[model.CrusherOutputEntry] {
	derive := func(ctx context.Context, e *model.CrusherOutputEntry) error {
		if _, err := activeRef(ctx, repo.Crusher, e.CrusherID, "破碎机"); err != nil {
			return err
		}
		if _, err := activeRef(ctx, repo.ProductType, e.ProductTypeID, "成品类型"); err != nil {
			return err
		}
		if err := optionalRef(ctx, repo.StockpileLocation, e.StockpileLocationID, "料场"); err != nil {
			return err
		}

		fed, count, err := repo.CrusherFeedEntry.SumApprovedTonnage(ctx, e.CrusherID, e.Date, e.Shift)
		if err != nil {
			logger.Error("汇总已审批进料失败", zap.String("crusher_id", e.CrusherID), zap.Error(err))
			return err
		}
		e.YieldPercentage = YieldPercentage(e.OutputTonnage, fed, count)
		return nil
	}
	return newEntryWorkflow("crusher_output", repo.CrusherOutputEntry, derive, logger)
}

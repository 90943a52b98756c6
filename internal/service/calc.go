package service

import (
	"time"

	"github.com/shopspring/decimal"

	"ops-panel/internal/model"
)

// ── 派生量计算 ──
//
// 纯函数，分母缺失或为零时返回无效值（null），不会产生 NaN。
// 体积/吨位保留 3 位小数，进料速率 4 位，产出率 2 位，金额 2 位。

var (
	hundred   = decimal.NewFromInt(100)
	hourNanos = decimal.NewFromInt(int64(time.Hour))
)

// EstimateExcavation 挖掘量：体积 = 斗数 × 斗容，吨位 = 体积 × 物料密度（无密度时吨位为 null）
func EstimateExcavation(bucketCount int, bucketCapacity decimal.Decimal, density decimal.NullDecimal) (volume, tonnage decimal.NullDecimal) {
	v := decimal.NewFromInt(int64(bucketCount)).Mul(bucketCapacity)
	volume = decimal.NewNullDecimal(v.Round(3))
	if density.Valid {
		tonnage = decimal.NewNullDecimal(v.Mul(density.Decimal).Round(3))
	}
	return volume, tonnage
}

// TotalHauled 运输量 = 趟数 × 车辆核定载重
func TotalHauled(tripCount int, loadCapacity decimal.Decimal) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(int64(tripCount)).Mul(loadCapacity).Round(3))
}

// FeedRate 进料速率（t/h）= 地磅吨位 / 进料时长；时长不为正时为 null
func FeedRate(tonnage decimal.Decimal, start, end time.Time) decimal.NullDecimal {
	d := end.Sub(start)
	if d <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(tonnage.Mul(hourNanos).Div(decimal.NewFromInt(int64(d))).Round(4))
}

// YieldPercentage 产出率 = 产出吨位 / 同破碎机同日同班次已审批进料总吨位 × 100
// 无匹配进料或总量为零时为 null
func YieldPercentage(output, approvedFeed decimal.Decimal, feedCount int64) decimal.NullDecimal {
	if feedCount == 0 || approvedFeed.IsZero() {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(output.Mul(hundred).Div(approvedFeed).Round(2))
}

// ── 折旧 ──

// MonthlyDepreciation 计算一期折旧额
//   - 直线法：(原值 − 残值) / 使用月数
//   - 双倍余额递减法：期初账面价值 × 2 / 使用月数
//
// 计提后账面价值不得低于残值；已折旧至残值时返回 0
func MonthlyDepreciation(method model.DepreciationMethod, cost, salvage decimal.Decimal, lifeMonths int, bookValue decimal.Decimal) decimal.Decimal {
	remaining := bookValue.Sub(salvage)
	if !remaining.IsPositive() || lifeMonths <= 0 {
		return decimal.Zero
	}

	months := decimal.NewFromInt(int64(lifeMonths))
	var amount decimal.Decimal
	switch method {
	case model.DecliningBalance:
		amount = bookValue.Mul(decimal.NewFromInt(2)).Div(months)
	default:
		amount = cost.Sub(salvage).Div(months)
	}
	amount = amount.Round(2)

	if amount.GreaterThan(remaining) {
		amount = remaining
	}
	return amount
}

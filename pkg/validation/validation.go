package validation

import (
	"fmt"
	"reflect"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"ops-panel/internal/model"
)

// Register 将自定义规则挂到 gin 的默认校验器上，需在路由注册前调用
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验引擎不是 validator/v10")
	}
	return Setup(v)
}

// Setup 注册值类型适配与自定义规则
func Setup(v *validator.Validate) error {
	registerValueTypes(v)

	rules := map[string]validator.Func{
		"period":  isPeriod,
		"isodate": isISODate,
		"shift":   isShift,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验规则 %s 失败: %w", tag, err)
		}
	}
	return nil
}

// registerValueTypes 让 gte/lte/required 等内置规则能作用于 decimal 与 model.Date
func registerValueTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		d := field.Interface().(decimal.Decimal)
		f, _ := d.Float64()
		return f
	}, decimal.Decimal{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		nd := field.Interface().(decimal.NullDecimal)
		if !nd.Valid {
			return nil
		}
		f, _ := nd.Decimal.Float64()
		return f
	}, decimal.NullDecimal{})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		d := field.Interface().(model.Date)
		if d.IsZero() {
			return nil
		}
		return d.Time
	}, model.Date{})
}

// isPeriod 会计期间，格式 YYYY-MM
func isPeriod(fl validator.FieldLevel) bool {
	_, err := model.ParsePeriod(fl.Field().String())
	return err == nil
}

// isISODate 日期字符串，格式 YYYY-MM-DD
func isISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse(model.DateLayout, fl.Field().String())
	return err == nil
}

func isShift(fl validator.FieldLevel) bool {
	switch model.Shift(fl.Field().String()) {
	case model.ShiftDay, model.ShiftNight:
		return true
	}
	return false
}

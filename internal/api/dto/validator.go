package dto

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// error messages name the json field, not the Go field
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})

	// money 對應 NUMERIC(12,2), 超過兩位小數會被資料庫默默四捨五入
	if err := v.RegisterValidation("money", validateMoney); err != nil {
		panic(err)
	}

	return v
}

// maxMoney is the first value NUMERIC(12,2) can no longer hold.
const maxMoney = 1e10

// validateMoney runs on the float64 the decimal custom type func yields. The
// shortest float repr is exact for the digits NUMERIC(12,2) can store.
func validateMoney(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Float64 {
		return false
	}
	f := field.Float()
	if f >= maxMoney || f <= -maxMoney {
		return false
	}
	return decimal.NewFromFloat(f).Exponent() >= -2
}

// Validate checks the struct tags of req and returns a message naming the
// first offending field.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
		return &FieldError{Field: errs[0].Namespace(), Tag: errs[0].Tag(), Param: errs[0].Param()}
	}
	return err
}

type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e *FieldError) Error() string {
	if e.Param != "" {
		return e.Field + " failed on " + e.Tag + "=" + e.Param
	}
	return e.Field + " failed on " + e.Tag
}

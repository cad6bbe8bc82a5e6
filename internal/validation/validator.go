package validation

import (
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// New returns a validator that understands decimal.Decimal fields, so money
// can be checked with the numeric tags (gt, lte, ...).
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// report json field names instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	return v
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

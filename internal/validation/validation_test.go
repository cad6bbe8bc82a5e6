package validation

import (
	"testing"

	"github.com/shopspring/decimal"
)

type priced struct {
	Quantity  int             `json:"quantity" validate:"required,gte=1"`
	UnitPrice decimal.Decimal `json:"unitPrice" validate:"gt=0,lte=99999999.99"`
}

func TestDecimalFieldsUseNumericTags(t *testing.T) {
	v := New()

	cases := map[string]struct {
		in      priced
		wantErr bool
	}{
		"valid":            {priced{Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")}, false},
		"upper bound":      {priced{Quantity: 1, UnitPrice: decimal.RequireFromString("99999999.99")}, false},
		"zero price":       {priced{Quantity: 1, UnitPrice: decimal.Zero}, true},
		"negative price":   {priced{Quantity: 1, UnitPrice: decimal.RequireFromString("-1")}, true},
		"over upper bound": {priced{Quantity: 1, UnitPrice: decimal.RequireFromString("100000000")}, true},
		"zero quantity":    {priced{Quantity: 0, UnitPrice: decimal.RequireFromString("1")}, true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := v.Struct(tc.in)
			if tc.wantErr && err == nil {
				t.Fatalf("expected validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestErrorsUseJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Struct(priced{Quantity: 0, UnitPrice: decimal.RequireFromString("5")})
	if err == nil {
		t.Fatal("expected error")
	}
	m := errorsToMap(err)
	if _, ok := m["quantity"]; !ok {
		t.Fatalf("expected json field name in errors, got %v", m)
	}
}

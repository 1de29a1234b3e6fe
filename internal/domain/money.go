package domain

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrInvalidMoney = errors.New("invalid monetary value")

// ParseMoney coerces loosely typed catalog values into a decimal amount.
// Only numbers and numeric strings are accepted; negative amounts are rejected.
func ParseMoney(v any) (decimal.Decimal, error) {
	var (
		d   decimal.Decimal
		err error
	)

	switch val := v.(type) {
	case nil:
		return decimal.Zero, nil
	case decimal.Decimal:
		d = val
	case float64:
		d = decimal.NewFromFloat(val)
	case float32:
		d = decimal.NewFromFloat32(val)
	case int:
		d = decimal.NewFromInt(int64(val))
	case int32:
		d = decimal.NewFromInt32(val)
	case int64:
		d = decimal.NewFromInt(val)
	case json.Number:
		d, err = decimal.NewFromString(val.String())
	case string:
		d, err = decimal.NewFromString(val)
	default:
		return decimal.Zero, fmt.Errorf("%w: unsupported type %T", ErrInvalidMoney, v)
	}

	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidMoney, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %s", ErrInvalidMoney, d)
	}
	return d, nil
}

// Package pricing derives assignment totals from a base price and add-ons.
package pricing

import (
	"errors"
	"math"

	catalogdomain "github.com/smallbiznis/quotation/internal/catalog/domain"
)

var ErrInvalidPrice = errors.New("invalid_price")

// Total returns base plus the price of every add-on. No rounding is applied.
func Total(base float64, addOns []catalogdomain.AddOn) float64 {
	total := base
	for _, addOn := range addOns {
		total += addOn.Price
	}
	return total
}

// ValidatePrice rejects negative and non-finite prices.
func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return ErrInvalidPrice
	}
	return nil
}

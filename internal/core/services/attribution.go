package services

import (
	"strconv"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// AssignWeights sets every line item's weight to 1/n, where n is the number
// of line items sharing its vehicle plate across all orders. Orders without
// a plate form a group of their own.
func AssignWeights(orders []domain.Order) {
	counts := make(map[string]int)
	keys := make([]string, len(orders))
	for i := range orders {
		keys[i] = weightKey(&orders[i])
		counts[keys[i]] += len(orders[i].LineItems)
	}

	for i := range orders {
		n := counts[keys[i]]
		if n == 0 {
			continue
		}
		w := 1 / float64(n)
		for j := range orders[i].LineItems {
			orders[i].LineItems[j].Weight = w
		}
	}
}

func weightKey(o *domain.Order) string {
	if key := o.PlateKey(); key != "" {
		return "plate:" + key
	}
	return "order:" + o.Environment + ":" + strconv.Itoa(o.Number)
}

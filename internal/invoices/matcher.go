package invoices

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rgastelum/supplyline-backend/pkg/db/models"
	"github.com/rgastelum/supplyline-backend/pkg/enums"
)

// matchEpsilon absorbs scale noise when comparing invoiced against received
// quantities (0.001, the smallest representable stock step).
var matchEpsilon = decimal.New(1, -3)

// ProductResolver maps a raw invoice product name to a catalog product.
// Implementations return nil without error when nothing matches.
type ProductResolver interface {
	Resolve(ctx context.Context, name string) (*models.Product, error)
}

// nameResolver resolves against the full catalog: exact name first, then
// aliases, then substring containment in either direction.
type nameResolver struct {
	products []models.Product
}

// NewNameResolver builds the default resolver over a catalog snapshot.
func NewNameResolver(products []models.Product) ProductResolver {
	return &nameResolver{products: products}
}

func (r *nameResolver) Resolve(_ context.Context, name string) (*models.Product, error) {
	needle := normalizeName(name)
	if needle == "" {
		return nil, nil
	}

	for i := range r.products {
		if normalizeName(r.products[i].Name) == needle {
			return &r.products[i], nil
		}
	}
	for i := range r.products {
		for _, alias := range r.products[i].Aliases {
			if normalizeName(alias) == needle {
				return &r.products[i], nil
			}
		}
	}
	for i := range r.products {
		candidate := normalizeName(r.products[i].Name)
		if strings.Contains(candidate, needle) || strings.Contains(needle, candidate) {
			return &r.products[i], nil
		}
	}
	return nil, nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// classify assigns the match status for one invoice line given the resolved
// product and the received totals for the window. A line stays unmatched both
// when the name fails to resolve and when the resolved product saw no
// deliveries in the period.
func classify(product *models.Product, invoiced decimal.Decimal, received map[uuid.UUID]ReceivedQuantity) (enums.MatchStatus, *decimal.Decimal) {
	if product == nil {
		return enums.MatchStatusUnmatched, nil
	}
	got, ok := received[product.ID]
	if !ok {
		return enums.MatchStatusUnmatched, nil
	}
	if got.Quantity.Sub(invoiced).Abs().LessThanOrEqual(matchEpsilon) {
		return enums.MatchStatusAutoConfirmed, &got.Quantity
	}
	qty := got.Quantity
	return enums.MatchStatusNeedReview, &qty
}

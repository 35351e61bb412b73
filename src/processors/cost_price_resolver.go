package processors

import (
	"github.com/username/sellerledger/backend/src/models"
)

// CostPriceResolution is the effective cost price of a SKU and where it came from.
type CostPriceResolution struct {
	CostPrice float64                `json:"cost_price"`
	Source    models.CostPriceSource `json:"source"`
}

// CostPriceResolver applies the product -> category -> default table
// precedence. It is built once per analysis run from store snapshots.
type CostPriceResolver struct {
	products   map[string]models.Product
	categories map[string]models.Category
	defaults   DefaultPriceTable
}

func NewCostPriceResolver(products []models.Product, categories []models.Category, defaults DefaultPriceTable) *CostPriceResolver {
	r := &CostPriceResolver{
		products:   make(map[string]models.Product, len(products)),
		categories: make(map[string]models.Category, len(categories)),
		defaults:   defaults,
	}
	for _, p := range products {
		r.products[p.SKU] = p
	}
	for _, c := range categories {
		r.categories[c.ID] = c
	}
	return r
}

// Resolve returns the cost price for sku. An unknown SKU resolves to 0 with
// source "default".
func (r *CostPriceResolver) Resolve(sku string) CostPriceResolution {
	if p, ok := r.products[sku]; ok {
		if p.CustomCostPrice != nil {
			return CostPriceResolution{CostPrice: *p.CustomCostPrice, Source: models.CostSourceProduct}
		}
		if p.CategoryID != nil {
			if c, ok := r.categories[*p.CategoryID]; ok && c.CostPrice != nil {
				return CostPriceResolution{CostPrice: *c.CostPrice, Source: models.CostSourceCategory}
			}
		}
	}
	if price, ok := r.defaults.Lookup(sku); ok {
		return CostPriceResolution{CostPrice: price, Source: models.CostSourceDefault}
	}
	return CostPriceResolution{CostPrice: 0, Source: models.CostSourceDefault}
}

// ResolveAll resolves each distinct SKU once and tallies the sources used.
func ResolveAll(lookup CostPriceLookup, skus []string) (map[string]CostPriceResolution, models.CostPriceSources) {
	resolved := make(map[string]CostPriceResolution, len(skus))
	var tally models.CostPriceSources
	for _, sku := range skus {
		if _, done := resolved[sku]; done {
			continue
		}
		res := lookup.Resolve(sku)
		resolved[sku] = res
		switch res.Source {
		case models.CostSourceProduct:
			tally.Product++
		case models.CostSourceCategory:
			tally.Category++
		default:
			tally.Default++
		}
	}
	return resolved, tally
}

package processors

import "context"

// HashLookup reports which of the given hashes are already persisted.
// Callers never pass more than HashLookupChunkSize hashes at once.
type HashLookup interface {
	ExistingHashes(ctx context.Context, hashes []string) ([]string, error)
}

// HashLookupFunc adapts a function to HashLookup.
type HashLookupFunc func(ctx context.Context, hashes []string) ([]string, error)

func (f HashLookupFunc) ExistingHashes(ctx context.Context, hashes []string) ([]string, error) {
	return f(ctx, hashes)
}

// CostPriceLookup resolves a SKU to its effective cost price.
type CostPriceLookup interface {
	Resolve(sku string) CostPriceResolution
}

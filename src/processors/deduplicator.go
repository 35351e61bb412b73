package processors

import (
	"context"

	"github.com/username/sellerledger/backend/src/logger"
	"github.com/username/sellerledger/backend/src/models"
)

// HashLookupChunkSize caps the number of hashes sent in one existence query.
const HashLookupChunkSize = 10

type Deduplicator struct {
	chunkSize int
}

func NewDeduplicator() *Deduplicator {
	return &Deduplicator{chunkSize: HashLookupChunkSize}
}

// FilterNew drops duplicates inside the batch (first occurrence wins) and
// then every transaction whose hash the lookup already knows. It returns the
// strictly new transactions and how many were dropped. Lookup errors are
// returned unchanged.
func (d *Deduplicator) FilterNew(ctx context.Context, txs []models.Transaction, lookup HashLookup) ([]models.Transaction, int, error) {
	seen := make(map[string]bool, len(txs))
	unique := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if seen[tx.Hash] {
			continue
		}
		seen[tx.Hash] = true
		unique = append(unique, tx)
	}

	hashes := make([]string, len(unique))
	for i, tx := range unique {
		hashes[i] = tx.Hash
	}

	existing := make(map[string]bool)
	for start := 0; start < len(hashes); start += d.chunkSize {
		end := start + d.chunkSize
		if end > len(hashes) {
			end = len(hashes)
		}
		found, err := lookup.ExistingHashes(ctx, hashes[start:end])
		if err != nil {
			return nil, 0, err
		}
		for _, h := range found {
			existing[h] = true
		}
	}

	fresh := make([]models.Transaction, 0, len(unique))
	for _, tx := range unique {
		if !existing[tx.Hash] {
			fresh = append(fresh, tx)
		}
	}

	dropped := len(txs) - len(fresh)
	logger.FromContext(ctx).Debug("Deduplication complete",
		"incoming", len(txs), "inBatchDuplicates", len(txs)-len(unique), "alreadyStored", len(existing), "new", len(fresh))
	return fresh, dropped, nil
}

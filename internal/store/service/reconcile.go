package service

import (
	"context"

	"github.com/storehub/storehub/internal/store/repo"
)

// productsToAttach merges the two ways a request can specify products — a
// flat id list (stock 0) and explicit {id, stock} entries — into one
// deduplicated attachment plan. Ids that do not resolve to an existing
// product are dropped silently; duplicate ids accumulate stock.
func (s *Service) productsToAttach(ctx context.Context, productIDs []int64, productsData []ProductEntryDto) ([]repo.ProductAttachment, error) {
	validatedIDs, err := s.validatedProductIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	fromIDs := mapIDsToAttachments(validatedIDs)

	validatedData, err := s.validatedProductsData(ctx, productsData)
	if err != nil {
		return nil, err
	}
	mergedData := mergeByProductID(validatedData)

	return mergeByProductID(append(fromIDs, mergedData...)), nil
}

// validatedProductIDs keeps only ids that resolve to an existing product.
func (s *Service) validatedProductIDs(ctx context.Context, productIDs []int64) ([]int64, error) {
	validated := make([]int64, 0, len(productIDs))
	for _, id := range productIDs {
		exists, err := s.products.Exists(ctx, id)
		if err != nil {
			return nil, err
		}
		if exists {
			validated = append(validated, id)
		}
	}
	return validated, nil
}

// validatedProductsData normalizes {id, stock} entries: a missing id reads as
// zero and is dropped, a missing stock reads as zero.
func (s *Service) validatedProductsData(ctx context.Context, productsData []ProductEntryDto) ([]repo.ProductAttachment, error) {
	validated := make([]repo.ProductAttachment, 0, len(productsData))
	for _, entry := range productsData {
		if entry.ID <= 0 {
			continue
		}
		exists, err := s.products.Exists(ctx, entry.ID)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		var stock int32
		if entry.Stock != nil {
			stock = *entry.Stock
		}
		validated = append(validated, repo.ProductAttachment{ProductID: entry.ID, Stock: stock})
	}
	return validated, nil
}

// mapIDsToAttachments turns validated ids into zero-stock plan entries.
func mapIDsToAttachments(productIDs []int64) []repo.ProductAttachment {
	attachments := make([]repo.ProductAttachment, len(productIDs))
	for i, id := range productIDs {
		attachments[i] = repo.ProductAttachment{ProductID: id}
	}
	return attachments
}

// mergeByProductID folds duplicate ids into one entry, summing stock. The
// first occurrence keeps its position; stock accumulates regardless of order.
func mergeByProductID(entries []repo.ProductAttachment) []repo.ProductAttachment {
	merged := make([]repo.ProductAttachment, 0, len(entries))
	index := make(map[int64]int, len(entries))
	for _, entry := range entries {
		if i, seen := index[entry.ProductID]; seen {
			merged[i].Stock += entry.Stock
			continue
		}
		index[entry.ProductID] = len(merged)
		merged = append(merged, entry)
	}
	return merged
}

package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/rickgao/idleclans-market/internal/model"
)

var errNotArray = errors.New("body is not a JSON array")

// GetLatestPrices fetches the latest price summary for every listed item.
//
// Errors are *NetworkError for transport or status failures and
// *MalformedResponseError when the body is not a JSON array of records.
func (c *Client) GetLatestPrices(ctx context.Context) ([]model.PriceRecord, error) {
	var resp []APIPriceRecord
	if err := c.get(ctx, PricesPath, nil, &resp); err != nil {
		return nil, fmt.Errorf("get latest prices: %w", err)
	}
	// A JSON null decodes without error but is not a price list.
	if resp == nil {
		return nil, fmt.Errorf("get latest prices: %w", &MalformedResponseError{Body: []byte("null"), Err: errNotArray})
	}

	records, skipped := ToModelRecords(resp)
	if skipped > 0 {
		c.logger.Debug("skipped invalid price records", "count", skipped)
	}

	return records, nil
}

package api

// PricesPath is the latest-prices endpoint relative to the API base URL.
const PricesPath = "/PlayerMarket/items/prices/latest"

// APIPriceRecord is one element of the GET /PlayerMarket/items/prices/latest array.
// Every price field may be null when the market has no order on that side.
type APIPriceRecord struct {
	ItemID             int      `json:"itemId"`
	LowestSellPrice    *float64 `json:"lowestSellPrice"`
	LowestPriceVolume  *int64   `json:"lowestPriceVolume"`
	HighestBuyPrice    *float64 `json:"highestBuyPrice"`
	HighestPriceVolume *int64   `json:"highestPriceVolume"`
}

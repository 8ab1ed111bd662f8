package order

// QueryOrdersModel represents filter parameters for querying orders.
// Results are always ordered by creation time, newest first.
type QueryOrdersModel struct {
	Ids           []int64 `json:"ids,omitempty"`
	CustomerEmail string  `json:"customerEmail,omitempty"`
	Limit         int     `json:"limit,omitempty"`
	Offset        int     `json:"offset,omitempty"`
}

package broker

import (
	"context"
	"net/http"
)

// fundLimitResponse carries the account balance. The provider has served the
// misspelt key historically, both spellings are accepted.
type fundLimitResponse struct {
	AvailableBalance *float64 `json:"availableBalance"`
	AvailabelBalance *float64 `json:"availabelBalance"`
}

// AvailableBalance returns the available trading balance of the account
func (c *Client) AvailableBalance(ctx context.Context) (float64, error) {
	if c == nil {
		return 0, ErrNotConfigured
	}

	var resp fundLimitResponse
	if err := c.doJSON(ctx, http.MethodGet, "/fundlimit", nil, &resp); err != nil {
		return 0, err
	}
	if resp.AvailableBalance != nil {
		return *resp.AvailableBalance, nil
	}
	if resp.AvailabelBalance != nil {
		return *resp.AvailabelBalance, nil
	}
	return 0, nil
}

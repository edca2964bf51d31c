package smartlead

import (
	"context"
	"fmt"
)

// FetchAll pages through the listing with offset += pageSize until a page comes
// back short or empty. Pages are requested strictly one after another with a
// fixed pacing delay in between.
func (c *Client) FetchAll(ctx context.Context, h AuthHeader, filter Filter, pageSize int) ([]RawAccount, error) {
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	var out []RawAccount
	offset := 0
	for {
		page, err := c.FetchPage(ctx, h, filter, offset, pageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Accounts...)
		c.logger.Info("fetched accounts", "count", len(page.Accounts), "offset", offset, "filter", filter)

		if len(page.Accounts) < pageSize {
			break
		}
		offset += pageSize

		if err := c.sleep(ctx, c.pageDelay); err != nil {
			return nil, fmt.Errorf("pacing before offset %d: %w", offset, err)
		}
	}

	return out, nil
}

// Stream pages through the listing with offset += records returned, handing each
// page to fn, until an empty page is returned. It returns the number of records seen.
func (c *Client) Stream(ctx context.Context, h AuthHeader, filter Filter, pageSize int, fn func([]RawAccount) error) (int, error) {
	if pageSize <= 0 {
		return 0, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	total := 0
	offset := 0
	for {
		page, err := c.FetchPage(ctx, h, filter, offset, pageSize)
		if err != nil {
			return total, err
		}
		if len(page.Accounts) == 0 {
			c.logger.Info("no more accounts, stopping", "offset", offset)
			return total, nil
		}
		c.logger.Info("fetched accounts", "count", len(page.Accounts), "offset", offset, "filter", filter)

		if err := fn(page.Accounts); err != nil {
			return total, err
		}
		total += len(page.Accounts)
		offset += len(page.Accounts)

		if err := c.sleep(ctx, c.pageDelay); err != nil {
			return total, fmt.Errorf("pacing before offset %d: %w", offset, err)
		}
	}
}

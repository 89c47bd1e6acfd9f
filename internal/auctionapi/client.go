package auctionapi

import (
	"context"
	"fmt"
	"time"

	"github.com/nonncal/ono-tebe-nado/internal/model"
	"resty.dev/v3"
)

// Client talks to the upstream auction API that owns the lot records.
// Image references come back relative, so they are prefixed with the CDN
// base URL before anything downstream sees them.
type Client struct {
	http   *resty.Client
	cdnURL string
}

func New(apiURL, cdnURL string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(apiURL).
			SetTimeout(10 * time.Second),
		cdnURL: cdnURL,
	}
}

func (c *Client) Close() error {
	return c.http.Close()
}

// ListLots fetches the full catalog.
func (c *Client) ListLots(ctx context.Context) ([]model.Lot, error) {
	var list model.LotList

	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&list).
		Get("/lot")
	if err != nil {
		return nil, fmt.Errorf("auction api: list lots: %w", err)
	}
	if res.IsError() {
		return nil, fmt.Errorf("auction api: list lots: %s", res.Status())
	}

	items := make([]model.Lot, len(list.Items))
	for i, item := range list.Items {
		item.Image = c.cdnURL + item.Image
		items[i] = item
	}
	return items, nil
}

// GetLot fetches the detail record for one lot.
func (c *Client) GetLot(ctx context.Context, id string) (model.LotDetail, error) {
	var detail model.LotDetail

	res, err := c.http.R().
		SetContext(ctx).
		SetResult(&detail).
		SetPathParam("lotId", id).
		Get("/lot/{lotId}")
	if err != nil {
		return model.LotDetail{}, fmt.Errorf("auction api: get lot %s: %w", id, err)
	}
	if res.IsError() {
		return model.LotDetail{}, fmt.Errorf("auction api: get lot %s: %s", id, res.Status())
	}

	return detail, nil
}

// SubmitOrder hands the visitor's order to the upstream API.
func (c *Client) SubmitOrder(ctx context.Context, order model.Order) (model.OrderResult, error) {
	var result model.OrderResult

	res, err := c.http.R().
		SetContext(ctx).
		SetBody(order).
		SetResult(&result).
		Post("/order")
	if err != nil {
		return model.OrderResult{}, fmt.Errorf("auction api: submit order: %w", err)
	}
	if res.IsError() {
		return model.OrderResult{}, fmt.Errorf("auction api: submit order: %s", res.Status())
	}

	return result, nil
}

package storefront

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/angelmondragon/coffeemarket/pkg/types"
)

// ProductInquiries lists a product's inquiries. Secret inquiries are masked
// by the backend unless the bearer owns them.
func (c *Client) ProductInquiries(ctx context.Context, productID int64) ([]types.Inquiry, error) {
	var out []types.Inquiry
	err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       "/api/inquiries/product/{productId}",
		auth:       authOptional,
		pathParams: productParams(productID),
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type inquiryCount struct {
	Count int64 `json:"count"`
}

func (c *Client) InquiryCount(ctx context.Context, productID int64) (int64, error) {
	var out inquiryCount
	err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       "/api/inquiries/product/{productId}/count",
		pathParams: productParams(productID),
		result:     &out,
	})
	if err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *Client) Inquiry(ctx context.Context, inquiryID int64) (*types.Inquiry, error) {
	var out types.Inquiry
	err := c.do(ctx, call{
		method:     http.MethodGet,
		path:       "/api/inquiries/{inquiryId}",
		auth:       authOptional,
		pathParams: inquiryParams(inquiryID),
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyInquiries(ctx context.Context) ([]types.Inquiry, error) {
	var out []types.Inquiry
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/inquiries/my", auth: authRequired, result: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateInquiry posts a new inquiry. A blank title is replaced with the
// default title.
func (c *Client) CreateInquiry(ctx context.Context, in types.InquiryInput) (*types.Inquiry, error) {
	in = normalizeInquiry(in)
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	var out types.Inquiry
	if err := c.do(ctx, call{method: http.MethodPost, path: "/api/inquiries", auth: authRequired, body: in, result: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateInquiry(ctx context.Context, inquiryID int64, in types.InquiryInput) (*types.Inquiry, error) {
	in = normalizeInquiry(in)
	if err := validateRequest(in); err != nil {
		return nil, err
	}
	var out types.Inquiry
	err := c.do(ctx, call{
		method:     http.MethodPut,
		path:       "/api/inquiries/{inquiryId}",
		auth:       authRequired,
		pathParams: inquiryParams(inquiryID),
		body:       in,
		result:     &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteInquiry(ctx context.Context, inquiryID int64) error {
	return c.do(ctx, call{
		method:     http.MethodDelete,
		path:       "/api/inquiries/{inquiryId}",
		auth:       authRequired,
		pathParams: inquiryParams(inquiryID),
	})
}

func normalizeInquiry(in types.InquiryInput) types.InquiryInput {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = types.DefaultInquiryTitle
	}
	return in
}

func inquiryParams(inquiryID int64) map[string]string {
	return map[string]string{"inquiryId": strconv.FormatInt(inquiryID, 10)}
}

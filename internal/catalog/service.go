// Package catalog loads the browse screens: the home lists and the product page.
package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

type catalogClient interface {
	LatestProducts(ctx context.Context) ([]types.Product, error)
	BestProducts(ctx context.Context) ([]types.Product, error)
	ProductsByFilter(ctx context.Context, filter types.ProductFilter, value string) ([]types.Product, error)
	ProductDetail(ctx context.Context, productID int64) (*types.ProductDetail, error)
	ProductReviews(ctx context.Context, productID int64) ([]types.Review, error)
	ReviewStats(ctx context.Context, productID int64) (*types.ReviewStats, error)
	InquiryCount(ctx context.Context, productID int64) (int64, error)
}

// Home is the landing screen.
type Home struct {
	Latest []types.Product
	Best   []types.Product
}

// ProductPage is everything the product screen shows on open.
type ProductPage struct {
	Detail       types.ProductDetail
	Stats        types.ReviewStats
	Reviews      []types.Review
	InquiryCount int64
}

// Price is the unit price of option optionID.
func (p ProductPage) Price(optionID int64) (int, error) {
	opt, ok := p.Detail.Option(optionID)
	if !ok {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "옵션을 선택해주세요.")
	}
	return p.Detail.BasePrice + opt.ExtraPrice, nil
}

type Service struct {
	client catalogClient
}

func NewService(client catalogClient) (*Service, error) {
	if client == nil {
		return nil, fmt.Errorf("catalog client required")
	}
	return &Service{client: client}, nil
}

func (s *Service) Home(ctx context.Context) (Home, error) {
	var home Home
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		home.Latest, err = s.client.LatestProducts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		home.Best, err = s.client.BestProducts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return Home{}, err
	}
	return home, nil
}

func (s *Service) Browse(ctx context.Context, filter types.ProductFilter, value string) ([]types.Product, error) {
	return s.client.ProductsByFilter(ctx, filter, value)
}

// Product loads the detail, review stats, reviews and inquiry count together.
// The detail is required; the rest fail the page as well since they are
// rendered on the same screen.
func (s *Service) Product(ctx context.Context, productID int64) (ProductPage, error) {
	if productID <= 0 {
		return ProductPage{}, pkgerrors.New(pkgerrors.CodeValidation, "상품 번호가 올바르지 않습니다.")
	}
	var page ProductPage
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		detail, err := s.client.ProductDetail(gctx, productID)
		if err != nil {
			return err
		}
		page.Detail = *detail
		return nil
	})
	g.Go(func() error {
		stats, err := s.client.ReviewStats(gctx, productID)
		if err != nil {
			return err
		}
		page.Stats = *stats
		return nil
	})
	g.Go(func() error {
		var err error
		page.Reviews, err = s.client.ProductReviews(gctx, productID)
		return err
	})
	g.Go(func() error {
		var err error
		page.InquiryCount, err = s.client.InquiryCount(gctx, productID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ProductPage{}, err
	}
	return page, nil
}

// Package account backs the my-page screens: profile, address book, order
// history, points, reviews and inquiries.
package account

import (
	"context"
	"fmt"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/logger"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

type accountClient interface {
	Me(ctx context.Context) (*types.User, error)

	Addresses(ctx context.Context) ([]types.Address, error)
	CreateAddress(ctx context.Context, in types.AddressInput) (*types.Address, error)
	UpdateAddress(ctx context.Context, addressID int64, in types.AddressInput) (*types.Address, error)
	DeleteAddress(ctx context.Context, addressID int64) error
	SetDefaultAddress(ctx context.Context, addressID int64) error

	Orders(ctx context.Context) ([]types.Order, error)
	Order(ctx context.Context, orderID int64) (*types.Order, error)

	Points(ctx context.Context) (*types.PointSummary, error)
	PointHistory(ctx context.Context) ([]types.PointHistory, error)

	MyReviews(ctx context.Context) ([]types.Review, error)
	CreateReview(ctx context.Context, in types.ReviewInput) (*types.Review, error)
	UpdateReview(ctx context.Context, reviewID int64, in types.ReviewInput) (*types.Review, error)
	DeleteReview(ctx context.Context, reviewID int64) error

	MyInquiries(ctx context.Context) ([]types.Inquiry, error)
	CreateInquiry(ctx context.Context, in types.InquiryInput) (*types.Inquiry, error)
	UpdateInquiry(ctx context.Context, inquiryID int64, in types.InquiryInput) (*types.Inquiry, error)
	DeleteInquiry(ctx context.Context, inquiryID int64) error
}

type profileStore interface {
	UpdateProfile(ctx context.Context, user types.User) error
}

type Service interface {
	Profile(ctx context.Context) (*types.User, error)

	Addresses(ctx context.Context) ([]types.Address, error)
	SaveAddress(ctx context.Context, addressID int64, in types.AddressInput) ([]types.Address, error)
	DeleteAddress(ctx context.Context, addressID int64) ([]types.Address, error)
	SetDefaultAddress(ctx context.Context, addressID int64) ([]types.Address, error)

	Orders(ctx context.Context) ([]types.Order, error)
	Order(ctx context.Context, orderID int64) (*types.Order, error)

	Points(ctx context.Context) (*types.PointSummary, error)
	PointHistory(ctx context.Context) ([]types.PointHistory, error)

	MyReviews(ctx context.Context) ([]types.Review, error)
	WriteReview(ctx context.Context, reviewID int64, in types.ReviewInput) (*types.Review, error)
	DeleteReview(ctx context.Context, reviewID int64) ([]types.Review, error)

	MyInquiries(ctx context.Context) ([]types.Inquiry, error)
	WriteInquiry(ctx context.Context, inquiryID int64, in types.InquiryInput) (*types.Inquiry, error)
	DeleteInquiry(ctx context.Context, inquiryID int64) ([]types.Inquiry, error)
}

type service struct {
	client  accountClient
	profile profileStore
	logg    *logger.Logger
}

func NewService(client accountClient, profile profileStore, logg *logger.Logger) (Service, error) {
	if client == nil {
		return nil, fmt.Errorf("account client required")
	}
	if profile == nil {
		return nil, fmt.Errorf("profile store required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{client: client, profile: profile, logg: logg}, nil
}

// Profile re-reads the user from the backend and refreshes the cached copy,
// which carries the point balance used at checkout.
func (s *service) Profile(ctx context.Context) (*types.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.profile.UpdateProfile(ctx, *user); err != nil {
		s.logg.Error(ctx, "failed to cache profile", err)
	}
	return user, nil
}

func (s *service) Addresses(ctx context.Context) ([]types.Address, error) {
	return s.client.Addresses(ctx)
}

// SaveAddress creates the address when addressID is zero and updates it
// otherwise. The returned list is re-fetched so default flags are current.
func (s *service) SaveAddress(ctx context.Context, addressID int64, in types.AddressInput) ([]types.Address, error) {
	var err error
	if addressID == 0 {
		_, err = s.client.CreateAddress(ctx, in)
	} else {
		_, err = s.client.UpdateAddress(ctx, addressID, in)
	}
	if err != nil {
		return nil, err
	}
	return s.client.Addresses(ctx)
}

func (s *service) DeleteAddress(ctx context.Context, addressID int64) ([]types.Address, error) {
	if err := s.client.DeleteAddress(ctx, addressID); err != nil {
		return nil, err
	}
	return s.client.Addresses(ctx)
}

func (s *service) SetDefaultAddress(ctx context.Context, addressID int64) ([]types.Address, error) {
	if err := s.client.SetDefaultAddress(ctx, addressID); err != nil {
		return nil, err
	}
	return s.client.Addresses(ctx)
}

func (s *service) Orders(ctx context.Context) ([]types.Order, error) {
	return s.client.Orders(ctx)
}

func (s *service) Order(ctx context.Context, orderID int64) (*types.Order, error) {
	if orderID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "주문 번호가 올바르지 않습니다.")
	}
	return s.client.Order(ctx, orderID)
}

func (s *service) Points(ctx context.Context) (*types.PointSummary, error) {
	return s.client.Points(ctx)
}

func (s *service) PointHistory(ctx context.Context) ([]types.PointHistory, error) {
	return s.client.PointHistory(ctx)
}

func (s *service) MyReviews(ctx context.Context) ([]types.Review, error) {
	return s.client.MyReviews(ctx)
}

// WriteReview creates a review when reviewID is zero and edits it otherwise.
func (s *service) WriteReview(ctx context.Context, reviewID int64, in types.ReviewInput) (*types.Review, error) {
	if reviewID == 0 {
		return s.client.CreateReview(ctx, in)
	}
	return s.client.UpdateReview(ctx, reviewID, in)
}

func (s *service) DeleteReview(ctx context.Context, reviewID int64) ([]types.Review, error) {
	if err := s.client.DeleteReview(ctx, reviewID); err != nil {
		return nil, err
	}
	return s.client.MyReviews(ctx)
}

func (s *service) MyInquiries(ctx context.Context) ([]types.Inquiry, error) {
	return s.client.MyInquiries(ctx)
}

func (s *service) WriteInquiry(ctx context.Context, inquiryID int64, in types.InquiryInput) (*types.Inquiry, error) {
	if inquiryID == 0 {
		return s.client.CreateInquiry(ctx, in)
	}
	return s.client.UpdateInquiry(ctx, inquiryID, in)
}

func (s *service) DeleteInquiry(ctx context.Context, inquiryID int64) ([]types.Inquiry, error) {
	if err := s.client.DeleteInquiry(ctx, inquiryID); err != nil {
		return nil, err
	}
	return s.client.MyInquiries(ctx)
}

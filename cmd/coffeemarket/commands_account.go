package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/coffeemarket/internal/account"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

// withAccount builds the account service for one command invocation.
func (rt *runtime) withAccount(fn func(c *cli.Context, svc account.Service) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		svc, err := rt.accountService()
		if err != nil {
			return err
		}
		return fn(c, svc)
	}
}

func ordersCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "orders",
		Usage: "order history",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "all orders, newest first",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					orders, err := svc.Orders(c.Context)
					if err != nil {
						return rt.fail(c.Context, "list orders", err)
					}
					return rt.emit(orders, func(w *tabwriter.Writer) { writeOrders(w, orders) })
				}),
			},
			{
				Name:      "show",
				Usage:     "order detail",
				ArgsUsage: "<orderId>",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					id, err := idArg(c, "orderId")
					if err != nil {
						return err
					}
					order, err := svc.Order(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "order detail", err)
					}
					return rt.emit(order, func(w *tabwriter.Writer) { writeOrder(w, *order) })
				}),
			},
		},
	}
}

func addressFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "label such as 집 or 회사", Required: required},
		&cli.StringFlag{Name: "recipient", Required: required},
		&cli.StringFlag{Name: "phone", Required: required},
		&cli.StringFlag{Name: "zipcode"},
		&cli.StringFlag{Name: "address", Required: required},
		&cli.StringFlag{Name: "detail"},
		&cli.BoolFlag{Name: "default"},
	}
}

func addressInput(c *cli.Context) types.AddressInput {
	return types.AddressInput{
		Name:          c.String("name"),
		Recipient:     c.String("recipient"),
		Phone:         c.String("phone"),
		Zipcode:       c.String("zipcode"),
		Address:       c.String("address"),
		AddressDetail: c.String("detail"),
		IsDefault:     c.Bool("default"),
	}
}

func addressesCommand(rt *runtime) *cli.Command {
	printList := func(list []types.Address) error {
		return rt.emit(list, func(w *tabwriter.Writer) { writeAddresses(w, list) })
	}
	return &cli.Command{
		Name:  "addresses",
		Usage: "manage the address book",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "saved addresses",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					list, err := svc.Addresses(c.Context)
					if err != nil {
						return rt.fail(c.Context, "list addresses", err)
					}
					return printList(list)
				}),
			},
			{
				Name:  "add",
				Usage: "save a new address",
				Flags: addressFlags(false),
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					list, err := svc.SaveAddress(c.Context, 0, addressInput(c))
					if err != nil {
						return rt.fail(c.Context, "add address", err)
					}
					return printList(list)
				}),
			},
			{
				Name:      "edit",
				Usage:     "update an address; unset fields keep their value",
				ArgsUsage: "<addressId>",
				Flags:     addressFlags(false),
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					id, err := idArg(c, "addressId")
					if err != nil {
						return err
					}
					list, err := svc.Addresses(c.Context)
					if err != nil {
						return rt.fail(c.Context, "load address", err)
					}
					var current *types.Address
					for i := range list {
						if list[i].AddressID == id {
							current = &list[i]
						}
					}
					if current == nil {
						return cli.Exit("배송지를 찾을 수 없습니다.", 1)
					}
					in := mergeAddress(types.InputFrom(*current), c)
					list, err = svc.SaveAddress(c.Context, id, in)
					if err != nil {
						return rt.fail(c.Context, "edit address", err)
					}
					return printList(list)
				}),
			},
			{
				Name:      "rm",
				Usage:     "delete an address",
				ArgsUsage: "<addressId>",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					id, err := idArg(c, "addressId")
					if err != nil {
						return err
					}
					list, err := svc.DeleteAddress(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "delete address", err)
					}
					return printList(list)
				}),
			},
			{
				Name:      "default",
				Usage:     "make an address the default",
				ArgsUsage: "<addressId>",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					id, err := idArg(c, "addressId")
					if err != nil {
						return err
					}
					list, err := svc.SetDefaultAddress(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "set default address", err)
					}
					return printList(list)
				}),
			},
		},
	}
}

func mergeAddress(in types.AddressInput, c *cli.Context) types.AddressInput {
	set := func(flag string, dst *string) {
		if c.IsSet(flag) {
			*dst = c.String(flag)
		}
	}
	set("name", &in.Name)
	set("recipient", &in.Recipient)
	set("phone", &in.Phone)
	set("zipcode", &in.Zipcode)
	set("address", &in.Address)
	set("detail", &in.AddressDetail)
	if c.IsSet("default") {
		in.IsDefault = c.Bool("default")
	}
	return in
}

func pointsCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "points",
		Usage: "point balance and history",
		Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
			summary, err := svc.Points(c.Context)
			if err != nil {
				return rt.fail(c.Context, "points", err)
			}
			return rt.emit(summary, func(w *tabwriter.Writer) {
				fmt.Fprintf(w, "보유 포인트\t%s\n\n", points(summary.CurrentPoint))
				writePointHistory(w, summary.History)
			})
		}),
	}
}

func reviewsCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "reviews",
		Usage: "product reviews",
		Subcommands: []*cli.Command{
			{
				Name:      "product",
				Usage:     "reviews of a product",
				ArgsUsage: "<productId>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c, "productId")
					if err != nil {
						return err
					}
					reviews, err := rt.client.ProductReviews(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "product reviews", err)
					}
					return rt.emit(reviews, func(w *tabwriter.Writer) { writeReviews(w, reviews) })
				},
			},
			{
				Name:  "mine",
				Usage: "reviews you wrote",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					reviews, err := svc.MyReviews(c.Context)
					if err != nil {
						return rt.fail(c.Context, "my reviews", err)
					}
					return rt.emit(reviews, func(w *tabwriter.Writer) { writeReviews(w, reviews) })
				}),
			},
			{
				Name:  "write",
				Usage: "write a review, or edit one with --id",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "review to edit"},
					&cli.Int64Flag{Name: "product", Required: true},
					&cli.Int64Flag{Name: "order-item"},
					&cli.IntFlag{Name: "rating", Required: true},
					&cli.StringFlag{Name: "content"},
				},
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					in := types.ReviewInput{
						ProductID: c.Int64("product"),
						Rating:    c.Int("rating"),
						Content:   c.String("content"),
					}
					if c.IsSet("order-item") {
						orderItem := c.Int64("order-item")
						in.OrderItemID = &orderItem
					}
					review, err := svc.WriteReview(c.Context, c.Int64("id"), in)
					if err != nil {
						return rt.fail(c.Context, "write review", err)
					}
					return rt.emit(review, func(w *tabwriter.Writer) {
						fmt.Fprintf(w, "리뷰가 등록되었습니다.\t#%d\n", review.ReviewID)
					})
				}),
			},
			{
				Name:      "rm",
				Usage:     "delete a review",
				ArgsUsage: "<reviewId>",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					id, err := idArg(c, "reviewId")
					if err != nil {
						return err
					}
					reviews, err := svc.DeleteReview(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "delete review", err)
					}
					return rt.emit(reviews, func(w *tabwriter.Writer) { writeReviews(w, reviews) })
				}),
			},
		},
	}
}

func inquiriesCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "inquiries",
		Usage: "product inquiries",
		Subcommands: []*cli.Command{
			{
				Name:      "product",
				Usage:     "inquiries on a product",
				ArgsUsage: "<productId>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c, "productId")
					if err != nil {
						return err
					}
					list, err := rt.client.ProductInquiries(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "product inquiries", err)
					}
					return rt.emit(list, func(w *tabwriter.Writer) { writeInquiries(w, list) })
				},
			},
			{
				Name:      "show",
				Usage:     "one inquiry with its answer",
				ArgsUsage: "<inquiryId>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c, "inquiryId")
					if err != nil {
						return err
					}
					inq, err := rt.client.Inquiry(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "inquiry", err)
					}
					return rt.emit(inq, func(w *tabwriter.Writer) {
						fmt.Fprintf(w, "%s\t%s\n", inq.Title, stamp(inq.CreatedAt))
						fmt.Fprintf(w, "%s\n", inq.Content)
						if inq.Answer != nil {
							fmt.Fprintf(w, "답변\t%s\n", *inq.Answer)
						}
					})
				},
			},
			{
				Name:  "mine",
				Usage: "inquiries you wrote",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					list, err := svc.MyInquiries(c.Context)
					if err != nil {
						return rt.fail(c.Context, "my inquiries", err)
					}
					return rt.emit(list, func(w *tabwriter.Writer) { writeInquiries(w, list) })
				}),
			},
			{
				Name:  "write",
				Usage: "ask about a product, or edit with --id",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "inquiry to edit"},
					&cli.Int64Flag{Name: "product", Required: true},
					&cli.StringFlag{Name: "title"},
					&cli.StringFlag{Name: "content", Required: true},
					&cli.BoolFlag{Name: "secret"},
				},
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					inq, err := svc.WriteInquiry(c.Context, c.Int64("id"), types.InquiryInput{
						ProductID: c.Int64("product"),
						Title:     c.String("title"),
						Content:   c.String("content"),
						IsSecret:  c.Bool("secret"),
					})
					if err != nil {
						return rt.fail(c.Context, "write inquiry", err)
					}
					return rt.emit(inq, func(w *tabwriter.Writer) {
						fmt.Fprintf(w, "문의가 등록되었습니다.\t#%d %s\n", inq.InquiryID, inq.Title)
					})
				}),
			},
			{
				Name:      "rm",
				Usage:     "delete an inquiry",
				ArgsUsage: "<inquiryId>",
				Action: rt.withAccount(func(c *cli.Context, svc account.Service) error {
					id, err := idArg(c, "inquiryId")
					if err != nil {
						return err
					}
					list, err := svc.DeleteInquiry(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "delete inquiry", err)
					}
					return rt.emit(list, func(w *tabwriter.Writer) { writeInquiries(w, list) })
				}),
			},
		},
	}
}

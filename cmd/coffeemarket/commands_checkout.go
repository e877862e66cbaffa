package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/coffeemarket/internal/checkout"
	"github.com/angelmondragon/coffeemarket/pkg/pricing"
)

func checkoutFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "point", Usage: "points to redeem, as typed"},
		&cli.BoolFlag{Name: "all-points", Usage: "redeem as many points as the cart allows"},
		&cli.Int64Flag{Name: "address", Usage: "address id; defaults to the default address"},
		&cli.StringFlag{Name: "memo", Usage: "delivery request"},
	}
}

func checkoutCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "checkout",
		Usage: "price and place an order from the cart",
		Subcommands: []*cli.Command{
			{
				Name:  "quote",
				Usage: "show the price breakdown without ordering",
				Flags: checkoutFlags(),
				Action: func(c *cli.Context) error {
					svc, err := rt.prepareCheckout(c)
					if err != nil {
						return err
					}
					view, err := svc.View()
					if err != nil {
						return rt.fail(c.Context, "checkout", err)
					}
					return rt.emit(view, func(w *tabwriter.Writer) {
						writeCart(w, view.Items, pricing.CartTotals(view.Items))
						fmt.Fprintln(w)
						if view.SelectedAddress != nil {
							a := view.SelectedAddress
							fmt.Fprintf(w, "배송지\t%s (%s) %s %s\n", a.Name, a.Zipcode, a.Address, a.AddressDetail)
						} else {
							fmt.Fprintln(w, "배송지\t없음")
						}
						fmt.Fprintf(w, "보유 포인트\t%s\n", points(view.UserPoint))
						writeSummary(w, view.Summary)
					})
				},
			},
			{
				Name:  "submit",
				Usage: "place the order",
				Flags: checkoutFlags(),
				Action: func(c *cli.Context) error {
					svc, err := rt.prepareCheckout(c)
					if err != nil {
						return err
					}
					order, err := svc.Submit(c.Context)
					if err != nil {
						return rt.fail(c.Context, "submit order", err)
					}
					return rt.emit(order, func(w *tabwriter.Writer) {
						fmt.Fprintln(w, "주문이 완료되었습니다.")
						writeOrder(w, *order)
					})
				},
			},
		},
	}
}

func (rt *runtime) prepareCheckout(c *cli.Context) (*checkout.Service, error) {
	svc, err := rt.checkoutService()
	if err != nil {
		return nil, err
	}
	if _, err := svc.Load(c.Context); err != nil {
		return nil, rt.fail(c.Context, "load checkout", err)
	}
	if err := applyCheckoutFlags(c, svc); err != nil {
		return nil, rt.fail(c.Context, "checkout", err)
	}
	return svc, nil
}

func applyCheckoutFlags(c *cli.Context, svc *checkout.Service) error {
	if id := c.Int64("address"); id > 0 {
		if err := svc.SelectAddress(id); err != nil {
			return err
		}
	}
	switch {
	case c.Bool("all-points"):
		if _, err := svc.UseAllPoints(); err != nil {
			return err
		}
	case c.IsSet("point"):
		if _, err := svc.SetPointInput(c.String("point")); err != nil {
			return err
		}
	}
	if c.IsSet("memo") {
		return svc.SetMemo(c.String("memo"))
	}
	return nil
}

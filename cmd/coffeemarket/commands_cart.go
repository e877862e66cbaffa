package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/coffeemarket/internal/cart"
)

func cartCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "cart",
		Usage: "view and edit the cart",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "list cart lines and totals",
				Action: func(c *cli.Context) error {
					svc, err := rt.cartService()
					if err != nil {
						return err
					}
					snap, err := svc.Refresh(c.Context)
					if err != nil {
						return rt.fail(c.Context, "load cart", err)
					}
					return rt.printCart(snap)
				},
			},
			{
				Name:  "add",
				Usage: "add a product option; works without logging in",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "product", Required: true},
					&cli.Int64Flag{Name: "option", Required: true},
					&cli.IntFlag{Name: "qty", Value: 1},
				},
				Action: func(c *cli.Context) error {
					svc, err := rt.cartService()
					if err != nil {
						return err
					}
					item, err := svc.Add(c.Context, c.Int64("product"), c.Int64("option"), c.Int("qty"))
					if err != nil {
						return rt.fail(c.Context, "add to cart", err)
					}
					return rt.emit(item, func(w *tabwriter.Writer) {
						fmt.Fprintf(w, "장바구니에 담았습니다.\t%s %s x%d\t%s\n", item.ProductName, item.OptionValue, item.Quantity, won(item.TotalPrice))
					})
				},
			},
			{
				Name:      "qty",
				Usage:     "set a line's quantity; 0 removes it",
				ArgsUsage: "<cartItemId> <quantity>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c, "cartItemId")
					if err != nil {
						return err
					}
					var qty int
					if _, err := fmt.Sscan(c.Args().Get(1), &qty); err != nil {
						return cli.Exit("usage: cart qty <cartItemId> <quantity>", 2)
					}
					return rt.mutateCart(c, func(svc *cart.Service) (cart.Snapshot, error) {
						return svc.ChangeQuantity(c.Context, id, qty)
					})
				},
			},
			{
				Name:      "rm",
				Usage:     "remove a line",
				ArgsUsage: "<cartItemId>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c, "cartItemId")
					if err != nil {
						return err
					}
					return rt.mutateCart(c, func(svc *cart.Service) (cart.Snapshot, error) {
						return svc.Remove(c.Context, id)
					})
				},
			},
			{
				Name:  "clear",
				Usage: "empty the cart",
				Action: func(c *cli.Context) error {
					return rt.mutateCart(c, func(svc *cart.Service) (cart.Snapshot, error) {
						return svc.Clear(c.Context)
					})
				},
			},
		},
	}
}

// mutateCart loads the cart first so the local snapshot matches the backend,
// then applies fn.
func (rt *runtime) mutateCart(c *cli.Context, fn func(*cart.Service) (cart.Snapshot, error)) error {
	svc, err := rt.cartService()
	if err != nil {
		return err
	}
	snap, err := svc.Refresh(c.Context)
	if err != nil {
		return rt.fail(c.Context, "load cart", err)
	}
	if !snap.LoggedIn {
		return rt.printCart(snap)
	}
	snap, err = fn(svc)
	if err != nil {
		return rt.fail(c.Context, "update cart", err)
	}
	return rt.printCart(snap)
}

func (rt *runtime) printCart(snap cart.Snapshot) error {
	return rt.emit(snap, func(w *tabwriter.Writer) {
		if !snap.LoggedIn {
			fmt.Fprintln(w, "로그인이 필요합니다.")
			return
		}
		if len(snap.Items) == 0 {
			fmt.Fprintln(w, "장바구니가 비어있습니다.")
			return
		}
		writeCart(w, snap.Items, snap.Totals)
	})
}

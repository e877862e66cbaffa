package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/types"
)

func productsCommand(rt *runtime) *cli.Command {
	return &cli.Command{
		Name:  "products",
		Usage: "browse the catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "latest",
				Usage: "newest products",
				Action: func(c *cli.Context) error {
					products, err := rt.client.LatestProducts(c.Context)
					if err != nil {
						return rt.fail(c.Context, "latest products", err)
					}
					return rt.emit(products, func(w *tabwriter.Writer) { writeProducts(w, products) })
				},
			},
			{
				Name:  "best",
				Usage: "best sellers",
				Action: func(c *cli.Context) error {
					products, err := rt.client.BestProducts(c.Context)
					if err != nil {
						return rt.fail(c.Context, "best products", err)
					}
					return rt.emit(products, func(w *tabwriter.Writer) { writeProducts(w, products) })
				},
			},
			{
				Name:      "filter",
				Usage:     "products by continent, nationality or type",
				ArgsUsage: "<continent|nationality|type> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return cli.Exit("usage: products filter <continent|nationality|type> <value>", 2)
					}
					svc, err := rt.catalogService()
					if err != nil {
						return err
					}
					products, err := svc.Browse(c.Context, types.ProductFilter(c.Args().Get(0)), c.Args().Get(1))
					if err != nil {
						return rt.fail(c.Context, "filter products", err)
					}
					return rt.emit(products, func(w *tabwriter.Writer) { writeProducts(w, products) })
				},
			},
			{
				Name:      "show",
				Usage:     "product detail with options, rating and inquiry count",
				ArgsUsage: "<productId>",
				Action: func(c *cli.Context) error {
					id, err := idArg(c, "productId")
					if err != nil {
						return err
					}
					svc, err := rt.catalogService()
					if err != nil {
						return err
					}
					page, err := svc.Product(c.Context, id)
					if err != nil {
						return rt.fail(c.Context, "product detail", err)
					}
					return rt.emit(page, func(w *tabwriter.Writer) {
						d := page.Detail
						fmt.Fprintf(w, "%s\t%s\n", d.ProductName, won(d.BasePrice))
						fmt.Fprintf(w, "원산지\t%s / %s\n", d.Continent, d.Nationality)
						fmt.Fprintf(w, "종류\t%s\n", d.Type)
						fmt.Fprintf(w, "평점\t%.1f (%d개 리뷰)\n", page.Stats.AverageRating, page.Stats.ReviewCount)
						fmt.Fprintf(w, "문의\t%d건\n", page.InquiryCount)
						fmt.Fprintln(w, "OPTION\tVALUE\tPRICE")
						for _, opt := range d.Options {
							fmt.Fprintf(w, "%d\t%s\t%s\n", opt.OptionID, opt.OptionValue, won(d.BasePrice+opt.ExtraPrice))
						}
					})
				},
			},
		},
	}
}

func idArg(c *cli.Context, name string) (int64, error) {
	raw := c.Args().First()
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(pkgerrors.UserMessage(pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s must be a positive number, got %q", name, raw))), 2)
	}
	return id, nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/coffeemarket/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "coffeemarket"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(&runtime{})
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(rt *runtime) *cli.App {
	return &cli.App{
		Name:  "coffeemarket",
		Usage: "browse the coffee market, manage your cart and place orders",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print results as JSON"},
			&cli.StringFlag{Name: "log-level", Usage: "override the configured log level"},
		},
		Before: rt.bootstrap,
		After:  rt.shutdown,
		Commands: []*cli.Command{
			loginCommand(rt),
			logoutCommand(rt),
			whoamiCommand(rt),
			refreshCommand(rt),
			productsCommand(rt),
			cartCommand(rt),
			checkoutCommand(rt),
			ordersCommand(rt),
			addressesCommand(rt),
			pointsCommand(rt),
			reviewsCommand(rt),
			inquiriesCommand(rt),
		},
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/coffeemarket/internal/account"
	"github.com/angelmondragon/coffeemarket/internal/cart"
	"github.com/angelmondragon/coffeemarket/internal/catalog"
	"github.com/angelmondragon/coffeemarket/internal/checkout"
	"github.com/angelmondragon/coffeemarket/pkg/auth/session"
	"github.com/angelmondragon/coffeemarket/pkg/config"
	pkgerrors "github.com/angelmondragon/coffeemarket/pkg/errors"
	"github.com/angelmondragon/coffeemarket/pkg/kv"
	"github.com/angelmondragon/coffeemarket/pkg/logger"
	"github.com/angelmondragon/coffeemarket/pkg/metrics"
	"github.com/angelmondragon/coffeemarket/pkg/storefront"
)

// runtime holds everything a command needs. It is filled in by bootstrap.
type runtime struct {
	cfg      *config.Config
	logg     *logger.Logger
	state    kv.Store
	session  *session.Store
	client   *storefront.Client
	registry *prometheus.Registry

	out      io.Writer
	jsonMode bool
}

func (rt *runtime) bootstrap(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load config: %v", err), 1)
	}
	level := cfg.App.LogLevel
	if override := c.String("log-level"); override != "" {
		level = override
	}
	logg := logger.New(logger.Options{
		ServiceName: "coffeemarket",
		Level:       logger.ParseLevel(level),
		WarnStack:   cfg.App.LogWarnStack,
		Output:      c.App.ErrWriter,
	})
	ctx := logg.WithFields(c.Context, map[string]any{
		"env":    cfg.App.Env,
		"device": cfg.App.DeviceID,
	})

	state, err := kv.Open(ctx, cfg, logg)
	if err != nil {
		logError(ctx, logg, "failed to open state store", err)
		return cli.Exit("failed to open local state", 1)
	}

	opts := []storefront.Option{storefront.WithLogger(logg)}
	var registry *prometheus.Registry
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		opts = append(opts, storefront.WithMetrics(metrics.NewClientMetrics(registry, cfg.Metrics.Namespace)))
	}
	client, err := storefront.New(cfg.Backend, opts...)
	if err != nil {
		_ = state.Close()
		return cli.Exit(fmt.Sprintf("failed to build api client: %v", err), 1)
	}

	store, err := session.Open(ctx, state, client, session.WithLogger(logg))
	if err != nil {
		_ = state.Close()
		logError(ctx, logg, "failed to restore session", err)
		return cli.Exit("failed to restore session", 1)
	}

	rt.cfg = cfg
	rt.logg = logg
	rt.state = state
	rt.session = store
	rt.client = client.WithCredentials(store)
	rt.registry = registry
	rt.out = c.App.Writer
	rt.jsonMode = c.Bool("json")
	return nil
}

func (rt *runtime) shutdown(c *cli.Context) error {
	if rt.state == nil {
		return nil
	}
	rt.reportMetrics(c.Context)
	if err := rt.state.Close(); err != nil {
		rt.logg.Error(c.Context, "error closing state store", err)
	}
	return nil
}

// reportMetrics logs the request counters gathered during this run.
func (rt *runtime) reportMetrics(ctx context.Context) {
	if rt.registry == nil {
		return
	}
	families, err := rt.registry.Gather()
	if err != nil {
		rt.logg.Warn(ctx, fmt.Sprintf("gathering metrics: %v", err))
		return
	}
	for _, family := range families {
		if family.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range family.GetMetric() {
			rt.logg.Info(rt.logg.WithFields(ctx, map[string]any{
				"metric": family.GetName(),
				"labels": labelString(m.GetLabel()),
				"value":  m.GetCounter().GetValue(),
			}), "metric")
		}
	}
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func (rt *runtime) cartService() (*cart.Service, error) {
	return cart.NewService(rt.client, rt.session, nil, rt.logg)
}

func (rt *runtime) checkoutService() (*checkout.Service, error) {
	return checkout.NewService(rt.client, rt.session, nil, rt.logg)
}

func (rt *runtime) accountService() (account.Service, error) {
	return account.NewService(rt.client, rt.session, rt.logg)
}

func (rt *runtime) catalogService() (*catalog.Service, error) {
	return catalog.NewService(rt.client)
}

// fail turns err into the alert text shown to the user and logs the detail.
func (rt *runtime) fail(ctx context.Context, action string, err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.IsValidation(err) || pkgerrors.CodeOf(err) == pkgerrors.CodeInvalidQuantity {
		rt.logg.Debug(ctx, fmt.Sprintf("%s rejected: %v", action, err))
	} else {
		rt.logg.Warn(rt.logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), fmt.Sprintf("%s failed", action))
	}
	return cli.Exit(pkgerrors.UserMessage(err), 1)
}

// logError logs err with its cause chain and any postgres detail. The dump
// carries the error text, so it is not attached a second time.
func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(logg.WithFields(ctx, pkgerrors.Dump(err).Fields()), msg, nil)
}

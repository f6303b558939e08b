package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/izzy-ti/go-storefront-client/internal/api"
	"github.com/izzy-ti/go-storefront-client/internal/auth"
	"github.com/izzy-ti/go-storefront-client/internal/cart"
	"github.com/izzy-ti/go-storefront-client/internal/catalog"
	"github.com/izzy-ti/go-storefront-client/internal/checkout"
	"github.com/izzy-ti/go-storefront-client/internal/config"
	"github.com/izzy-ti/go-storefront-client/internal/orders"
	"github.com/izzy-ti/go-storefront-client/internal/payment"
	"github.com/izzy-ti/go-storefront-client/internal/store"
)

type app struct {
	cfg      *config.Config
	log      *slog.Logger
	session  *auth.Session
	products *catalog.Products
	reviews  *catalog.Reviews
	seller   *catalog.Seller
	cart     *cart.Manager
	wishlist *cart.Wishlist
	orders   *orders.Manager
	checkout *checkout.Orchestrator
}

func newApp(ctx context.Context) (*app, error) {
	log := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var kv store.KV
	switch cfg.Store.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		kv = store.NewRedisStore(client, cfg.Redis.KeyPrefix)
	default:
		fs, err := store.NewFileStore(cfg.Store.ProfileDir)
		if err != nil {
			return nil, err
		}
		kv = fs
	}

	// The session and the client reference each other: the client pulls the
	// bearer token from the session, and a 401 anywhere tears it down.
	var session *auth.Session
	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log,
		api.WithTokenSource(func() string {
			if session == nil {
				return ""
			}
			return session.Token()
		}),
		api.WithUnauthorizedHook(func() {
			if session != nil {
				session.Teardown(context.Background())
			}
		}),
	)
	session = auth.NewSession(client, kv, log)

	if session.Restore(ctx) {
		if err := session.Verify(ctx); err != nil {
			log.Warn("stored session not verified", "error", err)
		}
	}

	products := catalog.NewProducts(client, kv, log)

	var lineStore cart.LineStore
	if cfg.Cart.Mode == "remote" {
		lineStore = cart.NewRemoteLineStore(client, session)
	} else {
		lineStore = cart.NewLocalLineStore(kv, store.KeyCart)
	}
	cartMgr := cart.NewManager(lineStore, products, session, log)
	wishlist := cart.NewWishlist(kv, products, session, log)

	gateway := payment.NewMockGateway(log)

	return &app{
		cfg:      cfg,
		log:      log,
		session:  session,
		products: products,
		reviews:  catalog.NewReviews(client, log),
		seller:   catalog.NewSeller(client, session, log),
		cart:     cartMgr,
		wishlist: wishlist,
		orders:   orders.NewManager(client, session, log),
		checkout: checkout.NewOrchestrator(client, cartMgr, session, gateway, log),
	}, nil
}

func main() {
	ctx := context.Background()

	a, err := newApp(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	if err := newRootCommand(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// Command seed-db loads a shops fixture file into the database, creating any
// shop that is not already present (matched by name).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
	"github.com/bazarlab/marketplace-admin/internal/repository"
)

type shopJSON struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Logo        *string       `json:"logo"`
	Products    []productJSON `json:"products"`
}

type productJSON struct {
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	StockLevel  int             `json:"stockLevel"`
	Description string          `json:"description"`
	Image       *string         `json:"image"`
}

func main() {
	var (
		databaseURL string
		shopsFile   string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&shopsFile, "shops-file", "db/seed/shops.json", "path to shops JSON fixture")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, shopsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, shopsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seedShops(ctx, repository.NewShopRepository(pool), shopsFile)
}

func seedShops(ctx context.Context, repo catalog.Repository, shopsFile string) error {
	slog.Info("reading shops fixture", slog.String("path", shopsFile))

	data, err := os.ReadFile(shopsFile)
	if err != nil {
		return errors.Wrap(err, "read shops fixture")
	}

	var fixtures []shopJSON
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return errors.Wrap(err, "parse shops fixture")
	}

	existing, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list existing shops")
	}
	seen := make(map[string]bool, len(existing))
	for _, s := range existing {
		seen[s.Name] = true
	}

	slog.Info("seeding shops", slog.Int("count", len(fixtures)))

	for _, f := range fixtures {
		if seen[f.Name] {
			slog.Info("shop already present, skipping", slog.String("name", f.Name))
			continue
		}

		shop := &catalog.Shop{
			ID:          uuid.New().String(),
			Name:        f.Name,
			Description: f.Description,
			Logo:        f.Logo,
			Products:    make([]catalog.Product, len(f.Products)),
		}
		for i, p := range f.Products {
			shop.Products[i] = catalog.Product{
				ID:          uuid.New().String(),
				Name:        p.Name,
				Price:       p.Price,
				StockLevel:  p.StockLevel,
				Description: p.Description,
				Image:       p.Image,
			}
		}

		if err := repo.Create(ctx, shop); err != nil {
			return errors.Wrapf(err, "create shop %q", f.Name)
		}

		slog.Info("created shop",
			slog.String("id", shop.ID),
			slog.String("name", shop.Name),
			slog.Int("products", len(shop.Products)),
		)
	}

	return nil
}

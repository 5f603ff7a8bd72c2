// Command feed-import ingests bulk product feeds into the catalog. Feeds are
// gzip-compressed NDJSON files, one product per line:
//
//	{"sku":"...","shop":"...","name":"...","price":12.5,"stockLevel":4,"description":"...","image":null}
//
// Files are scanned concurrently. A SKU appearing in more than one feed is
// taken from the earliest file only; later occurrences are skipped via
// per-file bloom filters. Rows are grouped by shop name, missing shops are
// created, and products are appended through the regular repository path.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/google/uuid"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bazarlab/marketplace-admin/internal/domain/catalog"
	"github.com/bazarlab/marketplace-admin/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	progressEvery = 1_000_000
)

// feedRow is one decoded product line plus its owning shop name.
type feedRow struct {
	SKU         string
	Shop        string
	Name        string
	Price       decimal.Decimal
	StockLevel  int
	Description string
	Image       *string
}

func main() {
	var (
		dataDir     string
		databaseURL string
		dryRun      bool
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.ndjson.gz feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.BoolVar(&dryRun, "dry-run", false, "parse and dedupe feeds without touching the database")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" && !dryRun {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL, dryRun); err != nil {
		slog.Error("feed import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("feed import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string, dryRun bool) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.ndjson.gz"))
	if err != nil {
		return errors.Wrap(err, "glob feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.ndjson.gz files in %s", dataDir)
	}
	sort.Strings(files)

	// Pass 1: one bloom filter of SKUs per file, built concurrently.
	slog.Info("pass 1: building SKU filters", slog.Int("files", len(files)))

	filters, err := buildSKUFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build sku filters")
	}

	// Pass 2: decode rows, skipping SKUs already claimed by an earlier feed.
	slog.Info("pass 2: decoding feed rows")

	rows, err := collectRows(ctx, files, filters)
	if err != nil {
		return errors.Wrap(err, "collect feed rows")
	}

	slog.Info("rows to import", slog.Int("count", len(rows)))

	var repo catalog.Repository
	if dryRun {
		repo = repository.NewMemoryStore()
	} else {
		pool, err := repository.NewPool(ctx, databaseURL)
		if err != nil {
			return errors.Wrap(err, "connect to database")
		}
		defer pool.Close()

		if err := repository.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		repo = repository.NewShopRepository(pool)
	}

	return importRows(ctx, repo, rows)
}

// buildSKUFilters streams every file concurrently, recording its SKUs in a
// dedicated bloom filter.
func buildSKUFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(buildFilterForFile(ctx, i, f, filters))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

func buildFilterForFile(ctx context.Context, idx int, path string, filters []*bloom.BloomFilter) func() error {
	return func() error {
		filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
		var count uint64

		if err := streamGzLines(ctx, path, func(line []byte) error {
			sku, err := decodeSKU(line)
			if err != nil {
				return err
			}
			filter.AddString(sku)
			count++
			if count%progressEvery == 0 {
				slog.Info("pass 1 progress", slog.Int("file", idx+1), slog.Uint64("rows", count))
			}
			return nil
		}); err != nil {
			return errors.Wrapf(err, "build filter for %s", path)
		}

		slog.Info("pass 1 complete", slog.Int("file", idx+1), slog.Uint64("total_rows", count))
		filters[idx] = filter
		return nil
	}
}

// collectRows streams the files in order. A row is skipped when any EARLIER
// file's filter claims its SKU; within one file the first occurrence wins.
// Bloom false positives can drop a unique SKU, which is an accepted trade
// for not holding every SKU of every feed in memory.
func collectRows(ctx context.Context, files []string, filters []*bloom.BloomFilter) ([]feedRow, error) {
	var (
		rows []feedRow
		seen = bloom.NewWithEstimates(bloomCapacity, bloomFPR)
	)

	for i, path := range files {
		var kept, skipped uint64

		err := streamGzLines(ctx, path, func(line []byte) error {
			row, err := decodeRow(line)
			if err != nil {
				return err
			}

			claimed := seen.TestString(row.SKU)
			for j := 0; !claimed && j < i; j++ {
				claimed = filters[j].TestString(row.SKU)
			}
			if claimed {
				skipped++
				return nil
			}

			seen.AddString(row.SKU)
			rows = append(rows, row)
			kept++
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "scan %s", path)
		}

		slog.Info("pass 2 complete",
			slog.Int("file", i+1),
			slog.Uint64("kept", kept),
			slog.Uint64("skipped", skipped),
		)
	}

	return rows, nil
}

// importRows groups rows by shop name and appends them to existing shops,
// creating shops that the catalog does not know yet.
func importRows(ctx context.Context, repo catalog.Repository, rows []feedRow) error {
	existing, err := repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list shops")
	}

	byName := make(map[string]*catalog.Shop, len(existing))
	for i := range existing {
		byName[existing[i].Name] = &existing[i]
	}

	// Group while preserving first-seen shop order.
	grouped := make(map[string][]feedRow)
	var shopOrder []string
	for _, row := range rows {
		if _, ok := grouped[row.Shop]; !ok {
			shopOrder = append(shopOrder, row.Shop)
		}
		grouped[row.Shop] = append(grouped[row.Shop], row)
	}

	for _, shopName := range shopOrder {
		batch := grouped[shopName]
		products := make([]catalog.Product, len(batch))
		for i, row := range batch {
			products[i] = catalog.Product{
				ID:          uuid.New().String(),
				Name:        row.Name,
				Price:       row.Price,
				StockLevel:  row.StockLevel,
				Description: row.Description,
				Image:       row.Image,
			}
		}

		if shop, ok := byName[shopName]; ok {
			merged := append(append([]catalog.Product(nil), shop.Products...), products...)
			if _, err := repo.Update(ctx, shop.ID, catalog.ShopPatch{Products: &merged}); err != nil {
				return errors.Wrapf(err, "append products to shop %q", shopName)
			}
		} else {
			shop := &catalog.Shop{
				ID:          uuid.New().String(),
				Name:        shopName,
				Description: shopName + " (imported)",
				Products:    products,
			}
			if err := repo.Create(ctx, shop); err != nil {
				return errors.Wrapf(err, "create shop %q", shopName)
			}
		}

		slog.Info("imported shop batch",
			slog.String("shop", shopName),
			slog.Int("products", len(products)),
		)
	}

	return nil
}

// streamGzLines opens a gzip-compressed file and calls fn for each line.
func streamGzLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(scanner.Bytes()) == 0 {
			continue
		}
		if err := fn(scanner.Bytes()); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// decodeSKU extracts only the sku field, skipping everything else. Pass 1
// does not need full rows.
func decodeSKU(line []byte) (string, error) {
	var sku string
	d := jx.DecodeBytes(line)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		if key == "sku" {
			v, err := d.Str()
			sku = v
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", errors.Wrap(err, "decode sku")
	}
	if sku == "" {
		return "", errors.New("feed row has no sku")
	}
	return sku, nil
}

func decodeRow(line []byte) (feedRow, error) {
	var row feedRow
	d := jx.DecodeBytes(line)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "sku":
			v, err := d.Str()
			row.SKU = v
			return err
		case "shop":
			v, err := d.Str()
			row.Shop = v
			return err
		case "name":
			v, err := d.Str()
			row.Name = v
			return err
		case "price":
			num, err := d.Num()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(num.String())
			if err != nil || price.IsNegative() {
				price = decimal.Zero
			}
			row.Price = price
			return nil
		case "stockLevel":
			v, err := d.Int()
			if v < 0 {
				v = 0
			}
			row.StockLevel = v
			return err
		case "description":
			v, err := d.Str()
			row.Description = v
			return err
		case "image":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Str()
			row.Image = &v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return feedRow{}, errors.Wrap(err, "decode feed row")
	}
	if row.SKU == "" || row.Shop == "" || row.Name == "" {
		return feedRow{}, errors.Errorf("feed row missing required fields: sku=%q shop=%q name=%q", row.SKU, row.Shop, row.Name)
	}
	return row, nil
}

// Command catalog-pack merges one or more product JSON files into a single
// gzip-compressed catalog for the embedded demo collaborators. Inputs may be
// plain .json or .json.gz; duplicate product ids keep the first occurrence
// and invalid prices fail the run.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/microshop/checkout-service/internal/fake"
)

func main() {
	var out string
	flag.StringVar(&out, "out", "catalog.json.gz", "output catalog path")
	flag.Parse()

	inputs := flag.Args()
	if len(inputs) == 0 {
		slog.Error("at least one input product file is required")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, inputs, out); err != nil {
		slog.Error("catalog pack failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog pack completed", slog.String("out", out))
}

func run(ctx context.Context, inputs []string, out string) error {
	var (
		mu       sync.Mutex
		byID     = make(map[string]fake.Product)
		fileKeys = make(map[string]string)
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, path := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			products, err := readProducts(path)
			if err != nil {
				return errors.Wrapf(err, "read %s", path)
			}

			mu.Lock()
			defer mu.Unlock()
			for _, p := range products {
				if p.ID == "" {
					return errors.Errorf("%s: product with empty id", path)
				}
				if !p.PriceUsd.IsValid() || p.PriceUsd.IsZero() {
					return errors.Errorf("%s: product %s has invalid price", path, p.ID)
				}
				if _, seen := byID[p.ID]; seen {
					slog.Warn("duplicate product id, keeping first",
						slog.String("id", p.ID),
						slog.String("first", fileKeys[p.ID]),
						slog.String("dropped", path),
					)
					continue
				}
				byID[p.ID] = p
				fileKeys[p.ID] = path
			}
			slog.Info("file loaded", slog.String("path", path), slog.Int("products", len(products)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	products := make([]fake.Product, 0, len(byID))
	for _, p := range byID {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })

	if err := writeCatalog(out, products); err != nil {
		return errors.Wrapf(err, "write %s", out)
	}

	slog.Info("catalog written", slog.Int("products", len(products)))
	return nil
}

func readProducts(path string) ([]fake.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip reader")
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var products []fake.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "decode products")
	}
	return products, nil
}

func writeCatalog(path string, products []fake.Product) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	gz := pgzip.NewWriter(f)

	if err := json.NewEncoder(gz).Encode(products); err != nil {
		_ = gz.Close()
		_ = f.Close()
		return errors.Wrap(err, "encode products")
	}
	if err := gz.Close(); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "close gzip writer")
	}
	return f.Close()
}

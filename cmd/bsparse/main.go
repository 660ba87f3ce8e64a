// Package main provides the bsparse CLI: it builds a random symmetric
// block-sparse matrix, factorizes it and reports cluster statistics and
// reconstruction residuals.
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/born-ml/bsparse/bcoo"
	"github.com/born-ml/bsparse/internal/logging"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "version":
		fmt.Printf("bsparse %s\n", version)
	case "demo":
		if err := run(os.Args[2:]); err != nil {
			fmt.Fprintf(os.Stderr, "bsparse: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("bsparse - block-sparse tensors for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo       Factorize a random symmetric block-sparse matrix (demo -h for flags)")
}

func run(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	n := fs.Int("n", 256, "matrix size")
	blockSize := fs.Int("b", 16, "block size")
	density := fs.Float64("density", 0.02, "fraction of stored blocks")
	seed := fs.Uint64("seed", 1, "random seed")
	workers := fs.Int("workers", 0, "goroutines per call (0 = one per CPU)")
	sorted := fs.Bool("sort", false, "order eigenvalue clusters by norm")
	levelName := fs.String("log-level", "info", "debug, info, warn or error")
	out := fs.String("out", "", "write the generated matrix to this .bsp file")
	compression := fs.String("compress", "zstd", "none, lz4 or zstd (with -out)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	level, err := logging.ParseLevel(*levelName)
	if err != nil {
		return err
	}
	log := logging.NewText(os.Stderr, level)

	opts := []bcoo.Option{bcoo.WithBlockSort(*sorted), bcoo.WithLogger(log.Logger)}
	if *workers > 0 {
		opts = append(opts, bcoo.WithWorkers(*workers))
	}

	x, err := bcoo.RandomSymmetric[float64](*n, *blockSize, *density, rand.New(rand.NewPCG(*seed, *seed)))
	if err != nil {
		return err
	}
	log.WithShape(x.Shape(), x.BlockShape()).Info("generated matrix",
		"block_nnz", x.BlockNNZ(),
		"density", x.Density(),
	)

	if *out != "" {
		if err := save(*out, x, *compression); err != nil {
			return err
		}
		log.Info("saved matrix", "path", *out, "compression", *compression)
	}

	clusters, err := bcoo.GetClusters(x.Coords(), x.OuterShape())
	if err != nil {
		return err
	}
	largest := 0
	for _, c := range clusters {
		largest = max(largest, len(c))
	}
	log.Info("clusters", "count", len(clusters), "largest", largest)

	start := time.Now()
	vals, vecs, err := bcoo.BlockEigh(x, opts...)
	if err != nil {
		return err
	}
	rec, err := bcoo.EinsumWith("ij,jk,lk->il", []*bcoo.Tensor[float64]{vecs, vals, vecs}, opts...)
	if err != nil {
		return err
	}
	log.Info("eigh", "elapsed", time.Since(start), "residual", residual(rec, x))

	start = time.Now()
	u, s, vt, err := bcoo.BlockSVD(x, opts...)
	if err != nil {
		return err
	}
	rec, err = bcoo.EinsumWith("ij,jk,kl->il", []*bcoo.Tensor[float64]{u, s, vt}, opts...)
	if err != nil {
		return err
	}
	log.Info("svd", "elapsed", time.Since(start), "residual", residual(rec, x))
	return nil
}

// save writes x to path and reads it back to verify the file.
func save(path string, x *bcoo.Tensor[float64], compression string) error {
	var c bcoo.Compression
	switch compression {
	case "none":
		c = bcoo.CompressionNone
	case "lz4":
		c = bcoo.CompressionLZ4
	case "zstd":
		c = bcoo.CompressionZSTD
	default:
		return fmt.Errorf("unknown compression %q", compression)
	}
	opts := bcoo.WriterOptions{
		Compression: c,
		Metadata:    map[string]string{"generator": "bsparse " + version},
	}
	if err := bcoo.Save(path, x, opts); err != nil {
		return err
	}
	y, _, err := bcoo.Load[float64](path, bcoo.ReaderOptions{})
	if err != nil {
		return err
	}
	if !x.Equal(y) {
		return fmt.Errorf("%s: reloaded matrix differs", path)
	}
	return nil
}

// residual returns max |a - b| over all elements.
func residual(a, b *bcoo.Tensor[float64]) float64 {
	diff, err := a.Sub(b)
	if err != nil {
		return -1
	}
	return diff.ToDense().MaxAbs()
}

// Command gzipd decompresses a single GZIP file, writing the result next to
// it with the original extension stripped, grounded on
// src/bin/gzipd.rs's StructOpt-based CLI.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonjohnsonjr/gzipd/gzip"
)

const simulateBufSize = 512 * 1024

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("gzipd failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("gzipd", flag.ExitOnError)
	simulate := fs.Bool("s", false, "decompress without writing output, reporting throughput only")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: gzipd [-s] <input.gz>")
	}
	inputPath := fs.Arg(0)

	f, err := os.Open(inputPath)
	if err != nil {
		return err
	}
	defer f.Close()

	var w io.Writer
	if *simulate {
		w = io.Discard
	} else {
		outPath := withoutExtension(inputPath)
		out, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer out.Close()
		w = out
	}

	start := time.Now()
	written, err := gzip.Decompress(f, w, simulateBufSize)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	mbps := float64(written) / elapsed.Seconds() / (1 << 20)
	slog.Info("decompressed",
		"input", inputPath,
		"bytes", written,
		"elapsed", elapsed,
		"throughput_mb_s", fmt.Sprintf("%.2f", mbps),
		"simulate", *simulate,
	)

	return nil
}

// withoutExtension mirrors PathBuf::with_extension(""): it strips the last
// extension, leaving the directory and base name untouched.
func withoutExtension(path string) string {
	ext := filepath.Ext(path)
	if ext == "" {
		return path
	}
	return strings.TrimSuffix(path, ext)
}

// Command dsrimport loads legacy DSR sheets exported as CSV into the
// database, the same way the web import does.
//
//	dsrimport -dry-run march.csv april.csv
//	dsrimport -skip-duplicates march.csv
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/dsr/internal/config"
	"github.com/JonMunkholm/dsr/internal/core"
	"github.com/JonMunkholm/dsr/internal/database"
	"github.com/JonMunkholm/dsr/internal/logging"
	"github.com/JonMunkholm/dsr/internal/reconcile"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "report what would be imported without writing")
	skipDuplicates := flag.Bool("skip-duplicates", false, "leave out rows whose date already has an entry")
	user := flag.String("user", "dsrimport", "name recorded on imported entries and in the audit log")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: dsrimport [flags] file.csv...")
		flag.PrintDefaults()
		os.Exit(2)
	}

	// Values already in the environment win over .env here.
	_ = godotenv.Load()

	cfg, err := config.LoadCLI()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	service := core.NewService(core.NewPostgresStore(pool), core.ServiceConfig{
		Calculator:           reconcile.NewCalculator(cfg.Outlet.OpeningBalance, cfg.Outlet.Notes),
		Location:             cfg.Outlet.Location(),
		MaxConcurrentImports: 1,
		MaxImportWait:        cfg.Import.MaxWaitTime,
		ImportTimeout:        cfg.Import.Timeout,
	})

	ctx = core.ContextWithUser(ctx, *user)
	failed := false
	for _, path := range flag.Args() {
		if err := importFile(ctx, service, path, cfg.Import.MaxFileSize, core.ImportOptions{
			FileName:       filepath.Base(path),
			SkipDuplicates: *skipDuplicates,
			DryRun:         *dryRun,
		}); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %s\n", path, core.FormatUserError(err))
			slog.Debug("import failed", "file", path, "error", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func importFile(ctx context.Context, service *core.Service, path string, maxSize int64, opts core.ImportOptions) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := core.LimitImport(f, maxSize)
	if err != nil {
		return err
	}

	result, err := service.Import(ctx, r, opts)
	if err != nil {
		return err
	}

	verb := "imported"
	if result.DryRun {
		verb = "would import"
	}
	fmt.Printf("%s: %s %d of %d lines (%d duplicates, %d skipped, %d failed)\n",
		path, verb, result.Imported, result.TotalLines, result.Duplicates, result.Skipped, len(result.Failed))
	for _, row := range result.Failed {
		fmt.Printf("  line %d: %s\n", row.Line, row.Reason)
	}
	return nil
}

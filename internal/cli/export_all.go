package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"formkeeper/internal/export"
)

func newExportAllCmd(e *env) *cobra.Command {
	var dir string
	var fetchTimeout time.Duration
	var concurrency int

	cmd := &cobra.Command{
		Use:   "export-all",
		Short: "Export every record to PDF",
		Long: `Export all of your records to PDF files in the given directory,
fetching and rendering several records in parallel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.flow.Refresh(); err != nil {
				return err
			}
			records := e.flow.Records()
			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, "No records to export.")
				return nil
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			exporter := export.NewExporter(export.NewImageFetcher(fetchTimeout))

			g, gctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(concurrency)
			for _, rec := range records {
				rec := rec
				g.Go(func() error {
					data, err := exporter.Export(gctx, rec)
					if err != nil {
						return fmt.Errorf("export record %s: %w", rec.ID, err)
					}
					out := filepath.Join(dir, fmt.Sprintf("registro-%s.pdf", rec.ID))
					if err := os.WriteFile(out, data, 0o644); err != nil {
						return fmt.Errorf("write %s: %w", out, err)
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Exported %d records to %s.\n", len(records), dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "exports", "Output directory")
	cmd.Flags().DurationVar(&fetchTimeout, "image-timeout", 10*time.Second, "Timeout for fetching each record image")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "How many records to export in parallel")

	return cmd
}

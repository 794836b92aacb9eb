package cli

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"formkeeper/internal/export"
)

func newSubmitCmd(e *env) *cobra.Command {
	var text, imagePath string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a new record",
		Long: `Submit a new record with the given text and an optional image file.
The image is uploaded to object storage first; the record row then
points at the stored object.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.flow.SetText(text)
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				if err := e.flow.AttachImage(data, imagePath); err != nil {
					return err
				}
			}
			rec, err := e.flow.Submit()
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Record %s saved.\n", rec.ID)
			if rec.HasImage() {
				fmt.Fprintf(os.Stdout, "Image stored at %s\n", rec.ImagePath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Record text (required, non-empty)")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to an image file to attach")
	_ = cmd.MarkFlagRequired("text")

	return cmd
}

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.flow.Refresh(); err != nil {
				return err
			}
			records := e.flow.Records()
			if len(records) == 0 {
				fmt.Fprintln(os.Stdout, "No records.")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCREATED\tIMAGE\tTEXT")
			for _, rec := range records {
				image := "-"
				if rec.HasImage() {
					image = rec.ImagePath
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					rec.ID, rec.CreatedAt.Local().Format(time.DateTime), image, truncate(rec.Text, 60))
			}
			return w.Flush()
		},
	}
}

func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete a record and its attached image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := e.flow.Refresh(); err != nil {
				return err
			}
			if err := e.flow.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Record %s deleted.\n", args[0])
			return nil
		},
	}
}

func newExportCmd(e *env) *cobra.Command {
	var outPath string
	var fetchTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "export <record-id>",
		Short: "Export a record to PDF",
		Long: `Export a record to a single-page PDF with its text and, when present,
the attached image scaled to fit the page. An image that cannot be
fetched in time is skipped and the PDF is produced text-only.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, ok := e.sessions.Current()
			if !ok {
				return fmt.Errorf("not signed in")
			}
			rec, err := e.client.GetRecord(session.Token, args[0])
			if err != nil {
				return err
			}
			exporter := export.NewExporter(export.NewImageFetcher(fetchTimeout))
			data, err := exporter.Export(cmd.Context(), rec)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = fmt.Sprintf("registro-%s.pdf", rec.ID)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write pdf: %w", err)
			}
			fmt.Fprintf(os.Stdout, "Exported %s (%d bytes).\n", outPath, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output file (default registro-<id>.pdf)")
	cmd.Flags().DurationVar(&fetchTimeout, "image-timeout", 10*time.Second, "Timeout for fetching the record image")

	return cmd
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

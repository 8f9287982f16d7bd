package main

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"github.com/couchcryptid/fatality-map-service/internal/leaflet"
	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var (
		output  string
		year    string
		minText string
		maxText string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write a static snapshot of the map as HTML",
		Long: `render draws one year of the map into a standalone HTML page. Without
--year the first year is drawn. Without --year, --min or --max the layer is
unfiltered, like the first view of the live map.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx := context.Background()
			if err := a.loadDataset(ctx); err != nil {
				return err
			}

			doc := leaflet.NewDocument(leaflet.Snapshot)
			session := a.svc.NewSession(doc, doc)
			if err := session.Start(ctx); err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("year") || flags.Changed("min") || flags.Changed("max") {
				index := 0
				if flags.Changed("year") {
					seq, err := a.svc.Sequence()
					if err != nil {
						return err
					}
					i, ok := seq.Index(domain.Year(year))
					if !ok {
						return fmt.Errorf("year %q not in dataset (have %v)", year, seq.Years())
					}
					index = i
				}
				doc.SetFilterInputs(minText, maxText)
				if err := session.SelectYear(ctx, index); err != nil {
					return err
				}
			}

			var buf bytes.Buffer
			if err := doc.WriteHTML(&buf); err != nil {
				return err
			}
			if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil { //nolint:gosec // public HTML output
				return fmt.Errorf("write %s: %w", output, err)
			}

			layer := session.Layer()
			cmd.Printf("Map for %s with %d markers saved to %s\n", session.Year(), len(layer.Markers), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "fatality-map.html", "Output HTML file path")
	cmd.Flags().StringVar(&year, "year", "", "Year to draw")
	cmd.Flags().StringVar(&minText, "min", "111", "Minimum fatalities")
	cmd.Flags().StringVar(&maxText, "max", "4500", "Maximum fatalities")

	return cmd
}

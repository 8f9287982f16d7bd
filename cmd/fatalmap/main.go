// Command fatalmap serves and renders the traffic fatality map.
//
// Usage:
//
//	fatalmap serve
//	fatalmap render -o map.html --year 2019 --min 111 --max 4500
//	fatalmap years
//
// Settings come from the environment (DATASET_URL, DATASET_PATH, HTTP_ADDR,
// KAFKA_*, MAPBOX_*, ...).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fatalmap",
		Short: "Proportional-symbol map of U.S. traffic fatalities",
		Long: `fatalmap loads a GeoJSON dataset of traffic fatalities by state and
year and draws it as circle markers scaled by the fatality count.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	rootCmd.AddCommand(newServeCmd(), newRenderCmd(), newYearsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

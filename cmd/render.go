package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/censusmap/internal/census"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Fetch boundary and income data and render the choropleth map",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		output, _ := cmd.Flags().GetString("output")
		zoom, _ := cmd.Flags().GetInt("zoom")
		minDecile, _ := cmd.Flags().GetInt("min-decile")
		join, _ := cmd.Flags().GetString("join")
		noBasemap, _ := cmd.Flags().GetBool("no-basemap")

		opts := defaultPipelineOptions(cfg)
		if zoom != 0 {
			opts.Zoom = zoom
		}
		if minDecile != 0 {
			opts.MinDecile = minDecile
		}
		opts.Basemap = !noBasemap

		switch join {
		case "inner":
			opts.Join = census.JoinInner
		case "outer":
			opts.Join = census.JoinOuter
		default:
			return eris.Errorf("invalid --join %q: want inner or outer", join)
		}

		if output == "" {
			output = cfg.Render.Output
		}

		r, err := runPipeline(ctx, cfg, opts)
		if err != nil {
			return err
		}

		if err := r.WritePNG(output); err != nil {
			return err
		}

		fmt.Printf("wrote %s\n", output)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringP("output", "o", "", "output PNG path (default: from config)")
	renderCmd.Flags().Int("zoom", 0, "basemap tile zoom level (default: from config)")
	renderCmd.Flags().Int("min-decile", 0, "minimum area decile for centroid labels (default: from config)")
	renderCmd.Flags().String("join", "inner", "attribute/geometry join strategy: inner or outer")
	renderCmd.Flags().Bool("no-basemap", false, "skip the basemap tile layer")
	rootCmd.AddCommand(renderCmd)
}

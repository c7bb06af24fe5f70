package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/censusmap/internal/feature"
	"github.com/sells-group/censusmap/internal/tigerweb"
)

var boundariesCmd = &cobra.Command{
	Use:   "boundaries",
	Short: "Fetch the boundary layers and print per-layer status",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		client := newTigerWebClient(cfg)
		reqs := tigerweb.DefaultLayerRequests()
		results := tigerweb.FetchAll(ctx, client, reqs)

		fmt.Printf("%-6s %-24s %8s  %s\n", "LAYER", "NAME", "ROWS", "STATUS")
		fmt.Println(strings.Repeat("-", 70))

		var raws []feature.Raw
		for _, req := range reqs {
			res := results[req.LayerID]
			status := "ok"
			if res.Err != nil {
				status = res.Err.Error()
			} else {
				raws = append(raws, res.Table)
			}
			fmt.Printf("%-6d %-24s %8d  %s\n",
				req.LayerID, tigerweb.LayerNames[req.LayerID], len(res.Table), status)
		}

		feats, err := feature.Coerce(feature.ConcatRaw(raws...))
		if err != nil {
			return eris.Wrap(err, "coerce boundary attributes")
		}
		feats.AssignDeciles(feature.DecileBuckets)

		states := make(map[string]int)
		for _, r := range feats {
			states[r.State]++
		}
		fmt.Printf("\n%d features across %d states\n", len(feats), len(states))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(boundariesCmd)
}

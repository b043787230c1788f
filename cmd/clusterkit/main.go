// Command clusterkit runs exploratory clustering diagnostics on CSV data:
// K-Means, elbow and silhouette sweeps, dendrograms, optimal-k estimation and
// k-distance curves for DBSCAN.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp(os.Stdout).Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		stop()
		os.Exit(1)
	}
}

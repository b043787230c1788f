package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/TrevorS/clusterkit"
	"github.com/TrevorS/clusterkit/chart"
	"github.com/urfave/cli/v3"
	"gonum.org/v1/plot"
)

// kmeansConfig merges command flags over the loaded defaults.
func (a *app) kmeansConfig(cmd *cli.Command) clusterkit.KMeansConfig {
	cfg := clusterkit.DefaultKMeansConfig()
	cfg.K = intOr(cmd, "k", a.cfg.K)
	cfg.Seed = a.cfg.Seed
	if cmd.IsSet(seedFlag) {
		cfg.Seed = cmd.Int64(seedFlag)
	}
	cfg.NInit = intOr(cmd, nInitFlag, a.cfg.NInit)
	cfg.Workers = a.cfg.Workers
	return cfg
}

// savePlot writes p unless --no-plot was given.
func (a *app) savePlot(cmd *cli.Command, p *plot.Plot, size chart.Size) error {
	if cmd.Bool(noPlotFlag) {
		return nil
	}
	path := cmd.String(outFlagName)
	if err := chart.Save(p, size, path); err != nil {
		return err
	}
	slog.Info("plot written", "path", path)
	return nil
}

type kmeansOutput struct {
	K          int         `json:"k" yaml:"k"`
	Inertia    float64     `json:"inertia" yaml:"inertia"`
	Iterations int         `json:"iterations" yaml:"iterations"`
	Labels     []int       `json:"labels" yaml:"labels"`
	Centers    [][]float64 `json:"centers" yaml:"centers"`
}

func (a *app) kmeansCmd() *cli.Command {
	return &cli.Command{
		Name:      "kmeans",
		Usage:     "Cluster the data with K-Means and print labels and inertia",
		ArgsUsage: "<data.csv>",
		Flags: dataFlags(append(kmeansFlags(),
			&cli.IntFlag{Name: "k", Usage: "Number of clusters"},
		)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := a.loadData(cmd)
			if err != nil {
				return err
			}
			cfg := a.kmeansConfig(cmd)
			res, err := clusterkit.KMeans(data, cfg)
			if err != nil {
				return err
			}
			slog.Debug("kmeans finished", "k", cfg.K, "iterations", res.Iterations)
			return a.print(kmeansOutput{
				K:          cfg.K,
				Inertia:    res.Inertia,
				Iterations: res.Iterations,
				Labels:     res.Labels,
				Centers:    res.Centers,
			})
		},
	}
}

func (a *app) elbowCmd() *cli.Command {
	return &cli.Command{
		Name:      "elbow",
		Usage:     "Plot K-Means inertia for k = 1..max-k",
		ArgsUsage: "<data.csv>",
		Flags:     dataFlags(append(append(kmeansFlags(), maxKFlagDef()), plotFlags("elbow.png")...)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := a.loadData(cmd)
			if err != nil {
				return err
			}
			points, err := clusterkit.ElbowMethod(data, intOr(cmd, maxKFlag, a.cfg.MaxK), a.kmeansConfig(cmd))
			if err != nil {
				return err
			}
			p, err := chart.Elbow(points)
			if err != nil {
				return err
			}
			if err := a.savePlot(cmd, p, chart.SizeDefault); err != nil {
				return err
			}
			return a.print(points)
		},
	}
}

type silhouetteOutput struct {
	Best   clusterkit.SilhouettePoint   `json:"best" yaml:"best"`
	Points []clusterkit.SilhouettePoint `json:"points" yaml:"points"`
}

func (a *app) silhouetteCmd() *cli.Command {
	return &cli.Command{
		Name:      "silhouette",
		Usage:     "Plot the K-Means silhouette score for k = 2..max-k",
		ArgsUsage: "<data.csv>",
		Flags:     dataFlags(append(append(kmeansFlags(), maxKFlagDef()), plotFlags("silhouette.png")...)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := a.loadData(cmd)
			if err != nil {
				return err
			}
			points, err := clusterkit.SilhouetteMethod(data, intOr(cmd, maxKFlag, a.cfg.MaxK), a.kmeansConfig(cmd))
			if err != nil {
				return err
			}
			p, err := chart.Silhouette(points)
			if err != nil {
				return err
			}
			if err := a.savePlot(cmd, p, chart.SizeDefault); err != nil {
				return err
			}
			best, _ := clusterkit.BestSilhouette(points)
			return a.print(silhouetteOutput{Best: best, Points: points})
		},
	}
}

type dendrogramOutput struct {
	Method  string       `json:"method" yaml:"method"`
	Leaves  []int        `json:"leaves" yaml:"leaves"`
	Linkage [][4]float64 `json:"linkage" yaml:"linkage"`
}

func (a *app) dendrogramCmd() *cli.Command {
	return &cli.Command{
		Name:      "dendrogram",
		Usage:     "Plot a hierarchical clustering dendrogram",
		ArgsUsage: "<data.csv>",
		Flags:     dataFlags(append([]cli.Flag{methodFlagDef()}, plotFlags("dendrogram.png")...)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := a.loadData(cmd)
			if err != nil {
				return err
			}
			method, err := clusterkit.ParseLinkageMethod(stringOr(cmd, methodFlag, a.cfg.Method))
			if err != nil {
				return err
			}
			z, err := clusterkit.LinkageParallel(data, method, clusterkit.EuclideanMetric{}, a.cfg.Workers)
			if err != nil {
				return err
			}
			layout, err := clusterkit.Dendrogram(z)
			if err != nil {
				return err
			}
			p, err := chart.Dendrogram(layout)
			if err != nil {
				return err
			}
			if err := a.savePlot(cmd, p, chart.SizeWide); err != nil {
				return err
			}
			return a.print(dendrogramOutput{Method: string(method), Leaves: layout.Leaves, Linkage: z})
		},
	}
}

func (a *app) optimalCmd() *cli.Command {
	return &cli.Command{
		Name:      "optimal",
		Usage:     "Estimate the number of clusters of a hierarchical clustering",
		ArgsUsage: "<data.csv>",
		Flags: dataFlags(
			methodFlagDef(),
			maxKFlagDef(),
			&cli.StringFlag{Name: "selection", Usage: "Heuristic [elbow, silhouette, both]"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := a.loadData(cmd)
			if err != nil {
				return err
			}
			method, err := clusterkit.ParseLinkageMethod(stringOr(cmd, methodFlag, a.cfg.Method))
			if err != nil {
				return err
			}
			sel, err := clusterkit.ParseSelection(stringOr(cmd, "selection", a.cfg.Selection))
			if err != nil {
				return err
			}
			cfg := clusterkit.DefaultOptimalConfig()
			cfg.Method = method
			cfg.Selection = sel
			cfg.MaxK = intOr(cmd, maxKFlag, a.cfg.MaxK)
			cfg.Workers = a.cfg.Workers

			opt, err := clusterkit.OptimalClusters(data, cfg)
			if err != nil {
				return err
			}
			return a.print(opt)
		},
	}
}

func (a *app) cutCmd() *cli.Command {
	return &cli.Command{
		Name:      "cut",
		Usage:     "Cut a hierarchical clustering into flat clusters",
		ArgsUsage: "<data.csv>",
		Flags: dataFlags(
			methodFlagDef(),
			&cli.IntFlag{Name: "k", Usage: "Form at most k clusters"},
			&cli.FloatFlag{Name: "distance", Usage: "Cut at this cophenetic distance instead of --k"},
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := a.loadData(cmd)
			if err != nil {
				return err
			}
			method, err := clusterkit.ParseLinkageMethod(stringOr(cmd, methodFlag, a.cfg.Method))
			if err != nil {
				return err
			}
			z, err := clusterkit.LinkageParallel(data, method, clusterkit.EuclideanMetric{}, a.cfg.Workers)
			if err != nil {
				return err
			}

			criterion, t := clusterkit.CriterionMaxClust, float64(intOr(cmd, "k", a.cfg.K))
			if cmd.IsSet("distance") {
				if cmd.IsSet("k") {
					return fmt.Errorf("cut: --k and --distance are mutually exclusive")
				}
				criterion, t = clusterkit.CriterionDistance, cmd.Float("distance")
			}
			labels, err := clusterkit.FlatClusters(z, t, criterion)
			if err != nil {
				return err
			}
			return a.print(map[string]any{"labels": labels})
		},
	}
}

type kdistanceOutput struct {
	K         int       `json:"k" yaml:"k"`
	Metric    string    `json:"metric" yaml:"metric"`
	Distances []float64 `json:"distances" yaml:"distances"`
}

func (a *app) kdistanceCmd() *cli.Command {
	return &cli.Command{
		Name:      "kdistance",
		Usage:     "Plot sorted k-th nearest neighbor distances to choose DBSCAN eps",
		ArgsUsage: "<data.csv>",
		Flags: dataFlags(append([]cli.Flag{
			&cli.IntFlag{Name: "k", Usage: "Neighbor rank, the point itself counting as the first"},
			&cli.StringFlag{Name: "metric", Usage: "Distance metric [cosine, euclidean, manhattan, chebyshev, minkowski, sqeuclidean]"},
		}, plotFlags("kdistance.png")...)...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := a.loadData(cmd)
			if err != nil {
				return err
			}
			name := stringOr(cmd, "metric", a.cfg.Metric)
			metric, err := clusterkit.MetricByName(name)
			if err != nil {
				return err
			}
			k := intOr(cmd, "k", a.cfg.Neighbors)
			if k == 0 {
				k = clusterkit.DefaultKDistanceK
			}
			cfg := clusterkit.DefaultNeighborsConfig()
			cfg.Metric = metric
			cfg.Workers = a.cfg.Workers
			dists, err := clusterkit.KDistancesConfig(data, k, cfg)
			if err != nil {
				return err
			}
			p, err := chart.KDistance(dists, k)
			if err != nil {
				return err
			}
			if err := a.savePlot(cmd, p, chart.SizeDefault); err != nil {
				return err
			}
			return a.print(kdistanceOutput{K: k, Metric: name, Distances: dists})
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/TrevorS/clusterkit/internal/config"
	"github.com/urfave/cli/v3"
)

const forceFlag = "force"

func (a *app) configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the YAML defaults file",
		Commands: []*cli.Command{
			{
				Name:      "init",
				Usage:     "Write the effective settings to a YAML file",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: forceFlag, Usage: "Overwrite an existing file"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					path := cmd.Args().First()
					if path == "" {
						path = "clusterkit.yaml"
					}
					if _, err := os.Stat(path); err == nil && !cmd.Bool(forceFlag) {
						return fmt.Errorf("config init: %s already exists (use --force to overwrite)", path)
					} else if err != nil && !errors.Is(err, os.ErrNotExist) {
						return fmt.Errorf("config init: %w", err)
					}
					if err := config.Save(path, a.cfg); err != nil {
						return err
					}
					slog.Info("config written", "path", path)
					return nil
				},
			},
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tsgonest/tsprefer/internal/config"
	"go.uber.org/zap"
)

func newInitCmd(a *app) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default tsprefer.config.json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.DefaultFileNames[0])

			if _, err := os.Stat(path); err == nil && !force {
				return failure(fmt.Errorf("%s already exists (use --force to overwrite)", path))
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return failure(err)
			}

			cfg := config.DefaultConfig()
			data, err := cfg.Marshal()
			if err != nil {
				return failure(err)
			}
			data = append(data, '\n')
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return failure(fmt.Errorf("writing %s: %w", path, err))
			}

			a.logger.Debug("Wrote config", zap.String("path", path))
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

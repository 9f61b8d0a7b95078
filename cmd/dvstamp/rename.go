package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvstamp/internal/check"
	"github.com/backmassage/dvstamp/internal/config"
	"github.com/backmassage/dvstamp/internal/pipeline"
	"github.com/backmassage/dvstamp/internal/tags"
)

func newRenameCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename [flags] FILE...",
		Short: "Rename files after their recording time and touch them",
		Long: `Rename gives every FILE the name of its recording time (see --format) in
its own directory, keeping the extension, and sets its access and
modification times to the recording time. Existing files are not replaced
without -y.`,
		Example: `  dvstamp rename *.dv
  dvstamp rename --offset +1:00 --format 20060102-150405 DCIM/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.rename(cmd, args)
		},
	}
	config.BindResolveFlags(cmd.Flags(), &a.cfg)
	config.BindRenameFlags(cmd.Flags(), &a.cfg)
	return cmd
}

func (a *app) rename(cmd *cobra.Command, args []string) error {
	cfg := &a.cfg
	a.banner()
	if err := check.CheckDeps(cfg, false, false); err != nil {
		return err
	}

	inputs, err := pipeline.Expand(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no video files in %v", args)
	}

	// exiftool starts only for files that fall back to DateTimeOriginal.
	bridge := tags.New(cfg.ExiftoolPath)
	defer bridge.Close()

	deps := pipeline.Deps{Source: sources(cfg, bridge)}
	return finish(cmd.OutOrStdout(), pipeline.New(cfg, deps, a.log).Rename(cmd.Context(), inputs))
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvstamp/internal/check"
	"github.com/backmassage/dvstamp/internal/config"
	"github.com/backmassage/dvstamp/internal/ffmpeg"
	"github.com/backmassage/dvstamp/internal/metadata"
	"github.com/backmassage/dvstamp/internal/offset"
	"github.com/backmassage/dvstamp/internal/pipeline"
	"github.com/backmassage/dvstamp/internal/probe"
	"github.com/backmassage/dvstamp/internal/tags"
)

func newRenderCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [flags] INPUT... OUTPUT",
		Short: "Burn the recording date and time into a re-encoded copy",
		Long: `Render re-encodes every INPUT with its recording date and time drawn over
the picture. OUTPUT is a file, or a directory that receives one output per
input under the input's name. Directories given as INPUT are searched
recursively for video files. A .dv OUTPUT is written as a raw DV stream
for tape transfer.`,
		Example: `  dvstamp render clip.mov clip.mp4
  dvstamp render --offset -9:00 --ext mp4 tapes/ out/
  dvstamp render --vf "hqdn3d=luma_spatial=2" --encode-args "-c:v libx264 -crf 18" in.dv out.mkv`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd, args[:len(args)-1], args[len(args)-1])
		},
	}
	config.BindResolveFlags(cmd.Flags(), &a.cfg)
	config.BindRenderFlags(cmd.Flags(), &a.cfg, &a.negated)
	return cmd
}

func (a *app) render(cmd *cobra.Command, args []string, output string) error {
	cfg := &a.cfg
	a.banner()
	if err := check.CheckDeps(cfg, !cfg.DryRun, !cfg.DryRun); err != nil {
		return err
	}

	inputs, err := pipeline.Expand(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no video files in %v", args)
	}

	bridge := tags.New(cfg.ExiftoolPath)
	defer bridge.Close()

	var tee io.Writer
	if cfg.Verbose {
		tee = os.Stderr
	}
	deps := pipeline.Deps{
		Source:     sources(cfg, bridge),
		Tags:       bridge,
		Encoder:    &ffmpeg.Runner{Bin: cfg.FFmpegPath, Simulate: cfg.DryRun, Verbose: cfg.Verbose, Tee: tee},
		Invocation: invocation(),
	}
	if cfg.GuessDrift {
		deps.Drift = offset.FilenameDrift{Layout: cfg.StampLayout}
	}
	if cfg.DryRun {
		a.log.Warn("DRY RUN, no files will be written")
	}

	stats, err := pipeline.New(cfg, deps, a.log).Render(cmd.Context(), inputs, output)
	if err != nil {
		return err
	}
	return finish(cmd.OutOrStdout(), stats)
}

// sources routes the capture-time field to exiftool and everything else
// to mediainfo.
func sources(cfg *config.Config, bridge *tags.Bridge) metadata.Source {
	return metadata.NewRouter(probe.NewMediaInfo(cfg.MediainfoPath)).
		Route(bridge, metadata.DateTimeOriginal)
}

// finish prints the batch report and turns failures into the exit status.
func finish(w io.Writer, stats *pipeline.RunStats) error {
	fmt.Fprintln(w)
	stats.Summary(w)
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", stats.Failed, stats.Total)
	}
	return nil
}

package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvstamp/internal/config"
	"github.com/backmassage/dvstamp/internal/display"
	"github.com/backmassage/dvstamp/internal/ffmpeg"
	"github.com/backmassage/dvstamp/internal/logging"
	"github.com/backmassage/dvstamp/internal/term"
)

// app is the state shared by every command of one invocation.
type app struct {
	cfg          config.Config
	negated      config.NegatedFlags
	log          *logging.Logger
	settingsFile string // settings file actually read, "" when none
}

func newRootCmd(a *app) *cobra.Command {
	a.cfg = config.DefaultConfig()

	root := &cobra.Command{
		Use:           "dvstamp",
		Short:         "Stamp videos with their recording time",
		Long:          "dvstamp reads the recording time of camcorder footage from its metadata and\nrenames the files after it or burns it into a re-encoded copy.",
		Version:       version + " (" + commit + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	config.BindSettingsFlags(root.PersistentFlags(), &a.cfg, &a.negated)

	root.AddCommand(
		newRenderCmd(a),
		newRenameCmd(a),
		newCheckCmd(a),
		newConfigCmd(a),
	)
	return root
}

// setup merges the settings file and environment under the parsed flags,
// validates the result and starts the logger.
func (a *app) setup(cmd *cobra.Command) error {
	settings, used, err := config.LoadSettings(cmd.Flags(), a.cfg.ConfigPath)
	if err != nil {
		return err
	}
	a.cfg.Settings = settings
	a.settingsFile = used
	config.ApplyNegated(&a.cfg, &a.negated)
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.NewLogger(&a.cfg)
	if err != nil {
		return err
	}
	a.log = log
	if used != "" {
		log.Debug("Settings from %s", used)
	}
	return nil
}

// banner prints the banner when a person is watching.
func (a *app) banner() {
	if term.IsTerminal(os.Stdout) {
		display.PrintBanner(os.Stdout)
	}
}

// invocation is the command line recorded in the audit comment.
func invocation() string {
	argv := append([]string{filepath.Base(os.Args[0])}, os.Args[1:]...)
	return ffmpeg.CommandLine(argv)
}

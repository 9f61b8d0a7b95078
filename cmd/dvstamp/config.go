package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvstamp/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a settings file with the default values",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteFile(path, config.DefaultSettings(), force); err != nil {
				return err
			}
			a.log.Success("Wrote %s", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Replace an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := config.EncodeTOML(a.cfg.Settings)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if a.settingsFile != "" {
				fmt.Fprintf(out, "# from %s\n", a.settingsFile)
			} else {
				fmt.Fprintln(out, "# no settings file; defaults, environment and flags")
			}
			_, err = out.Write(data)
			return err
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/backmassage/dvstamp/internal/check"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report the external tools and font dvstamp will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.banner()
			if n := check.RunCheck(&a.cfg, a.log); n > 0 {
				return fmt.Errorf("%d problems found", n)
			}
			return nil
		},
	}
}

package main

import (
	"github.com/jcalabro/sketch/cmd/sketch/internal/ipcount"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newIPCountCmd(g *globalFlags) *cobra.Command {
	var targetError float64

	cmd := &cobra.Command{
		Use:   "ipcount <logfile>",
		Short: "Compare exact and HyperLogLog counts of unique IPs in a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := g.options()
			if err != nil {
				return err
			}

			rc, err := ipcount.Open(args[0])
			if err != nil {
				return err
			}
			defer rc.Close()

			ips, err := ipcount.Load(rc)
			if err != nil {
				return err
			}
			log.Info().Int("lines", len(ips)).Str("file", args[0]).Msg("[ipcount] loaded addresses")

			report, err := ipcount.Compare(ips, targetError, opts...)
			if err != nil {
				return err
			}
			log.Debug().Float64("relativeError", report.RelativeError()).Msg("[ipcount] compared")
			return report.WriteTable(cmd.OutOrStdout())
		},
	}
	cmd.Flags().Float64Var(&targetError, "error", 0.01, "target relative standard error")
	return cmd
}

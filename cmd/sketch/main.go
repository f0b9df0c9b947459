// Command sketch drives the sketch library from the command line: it checks
// candidate passwords against a bloom filter and compares exact and
// HyperLogLog distinct counts of the IPs in an access log.
package main

import (
	"fmt"
	"os"

	"github.com/jcalabro/sketch"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type globalFlags struct {
	logLevel string
	hasher   string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "sketch: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "sketch",
		Short:         "Bloom filter and HyperLogLog tools",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogger(cmd, g.logLevel)
		},
	}
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.hasher, "hasher", sketch.XXH3.String(), "hash family (xxh3, murmur3, xxhash)")

	root.AddCommand(newPasswordsCmd(g), newIPCountCmd(g))
	return root
}

func setupLogger(cmd *cobra.Command, level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).With().Timestamp().Logger()
	return nil
}

// options converts the persistent flags into library options.
func (g *globalFlags) options() ([]sketch.Option, error) {
	h, err := sketch.ParseHasher(g.hasher)
	if err != nil {
		return nil, err
	}
	return []sketch.Option{sketch.WithHasher(h)}, nil
}

package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/jcalabro/sketch"
	"github.com/jcalabro/sketch/cmd/sketch/internal/uniq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type passwordsFlags struct {
	size     uint64
	hashes   uint32
	existing []string
	file     string
}

func newPasswordsCmd(g *globalFlags) *cobra.Command {
	f := &passwordsFlags{}

	cmd := &cobra.Command{
		Use:   "passwords [candidate...]",
		Short: "Report whether candidate passwords were already used",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPasswords(cmd, g, f, args)
		},
	}
	cmd.Flags().Uint64Var(&f.size, "size", 1000, "filter size in bits")
	cmd.Flags().Uint32Var(&f.hashes, "hashes", 3, "number of hash functions")
	cmd.Flags().StringSliceVar(&f.existing, "existing", []string{"password123", "admin123", "qwerty123"}, "passwords already in use")
	cmd.Flags().StringVar(&f.file, "file", "", "read candidates from a file, one per line")
	return cmd
}

func runPasswords(cmd *cobra.Command, g *globalFlags, f *passwordsFlags, args []string) error {
	opts, err := g.options()
	if err != nil {
		return err
	}
	filter, err := sketch.NewFilter(f.size, f.hashes, opts...)
	if err != nil {
		return err
	}

	candidates := args
	if f.file != "" {
		lines, err := readLines(f.file)
		if err != nil {
			return err
		}
		candidates = append(candidates, lines...)
	}

	c := uniq.New(filter, uniq.WithLogger(log.Logger))
	if skipped := c.Seed(f.existing...); skipped > 0 {
		log.Warn().Int("skipped", skipped).Msg("[passwords] some existing passwords were invalid")
	}
	log.Debug().
		Uint64("size", filter.Size()).
		Uint32("hashes", filter.K()).
		Float64("fpRate", filter.EstimatedFalsePositiveRate()).
		Msg("[passwords] filter ready")

	out := cmd.OutOrStdout()
	for _, r := range c.CheckAll(candidates) {
		fmt.Fprintf(out, "password '%s' - %s.\n", r.Key, r.Verdict)
	}
	return nil
}

func readLines(path string) ([]string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	var lines []string
	sc := bufio.NewScanner(fh)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}

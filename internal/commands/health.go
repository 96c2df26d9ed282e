package commands

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// NewHealthCommand creates the health command
func NewHealthCommand(opts *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Ping the configured database and print pool statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.source.Health(cmd.Context()); err != nil {
				return fmt.Errorf("%s health check failed: %w", s.source.DatabaseType(), err)
			}
			stats, err := s.source.Stats()
			if err != nil {
				return err
			}
			stats["database_type"] = s.source.DatabaseType()
			stats["status"] = "healthy"

			w := cmd.OutOrStdout()
			if opts.Format != FormatTable {
				return encode(w, opts.Format, stats)
			}

			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.Style().Format.Header = text.FormatDefault
			t.AppendHeader(table.Row{"stat", "value"})
			for _, k := range slices.Sorted(maps.Keys(stats)) {
				t.AppendRow(table.Row{k, stats[k]})
			}
			t.Render()
			return nil
		},
	}
}

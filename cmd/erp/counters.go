package main

import (
	"fmt"
	"strconv"

	"github.com/Spok95/erp-backend/internal/domain/numbering"
	"github.com/spf13/cobra"
)

func newCountersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counters",
		Short: "Inspect document counters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			list, err := numbering.NewRepo(pool).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4s %d\t%s\n", c.Prefix, c.CurrentCode, c.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	seed := &cobra.Command{
		Use:   "seed PREFIX VALUE",
		Short: "Move a counter forward after importing legacy documents",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}
			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			cur, err := numbering.NewRepo(pool).Seed(cmd.Context(), args[0], value)
			if err != nil {
				return err
			}
			a.log.Info("counter seeded", "prefix", args[0], "current", cur)
			return nil
		},
	}
	show := &cobra.Command{
		Use:   "show KIND",
		Short: "Print the current value of one series and the number it will issue next",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := numbering.SeriesFor(numbering.Kind(args[0]))
			if err != nil {
				return err
			}
			pool, err := a.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			cur, err := numbering.NewRepo(pool).Current(cmd.Context(), s.Prefix)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), describeCounter(s, cur))
			return nil
		},
	}
	cmd.AddCommand(seed, show)
	return cmd
}

// describeCounter штрихкоды идут в EAN-13, остальные серии префикс плюс номер.
func describeCounter(s numbering.Series, cur int64) string {
	next := numbering.Format(s.Prefix, cur+1, s.Width)
	if s.Kind == numbering.KindBarcode {
		if code, err := numbering.EAN13(cur + 1); err == nil {
			next = code
		}
	}
	return fmt.Sprintf("%s current=%d next=%s", s.Prefix, cur, next)
}

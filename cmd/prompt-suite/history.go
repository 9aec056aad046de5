package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHistoryCmd(st *cliState) *cobra.Command {
	var modelName string

	cmd := &cobra.Command{
		Use:   "history [name]",
		Short: "Show change history for one prompt or all prompts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			hist, err := s.GetHistory(cmd.Context(), name, modelName)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(hist))
			for n := range hist {
				names = append(names, n)
			}
			sort.Strings(names)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PROMPT\tTIMESTAMP\tACTION\tMODEL")
			for _, n := range names {
				for _, e := range hist[n] {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", n, e.Timestamp, e.Action, e.ModelName)
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&modelName, "model", "", "only entries tagged with this model name")
	return cmd
}

func newClearHistoryCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-history [name]",
		Short: "Drop history for one prompt, or for everything",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.ClearHistory(cmd.Context(), name); err != nil {
				return err
			}
			if name == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "cleared all history")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "cleared history for %q\n", name)
			}
			return nil
		},
	}
}

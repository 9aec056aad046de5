package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newGetCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Show a prompt and its model variants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.GetPrompt(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", p.Name)
			fmt.Fprintf(out, "Default: %s\n", p.DefaultModel)
			fmt.Fprintf(out, "Updated: %s\n\n", p.LastUpdated.Format("2006-01-02 15:04:05"))

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tPARAMETERS\tCONTENT")
			for _, name := range p.ModelNames() {
				m := p.Models[name]
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, strings.Join(m.Parameters, ","), m.Content)
			}
			return tw.Flush()
		},
	}
}

func newInfoCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "info <name>",
		Short: "Show prompt metadata without template contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			info, err := s.GetPromptInfo(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:    %s\n", info.Name)
			fmt.Fprintf(out, "Default: %s\n", info.DefaultModel)
			fmt.Fprintf(out, "Updated: %s\n\n", info.LastUpdated.Format("2006-01-02 15:04:05"))

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "MODEL\tPARAMETERS\tUPDATED")
			for _, name := range info.Models {
				d := info.ModelDetails[name]
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name,
					strings.Join(d.Parameters, ","), d.LastUpdated.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

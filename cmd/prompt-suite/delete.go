package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a prompt (history is kept for restore)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.DeletePrompt(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted prompt %q\n", args[0])
			return nil
		},
	}
}

func newRestoreCmd(st *cliState) *cobra.Command {
	var timestamp string

	cmd := &cobra.Command{
		Use:   "restore <name>",
		Short: "Restore a prompt from its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.RestorePrompt(cmd.Context(), args[0], timestamp)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored prompt %q (default model %q)\n", p.Name, p.DefaultModel)
			return nil
		},
	}

	cmd.Flags().StringVar(&timestamp, "at", "", "exact history timestamp to restore (defaults to the latest entry)")
	return cmd
}

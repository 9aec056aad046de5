package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBackupCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Back up the active prompt set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			id, err := s.Backup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backup created: %s\n", id)
			return nil
		},
	}
}

func newSourceCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "source",
		Short: "Show the configured storage backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			info, err := s.SourceInfo(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mode:    %s\n", info.Mode)
			if info.Path != "" {
				fmt.Fprintf(out, "Path:    %s\n", info.Path)
			}
			if info.Format != "" {
				fmt.Fprintf(out, "Format:  %s\n", info.Format)
			}
			fmt.Fprintf(out, "Prompts: %d\n", info.PromptCount)
			fmt.Fprintf(out, "History: %t\n", info.HasHistory)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAddModelCmd(st *cliState) *cobra.Command {
	var parameters []string

	cmd := &cobra.Command{
		Use:   "add-model <name> <model> <content>",
		Short: "Add a model variant to a prompt",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.AddModel(cmd.Context(), args[0], args[1], args[2], parameters)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added model %q to prompt %q (models: %s)\n",
				args[1], p.Name, strings.Join(p.ModelNames(), ", "))
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&parameters, "param", nil, "declared parameter name (repeatable)")
	return cmd
}

func newUpdateModelCmd(st *cliState) *cobra.Command {
	var parameters []string

	cmd := &cobra.Command{
		Use:   "update-model <name> <model> <content>",
		Short: "Replace a model variant's template",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			if _, err := s.UpdateModel(cmd.Context(), args[0], args[1], args[2], parameters); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated model %q in prompt %q\n", args[1], args[0])
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&parameters, "param", nil, "declared parameter name (repeatable)")
	return cmd
}

func newRemoveModelCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-model <name> <model>",
		Short: "Remove a model variant from a prompt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.RemoveModel(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed model %q from prompt %q (models: %s)\n",
				args[1], p.Name, strings.Join(p.ModelNames(), ", "))
			return nil
		},
	}
}

func newSetDefaultCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "set-default <name> <model>",
		Short: "Set a prompt's default model variant",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.SetDefaultModel(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "default model of %q is now %q\n", p.Name, p.DefaultModel)
			return nil
		},
	}
}

func newRenameCmd(st *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name> <new-name>",
		Short: "Rename a prompt",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.UpdatePrompt(cmd.Context(), args[0], args[1], "")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "renamed prompt %q to %q\n", args[0], p.Name)
			return nil
		},
	}
}

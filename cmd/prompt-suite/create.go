package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type createOptions struct {
	parameters   []string
	defaultModel string
}

func newCreateCmd(st *cliState) *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create <name> <model> <content>",
		Short: "Create a prompt with one initial model variant",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			p, err := s.CreatePrompt(cmd.Context(), args[0], args[1], args[2], opts.parameters, opts.defaultModel)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created prompt %q (default model %q)\n", p.Name, p.DefaultModel)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&opts.parameters, "param", nil, "declared parameter name (repeatable)")
	cmd.Flags().StringVar(&opts.defaultModel, "default", "", "default model name (defaults to the initial model)")
	return cmd
}

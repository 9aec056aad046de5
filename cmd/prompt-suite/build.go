package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type buildOptions struct {
	modelName string
	params    []string
}

func newBuildCmd(st *cliState) *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build <name>",
		Short: "Render a prompt with parameter values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParams(opts.params)
			if err != nil {
				return err
			}

			s, err := st.openSuite()
			if err != nil {
				return err
			}
			defer s.Close()

			rendered, err := s.BuildPrompt(cmd.Context(), args[0], values, opts.modelName)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.modelName, "model", "", "model variant to render (defaults to the prompt's default)")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "parameter value as key=value (repeatable)")
	return cmd
}

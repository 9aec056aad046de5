package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stellarlinkco/prompt-suite/internal/llm"
)

type runOptions struct {
	modelName   string
	provider    string
	system      string
	params      []string
	maxTokens   int
	temperature float64
	showUsage   bool
}

func newRunCmd(st *cliState) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <name>",
		Short: "Render a prompt and send it to a configured provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := parseParams(opts.params)
			if err != nil {
				return err
			}

			cfg, err := st.loadConfig()
			if err != nil {
				return err
			}
			provider, err := llm.ProviderFromConfig(cfg, opts.provider)
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

			maxTokens := opts.maxTokens
			if maxTokens <= 0 {
				maxTokens = cfg.Run.MaxTokens
			}
			temperature := opts.temperature
			if temperature == 0 {
				temperature = cfg.Run.Temperature
			}

			resp, err := provider.Complete(cmd.Context(), &llm.Request{
				System:      opts.system,
				Prompt:      rendered,
				MaxTokens:   maxTokens,
				Temperature: temperature,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Text)
			if opts.showUsage {
				fmt.Fprintf(out, "\n[%s/%s] in=%d out=%d stop=%s\n",
					provider.Name(), resp.Model,
					resp.Usage.InputTokens, resp.Usage.OutputTokens, resp.StopReason)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.modelName, "model", "", "model variant to render (defaults to the prompt's default)")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "llm provider (defaults to config llm.default_provider)")
	cmd.Flags().StringVar(&opts.system, "system", "", "system prompt to send alongside")
	cmd.Flags().StringArrayVar(&opts.params, "param", nil, "parameter value as key=value (repeatable)")
	cmd.Flags().IntVar(&opts.maxTokens, "max-tokens", 0, "max completion tokens")
	cmd.Flags().Float64Var(&opts.temperature, "temperature", 0, "sampling temperature")
	cmd.Flags().BoolVar(&opts.showUsage, "usage", false, "print token usage after the completion")
	return cmd
}

package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(root *rootFlags) *cobra.Command {
	var (
		planning     bool
		interactions int
		dump         bool
	)

	cmd := &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Answer a single prompt",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(root.configPath, wireOptions{
				planningMode: planning,
				logOutput:    cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			if interactions > 0 {
				if err := a.agent.SetInteractions(interactions); err != nil {
					return err
				}
			}

			resp, err := a.agent.ProcessInput(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			if !dump {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), resp)
				return err
			}

			c, err := a.agent.Context()
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(struct {
				Response string `json:"response"`
				Context  any    `json:"context"`
			}{resp, c}, "", "    ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().BoolVar(&planning, "planning", false, "let the copilots deliberate")
	cmd.Flags().IntVar(&interactions, "interactions", 0, "interaction steps per round (default one per copilot)")
	cmd.Flags().BoolVar(&dump, "json", false, "print the response with the context dump as JSON")

	return cmd
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPlanCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <goal, goal, ...>",
		Short: "Assign comma separated goals to the copilots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := wireApp(root.configPath, wireOptions{logOutput: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}

			plan, err := a.agent.Plan(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), plan.String())
			return err
		},
	}
}

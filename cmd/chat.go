package cmd

import (
	"os"
	"path/filepath"

	"github.com/hupe1980/copilotmesh/config"
	"github.com/hupe1980/copilotmesh/internal/shell"
	"github.com/spf13/cobra"
)

func newChatCmd(root *rootFlags) *cobra.Command {
	var (
		conversationID string
		planning       bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session with the agent",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := wireApp(root.configPath, wireOptions{
				conversationID: conversationID,
				planningMode:   planning,
				logOutput:      cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}

			var historyFile string
			if err := os.MkdirAll(config.Dir(), 0o700); err == nil {
				historyFile = filepath.Join(config.Dir(), "readline_history")
			}

			sh := shell.New(a.agent, shell.Config{
				HistoryFile: historyFile,
				Stdout:      cmd.OutOrStdout(),
			})

			return sh.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "conversation id used to key the message history")
	cmd.Flags().BoolVar(&planning, "planning", false, "start with planning mode enabled")

	return cmd
}

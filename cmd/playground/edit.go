package main

import (
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func editCommand() *cobra.Command {
	opts := &pipelineOptions{}
	var debounce time.Duration

	command := &cobra.Command{
		Use:   "edit [path to source]",
		Short: "Edit a watim program with live output",
		Long:  "Edit a watim program; every change is recompiled and rerun after a short pause.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil && !os.IsNotExist(err) {
				return err
			}

			ctx := cmd.Context()
			rt, pg, err := newPlayground(ctx, opts, args[0])
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			m := newEditorModel(ctx, args[0], string(source), pg.Compile)
			m.debounce = debounce
			m.timeout = opts.timeout

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}

	addPipelineFlags(command, opts)
	command.Flags().DurationVar(&debounce, "debounce", 300*time.Millisecond, "pause after the last edit before recompiling")

	return command
}

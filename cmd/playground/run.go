package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wippyai/watim-playground/engine"
	"github.com/wippyai/watim-playground/loader"
	"github.com/wippyai/watim-playground/output"
	"github.com/wippyai/watim-playground/runtime"
)

func runCommand() *cobra.Command {
	var dir, preopenName string
	var timeout time.Duration

	command := &cobra.Command{
		Use:   "run [path or URL to module] [args...]",
		Short: "Run a wasi_unstable command",
		Long:  "Run a wasi_unstable command with a read-only view of a directory.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := withTimeout(cmd.Context(), timeout)
			defer cancel()

			bin, err := readBinary(ctx, args[0])
			if err != nil {
				return err
			}

			var tree loader.Tree
			if dir != "" {
				if tree, err = loader.FromFS(os.DirFS(dir), "."); err != nil {
					return err
				}
			}

			rt, err := runtime.New(ctx, &engine.Config{CloseOnContextDone: timeout > 0})
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			sink := output.AutoRenderer().Styled(output.Writers(os.Stdout, os.Stderr))
			argv := append([]string{programName(args[0])}, args[1:]...)

			res, err := rt.Run(ctx, bin, argv, tree, sink, runtime.WithPreopenName(preopenName))
			if err != nil {
				return err
			}
			if !res.Ran {
				return fmt.Errorf("%s is not a command: it needs a memory and a _start export", args[0])
			}
			if res.ExitCode != 0 {
				return &exitError{code: res.ExitCode}
			}
			return nil
		},
	}

	command.Flags().SetInterspersed(false)
	command.Flags().StringVarP(&dir, "dir", "d", "", "directory served read-only through the root preopen")
	command.Flags().StringVar(&preopenName, "preopen-name", ".", "name reported for the root preopen")
	command.Flags().DurationVar(&timeout, "timeout", 0, "abort the guest after this long (0 means never)")

	return command
}

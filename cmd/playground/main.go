package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "<unknown>"

type rootOptions struct {
	logFile string
	verbose bool
}

func configureCLI() *cobra.Command {
	opts := &rootOptions{}

	rootCommand := &cobra.Command{
		Use:           "playground",
		Short:         "watim playground",
		Long:          "playground - compile and run watim programs on a wasi_unstable host",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(opts)
		},
	}

	rootCommand.AddCommand(runCommand())
	rootCommand.AddCommand(compileCommand())
	rootCommand.AddCommand(editCommand())

	rootCommand.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log host activity to stderr")
	rootCommand.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to this file instead of stderr")

	return rootCommand
}

// exitError carries a guest's non-zero exit code out of a command
type exitError struct {
	code uint32
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCommand := configureCLI()

	if err := rootCommand.ExecuteContext(ctx); err != nil {
		var exit *exitError
		if stderrors.As(err, &exit) {
			stop()
			os.Exit(int(exit.code))
		}

		fmt.Fprintf(os.Stderr, "%v\n", err)
		stop()
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wippyai/watim-playground/output"
	"github.com/wippyai/watim-playground/playground"
)

func addPipelineFlags(command *cobra.Command, opts *pipelineOptions) {
	command.Flags().StringVarP(&opts.compiler, "compiler", "c", "", "path or URL of the watim compiler binary")
	command.Flags().StringArrayVar(&opts.compilerArgs, "arg", nil, "extra compiler argument, placed before the source file")
	command.Flags().StringVar(&opts.library.dir, "std", "", "directory holding the standard library")
	command.Flags().StringVar(&opts.library.url, "std-url", "", "base URL of the standard library")
	command.Flags().StringArrayVar(&opts.library.files, "std-file", nil, "standard library file to fetch from --std-url")
	command.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "abort each run after this long (0 means never)")
	command.MarkFlagRequired("compiler")
}

func compileCommand() *cobra.Command {
	opts := &pipelineOptions{}
	var printWAT bool

	command := &cobra.Command{
		Use:   "compile [path to source]",
		Short: "Compile and run a watim program",
		Long:  "Compile a watim program with the compiler binary, then run the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			rt, pg, err := newPlayground(cmd.Context(), opts, args[0])
			if err != nil {
				return err
			}
			defer rt.Close(cmd.Context())

			ctx, cancel := withTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			sink := output.AutoRenderer().Styled(output.Writers(os.Stdout, os.Stderr))
			out, err := pg.Compile(ctx, string(source), sink)
			if err != nil {
				return err
			}
			if printWAT && out.WAT != "" {
				fmt.Fprint(os.Stdout, out.WAT)
			}
			if !out.Result.Ran {
				if out.Stage == playground.StageCompile {
					return errors.New("compiler binary is not a command")
				}
				return errors.New("compiled program is not a command")
			}
			if out.Result.ExitCode != 0 {
				if out.Stage == playground.StageCompile {
					fmt.Fprintf(os.Stderr, "compiler exited with code %d\n", out.Result.ExitCode)
				}
				return &exitError{code: out.Result.ExitCode}
			}
			return nil
		},
	}

	addPipelineFlags(command, opts)
	command.Flags().BoolVar(&printWAT, "wat", false, "print the generated WAT after the program output")

	return command
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const version = "0.1.0-dev"

// Exit codes.
const (
	exitOK       = 0
	exitProblems = 1 // at least one error-severity diagnostic
	exitFailure  = 2 // usage, config, tsconfig or syntax errors
)

// exitError carries a specific exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// failure wraps err so the process exits with exitFailure.
func failure(err error) error {
	return &exitError{code: exitFailure, err: err}
}

// errProblems signals lint problems that were already reported.
var errProblems = &exitError{code: exitProblems}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err == nil {
		return exitOK
	}

	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintf(stderr, "error: %v\n", ee.err)
		}
		return ee.code
	}
	// Flag parsing and argument validation errors from cobra.
	fmt.Fprintf(stderr, "error: %v\n", err)
	return exitFailure
}

// app holds state shared by all subcommands.
type app struct {
	verbose bool
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{logger: zap.NewNop()}
	lint := &lintOptions{}

	root := &cobra.Command{
		Use:   "tsprefer [paths...]",
		Short: "Lint TypeScript type aliases that should be interfaces or merged literals",
		Long: `tsprefer reports type alias intersections that read better as
'interface X extends A, B { ... }' or as a single object literal type,
and can rewrite them in place.

Running tsprefer without a subcommand is the same as 'tsprefer lint'.`,
		Args:          cobra.ArbitraryArgs,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = newLogger(a.verbose, cmd.ErrOrStderr())
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLint(cmd, args, lint)
		},
	}
	root.SetVersionTemplate("tsprefer {{.Version}}\n")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	addLintFlags(root, lint)

	root.AddCommand(
		newLintCmd(a),
		newRulesCmd(),
		newInitCmd(a),
	)
	return root
}

// newLogger builds the process logger. Logs go to stderr in console
// encoding; only warnings and errors are shown unless verbose is set.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(config),
		zapcore.Lock(zapcore.AddSync(w)),
		zap.NewAtomicLevelAt(level),
	)
	return zap.New(core)
}

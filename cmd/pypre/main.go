package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/raymyers/pypre/pkg/diag"
	"github.com/raymyers/pypre/pkg/preproc"
	"github.com/raymyers/pypre/pkg/symbols"
)

var version = "0.1.0"

// Preprocessor options
var (
	outputFile    string
	defineFlags   []string
	undefineFlags []string
	envFiles      []string
	noEnv         bool
	dumpSymbols   bool
)

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitFatal = 2 // #error directive
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return exitCode(err)
	}
	return exitOK
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if diag.Is(err, diag.FatalKind) {
		return exitFatal
	}
	return exitError
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pypre [file]",
		Short: "pypre resolves #define/#if directives in a text file",
		Long: `pypre is a line-oriented preprocessor. It recognizes #define, #undef,
#ifdef, #ifndef, #if, #else, #endif, #warn and #error, resolves conditional
blocks against a symbol table seeded with the host's Python version, OS and
architecture, and writes the remaining text.

Preset symbols can be overridden with environment variables of the same
name, e.g. PYTHON_VERSION="(3, 9, 1)" or ARCH="'x86_64'".`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := buildPreprocessorOptions(errOut)

			var (
				res *preproc.Result
				err error
			)
			if len(args) == 0 || args[0] == "-" {
				res, err = preproc.PreprocessReader(cmd.InOrStdin(), opts)
			} else {
				res, err = preproc.Preprocess(args[0], opts)
			}
			if err != nil {
				fmt.Fprintf(errOut, "pypre: %v\n", err)
				return err
			}

			if dumpSymbols {
				return writeSymbols(out, res.Symbols)
			}
			return writeOutput(res.Output, out, errOut)
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	addPreprocessorFlags(rootCmd.Flags())

	return rootCmd
}

func addPreprocessorFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&outputFile, "output", "o", "", "Write output to file instead of stdout")
	fs.StringArrayVarP(&defineFlags, "define", "D", nil, "Define symbol (NAME or NAME=VALUE, VALUE in literal syntax)")
	fs.StringArrayVarP(&undefineFlags, "undefine", "U", nil, "Undefine symbol")
	fs.StringArrayVar(&envFiles, "env-file", nil, "Read override variables from a dotenv file")
	fs.BoolVar(&noEnv, "no-env", false, "Ignore overrides from the process environment")
	fs.BoolVar(&dumpSymbols, "dump-symbols", false, "Print the final symbol table as YAML instead of the output")
}

// buildPreprocessorOptions creates preproc.Options from CLI flags
func buildPreprocessorOptions(errOut io.Writer) *preproc.Options {
	return &preproc.Options{
		Defines:   defineFlags,
		Undefines: undefineFlags,
		EnvFiles:  envFiles,
		IgnoreEnv: noEnv,
		Warnings:  errOut,
	}
}

func writeOutput(content string, out, errOut io.Writer) error {
	if outputFile == "" {
		fmt.Fprint(out, content)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(content), 0644); err != nil {
		fmt.Fprintf(errOut, "pypre: error writing %s: %v\n", outputFile, err)
		return err
	}
	return nil
}

// symbolDump is the YAML document written by --dump-symbols.
type symbolDump struct {
	Symbols []symbols.Symbol `yaml:"symbols"`
}

func writeSymbols(w io.Writer, tab *symbols.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(symbolDump{Symbols: tab.Symbols()}); err != nil {
		return fmt.Errorf("encoding symbols: %w", err)
	}
	return enc.Close()
}

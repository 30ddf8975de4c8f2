package main

import (
	"fmt"
	"os"

	cc "github.com/ivanpirog/coloredcobra"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	progress   bool
}

func main() {
	rootCmd := newRootCmd()
	if isTerminal(os.Stdout) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render(err.Error()))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "jfryot [shows|movies]",
		Short: "Export Jellyfin watch history as a Ryot import",
		Long: "jfryot reads the watch state of a Jellyfin user and prints it as a\n" +
			"Ryot import JSON array on standard output.",
		Example: `  jfryot shows > shows.json
  JF_MOVIE_LIBRARY_ID=abc jfryot movies > movies.json`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"shows", "movies"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to an optional configuration file")
	rootCmd.PersistentFlags().BoolVar(&opts.progress, "progress", false, "show a spinner on stderr while exporting")

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(opts),
		newMCPServeCmd(opts),
	)
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "jfryot v%s\n", version)
		},
	}
}

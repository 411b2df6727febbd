// Command aero compiles and serves HTML-first component projects.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	flagDir     string
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:          "aero",
		Short:        "HTML-first component template compiler and dev server",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&flagDir, "dir", "C", ".", "project directory")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	root.AddCommand(serveCmd(), buildCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "aero:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

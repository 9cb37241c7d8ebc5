// Command dettrackd is the entrypoint binary for both the control plane
// and dispatcher daemons, mirroring the single-binary cobra root command
// in the teacher's cmd/root.go (one binary, one subcommand per daemon).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mbari-org/dettrackd/cmd/controlplane"
	"github.com/mbari-org/dettrackd/cmd/dispatcher"
	"github.com/mbari-org/dettrackd/cmd/status"
)

var (
	cfgFile string
	debug   bool

	rootCmd = &cobra.Command{
		Use:   "dettrackd",
		Short: "Video object-detection and tracking job dispatcher",
		Long:  `dettrackd accepts detection jobs over HTTP and dispatches them to containerized tracking workers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to config.yaml")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(controlplane.Command(&cfgFile, &debug))
	rootCmd.AddCommand(dispatcher.Command(&cfgFile, &debug))
	rootCmd.AddCommand(status.Command())
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println("dettrackd version dev")
		},
	})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/feedcache/internal/config"
	"github.com/pders01/feedcache/internal/debuglog"
	"github.com/pders01/feedcache/internal/timeline"
)

// Version is the version of the tool, set at build time
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "feedcache",
		Short:         "Inspect and maintain per-user timeline caches",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file")

	root.AddCommand(
		newShowCmd(&configPath),
		newClearCmd(&configPath),
		newRemoveCmd(&configPath),
		newConfigCmd(),
	)
	return root
}

func newManager(configPath string) (*timeline.Manager, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}
	// No status source: the CLI only reads and removes what is on disk.
	return timeline.NewManager(cfg, nil), nil
}

func newShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <user-id>",
		Short: "Print a user's cached timeline in stored order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(*configPath)
			if err != nil {
				return err
			}
			defer mgr.Close()

			items := mgr.CachedTimeline(args[0])
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no cached timeline")
				return nil
			}
			for _, item := range items {
				gap := ""
				if item.Display.HasMore {
					gap = "\t[gap after]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s%s\n",
					item.ID, item.Display.Author, item.Display.Excerpt, gap)
			}
			return nil
		},
	}
}

func newClearCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear <user-id>",
		Short: "Clear a user's cached timeline, keeping other per-user caches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(*configPath)
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := mgr.ClearCachedTimeline(args[0]); err != nil {
				return fmt.Errorf("clearing timeline: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared timeline cache for %s\n", args[0])
			return nil
		},
	}
}

func newRemoveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user-id>",
		Short: "Remove every per-user cache for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := newManager(*configPath)
			if err != nil {
				return err
			}
			defer mgr.Close()

			if err := mgr.RemoveUser(args[0]); err != nil {
				return fmt.Errorf("removing user caches: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed all caches for %s\n", args[0])
			return nil
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the feedcache configuration file",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path := filepath.Join(home, ".config", "feedcache", "config.toml")
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "generated default configuration at %s\n", path)
			return nil
		},
	})
	return configCmd
}

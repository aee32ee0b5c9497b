package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/thicket/internal/cli"
	"github.com/aretw0/thicket/internal/logging"
	"github.com/spf13/cobra"
)

// Environment fallbacks for persistent flags.
const (
	envDir       = "THICKET_DIR"
	envRedisAddr = "THICKET_REDIS_ADDR"
	envStoreKey  = "THICKET_STORE_KEY"
)

var rootCmd = &cobra.Command{
	Use:   "thicket",
	Short: "Thicket keeps tri-state selections over nested checkbox trees",
	Long: `Thicket loads checkbox trees from YAML, JSON or Markdown documents and keeps
their selection consistent: checking a parent checks every enabled descendant,
and parents of partially checked children are shown as indeterminate.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.String("dir", ".", "Directory containing the tree documents (env "+envDir+")")
	flags.Bool("debug", false, "Enable debug logging on stderr")
	flags.String("store", cli.StoreFile, "Session store: file, memory or redis")
	flags.String("redis-addr", "", "Redis address for --store redis (env "+envRedisAddr+")")
	flags.String("session", "", "Session id to resume and persist")
	flags.String("loader", cli.LoaderFile, "Tree loader: file (YAML/JSON) or loam (Markdown)")
}

// configFrom resolves the persistent flags, falling back to the environment
// for flags the user did not set.
func configFrom(cmd *cobra.Command) cli.Config {
	flags := cmd.Flags()
	c := cli.Config{}
	c.Dir, _ = flags.GetString("dir")
	c.Debug, _ = flags.GetBool("debug")
	c.Store, _ = flags.GetString("store")
	c.RedisAddr, _ = flags.GetString("redis-addr")
	c.SessionID, _ = flags.GetString("session")
	c.Loader, _ = flags.GetString("loader")

	if v := os.Getenv(envDir); v != "" && !flags.Changed("dir") {
		c.Dir = v
	}
	c.StoreKey = os.Getenv(envStoreKey)
	if v := os.Getenv(envRedisAddr); v != "" && !flags.Changed("redis-addr") {
		c.RedisAddr = v
	}
	return c
}

// serverLogger logs at info level on stderr, or debug with --debug.
func serverLogger(c cli.Config) *slog.Logger {
	if c.Debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.New(slog.LevelInfo)
}

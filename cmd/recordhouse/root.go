package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "recordhouse",
	Short: "recordhouse - a small record-store service",
	Long: `Recordhouse serves CRUD APIs over two record collections: an in-memory
book catalog (optionally snapshotted to disk) and a SQLite-backed todo list.

Every setting can also be given through the environment with the RECORDHOUSE_
prefix, e.g. RECORDHOUSE_ADDR=:9090 recordhouse serve.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the recordhouse version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("recordhouse", version)
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.SetEnvPrefix("RECORDHOUSE")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
}

// Path: cmd/pokedex/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running without a subcommand serves.
func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "pokedex",
		Short: "Pokédex catalog service and CLI",
		Long: `pokedex searches the Tyradex Pokémon API, shows entry details
(stats, types, abilities, evolutions, alternate forms) and keeps a locally
persisted list of favorites and a display-theme preference.

Without a subcommand it runs the HTTP/websocket server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./configs/config.yaml)")

	serve := newServeCmd(&configPath)
	root.RunE = serve.RunE
	root.AddCommand(
		serve,
		newShowCmd(&configPath),
		newSearchCmd(&configPath),
		newFavoritesCmd(&configPath),
		newThemeCmd(&configPath),
	)
	return root
}

package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/muse/internal/llm"
	"github.com/alexanderramin/muse/internal/store"
)

// App holds shared dependencies for CLI commands.
type App struct {
	Store       *store.Store
	Client      llm.Client
	RulesDir    string
	Logger      *slog.Logger
	Interactive bool
}

// NewRootCmd creates the top-level "muse" command and registers all
// subcommands against the provided App.
func NewRootCmd(a *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "muse",
		Short: "Ambient writing coach for plain-text drafts",
	}

	root.AddCommand(
		newWatchCmd(a),
		newStatsCmd(a),
		newRulesCmd(a),
	)

	return root
}

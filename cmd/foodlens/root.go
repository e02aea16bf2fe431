package foodlens

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/wisdomie/foodlens/internal/view"
)

var (
	dbPath     string
	apiURLFlag string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "foodlens",
	Short:         "foodlens analyzes food photos and talks to your diet advisor",
	Long:          "foodlens is a terminal client for the food recognition and diet advisor service: photo analysis, meal history, dietary profile and advisor chat.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&apiURLFlag, "api-url", "", "Backend base URL (default http://localhost:5000/api)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests and background failures to stderr")
}

func jsonOut(cmd *cobra.Command, v any) error {
	return view.JSON(cmd.OutOrStdout(), v)
}

// addJSONFlag registers --json on commands that can print raw results.
func addJSONFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().BoolVar(&jsonOutput, "json", false, "Output JSON")
	}
}

// Command shopctl manages a cart slot file and prints its invoice, using the
// same storage contract and pricing rules as the web shop.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cdmoen/Museum/internal/cart"
	"github.com/cdmoen/Museum/internal/platform/observability"
	"github.com/cdmoen/Museum/internal/platform/slot"
)

const defaultSlotFile = "museumCartV1.json"

var (
	slotPath    string
	catalogPath string
	verbose     bool

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "shopctl",
	Short: "Inspect and edit a museum shop cart",
	Long: `shopctl works on a cart slot file holding the same JSON records the
web shop keeps in its cookie: [{id, name, unitPrice, qty, image}].`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !verbose {
			return nil
		}
		l, err := observability.NewLogger("debug")
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		logger = l.Named("shopctl")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&slotPath, "slot", defaultSlotFile, "cart slot file")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog YAML (defaults to the built-in catalog)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug events to stdout")

	rootCmd.AddCommand(addCmd, removeCmd, clearCmd, showCmd, catalogCmd, invoiceCmd)
}

func openStore() (*cart.Store, error) {
	return cart.NewStore(cart.StoreDeps{
		Slot:   slot.NewFile(slotPath),
		Logger: observability.EventLogger(logger),
	})
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// commandContext tolerates commands invoked directly rather than through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

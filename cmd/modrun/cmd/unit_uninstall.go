package cmd

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

var unitUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall a unit",
	Long: `Uninstall a unit and purge its archive.

A unit whose revisions still have dependents is only flagged removal
pending; its archive stays in place until a refresh.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		rt, h := mustUnit(ctx)

		if err := rt.UninstallUnit(ctx, h.ID()); err != nil {
			wrapFatalln("uninstall unit", err)
		}
		if h.IsRemovalPending() {
			log.Printf("unit %d still in use, flagged removal pending", h.ID())
			return
		}
		// the archive content is purged; drop the empty directory too
		dir := filepath.Join(modrunFlags.root.archive, strconv.FormatUint(h.ID(), 10))
		if err := os.RemoveAll(dir); err != nil {
			wrapFatalln("remove unit archive directory", err)
		}
		log.Printf("uninstalled unit %d", h.ID())
	},
}

func init() {
	requiredFlags := []string{addUnitIDFlag(unitUninstallCmd)}

	for _, flag := range requiredFlags {
		if err := unitUninstallCmd.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	unitCmd.AddCommand(unitUninstallCmd)
}

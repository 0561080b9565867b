package cmd

import (
	"context"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var unitUpdateCmd = &cobra.Command{
	Use:   "update [payload]",
	Short: "Update a unit with a new revision",
	Long: `Update a unit with a new revision read from a payload file, or
re-fetched from the unit's original install location when no payload is
given.

The superseded revision stays tracked. When something still depends on
it the unit is flagged removal pending instead of being refreshed in
place.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		rt, h := mustUnit(ctx)

		var content io.Reader
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				wrapFatalln("open payload", err)
			}
			defer f.Close()
			content = f
		}

		if err := rt.UpdateUnit(ctx, h.ID(), content); err != nil {
			wrapFatalln("update unit", err)
		}
		log.Printf("updated unit %d to %s, %d revisions tracked",
			h.ID(), h.String(), len(h.Revisions()))
		if h.IsRemovalPending() {
			log.Println("superseded revisions still in use, unit flagged removal pending")
		}
	},
}

func init() {
	requiredFlags := []string{addUnitIDFlag(unitUpdateCmd)}

	for _, flag := range requiredFlags {
		if err := unitUpdateCmd.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	unitCmd.AddCommand(unitUpdateCmd)
}

package cmd

import (
	"context"
	"log"
	"os"

	"github.com/modrunio/modrun/pkg/store/localfs"
	"github.com/modrunio/modrun/pkg/unit"
	"github.com/spf13/cobra"
)

var unitInstallCmd = &cobra.Command{
	Use:   "install <payload>",
	Short: "Install a unit from a payload file",
	Long: `Install a unit from a payload file.

The payload is a YAML document with a manifest section and an optional
resources section. The new unit's manifest is validated before the
install is accepted; in particular its symbolic name and version must
not collide with another installed unit.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := cliLogger()
		rt, err := loadRuntime(ctx, logger)
		if err != nil {
			wrapFatalln("open archive root", err)
		}

		id := modrunFlags.unit.id
		if id == 0 {
			for _, h := range rt.Units() {
				if h.ID() >= id {
					id = h.ID() + 1
				}
			}
			if id == 0 {
				id = 1
			}
		}

		f, err := os.Open(args[0])
		if err != nil {
			wrapFatalln("open payload", err)
		}
		defer f.Close()

		location := modrunFlags.unit.location
		if location == "" {
			location = "file://" + args[0]
		}
		s, err := localfs.Create(ctx, unitArchiveFs(id), id, location, f)
		if err != nil {
			wrapFatalln("create unit archive", err)
		}
		h, err := unit.New(ctx, s, unit.Facade(rt), unit.Logger(logger))
		if err != nil {
			// leave no half-installed archive behind
			if purgeErr := s.Purge(ctx); purgeErr != nil {
				logger.Error("could not remove rejected unit archive")
			}
			wrapFatalln("validate unit", err)
		}
		rt.Register(h)
		log.Printf("installed unit %d: %s", id, h.String())
	},
}

func init() {
	addUnitIDFlag(unitInstallCmd)
	addLocationFlag(unitInstallCmd)

	unitCmd.AddCommand(unitInstallCmd)
}

package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"github.com/modrunio/modrun/pkg/runtime/local"
	"github.com/modrunio/modrun/pkg/store"
	"github.com/modrunio/modrun/pkg/store/localfs"
	"github.com/modrunio/modrun/pkg/ulog"
	"github.com/modrunio/modrun/pkg/unit"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// unitCmd represents the unit related commands
var unitCmd = &cobra.Command{
	Use:   "unit",
	Short: "Commands to manage units in a local archive",
	Long: `Commands to manage units in a local archive.

A unit archive keeps every installed revision of the unit, its manifest
and resources, plus the persistent lifecycle bookkeeping.`,
}

func init() {
	rootCmd.AddCommand(unitCmd)
}

func cliLogger() *zap.Logger {
	l, err := ulog.New(modrunFlags.root.logLevel, true)
	if err != nil {
		wrapFatalln("invalid log level", err)
	}
	return l
}

// unitArchiveFs roots a file system at one unit's archive directory.
func unitArchiveFs(id uint64) afero.Fs {
	dir := filepath.Join(modrunFlags.root.archive, strconv.FormatUint(id, 10))
	return afero.NewBasePathFs(afero.NewOsFs(), dir)
}

// loadRuntime opens every archive under the archive root and registers
// a handle for it. Archives that fail to open are logged and skipped so
// one broken unit does not take the whole tool down.
func loadRuntime(ctx context.Context, logger *zap.Logger) (*local.Runtime, error) {
	rt := local.New(local.Logger(logger))
	entries, err := os.ReadDir(modrunFlags.root.archive)
	if err != nil {
		if os.IsNotExist(err) {
			return rt, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := strconv.ParseUint(e.Name(), 10, 64)
		if err != nil {
			continue
		}
		s := store.Instrument(logger, localfs.New(unitArchiveFs(id)))
		h, err := unit.New(ctx, s, unit.Facade(rt), unit.Logger(logger))
		if err != nil {
			logger.Error("skipping unreadable unit archive",
				zap.Uint64("unit", id), zap.Error(err))
			continue
		}
		rt.Register(h)
	}
	return rt, nil
}

// mustUnit loads the runtime and resolves the --unit flag.
func mustUnit(ctx context.Context) (*local.Runtime, *unit.Handle) {
	logger := cliLogger()
	rt, err := loadRuntime(ctx, logger)
	if err != nil {
		wrapFatalln("open archive root", err)
	}
	h, ok := rt.Unit(modrunFlags.unit.id)
	if !ok {
		wrapFatalln("unit "+strconv.FormatUint(modrunFlags.unit.id, 10)+" not found in archive", nil)
	}
	return rt, h
}

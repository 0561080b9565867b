package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var unitHeadersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Print a unit's localized manifest",
	Long: `Print a unit's localized manifest.

Header values starting with % are resolved against the unit's
localization resources for the requested locale, probing from the base
resource to the most specific one.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, h := mustUnit(ctx)

		headers, err := h.Headers(ctx, modrunFlags.unit.locale)
		if err != nil {
			wrapFatalln("resolve headers", err)
		}
		buf, err := marshalOutput(headers)
		if err != nil {
			wrapFatalln("render headers", err)
		}
		cmd.Print(string(buf))
	},
}

func init() {
	requiredFlags := []string{addUnitIDFlag(unitHeadersCmd)}
	addLocaleFlag(unitHeadersCmd)

	for _, flag := range requiredFlags {
		if err := unitHeadersCmd.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	unitCmd.AddCommand(unitHeadersCmd)
}

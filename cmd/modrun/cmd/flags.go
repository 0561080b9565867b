package cmd

import (
	"github.com/spf13/cobra"
)

type flagsT struct {
	root struct {
		archive  string
		logLevel string
		format   string
	}
	unit struct {
		id       uint64
		location string
		locale   string
	}
}

var modrunFlags flagsT

func addArchiveFlag(cmd *cobra.Command) string {
	const archive = "archive"
	if cmd != nil {
		cmd.PersistentFlags().StringVar(&modrunFlags.root.archive, archive, "",
			"Root directory of the unit archives")
	}
	return archive
}

func addLogLevelFlag(cmd *cobra.Command) string {
	const logLevel = "loglevel"
	if cmd != nil {
		cmd.PersistentFlags().StringVar(&modrunFlags.root.logLevel, logLevel, "",
			"Log level (debug, info, none)")
	}
	return logLevel
}

func addFormatFlag(cmd *cobra.Command) string {
	const format = "format"
	if cmd != nil {
		cmd.PersistentFlags().StringVar(&modrunFlags.root.format, format, "yaml",
			"Output format (yaml, json)")
	}
	return format
}

func addUnitIDFlag(cmd *cobra.Command) string {
	const unitID = "unit"
	if cmd != nil {
		cmd.Flags().Uint64Var(&modrunFlags.unit.id, unitID, 0,
			"Identifier of the unit")
	}
	return unitID
}

func addLocationFlag(cmd *cobra.Command) string {
	const location = "location"
	if cmd != nil {
		cmd.Flags().StringVar(&modrunFlags.unit.location, location, "",
			"Install location recorded with the unit")
	}
	return location
}

func addLocaleFlag(cmd *cobra.Command) string {
	const locale = "locale"
	if cmd != nil {
		cmd.Flags().StringVar(&modrunFlags.unit.locale, locale, "",
			"Locale used to resolve localizable headers, e.g. en_US")
	}
	return locale
}

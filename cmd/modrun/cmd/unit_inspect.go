package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

// unitDescriptor is the output record of unit inspect.
type unitDescriptor struct {
	ID              uint64 `json:"id" yaml:"id"`
	SymbolicName    string `json:"symbolicName,omitempty" yaml:"symbolicName,omitempty"`
	Version         string `json:"version,omitempty" yaml:"version,omitempty"`
	Location        string `json:"location" yaml:"location"`
	State           string `json:"state" yaml:"state"`
	PersistentState string `json:"persistentState" yaml:"persistentState"`
	StartLevel      int    `json:"startLevel" yaml:"startLevel"`
	LastModified    int64  `json:"lastModified" yaml:"lastModified"`
	Revisions       int    `json:"revisions" yaml:"revisions"`
	RemovalPending  bool   `json:"removalPending,omitempty" yaml:"removalPending,omitempty"`
}

var unitInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Inspect one unit",
	Long:  "Inspect one unit: identity, lifecycle bookkeeping and revision count.",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		_, h := mustUnit(ctx)

		d := unitDescriptor{
			ID:              h.ID(),
			SymbolicName:    h.SymbolicName(),
			Location:        h.Location(),
			State:           h.State().String(),
			PersistentState: h.PersistentState().String(),
			StartLevel:      h.StartLevel(1),
			LastModified:    h.LastModified(),
			Revisions:       len(h.Revisions()),
			RemovalPending:  h.IsRemovalPending(),
		}
		if v := h.Version(); v != nil {
			d.Version = v.String()
		}
		buf, err := marshalOutput(d)
		if err != nil {
			wrapFatalln("render unit descriptor", err)
		}
		cmd.Print(string(buf))
	},
}

func init() {
	requiredFlags := []string{addUnitIDFlag(unitInspectCmd)}

	for _, flag := range requiredFlags {
		if err := unitInspectCmd.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	unitCmd.AddCommand(unitInspectCmd)
}

package cmd

import (
	"bytes"
	"context"
	"log"
	"sort"
	"text/template"

	"github.com/spf13/cobra"
)

var unitListCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed units",
	Long:  "List the units installed under the archive root.",
	Run: func(cmd *cobra.Command, args []string) {
		const listLineTemplateString = `{{.ID}} , {{.SymbolicName}} , {{.Version}} , {{.State}}`
		listLineTemplate := template.Must(template.New("list line").Parse(listLineTemplateString))

		ctx := context.Background()
		logger := cliLogger()
		rt, err := loadRuntime(ctx, logger)
		if err != nil {
			wrapFatalln("open archive root", err)
		}

		units := rt.Units()
		sort.Slice(units, func(i, j int) bool { return units[i].ID() < units[j].ID() })
		for _, h := range units {
			var buf bytes.Buffer
			if err := listLineTemplate.Execute(&buf, h); err != nil {
				log.Println("executing template:", err)
			}
			log.Println(buf.String())
		}
	},
}

func init() {
	unitCmd.AddCommand(unitListCmd)
}

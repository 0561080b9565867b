package cmd

import (
	"bytes"
	"context"
	"log"
	"text/template"

	"github.com/spf13/cobra"
)

var unitRevisionsCmd = &cobra.Command{
	Use:   "revisions",
	Short: "List a unit's revisions",
	Long: `List a unit's revisions, oldest first.

Superseded revisions stay listed until a refresh retires them, since
consumers may still depend on them.`,
	Run: func(cmd *cobra.Command, args []string) {
		const listLineTemplateString = `{{.ID}} , {{.Identity}}`
		listLineTemplate := template.Must(template.New("list line").Parse(listLineTemplateString))

		ctx := context.Background()
		_, h := mustUnit(ctx)

		for _, rev := range h.Revisions() {
			var buf bytes.Buffer
			if err := listLineTemplate.Execute(&buf, rev); err != nil {
				log.Println("executing template:", err)
			}
			log.Println(buf.String())
		}
	},
}

func init() {
	requiredFlags := []string{addUnitIDFlag(unitRevisionsCmd)}

	for _, flag := range requiredFlags {
		if err := unitRevisionsCmd.MarkFlagRequired(flag); err != nil {
			logFatalln(err)
		}
	}

	unitCmd.AddCommand(unitRevisionsCmd)
}

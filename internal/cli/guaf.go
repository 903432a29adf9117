package cli

import (
	_ "embed"
	"fmt"

	"github.com/spf13/cobra"
)

//go:embed banner.txt
var guafBanner string

func (a *App) newGuafCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "guaf",
		Short:  a.tr.T("Guaf guaf", "Woof woof"),
		Hidden: true,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(a.stdout, guafBanner)
		},
	}
}

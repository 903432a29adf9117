package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/render"
)

func (a *App) newAuthCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "auth",
		Short: tr.T("Comandos de autenticación", "Authentication commands"),
	}
	cmd.AddCommand(a.newAuthStatusCmd())
	return cmd
}

func (a *App) newAuthStatusCmd() *cobra.Command {
	tr := a.tr
	var debug bool
	cmd := &cobra.Command{
		Use: "status",
		Short: tr.T(
			"Llama a GET /api/v1/validate e imprime site y api_key_valid",
			"Calls GET /api/v1/validate and prints site and api_key_valid"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			data, err := client.Get(cmd.Context(), "/api/v1/validate", nil)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			a.debugDump(debug, "validate response", data)
			valid := false
			if m, ok := data.(map[string]any); ok {
				valid, _ = m["valid"].(bool)
			}
			render.Panel(a.stdout, "ddogctl auth status",
				"site: "+client.Site(),
				fmt.Sprintf("api_key_valid: %t", valid))
			return nil
		},
	}
	a.debugFlag(cmd, &debug)
	return cmd
}

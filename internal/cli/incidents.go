package cli

import (
	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/render"
)

func (a *App) newIncidentsCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "incidents",
		Short: tr.T("Operaciones sobre Incidents", "Incidents operations"),
	}
	cmd.AddCommand(a.newIncidentsCreateCmd())
	return cmd
}

func (a *App) newIncidentsCreateCmd() *cobra.Command {
	tr := a.tr
	var (
		title    string
		severity string
		debug    bool
	)
	cmd := &cobra.Command{
		Use: "create",
		Short: tr.T(
			"POST /api/v2/incidents con data.type=incidents, attributes.title y attributes.severity",
			"POST /api/v2/incidents with data.type=incidents, attributes.title and attributes.severity"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			payload := map[string]any{
				"data": map[string]any{
					"type": "incidents",
					"attributes": map[string]any{
						"title":    title,
						"severity": severity,
					},
				},
			}
			a.debugDump(debug, "incidents payload", payload)
			data, err := client.Post(cmd.Context(), "/api/v2/incidents", payload)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			render.JSON(a.stdout, data)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", tr.T("Título del incidente", "Incident title"))
	cmd.MarkFlagRequired("title")
	cmd.Flags().StringVar(&severity, "severity", "SEV-2", tr.T("Severidad (p. ej. SEV-1, SEV-2)", "Severity (e.g., SEV-1, SEV-2)"))
	a.debugFlag(cmd, &debug)
	return cmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/render"
)

func (a *App) newDashboardsCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "dashboards",
		Short: tr.T("Operaciones sobre Dashboards", "Dashboards operations"),
	}
	cmd.AddCommand(a.newDashboardsGetCmd())
	return cmd
}

func (a *App) newDashboardsGetCmd() *cobra.Command {
	tr := a.tr
	var (
		id    string
		debug bool
	)
	cmd := &cobra.Command{
		Use: "get",
		Short: tr.T(
			"GET /api/v1/dashboard/{id} y mostrar JSON",
			"GET /api/v1/dashboard/{id} and print JSON"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			data, err := client.Get(cmd.Context(), "/api/v1/dashboard/"+id, nil)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			render.JSON(a.stdout, data)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", tr.T("ID del dashboard", "Dashboard ID"))
	cmd.MarkFlagRequired("id")
	a.debugFlag(cmd, &debug)
	return cmd
}

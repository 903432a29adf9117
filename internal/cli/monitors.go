package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/render"
	"github.com/45p1d4/ddogctl/internal/response"
)

func (a *App) newMonitorsCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "monitors",
		Short: tr.T("Operaciones sobre Monitors", "Monitors operations"),
	}
	cmd.AddCommand(a.newMonitorsListCmd())
	cmd.AddCommand(a.newMonitorsMuteCmd())
	return cmd
}

func (a *App) newMonitorsListCmd() *cobra.Command {
	tr := a.tr
	var (
		name  string
		debug bool
	)
	cmd := &cobra.Command{
		Use: "list",
		Short: tr.T(
			"GET /api/v1/monitor y mostrar tabla: id, name, type, state",
			"GET /api/v1/monitor and render table: id, name, type, state"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			data, err := client.Get(cmd.Context(), "/api/v1/monitor", nil)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			monitors, _ := data.([]any)
			var filtered []map[string]any
			for _, entry := range monitors {
				m, ok := entry.(map[string]any)
				if !ok {
					continue
				}
				if name != "" {
					mname, _ := m["name"].(string)
					if !strings.Contains(strings.ToLower(mname), strings.ToLower(name)) {
						continue
					}
				}
				filtered = append(filtered, m)
			}
			if debug {
				render.JSON(a.stdout, filtered)
				return nil
			}
			table := render.NewTable(a.stdout, "Monitors", nil)
			table.AddColumn("id")
			table.AddColumn("name")
			table.AddColumn("type")
			table.AddColumn("state")
			for _, m := range filtered {
				table.AddRow(response.AttrString(m, "id"),
					response.AttrString(m, "name"),
					response.AttrString(m, "type"),
					response.AttrString(m, "overall_state", "overallState"))
			}
			table.Print()
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", tr.T("Filtro por nombre (substring)", "Name filter (substring)"))
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newMonitorsMuteCmd() *cobra.Command {
	tr := a.tr
	var (
		id    int64
		debug bool
	)
	cmd := &cobra.Command{
		Use: "mute",
		Short: tr.T(
			"POST /api/v1/monitor/{id}/mute y mostrar JSON de respuesta",
			"POST /api/v1/monitor/{id}/mute and print JSON response"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			data, err := client.Post(cmd.Context(), fmt.Sprintf("/api/v1/monitor/%d/mute", id), map[string]any{})
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			render.JSON(a.stdout, data)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, tr.T("ID del monitor a silenciar", "Monitor ID to mute"))
	cmd.MarkFlagRequired("id")
	a.debugFlag(cmd, &debug)
	return cmd
}

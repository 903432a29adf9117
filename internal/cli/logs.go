package cli

import (
	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/query"
	"github.com/45p1d4/ddogctl/internal/render"
	"github.com/45p1d4/ddogctl/internal/response"
	"github.com/45p1d4/ddogctl/internal/timeexpr"
)

// logMessageLimit caps the message column; stack traces routinely blow
// past it.
const logMessageLimit = 400

func (a *App) newLogsCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "logs",
		Short: tr.T("Búsqueda de Logs", "Logs search"),
	}
	cmd.AddCommand(a.newLogsQueryCmd())
	return cmd
}

func (a *App) newLogsQueryCmd() *cobra.Command {
	tr := a.tr
	var (
		from    string
		to      string
		service string
		extra   string
		limit   int
		debug   bool
	)
	cmd := &cobra.Command{
		Use: "query",
		Short: tr.T(
			"POST /api/v2/logs/events/search y mostrar tabla: timestamp, service, status, message",
			"POST /api/v2/logs/events/search and show table: timestamp, service, status, message"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			dtFrom, dtTo, err := a.resolveRange(from, to)
			if err != nil {
				return err
			}
			payload := map[string]any{
				"filter": map[string]any{
					"from":  timeexpr.ISO8601(dtFrom),
					"to":    timeexpr.ISO8601(dtTo),
					"query": query.Build(service, "", extra),
				},
				"page": map[string]any{"limit": limit},
				"sort": "-timestamp",
			}
			data, err := client.Post(cmd.Context(), "/api/v2/logs/events/search", payload)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			if debug {
				render.Rule(a.stdout, "logs search response")
				render.JSON(a.stdout, data)
				return nil
			}
			a.renderLogs(response.Items(data), "Logs", nil)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "-1h", tr.T("Inicio del rango (relativo o ISO)", "Range start (relative or ISO)"))
	cmd.Flags().StringVar(&to, "to", "now", tr.T("Fin del rango (relativo o ISO)", "Range end (relative or ISO)"))
	cmd.Flags().StringVar(&service, "service", "", tr.T("Filtrar por service", "Filter by service"))
	cmd.Flags().StringVar(&extra, "query", "", tr.T("Consulta adicional", "Additional query"))
	cmd.Flags().IntVar(&limit, "limit", 50, tr.T("Límite de eventos", "Events limit"))
	a.debugFlag(cmd, &debug)
	return cmd
}

// renderLogs draws the shared logs table. The service and message fields
// may sit one level deeper under attributes.attributes depending on the
// log pipeline.
func (a *App) renderLogs(items []map[string]any, title string, metadata map[string]string) {
	table := render.NewTable(a.stdout, title, metadata)
	table.AddColumn("timestamp")
	table.AddColumn("service")
	table.AddColumn("status")
	table.AddColumn("message")
	for _, item := range items {
		attrs, _ := item["attributes"].(map[string]any)
		if attrs == nil {
			attrs = map[string]any{}
		}
		nested, _ := attrs["attributes"].(map[string]any)
		service := response.AttrString(nested, "service")
		if service == "" {
			service = response.AttrString(attrs, "service")
		}
		message := response.AttrString(nested, "message")
		if message == "" {
			message = response.AttrString(attrs, "message")
		}
		table.AddRow(
			response.AttrString(attrs, "timestamp"),
			service,
			response.AttrString(attrs, "status"),
			render.Truncate(message, logMessageLimit),
		)
	}
	table.Print()
}

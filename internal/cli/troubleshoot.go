package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/query"
	"github.com/45p1d4/ddogctl/internal/render"
	"github.com/45p1d4/ddogctl/internal/response"
	"github.com/45p1d4/ddogctl/internal/timeexpr"
)

const (
	highErrorRate  = 0.05 // error ratio considered high
	highP95Millis  = 500.0
	topResourceCap = 10
)

func (a *App) newServiceCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "service",
		Short: tr.T("Diagnóstico unificado por servicio", "Unified service troubleshooting"),
	}
	cmd.AddCommand(a.newTroubleshootCmd())
	return cmd
}

func (a *App) newTroubleshootCmd() *cobra.Command {
	tr := a.tr
	var (
		service string
		env     string
		from    string
		cluster string
		debug   bool
	)
	cmd := &cobra.Command{
		Use:   "troubleshoot",
		Short: tr.T("Vista de diagnóstico APM+Logs para un servicio", "Unified APM+Logs troubleshooting view"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			// Range end is always now for this view.
			dtFrom, dtTo, err := a.resolveRange(from, "now")
			if err != nil {
				return err
			}
			payloadFrom := timeexpr.ISO8601(dtFrom)
			payloadTo := timeexpr.ISO8601(dtTo)
			extra := query.ClusterTerm(cluster)
			ctx := cmd.Context()

			// 1. APM overview: totals + p95
			bodyOverview := aggregateBody(payloadFrom, payloadTo,
				query.Build(service, env, extra),
				[]map[string]any{
					{"aggregation": "count"},                    // c0
					{"aggregation": "pc95", "metric": "duration"}, // c1
				}, nil)
			a.debugDump(debug, "APM overview payload", bodyOverview)
			respOverview, err := client.Post(ctx, "/api/v2/spans/analytics/aggregate", bodyOverview)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			a.debugDump(debug, "APM overview response", respOverview)
			overview := response.ComputeValues(respOverview)
			totalCount := overview["c0"]
			p95Millis := response.DurationMillis(overview["c1"])

			// 2. APM errors: count
			bodyErrors := aggregateBody(payloadFrom, payloadTo,
				query.BuildError(service, env, extra),
				countCompute(), nil)
			a.debugDump(debug, "APM errors payload", bodyErrors)
			respErrors, err := client.Post(ctx, "/api/v2/spans/analytics/aggregate", bodyErrors)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			a.debugDump(debug, "APM errors response", respErrors)
			errorCount := response.ComputeValues(respErrors)["c0"]

			// 3. APM top error resources
			bodyTop := aggregateBody(payloadFrom, payloadTo,
				query.BuildError(service, env, extra),
				countCompute(),
				facetGroupBy("resource_name", topResourceCap))
			a.debugDump(debug, "APM top-resources payload", bodyTop)
			respTop, err := client.Post(ctx, "/api/v2/spans/analytics/aggregate", bodyTop)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			a.debugDump(debug, "APM top-resources response", respTop)
			topBuckets := response.Items(respTop)

			// 4. Logs: last 10 error logs
			logsQuery := []string{"service:" + service, "status:error"}
			if env != "" {
				logsQuery = append(logsQuery, "env:"+env)
			}
			if cluster != "" {
				logsQuery = append(logsQuery, "cluster:"+cluster)
			}
			logsPayload := map[string]any{
				"filter": map[string]any{
					"from":  payloadFrom,
					"to":    payloadTo,
					"query": strings.Join(logsQuery, " "),
				},
				"page": map[string]any{"limit": 10},
				"sort": "-timestamp",
			}
			a.debugDump(debug, "Logs search payload", logsPayload)
			logsResp, err := client.Post(ctx, "/api/v2/logs/events/search", logsPayload)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			a.debugDump(debug, "Logs search response", logsResp)
			logItems := response.Items(logsResp)

			metadata := map[string]string{
				"service": service,
				"env":     env,
				"cluster": cluster,
				"from":    from,
			}
			a.renderOverview(totalCount, errorCount, p95Millis, metadata)
			a.renderTopErrors(topBuckets, metadata)
			if len(logItems) == 0 {
				render.Panel(a.stdout, render.Title("Logs", metadata),
					tr.T("No hay datos de logs en el rango seleccionado.", "No logs data in the selected range."))
			} else {
				a.renderLogs(logItems, "Last error logs", metadata)
			}

			a.renderSummary(totalCount, errorCount, p95Millis, topBuckets)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", tr.T("Nombre del servicio", "Service name"))
	cmd.MarkFlagRequired("service")
	cmd.Flags().StringVar(&env, "env", "", tr.T("Entorno (p. ej., prd/dev)", "Environment (e.g., prd/dev)"))
	cmd.Flags().StringVar(&from, "from", "now-1h", tr.T("Inicio del rango", "Range start"))
	cmd.Flags().StringVar(&cluster, "cluster", "", tr.T("Filtrar por cluster:<name>", "Filter by cluster:<name>"))
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) renderOverview(total, errorCount, p95Millis float64, metadata map[string]string) {
	table := render.NewTable(a.stdout, "APM overview", metadata)
	table.AddColumn("metric")
	table.AddColumn("value")
	table.AddRow("total_spans", render.FormatDecimal(total, 0))
	table.AddRow("error_spans", render.FormatDecimal(errorCount, 0))
	table.AddRow("error_rate", fmt.Sprintf("%.2f%%", errorRate(total, errorCount)*100))
	table.AddRow("p95_latency_ms", fmt.Sprintf("%.2f", p95Millis))
	table.Print()
}

func (a *App) renderTopErrors(buckets []map[string]any, metadata map[string]string) {
	table := render.NewTable(a.stdout, "Top error resources (resource_name)", metadata)
	table.AddColumn("resource_name")
	table.AddColumn("count")
	for _, bucket := range buckets {
		table.AddRow(
			response.BucketGroupValue(bucket, "resource_name"),
			render.FormatDecimal(response.BucketCount(bucket), 0),
		)
	}
	table.Print()
}

func (a *App) renderSummary(total, errorCount, p95Millis float64, topBuckets []map[string]any) {
	tr := a.tr
	rate := errorRate(total, errorCount)
	var lines []string
	if rate >= highErrorRate {
		lines = append(lines, fmt.Sprintf(tr.T("- Alta tasa de errores (%.2f%%)", "- High error rate (%.2f%%)"), rate*100))
	} else {
		lines = append(lines, fmt.Sprintf(tr.T("- Tasa de errores baja (%.2f%%)", "- Low error rate (%.2f%%)"), rate*100))
	}
	if p95Millis >= highP95Millis {
		lines = append(lines, fmt.Sprintf(tr.T("- Latencia p95 elevada (%.0f ms)", "- Elevated p95 latency (%.0f ms)"), p95Millis))
	} else {
		lines = append(lines, fmt.Sprintf(tr.T("- Latencia p95 ok (%.0f ms)", "- p95 latency ok (%.0f ms)"), p95Millis))
	}
	var top []string
	for _, bucket := range topBuckets {
		name := response.BucketGroupValue(bucket, "resource_name")
		if name == "" {
			continue
		}
		top = append(top, fmt.Sprintf("%s (%s)", name, render.FormatDecimal(response.BucketCount(bucket), 0)))
		if len(top) == 3 {
			break
		}
	}
	if len(top) > 0 {
		lines = append(lines, tr.T("- Principales recursos con error: ", "- Top error resources: ")+strings.Join(top, ", "))
	}
	render.Panel(a.stdout, tr.T("Resumen", "Summary"), lines...)
}

func errorRate(total, errorCount float64) float64 {
	if total <= 0 {
		return 0
	}
	return errorCount / total
}

package cli

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/query"
	"github.com/45p1d4/ddogctl/internal/render"
	"github.com/45p1d4/ddogctl/internal/response"
	"github.com/45p1d4/ddogctl/internal/timeexpr"
)

// spanErrorLimit caps the error_message column in spans tables.
const spanErrorLimit = 120

func (a *App) newAPMCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "apm",
		Short: tr.T("Operaciones de APM", "APM operations"),
	}
	spans := &cobra.Command{
		Use:   "spans",
		Short: tr.T("Operaciones sobre Spans", "Spans operations"),
	}
	spans.AddCommand(a.newSpansListCmd())
	spans.AddCommand(a.newSpansSearchCmd())
	errors := &cobra.Command{
		Use:   "errors",
		Short: tr.T("Reportes de errores", "Error analytics"),
	}
	errors.AddCommand(a.newErrorsTopResourcesCmd())
	errors.AddCommand(a.newErrorsRateCmd())
	cmd.AddCommand(spans)
	cmd.AddCommand(errors)
	return cmd
}

func (a *App) newSpansListCmd() *cobra.Command {
	tr := a.tr
	var (
		service      string
		env          string
		from         string
		to           string
		limit        int
		extra        string
		sort         string
		durationUnit string
		debug        bool
	)
	cmd := &cobra.Command{
		Use: "list",
		Short: tr.T(
			"GET /api/v2/spans/events con filtros simples por servicio y tiempo",
			"GET /api/v2/spans/events with simple service/time filters"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			dtFrom, dtTo, err := a.resolveRange(from, to)
			if err != nil {
				return err
			}
			params := url.Values{}
			params.Set("filter[query]", query.Build(service, env, extra))
			params.Set("filter[from]", timeexpr.ISO8601(dtFrom))
			params.Set("filter[to]", timeexpr.ISO8601(dtTo))
			params.Set("page[limit]", strconv.Itoa(limit))
			params.Set("sort", sort)
			data, err := client.Get(cmd.Context(), "/api/v2/spans/events", params)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			items := response.Items(data)
			if debug && len(items) > 0 {
				render.Rule(a.stdout, "raw item (GET /spans/events)")
				render.JSON(a.stdout, items[0])
			}
			a.renderSpans(items, durationUnit)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", tr.T("Filtrar por service", "Filter by service"))
	cmd.Flags().StringVar(&env, "env", "", tr.T("Filtrar por env (p.ej. prd/dev)", "Filter by env (e.g., prd/dev)"))
	cmd.Flags().StringVar(&from, "from", "now-15m", tr.T("Inicio del rango", "Range start"))
	cmd.Flags().StringVar(&to, "to", "now", tr.T("Fin del rango", "Range end"))
	cmd.Flags().IntVar(&limit, "limit", 50, "Limit")
	cmd.Flags().StringVar(&extra, "query", "", tr.T("Consulta adicional", "Additional query"))
	cmd.Flags().StringVar(&sort, "sort", "-timestamp", "Sort")
	cmd.Flags().StringVar(&durationUnit, "duration-unit", "auto",
		tr.T("Unidad de duration (auto|ns|us|ms|s)", "Duration unit (auto|ns|us|ms|s)"))
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newSpansSearchCmd() *cobra.Command {
	tr := a.tr
	var (
		q            string
		env          string
		from         string
		to           string
		limit        int
		sort         string
		durationUnit string
		debug        bool
	)
	cmd := &cobra.Command{
		Use: "search",
		Short: tr.T(
			"POST /api/v2/spans/events/search con consulta avanzada",
			"POST /api/v2/spans/events/search with advanced query"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			dtFrom, dtTo, err := a.resolveRange(from, to)
			if err != nil {
				return err
			}
			filterQuery := q
			if filterQuery == "" {
				filterQuery = "*"
			}
			if env != "" {
				filterQuery = query.Build("", env, q)
			}
			payload := map[string]any{
				"data": map[string]any{
					"type": "search_request",
					"attributes": map[string]any{
						"filter": map[string]any{
							"from":  timeexpr.ISO8601(dtFrom),
							"to":    timeexpr.ISO8601(dtTo),
							"query": filterQuery,
						},
						"page": map[string]any{"limit": limit},
						"sort": sort,
					},
				},
			}
			data, err := client.Post(cmd.Context(), "/api/v2/spans/events/search", payload)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			items := response.Items(data)
			if debug && len(items) > 0 {
				render.Rule(a.stdout, "raw item (POST /spans/events/search)")
				render.JSON(a.stdout, items[0])
			}
			a.renderSpans(items, durationUnit)
			return nil
		},
	}
	cmd.Flags().StringVar(&q, "query", "", tr.T("Consulta de spans (Trace Explorer)", "Span query (Trace Explorer)"))
	cmd.MarkFlagRequired("query")
	cmd.Flags().StringVar(&env, "env", "", tr.T("Filtrar por env (p.ej. prd/dev)", "Filter by env (e.g., prd/dev)"))
	cmd.Flags().StringVar(&from, "from", "now-1h", tr.T("Inicio del rango", "Range start"))
	cmd.Flags().StringVar(&to, "to", "now", tr.T("Fin del rango", "Range end"))
	cmd.Flags().IntVar(&limit, "limit", 50, "Limit")
	cmd.Flags().StringVar(&sort, "sort", "-timestamp", "Sort")
	cmd.Flags().StringVar(&durationUnit, "duration-unit", "auto",
		tr.T("Unidad de duration (auto|ns|us|ms|s)", "Duration unit (auto|ns|us|ms|s)"))
	a.debugFlag(cmd, &debug)
	return cmd
}

// spanRow is one rendered spans-table line.
type spanRow struct {
	clock    string
	env      string
	service  string
	resource string
	method   string
	status   string
	duration string
	errMsg   string
}

// renderSpans draws the spans table. Span tags can live under
// attributes.attributes, attributes.custom or attributes.tags, in several
// encodings; they are coalesced before lookup. Columns blank across every
// row are dropped, and an env/service/date shared by all rows folds into
// the title.
func (a *App) renderSpans(items []map[string]any, durationUnit string) {
	rows := make([]spanRow, 0, len(items))
	dates := map[string]bool{}
	envs := map[string]bool{}
	services := map[string]bool{}

	for _, item := range items {
		attrs, _ := item["attributes"].(map[string]any)
		if attrs == nil {
			attrs = map[string]any{}
		}
		nested := response.CoalesceAttrs(attrs["attributes"], attrs["custom"], attrs["tags"])

		// Timestamp: 'timestamp' (ISO) on some payloads, 'start' in ns on others.
		tsRaw := firstPresent(attrs, "timestamp", "start_timestamp", "start")
		date, clock := response.FormatTimestamp(tsRaw)
		if date != "" {
			dates[date] = true
		}

		env := response.AttrString(nested, "env")
		if env == "" {
			env = response.AttrString(attrs, "env")
		}
		service := response.AttrString(nested, "service")
		if service == "" {
			service = response.AttrString(attrs, "service")
		}
		resource := response.AttrString(nested, "resource_name", "resource.name")
		if resource == "" {
			resource = response.AttrString(attrs, "resource_name", "resource")
		}
		if resource == "" {
			resource = response.AttrString(nested, "resource")
		}
		method := response.AttrString(nested, "http.method", "method")
		if method == "" {
			// fall back to the operation name
			method = response.AttrString(attrs, "operation_name")
		}
		status := response.AttrString(nested, "http.status_code", "status_code")
		if status == "" {
			status = response.AttrString(attrs, "status")
		}
		if status == "" {
			status = response.AttrString(nested, "status")
		}
		durationRaw := firstPresent(attrs, "duration")
		if durationRaw == nil {
			durationRaw = firstPresent(nested, "duration", "duration.ms")
		}
		duration := ""
		if v, ok := response.Number(durationRaw); ok {
			duration = fmt.Sprintf("%.3f", response.DurationMillisWithUnit(v, durationUnit))
		}
		errMsg := response.AttrString(nested, "error.message", "error.type", "error", "error.msg")

		rows = append(rows, spanRow{
			clock:    clock,
			env:      env,
			service:  service,
			resource: resource,
			method:   method,
			status:   status,
			duration: duration,
			errMsg:   render.Truncate(errMsg, spanErrorLimit),
		})
		if env != "" {
			envs[env] = true
		}
		if service != "" {
			services[service] = true
		}
	}

	metadata := map[string]string{}
	if len(dates) == 1 {
		metadata["date"] = soleKey(dates)
	}
	if len(envs) == 1 {
		metadata["env"] = soleKey(envs)
	}
	if len(services) == 1 {
		metadata["service"] = soleKey(services)
	}

	var anyEnv, anyService, anyResource, anyMethod, anyStatus, anyDuration, anyError bool
	for _, r := range rows {
		anyEnv = anyEnv || r.env != ""
		anyService = anyService || r.service != ""
		anyResource = anyResource || r.resource != ""
		anyMethod = anyMethod || r.method != ""
		anyStatus = anyStatus || r.status != ""
		anyDuration = anyDuration || r.duration != ""
		anyError = anyError || r.errMsg != ""
	}
	showEnv := len(envs) != 1 && anyEnv
	showService := len(services) != 1 && anyService

	table := render.NewTable(a.stdout, "Spans", metadata)
	table.AddColumn("timestamp")
	if showEnv {
		table.AddColumn("env")
	}
	if showService {
		table.AddColumn("service")
	}
	if anyResource {
		table.AddColumn("resource")
	}
	if anyMethod {
		table.AddColumn("method")
	}
	if anyStatus {
		table.AddColumn("status")
	}
	if anyDuration {
		table.AddColumn("duration_ms")
	}
	if anyError {
		table.AddColumn("error_message")
	}
	for _, r := range rows {
		cells := []string{r.clock}
		if showEnv {
			cells = append(cells, r.env)
		}
		if showService {
			cells = append(cells, r.service)
		}
		if anyResource {
			cells = append(cells, r.resource)
		}
		if anyMethod {
			cells = append(cells, r.method)
		}
		if anyStatus {
			cells = append(cells, r.status)
		}
		if anyDuration {
			cells = append(cells, r.duration)
		}
		if anyError {
			cells = append(cells, r.errMsg)
		}
		table.AddRow(cells...)
	}
	table.Print()
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil && v != "" {
			return v
		}
	}
	return nil
}

func soleKey(set map[string]bool) string {
	for k := range set {
		return k
	}
	return ""
}

// aggregateBody builds the JSON:API aggregate_request payload shared by
// the error-analytics commands and the troubleshoot view.
func aggregateBody(from, to, q string, compute []map[string]any, groupBy []map[string]any) map[string]any {
	attributes := map[string]any{
		"filter": map[string]any{
			"from":  from,
			"to":    to,
			"query": q,
		},
		"compute": compute,
	}
	if len(groupBy) > 0 {
		attributes["group_by"] = groupBy
	}
	return map[string]any{
		"data": map[string]any{
			"type":       "aggregate_request",
			"attributes": attributes,
		},
	}
}

func countCompute() []map[string]any {
	return []map[string]any{{"aggregation": "count"}}
}

func facetGroupBy(facet string, limit int) []map[string]any {
	return []map[string]any{{
		"facet": facet,
		"limit": limit,
		"sort":  map[string]any{"type": "measure", "aggregation": "count", "order": "desc"},
	}}
}

func (a *App) newErrorsTopResourcesCmd() *cobra.Command {
	tr := a.tr
	var (
		service string
		env     string
		from    string
		to      string
		limit   int
		debug   bool
	)
	cmd := &cobra.Command{
		Use: "top-resources",
		Short: tr.T(
			"Agrupa errores por resource_name con aggregates de spans",
			"Group errors by resource_name using spans aggregates"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGroupedErrorCount(cmd, service, env, from, to, "resource_name", limit, debug,
				"Top resources by error count")
		},
	}
	cmd.Flags().StringVar(&service, "service", "", tr.T("Service a analizar", "Service to analyze"))
	cmd.MarkFlagRequired("service")
	cmd.Flags().StringVar(&env, "env", "", tr.T("Filtrar por env (p.ej. prd/dev)", "Filter by env"))
	cmd.Flags().StringVar(&from, "from", "now-24h", tr.T("Inicio del rango", "Range start"))
	cmd.Flags().StringVar(&to, "to", "now", tr.T("Fin del rango", "Range end"))
	cmd.Flags().IntVar(&limit, "limit", 10, "Limit")
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newErrorsRateCmd() *cobra.Command {
	tr := a.tr
	var (
		service string
		groupBy string
		env     string
		from    string
		to      string
		limit   int
		debug   bool
	)
	cmd := &cobra.Command{
		Use: "rate",
		Short: tr.T(
			"Cuenta spans con error agrupados por un campo (p. ej., resource_name)",
			"Count error spans grouped by a field (e.g., resource_name)"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGroupedErrorCount(cmd, service, env, from, to, groupBy, limit, debug,
				"Error count by "+groupBy)
		},
	}
	cmd.Flags().StringVar(&service, "service", "", tr.T("Service a analizar", "Service to analyze"))
	cmd.MarkFlagRequired("service")
	cmd.Flags().StringVar(&groupBy, "group-by", "resource_name", "Facet to group by")
	cmd.Flags().StringVar(&env, "env", "", tr.T("Filtrar por env (p.ej. prd/dev)", "Filter by env"))
	cmd.Flags().StringVar(&from, "from", "now-1h", tr.T("Inicio del rango", "Range start"))
	cmd.Flags().StringVar(&to, "to", "now", tr.T("Fin del rango", "Range end"))
	cmd.Flags().IntVar(&limit, "limit", 10, "Limit")
	a.debugFlag(cmd, &debug)
	return cmd
}

// runGroupedErrorCount runs one grouped error-count aggregate and renders
// facet/count rows.
func (a *App) runGroupedErrorCount(cmd *cobra.Command, service, env, from, to, facet string, limit int, debug bool, title string) error {
	client, err := a.client()
	if err != nil {
		return err
	}
	dtFrom, dtTo, err := a.resolveRange(from, to)
	if err != nil {
		return err
	}
	body := aggregateBody(
		timeexpr.ISO8601(dtFrom), timeexpr.ISO8601(dtTo),
		query.BuildError(service, env, ""),
		countCompute(),
		facetGroupBy(facet, limit),
	)
	a.debugDump(debug, "aggregate payload", body)
	data, err := client.Post(cmd.Context(), "/api/v2/spans/analytics/aggregate", body)
	if err != nil {
		a.debugError(debug, err)
		return err
	}
	a.debugDump(debug, "aggregate response", data)

	table := render.NewTable(a.stdout, title, nil)
	table.AddColumn(facet)
	table.AddColumn("count")
	for _, bucket := range response.Items(data) {
		table.AddRow(
			response.BucketGroupValue(bucket, facet),
			render.FormatDecimal(response.BucketCount(bucket), 2),
		)
	}
	table.Print()
	return nil
}

package cli

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/api"
	"github.com/45p1d4/ddogctl/internal/render"
	"github.com/45p1d4/ddogctl/internal/response"
)

func (a *App) newMetricsCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: tr.T("Operaciones de Métricas", "Metrics operations"),
	}
	cmd.AddCommand(a.newMetricsQueryCmd())
	cmd.AddCommand(a.newK8sResourcesCmd())
	cmd.AddCommand(a.newTagCardinalityCmd())
	return cmd
}

// series is one timeseries of a /api/v1/query response.
type series struct {
	metric string
	scope  string
	points [][2]float64 // [epoch_ms, value]
}

func parseSeries(resp any) []series {
	env, ok := resp.(map[string]any)
	if !ok {
		return nil
	}
	list, _ := env["series"].([]any)
	out := make([]series, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		s := series{
			metric: response.AttrString(m, "metric"),
			scope:  response.AttrString(m, "scope"),
		}
		pointlist, _ := m["pointlist"].([]any)
		for _, p := range pointlist {
			pair, ok := p.([]any)
			if !ok || len(pair) < 2 {
				continue
			}
			ts, tsOK := response.Number(pair[0])
			val, valOK := response.Number(pair[1])
			if tsOK && valOK {
				s.points = append(s.points, [2]float64{ts, val})
			}
		}
		out = append(out, s)
	}
	return out
}

func (s series) lastValue() float64 {
	if len(s.points) == 0 {
		return math.NaN()
	}
	return s.points[len(s.points)-1][1]
}

func (s series) values() []float64 {
	vals := make([]float64, 0, len(s.points))
	for _, p := range s.points {
		vals = append(vals, p[1])
	}
	return vals
}

// scopeTagValue narrows a comma-joined scope to the requested tag, or
// returns the full scope when the tag is absent.
func scopeTagValue(scope, tag string) string {
	if tag == "" {
		return scope
	}
	for _, part := range strings.Split(scope, ",") {
		part = strings.TrimSpace(part)
		if strings.HasPrefix(part, tag+":") {
			return part
		}
	}
	return scope
}

func (a *App) newMetricsQueryCmd() *cobra.Command {
	tr := a.tr
	var (
		q           string
		from        string
		to          string
		rollup      int
		limit       int
		scopeTag    string
		spark       bool
		sparkPoints int
		debug       bool
	)
	cmd := &cobra.Command{
		Use: "query",
		Short: tr.T(
			"Consulta series temporales (GET /api/v1/query) con una métrica/consulta",
			"Query timeseries (GET /api/v1/query) with a metric/query"),
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
			params.Set("from", strconv.FormatInt(dtFrom.Unix(), 10))
			params.Set("to", strconv.FormatInt(dtTo.Unix(), 10))
			params.Set("query", q)
			if rollup > 0 {
				params.Set("rollup", strconv.Itoa(rollup))
			}
			resp, err := client.Get(cmd.Context(), "/api/v1/query", params)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			if debug {
				render.JSON(a.stdout, resp)
				return nil
			}

			all := parseSeries(resp)
			// sort by last value desc; NaN (empty series) sinks to the bottom
			sort.SliceStable(all, func(i, j int) bool {
				vi, vj := all[i].lastValue(), all[j].lastValue()
				if math.IsNaN(vj) {
					return !math.IsNaN(vi)
				}
				if math.IsNaN(vi) {
					return false
				}
				return vi > vj
			})
			if len(all) > limit {
				all = all[:limit]
			}

			table := render.NewTable(a.stdout, "Metrics (latest point per series)", nil)
			table.AddColumn("metric")
			if scopeTag != "" {
				table.AddColumn(scopeTag)
			} else {
				table.AddColumn("scope")
			}
			table.AddColumn("pts")
			table.AddColumn("last_ts")
			table.AddColumn("last")
			table.AddColumn("avg")
			table.AddColumn("min")
			table.AddColumn("max")
			if spark {
				table.AddColumn("spark")
			}
			for _, s := range all {
				var lastTS, last, avg, mn, mx string
				if len(s.points) > 0 {
					end := s.points[len(s.points)-1]
					lastTS = time.Unix(int64(end[0])/1000, 0).UTC().Format(time.TimeOnly)
					last = render.FormatDecimal(end[1], 4)
					vals := s.values()
					sum, lo, hi := 0.0, vals[0], vals[0]
					for _, v := range vals {
						sum += v
						lo = math.Min(lo, v)
						hi = math.Max(hi, v)
					}
					avg = render.FormatDecimal(sum/float64(len(vals)), 4)
					mn = render.FormatDecimal(lo, 4)
					mx = render.FormatDecimal(hi, 4)
				}
				cells := []string{
					s.metric,
					scopeTagValue(s.scope, scopeTag),
					strconv.Itoa(len(s.points)),
					lastTS, last, avg, mn, mx,
				}
				if spark {
					cells = append(cells, render.Sparkline(s.values(), sparkPoints))
				}
				table.AddRow(cells...)
			}
			table.Print()
			return nil
		},
	}
	cmd.Flags().StringVar(&q, "query", "", tr.T("Consulta, p.ej. avg:system.cpu.user{*}", "Query, e.g., avg:system.cpu.user{*}"))
	cmd.MarkFlagRequired("query")
	cmd.Flags().StringVar(&from, "from", "now-1h", tr.T("Inicio del rango", "Range start"))
	cmd.Flags().StringVar(&to, "to", "now", tr.T("Fin del rango", "Range end"))
	cmd.Flags().IntVar(&rollup, "rollup", 0, tr.T("Agregación por segundos (opcional)", "Rollup seconds (optional)"))
	cmd.Flags().IntVar(&limit, "limit", 20, tr.T("Máximo de series a mostrar", "Max series to display"))
	cmd.Flags().StringVar(&scopeTag, "scope-tag", "", tr.T("Mostrar solo este tag del scope (p.ej. kube_deployment)", "Show only this tag from scope (e.g., kube_deployment)"))
	cmd.Flags().BoolVar(&spark, "spark", false, tr.T("Mostrar sparkline (mini-gráfico) por serie", "Show sparkline per series"))
	cmd.Flags().IntVar(&sparkPoints, "spark-points", 30, tr.T("Cantidad de puntos para sparkline", "Points for sparkline"))
	a.debugFlag(cmd, &debug)
	return cmd
}

// queryLastPoint runs one timeseries query and returns the most recent
// value of the first series, or false when there is no data.
func (a *App) queryLastPoint(ctx context.Context, client *api.Client, q string, startS, endS int64, rollup int, debug bool) (float64, bool, error) {
	params := url.Values{}
	params.Set("from", strconv.FormatInt(startS, 10))
	params.Set("to", strconv.FormatInt(endS, 10))
	params.Set("query", q)
	if rollup > 0 {
		params.Set("rollup", strconv.Itoa(rollup))
	}
	resp, err := client.Get(ctx, "/api/v1/query", params)
	if err != nil {
		return 0, false, err
	}
	if debug {
		render.Rule(a.stdout, q)
		render.JSON(a.stdout, resp)
	}
	all := parseSeries(resp)
	if len(all) == 0 || len(all[0].points) == 0 {
		return 0, false, nil
	}
	return all[0].lastValue(), true, nil
}

func (a *App) newK8sResourcesCmd() *cobra.Command {
	tr := a.tr
	var (
		cluster        string
		kubeService    string
		kubeDeployment string
		from           string
		to             string
		rollup         int
		cpuUnit        string
		debug          bool
	)
	cmd := &cobra.Command{
		Use: "k8s-resources",
		Short: tr.T(
			"Resumen CPU/Mem (requests/limits/usage) por servicio/deployment",
			"CPU/Memory summary (requests/limits/usage) per service/deployment"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kubeService == "" && kubeDeployment == "" {
				return fmt.Errorf("one of --kube-service or --kube-deployment is required")
			}
			client, err := a.client()
			if err != nil {
				return err
			}
			dtFrom, dtTo, err := a.resolveRange(from, to)
			if err != nil {
				return err
			}
			start, end := dtFrom.Unix(), dtTo.Unix()

			tagFilter := "cluster:" + cluster
			if kubeService != "" {
				tagFilter += ",kube_service:" + kubeService
			}
			if kubeDeployment != "" {
				tagFilter += ",kube_deployment:" + kubeDeployment
			}

			queries := []string{
				fmt.Sprintf("sum:kubernetes.cpu.requests{%s}", tagFilter),
				fmt.Sprintf("sum:kubernetes.cpu.limits{%s}", tagFilter),
				// cumulative counter as a rate: nanocores per second
				fmt.Sprintf("sum:kubernetes.cpu.usage.total{%s}.as_rate()", tagFilter),
				fmt.Sprintf("sum:kubernetes.memory.requests{%s}", tagFilter),
				fmt.Sprintf("sum:kubernetes.memory.limits{%s}", tagFilter),
				fmt.Sprintf("sum:container.memory.usage{%s}", tagFilter),
			}
			values := make([]float64, len(queries))
			present := make([]bool, len(queries))
			for i, q := range queries {
				v, ok, err := a.queryLastPoint(cmd.Context(), client, q, start, end, rollup, debug)
				if err != nil {
					a.debugError(debug, err)
					return err
				}
				values[i], present[i] = v, ok
			}
			// nanocores -> cores
			if present[2] {
				values[2] /= 1_000_000_000
			}

			fmtCPU := func(idx int) string {
				if !present[idx] {
					return "-"
				}
				if cpuUnit == "mcores" || cpuUnit == "millicores" || cpuUnit == "mcore" {
					return render.FormatDecimal(values[idx]*1000, 4) + " mCores"
				}
				return render.FormatDecimal(values[idx], 4) + " cores"
			}
			fmtMem := func(idx int) string {
				if !present[idx] {
					return "-"
				}
				return render.FormatBytes(values[idx])
			}

			target := kubeService
			if target == "" {
				target = kubeDeployment
			}
			table := render.NewTable(a.stdout, fmt.Sprintf("K8s resources (%s @ %s)", target, cluster), nil)
			table.AddColumn("resource")
			table.AddColumn("requests")
			table.AddColumn("limits")
			table.AddColumn("usage")
			table.AddRow("cpu", fmtCPU(0), fmtCPU(1), fmtCPU(2))
			table.AddRow("memory", fmtMem(3), fmtMem(4), fmtMem(5))
			table.Print()
			return nil
		},
	}
	cmd.Flags().StringVar(&cluster, "cluster", "", "cluster:<name> tag value")
	cmd.MarkFlagRequired("cluster")
	cmd.Flags().StringVar(&kubeService, "kube-service", "", "kube_service tag value")
	cmd.Flags().StringVar(&kubeDeployment, "kube-deployment", "", "kube_deployment tag value")
	cmd.Flags().StringVar(&from, "from", "now-1h", tr.T("Inicio del rango", "Range start"))
	cmd.Flags().StringVar(&to, "to", "now", tr.T("Fin del rango", "Range end"))
	cmd.Flags().IntVar(&rollup, "rollup", 60, tr.T("Agregación por segundos", "Rollup seconds"))
	cmd.Flags().StringVar(&cpuUnit, "cpu-unit", "cores", tr.T("Unidad de CPU (cores|mcores)", "CPU unit (cores|mcores)"))
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newTagCardinalityCmd() *cobra.Command {
	tr := a.tr
	var (
		metric string
		debug  bool
	)
	cmd := &cobra.Command{
		Use: "tag-cardinality",
		Short: tr.T(
			"Cardinalidad por tag (GET /api/v2/metrics/{metric}/tag-cardinality-details)",
			"Tag cardinality (GET /api/v2/metrics/{metric}/tag-cardinality-details)"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.Get(cmd.Context(),
				fmt.Sprintf("/api/v2/metrics/%s/tag-cardinality-details", metric), nil)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			if debug {
				render.JSON(a.stdout, resp)
				return nil
			}
			table := render.NewTable(a.stdout, "Tag cardinality for "+metric, nil)
			table.AddColumn("tag_key")
			table.AddColumn("cardinality")

			// Shape varies; read the common keys, tolerating a list of
			// entries or a map keyed by tag.
			data := resp
			if m, ok := resp.(map[string]any); ok {
				if d, ok := m["data"]; ok && d != nil {
					data = d
				}
			}
			var entries any
			if m, ok := data.(map[string]any); ok {
				entries = m["metrics"]
			}
			switch list := entries.(type) {
			case []any:
				for _, entry := range list {
					e, ok := entry.(map[string]any)
					if !ok {
						continue
					}
					table.AddRow(
						response.AttrString(e, "tag_key", "name"),
						response.AttrString(e, "cardinality", "count"),
					)
				}
			case map[string]any:
				for key, val := range list {
					card := ""
					if m, ok := val.(map[string]any); ok {
						card = response.AttrString(m, "cardinality")
					} else {
						card = response.Stringify(val)
					}
					table.AddRow(key, card)
				}
			}
			table.Print()
			return nil
		},
	}
	cmd.Flags().StringVar(&metric, "metric", "", tr.T("Nombre de la métrica", "Metric name"))
	cmd.MarkFlagRequired("metric")
	a.debugFlag(cmd, &debug)
	return cmd
}

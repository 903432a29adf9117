package cli

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/45p1d4/ddogctl/internal/render"
	"github.com/45p1d4/ddogctl/internal/response"
)

func (a *App) newServicesCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "services",
		Short: tr.T("Service Catalog (Software Catalog v3)", "Service Catalog (Software Catalog v3)"),
	}
	catalog := &cobra.Command{
		Use:   "catalog",
		Short: tr.T("Entidades del catálogo de servicios", "Service catalog entities"),
	}
	catalog.AddCommand(a.newCatalogApplyCmd())
	catalog.AddCommand(a.newCatalogGetCmd())
	catalog.AddCommand(a.newCatalogListCmd())
	definitions := &cobra.Command{
		Use:   "definitions",
		Short: tr.T("Definiciones de servicio (v2)", "Service definitions (v2)"),
	}
	definitions.AddCommand(a.newDefinitionsApplyCmd())
	definitions.AddCommand(a.newDefinitionsGetCmd())
	definitions.AddCommand(a.newDefinitionsListCmd())
	definitions.AddCommand(a.newDefinitionsDeleteCmd())
	cmd.AddCommand(catalog)
	cmd.AddCommand(definitions)
	return cmd
}

// entityPayload builds the v3 software-catalog entity body. Tier must be
// an integer when given; env and team fold into tags.
func entityPayload(service, description, env, team, tier string, tags []string) (map[string]any, error) {
	var tierValue string
	if tier != "" {
		n, err := strconv.Atoi(tier)
		if err != nil {
			return nil, fmt.Errorf("--tier must be an integer (1-4)")
		}
		tierValue = strconv.Itoa(n)
	}
	var allTags []string
	if env != "" {
		allTags = append(allTags, "env:"+env)
	}
	if team != "" {
		allTags = append(allTags, "team:"+team)
	}
	allTags = append(allTags, tags...)

	spec := map[string]any{}
	if tierValue != "" {
		spec["tier"] = tierValue
	}
	return map[string]any{
		"apiVersion": "v3",
		"kind":       "service",
		"metadata": map[string]any{
			"name":        service,
			"displayName": strings.ToUpper(strings.ReplaceAll(service, "-", " ")),
			"description": description,
			"tags":        allTags,
			"owner":       team,
		},
		"spec": spec,
	}, nil
}

func (a *App) renderEntities(items []map[string]any) {
	table := render.NewTable(a.stdout, "Service Catalog", nil)
	table.AddColumn("service")
	table.AddColumn("owner")
	table.AddColumn("tier")
	table.AddColumn("tags")
	for _, item := range items {
		attrs, _ := item["attributes"].(map[string]any)
		schema, _ := item["included_schema"].(map[string]any)
		tier := ""
		if spec, ok := schema["spec"].(map[string]any); ok {
			tier = response.AttrString(spec, "tier")
		}
		var tags []string
		if list, ok := attrs["tags"].([]any); ok {
			for _, t := range list {
				tags = append(tags, response.Stringify(t))
			}
		}
		table.AddRow(
			response.AttrString(attrs, "name"),
			response.AttrString(attrs, "owner"),
			tier,
			strings.Join(tags, ", "),
		)
	}
	table.Print()
}

func (a *App) newCatalogApplyCmd() *cobra.Command {
	tr := a.tr
	var (
		service     string
		description string
		env         string
		team        string
		tier        string
		tags        []string
		debug       bool
	)
	cmd := &cobra.Command{
		Use:   "apply",
		Short: tr.T("Crear o actualizar una entidad del catálogo (v3)", "Create or update a Service Catalog entity (v3)"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			payload, err := entityPayload(service, description, env, team, tier, tags)
			if err != nil {
				return err
			}
			a.debugDump(debug, "software-catalog payload", payload)
			resp, err := client.Post(cmd.Context(), "/api/v2/catalog/entity", payload)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			render.JSON(a.stdout, resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "Service name")
	cmd.MarkFlagRequired("service")
	cmd.Flags().StringVar(&description, "description", "", "Service description")
	cmd.Flags().StringVar(&env, "env", "", "Environment tag")
	cmd.Flags().StringVar(&team, "team", "", "Owning team")
	cmd.Flags().StringVar(&tier, "tier", "", "Service tier (1-4)")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Extra tag key:value")
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newCatalogGetCmd() *cobra.Command {
	tr := a.tr
	var (
		service string
		debug   bool
	)
	cmd := &cobra.Command{
		Use:   "get",
		Short: tr.T("Obtener una entidad del catálogo por nombre", "Get a Service Catalog entity by name"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			params := url.Values{}
			params.Set("filter[name]", service)
			resp, err := client.Get(cmd.Context(), "/api/v2/catalog/entity", params)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			if debug {
				render.JSON(a.stdout, resp)
				return nil
			}
			a.renderEntities(response.Items(resp))
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "Service name")
	cmd.MarkFlagRequired("service")
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newCatalogListCmd() *cobra.Command {
	tr := a.tr
	var debug bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: tr.T("Listar entidades del catálogo", "List Service Catalog entities"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.Get(cmd.Context(), "/api/v2/catalog/entity", nil)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			if debug {
				render.JSON(a.stdout, resp)
				return nil
			}
			a.renderEntities(response.Items(resp))
			return nil
		},
	}
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) renderDefinitions(items []map[string]any) {
	table := render.NewTable(a.stdout, "Service Definitions", nil)
	table.AddColumn("service")
	table.AddColumn("schema_version")
	table.AddColumn("team")
	for _, item := range items {
		attrs, _ := item["attributes"].(map[string]any)
		schema, _ := attrs["schema"].(map[string]any)
		name := response.AttrString(schema, "dd-service")
		if name == "" {
			name = response.AttrString(item, "id")
		}
		table.AddRow(
			name,
			response.AttrString(schema, "schema-version"),
			response.AttrString(schema, "team"),
		)
	}
	table.Print()
}

func (a *App) newDefinitionsApplyCmd() *cobra.Command {
	tr := a.tr
	var (
		file  string
		debug bool
	)
	cmd := &cobra.Command{
		Use: "apply",
		Short: tr.T(
			"POST /api/v2/services/definitions desde un YAML de definición",
			"POST /api/v2/services/definitions from a definition YAML"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read definition file: %w", err)
			}
			var payload map[string]any
			if err := yaml.Unmarshal(raw, &payload); err != nil {
				return fmt.Errorf("failed to parse definition file: %w", err)
			}
			a.debugDump(debug, "service-definition payload", payload)
			resp, err := client.Post(cmd.Context(), "/api/v2/services/definitions", payload)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			render.JSON(a.stdout, resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", tr.T("Ruta al YAML de definición", "Path to the definition YAML"))
	cmd.MarkFlagRequired("file")
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newDefinitionsGetCmd() *cobra.Command {
	tr := a.tr
	var (
		service string
		debug   bool
	)
	cmd := &cobra.Command{
		Use: "get",
		Short: tr.T(
			"GET /api/v2/services/definitions/{service}",
			"GET /api/v2/services/definitions/{service}"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.Get(cmd.Context(), "/api/v2/services/definitions/"+service, nil)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			render.JSON(a.stdout, resp)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "Service name")
	cmd.MarkFlagRequired("service")
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newDefinitionsListCmd() *cobra.Command {
	tr := a.tr
	var debug bool
	cmd := &cobra.Command{
		Use: "list",
		Short: tr.T(
			"GET /api/v2/services/definitions y mostrar tabla",
			"GET /api/v2/services/definitions and render table"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.Get(cmd.Context(), "/api/v2/services/definitions", nil)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			if debug {
				render.JSON(a.stdout, resp)
				return nil
			}
			a.renderDefinitions(response.Items(resp))
			return nil
		},
	}
	a.debugFlag(cmd, &debug)
	return cmd
}

func (a *App) newDefinitionsDeleteCmd() *cobra.Command {
	tr := a.tr
	var (
		service string
		debug   bool
	)
	cmd := &cobra.Command{
		Use: "delete",
		Short: tr.T(
			"DELETE /api/v2/services/definitions/{service}",
			"DELETE /api/v2/services/definitions/{service}"),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			resp, err := client.Delete(cmd.Context(), "/api/v2/services/definitions/"+service)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			if resp != nil {
				render.JSON(a.stdout, resp)
			}
			fmt.Fprintf(a.stdout, "deleted %s\n", service)
			return nil
		},
	}
	cmd.Flags().StringVar(&service, "service", "", "Service name")
	cmd.MarkFlagRequired("service")
	a.debugFlag(cmd, &debug)
	return cmd
}

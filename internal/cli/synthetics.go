package cli

import (
	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/render"
)

func (a *App) newSyntheticsCmd() *cobra.Command {
	tr := a.tr
	cmd := &cobra.Command{
		Use:   "synthetics",
		Short: tr.T("Operaciones sobre Synthetics", "Synthetics operations"),
	}
	cmd.AddCommand(a.newSyntheticsTriggerCmd())
	return cmd
}

func (a *App) newSyntheticsTriggerCmd() *cobra.Command {
	tr := a.tr
	var (
		publicIDs []string
		debug     bool
	)
	cmd := &cobra.Command{
		Use: "trigger",
		Short: tr.T(
			`POST /api/v1/synthetics/tests/trigger con body {"tests":[{"public_id":"..."}]}`,
			`POST /api/v1/synthetics/tests/trigger with body {"tests":[{"public_id":"..."}]}`),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.client()
			if err != nil {
				return err
			}
			tests := make([]map[string]any, 0, len(publicIDs))
			for _, pid := range publicIDs {
				tests = append(tests, map[string]any{"public_id": pid})
			}
			payload := map[string]any{"tests": tests}
			a.debugDump(debug, "synthetics trigger payload", payload)
			data, err := client.Post(cmd.Context(), "/api/v1/synthetics/tests/trigger", payload)
			if err != nil {
				a.debugError(debug, err)
				return err
			}
			render.JSON(a.stdout, data)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&publicIDs, "public-id", nil,
		tr.T("Public ID del test (repetible)", "Public ID of the test (repeatable)"))
	cmd.MarkFlagRequired("public-id")
	a.debugFlag(cmd, &debug)
	return cmd
}

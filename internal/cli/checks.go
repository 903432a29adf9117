package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/45p1d4/ddogctl/internal/render"
)

// Commands that intentionally carry no --debug flag: they never talk to
// the API.
var debugExempt = map[string]bool{
	"guaf":              true,
	"checks debug-flags": true,
}

func (a *App) newChecksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "checks",
		Short:  "Internal self-checks",
		Hidden: true,
	}
	cmd.AddCommand(a.newDebugFlagsCmd())
	return cmd
}

// newDebugFlagsCmd walks the command tree and verifies every API-facing
// leaf registers --debug. The walk inspects the tree itself rather than
// rendered help output, so renames and new commands are caught.
func (a *App) newDebugFlagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "debug-flags",
		Short: "Verify every leaf command registers --debug",
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			leaves := collectLeaves(root)
			sort.Slice(leaves, func(i, j int) bool { return leaves[i].path < leaves[j].path })

			table := render.NewTable(a.stdout, "Leaf command debug flags", nil)
			table.AddColumn("command")
			table.AddColumn("debug")
			var missing []string
			for _, leaf := range leaves {
				status := "ok"
				switch {
				case debugExempt[leaf.path]:
					status = "exempt"
				case !leaf.hasDebug:
					status = "MISSING"
					missing = append(missing, leaf.path)
				}
				table.AddRow(leaf.path, status)
			}
			table.Print()
			if len(missing) > 0 {
				return fmt.Errorf("commands missing --debug: %s", strings.Join(missing, ", "))
			}
			return nil
		},
	}
}

type leafInfo struct {
	path     string
	hasDebug bool
}

func collectLeaves(cmd *cobra.Command) []leafInfo {
	var out []leafInfo
	children := visibleChildren(cmd)
	if len(children) == 0 {
		out = append(out, leafInfo{
			path:     commandPath(cmd),
			hasDebug: cmd.Flags().Lookup("debug") != nil,
		})
		return out
	}
	for _, child := range children {
		out = append(out, collectLeaves(child)...)
	}
	return out
}

func visibleChildren(cmd *cobra.Command) []*cobra.Command {
	var out []*cobra.Command
	for _, child := range cmd.Commands() {
		if child.Name() == "help" || child.Name() == "completion" {
			continue
		}
		out = append(out, child)
	}
	return out
}

// commandPath is cmd.CommandPath without the root binary name.
func commandPath(cmd *cobra.Command) string {
	full := cmd.CommandPath()
	if i := strings.IndexByte(full, ' '); i >= 0 {
		return full[i+1:]
	}
	return full
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nk-xbrl/jpxbrl/pkg/filingset"
	"github.com/nk-xbrl/jpxbrl/pkg/source"
	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
)

var (
	treeRole string
	treeKind string
)

var treeCmd = &cobra.Command{
	Use:   "tree <filing-dir>",
	Short: "Print one role's linkbase tree after schema and label enrichment",
	Long: `tree parses the requested linkbase (presentation by default) out of
a filing directory, enriches it against the taxonomy schema and label
linkbase when present, and prints the resulting tree for the given role.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir := args[0]

		set, err := filingset.Resolve(dir)
		if err != nil {
			return err
		}

		kind, linkbasePath, err := linkKindAndPath(treeKind, set)
		if err != nil {
			return err
		}

		provider, err := source.NewProvider(cacheDir, rateLimit)
		if err != nil {
			return err
		}
		provider.SetLogger(logger)

		tr, err := provider.FetchLinkbase(ctx, kind, linkbasePath, dirBaseURI(dir))
		if err != nil {
			return err
		}

		if set.SchemaPath != "" {
			if err := xbrl.EnrichSchema(ctx, tr, treeRole, provider); err != nil {
				return err
			}
		}
		if set.LabelPath != "" {
			analyzer, err := xbrl.LoadLabels(ctx, provider, set.SchemaPath, cacheDir)
			if err != nil {
				return err
			}
			if err := xbrl.EnrichLabels(tr, treeRole, analyzer); err != nil {
				return err
			}
		}

		roleHandle, ok := tr.RoleHandle(treeRole)
		if !ok {
			return fmt.Errorf("role %q not found in %s linkbase", treeRole, treeKind)
		}
		printTree(cmd, tr, roleHandle, 0)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().StringVar(&treeRole, "role", "", "role short name to print (required)")
	treeCmd.Flags().StringVar(&treeKind, "kind", "presentation", "linkbase kind: presentation, definition, or calculation")
	treeCmd.MarkFlagRequired("role")
}

// linkKindAndPath maps a --kind flag value to the LinkKind and matching
// resolved path from the filing set, failing if that linkbase is absent.
func linkKindAndPath(kindName string, set *filingset.Set) (xbrl.LinkKind, string, error) {
	var kind xbrl.LinkKind
	var path string
	switch kindName {
	case "presentation":
		kind, path = xbrl.LinkPresentation, set.PresentationPath
	case "definition":
		kind, path = xbrl.LinkDefinition, set.DefinitionPath
	case "calculation":
		kind, path = xbrl.LinkCalculation, set.CalculationPath
	default:
		return 0, "", fmt.Errorf("unknown linkbase kind %q", kindName)
	}
	if path == "" {
		return 0, "", fmt.Errorf("filing directory has no %s linkbase", kindName)
	}
	return kind, path, nil
}

// dirBaseURI turns a filing directory path into the base used to rebase
// relative locator hrefs found within its linkbases.
func dirBaseURI(dir string) string {
	dir = strings.TrimRight(dir, "/")
	return dir + "/"
}

func printTree(cmd *cobra.Command, tr *xbrl.LinkbaseTree, h xbrl.NodeHandle, depth int) {
	out := cmd.OutOrStdout()
	if depth > 0 {
		label := tr.NodeLabel(h)
		if label == "" {
			label = tr.NodeID(h)
		}
		fmt.Fprintf(out, "%s%s [%s] %s\n", strings.Repeat("  ", depth-1), label, tr.NodeUsage(h), tr.NodeID(h))
	} else {
		fmt.Fprintln(out, tr.NodeID(h))
	}
	for _, child := range tr.NodeChildren(h) {
		printTree(cmd, tr, child, depth+1)
	}
}

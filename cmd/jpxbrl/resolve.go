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
	resolveRole       string
	resolveAxisSelect map[string]string
	resolveTargetTime string
	resolveOneBefore  string
	resolveMode       string
	resolveCalc       bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <filing-dir>",
	Short: "Resolve one role's facts against its instance documents",
	Long: `resolve runs the full pipeline: builds the presentation and
definition linkbase trees, enriches both against the taxonomy schema and
label linkbase, merges dimension-default flags from the definition tree into
the presentation tree, and resolves the instance document's facts down to
exactly one value per report leaf. With --with-calculation, it also builds
the calculation tree and copies the already-resolved facts onto it by
element id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		dir := args[0]

		mode, err := parseResolveMode(resolveMode)
		if err != nil {
			return err
		}

		set, err := filingset.Resolve(dir)
		if err != nil {
			return err
		}
		if set.PresentationPath == "" {
			return fmt.Errorf("filing directory has no presentation linkbase")
		}

		provider, err := source.NewProvider(cacheDir, rateLimit)
		if err != nil {
			return err
		}
		provider.SetLogger(logger)
		baseURI := dirBaseURI(dir)

		pres, err := provider.FetchLinkbase(ctx, xbrl.LinkPresentation, set.PresentationPath, baseURI)
		if err != nil {
			return err
		}
		if set.SchemaPath != "" {
			if err := xbrl.EnrichSchema(ctx, pres, resolveRole, provider); err != nil {
				return err
			}
		}
		var analyzer *xbrl.LabelAnalyzer
		if set.LabelPath != "" {
			analyzer, err = xbrl.LoadLabels(ctx, provider, set.SchemaPath, cacheDir)
			if err != nil {
				return err
			}
			if err := xbrl.EnrichLabels(pres, resolveRole, analyzer); err != nil {
				return err
			}
		}

		if set.DefinitionPath != "" {
			def, err := provider.FetchLinkbase(ctx, xbrl.LinkDefinition, set.DefinitionPath, baseURI)
			if err != nil {
				return err
			}
			if err := xbrl.MergeDimensionDefaults(pres, resolveRole, def, resolveRole); err != nil {
				return err
			}
		}

		inst := xbrl.NewAnalyzer()
		for _, doc := range set.InlineXBRLPaths {
			if err := provider.AddInlineDocument(ctx, inst, doc); err != nil {
				return err
			}
		}

		if err := xbrl.ResolveFacts(pres, inst, xbrl.ResolveParams{
			Role:       resolveRole,
			AxisSelect: resolveAxisSelect,
			TargetTime: resolveTargetTime,
			OneBefore:  resolveOneBefore,
			Mode:       mode,
		}); err != nil {
			return err
		}

		target := pres
		if resolveCalc {
			if set.CalculationPath == "" {
				return fmt.Errorf("--with-calculation requested but filing directory has no calculation linkbase")
			}
			calc, err := provider.FetchLinkbase(ctx, xbrl.LinkCalculation, set.CalculationPath, baseURI)
			if err != nil {
				return err
			}
			if set.SchemaPath != "" {
				if err := xbrl.EnrichSchema(ctx, calc, resolveRole, provider); err != nil {
					return err
				}
			}
			if analyzer != nil {
				if err := xbrl.EnrichLabels(calc, resolveRole, analyzer); err != nil {
					return err
				}
			}
			if err := xbrl.CopyFactsFromTree(calc, resolveRole, pres, resolveRole); err != nil {
				return err
			}
			target = calc
		}

		roleHandle, ok := target.RoleHandle(resolveRole)
		if !ok {
			return fmt.Errorf("role %q not found", resolveRole)
		}
		n := printResolvedFacts(cmd, target, roleHandle)
		logger.Infow("resolved facts", "dir", dir, "role", resolveRole, "mode", resolveMode, "count", n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveRole, "role", "", "role short name to resolve (required)")
	resolveCmd.Flags().StringToStringVar(&resolveAxisSelect, "axis", nil, "explicit axis=member selections (repeatable; the consolidation axis requires --mode explicit)")
	resolveCmd.Flags().StringVar(&resolveTargetTime, "target-time", "", "time token identifying the target period's contexts (required)")
	resolveCmd.Flags().StringVar(&resolveOneBefore, "one-before", "", "time token for the prior-period contexts used by period-start labels")
	resolveCmd.Flags().StringVar(&resolveMode, "mode", "default", "resolution mode: default or explicit")
	resolveCmd.Flags().BoolVar(&resolveCalc, "with-calculation", false, "also resolve the calculation tree from the presentation tree's facts")
	resolveCmd.MarkFlagRequired("role")
	resolveCmd.MarkFlagRequired("target-time")
}

func parseResolveMode(s string) (xbrl.ResolveMode, error) {
	switch s {
	case "default":
		return xbrl.ModeDefault, nil
	case "explicit":
		return xbrl.ModeExplicit, nil
	default:
		return 0, fmt.Errorf("unknown resolve mode %q (want default or explicit)", s)
	}
}

// printResolvedFacts prints each resolved fact under roleHandle and returns
// how many it printed.
func printResolvedFacts(cmd *cobra.Command, tr *xbrl.LinkbaseTree, roleHandle xbrl.NodeHandle) int {
	out := cmd.OutOrStdout()
	w := tr.NewWalker(roleHandle)
	count := 0
	for {
		h, ok := w.Next()
		if !ok {
			break
		}
		fact, ok := tr.NodeFact(h)
		if !ok {
			continue
		}
		label := tr.NodeLabel(h)
		if label == "" {
			label = tr.NodeID(h)
		}
		fmt.Fprintf(out, "%s\tctx=%s\tunit=%s\tvalue=%s\n", strings.TrimSpace(label), fact.Context.Name, fact.UnitRef, fact.Value)
		count++
	}
	return count
}

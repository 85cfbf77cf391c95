// Command example demonstrates driving pkg/filingset, pkg/source, and
// pkg/xbrl directly as a library, without the cobra CLI in cmd/jpxbrl.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nk-xbrl/jpxbrl/pkg/filingset"
	"github.com/nk-xbrl/jpxbrl/pkg/source"
	"github.com/nk-xbrl/jpxbrl/pkg/xbrl"
)

func main() {
	if len(os.Args) != 3 {
		log.Fatalf("usage: %s <filing-dir> <role-short-name>", os.Args[0])
	}
	dir, role := os.Args[1], os.Args[2]
	ctx := context.Background()

	set, err := filingset.Resolve(dir)
	if err != nil {
		log.Fatalf("resolve filing layout: %v", err)
	}
	if set.PresentationPath == "" {
		log.Fatalf("%s has no presentation linkbase", dir)
	}

	provider, err := source.NewProvider(".jpxbrl-cache", 2)
	if err != nil {
		log.Fatalf("create source provider: %v", err)
	}

	baseURI := dir + "/"
	pres, err := provider.FetchLinkbase(ctx, xbrl.LinkPresentation, set.PresentationPath, baseURI)
	if err != nil {
		log.Fatalf("fetch presentation linkbase: %v", err)
	}

	if set.SchemaPath != "" {
		if err := xbrl.EnrichSchema(ctx, pres, role, provider); err != nil {
			log.Fatalf("enrich schema: %v", err)
		}
	}
	if set.LabelPath != "" {
		labels, err := xbrl.LoadLabels(ctx, provider, set.SchemaPath, ".jpxbrl-cache")
		if err != nil {
			log.Fatalf("load labels: %v", err)
		}
		if err := xbrl.EnrichLabels(pres, role, labels); err != nil {
			log.Fatalf("enrich labels: %v", err)
		}
	}

	if set.DefinitionPath != "" {
		def, err := provider.FetchLinkbase(ctx, xbrl.LinkDefinition, set.DefinitionPath, baseURI)
		if err != nil {
			log.Fatalf("fetch definition linkbase: %v", err)
		}
		if err := xbrl.MergeDimensionDefaults(pres, role, def, role); err != nil {
			log.Fatalf("merge dimension defaults: %v", err)
		}
	}

	analyzer := xbrl.NewAnalyzer()
	for _, doc := range set.InlineXBRLPaths {
		if err := provider.AddInlineDocument(ctx, analyzer, doc); err != nil {
			log.Fatalf("add inline document %s: %v", doc, err)
		}
	}

	err = xbrl.ResolveFacts(pres, analyzer, xbrl.ResolveParams{
		Role:       role,
		TargetTime: "CurrentYear",
		Mode:       xbrl.ModeDefault,
	})
	if err != nil {
		log.Fatalf("resolve facts: %v", err)
	}

	roleHandle, ok := pres.RoleHandle(role)
	if !ok {
		log.Fatalf("role %q not found", role)
	}

	w := pres.NewWalker(roleHandle)
	for {
		h, ok := w.Next()
		if !ok {
			break
		}
		fact, ok := pres.NodeFact(h)
		if !ok {
			continue
		}
		label := pres.NodeLabel(h)
		if label == "" {
			label = pres.NodeID(h)
		}
		fmt.Printf("%s\tctx=%s\tvalue=%s\n", label, fact.Context.Name, fact.Value)
	}
}

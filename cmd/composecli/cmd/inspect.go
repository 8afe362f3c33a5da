package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/compose"
	"github.com/GoCodeAlone/compose/conftree"
)

// NewInspectCommand creates the inspect command, which prints the module tree
// a composition document declares without building any modules.
func NewInspectCommand() *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect <composition-file>",
		Short: "Print the module tree declared by a composition document",
		Long: `Inspect parses a composition document and prints each declared module with
its configuration keys, indented by nesting depth. External module sources are
listed by URI but not fetched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if tree.Exists(compose.KeyType) {
				return printDescriptor(out, tree, 0)
			}
			return printChildren(out, tree, 0)
		},
	}

	return inspectCmd
}

func printDescriptor(w io.Writer, descriptor *conftree.Section, depth int) error {
	selector, err := descriptor.String(compose.KeyType)
	if err != nil {
		selector = "(no type)"
	}

	line := strings.Repeat("  ", depth) + "- " + selector
	if cfg, err := descriptor.Section(compose.KeyConfiguration); err == nil && !cfg.IsEmpty() {
		line += " [" + strings.Join(cfg.Keys(), ", ") + "]"
	}
	if _, err := fmt.Fprintln(w, line); err != nil {
		return err
	}

	return printChildren(w, descriptor, depth+1)
}

func printChildren(w io.Writer, tree *conftree.Section, depth int) error {
	descriptors, err := tree.Sections(compose.KeyModules)
	if err != nil && !errors.Is(err, conftree.ErrKeyNotFound) {
		return err
	}
	for _, descriptor := range descriptors {
		if err := printDescriptor(w, descriptor, depth); err != nil {
			return err
		}
	}

	entries, err := tree.List(compose.KeyModuleSources)
	if err != nil && !errors.Is(err, conftree.ErrKeyNotFound) {
		return err
	}
	indent := strings.Repeat("  ", depth)
	for _, entry := range entries {
		for _, uri := range sourceURIs(entry) {
			if _, err := fmt.Fprintf(w, "%s- source: %s\n", indent, uri); err != nil {
				return err
			}
		}
	}
	return nil
}

// sourceURIs extracts the URIs named by one moduleSources entry. Malformed
// entries are reported inline rather than aborting the listing; build is the
// place where they become hard errors.
func sourceURIs(entry any) []string {
	switch v := entry.(type) {
	case string:
		return []string{v}
	case map[string]any:
		raw, ok := v[compose.KeyURIs].([]any)
		if !ok {
			return []string{"(invalid source entry)"}
		}
		uris := make([]string, 0, len(raw))
		for _, item := range raw {
			uri, ok := item.(string)
			if !ok {
				uri = "(invalid source entry)"
			}
			uris = append(uris, uri)
		}
		return uris
	default:
		return []string{"(invalid source entry)"}
	}
}

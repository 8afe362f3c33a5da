// Package cmd implements the composecli command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GoCodeAlone/compose/conftree"
)

// NewRootCommand creates the root command for composecli.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "composecli",
		Short: "Work with module composition documents",
		Long: `composecli inspects, builds and converts the declarative composition
documents consumed by the compose engine. A composition document describes a
tree of module descriptors in YAML, JSON or TOML.`,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.AddCommand(NewInspectCommand())
	rootCmd.AddCommand(NewBuildCommand())
	rootCmd.AddCommand(NewConvertCommand())

	return rootCmd
}

// loadDocument reads a composition document from disk and parses it using the
// format implied by the file extension.
func loadDocument(path string) (*conftree.Section, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return conftree.Parse(data, conftree.FormatForPath(path))
}

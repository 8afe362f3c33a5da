package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GoCodeAlone/compose/conftree"
)

// NewConvertCommand creates the convert command, which re-emits a
// configuration document in another format.
func NewConvertCommand() *cobra.Command {
	var to string

	convertCmd := &cobra.Command{
		Use:   "convert <config-file>",
		Short: "Convert a configuration document between YAML, JSON and TOML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := loadDocument(args[0])
			if err != nil {
				return err
			}

			data, err := renderDocument(tree, conftree.Format(to))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	convertCmd.Flags().StringVar(&to, "to", string(conftree.FormatJSON), "target format: yaml, json or toml")

	return convertCmd
}

func renderDocument(tree *conftree.Section, format conftree.Format) ([]byte, error) {
	values := tree.Map()
	switch format {
	case conftree.FormatYAML:
		return yaml.Marshal(values)
	case conftree.FormatJSON:
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case conftree.FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(values); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", conftree.ErrUnsupportedFormat, format)
	}
}

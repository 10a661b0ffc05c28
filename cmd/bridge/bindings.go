package main

import (
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero/api"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-bridge/binding"
)

var bindingsCmd = &cobra.Command{
	Use:   "bindings",
	Short: "Print the binding table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		table, err := loadTable(cfg)
		if err != nil {
			return err
		}
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			return writeManifest(cmd.OutOrStdout(), table)
		}
		return writeBindings(cmd.OutOrStdout(), table)
	},
}

func init() {
	bindingsCmd.Flags().Bool("yaml", false, "print as a manifest that --manifest accepts")
	rootCmd.AddCommand(bindingsCmd)
}

func writeBindings(w io.Writer, table *binding.Table) error {
	tw := tablewriter.NewWriter(w)
	tw.Header("Namespace", "Import", "Target", "Params", "Results", "Staged")
	for _, d := range table.Descriptors() {
		params := make([]string, len(d.Params))
		for i, p := range d.Params {
			params[i] = p.String()
		}
		if err := tw.Append([]string{
			d.Module,
			d.Name,
			d.Target,
			strings.Join(params, ", "),
			typeList(d.Results),
			widthString(d.Width()),
		}); err != nil {
			return err
		}
	}
	return tw.Render()
}

func writeManifest(w io.Writer, table *binding.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(binding.ManifestOf(table)); err != nil {
		return err
	}
	return enc.Close()
}

func typeList(types []api.ValueType) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = api.ValueTypeName(t)
	}
	return strings.Join(names, ", ")
}

func widthString(n uint32) string {
	if n == 0 {
		return "-"
	}
	return strconv.FormatUint(uint64(n), 10) + "B"
}

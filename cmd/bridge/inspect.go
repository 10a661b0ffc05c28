package main

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/tetratelabs/wazero"

	"github.com/wippyai/wasm-bridge/binding"
	"github.com/wippyai/wasm-bridge/linker"
	"github.com/wippyai/wasm-bridge/ring"
	"github.com/wippyai/wasm-bridge/runtime"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the host ring region and how the guest imports are covered",
	Args:  cobra.NoArgs,
	RunE:  inspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

// Import coverage states.
const (
	coverageBound   = "bound"
	coverageMissing = "missing"
	coverageOther   = "other provider"
)

func inspect(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rt, err := runtime.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer rt.Close(ctx)

	if cfg.HostWASM != "" {
		hostWasm, err := os.ReadFile(cfg.HostWASM)
		if err != nil {
			return fmt.Errorf("read host: %w", err)
		}
		if err := rt.LoadHost(ctx, hostWasm); err != nil {
			return err
		}
		region, err := linker.ReadRegion(ctx, rt.Host(), linker.Options{
			RingBaseExport: cfg.RingBaseExport,
			RingSizeExport: cfg.RingSizeExport,
		})
		if err != nil {
			return err
		}
		writeRegion(out, region, table)
	}

	if cfg.GuestWASM != "" {
		guestWasm, err := os.ReadFile(cfg.GuestWASM)
		if err != nil {
			return fmt.Errorf("read guest: %w", err)
		}
		compiled, err := rt.Wazero().CompileModule(ctx, guestWasm)
		if err != nil {
			return fmt.Errorf("compile guest: %w", err)
		}
		if err := writeCoverage(out, compiled, table); err != nil {
			return err
		}
	}
	return nil
}

func writeRegion(w io.Writer, region ring.Region, table *binding.Table) {
	fmt.Fprintf(w, "ring region %s (%d bytes)\n", region, region.Size)
	fmt.Fprintf(w, "widest call stages %d bytes\n", table.Widest())
	if err := region.Validate(table.RequiredWidths()...); err != nil {
		fmt.Fprintf(w, "not usable: %v\n", err)
		return
	}
	fmt.Fprintln(w, "region fits every record and call")
}

func writeCoverage(w io.Writer, compiled wazero.CompiledModule, table *binding.Table) error {
	bound := make(map[string]bool)
	for _, ns := range table.Namespaces() {
		bound[ns] = true
	}

	tw := tablewriter.NewWriter(w)
	tw.Header("Module", "Import", "Coverage", "Target")
	counts := make(map[string]int)
	for _, def := range compiled.ImportedFunctions() {
		module, name, _ := def.Import()
		state, target := coverageOther, ""
		if bound[module] {
			state = coverageMissing
			if d, ok := table.Lookup(module, name); ok {
				state, target = coverageBound, d.Target
			}
		}
		counts[state]++
		if err := tw.Append([]string{module, name, state, target}); err != nil {
			return err
		}
	}
	if err := tw.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%d bound, %d missing, %d other\n",
		counts[coverageBound], counts[coverageMissing], counts[coverageOther])
	return linker.CheckImports(compiled, table)
}

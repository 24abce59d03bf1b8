// Package main provides the voxflow command line tool.
package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/voxflow-ml/voxflow/internal/serialization"
)

const version = "v0.3.0"

func main() {
	if err := newCLI().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "voxflow",
		Short: "Normalizing flow toolkit for speech synthesis models",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SilenceUsage = true
		},
	}

	cobra.EnableCommandSorting = false

	rootCmd.AddCommand(newVersionCmd(), newInspectCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("voxflow %s\n", version)
		},
	}
}

func newInspectCmd() *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "inspect CHECKPOINT",
		Short: "Print the header and tensor table of a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return inspectHandler(args[0], verify)
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "Verify the payload checksum")

	return cmd
}

func inspectHandler(path string, verify bool) error {
	r, err := serialization.NewMmapReader(path)
	if err != nil {
		return err
	}
	defer r.Close()

	if verify {
		if err := r.VerifyChecksum(); err != nil {
			return err
		}
	}

	header := r.Header()
	names := r.TensorNames()

	var totalBytes int64
	for _, name := range names {
		meta, err := r.TensorInfo(name)
		if err != nil {
			return err
		}
		totalBytes += meta.Size
	}

	fmt.Printf("Model type:     %s\n", header.ModelType)
	fmt.Printf("Format version: %d\n", header.FormatVersion)
	fmt.Printf("Written by:     voxflow %s\n", header.VoxflowVersion)
	fmt.Printf("Created:        %s\n", header.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Tensors:        %d (%s)\n", len(names), humanBytes(totalBytes))
	if flags := flagNames(r.Flags()); len(flags) > 0 {
		fmt.Printf("Flags:          %s\n", strings.Join(flags, ", "))
	}
	if verify {
		fmt.Printf("Checksum:       ok (%x)\n", r.Checksum())
	}

	if len(header.Metadata) > 0 {
		fmt.Println()
		fmt.Println("Metadata:")
		keys := make([]string, 0, len(header.Metadata))
		for k := range header.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, header.Metadata[k])
		}
	}

	var data [][]string
	for _, name := range names {
		meta, err := r.TensorInfo(name)
		if err != nil {
			return err
		}
		data = append(data, []string{
			name,
			meta.DType,
			shapeString(meta.Shape),
			humanBytes(meta.Size),
		})
	}

	fmt.Println()
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"NAME", "DTYPE", "SHAPE", "SIZE"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}

func flagNames(flags uint32) []string {
	var names []string
	if flags&serialization.FlagFloat16 != 0 {
		names = append(names, "float16")
	}
	if flags&serialization.FlagHasMetadata != 0 {
		names = append(names, "metadata")
	}
	return names
}

func shapeString(shape []int) string {
	parts := make([]string, len(shape))
	for i, d := range shape {
		parts[i] = fmt.Sprintf("%d", d)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func humanBytes(b int64) string {
	const (
		kiloByte = 1000
		megaByte = kiloByte * 1000
		gigaByte = megaByte * 1000
	)
	switch {
	case b > gigaByte:
		return fmt.Sprintf("%.1f GB", float64(b)/gigaByte)
	case b > megaByte:
		return fmt.Sprintf("%.1f MB", float64(b)/megaByte)
	case b > kiloByte:
		return fmt.Sprintf("%.1f KB", float64(b)/kiloByte)
	default:
		return fmt.Sprintf("%d B", b)
	}
}

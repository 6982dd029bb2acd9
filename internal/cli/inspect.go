package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pir/internal/model"
	"github.com/roach88/pir/internal/validate"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Notation string
}

// InspectionReport summarizes one document's structure.
type InspectionReport struct {
	File      string               `json:"file"`
	Notation  string               `json:"notation"`
	Hash      string               `json:"hash"`
	Nodes     int                  `json:"nodes"`
	Edges     int                  `json:"edges"`
	Resources int                  `json:"resources"`
	Views     int                  `json:"views,omitempty"`
	Kinds     map[string]int       `json:"kinds,omitempty"`
	Cycles    []validate.CycleNote `json:"cycles,omitempty"`

	// Order is the topological node order, present only when the directed
	// flow graph is acyclic.
	Order []string `json:"order,omitempty"`

	Metadata map[string]string `json:"metadata,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a document's structure",
		Long: `Parse a process document and report its structure: element counts,
a node-kind histogram, detected cycles, the topological order when the
flow graph is acyclic, and process metadata.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Notation, "notation", "", "input notation (skips detection)")

	return cmd
}

func runInspect(opts *InspectOptions, file string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := LoadDocument(cmd, file, opts.Notation)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	hash, err := model.Hash(doc.Model)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, fmt.Sprintf("hashing model: %v", err))
	}

	report := InspectionReport{
		File:      doc.Path,
		Notation:  doc.Adapter.Name(),
		Hash:      hash,
		Nodes:     len(doc.Model.Nodes),
		Edges:     len(doc.Model.Edges),
		Resources: len(doc.Model.Resources),
		Views:     len(doc.Model.Views),
		Kinds:     kindHistogram(doc.Model),
		Cycles:    validate.AnalyzeCycles(doc.Model),
		Metadata:  doc.Model.Metadata,
	}
	if order, acyclic := validate.TopologicalOrder(doc.Model); acyclic {
		report.Order = order
	}

	return outputInspection(formatter, report)
}

// kindHistogram counts nodes per kind.
func kindHistogram(m *model.Model) map[string]int {
	if len(m.Nodes) == 0 {
		return nil
	}
	kinds := make(map[string]int)
	for _, n := range m.Nodes {
		kinds[n.Kind]++
	}
	return kinds
}

func outputInspection(formatter *OutputFormatter, report InspectionReport) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s (%s)\n", report.File, report.Notation)
	fmt.Fprintf(w, "  hash: %s\n", report.Hash)
	fmt.Fprintf(w, "  nodes: %d  edges: %d  resources: %d  views: %d\n",
		report.Nodes, report.Edges, report.Resources, report.Views)
	fmt.Fprintln(w)

	if len(report.Kinds) > 0 {
		fmt.Fprintln(w, "Kinds:")
		for _, kind := range sortedHistogramKeys(report.Kinds) {
			fmt.Fprintf(w, "  %-20s %d\n", kind, report.Kinds[kind])
		}
		fmt.Fprintln(w)
	}

	if len(report.Order) > 0 {
		fmt.Fprintf(w, "Order: %s\n", strings.Join(report.Order, " -> "))
	}
	if len(report.Cycles) > 0 {
		fmt.Fprintln(w, "Cycles:")
		for _, note := range report.Cycles {
			fmt.Fprintf(w, "  %s\n", strings.Join(note.Path, " -> "))
		}
	}
	if len(report.Order) > 0 || len(report.Cycles) > 0 {
		fmt.Fprintln(w)
	}

	if len(report.Metadata) > 0 {
		fmt.Fprintln(w, "Metadata:")
		for _, key := range sortedMetadataKeys(report.Metadata) {
			fmt.Fprintf(w, "  %s: %s\n", key, report.Metadata[key])
		}
	}

	return nil
}

func sortedHistogramKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedMetadataKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

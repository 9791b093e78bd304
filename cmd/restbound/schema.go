package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Inspect the resource graph",
	Long:  "Display the declared resources, their lazy relations, and the dependency order of the graph",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := builtinRegistry()
		if err != nil {
			return err
		}

		heading := color.New(color.FgGreen, color.Bold)
		dim := color.New(color.FgCyan)

		names := reg.List()
		sort.Strings(names)

		heading.Println("Resources:")
		for _, name := range names {
			desc, _ := reg.Get(name)
			fmt.Printf("  %s\n", name)
			for _, f := range desc.LazyFields() {
				target, err := f.Resolve()
				if err != nil {
					return err
				}
				dim.Printf("    %s -> %s (%s)\n", f.Name, target.Name(), f.Kind)
			}
		}

		graph := reg.Graph()

		if cycles := graph.DetectCycles(); len(cycles) > 0 {
			heading.Println("\nCycles:")
			for _, cycle := range cycles {
				fmt.Printf("  %s\n", strings.Join(cycle, " -> "))
			}
			return nil
		}

		order, err := graph.TopologicalSort()
		if err != nil {
			return err
		}
		heading.Println("\nDependency order:")
		fmt.Printf("  %s\n", strings.Join(order, " -> "))
		return nil
	},
}

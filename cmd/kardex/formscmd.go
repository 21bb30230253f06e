package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kardex-app/kardex/internal/forms"
	"github.com/kardex-app/kardex/internal/record"
	"github.com/kardex-app/kardex/internal/ui"
)

var formsCmd = &cobra.Command{
	Use:   "forms [name]",
	Short: "List the known forms, or one form's fields",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			for _, name := range forms.Names() {
				def, _ := forms.Get(name)
				fmt.Printf("%s\t%s\n", ui.RenderAccent(name), def.Title)
			}
			return
		}

		def, ok := forms.Get(args[0])
		if !ok {
			exitErr(fmt.Errorf("unknown form %q", args[0]))
		}
		fmt.Printf("%s (%s)\n", ui.RenderTitle(def.Title), def.Name)
		for _, fd := range def.Fields {
			fmt.Printf("  %s\t%s\t%s\n", ui.RenderAccent(fd.Key), fd.Kind, fd.Label)
			if fd.Kind == record.KindSelect {
				for i, opt := range fd.Group.Options {
					marker := " "
					if i == fd.Group.Sentinel {
						marker = ui.RenderDim("(exclusive)")
					}
					fmt.Printf("      - %s %s\n", opt, marker)
				}
			}
		}
	},
}

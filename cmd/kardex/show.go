package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kardex-app/kardex/internal/forms"
	"github.com/kardex-app/kardex/internal/record"
	"github.com/kardex-app/kardex/internal/storage"
	"github.com/kardex-app/kardex/internal/ui"
)

var showFormName string

var showCmd = &cobra.Command{
	Use:   "show <patientID>",
	Short: "Show a patient's form record",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		def, ok := forms.Get(showFormName)
		if !ok {
			exitErr(fmt.Errorf("unknown form %q (known: %s)", showFormName, strings.Join(forms.Names(), ", ")))
		}

		b, err := openBundle()
		if err != nil {
			exitErr(err)
		}
		defer b.Close()

		ctx := context.Background()
		subject := args[0]

		p, err := b.DB().GetPatient(ctx, subject)
		if err != nil {
			exitErr(err)
		}

		fields, err := b.DB().LoadRecord(ctx, def.Name, subject)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			exitErr(err)
		}
		rec := record.FromFields(def, subject, fields)

		fmt.Printf("%s — %s %s\n", ui.RenderTitle(def.Title), p.DisplayName(), ui.RenderDim(subject))
		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		for _, fd := range def.Fields {
			v, _ := rec.Value(fd.Key)
			text := record.EncodeField(fd, v)
			if text == "" {
				text = ui.RenderDim("—")
			}
			fmt.Fprintf(w, "  %s\t%s\n", fd.Label, text)
		}
		w.Flush()
	},
}

func init() {
	showCmd.Flags().StringVarP(&showFormName, "form", "f", forms.FormPerinatal, "form to show")
}

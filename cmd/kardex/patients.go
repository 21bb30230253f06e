package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kardex-app/kardex/internal/record"
	"github.com/kardex-app/kardex/internal/storage"
	"github.com/kardex-app/kardex/internal/ui"
)

var patientCmd = &cobra.Command{
	Use:     "patient",
	Aliases: []string{"patients", "p"},
	Short:   "Manage patients in the active bundle",
}

var (
	patientAddFamily string
	patientAddGiven  string
	patientAddBirth  string
	patientAddSex    string
)

var patientAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Add or update a patient",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBundle()
		if err != nil {
			exitErr(err)
		}
		defer b.Close()

		p := &storage.Patient{
			ID:         args[0],
			FamilyName: patientAddFamily,
			GivenName:  patientAddGiven,
			Sex:        patientAddSex,
		}
		if patientAddBirth != "" {
			t, err := parseDateInput(patientAddBirth)
			if err != nil {
				exitErr(fmt.Errorf("birth date: %w", err))
			}
			p.BirthDate = &t
		}

		ctx := context.Background()
		if err := b.DB().UpsertPatient(ctx, p); err != nil {
			exitErr(err)
		}
		fmt.Printf("%s %s (%s)\n", ui.RenderOK("✓"), p.DisplayName(), p.ID)
	},
}

var (
	patientListName  string
	patientListLimit int
)

var patientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients",
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBundle()
		if err != nil {
			exitErr(err)
		}
		defer b.Close()

		patients, err := b.DB().ListPatients(context.Background(), storage.ListFilter{
			Name:  patientListName,
			Limit: patientListLimit,
		})
		if err != nil {
			exitErr(err)
		}
		if len(patients) == 0 {
			fmt.Println(ui.RenderDim("no patients"))
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			ui.RenderTitle("ID"), ui.RenderTitle("NAME"),
			ui.RenderTitle("BORN"), ui.RenderTitle("SEX"))
		for _, p := range patients {
			born := ""
			if p.BirthDate != nil {
				born = p.BirthDate.Format(record.DateLayout)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				ui.RenderAccent(p.ID), p.DisplayName(), born, p.Sex)
		}
		w.Flush()
	},
}

var patientShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one patient's demographics and documents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBundle()
		if err != nil {
			exitErr(err)
		}
		defer b.Close()

		p, err := b.DB().GetPatient(context.Background(), args[0])
		if err != nil {
			exitErr(err)
		}

		fmt.Printf("%s  %s\n", ui.RenderTitle(p.DisplayName()), ui.RenderDim(p.ID))
		if p.BirthDate != nil {
			fmt.Printf("  born: %s\n", p.BirthDate.Format(record.DateLayout))
		}
		if p.Sex != "" {
			fmt.Printf("  sex:  %s\n", p.Sex)
		}

		docs, err := b.Documents(p.ID)
		if err != nil {
			exitErr(err)
		}
		if len(docs) > 0 {
			fmt.Printf("  documents:\n")
			for _, d := range docs {
				fmt.Printf("    %s %s\n", d.Name, ui.RenderDim(fmt.Sprintf("(%d bytes)", d.Size)))
			}
		}
	},
}

var patientRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a patient and their form records",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBundle()
		if err != nil {
			exitErr(err)
		}
		defer b.Close()

		if err := b.DB().DeletePatient(context.Background(), args[0]); err != nil {
			exitErr(err)
		}
		fmt.Printf("%s removed %s\n", ui.RenderOK("✓"), args[0])
	},
}

func init() {
	patientAddCmd.Flags().StringVar(&patientAddFamily, "family", "", "family name (required)")
	patientAddCmd.Flags().StringVar(&patientAddGiven, "given", "", "given name")
	patientAddCmd.Flags().StringVar(&patientAddBirth, "birth", "", "birth date (2006-01-02 or loose, e.g. \"march 3 2019\")")
	patientAddCmd.Flags().StringVar(&patientAddSex, "sex", "", "sex")
	cobra.CheckErr(patientAddCmd.MarkFlagRequired("family"))

	patientListCmd.Flags().StringVar(&patientListName, "name", "", "filter by name substring")
	patientListCmd.Flags().IntVar(&patientListLimit, "limit", 0, "maximum number of results")

	patientCmd.AddCommand(patientAddCmd)
	patientCmd.AddCommand(patientListCmd)
	patientCmd.AddCommand(patientShowCmd)
	patientCmd.AddCommand(patientRemoveCmd)
}

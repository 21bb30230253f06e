package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/spf13/cobra"

	"github.com/kardex-app/kardex/internal/editor"
	"github.com/kardex-app/kardex/internal/forms"
	"github.com/kardex-app/kardex/internal/record"
	"github.com/kardex-app/kardex/internal/ui"
)

var (
	editFormName string
	editSets     []string
)

var editCmd = &cobra.Command{
	Use:   "edit <patientID> [patientID...]",
	Short: "Edit a patient's form record",
	Long: `Edit one form record per patient. Without --set an interactive form
opens; with --set the given fields are changed directly.

Multiple patients are edited back to back in one editing session:
moving to the next patient autosaves the previous one.

Select fields take a comma-separated list of option labels. Date
fields accept 2006-01-02 or loose input like "last tuesday".`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		def, ok := forms.Get(editFormName)
		if !ok {
			exitErr(fmt.Errorf("unknown form %q (known: %s)", editFormName, strings.Join(forms.Names(), ", ")))
		}

		b, err := openBundle()
		if err != nil {
			exitErr(err)
		}
		defer b.Close()

		ctx := context.Background()

		// The record table has a foreign key on patients, so a typo in
		// the id fails here rather than at save time.
		for _, subject := range args {
			if _, err := b.DB().GetPatient(ctx, subject); err != nil {
				exitErr(fmt.Errorf("patient %s: %w", subject, err))
			}
		}

		sess := editor.NewSession(def, b.DB(),
			editor.WithSavedNotifier(func(subject string) {
				fmt.Printf("%s saved %s/%s\n", ui.RenderOK("✓"), subject, def.Name)
			}),
			editor.WithDiagnostics(func(subject string, err error) {
				fmt.Printf("%s autosave failed for %s: %v\n", ui.RenderWarn("!"), subject, err)
			}),
		)

		for _, subject := range args {
			if err := sess.Enter(ctx, subject); err != nil {
				exitErr(err)
			}
			if len(editSets) > 0 {
				err = applySets(sess, editSets)
			} else {
				err = runInteractive(sess)
			}
			if err != nil {
				exitErr(err)
			}
		}

		if err := sess.Done(ctx); err != nil {
			exitErr(err)
		}
	},
}

func init() {
	editCmd.Flags().StringVarP(&editFormName, "form", "f", forms.FormPerinatal,
		"form to edit")
	editCmd.Flags().StringArrayVarP(&editSets, "set", "s", nil,
		"set a field directly, key=value (can be repeated)")
}

// applySets changes fields from key=value flags, without opening the
// interactive form.
func applySets(sess *editor.Session, sets []string) error {
	def := sess.Form()
	for _, set := range sets {
		key, raw, ok := strings.Cut(set, "=")
		if !ok {
			return fmt.Errorf("--set wants key=value, got %q", set)
		}
		fd, found := def.Field(key)
		if !found {
			return fmt.Errorf("form %s has no field %s", def.Name, key)
		}

		if fd.Kind == record.KindSelect {
			sel, err := parseSelectionInput(fd, raw)
			if err != nil {
				return err
			}
			if err := sess.SetSelection(key, sel); err != nil {
				return err
			}
			continue
		}

		v, err := parseFieldInput(fd, raw)
		if err != nil {
			return err
		}
		if err := sess.SetField(key, v); err != nil {
			return err
		}
	}
	return nil
}

// runInteractive opens a terminal form prefilled with the live record
// and applies the result through the session.
func runInteractive(sess *editor.Session) error {
	def := sess.Form()
	rec := sess.Record()

	scalars := make(map[string]*string)
	selections := make(map[string]*[]string)

	var fields []huh.Field
	for _, fd := range def.Fields {
		v, _ := rec.Value(fd.Key)

		if fd.Kind == record.KindSelect {
			chosen := v.Sel.Labels()
			selections[fd.Key] = &chosen
			fields = append(fields, huh.NewMultiSelect[string]().
				Title(fd.Label).
				Options(huh.NewOptions(fd.Group.Options...)...).
				Value(&chosen))
			continue
		}

		text := record.EncodeField(fd, v)
		input := &text
		scalars[fd.Key] = input
		fdv := fd
		fields = append(fields, huh.NewInput().
			Title(fd.Label).
			Placeholder(placeholderFor(fd)).
			Validate(func(s string) error {
				_, err := parseFieldInput(fdv, s)
				return err
			}).
			Value(input))
	}

	form := huh.NewForm(huh.NewGroup(fields...).Title(def.Title + " — " + sess.Subject()))
	if err := form.Run(); err != nil {
		return err
	}

	for _, fd := range def.Fields {
		if fd.Kind == record.KindSelect {
			sel := record.NewSelection(*selections[fd.Key]...)
			if err := sess.SetSelection(fd.Key, sel); err != nil {
				return err
			}
			continue
		}
		v, err := parseFieldInput(fd, *scalars[fd.Key])
		if err != nil {
			return err
		}
		if err := sess.SetField(fd.Key, v); err != nil {
			return err
		}
	}
	return nil
}

func placeholderFor(fd record.FieldDef) string {
	switch fd.Kind {
	case record.KindInt:
		return "whole number"
	case record.KindDecimal:
		return "number"
	case record.KindBool:
		return "true/false"
	case record.KindDate:
		return record.DateLayout
	default:
		return ""
	}
}

// parseFieldInput converts live input to a typed value. Dates get a
// second chance through natural-language parsing before failing.
func parseFieldInput(fd record.FieldDef, input string) (record.Value, error) {
	input = strings.TrimSpace(input)
	if fd.Kind == record.KindDate && input != "" {
		if _, err := time.Parse(record.DateLayout, input); err != nil {
			t, werr := parseDateInput(input)
			if werr != nil {
				return record.Value{}, fmt.Errorf("%s: %w", fd.Key, werr)
			}
			return record.DateValue(t), nil
		}
	}
	return record.ParseField(fd, input)
}

// parseSelectionInput parses a comma-separated list of option labels.
// Unlike loading legacy data, a live edit with an unknown label is an
// error, not a silent drop.
func parseSelectionInput(fd record.FieldDef, input string) (record.Selection, error) {
	sel := record.DecodeMulti(input)
	for _, label := range sel.Labels() {
		if !fd.Group.Contains(label) {
			return nil, fmt.Errorf("%s: unknown option %q (known: %s)",
				fd.Key, label, strings.Join(fd.Group.Options, ", "))
		}
	}
	return sel, nil
}

// parseDateInput accepts the canonical layout or loose English like
// "yesterday" or "march 3 2019".
func parseDateInput(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(record.DateLayout, s); err == nil {
		return t, nil
	}

	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	r, err := w.Parse(s, time.Now())
	if err != nil || r == nil {
		return time.Time{}, fmt.Errorf("unrecognized date %q (want %s or e.g. \"last tuesday\")", s, record.DateLayout)
	}
	return r.Time, nil
}

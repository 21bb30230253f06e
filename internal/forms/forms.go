// Package forms is the option vocabulary provider: it ships the
// built-in clinical form definitions and can load additional or
// replacement definitions from a YAML file.
//
// Definitions are configuration, not computed state. The editing
// engine only ever sees record.FormDef values; where an option list
// came from is invisible to it.
package forms

import (
	"fmt"
	"sort"

	"github.com/kardex-app/kardex/internal/record"
)

// FormPerinatal and FormPastHistory are the names of the built-in
// forms.
const (
	FormPerinatal   = "perinatal"
	FormPastHistory = "pasthistory"
)

var registry = map[string]record.FormDef{}

func init() {
	for _, def := range Builtin() {
		if err := def.Validate(); err != nil {
			panic(fmt.Sprintf("invalid built-in form: %v", err))
		}
		registry[def.Name] = def
	}
}

// Builtin returns the built-in form definitions.
func Builtin() []record.FormDef {
	return []record.FormDef{
		{
			Name:  FormPerinatal,
			Title: "Perinatal history",
			Fields: []record.FieldDef{
				{Key: "gestationalWeeks", Label: "Gestational age (weeks)", Kind: record.KindInt},
				{Key: "birthWeightKg", Label: "Birth weight (kg)", Kind: record.KindDecimal},
				{Key: "birthLengthCm", Label: "Birth length (cm)", Kind: record.KindDecimal},
				{Key: "apgar1", Label: "Apgar at 1 min", Kind: record.KindInt},
				{Key: "apgar5", Label: "Apgar at 5 min", Kind: record.KindInt},
				{Key: "deliveryMode", Label: "Mode of delivery", Kind: record.KindSelect,
					Group: &record.GroupDef{
						Options:  []string{"Vaginal", "Assisted vaginal", "Planned cesarean", "Emergency cesarean"},
						Sentinel: record.NoSentinel,
					}},
				{Key: "complications", Label: "Neonatal complications", Kind: record.KindSelect,
					Group: &record.GroupDef{
						Options: []string{
							"None", "Preterm birth", "Jaundice requiring phototherapy",
							"Respiratory distress", "Hypoglycemia", "Feeding difficulties",
						},
						Sentinel: 0,
					}},
				{Key: "nicuAdmission", Label: "NICU admission", Kind: record.KindBool},
				{Key: "feedingAtDischarge", Label: "Feeding at discharge", Kind: record.KindSelect,
					Group: &record.GroupDef{
						Options:  []string{"Breast", "Formula", "Mixed"},
						Sentinel: record.NoSentinel,
					}},
				{Key: "dischargeDate", Label: "Discharge date", Kind: record.KindDate},
				{Key: "notes", Label: "Notes", Kind: record.KindText},
			},
		},
		{
			Name:  FormPastHistory,
			Title: "Past medical history",
			Fields: []record.FieldDef{
				{Key: "conditions", Label: "Chronic conditions", Kind: record.KindSelect,
					Group: &record.GroupDef{
						Options: []string{
							"None", "Asthma", "Epilepsy", "Type 1 diabetes",
							"Congenital heart disease", "Allergic rhinitis", "Atopic dermatitis",
						},
						Sentinel: 0,
					}},
				{Key: "allergies", Label: "Allergies", Kind: record.KindSelect,
					Group: &record.GroupDef{
						Options: []string{
							"None known", "Penicillin", "Peanut", "Egg", "Milk protein", "Insect venom",
						},
						Sentinel: 0,
					}},
				{Key: "surgeries", Label: "Past surgeries", Kind: record.KindText},
				{Key: "hospitalizations", Label: "Hospitalizations (count)", Kind: record.KindInt},
				{Key: "motherVaccinations", Label: "Maternal vaccinations", Kind: record.KindSelect,
					Group: &record.GroupDef{
						Options:  []string{"None", "Hepatitis B", "Influenza", "Tdap", "COVID-19"},
						Sentinel: 0,
					}},
				{Key: "familyVaccinations", Label: "Household vaccinations", Kind: record.KindSelect,
					Group: &record.GroupDef{
						Options:  []string{"None", "Hepatitis B", "Influenza", "Tdap", "COVID-19"},
						Sentinel: 0,
					}},
				{Key: "lastReviewed", Label: "Last reviewed", Kind: record.KindDate},
			},
		},
	}
}

// Get looks up a form definition by name.
func Get(name string) (record.FormDef, bool) {
	def, ok := registry[name]
	return def, ok
}

// Names returns the registered form names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a form definition. Definitions loaded
// from a vocabulary file replace built-ins of the same name.
func Register(def record.FormDef) error {
	if err := def.Validate(); err != nil {
		return err
	}
	registry[def.Name] = def
	return nil
}

package record

import (
	"testing"
	"time"
)

func testForm() FormDef {
	return FormDef{
		Name:  "perinatal",
		Title: "Perinatal history",
		Fields: []FieldDef{
			{Key: "gestationalWeeks", Label: "Gestational weeks", Kind: KindInt},
			{Key: "weightKg", Label: "Birth weight (kg)", Kind: KindDecimal},
			{Key: "nicu", Label: "NICU admission", Kind: KindBool},
			{Key: "birthDate", Label: "Date of birth", Kind: KindDate},
			{Key: "notes", Label: "Notes", Kind: KindText},
			{Key: "complications", Label: "Complications", Kind: KindSelect,
				Group: &GroupDef{Options: []string{"None", "Preterm", "Jaundice"}, Sentinel: 0}},
		},
	}
}

func TestSnapshot_ReflexiveAndSymmetric(t *testing.T) {
	def := testForm()
	rec := New(def, "p-001")
	rec.Set("weightKg", DecimalValue(3.2))
	rec.Set("complications", SelectValue(NewSelection("Jaundice")))

	s := Capture(def, rec)
	if IsDirty(s, s) {
		t.Error("IsDirty(s, s) must be false")
	}

	other := rec.Clone()
	other.Set("weightKg", DecimalValue(3.5))
	u := Capture(def, other)

	if IsDirty(s, u) != IsDirty(u, s) {
		t.Error("IsDirty must be symmetric")
	}
	if !IsDirty(s, u) {
		t.Error("changed weight must read as dirty")
	}
}

func TestSnapshot_NumericCanonicalization(t *testing.T) {
	def := testForm()
	fd, _ := def.Field("weightKg")

	tests := []struct {
		name string
		a    string
		b    string
		same bool
	}{
		{name: "trailing zero decimal", a: "3.0", b: "3", same: true},
		{name: "two decimals", a: "3.00", b: "3", same: true},
		{name: "fraction preserved", a: "3.20", b: "3.2", same: true},
		{name: "different values", a: "3.2", b: "3.5", same: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			va, err := ParseField(fd, tt.a)
			if err != nil {
				t.Fatalf("ParseField(%q): %v", tt.a, err)
			}
			vb, err := ParseField(fd, tt.b)
			if err != nil {
				t.Fatalf("ParseField(%q): %v", tt.b, err)
			}

			ra := New(def, "p-001")
			ra.Set("weightKg", va)
			rb := New(def, "p-001")
			rb.Set("weightKg", vb)

			dirty := IsDirty(Capture(def, ra), Capture(def, rb))
			if dirty == tt.same {
				t.Errorf("IsDirty(%q vs %q) = %v, want %v", tt.a, tt.b, dirty, !tt.same)
			}
		})
	}
}

func TestSnapshot_SelectionOrderIrrelevant(t *testing.T) {
	def := testForm()

	a := New(def, "p-001")
	a.Set("complications", SelectValue(NewSelection("Preterm", "Jaundice")))
	b := New(def, "p-001")
	b.Set("complications", SelectValue(NewSelection("Jaundice", "Preterm")))

	if IsDirty(Capture(def, a), Capture(def, b)) {
		t.Error("selection insertion order must not make a snapshot dirty")
	}
}

func TestSnapshot_SaveReloadStable(t *testing.T) {
	// Persisting and reloading an unchanged record must not read as a
	// change, across every field kind.
	def := testForm()
	rec := New(def, "p-001")
	rec.Set("gestationalWeeks", IntValue(38))
	rec.Set("weightKg", DecimalValue(3.2))
	rec.Set("nicu", BoolValue(false))
	rec.Set("birthDate", DateValue(time.Date(2024, 5, 17, 14, 30, 0, 0, time.Local)))
	rec.Set("notes", TextValue("uncomplicated delivery"))
	rec.Set("complications", SelectValue(NewSelection("Jaundice", "Preterm")))

	stored := ToFields(def, rec)
	reloaded := FromFields(def, "p-001", stored)

	if IsDirty(Capture(def, reloaded), Capture(def, rec)) {
		t.Errorf("reload changed the snapshot:\n stored %v\n reloaded %v",
			Capture(def, rec), Capture(def, reloaded))
	}
}

func TestSnapshot_MissingFieldReadsEmpty(t *testing.T) {
	def := testForm()
	rec := New(def, "p-001")
	delete(rec.Fields, "notes")

	snap := Capture(def, rec)
	if snap["notes"] != "" {
		t.Errorf("missing field encoded as %q, want empty", snap["notes"])
	}
}

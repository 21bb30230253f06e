package record

import (
	"strings"
	"testing"
	"time"
)

func TestFormDef_Validate(t *testing.T) {
	group := &GroupDef{Options: []string{"None", "A"}, Sentinel: 0}

	tests := []struct {
		name    string
		form    FormDef
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid form",
			form: FormDef{
				Name: "perinatal",
				Fields: []FieldDef{
					{Key: "weightKg", Label: "Weight", Kind: KindDecimal},
					{Key: "complications", Label: "Complications", Kind: KindSelect, Group: group},
				},
			},
			wantErr: false,
		},
		{
			name:    "missing name",
			form:    FormDef{Fields: []FieldDef{{Key: "a", Label: "A", Kind: KindText}}},
			wantErr: true,
			errMsg:  "form name is required",
		},
		{
			name:    "no fields",
			form:    FormDef{Name: "empty"},
			wantErr: true,
			errMsg:  "no fields",
		},
		{
			name: "duplicate key",
			form: FormDef{
				Name: "dup",
				Fields: []FieldDef{
					{Key: "a", Label: "A", Kind: KindText},
					{Key: "a", Label: "A again", Kind: KindText},
				},
			},
			wantErr: true,
			errMsg:  "duplicate field key",
		},
		{
			name: "select without group",
			form: FormDef{
				Name:   "bad",
				Fields: []FieldDef{{Key: "sel", Label: "Sel", Kind: KindSelect}},
			},
			wantErr: true,
			errMsg:  "needs a group",
		},
		{
			name: "group on scalar field",
			form: FormDef{
				Name:   "bad",
				Fields: []FieldDef{{Key: "n", Label: "N", Kind: KindInt, Group: group}},
			},
			wantErr: true,
			errMsg:  "non-select field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && tt.errMsg != "" && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errMsg)
			}
		})
	}
}

func TestParseField(t *testing.T) {
	tests := []struct {
		name    string
		field   FieldDef
		input   string
		want    string // canonical encoding of the parsed value
		wantErr bool
	}{
		{
			name:  "empty coerces to null",
			field: FieldDef{Key: "w", Label: "W", Kind: KindDecimal},
			input: "   ",
			want:  "",
		},
		{
			name:  "decimal normalized",
			field: FieldDef{Key: "w", Label: "W", Kind: KindDecimal},
			input: "3.00",
			want:  "3",
		},
		{
			name:  "int",
			field: FieldDef{Key: "n", Label: "N", Kind: KindInt},
			input: "38",
			want:  "38",
		},
		{
			name:    "int rejects fraction",
			field:   FieldDef{Key: "n", Label: "N", Kind: KindInt},
			input:   "3.5",
			wantErr: true,
		},
		{
			name:  "bool",
			field: FieldDef{Key: "b", Label: "B", Kind: KindBool},
			input: "true",
			want:  "true",
		},
		{
			name:    "bool rejects prose",
			field:   FieldDef{Key: "b", Label: "B", Kind: KindBool},
			input:   "yes",
			wantErr: true,
		},
		{
			name:  "date",
			field: FieldDef{Key: "d", Label: "D", Kind: KindDate},
			input: "2024-05-17",
			want:  "2024-05-17",
		},
		{
			name:    "date rejects free text",
			field:   FieldDef{Key: "d", Label: "D", Kind: KindDate},
			input:   "may seventeenth",
			wantErr: true,
		},
		{
			name: "select clamps to vocabulary",
			field: FieldDef{Key: "s", Label: "S", Kind: KindSelect,
				Group: &GroupDef{Options: []string{"None", "A"}, Sentinel: 0}},
			input: "A, Retired",
			want:  "A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseField(tt.field, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseField() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got := EncodeField(tt.field, v); got != tt.want {
				t.Errorf("EncodeField(ParseField(%q)) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDecodeField_Tolerant(t *testing.T) {
	// Corrupt scalar data from older versions decodes as empty rather
	// than failing the load.
	tests := []struct {
		name  string
		field FieldDef
		text  string
	}{
		{name: "garbage int", field: FieldDef{Key: "n", Label: "N", Kind: KindInt}, text: "lots"},
		{name: "garbage decimal", field: FieldDef{Key: "w", Label: "W", Kind: KindDecimal}, text: "3,2"},
		{name: "garbage bool", field: FieldDef{Key: "b", Label: "B", Kind: KindBool}, text: "maybe"},
		{name: "garbage date", field: FieldDef{Key: "d", Label: "D", Kind: KindDate}, text: "17/05/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := DecodeField(tt.field, tt.text)
			if !v.IsEmpty() {
				t.Errorf("DecodeField(%q) = %+v, want empty", tt.text, v)
			}
		})
	}
}

func TestDecodeField_VocabularyDrift(t *testing.T) {
	field := FieldDef{Key: "s", Label: "S", Kind: KindSelect,
		Group: &GroupDef{Options: []string{"None", "Asthma"}, Sentinel: 0}}

	v := DecodeField(field, "Asthma, Rickets")
	if !v.Sel.Equal(NewSelection("Asthma")) {
		t.Errorf("retired label not dropped: %v", v.Sel.Labels())
	}
}

func TestRecord_Clone(t *testing.T) {
	def := testForm()
	rec := New(def, "p-001")
	rec.Set("weightKg", DecimalValue(3.2))
	rec.Set("complications", SelectValue(NewSelection("Jaundice")))
	rec.Set("birthDate", DateValue(time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)))

	clone := rec.Clone()
	clone.Set("weightKg", DecimalValue(4.0))
	v, _ := clone.Value("complications")
	v.Sel.Add("Preterm")

	orig, _ := rec.Value("weightKg")
	if orig.Dec == nil || *orig.Dec != 3.2 {
		t.Error("clone shares scalar storage with original")
	}
	origSel, _ := rec.Value("complications")
	if origSel.Sel.Has("Preterm") {
		t.Error("clone shares selection storage with original")
	}
}

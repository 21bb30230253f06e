package forms

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kardex-app/kardex/internal/record"
)

// fileSchema is the YAML layout of a vocabulary file:
//
//	forms:
//	  - name: perinatal
//	    title: Perinatal history
//	    fields:
//	      - key: complications
//	        label: Neonatal complications
//	        kind: select
//	        options: [None, Preterm birth, Jaundice]
//	        sentinel: None
type fileSchema struct {
	Forms []formSchema `yaml:"forms"`
}

type formSchema struct {
	Name   string        `yaml:"name"`
	Title  string        `yaml:"title"`
	Fields []fieldSchema `yaml:"fields"`
}

type fieldSchema struct {
	Key      string   `yaml:"key"`
	Label    string   `yaml:"label"`
	Kind     string   `yaml:"kind"`
	Options  []string `yaml:"options,omitempty"`
	Sentinel string   `yaml:"sentinel,omitempty"` // by label, must be one of Options
}

// Load reads form definitions from a YAML vocabulary file. Each
// definition is validated; any error aborts the whole load so a typo
// can't silently drop half a form.
func Load(path string) ([]record.FormDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}

	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary file %s: %w", path, err)
	}
	if len(file.Forms) == 0 {
		return nil, fmt.Errorf("vocabulary file %s defines no forms", path)
	}

	defs := make([]record.FormDef, 0, len(file.Forms))
	for _, fs := range file.Forms {
		def, err := fs.toFormDef()
		if err != nil {
			return nil, fmt.Errorf("vocabulary file %s: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("vocabulary file %s: %w", path, err)
		}
		defs = append(defs, def)
	}

	return defs, nil
}

// LoadAndRegister loads a vocabulary file and registers every form in
// it, replacing built-ins of the same name.
func LoadAndRegister(path string) error {
	defs, err := Load(path)
	if err != nil {
		return err
	}
	for _, def := range defs {
		if err := Register(def); err != nil {
			return err
		}
	}
	return nil
}

func (fs formSchema) toFormDef() (record.FormDef, error) {
	def := record.FormDef{
		Name:   fs.Name,
		Title:  fs.Title,
		Fields: make([]record.FieldDef, 0, len(fs.Fields)),
	}
	for _, f := range fs.Fields {
		kind, err := record.KindFromString(f.Kind)
		if err != nil {
			return record.FormDef{}, fmt.Errorf("form %s field %s: %w", fs.Name, f.Key, err)
		}

		fd := record.FieldDef{Key: f.Key, Label: f.Label, Kind: kind}
		if kind == record.KindSelect {
			group := &record.GroupDef{Options: f.Options, Sentinel: record.NoSentinel}
			if f.Sentinel != "" {
				idx := -1
				for i, opt := range f.Options {
					if opt == f.Sentinel {
						idx = i
						break
					}
				}
				if idx < 0 {
					return record.FormDef{}, fmt.Errorf(
						"form %s field %s: sentinel %q is not one of the options", fs.Name, f.Key, f.Sentinel)
				}
				group.Sentinel = idx
			}
			fd.Group = group
		} else if len(f.Options) > 0 || f.Sentinel != "" {
			return record.FormDef{}, fmt.Errorf(
				"form %s field %s: options/sentinel only apply to select fields", fs.Name, f.Key)
		}
		def.Fields = append(def.Fields, fd)
	}
	return def, nil
}

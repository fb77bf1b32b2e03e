package preset

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rmo02/dash-financeiro/pkg/models"
	"gopkg.in/yaml.v3"
)

// View is a named filter selection.
type View struct {
	Name             string `yaml:"name"`
	models.Selection `yaml:",inline"`
}

type File struct {
	Views []View `yaml:"views"`
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(f.Views) == 0 {
		return nil, fmt.Errorf("preset has no views")
	}
	seen := make(map[string]bool, len(f.Views))
	for i, v := range f.Views {
		name := strings.TrimSpace(v.Name)
		if name == "" {
			return nil, fmt.Errorf("view %d has no name", i+1)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate view %q", name)
		}
		seen[name] = true
		f.Views[i].Name = name
	}
	return &f, nil
}

func (f *File) Print(w io.Writer) {
	for i, v := range f.Views {
		fmt.Fprintf(w, "[%d] %s companies=%v months=%v year=%s groups=%v subgroups=%v\n",
			i+1, v.Name, v.Companies, v.Months, v.Year, v.Groups, v.Subgroups)
	}
}

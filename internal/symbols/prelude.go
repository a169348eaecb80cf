package symbols

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"quill/internal/ast"
)

//go:embed prelude.yaml
var preludeYAML []byte

type preludeParam struct {
	Name  string        `yaml:"name"`
	Type  *ast.TypeExpr `yaml:"type"`
	Owned bool          `yaml:"owned"`
}

type preludeEntry struct {
	Name       string         `yaml:"name"`
	TypeParams []string       `yaml:"type_params"`
	NatParams  []string       `yaml:"nat_params"`
	Params     []preludeParam `yaml:"params"`
	Result     *ast.TypeExpr  `yaml:"result"`
}

type preludeCatalog struct {
	Builtins []preludeEntry `yaml:"builtins"`
}

// LoadPrelude registers the builtin signature catalog into the table. It
// runs before user definitions so that user names shadow nothing and a
// clash with a builtin reports as a duplicate.
func LoadPrelude(table *Table) error {
	var cat preludeCatalog
	if err := yaml.Unmarshal(preludeYAML, &cat); err != nil {
		return fmt.Errorf("prelude catalog: %w", err)
	}
	for _, e := range cat.Builtins {
		params := make([]BuiltinParam, 0, len(e.Params))
		for _, p := range e.Params {
			params = append(params, BuiltinParam{Name: p.Name, Type: p.Type, Owned: p.Owned})
		}
		if _, err := table.RegisterBuiltin(e.Name, e.TypeParams, e.NatParams, params, e.Result); err != nil {
			return fmt.Errorf("prelude %s: %w", e.Name, err)
		}
	}
	return nil
}

package ast

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts the kind names used by the prelude catalog.
func (k *TypeExprKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "name":
		*k = TypeName
	case "tuple":
		*k = TypeTuple
	case "array":
		*k = TypeArray
	case "option":
		*k = TypeOption
	default:
		return fmt.Errorf("ast: unknown type kind %q", s)
	}
	return nil
}

// UnmarshalYAML lets the prelude catalog write bare names ("qubit") for
// leaf types and full mappings for compound ones.
func (t *TypeExpr) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		t.Kind = TypeName
		t.Name = name
		return nil
	}
	type plain TypeExpr
	return value.Decode((*plain)(t))
}

// UnmarshalYAML accepts an integer literal or a bare variable name.
func (n *NatExpr) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		if v, err := strconv.ParseUint(value.Value, 10, 64); err == nil {
			n.Lit = &v
			return nil
		}
		var name string
		if err := value.Decode(&name); err != nil {
			return err
		}
		n.Var = name
		return nil
	}
	type plain NatExpr
	return value.Decode((*plain)(n))
}

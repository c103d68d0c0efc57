package schema

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// MaxSelectionDepth bounds how many levels of composite fields are expanded.
const MaxSelectionDepth = 4

var (
	ErrUnknownOperationType = errors.New("unknown operation type")
	ErrOperationNotFound    = errors.New("operation not found")
)

// GenerateOperation builds an operation document calling the root field
// operationName of the operationType root ("query", "mutation" or
// "subscription"). Every argument of the field becomes a variable of the same
// name and the returned type is selected down to MaxSelectionDepth.
func GenerateOperation(operationName, operationType string, s *Schema) (string, error) {
	op, root, err := rootType(operationType, s)
	if err != nil {
		return "", err
	}

	field, ok := root.Field(operationName)
	if !ok {
		return "", fmt.Errorf("%w: %s on %s", ErrOperationNotFound, operationName, root.Name)
	}

	call := &ast.Field{Name: field.Name}
	vars := make(ast.VariableDefinitionList, 0, len(field.Args))
	for _, arg := range field.Args {
		vars = append(vars, &ast.VariableDefinition{
			Variable: arg.Name,
			Type:     astType(arg.Type),
		})
		call.Arguments = append(call.Arguments, &ast.Argument{
			Name:  arg.Name,
			Value: &ast.Value{Kind: ast.Variable, Raw: arg.Name},
		})
	}

	g := generator{schema: s, visiting: map[string]bool{}}
	if g.composite(field.Type.Named().Kind) {
		call.SelectionSet = g.selection(field.Type.Named().Name, 1)
		if len(call.SelectionSet) == 0 {
			call.SelectionSet = ast.SelectionSet{&ast.Field{Name: "__typename"}}
		}
	}

	doc := &ast.QueryDocument{
		Operations: ast.OperationList{{
			Operation:           op,
			Name:                operationName,
			VariableDefinitions: vars,
			SelectionSet:        ast.SelectionSet{call},
		}},
	}

	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatQueryDocument(doc)
	return buf.String(), nil
}

func rootType(operationType string, s *Schema) (ast.Operation, *FullType, error) {
	var (
		op  ast.Operation
		ref *NamedType
	)
	switch strings.ToLower(operationType) {
	case "query":
		op, ref = ast.Query, s.QueryType
	case "mutation":
		op, ref = ast.Mutation, s.MutationType
	case "subscription":
		op, ref = ast.Subscription, s.SubscriptionType
	default:
		return "", nil, fmt.Errorf("%w: %q", ErrUnknownOperationType, operationType)
	}
	if ref == nil {
		return "", nil, fmt.Errorf("%w: schema has no %s root", ErrUnknownOperationType, op)
	}

	root, ok := s.Type(ref.Name)
	if !ok {
		return "", nil, fmt.Errorf("%w: root type %s missing from schema", ErrUnknownOperationType, ref.Name)
	}
	return op, root, nil
}

func astType(ref TypeRef) *ast.Type {
	switch ref.Kind {
	case KindNonNull:
		if ref.OfType == nil {
			return ast.NamedType(ref.Name, nil)
		}
		t := astType(*ref.OfType)
		t.NonNull = true
		return t
	case KindList:
		if ref.OfType == nil {
			return ast.ListType(ast.NamedType(ref.Name, nil), nil)
		}
		return ast.ListType(astType(*ref.OfType), nil)
	default:
		return ast.NamedType(ref.Name, nil)
	}
}

type generator struct {
	schema   *Schema
	visiting map[string]bool
}

func (g *generator) composite(kind string) bool {
	return kind == KindObject || kind == KindInterface || kind == KindUnion
}

// selection expands typeName. Types already on the current path are not
// expanded again.
func (g *generator) selection(typeName string, depth int) ast.SelectionSet {
	t, ok := g.schema.Type(typeName)
	if !ok || depth > MaxSelectionDepth || g.visiting[typeName] {
		return nil
	}
	g.visiting[typeName] = true
	defer delete(g.visiting, typeName)

	if t.Kind == KindInterface || t.Kind == KindUnion {
		set := ast.SelectionSet{&ast.Field{Name: "__typename"}}
		for _, possible := range t.PossibleTypes {
			inner := g.selection(possible.Name, depth)
			if len(inner) == 0 {
				continue
			}
			set = append(set, &ast.InlineFragment{TypeCondition: possible.Name, SelectionSet: inner})
		}
		return set
	}

	var set ast.SelectionSet
	for _, f := range t.Fields {
		if requiresArgs(f) {
			continue
		}
		named := f.Type.Named()
		if !g.composite(named.Kind) {
			set = append(set, &ast.Field{Name: f.Name})
			continue
		}
		inner := g.selection(named.Name, depth+1)
		if len(inner) == 0 {
			continue
		}
		set = append(set, &ast.Field{Name: f.Name, SelectionSet: inner})
	}
	return set
}

// requiresArgs reports whether the field has a non-null argument without a
// default, which a generated selection cannot supply.
func requiresArgs(f Field) bool {
	for _, arg := range f.Args {
		if arg.Type.Kind == KindNonNull && arg.DefaultValue == nil {
			return true
		}
	}
	return false
}

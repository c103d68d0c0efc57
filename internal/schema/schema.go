// Package schema holds the introspected description of a remote GraphQL
// function, a per-function cache for it, and the generator that turns a
// root field into a ready-to-send operation document.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Type kinds as reported by introspection.
const (
	KindScalar      = "SCALAR"
	KindObject      = "OBJECT"
	KindInterface   = "INTERFACE"
	KindUnion       = "UNION"
	KindEnum        = "ENUM"
	KindInputObject = "INPUT_OBJECT"
	KindList        = "LIST"
	KindNonNull     = "NON_NULL"
)

// ErrNoSchema is returned when an introspection reply carries no __schema.
var ErrNoSchema = errors.New("introspection reply has no __schema")

// IntrospectionQuery fetches everything GenerateOperation needs.
const IntrospectionQuery = `query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types {
      ...FullType
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  fields(includeDeprecated: true) {
    name
    description
    args {
      ...InputValue
    }
    type {
      ...TypeRef
    }
    isDeprecated
    deprecationReason
  }
  inputFields {
    ...InputValue
  }
  interfaces {
    ...TypeRef
  }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes {
    ...TypeRef
  }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType {
                kind
                name
              }
            }
          }
        }
      }
    }
  }
}`

// NamedType references a root operation type.
type NamedType struct {
	Name string `json:"name"`
}

// TypeRef is a possibly wrapped reference to a named type.
type TypeRef struct {
	Kind   string   `json:"kind"`
	Name   string   `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

// Named returns the innermost named type.
func (t TypeRef) Named() TypeRef {
	for t.OfType != nil && (t.Kind == KindNonNull || t.Kind == KindList) {
		t = *t.OfType
	}
	return t
}

// String prints the reference in SDL notation, e.g. [String!]!.
func (t TypeRef) String() string {
	switch t.Kind {
	case KindNonNull:
		if t.OfType == nil {
			return "!"
		}
		return t.OfType.String() + "!"
	case KindList:
		if t.OfType == nil {
			return "[]"
		}
		return "[" + t.OfType.String() + "]"
	default:
		return t.Name
	}
}

type InputValue struct {
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

type Field struct {
	Name              string       `json:"name"`
	Description       string       `json:"description"`
	Args              []InputValue `json:"args"`
	Type              TypeRef      `json:"type"`
	IsDeprecated      bool         `json:"isDeprecated"`
	DeprecationReason *string      `json:"deprecationReason"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       string  `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

type FullType struct {
	Kind          string       `json:"kind"`
	Name          string       `json:"name"`
	Description   string       `json:"description"`
	Fields        []Field      `json:"fields"`
	InputFields   []InputValue `json:"inputFields"`
	Interfaces    []TypeRef    `json:"interfaces"`
	EnumValues    []EnumValue  `json:"enumValues"`
	PossibleTypes []TypeRef    `json:"possibleTypes"`
}

// Field looks up a field by name.
func (t *FullType) Field(name string) (*Field, bool) {
	for i := range t.Fields {
		if t.Fields[i].Name == name {
			return &t.Fields[i], true
		}
	}
	return nil, false
}

// Schema is the decoded __schema of an introspection reply. It is never
// mutated after decoding and is safe for concurrent readers.
type Schema struct {
	QueryType        *NamedType `json:"queryType"`
	MutationType     *NamedType `json:"mutationType"`
	SubscriptionType *NamedType `json:"subscriptionType"`
	Types            []FullType `json:"types"`
}

// Type looks up a type by name.
func (s *Schema) Type(name string) (*FullType, bool) {
	for i := range s.Types {
		if s.Types[i].Name == name {
			return &s.Types[i], true
		}
	}
	return nil, false
}

// DecodeIntrospection converts the data of an introspection reply into a Schema.
func DecodeIntrospection(data interface{}) (*Schema, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode introspection data: %w", err)
	}

	var reply struct {
		Schema *Schema `json:"__schema"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("decode introspection data: %w", err)
	}
	if reply.Schema == nil {
		return nil, ErrNoSchema
	}
	return reply.Schema, nil
}

package inquiry

import (
	"context"

	"github.com/ideabosque/openai-funct-base/internal/config"
)

// VectorDocsQuery runs a hybrid vector search over an index.
const VectorDocsQuery = `query vectorDocs(
    $indexName: String!,
    $vectorField: String!,
    $userQuery: String!,
    $returnFields: [String]!
) {
    vectorDocs(
        indexName: $indexName,
        vectorField: $vectorField,
        userQuery: $userQuery,
        returnFields: $returnFields
    )
}`

// Default search target.
const (
	DefaultIndexName   = "documents"
	DefaultVectorField = "embedding"
)

// DefaultReturnFields lists the document fields returned by a search.
var DefaultReturnFields = []string{"document_id", "title", "content", "source"}

// Executor runs a query document against a remote function.
type Executor interface {
	ExecuteQuery(ctx context.Context, endpointID, functionName, query string, variables map[string]interface{}) (interface{}, error)
}

// Target fixes everything about a search except the user query.
type Target struct {
	IndexName    string
	VectorField  string
	ReturnFields []string
}

// DefaultTarget returns the built-in search target.
func DefaultTarget() Target {
	return Target{
		IndexName:    DefaultIndexName,
		VectorField:  DefaultVectorField,
		ReturnFields: append([]string(nil), DefaultReturnFields...),
	}
}

// TargetFromSettings returns the configured target, falling back to defaults.
func TargetFromSettings(s config.Settings) Target {
	t := DefaultTarget()
	if s.InquiryIndexName != "" {
		t.IndexName = s.InquiryIndexName
	}
	if s.InquiryVectorField != "" {
		t.VectorField = s.InquiryVectorField
	}
	if len(s.InquiryReturnFields) > 0 {
		t.ReturnFields = s.InquiryReturnFields
	}
	return t
}

// Variables binds userQuery into the search variables.
func (t Target) Variables(userQuery string) map[string]interface{} {
	fields := make([]interface{}, len(t.ReturnFields))
	for i, f := range t.ReturnFields {
		fields[i] = f
	}
	return map[string]interface{}{
		"indexName":    t.IndexName,
		"vectorField":  t.VectorField,
		"userQuery":    userQuery,
		"returnFields": fields,
	}
}

// Inquire runs the vector search for userQuery on functionName and returns
// the vectorDocs result.
func Inquire(ctx context.Context, exec Executor, t Target, endpointID, functionName, userQuery string) (interface{}, error) {
	data, err := exec.ExecuteQuery(ctx, endpointID, functionName, VectorDocsQuery, t.Variables(userQuery))
	if err != nil {
		return nil, err
	}
	if m, ok := data.(map[string]interface{}); ok {
		if docs, ok := m["vectorDocs"]; ok {
			return docs, nil
		}
	}
	return data, nil
}

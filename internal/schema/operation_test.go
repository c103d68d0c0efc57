package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func parseOperation(t *testing.T, doc string) *ast.OperationDefinition {
	t.Helper()
	q, err := parser.ParseQuery(&ast.Source{Input: doc})
	require.Nil(t, err, "generated document must parse:\n%s", doc)
	require.Len(t, q.Operations, 1)
	return q.Operations[0]
}

func fieldNames(set ast.SelectionSet) []string {
	var names []string
	for _, sel := range set {
		if f, ok := sel.(*ast.Field); ok {
			names = append(names, f.Name)
		}
	}
	return names
}

func child(t *testing.T, set ast.SelectionSet, name string) *ast.Field {
	t.Helper()
	for _, sel := range set {
		if f, ok := sel.(*ast.Field); ok && f.Name == name {
			return f
		}
	}
	t.Fatalf("field %s not selected", name)
	return nil
}

func TestGenerateOperation_Query(t *testing.T) {
	doc, err := GenerateOperation("getAgent", "Query", agentSchema())
	require.NoError(t, err)

	op := parseOperation(t, doc)
	assert.Equal(t, ast.Query, op.Operation)
	assert.Equal(t, "getAgent", op.Name)
	require.Len(t, op.VariableDefinitions, 1)
	assert.Equal(t, "agentUuid", op.VariableDefinitions[0].Variable)
	assert.Equal(t, "String!", op.VariableDefinitions[0].Type.String())

	call := child(t, op.SelectionSet, "getAgent")
	require.Len(t, call.Arguments, 1)
	assert.Equal(t, "agentUuid", call.Arguments[0].Name)
	assert.Equal(t, ast.Variable, call.Arguments[0].Value.Kind)
	assert.Equal(t, "agentUuid", call.Arguments[0].Value.Raw)

	// threads needs an argument the generator cannot supply
	assert.Equal(t, []string{"agentUuid", "agentName", "llm", "status"}, fieldNames(call.SelectionSet))

	// agents would cycle back into AgentType
	llm := child(t, call.SelectionSet, "llm")
	assert.Equal(t, []string{"llmProvider", "llmName"}, fieldNames(llm.SelectionSet))
}

func TestGenerateOperation_Mutation(t *testing.T) {
	doc, err := GenerateOperation("insertUpdateAgent", "mutation", agentSchema())
	require.NoError(t, err)

	op := parseOperation(t, doc)
	assert.Equal(t, ast.Mutation, op.Operation)
	require.Len(t, op.VariableDefinitions, 3)
	assert.Equal(t, "String", op.VariableDefinitions[0].Type.String())
	assert.Equal(t, "[String!]!", op.VariableDefinitions[2].Type.String())

	agent := child(t, child(t, op.SelectionSet, "insertUpdateAgent").SelectionSet, "agent")
	assert.Contains(t, fieldNames(agent.SelectionSet), "agentUuid")
}

func TestGenerateOperation_ScalarRoot(t *testing.T) {
	doc, err := GenerateOperation("ping", "query", agentSchema())
	require.NoError(t, err)

	op := parseOperation(t, doc)
	assert.Empty(t, op.VariableDefinitions)
	assert.Empty(t, child(t, op.SelectionSet, "ping").SelectionSet)
}

func TestGenerateOperation_Union(t *testing.T) {
	doc, err := GenerateOperation("search", "query", agentSchema())
	require.NoError(t, err)

	op := parseOperation(t, doc)
	search := child(t, op.SelectionSet, "search")
	assert.Equal(t, []string{"__typename"}, fieldNames(search.SelectionSet))

	var conditions []string
	for _, sel := range search.SelectionSet {
		if frag, ok := sel.(*ast.InlineFragment); ok {
			conditions = append(conditions, frag.TypeCondition)
		}
	}
	assert.Equal(t, []string{"AgentType", "ThreadType"}, conditions)
}

func TestGenerateOperation_DepthLimit(t *testing.T) {
	doc, err := GenerateOperation("chain", "query", agentSchema())
	require.NoError(t, err)

	op := parseOperation(t, doc)
	depth := 0
	set := child(t, op.SelectionSet, "chain").SelectionSet
	for len(set) > 0 {
		depth++
		var next ast.SelectionSet
		for _, sel := range set {
			if f, ok := sel.(*ast.Field); ok && f.Name == "next" {
				next = f.SelectionSet
			}
		}
		set = next
	}
	assert.Equal(t, MaxSelectionDepth, depth)
}

func TestGenerateOperation_EmptySelectionFallsBackToTypename(t *testing.T) {
	doc, err := GenerateOperation("hollow", "query", agentSchema())
	require.NoError(t, err)

	op := parseOperation(t, doc)
	assert.Equal(t, []string{"__typename"}, fieldNames(child(t, op.SelectionSet, "hollow").SelectionSet))
}

func TestGenerateOperation_Errors(t *testing.T) {
	_, err := GenerateOperation("getAgent", "fetch", agentSchema())
	assert.ErrorIs(t, err, ErrUnknownOperationType)

	_, err = GenerateOperation("onAgent", "subscription", agentSchema())
	assert.ErrorIs(t, err, ErrUnknownOperationType)

	_, err = GenerateOperation("deleteAgent", "mutation", agentSchema())
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

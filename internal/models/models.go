package models

// GraphQLRequest represents a GraphQL document forwarded to a remote function.
type GraphQLRequest struct {
	Query         string                 `json:"query" yaml:"query" binding:"required"`
	Variables     map[string]interface{} `json:"variables,omitempty" yaml:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty" yaml:"operationName,omitempty"`
}

// OperationRequest represents a call built from the cached schema of a function.
type OperationRequest struct {
	OperationName string                 `json:"operationName" yaml:"operationName" binding:"required"`
	OperationType string                 `json:"operationType" yaml:"operationType" binding:"required"`
	Variables     map[string]interface{} `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// InquiryRequest represents a vector search over the documents of a function.
type InquiryRequest struct {
	UserQuery string `json:"userQuery" yaml:"userQuery" binding:"required"`
}

// GraphQLResponse is the standard GraphQL reply returned by the proxy.
type GraphQLResponse struct {
	Data   interface{}    `json:"data,omitempty"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// DataResponse is the success reply of the proxy. Data is always written,
// null included.
type DataResponse struct {
	Data interface{} `json:"data"`
}

// GraphQLError is a single entry of GraphQLResponse.Errors.
type GraphQLError struct {
	Message    string                 `json:"message"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// BatchItem is one entry of a batch file. Exactly one of Query, Operation
// or Inquiry is expected.
type BatchItem struct {
	ID           string            `json:"id" yaml:"id"`
	EndpointID   string            `json:"endpointId,omitempty" yaml:"endpointId,omitempty"`
	FunctionName string            `json:"functionName" yaml:"functionName"`
	Query        *GraphQLRequest   `json:"query,omitempty" yaml:"query,omitempty"`
	Operation    *OperationRequest `json:"operation,omitempty" yaml:"operation,omitempty"`
	Inquiry      *InquiryRequest   `json:"inquiry,omitempty" yaml:"inquiry,omitempty"`
}

// BatchFile holds the items of a batch run.
type BatchFile struct {
	Items []BatchItem `yaml:"items"`
}

// BatchResult is the outcome of one BatchItem.
type BatchResult struct {
	ID    string      `json:"id"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

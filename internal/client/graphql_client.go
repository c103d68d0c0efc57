package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/machinebox/graphql"
)

// EndpointHeader selects the endpoint id on the proxy.
const EndpointHeader = "X-Endpoint-Id"

// GraphQLClient sends queries to one function behind a running proxy.
type GraphQLClient struct {
	client     *graphql.Client
	endpointID string
}

// NewGraphQLClient creates a client for functionName on the proxy at serverURL.
func NewGraphQLClient(serverURL, functionName, endpointID string, httpClient *http.Client) (*GraphQLClient, error) {
	endpoint, err := url.JoinPath(serverURL, "graphql", functionName)
	if err != nil {
		return nil, fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}

	opts := []graphql.ClientOption{}
	if httpClient != nil {
		opts = append(opts, graphql.WithHTTPClient(httpClient))
	}
	return &GraphQLClient{client: graphql.NewClient(endpoint, opts...), endpointID: endpointID}, nil
}

// Query executes a GraphQL query and populates the data of the reply into response.
func (g *GraphQLClient) Query(ctx context.Context, query string, variables map[string]interface{}, response interface{}) error {
	req := graphql.NewRequest(query)
	for k, v := range variables {
		req.Var(k, v)
	}
	if g.endpointID != "" {
		req.Header.Set(EndpointHeader, g.endpointID)
	}

	if err := g.client.Run(ctx, req, response); err != nil {
		return fmt.Errorf("failed to execute query: %w", err)
	}
	return nil
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/ideabosque/openai-funct-base/internal/awslambda"
	"github.com/ideabosque/openai-funct-base/internal/inquiry"
	"github.com/ideabosque/openai-funct-base/internal/invoker"
	"github.com/ideabosque/openai-funct-base/internal/models"
	"github.com/ideabosque/openai-funct-base/internal/schema"
)

// EndpointHeader selects the endpoint id of a proxied call.
const EndpointHeader = "X-Endpoint-Id"

// Invoker is what the proxy needs from the remote query invoker.
type Invoker interface {
	ExecuteQuery(ctx context.Context, endpointID, functionName, query string, variables map[string]interface{}) (interface{}, error)
	ExecuteOperation(ctx context.Context, endpointID, functionName, operationName, operationType string, variables map[string]interface{}) (interface{}, error)
}

// Proxy exposes an Invoker over HTTP.
type Proxy struct {
	invoker Invoker
	target  inquiry.Target
}

func NewProxy(inv Invoker, target inquiry.Target) *Proxy {
	return &Proxy{invoker: inv, target: target}
}

// GraphQL forwards a GraphQL request to the function named in the path.
func (p *Proxy) GraphQL(c *gin.Context) {
	var req models.GraphQLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if _, gqlErr := parser.ParseQuery(&ast.Source{Input: req.Query}); gqlErr != nil {
		badRequest(c, gqlErr.Error())
		return
	}

	data, err := p.invoker.ExecuteQuery(c.Request.Context(), endpointID(c), c.Param("function_name"), req.Query, req.Variables)
	respond(c, data, err)
}

// Operation executes an operation generated from the function's schema.
func (p *Proxy) Operation(c *gin.Context) {
	var req models.OperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	data, err := p.invoker.ExecuteOperation(c.Request.Context(), endpointID(c), c.Param("function_name"),
		req.OperationName, req.OperationType, req.Variables)
	respond(c, data, err)
}

// Inquiry runs a vector document search.
func (p *Proxy) Inquiry(c *gin.Context) {
	var req models.InquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	data, err := inquiry.Inquire(c.Request.Context(), p.invoker, p.target, endpointID(c), c.Param("function_name"), req.UserQuery)
	if err == nil {
		data = map[string]interface{}{"vectorDocs": data}
	}
	respond(c, data, err)
}

func endpointID(c *gin.Context) string {
	if id := c.GetHeader(EndpointHeader); id != "" {
		return id
	}
	return c.Query("endpoint_id")
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.GraphQLResponse{
		Errors: []models.GraphQLError{{Message: message, Extensions: map[string]interface{}{"code": "BAD_REQUEST"}}},
	})
}

func respond(c *gin.Context, data interface{}, err error) {
	if err == nil {
		c.JSON(http.StatusOK, models.DataResponse{Data: data})
		return
	}

	var (
		rqe  *invoker.RemoteQueryError
		terr *awslambda.TransportError
		derr *invoker.DecodeError
	)
	switch {
	case errors.As(err, &rqe):
		c.JSON(http.StatusBadGateway, models.GraphQLResponse{Errors: RemoteErrors(rqe)})
	case errors.As(err, &terr):
		c.JSON(http.StatusBadGateway, models.GraphQLResponse{
			Errors: []models.GraphQLError{{Message: terr.Error(), Extensions: map[string]interface{}{"code": "TRANSPORT_ERROR"}}},
		})
	case errors.As(err, &derr):
		c.JSON(http.StatusBadGateway, models.GraphQLResponse{
			Errors: []models.GraphQLError{{Message: derr.Error(), Extensions: map[string]interface{}{"code": "DECODE_ERROR"}}},
		})
	case errors.Is(err, schema.ErrOperationNotFound), errors.Is(err, schema.ErrUnknownOperationType),
		errors.Is(err, invoker.ErrSchemaCacheDisabled):
		badRequest(c, err.Error())
	default:
		_ = c.Error(err)
	}
}

// RemoteErrors converts a classified reply failure into GraphQL errors.
func RemoteErrors(rqe *invoker.RemoteQueryError) []models.GraphQLError {
	ext := map[string]interface{}{"code": "REMOTE_" + strings.ToUpper(rqe.Kind)}
	if rqe.Kind != invoker.KindErrors {
		return []models.GraphQLError{{Message: rqe.Error(), Extensions: ext}}
	}

	items, ok := rqe.Payload.([]interface{})
	if !ok || len(items) == 0 {
		return []models.GraphQLError{{Message: rqe.Error(), Extensions: ext}}
	}

	out := make([]models.GraphQLError, 0, len(items))
	for _, item := range items {
		e := models.GraphQLError{Extensions: ext}
		switch v := item.(type) {
		case string:
			e.Message = v
		case map[string]interface{}:
			if msg, ok := v["message"].(string); ok {
				e.Message = msg
			} else {
				e.Message = (&invoker.RemoteQueryError{Kind: invoker.KindErrors, Payload: v}).Error()
			}
		default:
			e.Message = (&invoker.RemoteQueryError{Kind: invoker.KindErrors, Payload: v}).Error()
		}
		out = append(out, e)
	}
	return out
}

package accounts

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// OpenAPIDocument describes the wire contract of the mounted endpoints.
func (c *Component) OpenAPIDocument(version string) *openapi3.T {
	if version == "" {
		version = "dev"
	}
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "userforms",
			Description: "Registration, login and password reset endpoints.",
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
		Components: &openapi3.Components{
			Schemas: openapi3.Schemas{
				"Envelope":  openapi3.NewSchemaRef("", envelopeSchema()),
				"Result":    openapi3.NewSchemaRef("", resultSchema()),
				"Error":     openapi3.NewSchemaRef("", errorSchema()),
				"TokenBody": openapi3.NewSchemaRef("", tokenSchema()),
			},
		},
	}

	for _, op := range Operations() {
		doc.Paths.Set(c.Endpoint(op), &openapi3.PathItem{Post: c.operationSpec(op)})
	}
	doc.Paths.Set(mountPath(c.opts.BasePath, c.opts.Paths.Token), &openapi3.PathItem{Get: tokenSpec()})
	return doc
}

func (c *Component) operationSpec(op Operation) *openapi3.Operation {
	spec := openapi3.NewOperation()
	spec.Responses = &openapi3.Responses{}
	spec.OperationID = string(op)
	spec.Summary = "Submit the " + string(op) + " form"
	spec.Tags = []string{"userforms"}
	spec.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().
			WithRequired(true).
			WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/Envelope", nil)).
			WithFormDataSchemaRef(openapi3.NewSchemaRef("#/components/schemas/Envelope", nil)),
	}
	spec.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("Validation and host outcome").
		WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/Result", nil)))
	spec.AddResponse(http.StatusBadRequest, openapi3.NewResponse().
		WithDescription("Malformed envelope or payload").
		WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/Error", nil)))
	spec.AddResponse(http.StatusForbidden, openapi3.NewResponse().
		WithDescription("Anti-forgery token rejected").
		WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/Error", nil)))
	return spec
}

func tokenSpec() *openapi3.Operation {
	spec := openapi3.NewOperation()
	spec.Responses = &openapi3.Responses{}
	spec.OperationID = "token"
	spec.Summary = "Issue an anti-forgery token for one operation"
	spec.Tags = []string{"userforms"}
	spec.AddParameter(openapi3.NewQueryParameter("operation").
		WithRequired(true).
		WithSchema(operationEnum()))
	spec.AddResponse(http.StatusOK, openapi3.NewResponse().
		WithDescription("Fresh token").
		WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/TokenBody", nil)))
	spec.AddResponse(http.StatusBadRequest, openapi3.NewResponse().
		WithDescription("Unknown operation").
		WithJSONSchemaRef(openapi3.NewSchemaRef("#/components/schemas/Error", nil)))
	return spec
}

func operationEnum() *openapi3.Schema {
	values := make([]any, 0, len(Operations()))
	for _, op := range Operations() {
		values = append(values, string(op))
	}
	return openapi3.NewStringSchema().WithEnum(values...)
}

func envelopeSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("operation", operationEnum()).
		WithProperty("antiForgeryToken", openapi3.NewStringSchema()).
		WithProperty("payload", openapi3.NewStringSchema())
	schema.Required = []string{"antiForgeryToken", "payload"}
	schema.Description = "payload is the url-encoded form."
	return schema
}

func resultSchema() *openapi3.Schema {
	status := openapi3.NewIntegerSchema().WithEnum(0, 1)
	errs := openapi3.NewObjectSchema().WithAdditionalProperties(openapi3.NewStringSchema())
	errs.Description = "Messages keyed by <field id>_error, in insertion order."
	schema := openapi3.NewObjectSchema().
		WithProperty("status", status).
		WithProperty("errors", errs)
	schema.Required = []string{"status"}
	return schema
}

func errorSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().WithProperty("error", openapi3.NewStringSchema())
	schema.Required = []string{"error"}
	return schema
}

func tokenSchema() *openapi3.Schema {
	schema := openapi3.NewObjectSchema().
		WithProperty("operation", operationEnum()).
		WithProperty("token", openapi3.NewStringSchema())
	schema.Required = []string{"operation", "token"}
	return schema
}

package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/frahmantamala/beacon/internal"
	"github.com/frahmantamala/beacon/pkg/logger"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// OpenAPIValidator checks requests against an OpenAPI document before they
// reach a handler. Routes the document does not describe pass through.
type OpenAPIValidator struct {
	router routers.Router
}

func NewOpenAPIValidator(ctx context.Context, spec []byte) (*OpenAPIValidator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("build openapi router: %w", err)
	}
	return &OpenAPIValidator{router: router}, nil
}

func (v *OpenAPIValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route, pathParams, err := v.router.FindRoute(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    r,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				// Bearer tokens are checked by the auth middleware.
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
			logger.From(r.Context()).Warn().Err(err).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request rejected by schema validation")

			appErr := internal.NewValidationError("request does not match the API schema", internal.ErrCodeValidationFailed).
				WithDetails(validationReason(err))
			status, body := appErr.ToHTTPResponse()
			writeJSON(w, status, body)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func validationReason(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Parameter != nil {
			return fmt.Sprintf("parameter %q: %s", reqErr.Parameter.Name, reqErr.Reason)
		}
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			return schemaErr.Reason
		}
		if reqErr.Reason != "" {
			return reqErr.Reason
		}
	}
	return err.Error()
}

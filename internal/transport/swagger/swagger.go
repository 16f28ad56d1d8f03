package swagger

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Handler serves Swagger UI for the OpenAPI document at specPath. The bearer
// token entered in the UI survives reloads, since every tenant route needs it.
func Handler(specPath string) http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL(specPath),
		httpSwagger.DocExpansion("list"),
		httpSwagger.PersistAuthorization(true),
	)
}

package cmd

import (
	"fmt"

	"github.com/iancoleman/strcase"

	"github.com/bijuliyatra/bijuli-client/pkg/env"
	"github.com/bijuliyatra/bijuli-client/pkg/http"
)

type HTTPClientFactory struct {
	impl http.ClientFactory
}

func NewHTTPClientFactory(
	opts ...http.ClientOption,
) HTTPClientFactory {
	return HTTPClientFactory{
		impl: http.NewClientFactory(opts...),
	}
}

// MustInitClient reads the base url from <DESTINATION>_SERVICE_URL.
func (f HTTPClientFactory) MustInitClient(dest http.Destination, extraOpts ...http.ClientOption) http.Client {
	hostEnv := DestinationURLEnv(dest)
	host := env.Must(env.Parse[string](hostEnv))

	return f.impl.InitClient(dest, host, extraOpts...)
}

// DestinationURLEnv maps "bijuli-api" to BIJULI_API_SERVICE_URL.
func DestinationURLEnv(dest http.Destination) string {
	return fmt.Sprintf("%s_SERVICE_URL", strcase.ToScreamingSnake(string(dest)))
}

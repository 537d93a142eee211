package http

import (
	pkghttp "github.com/bijuliyatra/bijuli-client/pkg/http"
)

const (
	DestinationBijuliAPI pkghttp.Destination = "bijuli-api"

	RequestIDHeader = pkghttp.DefaultRequestIDHeader
)

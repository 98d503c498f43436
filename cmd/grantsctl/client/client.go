package client

import (
	"errors"
	"net/http"
	"time"

	"go.pilab.hu/grants/authlist"
	"go.pilab.hu/grants/cmd/grantsctl/config"
)

// AuthorizationsGateway returns a gateway to the account authorization API
// of the context's server.
func AuthorizationsGateway(cfg *config.Context) (*authlist.HTTPGateway, error) {
	if cfg == nil || cfg.ServerEndpoint == "" {
		return nil, errors.New("invalid context or server endpoint for authorizations client")
	}
	if cfg.UserAuthToken == "" {
		return nil, errors.New("user authentication token not found in current context. Use 'grantsctl config set-context --token'")
	}

	gw := authlist.NewHTTPGateway(authlist.BaseRoutes{BaseURL: cfg.ServerEndpoint}, cfg.UserAuthToken)
	gw.Client = &http.Client{Timeout: 30 * time.Second}
	return gw, nil
}

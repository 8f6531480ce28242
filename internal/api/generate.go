// Package api holds the HTTP models and the gin server interface generated from api/openapi.yaml.
package api

//go:generate go tool oapi-codegen -config oapi-codegen.yaml ../../api/openapi.yaml

//go:generate swag init -g docs.go -o ../../docs --parseDependency --parseInternal --dir .,../../internal/httpapi

package main

// @title userhub_api API
// @version 1.0
// @description User-management HTTP API: user creation with notification mails and an annotated active-user listing.
// @BasePath /v1

// Package docs registers the Swagger spec consumed by httpSwagger.WrapHandler
// at GET /swagger/. It is normally produced by `swag init` from the
// @-annotations in cmd/api/main.go and the handler packages; this is a
// hand-maintained stand-in with the same shape so /swagger/ has something
// to serve without a code-generation step in this build.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/yujitsuchiya/catchup-feed",
            "email": "support@example.com"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/articles": {
            "get": {
                "summary": "List articles",
                "tags": ["articles"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/articles/search": {
            "get": {
                "summary": "Keyword search over articles",
                "tags": ["articles"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/articles/search/semantic": {
            "get": {
                "summary": "Semantic (embedding) search over articles",
                "tags": ["articles"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/sources": {
            "get": {
                "summary": "List sources",
                "tags": ["sources"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Register a source",
                "tags": ["sources"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/subscriptions": {
            "get": {
                "summary": "List subscriptions",
                "tags": ["subscriptions"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Create a subscription",
                "tags": ["subscriptions"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/apikeys": {
            "get": {
                "summary": "List API keys",
                "tags": ["apikeys"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "summary": "Issue an API key",
                "tags": ["apikeys"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"201": {"description": "Created"}}
            }
        },
        "/discovery/status": {
            "get": {
                "summary": "Discovery loop status",
                "tags": ["discovery"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/process": {
            "post": {
                "summary": "Trigger enrichment",
                "tags": ["enrichment"],
                "security": [{"APIKeyAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        }
    },
    "securityDefinitions": {
        "APIKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it at runtime.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Catch-Up Feed API",
	Description:      "Multi-source news aggregation and enrichment API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package docs registers the OpenAPI document served under /swagger.
//
// The checked-in template only carries the API info and security scheme; its
// paths are empty until the document is generated from the handler
// annotations:
//
//	go generate ./docs
package docs

//go:generate swag init --v3.1 -d .. -g cmd/server/main.go -o . --ot go,yaml

import "github.com/swaggo/swag/v2"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "openapi": "3.1.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/schoolhub/backend"
        },
        "license": {
            "name": "Apache 2.0",
            "url": "http://www.apache.org/licenses/LICENSE-2.0.html"
        },
        "version": "{{.Version}}"
    },
    "servers": [
        {
            "url": "{{.Host}}{{.BasePath}}"
        }
    ],
    "paths": {},
    "components": {
        "securitySchemes": {
            "BearerAuth": {
                "description": "Bearer token authentication. Format: \"Bearer {token}\"",
                "type": "apiKey",
                "name": "Authorization",
                "in": "header"
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "SchoolHub Backend API",
	Description:      "Multi-tenant school management backend: people, academics, attendance, exams, fees, inventory and communication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

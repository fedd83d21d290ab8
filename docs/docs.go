// Package docs registers the Swagger document served at /swagger/doc.json.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/users": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Create a new user",
                "parameters": [
                    {"description": "User creation request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.CreateUserRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/domain.UserResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/problem.Problem"}}
                }
            }
        },
        "/users/{userId}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["users"],
                "summary": "Get user by ID",
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UserResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/problem.Problem"}}
                }
            }
        },
        "/users/{userId}/sleep-logs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sleep-logs"],
                "summary": "List sleep logs",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "string", "name": "cursor", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/problem.Problem"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sleep-logs"],
                "summary": "Create a sleep log",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/problem.Problem"}}
                }
            }
        },
        "/users/{userId}/quiz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Get schedule survey answers",
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/problem.Problem"}}}
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["quiz"],
                "summary": "Save schedule survey answers",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/problem.Problem"}}}
            }
        },
        "/users/{userId}/activities/{activity}/records": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["activities"],
                "summary": "Ingest an activity record",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "path", "required": true},
                    {"type": "string", "name": "activity", "in": "path", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/problem.Problem"}}}
            }
        },
        "/users/{userId}/profile": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Get the unified cognitive profile",
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/problem.Problem"}}}
            }
        },
        "/users/{userId}/profile/recompute": {
            "post": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Recompute profile and sync score",
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/problem.Problem"}}}
            }
        },
        "/users/{userId}/sync": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Get the circadian sync result",
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/problem.Problem"}}}
            }
        },
        "/users/{userId}/insights": {
            "get": {
                "produces": ["application/json"],
                "tags": ["insights"],
                "summary": "Generate coaching insights",
                "parameters": [{"type": "string", "name": "userId", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK"},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/problem.Problem"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/problem.Problem"}}
                }
            }
        },
        "/leaderboard/{domain}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["profiles"],
                "summary": "Rank users in one cognitive domain",
                "parameters": [
                    {"type": "string", "name": "domain", "in": "path", "required": true},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/problem.Problem"}}}
            }
        }
    },
    "definitions": {
        "domain.CreateUserRequest": {
            "type": "object",
            "required": ["timezone"],
            "properties": {"timezone": {"type": "string", "example": "Europe/Prague"}}
        },
        "domain.UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "timezone": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "problem.Problem": {
            "type": "object",
            "properties": {
                "type": {"type": "string"},
                "title": {"type": "string"},
                "status": {"type": "integer"},
                "detail": {"type": "string"},
                "instance": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "object"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Cognitive Sync API",
	Description:      "Cognitive profiles from activity telemetry and circadian sync scores from schedule surveys and sleep logs",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package docs registers the swagger document served at /swagger/index.html.
// It is maintained by hand next to the handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/ai/summarize": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Writes a short portfolio description from the repository's contributors, the viewer's commits and the README",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["ai"],
                "summary": "Generate a project description",
                "parameters": [
                    {
                        "description": "Repository to describe",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/summary.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SummaryResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/repos/affiliated": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Repositories the viewer owns, collaborates on or reaches through an organization, most recently updated first",
                "produces": ["application/json"],
                "tags": ["repositories"],
                "summary": "List affiliated repositories",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.AugmentedRepository"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/repos/all": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Affiliated and contributed repositories merged by repository ID",
                "produces": ["application/json"],
                "tags": ["repositories"],
                "summary": "List all repositories",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.AugmentedRepository"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/repos/contributed": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Repositories the viewer merged pull requests into or authored commits in, most recently updated first",
                "produces": ["application/json"],
                "tags": ["repositories"],
                "summary": "List contributed repositories",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.AugmentedRepository"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/user": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Returns the GitHub user document of the access token owner as received",
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Get the authenticated user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Viewer"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/user/profile": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Get the saved portfolio profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Replaces the stored profile document of the authenticated user",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["user"],
                "summary": "Save the portfolio profile",
                "parameters": [
                    {
                        "description": "Profile document",
                        "name": "profile",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SaveProfileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Removes the stored profile document of the authenticated user",
                "tags": ["user"],
                "summary": "Delete the portfolio profile",
                "responses": {
                    "204": {"description": "No Content"},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "string",
                    "enum": ["unauthorized", "invalid_input", "not_found", "upstream_error", "not_configured", "internal_error"],
                    "example": "unauthorized"
                },
                "message": {"type": "string", "example": "missing GitHub access token"}
            }
        },
        "api.SaveProfileResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean", "example": true},
                "profile": {"type": "object"}
            }
        },
        "api.SummaryResponse": {
            "type": "object",
            "properties": {
                "summary": {"type": "string", "example": "A caching layer for GitHub portfolio data written in Go."}
            }
        },
        "models.AugmentedRepository": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "full_name": {"type": "string"},
                "owner": {"$ref": "#/definitions/models.Owner"},
                "description": {"type": "string"},
                "html_url": {"type": "string"},
                "language": {"type": "string"},
                "topics": {"type": "array", "items": {"type": "string"}},
                "private": {"type": "boolean"},
                "fork": {"type": "boolean"},
                "archived": {"type": "boolean"},
                "stargazers_count": {"type": "integer"},
                "forks_count": {"type": "integer"},
                "updated_at": {"type": "string"},
                "pushed_at": {"type": "string"},
                "languages": {"type": "object", "additionalProperties": {"type": "integer"}},
                "contributor_count": {"type": "integer"},
                "commit_count": {"type": "integer"}
            }
        },
        "models.Owner": {
            "type": "object",
            "properties": {
                "login": {"type": "string"},
                "avatar_url": {"type": "string"},
                "html_url": {"type": "string"},
                "type": {"type": "string"}
            }
        },
        "models.Viewer": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "login": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "avatar_url": {"type": "string"},
                "html_url": {"type": "string"},
                "bio": {"type": "string"},
                "public_repos": {"type": "integer"},
                "followers": {"type": "integer"},
                "following": {"type": "integer"}
            }
        },
        "summary.Request": {
            "type": "object",
            "properties": {
                "owner": {"type": "string"},
                "repo": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "url": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "description": "Type \"Bearer\" followed by a space and a GitHub access token. Browsers send the access_token cookie instead.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Repofolio API",
	Description:      "Discovers the GitHub repositories a user owns or contributed to and prepares them for a portfolio. Every data route is served under the /api/v1 prefix, for example GET /api/v1/repos/all. OAuth (/auth), /health and /swagger are not prefixed.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

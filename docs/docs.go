// Package docs registers the Swagger 2.0 description of the HTTP API served at /swagger.
// It follows the layout `swag init -g cmd/api/main.go` writes and mirrors the handler
// annotations, so update both together.
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
        "/files/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Get a file",
                "parameters": [
                    {"type": "string", "description": "File id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.fileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "delete": {
                "tags": ["files"],
                "summary": "Delete a file",
                "parameters": [
                    {"type": "string", "description": "File id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Update a file's display name or meta",
                "parameters": [
                    {"type": "string", "description": "File id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields to change", "name": "file", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.updateFileRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.fileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Reports whether the database is reachable.",
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/owners": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["owners"],
                "summary": "Register an owner",
                "parameters": [
                    {"description": "Owner reference", "name": "owner", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.createOwnerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/model.Owner"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/owners/{kind}/{id}": {
            "delete": {
                "description": "Soft deletes the owner. With force=true the owner and all of its files are removed.",
                "tags": ["owners"],
                "summary": "Delete an owner",
                "parameters": [
                    {"type": "string", "description": "Owner kind", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Owner id", "name": "id", "in": "path", "required": true},
                    {"type": "boolean", "description": "Remove the owner and its files", "name": "force", "in": "query"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "502": {"description": "Bad Gateway", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/owners/{kind}/{id}/files": {
            "get": {
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "List an owner's files",
                "parameters": [
                    {"type": "string", "description": "Owner kind", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Owner id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.fileListResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            },
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["files"],
                "summary": "Attach a file to an owner",
                "parameters": [
                    {"type": "string", "description": "Owner kind", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Owner id", "name": "id", "in": "path", "required": true},
                    {"type": "file", "description": "File content", "name": "file", "in": "formData", "required": true},
                    {"type": "string", "description": "Target disk", "name": "disk", "in": "formData"},
                    {"type": "string", "description": "Directory on the disk", "name": "directory", "in": "formData"},
                    {"type": "string", "description": "Display name", "name": "display_name", "in": "formData"},
                    {"type": "string", "description": "JSON object stored with the file", "name": "meta", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.fileResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "413": {"description": "Request Entity Too Large", "schema": {"$ref": "#/definitions/handler.errorPayload"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        },
        "/owners/{kind}/{id}/restore": {
            "post": {
                "produces": ["application/json"],
                "tags": ["owners"],
                "summary": "Restore a soft deleted owner",
                "parameters": [
                    {"type": "string", "description": "Owner kind", "name": "kind", "in": "path", "required": true},
                    {"type": "string", "description": "Owner id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Owner"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorPayload"}}
                }
            }
        }
    },
    "definitions": {
        "handler.createOwnerRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"}
            }
        },
        "handler.errorEnvelope": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "handler.errorPayload": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/handler.errorEnvelope"},
                "request_id": {"type": "string"}
            }
        },
        "handler.fileListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/handler.fileResponse"}},
                "total": {"type": "integer"}
            }
        },
        "handler.fileResponse": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "disk": {"type": "string"},
                "display_name": {"type": "string"},
                "extension": {"type": "string"},
                "filename": {"type": "string"},
                "filepath": {"type": "string"},
                "id": {"type": "string"},
                "meta": {"type": "object", "additionalProperties": {}},
                "mimetype": {"type": "string"},
                "name": {"type": "string"},
                "owner": {"$ref": "#/definitions/model.OwnerRef"},
                "size": {"type": "integer"},
                "updated_at": {"type": "string"},
                "url": {"type": "string"},
                "uuid": {"type": "string"}
            }
        },
        "handler.updateFileRequest": {
            "type": "object",
            "properties": {
                "display_name": {"type": "string"},
                "meta": {"type": "object", "additionalProperties": {}}
            }
        },
        "model.Owner": {
            "type": "object",
            "properties": {
                "created_at": {"type": "string"},
                "deleted_at": {"type": "string"},
                "id": {"type": "string"},
                "kind": {"type": "string"}
            }
        },
        "model.OwnerRef": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "kind": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "File API",
	Description:      "Attaches files to owners and stores them on configurable disks.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

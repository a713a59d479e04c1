// Package docs registers the carford OpenAPI document with swag so it is
// served under /swagger. Regenerate with `swag init` after changing handler annotations.
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
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Register a user",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/apperror.MessageResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "409": {"description": "User already exists", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Log in",
                "parameters": [
                    {"description": "Credentials", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/auth.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/auth.TokenResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "409": {"description": "Wrong credentials", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/main/owners": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Owners"],
                "summary": "List owners with their cars",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/owners.ListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Owners"],
                "summary": "Create an owner",
                "parameters": [
                    {"description": "Owner", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/owners.OwnerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/owners.Owner"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/main/owners/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Owners"],
                "summary": "Get an owner",
                "parameters": [{"type": "integer", "description": "Owner ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/owners.Owner"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Owners"],
                "summary": "Update an owner",
                "parameters": [
                    {"type": "integer", "description": "Owner ID", "name": "id", "in": "path", "required": true},
                    {"description": "Owner", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/owners.OwnerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/owners.Owner"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Owners"],
                "summary": "Delete an owner and its cars",
                "parameters": [{"type": "integer", "description": "Owner ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/apperror.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/main/cars": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cars"],
                "summary": "List cars",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/cars.ListResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Cars"],
                "summary": "Create a car",
                "parameters": [
                    {"description": "Car", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/cars.CarRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/cars.Car"}},
                    "400": {"description": "Validation error or owner already has 3 cars", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Owner not found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/main/cars/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cars"],
                "summary": "Get a car",
                "parameters": [{"type": "integer", "description": "Car ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/cars.Car"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Cars"],
                "summary": "Update a car",
                "parameters": [
                    {"type": "integer", "description": "Car ID", "name": "id", "in": "path", "required": true},
                    {"description": "Car", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/cars.CarRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/cars.Car"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Cars"],
                "summary": "Delete a car",
                "parameters": [{"type": "integer", "description": "Car ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/apperror.MessageResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/apperror.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Ops"],
                "summary": "Liveness and database check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.healthResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.healthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "apperror.ErrorResponse": {
            "type": "object",
            "properties": {
                "msg": {"type": "string", "example": "Validation error"},
                "errors": {"type": "array", "items": {"$ref": "#/definitions/apperror.FieldError"}}
            }
        },
        "apperror.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "example": "password"},
                "message": {"type": "string", "example": "must contain at least one uppercase letter"}
            }
        },
        "apperror.MessageResponse": {
            "type": "object",
            "properties": {"msg": {"type": "string", "example": "Owner deleted!"}}
        },
        "auth.RegisterRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "username": {"type": "string", "maxLength": 30, "minLength": 3, "example": "alice"},
                "password": {"type": "string", "maxLength": 50, "minLength": 8, "example": "pasSword123@"}
            }
        },
        "auth.LoginRequest": {
            "type": "object",
            "required": ["password", "username"],
            "properties": {
                "username": {"type": "string", "maxLength": 30, "minLength": 3, "example": "alice"},
                "password": {"type": "string", "maxLength": 50, "minLength": 8, "example": "pasSword123@"}
            }
        },
        "auth.TokenResponse": {
            "type": "object",
            "properties": {"access_token": {"type": "string"}}
        },
        "cars.Car": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "owner_id": {"type": "integer", "example": 1},
                "color": {"type": "string", "enum": ["yellow", "blue", "gray"], "example": "blue"},
                "model": {"type": "string", "enum": ["hatch", "sedan", "convertible"], "example": "sedan"}
            }
        },
        "cars.CarRequest": {
            "type": "object",
            "required": ["color", "model", "owner_id"],
            "properties": {
                "owner_id": {"type": "integer", "example": 1},
                "color": {"type": "string", "enum": ["yellow", "blue", "gray"], "example": "blue"},
                "model": {"type": "string", "enum": ["hatch", "sedan", "convertible"], "example": "sedan"}
            }
        },
        "cars.ListResponse": {
            "type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/cars.Car"}}}
        },
        "owners.Owner": {
            "type": "object",
            "properties": {
                "id": {"type": "integer", "example": 1},
                "name": {"type": "string", "example": "Ada Lovelace"},
                "sale_opportunity": {"type": "boolean", "example": true},
                "cars": {"type": "array", "items": {"$ref": "#/definitions/cars.Car"}}
            }
        },
        "owners.OwnerRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {
                "name": {"type": "string", "maxLength": 100, "minLength": 1, "example": "Ada Lovelace"},
                "sale_opportunity": {"type": "boolean", "example": true}
            }
        },
        "owners.ListResponse": {
            "type": "object",
            "properties": {"data": {"type": "array", "items": {"$ref": "#/definitions/owners.Owner"}}}
        },
        "server.healthResponse": {
            "type": "object",
            "properties": {"status": {"type": "string", "example": "ok"}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and the access token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "carford API",
	Description:      "Owners and their cars, behind bearer-token authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

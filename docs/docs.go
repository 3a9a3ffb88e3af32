// Package docs registers the OpenAPI description served at /swagger.
// Regenerate with `swag init -g cmd/api/main.go` after changing handler annotations.
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/healthz": {
            "get": {"tags": ["Health"], "summary": "Liveness and database check", "security": [],
                "responses": {"200": {"description": "OK"}, "503": {"description": "Service Unavailable"}}}
        },
        "/leads": {
            "get": {"tags": ["Leads"], "summary": "List leads", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "assigned_user_id", "in": "query"},
                    {"type": "string", "name": "country", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}}}},
            "post": {"tags": ["Leads"], "summary": "Create lead", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "lead", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Lead"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Lead"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/leads/bulk-assign": {
            "post": {"tags": ["Leads"], "summary": "Assign leads in bulk", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.BulkAssignRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.BulkAssignResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/leads/{id}": {
            "get": {"tags": ["Leads"], "summary": "Get lead", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Lead"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}},
            "put": {"tags": ["Leads"], "summary": "Update lead profile", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "lead", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.LeadUpdate"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Lead"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}}},
            "delete": {"tags": ["Leads"], "summary": "Delete lead",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/leads/{id}/status": {
            "post": {"tags": ["Leads"], "summary": "Change lead status", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/services.StatusChangeRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/services.StatusChangeResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/leads/{id}/history": {
            "get": {"tags": ["Leads"], "summary": "Lead status history", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/leads/{id}/convert": {
            "post": {"tags": ["Leads"], "summary": "Convert lead to account", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/accounts": {
            "get": {"tags": ["Accounts"], "summary": "List accounts", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "size", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Accounts"], "summary": "Create account", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"name": "account", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.Account"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Account"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/accounts/{id}": {
            "get": {"tags": ["Accounts"], "summary": "Get account", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Account"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}}},
            "put": {"tags": ["Accounts"], "summary": "Update account", "consumes": ["application/json"], "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Account"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}}},
            "delete": {"tags": ["Accounts"], "summary": "Delete account",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}}
        },
        "/accounts/{id}/reverse": {
            "post": {"tags": ["Accounts"], "summary": "Reverse lead conversion", "produces": ["application/json"],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}}}}
        },
        "/notifications": {
            "get": {"tags": ["Notifications"], "summary": "List my notifications", "produces": ["application/json"],
                "parameters": [{"type": "boolean", "name": "unread_only", "in": "query"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/notifications/{id}/read": {
            "post": {"tags": ["Notifications"], "summary": "Mark notification read",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found"}}}
        },
        "/reports/pipeline": {
            "get": {"tags": ["Reports"], "summary": "Pipeline summary", "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}}}
        },
        "/reports/pipeline.pdf": {
            "get": {"tags": ["Reports"], "summary": "Pipeline summary as PDF", "produces": ["application/pdf"],
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "errorResponse": {"type": "object", "properties": {
            "error": {"type": "string"}, "kind": {"type": "string"}, "details": {"type": "object"}}},
        "models.Lead": {"type": "object", "properties": {
            "id": {"type": "string"}, "company_name": {"type": "string"}, "contact_name": {"type": "string"},
            "email": {"type": "string"}, "phone": {"type": "string"}, "linkedin_url": {"type": "string"},
            "country": {"type": "string"}, "status": {"type": "string"}, "notes": {"type": "string"},
            "assigned_user_id": {"type": "string"}, "created_by": {"type": "string"}, "converted_at": {"type": "string"},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "models.Account": {"type": "object", "properties": {
            "id": {"type": "string"}, "name": {"type": "string"}, "type": {"type": "string"}, "status": {"type": "string"},
            "description": {"type": "string"}, "contact_name": {"type": "string"}, "contact_email": {"type": "string"},
            "contact_phone": {"type": "string"}, "industry": {"type": "string"}, "converted_from_lead_id": {"type": "string"},
            "created_at": {"type": "string"}, "updated_at": {"type": "string"}}},
        "services.LeadUpdate": {"type": "object", "properties": {
            "company_name": {"type": "string"}, "contact_name": {"type": "string"}, "email": {"type": "string"},
            "phone": {"type": "string"}, "linkedin_url": {"type": "string"}, "country": {"type": "string"},
            "notes": {"type": "string"}, "assigned_user_id": {"type": "string"}}},
        "services.StatusChangeRequest": {"type": "object", "properties": {
            "status": {"type": "string"}, "notes": {"type": "string"}, "updated_by": {"type": "string"}}},
        "services.StatusChangeResult": {"type": "object", "properties": {
            "id": {"type": "string"}, "previous_status": {"type": "string"}, "new_status": {"type": "string"},
            "updated_at": {"type": "string"}}},
        "services.BulkAssignRequest": {"type": "object", "properties": {
            "leadIds": {"type": "array", "items": {"type": "string"}}, "assignedUserId": {"type": "string"}}},
        "services.BulkAssignResult": {"type": "object", "properties": {
            "assignedLeads": {"type": "array", "items": {"$ref": "#/definitions/models.Lead"}},
            "assignedUser": {"type": "object"}, "notificationCount": {"type": "integer"}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "IRIS AI CRM API",
	Description:      "Leads, accounts, lead-to-account conversion and bulk assignment.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

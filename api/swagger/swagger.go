package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "FieldPilot Dispatch API",
        "description": "Work-order auto-dispatch engine: matching configuration, evaluation history and marketplace integration",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Login, token refresh and account management"},
        {"name": "Crons", "description": "Matching configuration management"},
        {"name": "Evaluations", "description": "Evaluation audit trail and exports"},
        {"name": "Dispatch", "description": "Manual dispatch triggers"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Refresh access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Logout current session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current user info",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/crons": {
            "get": {
                "tags": ["Crons"],
                "summary": "List crons",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "providerId", "in": "query", "type": "string"},
                    {"name": "enabled", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Crons"],
                "summary": "Create cron",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCronRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/crons/{id}": {
            "get": {
                "tags": ["Crons"],
                "summary": "Get cron",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Crons"],
                "summary": "Update cron",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCronRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Crons"],
                "summary": "Delete cron",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/crons/{id}/evaluate": {
            "post": {
                "tags": ["Crons"],
                "summary": "Evaluate cron now",
                "description": "Run one synchronous evaluation cycle for the cron",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Cron disabled", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "List evaluations",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "cronId", "in": "query", "type": "string"},
                    {"name": "workOrderId", "in": "query", "type": "string"},
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations/export": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "Export evaluations",
                "description": "Download the filtered evaluation history as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "default": "csv"},
                    {"name": "cronId", "in": "query", "type": "string"},
                    {"name": "action", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/evaluations/metrics": {
            "get": {
                "tags": ["Evaluations"],
                "summary": "Dispatch metrics snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/dispatch/run": {
            "post": {
                "tags": ["Dispatch"],
                "summary": "Run evaluation cycle",
                "description": "Queue an evaluation run for every enabled cron",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "Cron": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "provider_id": {"type": "string"},
                "name": {"type": "string"},
                "enabled": {"type": "boolean"},
                "counter_offer_enabled": {"type": "boolean"},
                "timezone": {"type": "string"},
                "workday_start": {"type": "string"},
                "workday_end": {"type": "string"},
                "off_days": {"type": "array", "items": {"type": "string"}},
                "time_off_start": {"type": "string"},
                "time_off_end": {"type": "string"},
                "fixed_enabled": {"type": "boolean"},
                "fixed_amount": {"type": "number"},
                "hourly_enabled": {"type": "boolean"},
                "hourly_amount": {"type": "number"},
                "per_device_enabled": {"type": "boolean"},
                "per_device_amount": {"type": "number"},
                "blended_enabled": {"type": "boolean"},
                "first_hour_rate": {"type": "number"},
                "additional_hour_rate": {"type": "number"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "CreateCronRequest": {
            "type": "object",
            "properties": {
                "provider_id": {"type": "string"},
                "name": {"type": "string"},
                "enabled": {"type": "boolean"},
                "counter_offer_enabled": {"type": "boolean"},
                "timezone": {"type": "string"},
                "workday_start": {"type": "string"},
                "workday_end": {"type": "string"},
                "off_days": {"type": "array", "items": {"type": "string"}},
                "fixed_enabled": {"type": "boolean"},
                "fixed_amount": {"type": "number"},
                "hourly_enabled": {"type": "boolean"},
                "hourly_amount": {"type": "number"},
                "per_device_enabled": {"type": "boolean"},
                "per_device_amount": {"type": "number"},
                "blended_enabled": {"type": "boolean"},
                "first_hour_rate": {"type": "number"},
                "additional_hour_rate": {"type": "number"}
            },
            "required": ["provider_id", "name", "timezone", "workday_start", "workday_end"]
        },
        "UpdateCronRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "enabled": {"type": "boolean"},
                "counter_offer_enabled": {"type": "boolean"},
                "timezone": {"type": "string"},
                "workday_start": {"type": "string"},
                "workday_end": {"type": "string"},
                "off_days": {"type": "array", "items": {"type": "string"}}
            }
        },
        "Evaluation": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "cron_id": {"type": "string"},
                "work_order_id": {"type": "string"},
                "payment_satisfied": {"type": "boolean"},
                "schedule_satisfied": {"type": "boolean"},
                "action": {"type": "string"},
                "counter_offer": {"type": "object"},
                "created_at": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

// Package docs registra la especificación OpenAPI servida en /swagger.
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
        "/v1/families": {
            "get": {
                "produces": ["application/json"],
                "tags": ["families"],
                "summary": "Familias del usuario",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/family"}}},
                    "401": {"description": "unauthorized"}
                }
            }
        },
        "/v1/families/{familyID}/members": {
            "get": {
                "produces": ["application/json"],
                "tags": ["families"],
                "summary": "Integrantes de la familia",
                "parameters": [{"type": "string", "name": "familyID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}}
            }
        },
        "/v1/families/{familyID}/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["families"],
                "summary": "Resumen de la familia",
                "parameters": [{"type": "string", "name": "familyID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}}
            }
        },
        "/v1/families/{familyID}/medications": {
            "get": {
                "produces": ["application/json"],
                "tags": ["medications"],
                "summary": "Medicamentos de la familia",
                "parameters": [
                    {"type": "string", "name": "familyID", "in": "path", "required": true},
                    {"type": "boolean", "name": "active", "in": "query"},
                    {"type": "string", "name": "member_id", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"},
                    {"type": "string", "name": "sort_by", "in": "query"},
                    {"type": "string", "name": "sort_order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/medication"}}},
                    "400": {"description": "invalid input"},
                    "403": {"description": "forbidden"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["medications"],
                "summary": "Alta de medicamento",
                "parameters": [
                    {"type": "string", "name": "familyID", "in": "path", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/medication"}}
                ],
                "responses": {"201": {"description": "Created"}, "400": {"description": "invalid input"}, "422": {"description": "schedule rejected"}}
            }
        },
        "/v1/families/{familyID}/medications/today": {
            "get": {
                "produces": ["application/json"],
                "tags": ["medications"],
                "summary": "Tomas programadas para hoy",
                "parameters": [{"type": "string", "name": "familyID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/v1/families/{familyID}/medications/{medicationID}": {
            "get": {"tags": ["medications"], "summary": "Detalle de medicamento", "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}},
            "patch": {"tags": ["medications"], "summary": "Edición parcial", "responses": {"200": {"description": "OK"}, "422": {"description": "schedule rejected"}}},
            "delete": {"tags": ["medications"], "summary": "Baja de medicamento", "responses": {"204": {"description": "No Content"}}}
        },
        "/v1/families/{familyID}/appointments": {
            "get": {"tags": ["appointments"], "summary": "Citas de la familia", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["appointments"], "summary": "Alta de cita", "responses": {"201": {"description": "Created"}}}
        },
        "/v1/families/{familyID}/appointments/agenda": {
            "get": {"tags": ["appointments"], "summary": "Próximas citas y pasadas", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/families/{familyID}/vaccinations": {
            "get": {"tags": ["vaccinations"], "summary": "Vacunas de la familia", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["vaccinations"], "summary": "Registro de vacuna", "responses": {"201": {"description": "Created"}}}
        },
        "/v1/families/{familyID}/vaccinations/due": {
            "get": {"tags": ["vaccinations"], "summary": "Dosis pendientes", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/families/{familyID}/members/{memberID}/history": {
            "get": {"tags": ["history"], "summary": "Historial clínico del integrante", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/families/{familyID}/history": {
            "get": {"tags": ["history"], "summary": "Antecedentes familiares", "responses": {"200": {"description": "OK"}}}
        },
        "/v1/notifications": {
            "get": {"tags": ["notifications"], "summary": "Notificaciones del usuario", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["notifications"], "summary": "Borra todas", "responses": {"204": {"description": "No Content"}}}
        },
        "/v1/schedules/evaluate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedules"],
                "summary": "Evalúa un calendario de medicación",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/schedule"}}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "invalid input"}}
            }
        },
        "/v1/schedules/validate": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["schedules"],
                "summary": "Valida un calendario antes de guardarlo",
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/schedule"}}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "schedule rejected"}}
            }
        }
    },
    "definitions": {
        "family": {
            "type": "object",
            "properties": {"id": {"type": "string"}, "name": {"type": "string"}}
        },
        "schedule": {
            "type": "object",
            "properties": {
                "start_date": {"type": "string", "example": "2024-03-01"},
                "end_date": {"type": "string"},
                "reminder_days": {"type": "array", "items": {"type": "integer"}},
                "reminder_times": {"type": "array", "items": {"type": "string", "example": "08:00"}},
                "reference_date": {"type": "string"}
            }
        },
        "medication": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "member_id": {"type": "string"},
                "name": {"type": "string"},
                "dosage": {"type": "string"},
                "frequency": {"type": "string"},
                "start_date": {"type": "string"},
                "end_date": {"type": "string"},
                "reminder_days": {"type": "array", "items": {"type": "integer"}},
                "reminder_times": {"type": "array", "items": {"type": "string"}},
                "is_active": {"type": "boolean"},
                "days_label": {"type": "string"},
                "scheduled_today": {"type": "boolean"}
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
	Title:            "SaludHogar API",
	Description:      "Calendarios de medicación, citas, vacunas e historial clínico familiar.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

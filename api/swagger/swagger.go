package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Event Calendar API",
        "description": "Events with fixed, nth-weekday and relative dates, resolved on read and exported as iCalendar, CSV or PDF.",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": ["http"],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Events", "description": "Event definitions and their resolved dates"},
        {"name": "Transfer", "description": "CSV and iCalendar import, ICS/CSV/PDF export"}
    ],
    "paths": {
        "/events": {
            "get": {
                "tags": ["Events"],
                "summary": "List events with resolved dates",
                "parameters": [
                    {"name": "date_type", "in": "query", "type": "string", "enum": ["fixed", "nth", "relative"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Events"],
                "summary": "Create event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/{id}": {
            "get": {
                "tags": ["Events"],
                "summary": "Get event",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Events"],
                "summary": "Replace event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Events"],
                "summary": "Delete event",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/events/preview": {
            "post": {
                "tags": ["Events"],
                "summary": "Resolve an event payload without saving it",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EventRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/rebase-year": {
            "post": {
                "tags": ["Events"],
                "summary": "Move every nth event to a new base year",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RebaseYearRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/events/import": {
            "post": {
                "tags": ["Transfer"],
                "summary": "Import events from a CSV or ICS file",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "format", "in": "formData", "type": "string", "enum": ["csv", "ics"]}
                ],
                "responses": {
                    "200": {"description": "Import report", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "File too large"},
                    "415": {"description": "Unsupported file type"}
                }
            }
        },
        "/events/export.ics": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Export resolved events as iCalendar",
                "produces": ["text/calendar"],
                "responses": {
                    "200": {"description": "Calendar file", "headers": {"X-Skipped-Events": {"type": "integer"}}}
                }
            }
        },
        "/events/export.csv": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Export every event as CSV",
                "produces": ["text/csv"],
                "responses": {
                    "200": {"description": "CSV file", "headers": {"X-Skipped-Events": {"type": "integer"}}}
                }
            }
        },
        "/events/export.pdf": {
            "get": {
                "tags": ["Transfer"],
                "summary": "Export resolved events as a PDF agenda",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF file", "headers": {"X-Skipped-Events": {"type": "integer"}}}
                }
            }
        }
    },
    "definitions": {
        "EventRequest": {
            "type": "object",
            "required": ["title", "date_type"],
            "properties": {
                "title": {"type": "string"},
                "description": {"type": "string"},
                "location": {"type": "string"},
                "date_type": {"type": "string", "enum": ["fixed", "nth", "relative"]},
                "start_date": {"type": "string", "format": "date"},
                "end_date": {"type": "string", "format": "date"},
                "nth_occurrence": {"type": "integer", "enum": [1, 2, 3, 4, -1]},
                "day_of_week": {"type": "integer", "minimum": 0, "maximum": 6},
                "month": {"type": "integer", "minimum": 1, "maximum": 12},
                "base_year": {"type": "integer"},
                "relative_period": {"type": "integer", "minimum": 1},
                "relative_unit": {"type": "string", "enum": ["days", "weeks", "months", "years"]},
                "relative_direction": {"type": "string", "enum": ["before", "after"]},
                "relative_event_name": {"type": "string"}
            }
        },
        "RebaseYearRequest": {
            "type": "object",
            "required": ["year"],
            "properties": {
                "year": {"type": "integer", "minimum": 1, "maximum": 9999}
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

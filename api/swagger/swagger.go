package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Course Scheduling API",
        "description": "Course request lifecycle and instructor scheduling engine",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Course Requests", "description": "Request lifecycle transitions"},
        {"name": "Availability", "description": "Instructor availability ledger and schedule"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/requests": {
            "get": {
                "tags": ["Course Requests"],
                "summary": "List course requests",
                "parameters": [
                    {"name": "organizationId", "in": "query", "type": "string"},
                    {"name": "instructorId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "includeArchived", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Course Requests"],
                "summary": "Submit course request",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate active request", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/requests/{id}": {
            "get": {
                "tags": ["Course Requests"],
                "summary": "Get course request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/requests/{id}/assign": {
            "post": {
                "tags": ["Course Requests"],
                "summary": "Assign instructor",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Instructor conflict", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/requests/{id}/reschedule": {
            "post": {
                "tags": ["Course Requests"],
                "summary": "Reschedule confirmed request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RescheduleRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Instructor conflict or invalid state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/requests/{id}/cancel": {
            "post": {
                "tags": ["Course Requests"],
                "summary": "Cancel request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CancelRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/requests/{id}/complete": {
            "post": {
                "tags": ["Course Requests"],
                "summary": "Complete confirmed request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/CompleteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already completed or invalid state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/requests/{id}/archive": {
            "post": {
                "tags": ["Course Requests"],
                "summary": "Archive completed, invoiced request",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid state", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/instructors/{id}/availability": {
            "get": {
                "tags": ["Availability"],
                "summary": "List availability ledger",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Availability"],
                "summary": "Open a day for work",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/MarkAvailableRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/instructors/{id}/availability/{date}": {
            "delete": {
                "tags": ["Availability"],
                "summary": "Remove availability for a day",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "409": {"description": "Confirmed course occupies this date", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/instructors/{id}/schedule": {
            "get": {
                "tags": ["Availability"],
                "summary": "List materialized schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "CourseRequest": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "organization_id": {"type": "string"},
                "course_type_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "requested_date": {"type": "string"},
                "location": {"type": "string"},
                "confirmed_date": {"type": "string"},
                "confirmed_start": {"type": "string"},
                "confirmed_end": {"type": "string"},
                "student_count": {"type": "integer"},
                "notes": {"type": "string"},
                "status": {"type": "string"},
                "archived": {"type": "boolean"},
                "invoiced": {"type": "boolean"},
                "created_at": {"type": "string"},
                "updated_at": {"type": "string"}
            }
        },
        "AvailabilityEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "date": {"type": "string"},
                "status": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "ClassEntry": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "course_request_id": {"type": "string"},
                "instructor_id": {"type": "string"},
                "organization_id": {"type": "string"},
                "course_type_id": {"type": "string"},
                "date": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "location": {"type": "string"},
                "max_students": {"type": "integer"},
                "status": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "SubmitRequest": {
            "type": "object",
            "properties": {
                "organization_id": {"type": "string"},
                "course_type_id": {"type": "string"},
                "requested_date": {"type": "string"},
                "location": {"type": "string"},
                "student_count": {"type": "integer"},
                "notes": {"type": "string"}
            },
            "required": ["organization_id", "course_type_id", "requested_date", "location"]
        },
        "AssignRequest": {
            "type": "object",
            "properties": {
                "instructor_id": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"}
            },
            "required": ["instructor_id", "start_time", "end_time"]
        },
        "RescheduleRequest": {
            "type": "object",
            "properties": {
                "new_date": {"type": "string"},
                "new_start": {"type": "string"},
                "new_end": {"type": "string"},
                "new_instructor_id": {"type": "string"}
            },
            "required": ["new_date", "new_start", "new_end"]
        },
        "CancelRequest": {
            "type": "object",
            "properties": {
                "reason": {"type": "string"}
            },
            "required": ["reason"]
        },
        "CompleteRequest": {
            "type": "object",
            "properties": {
                "comments": {"type": "string"}
            }
        },
        "MarkAvailableRequest": {
            "type": "object",
            "properties": {
                "date": {"type": "string"}
            },
            "required": ["date"]
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

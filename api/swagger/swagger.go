package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Board Result API",
        "description": "Academic result recording, grading and publication service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "AcademicYears", "description": "Academic year catalogue"},
        {"name": "Subjects", "description": "Subject catalogue"},
        {"name": "ClassLevels", "description": "Class level catalogue"},
        {"name": "Streams", "description": "Stream catalogue"},
        {"name": "Students", "description": "Student registry"},
        {"name": "AcademicYearSubjects", "description": "Subject offerings with marks configuration"},
        {"name": "Examinations", "description": "Examination definitions"},
        {"name": "StudentResults", "description": "Result entry, publication and statistics"}
    ],
    "paths": {
        "/academic-years": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "List academic years",
                "parameters": [
                    {"name": "year_label", "in": "query", "type": "string"},
                    {"name": "is_current", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["AcademicYears"],
                "summary": "Create academic year",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/current": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "Get the current academic year",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/academic-years/{id}": {
            "get": {
                "tags": ["AcademicYears"],
                "summary": "Get academic year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["AcademicYears"],
                "summary": "Update academic year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["AcademicYears"],
                "summary": "Delete academic year",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/academic-years/{id}/set-current": {
            "post": {
                "tags": ["AcademicYears"],
                "summary": "Mark an academic year as current",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-results": {
            "get": {
                "tags": ["StudentResults"],
                "summary": "List student results",
                "parameters": [
                    {"name": "examination_id", "in": "query", "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"},
                    {"name": "result_status", "in": "query", "type": "string"},
                    {"name": "is_published", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["StudentResults"],
                "summary": "Record a student result",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentResultRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-results/statistics": {
            "get": {
                "tags": ["StudentResults"],
                "summary": "Result statistics",
                "parameters": [
                    {"name": "examination_id", "in": "query", "type": "string"},
                    {"name": "academic_year_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-results/{id}": {
            "get": {
                "tags": ["StudentResults"],
                "summary": "Get student result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["StudentResults"],
                "summary": "Update student result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentResultRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["StudentResults"],
                "summary": "Delete student result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/student-results/{id}/publish": {
            "patch": {
                "tags": ["StudentResults"],
                "summary": "Publish a single result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-results/{id}/unpublish": {
            "patch": {
                "tags": ["StudentResults"],
                "summary": "Withdraw a published result",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-results/student/{studentId}/examination/{examinationId}": {
            "get": {
                "tags": ["StudentResults"],
                "summary": "Get a student's result for an examination",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "examinationId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-results/examination/{examinationId}/publish": {
            "patch": {
                "tags": ["StudentResults"],
                "summary": "Rank and publish every result of an examination",
                "parameters": [
                    {"name": "examinationId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/student-results/examination/{examinationId}/export": {
            "get": {
                "tags": ["StudentResults"],
                "summary": "Export an examination result sheet",
                "produces": ["application/octet-stream"],
                "parameters": [
                    {"name": "examinationId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        }
    },
    "definitions": {
        "SubjectMarkInput": {
            "type": "object",
            "properties": {
                "academic_year_subject_id": {"type": "string"},
                "marks_obtained": {"type": "number"}
            },
            "required": ["academic_year_subject_id", "marks_obtained"]
        },
        "CreateStudentResultRequest": {
            "type": "object",
            "properties": {
                "examination_id": {"type": "string"},
                "student_id": {"type": "string"},
                "remarks": {"type": "string"},
                "subject_marks": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectMarkInput"}
                }
            },
            "required": ["examination_id", "student_id", "subject_marks"]
        },
        "UpdateStudentResultRequest": {
            "type": "object",
            "properties": {
                "remarks": {"type": "string"},
                "subject_marks": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/SubjectMarkInput"}
                }
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
                "success": {"type": "boolean"},
                "message": {"type": "string"},
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "timestamp": {"type": "string"}
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

package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "MagangHub API",
        "description": "Internship (PKL) management for vocational schools",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Login, refresh, and session"},
        {"name": "Applications", "description": "Placement request workflow"},
        {"name": "Groups", "description": "Group formation and submission"},
        {"name": "Transfers", "description": "Placement transfer approval chain"},
        {"name": "Leaves", "description": "Leave (izin) requests"},
        {"name": "Issues", "description": "Student issue tracking"},
        {"name": "Realizations", "description": "Activity realization evidence"},
        {"name": "Notifications", "description": "Realtime event stream"},
        {"name": "Master Data", "description": "Administrative reference data"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue tokens",
                "responses": {
                    "200": {"description": "Tokens and resolved role hats"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Rotate the refresh token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Expired or revoked token"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current identity and hats",
                "responses": {
                    "200": {"description": "Identity payload"}
                }
            }
        },
        "/applications": {
            "get": {
                "tags": ["Applications"],
                "summary": "List placement requests",
                "responses": {
                    "200": {"$ref": "#/responses/ListEnvelope"}
                }
            },
            "post": {
                "tags": ["Applications"],
                "summary": "Submit a placement request",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "Student already has an active application"}
                }
            }
        },
        "/applications/{id}/decision": {
            "post": {
                "tags": ["Applications"],
                "summary": "Approve or reject a request",
                "responses": {
                    "200": {"description": "Decided"},
                    "409": {"description": "Already decided"}
                }
            }
        },
        "/applications/{id}/letter": {
            "get": {
                "tags": ["Applications"],
                "summary": "Download the introduction letter PDF",
                "produces": ["application/pdf"],
                "responses": {
                    "200": {"description": "PDF document"},
                    "409": {"description": "Placement not approved"}
                }
            }
        },
        "/groups": {
            "post": {
                "tags": ["Groups"],
                "summary": "Create a group and invite members",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "A member is already grouped"}
                }
            }
        },
        "/groups/{id}/submit": {
            "post": {
                "tags": ["Groups"],
                "summary": "Submit the group's application",
                "responses": {
                    "200": {"description": "Submitted"},
                    "412": {"description": "Not all invitations accepted"}
                }
            }
        },
        "/transfers": {
            "post": {
                "tags": ["Transfers"],
                "summary": "Request a placement transfer",
                "responses": {
                    "201": {"description": "Created"},
                    "409": {"description": "An open transfer already exists"}
                }
            }
        },
        "/transfers/{id}/decision": {
            "post": {
                "tags": ["Transfers"],
                "summary": "Decide the current approval link",
                "responses": {
                    "200": {"description": "Advanced"},
                    "409": {"description": "Not this approver's turn"}
                }
            }
        },
        "/leaves": {
            "post": {
                "tags": ["Leaves"],
                "summary": "File a leave request with evidence photos",
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Photo batch rejected"}
                }
            }
        },
        "/issues": {
            "post": {
                "tags": ["Issues"],
                "summary": "Raise an issue about a student",
                "responses": {
                    "201": {"description": "Created"}
                }
            }
        },
        "/realizations/photos": {
            "post": {
                "tags": ["Realizations"],
                "summary": "Upload evidence photos (phase one)",
                "responses": {
                    "200": {"description": "Stored photo URLs"},
                    "422": {"description": "Batch rejected, nothing stored"}
                }
            }
        },
        "/notifications/stream": {
            "get": {
                "tags": ["Notifications"],
                "summary": "WebSocket notification stream",
                "responses": {
                    "101": {"description": "Switching protocols"}
                }
            }
        }
    },
    "responses": {
        "ListEnvelope": {
            "description": "Paginated list",
            "schema": {"$ref": "#/definitions/ResponseEnvelope"}
        }
    },
    "definitions": {
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
                "total_all": {"type": "integer"},
                "success": {"type": "boolean"}
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

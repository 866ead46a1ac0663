// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/elections/{election_id}": {
            "get": {
                "summary": "Get election",
                "parameters": [{"name": "election_id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Election"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/v1/elections/{election_id}/sessions/active": {
            "get": {
                "summary": "Find the ongoing session of an election",
                "parameters": [{"name": "election_id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "session is null when nothing is ongoing", "schema": {"$ref": "#/definitions/ActiveSession"}},
                    "503": {"description": "Registry unavailable", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/v1/elections/{election_id}/voter": {
            "get": {
                "summary": "Resolve the caller's voter record",
                "parameters": [
                    {"name": "election_id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-User-Id", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/Voter"}},
                    "403": {"description": "Not a registered voter", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/v1/elections/{election_id}/has-voted": {
            "get": {
                "summary": "Whether the caller voted in the ongoing session",
                "parameters": [
                    {"name": "election_id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-User-Id", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HasVoted"}}
                }
            }
        },
        "/v1/elections/{election_id}/votes": {
            "post": {
                "summary": "Cast one vote record",
                "parameters": [
                    {"name": "election_id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-User-Id", "in": "header", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CastVote"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/VoteRecord"}},
                    "409": {"description": "Session not ongoing or duplicate vote", "schema": {"$ref": "#/definitions/Error"}}
                }
            }
        },
        "/v1/elections/{election_id}/my-votes": {
            "get": {
                "summary": "List the caller's own vote records",
                "parameters": [
                    {"name": "election_id", "in": "path", "required": true, "type": "string"},
                    {"name": "X-User-Id", "in": "header", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/VoteRecordList"}}
                }
            }
        }
    },
    "definitions": {
        "Error": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}}},
        "Election": {"type": "object", "properties": {
            "election_id": {"type": "string"}, "name": {"type": "string"}, "description": {"type": "string"},
            "status": {"type": "string", "enum": ["upcoming", "ongoing", "past"]}, "date": {"type": "string", "format": "date-time"}}},
        "Option": {"type": "object", "properties": {"option_id": {"type": "string"}, "value": {"type": "string"}, "description": {"type": "string"}}},
        "Item": {"type": "object", "properties": {
            "item_id": {"type": "string"}, "title": {"type": "string"}, "kind": {"type": "string", "enum": ["position", "multi"]},
            "max_selections": {"type": "integer"}, "options": {"type": "array", "items": {"$ref": "#/definitions/Option"}}}},
        "Session": {"type": "object", "properties": {
            "session_id": {"type": "string"}, "election_id": {"type": "string"}, "name": {"type": "string"},
            "description": {"type": "string"}, "status": {"type": "string"},
            "items": {"type": "array", "items": {"$ref": "#/definitions/Item"}}}},
        "ActiveSession": {"type": "object", "properties": {"session": {"$ref": "#/definitions/Session"}}},
        "Voter": {"type": "object", "properties": {"voter_id": {"type": "string"}, "election_id": {"type": "string"}, "weight": {"type": "number"}}},
        "HasVoted": {"type": "object", "properties": {"has_voted": {"type": "boolean"}}},
        "CastVote": {"type": "object", "properties": {"session_id": {"type": "string"}, "item_id": {"type": "string"}, "option_id": {"type": "string"}}},
        "VoteRecord": {"type": "object", "properties": {
            "record_id": {"type": "string"}, "voter_id": {"type": "string"}, "election_id": {"type": "string"},
            "session_id": {"type": "string"}, "item_id": {"type": "string"}, "option_id": {"type": "string"},
            "weight": {"type": "number"}, "cast_at": {"type": "string", "format": "date-time"}}},
        "VoteRecordList": {"type": "object", "properties": {"items": {"type": "array", "items": {"$ref": "#/definitions/VoteRecord"}}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Agora voting booth API",
	Description:      "Session lookup, voter eligibility and vote casting for agora elections.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

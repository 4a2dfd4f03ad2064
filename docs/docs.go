// Package docs holds the OpenAPI description served at /swagger. It follows
// the layout `swag init` produces from the handler annotations in
// internal/api.
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
        "/api/state": {
            "get": {
                "description": "Records in entry order, standings in rank order, the reward summary and the revision counter.",
                "produces": ["application/json"],
                "tags": ["competition"],
                "summary": "Current competition state",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.State"}}
                }
            }
        },
        "/api/distributors": {
            "post": {
                "description": "Blank names are ignored. Counts start unset.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["distributors"],
                "summary": "Add a distributor",
                "parameters": [
                    {"description": "Distributor name", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.AddRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.State"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/distributors/bulk": {
            "post": {
                "description": "One name per line. Blank lines are skipped and duplicates are kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["distributors"],
                "summary": "Add distributors in bulk",
                "parameters": [
                    {"description": "Newline separated names", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.BulkAddRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.State"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/distributors/{id}": {
            "delete": {
                "produces": ["application/json"],
                "tags": ["distributors"],
                "summary": "Remove a distributor",
                "parameters": [
                    {"type": "string", "description": "Distributor id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.State"}}
                }
            },
            "patch": {
                "description": "Sets each field present in the body. Count fields take a non-negative integer; anything else clears the count. Unknown ids are ignored.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["distributors"],
                "summary": "Edit a distributor",
                "parameters": [
                    {"type": "string", "description": "Distributor id", "name": "id", "in": "path", "required": true},
                    {"description": "Fields: name, activities, amh_sold, urus_sold", "name": "request", "in": "body", "required": true, "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.State"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/settings": {
            "put": {
                "description": "Sets each weight present in the body. Unparsable values become 0. Every record is re-scored and re-ranked.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["settings"],
                "summary": "Change point weights",
                "parameters": [
                    {"description": "Weights", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/competition.PointConfig"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.State"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/import": {
            "post": {
                "description": "Replaces every record with the rows of the \"Competition Data\" sheet. The current data is kept when the file is rejected.",
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["import"],
                "summary": "Import a competition workbook",
                "parameters": [
                    {"type": "file", "description": "Workbook (.xlsx)", "name": "file", "in": "formData", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.State"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}},
                    "413": {"description": "Request Entity Too Large", "schema": {"type": "object", "additionalProperties": true}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/export/results.xlsx": {
            "get": {
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "Download the results workbook",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/export/template.xlsx": {
            "get": {
                "description": "Lists the current names with blank tallies, or three blank rows for an untouched session.",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "tags": ["export"],
                "summary": "Download the fillable template",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/export/presentation.html": {
            "get": {
                "produces": ["text/html"],
                "tags": ["export"],
                "summary": "Download the standings presentation",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/export/certificates.html": {
            "get": {
                "description": "One printable certificate per winner. Fails when nobody has earned a reward.",
                "produces": ["text/html"],
                "tags": ["export"],
                "summary": "Download reward certificates",
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/ws": {
            "get": {
                "description": "Websocket that receives {\"revision\": N} after every change to the caller's session.",
                "tags": ["live"],
                "summary": "Revision stream",
                "responses": {}
            }
        }
    },
    "definitions": {
        "api.AddRequest": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "api.BulkAddRequest": {
            "type": "object",
            "properties": {"names": {"type": "string"}}
        },
        "competition.PointConfig": {
            "type": "object",
            "properties": {
                "activity_weight": {"type": "integer"},
                "primary_weight": {"type": "integer"},
                "secondary_weight": {"type": "integer"}
            }
        },
        "competition.RankedRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "activities": {"type": "integer", "x-nullable": true},
                "amh_sold": {"type": "integer", "x-nullable": true},
                "urus_sold": {"type": "integer", "x-nullable": true},
                "total_quantity": {"type": "integer"},
                "total_sales": {"type": "integer"},
                "points": {"type": "integer"},
                "rank": {"type": "integer"},
                "reward": {"type": "string", "example": "5 AMH"}
            }
        },
        "competition.TierBucket": {
            "type": "object",
            "properties": {
                "reward": {"type": "string"},
                "winners": {"type": "array", "items": {"$ref": "#/definitions/competition.RankedRecord"}},
                "machines": {"type": "integer"}
            }
        },
        "competition.Summary": {
            "type": "object",
            "properties": {
                "buckets": {"type": "array", "items": {"$ref": "#/definitions/competition.TierBucket"}},
                "winner_count": {"type": "integer"},
                "grand_total": {"type": "integer"}
            }
        },
        "session.State": {
            "type": "object",
            "properties": {
                "revision": {"type": "integer"},
                "config": {"$ref": "#/definitions/competition.PointConfig"},
                "distributors": {"type": "array", "items": {"$ref": "#/definitions/competition.RankedRecord"}},
                "standings": {"type": "array", "items": {"$ref": "#/definitions/competition.RankedRecord"}},
                "summary": {"$ref": "#/definitions/competition.Summary"}
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
	Title:            "Distributor Competition API",
	Description:      "Score, rank and reward distributors in an AMH/URUS sales competition.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package docs registers the OpenAPI description served under /swagger.
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
        "/formats": {
            "get": {"tags": ["formats"], "summary": "List team match formats", "responses": {"200": {"description": "OK"}}}
        },
        "/formats/{format}": {
            "get": {"tags": ["formats"], "summary": "Roles and submatch order of one team format", "parameters": [{"type": "string", "name": "format", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/matches": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Create a singles or doubles match", "responses": {"201": {"description": "Created"}}}
        },
        "/matches/{matchID}": {
            "get": {"tags": ["matches"], "summary": "Get a match with its full scoresheet", "parameters": [{"type": "string", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/matches/{matchID}/points": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Award a point to a side", "parameters": [{"type": "string", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/matches/{matchID}/points/undo": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Take back the last point a side won", "parameters": [{"type": "string", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/matches/{matchID}/server": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["matches"], "summary": "Who serves the next rally", "parameters": [{"type": "string", "name": "matchID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/team-matches": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["team-matches"], "summary": "Create a team match", "responses": {"201": {"description": "Created"}}}
        },
        "/team-matches/{teamMatchID}": {
            "get": {"tags": ["team-matches"], "summary": "Get a team match with its submatches", "parameters": [{"type": "string", "name": "teamMatchID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["tournaments"], "summary": "Create a round-robin tournament", "responses": {"201": {"description": "Created"}}}
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {"tags": ["tournaments"], "summary": "Get the last computed standings", "parameters": [{"type": "string", "name": "tournamentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Table Tennis Scoring API",
	Description:      "Live scoring of table tennis matches, team matches and round-robin tournaments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

// Package docs holds the OpenAPI description served under /swagger.
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
        "/health": {
            "get": {
                "summary": "Health check",
                "tags": [
                    "system"
                ],
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/auth/sign-up": {
            "post": {
                "summary": "Register operator",
                "tags": [
                    "auth"
                ],
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.Credentials"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "409": {
                        "description": "username already taken"
                    }
                }
            }
        },
        "/auth/sign-in": {
            "post": {
                "summary": "Sign in",
                "tags": [
                    "auth"
                ],
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.Credentials"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "401": {
                        "description": "invalid credentials"
                    }
                }
            }
        },
        "/ws": {
            "get": {
                "summary": "Dashboard stream",
                "tags": [
                    "system"
                ],
                "produces": [
                    "application/json"
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "interval",
                        "type": "string",
                        "description": "state interval, e.g. 2s (max 10s)"
                    },
                    {
                        "in": "query",
                        "name": "interval_ms",
                        "type": "integer",
                        "description": "state interval in milliseconds"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/api/v1/commands": {
            "post": {
                "summary": "Send command",
                "tags": [
                    "commands"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.SendCommandRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/commands/queue": {
            "get": {
                "summary": "Get command queue",
                "tags": [
                    "commands"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/commands/flush": {
            "post": {
                "summary": "Flush command queue",
                "tags": [
                    "commands"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/connection": {
            "get": {
                "summary": "Get connection view",
                "tags": [
                    "connection"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/connection/poll": {
            "post": {
                "summary": "Poll device status",
                "tags": [
                    "connection"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/connection/mode": {
            "post": {
                "summary": "Set connection mode",
                "tags": [
                    "connection"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.SetModeRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/connection/sync": {
            "post": {
                "summary": "Force sync",
                "tags": [
                    "connection"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "502": {
                        "description": "device sync failed"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/notifications/preferences": {
            "get": {
                "summary": "Get notification preferences",
                "tags": [
                    "preferences"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            },
            "put": {
                "summary": "Update notification preferences",
                "tags": [
                    "preferences"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/recommendations/preferences": {
            "get": {
                "summary": "Get recommendation preferences",
                "tags": [
                    "preferences"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            },
            "put": {
                "summary": "Update recommendation preferences",
                "tags": [
                    "preferences"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/schedule": {
            "get": {
                "summary": "Get silent-time schedule",
                "tags": [
                    "schedule"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            },
            "put": {
                "summary": "Update silent-time schedule",
                "tags": [
                    "schedule"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/handlers.UpdateScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/sensors": {
            "post": {
                "summary": "Ingest sensor snapshot",
                "tags": [
                    "sensors"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        },
        "/api/v1/logs": {
            "get": {
                "summary": "List device events",
                "tags": [
                    "logs"
                ],
                "produces": [
                    "application/json"
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "query",
                        "name": "from",
                        "type": "string",
                        "description": "RFC3339, \"2006-01-02 15:04:05\" or \"2006-01-02\""
                    },
                    {
                        "in": "query",
                        "name": "to",
                        "type": "string",
                        "description": "upper bound; a bare date means end of day"
                    },
                    {
                        "in": "query",
                        "name": "type",
                        "type": "string",
                        "description": "event type"
                    },
                    {
                        "in": "query",
                        "name": "limit",
                        "type": "integer",
                        "description": "newest N events (max 1000)"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    },
                    "400": {
                        "description": "invalid request"
                    },
                    "401": {
                        "description": "missing or invalid token"
                    }
                }
            }
        }
    },
    "definitions": {
        "handlers.Credentials": {
            "type": "object",
            "required": [
                "username",
                "password"
            ],
            "properties": {
                "username": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "handlers.SendCommandRequest": {
            "type": "object",
            "required": [
                "device_id",
                "action"
            ],
            "properties": {
                "device_id": {
                    "type": "string"
                },
                "action": {
                    "type": "string"
                },
                "params": {
                    "type": "object"
                }
            }
        },
        "handlers.SetModeRequest": {
            "type": "object",
            "required": [
                "mode"
            ],
            "properties": {
                "mode": {
                    "type": "string",
                    "enum": [
                        "AUTO",
                        "ONLINE",
                        "OFFLINE"
                    ]
                }
            }
        },
        "handlers.UpdateScheduleRequest": {
            "type": "object",
            "required": [
                "startTime",
                "endTime"
            ],
            "properties": {
                "enabled": {
                    "type": "boolean"
                },
                "startTime": {
                    "type": "string",
                    "example": "22:00"
                },
                "endTime": {
                    "type": "string",
                    "example": "05:00"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Bantay Bot API",
	Description:      "Operator API for the Bantay Bot field device.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

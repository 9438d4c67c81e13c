package docs

import "github.com/swaggo/swag"

// @title           TaskHub API
// @version         1.0
// @description     API for managing projects, tasks, progress approvals, notifications and service requests

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Users
// @tag.description Registration, login and device tokens

// @tag.name Projects
// @tag.description Project management operations

// @tag.name Tasks
// @tag.description Task management and the progress approval workflow

// @tag.name Notifications
// @tag.description Per-user notification feed

// @tag.name Service Requests
// @tag.description Employee service requests

// SwaggerInfo holds the exported swagger spec so it can be served by the API
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "TaskHub API",
	Description:      "API for managing projects, tasks, progress approvals, notifications and service requests",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  `{"swagger":"2.0","info":{"title":"{{.Title}}","version":"{{.Version}}"},"host":"{{.Host}}","basePath":"{{.BasePath}}"}`,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

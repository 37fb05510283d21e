package handlers

import (
	"servicedesk/middleware"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	Auth *middleware.Authenticator

	AuthHandler          *AuthHandler
	UserHandler          *UserHandler
	EstablishmentHandler *EstablishmentHandler
	TitleHandler         *TitleHandler
	ServiceOrderHandler  *ServiceOrderHandler
	ReportHandler        *ReportHandler
	HealthHandler        *HealthHandler
}

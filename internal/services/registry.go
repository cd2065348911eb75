package services

import "vendinghive_backend/internal/email"

// ServiceContainer bundles every application service for wiring.
type ServiceContainer struct {
	AuthService            AuthService
	UserService            UserService
	SubscriptionService    SubscriptionService
	WebhookService         WebhookService
	BusinessToolsService   BusinessToolsService
	ScriptGeneratorService ScriptGeneratorService
	JarvisService          JarvisService
	LocatorService         LocatorService
	WeatherService         WeatherService
	CoreService            CoreService
	AdminService           AdminService
	EmailService           email.Provider
}

package handlers

// AppHandlers bundles every HTTP handler for route registration.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	SubscriptionHandler *SubscriptionHandler
	WebhookHandler      *WebhookHandler
	AIToolkitHandler    *AIToolkitHandler
	LocatorHandler      *LocatorHandler
	CoreHandler         *CoreHandler
	AdminHandler        *AdminHandler
}

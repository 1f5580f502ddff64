package handlers

// AppHandlers holds every handler the router mounts.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	UserHandler         *UserHandler
	VerificationHandler *VerificationHandler
	WizardHandler       *WizardHandler
	ProfileHandler      *ProfileHandler
	NewsletterHandler   *NewsletterHandler
}

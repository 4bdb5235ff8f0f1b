package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality.
type ServiceContainer struct {
	Account  AccountSvcFacade
	Currency CurrencySvcFacade
	FxAudit  FxAuditSvcFacade
	Posting  PostingSvcFacade
	Trading  TradingSvcFacade
}

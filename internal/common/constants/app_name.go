package constants

const (
	AppStorefront = "storefront"
)

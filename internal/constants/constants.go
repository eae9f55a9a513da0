package constants

const (
	AppName = "storefront"

	AudienceUser = "storefront-user"

	RoleAdmin = "admin"
)

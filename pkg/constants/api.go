package constants

// HTTP headers and gin context keys
const (
	HeaderAuthorization = "Authorization"
	ContextKeyUser      = "user"
	ResponseError       = "error"
)

// Names of the system "Platforms" module created by the migration routine
const (
	PlatformsModuleName     = "Platforms"
	PlatformsSingularName   = "Platform"
	PlatformsPluralName     = "Platforms"
	PlatformsModuleIcon     = "layers"
	PlatformSourceKeyPrefix = "platform:"
)

// internal/config/constants.go
package config

const (
	AppName    = "StudyFlow"
	AppVersion = "1.0.0"
)

const (
	DefaultServerPort        = ":8080"
	DefaultLogLevel          = "info"
	DefaultLocalStorePath    = "studyflow_local.db"
	DefaultJWTExpiresMinutes = 60 * 24
)

package constants

import "time"

const (
	RefreshInterval    = 600 * time.Second
	LanguageFetchLimit = 4
)

const (
	ExternalAPITimeout = 10 * time.Second
	RefDataTimeout     = 30 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 2
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	RecentMatchLimit = 20
)

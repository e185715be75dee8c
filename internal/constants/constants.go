package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// CardPayloadVersion is written into every cached player card envelope.
	CardPayloadVersion = 1
)

const (
	DegradedUnconfiguredMessage = "Warcraft Logs is not configured; showing the last cached data."
	DegradedFetchFailedMessage  = "Warcraft Logs could not be reached; showing the last cached data."
	CharacterNotFoundHint       = "Character not found on Warcraft Logs. Verify the character name, realm and region."
)

package config

// Amount of details written to a log.
// ENUM(none, debug, normal)
type LogLevel int

// Treatment of existing log file.
// ENUM(append, overwrite)
type LogMode int

package config

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"

	// MinSecretLength is the shortest HMAC secret accepted for token signing.
	MinSecretLength = 32

	DefaultListLimit = 100
)

var (
	validDrivers = map[string]bool{
		DriverPostgres: true,
		DriverMongo:    true,
		DriverMemory:   true,
	}

	validCompressions = map[string]bool{
		"none": true, "gzip": true, "snappy": true, "lz4": true, "zstd": true,
	}

	validAcks = map[int]bool{-1: true, 0: true, 1: true}
)

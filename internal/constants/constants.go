package constants

type ENV string

const (
	Debug ENV = "debug"
	Dev   ENV = "development"
	Stag  ENV = "staging"
	Prod  ENV = "production"
)

type StoreDriver string

const (
	StoreDriverRedis  StoreDriver = "redis"
	StoreDriverMemory StoreDriver = "memory"
)

func IsValidStoreDriver(driver string) bool {
	switch StoreDriver(driver) {
	case StoreDriverRedis, StoreDriverMemory:
		return true
	default:
		return false
	}
}

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-ID"
)

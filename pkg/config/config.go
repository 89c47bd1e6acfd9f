package config

import "time"

const (
	// Session cookie handed to the browser; one AppState lives behind each value.
	SessionCookieName = "onotebe_session"

	// Context Keys
	SessionContextKey = "storefront_session"

	// Session lifetime and how often the store sweeps expired ones.
	DefaultSessionTTL = 30 * time.Minute
	SessionSweepEvery = 5 * time.Minute

	// Redis key for the raw upstream catalog. Bump the suffix when the
	// cached record shape changes.
	CatalogCacheKey        = "catalog:v1"
	DefaultCatalogCacheTTL = time.Minute
)

package rates

import "context"

// Cache caché versionada de lecturas de tarifas. Bump invalida todas las claves de una vez.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error
	Bump(ctx context.Context) error
}

package driven

import "context"

// StoreHealth reports whether the backing store can serve requests.
type StoreHealth interface {
	Ping(ctx context.Context) error
}

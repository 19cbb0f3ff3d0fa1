package interfaces

import "context"

// DocumentCounter is implemented by stores that can report how many leagues
// they hold. The health endpoint uses it when available.
type DocumentCounter interface {
	Count(ctx context.Context) (int64, error)
}

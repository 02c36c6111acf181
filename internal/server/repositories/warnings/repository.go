package warnings

import "context"

type Repository interface {
	Acknowledge(ctx context.Context, userID, name string) (bool, error)
}

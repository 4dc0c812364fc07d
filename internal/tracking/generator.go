// Package tracking generates the public tracking codes assigned to every
// imported or submitted product record.
package tracking

import (
	"context"
	"fmt"
	"time"
)

// ExistsFunc reports whether a candidate code is already taken in the store.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

const maxAttempts = 5

// Generator produces codes of the form <prefix><year><6-digit suffix>, the
// suffix derived from the millisecond clock. The timestamp scheme alone can
// collide under rapid-fire calls, so each candidate is checked against the
// store before being handed out.
type Generator struct {
	prefix string
	exists ExistsFunc
	now    func() time.Time
}

func NewGenerator(prefix string, exists ExistsFunc) *Generator {
	return &Generator{
		prefix: prefix,
		exists: exists,
		now:    time.Now,
	}
}

// Next returns a fresh, store-unique tracking code.
func (g *Generator) Next(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		t := g.now()
		code := fmt.Sprintf("%s%d%06d", g.prefix, t.Year(), t.UnixMilli()%1000000)

		if g.exists == nil {
			return code, nil
		}
		taken, err := g.exists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("tracking id uniqueness check failed: %w", err)
		}
		if !taken {
			return code, nil
		}
		// Let the millisecond clock move on before retrying.
		time.Sleep(time.Millisecond)
	}
	return "", fmt.Errorf("could not generate a unique tracking id after %d attempts", maxAttempts)
}

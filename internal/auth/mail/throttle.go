package mail

import (
	"context"

	"golang.org/x/time/rate"
)

type throttled struct {
	next    Mailer
	limiter *rate.Limiter
}

// Throttled waits on limiter before each send. A cancelled context returns
// its error without sending.
func Throttled(next Mailer, limiter *rate.Limiter) Mailer {
	return &throttled{next: next, limiter: limiter}
}

func (t *throttled) Send(ctx context.Context, msg Message) error {
	if err := t.limiter.Wait(ctx); err != nil {
		return err
	}
	return t.next.Send(ctx, msg)
}

package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/getsentry/sentry-go"
)

// StartSubscriptionRoutine maintains a long-lived subscription to the
// deposit account and feeds every event into the reconciliation consumer.
// The subscription is re-established with exponential backoff whenever the
// stream breaks; missed events are covered by the poll watchers.
func (svc *FassethubService) StartSubscriptionRoutine(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = 0
	policy.InitialInterval = 1 * time.Second
	policy.MaxInterval = 2 * time.Minute

	return backoff.RetryNotify(func() error {
		subscription, err := svc.XRPLClient.SubscribeAccount(ctx, svc.Config.XRPLDepositAddress)
		if err != nil {
			return err
		}
		defer subscription.Close()
		// Recv blocks on the websocket; closing the subscription is the
		// only way to unblock it when the service shuts down
		stopped := make(chan struct{})
		defer close(stopped)
		go func() {
			select {
			case <-ctx.Done():
				subscription.Close()
			case <-stopped:
			}
		}()
		svc.Logger.Infof("Subscribed to deposit account account:%s", svc.Config.XRPLDepositAddress)
		policy.Reset()
		for {
			transaction, err := subscription.Recv()
			if err != nil {
				if ctx.Err() != nil {
					return backoff.Permanent(ctx.Err())
				}
				return err
			}
			if err := svc.ProcessObservedTransaction(ctx, transaction); err != nil {
				svc.Logger.Errorf("Failed to process subscribed transaction tx_hash:%s %v", transaction.TxHash, err)
				sentry.CaptureException(err)
			}
		}
	}, backoff.WithContext(policy, ctx), func(err error, duration time.Duration) {
		svc.Logger.Errorf("Account subscription dropped, retrying in %v: %v", duration, err)
		sentry.CaptureException(err)
	})
}

package xrpl

import (
	"context"
)

type ClientWrapper interface {
	AccountTransactions(ctx context.Context, account string, limit int) ([]ObservedTransaction, error)
	SubscribeAccount(ctx context.Context, account string) (AccountSubscriptionWrapper, error)
	Close() error
}

type AccountSubscriptionWrapper interface {
	Recv() (ObservedTransaction, error)
	Close() error
}

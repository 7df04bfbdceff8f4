package service_test

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"testing"

	"github.com/fassethub/fassethub.go/db"
	"github.com/fassethub/fassethub.go/db/models"
	"github.com/fassethub/fassethub.go/lib/logging"
	"github.com/fassethub/fassethub.go/lib/service"
	"github.com/stretchr/testify/require"
)

const (
	testDepositAddress = "rfDepositAcct4tCgLkQmnvEhu6LmuEJsSbf"
	testFlareAddress   = "0x8ba1f109551bd432803012645ac136ddd64dba72"
)

func newTestService(t *testing.T) *service.FassethubService {
	cfg := &service.Config{
		DatabaseUri:        fmt.Sprintf("sqlite://file:%p?mode=memory&cache=shared", t),
		XRPLDepositAddress: testDepositAddress,
		InvoiceExpiry:      1800,
		PollInterval:       1,
		PollTxLimit:        20,
	}
	dbConn, err := db.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { dbConn.Close() })

	ctx := context.Background()
	for _, model := range []interface{}{
		(*models.User)(nil),
		(*models.Invoice)(nil),
		(*models.OrphanPayment)(nil),
	} {
		_, err = dbConn.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}

	return &service.FassethubService{
		Config:        cfg,
		DB:            dbConn,
		Logger:        logging.Logger(""),
		InvoicePubSub: service.NewPubsub(),
	}
}

// mockMintClient records mint submissions and returns canned results.
type mockMintClient struct {
	mu      sync.Mutex
	calls   int
	amounts []*big.Int
	err     error
	txHash  string
}

func (m *mockMintClient) Mint(ctx context.Context, to string, amount *big.Int) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.amounts = append(m.amounts, new(big.Int).Set(amount))
	if m.err != nil {
		return "", m.err
	}
	if m.txHash == "" {
		return fmt.Sprintf("0xmint%d", m.calls), nil
	}
	return m.txHash, nil
}

func (m *mockMintClient) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *mockMintClient) lastAmount() *big.Int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.amounts) == 0 {
		return nil
	}
	return m.amounts[len(m.amounts)-1]
}

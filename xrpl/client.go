package xrpl

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client speaks the XRP Ledger websocket API. Request/response calls
// (account_tx) share one connection serialized by a mutex; subscriptions get
// a dedicated connection so stream reads never race a pending call.
type Client struct {
	config *Config

	mu     sync.Mutex
	conn   *websocket.Conn
	nextID int64
}

func Dial(ctx context.Context, config *Config) (*Client, error) {
	client := &Client{config: config}
	conn, err := client.dial(ctx)
	if err != nil {
		return nil, err
	}
	client.conn = conn
	return client, nil
}

func (c *Client) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: time.Duration(c.config.XRPLHandshakeTimeout) * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, c.config.XRPLWSAddress, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", c.config.XRPLWSAddress, err)
	}
	return conn, nil
}

type wsResponse struct {
	ID           int64           `json:"id"`
	Type         string          `json:"type"`
	Status       string          `json:"status"`
	Error        string          `json:"error"`
	ErrorMessage string          `json:"error_message"`
	Result       json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, request map[string]interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, err := c.dial(ctx)
		if err != nil {
			return nil, err
		}
		c.conn = conn
	}

	c.nextID++
	request["id"] = c.nextID

	deadline := time.Now().Add(time.Duration(c.config.XRPLRequestTimeout) * time.Second)
	c.conn.SetWriteDeadline(deadline)
	c.conn.SetReadDeadline(deadline)

	if err := c.conn.WriteJSON(request); err != nil {
		c.reset()
		return nil, err
	}

	for {
		var response wsResponse
		if err := c.conn.ReadJSON(&response); err != nil {
			c.reset()
			return nil, err
		}
		// subscriptions run on their own connection, anything that is not
		// the answer to our request can be dropped here
		if response.Type != "response" || response.ID != c.nextID {
			continue
		}
		if response.Status != "success" {
			return nil, fmt.Errorf("xrpl request failed: %s %s", response.Error, response.ErrorMessage)
		}
		return response.Result, nil
	}
}

// reset drops the connection so the next call redials.
func (c *Client) reset() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

type accountTxResult struct {
	Transactions []struct {
		Tx        rawTransaction `json:"tx"`
		Meta      rawMeta        `json:"meta"`
		Validated bool           `json:"validated"`
	} `json:"transactions"`
}

func (c *Client) AccountTransactions(ctx context.Context, account string, limit int) ([]ObservedTransaction, error) {
	rawResult, err := c.call(ctx, map[string]interface{}{
		"command":          "account_tx",
		"account":          account,
		"ledger_index_min": -1,
		"ledger_index_max": -1,
		"limit":            limit,
	})
	if err != nil {
		return nil, err
	}

	var result accountTxResult
	if err := json.Unmarshal(rawResult, &result); err != nil {
		return nil, err
	}

	transactions := []ObservedTransaction{}
	for _, entry := range result.Transactions {
		if !entry.Validated {
			continue
		}
		observed, ok := observedFromRaw(entry.Tx, entry.Meta)
		if !ok {
			continue
		}
		transactions = append(transactions, observed)
	}
	return transactions, nil
}

func (c *Client) SubscribeAccount(ctx context.Context, account string) (AccountSubscriptionWrapper, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	if err := conn.WriteJSON(map[string]interface{}{
		"id":       1,
		"command":  "subscribe",
		"accounts": []string{account},
	}); err != nil {
		conn.Close()
		return nil, err
	}
	var response wsResponse
	if err := conn.ReadJSON(&response); err != nil {
		conn.Close()
		return nil, err
	}
	if response.Status != "success" {
		conn.Close()
		return nil, fmt.Errorf("xrpl subscribe failed: %s %s", response.Error, response.ErrorMessage)
	}
	return &accountSubscription{conn: conn}, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

type accountSubscription struct {
	conn      *websocket.Conn
	closeOnce sync.Once
	closeErr  error
}

type transactionEvent struct {
	Type        string         `json:"type"`
	Transaction rawTransaction `json:"transaction"`
	Meta        rawMeta        `json:"meta"`
	Validated   bool           `json:"validated"`
}

// Recv blocks until the next Payment to a subscribed account is delivered.
func (s *accountSubscription) Recv() (ObservedTransaction, error) {
	for {
		var event transactionEvent
		if err := s.conn.ReadJSON(&event); err != nil {
			return ObservedTransaction{}, err
		}
		if event.Type != "transaction" || !event.Validated {
			continue
		}
		observed, ok := observedFromRaw(event.Transaction, event.Meta)
		if !ok {
			continue
		}
		return observed, nil
	}
}

// Close shuts the subscription connection down and unblocks a pending Recv.
// Safe to call more than once.
func (s *accountSubscription) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.conn.Close()
	})
	return s.closeErr
}

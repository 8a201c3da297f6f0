package natsadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	nats "github.com/nats-io/nats.go"
)

// EventClient notifies downstream consumers of domain events. Calls are
// request/reply so the publisher learns whether the consumer acked.
type EventClient interface {
	UserRegistered(ctx context.Context, userID, username, email string) error
	TransactionRecorded(ctx context.Context, txID, network string, amount float64) error
}

type eventClient struct {
	conn               *nats.Conn
	userSubject        string
	transactionSubject string
}

func NewEventClient(conn *nats.Conn, userSubject, transactionSubject string) EventClient {
	return &eventClient{conn: conn, userSubject: userSubject, transactionSubject: transactionSubject}
}

func (c *eventClient) UserRegistered(ctx context.Context, userID, username, email string) error {
	payload := map[string]interface{}{"id": userID, "username": username, "email": email}
	return requestAck(ctx, c.conn, c.userSubject, payload)
}

func (c *eventClient) TransactionRecorded(ctx context.Context, txID, network string, amount float64) error {
	payload := map[string]interface{}{"id": txID, "network": network, "amount": amount}
	return requestAck(ctx, c.conn, c.transactionSubject, payload)
}

func requestAck(ctx context.Context, conn *nats.Conn, subject string, payload interface{}) error {
	data, _ := json.Marshal(payload)
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	msg, err := conn.RequestWithContext(ctx, subject, data)
	if err != nil {
		return err
	}
	if msg == nil {
		return fmt.Errorf("empty response from %s", subject)
	}
	var resp struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return err
	}
	if !resp.OK {
		if resp.Error != "" {
			return errors.New(resp.Error)
		}
		return fmt.Errorf("request to %s failed", subject)
	}
	return nil
}

package sms

import (
	"context"
	"fmt"

	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// Sender delivers a text message to a customer.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

type TwilioSender struct {
	client     *twilio.RestClient
	fromNumber string
}

func NewTwilioSender(accountSID, authToken, fromNumber string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioSender{
		client:     client,
		fromNumber: fromNumber,
	}
}

func (t *TwilioSender) Send(_ context.Context, to, message string) error {
	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	return nil
}

package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/harvestguard/internal/config"
	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/commands"
	client "github.com/mamadbah2/harvestguard/pkg/clients/whatsapp"
)

type captureClient struct {
	sent []client.SendTextMessageRequest
}

func (c *captureClient) SendTextMessage(_ context.Context, req client.SendTextMessageRequest) (*client.SendTextMessageResponse, error) {
	c.sent = append(c.sent, req)
	return &client.SendTextMessageResponse{}, nil
}

type phoneBook map[string]models.Farmer

func (p phoneBook) FindFarmerByPhone(_ context.Context, phone string) (models.Farmer, error) {
	if f, ok := p[phone]; ok {
		return f, nil
	}
	return models.Farmer{}, fmt.Errorf("farmer: %w", models.ErrNotFound)
}

type scriptedDispatcher struct {
	reply string
	err   error
	got   []models.Command
}

func (d *scriptedDispatcher) HandleCommand(_ context.Context, cmd models.Command, _ models.Farmer) (string, error) {
	d.got = append(d.got, cmd)
	return d.reply, d.err
}

func payloadFrom(from, body string) models.WebhookPayload {
	return models.WebhookPayload{
		Object: "whatsapp_business_account",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{{
				Field: "messages",
				Value: models.WebhookValue{
					Messages: []models.InboundMessage{{
						From: from, ID: "wamid.1", Type: "text",
						Text: &models.TextContent{Body: body},
					}},
				},
			}},
		}},
	}
}

func newTestService(d commands.Dispatcher) (*MetaWhatsAppService, *captureClient) {
	c := &captureClient{}
	book := phoneBook{"8801712345678": {ID: "f-1", Phone: "8801712345678", Language: "en"}}
	return NewMetaWhatsAppService(config.WhatsAppConfig{VerifyToken: "secret"}, c, book, d, nil), c
}

func TestVerifyWebhookToken(t *testing.T) {
	svc, _ := newTestService(&scriptedDispatcher{})

	challenge, err := svc.VerifyWebhookToken("subscribe", "secret", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", challenge)

	_, err = svc.VerifyWebhookToken("subscribe", "wrong", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("unsubscribe", "secret", "42")
	assert.Error(t, err)
	_, err = svc.VerifyWebhookToken("", "", "")
	assert.Error(t, err)
}

func TestHandleWebhook_RoutesRegisteredFarmer(t *testing.T) {
	d := &scriptedDispatcher{reply: "Income saved: 100.00 (harvest)"}
	svc, c := newTestService(d)

	require.NoError(t, svc.HandleWebhook(context.Background(), payloadFrom("8801712345678", "income 100 harvest")))

	require.Len(t, d.got, 1)
	assert.Equal(t, models.CommandIncome, d.got[0].Type)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "8801712345678", c.sent[0].To)
	assert.Equal(t, "Income saved: 100.00 (harvest)", c.sent[0].Body)
}

func TestHandleWebhook_UnregisteredSender(t *testing.T) {
	d := &scriptedDispatcher{}
	svc, c := newTestService(d)

	require.NoError(t, svc.HandleWebhook(context.Background(), payloadFrom("15550001111", "balance")))
	assert.Empty(t, d.got)
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0].Body, "not registered")
}

func TestHandleWebhook_InvalidArgumentsGetHelp(t *testing.T) {
	svc, c := newTestService(&scriptedDispatcher{err: commands.ErrInvalidArguments})

	require.NoError(t, svc.HandleWebhook(context.Background(), payloadFrom("8801712345678", "income")))
	require.Len(t, c.sent, 1)
	assert.Equal(t, commands.HelpText("en"), c.sent[0].Body)
}

func TestHandleWebhook_DispatcherFailure(t *testing.T) {
	boom := errors.New("store down")
	svc, c := newTestService(&scriptedDispatcher{err: boom})

	err := svc.HandleWebhook(context.Background(), payloadFrom("8801712345678", "balance"))
	assert.ErrorIs(t, err, boom)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "Unavailable", c.sent[0].Body)
}

func TestHandleWebhook_StatusOnlyPayload(t *testing.T) {
	svc, c := newTestService(&scriptedDispatcher{})
	payload := models.WebhookPayload{Entry: []models.WebhookEntry{{Changes: []models.WebhookChange{{
		Value: models.WebhookValue{Statuses: []models.MessageStatus{{ID: "wamid.9", Status: "delivered"}}},
	}}}}}

	require.NoError(t, svc.HandleWebhook(context.Background(), payload))
	assert.Empty(t, c.sent)
}

func TestSendOutbound(t *testing.T) {
	svc, c := newTestService(&scriptedDispatcher{})

	err := svc.SendOutbound(context.Background(), models.OutboundMessageRequest{To: "+880 1712-345678", Message: "Meeting at 4pm"})
	require.NoError(t, err)
	assert.Equal(t, "8801712345678", c.sent[0].To)
}

package services

import (
	"fmt"
	"os"

	"tradestack-backend/config"
	"tradestack-backend/models"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// TwilioNotifier texts the client that their invoice is ready. It is
// used as a fire-and-forget collaborator of MarkSent.
type TwilioNotifier struct {
	client *twilio.RestClient
	from   string
	log    zerolog.Logger
}

func NewTwilioNotifier() *TwilioNotifier {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
		from: os.Getenv("TWILIO_PHONE_NUMBER"),
		log:  config.Logger.With().Str("component", "twilio_notifier").Logger(),
	}
}

func (n *TwilioNotifier) Channel() string { return "sms" }

func (n *TwilioNotifier) SendInvoice(inv *models.Invoice) error {
	if inv.ClientPhone == "" {
		return fmt.Errorf("invoice %s has no client phone", inv.InvoiceNumber)
	}

	body := fmt.Sprintf("Hi %s, your invoice %s for %s is ready. Please check your email for payment details.",
		inv.ClientName, inv.InvoiceNumber, inv.TotalAmountCents.Format(inv.Currency))

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(inv.ClientPhone)
	params.SetFrom(n.from)
	params.SetBody(body)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return err
	}
	if resp.Sid != nil {
		n.log.Info().Str("invoice", inv.InvoiceNumber).Str("sid", *resp.Sid).Msg("invoice notification sent")
	} else {
		n.log.Info().Str("invoice", inv.InvoiceNumber).Msg("invoice notification sent, no SID returned")
	}
	return nil
}

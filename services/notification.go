package services

import (
	"context"
	"time"

	"spa-booking-backend/config"
	"spa-booking-backend/models"
	"spa-booking-backend/repository"
	"spa-booking-backend/utils"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Notifier tells the customer their booking was received. Failures are
// logged, never returned to the checkout.
type Notifier interface {
	BookingConfirmed(ctx context.Context, b *models.Booking)
}

type NopNotifier struct{}

func (NopNotifier) BookingConfirmed(context.Context, *models.Booking) {}

type messageSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type TwilioNotifier struct {
	api      messageSender
	from     string
	whatsapp bool
	logs     repository.NotificationLogRepository
	log      *config.Logger
}

func NewTwilioNotifier(cfg *config.Config, logs repository.NotificationLogRepository) *TwilioNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &TwilioNotifier{
		api:      client.Api,
		from:     cfg.TwilioFrom,
		whatsapp: cfg.TwilioWhatsApp,
		logs:     logs,
		log:      cfg.Log,
	}
}

var confirmationTemplates = map[string]string{
	"en": "Hi %s, your spa booking %s is received. Total: %d VND. See you soon!",
	"vi": "Xin chào %s, đơn đặt lịch %s đã được ghi nhận. Tổng cộng: %d VND. Hẹn gặp lại!",
}

func confirmationMessage(b *models.Booking) string {
	lang := b.Lang
	tmpl, ok := confirmationTemplates[lang]
	if !ok {
		lang, tmpl = models.DefaultLang, confirmationTemplates[models.DefaultLang]
	}
	p := message.NewPrinter(language.Make(lang))
	return p.Sprintf(tmpl, b.Customer.Name, b.BillNumber, b.TotalVND)
}

func (n *TwilioNotifier) BookingConfirmed(ctx context.Context, b *models.Booking) {
	phone := utils.NormalizePhone(b.Customer.Phone)
	if phone == "" {
		n.log.Debug("no usable phone, skipping confirmation", "bill_number", b.BillNumber)
		return
	}

	channel := "sms"
	to, from := phone, n.from
	if n.whatsapp {
		channel = "whatsapp"
		to, from = "whatsapp:"+phone, "whatsapp:"+n.from
	}

	body := confirmationMessage(b)
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	status, errorMsg := "sent", ""
	resp, err := n.api.CreateMessage(params)
	if err != nil {
		status, errorMsg = "failed", err.Error()
		n.log.Warn("failed to send booking confirmation", "bill_number", b.BillNumber, "channel", channel, "error", err)
	} else if resp != nil && resp.Sid != nil {
		n.log.Info("booking confirmation sent", "bill_number", b.BillNumber, "channel", channel, "sid", *resp.Sid)
	}

	entry := models.NotificationLog{
		BookingID:    b.ID,
		BillNumber:   b.BillNumber,
		Recipient:    phone,
		Message:      body,
		Status:       status,
		ErrorMessage: errorMsg,
		Channel:      channel,
		SentAt:       time.Now(),
	}
	if err := n.logs.Create(ctx, &entry); err != nil {
		n.log.Error("failed to log notification", "bill_number", b.BillNumber, "error", err)
	}
}

package notify

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/dhanadurga/backend/internal/config"
)

const twilioMessagesURL = "https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json"

// WhatsAppSender pushes messages through the Twilio Messages API.
type WhatsAppSender struct {
	cfg    config.TwilioConfig
	client *fasthttp.Client
	logger *zap.Logger
}

func NewWhatsAppSender(cfg config.TwilioConfig, logger *zap.Logger) *WhatsAppSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppSender{
		cfg: cfg,
		client: &fasthttp.Client{
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (w *WhatsAppSender) Configured() bool {
	return w.cfg.AccountSID != "" && w.cfg.AuthToken != "" && w.cfg.WhatsAppNumber != ""
}

// Send posts one WhatsApp message. An empty target falls back to the
// configured default destination.
func (w *WhatsAppSender) Send(target, body string) error {
	if !w.Configured() {
		return fmt.Errorf("twilio not configured")
	}
	if target == "" {
		target = w.cfg.DefaultTarget
	}
	if target == "" {
		return fmt.Errorf("no whatsapp destination")
	}
	if !strings.HasPrefix(target, "whatsapp:") {
		target = "whatsapp:" + target
	}

	form := url.Values{}
	form.Set("From", w.cfg.WhatsAppNumber)
	form.Set("To", target)
	form.Set("Body", body)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(fmt.Sprintf(twilioMessagesURL, w.cfg.AccountSID))
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicAuth(w.cfg.AccountSID, w.cfg.AuthToken))
	req.SetBodyString(form.Encode())

	if err := w.client.Do(req, resp); err != nil {
		w.logger.Error("whatsapp send failed", zap.Error(err))
		return err
	}
	if resp.StatusCode() >= 300 {
		w.logger.Error("whatsapp send rejected",
			zap.Int("status", resp.StatusCode()),
			zap.ByteString("body", resp.Body()))
		return fmt.Errorf("twilio returned %d", resp.StatusCode())
	}
	w.logger.Info("whatsapp sent", zap.String("to", target))
	return nil
}

func basicAuth(user, pass string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))
}

package verification

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"grapher_backend/internal/logger"

	"github.com/twilio/twilio-go"
	twclient "github.com/twilio/twilio-go/client"
	verify "github.com/twilio/twilio-go/rest/verify/v2"
)

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	ServiceSID string
	BaseURL    string // sends every request to this host instead of verify.twilio.com
}

// TwilioProvider talks to Twilio Verify v2 through the official SDK.
type TwilioProvider struct {
	serviceSID string
	rest       *twilio.RestClient
}

// NewTwilioProvider uses a 10s client when httpClient is nil.
func NewTwilioProvider(cfg TwilioConfig, httpClient *http.Client) *TwilioProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.BaseURL != "" {
		if target, err := url.Parse(cfg.BaseURL); err == nil && target.Host != "" {
			redirected := *httpClient
			redirected.Transport = hostRewrite{target: target, next: transportOf(httpClient)}
			httpClient = &redirected
		}
	}

	base := &twclient.Client{
		Credentials: twclient.NewCredentials(cfg.AccountSID, cfg.AuthToken),
		HTTPClient:  httpClient,
	}
	base.SetAccountSid(cfg.AccountSID)

	return &TwilioProvider{
		serviceSID: cfg.ServiceSID,
		rest:       twilio.NewRestClientWithParams(twilio.ClientParams{Client: base}),
	}
}

func (p *TwilioProvider) StartVerification(ctx context.Context, e164 string) (*Result, error) {
	params := &verify.CreateVerificationParams{}
	params.SetTo(e164)
	params.SetChannel("sms")

	start := time.Now()
	resp, err := p.rest.VerifyV2.CreateVerification(p.serviceSID, params)
	logger.CtxDebug(ctx, "twilio verify call", "resource", "Verifications", "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		return nil, err
	}
	return &Result{Status: Status(deref(resp.Status))}, nil
}

func (p *TwilioProvider) CheckCode(ctx context.Context, e164, code string) (*Result, error) {
	params := &verify.CreateVerificationCheckParams{}
	params.SetTo(e164)
	params.SetCode(code)

	start := time.Now()
	resp, err := p.rest.VerifyV2.CreateVerificationCheck(p.serviceSID, params)
	logger.CtxDebug(ctx, "twilio verify call", "resource", "VerificationCheck", "duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		var restErr *twclient.TwilioRestError
		if errors.As(err, &restErr) && restErr.Status == http.StatusNotFound {
			// Twilio forgets verifications once they expire or are approved.
			return &Result{Status: StatusExpired}, nil
		}
		return nil, err
	}
	if deref(resp.Status) == string(StatusApproved) {
		return &Result{Status: StatusApproved}, nil
	}
	return &Result{Status: StatusDenied}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// hostRewrite points SDK requests at another scheme and host, keeping the path.
type hostRewrite struct {
	target *url.URL
	next   http.RoundTripper
}

func (h hostRewrite) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = h.target.Scheme
	out.URL.Host = h.target.Host
	out.Host = h.target.Host
	return h.next.RoundTrip(out)
}

func transportOf(c *http.Client) http.RoundTripper {
	if c.Transport != nil {
		return c.Transport
	}
	return http.DefaultTransport
}

package smsprovider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Behyna/notification-services/pkg/httpclient"
)

type Provider interface {
	Send(ctx context.Context, msg Message) (Response, error)
	Lookup(ctx context.Context, number string) (LookupResult, error)
}

type Config struct {
	Enable    bool          `mapstructure:"enable"`
	URL       string        `mapstructure:"url"`
	LookupURL string        `mapstructure:"lookup_url"`
	Account   string        `mapstructure:"account"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxRetry  int           `mapstructure:"max_retry"`
}

type Message struct {
	From     string
	To       string
	Body     string
	MediaURL string
}

// TwilioProvider talks to the Twilio REST API.
type TwilioProvider struct {
	cfg    Config
	client httpclient.HTTPClient
}

func NewTwilioProvider(cfg Config, client httpclient.HTTPClient) Provider {
	return &TwilioProvider{cfg: cfg, client: client}
}

func (t *TwilioProvider) Send(ctx context.Context, msg Message) (Response, error) {
	values := url.Values{}
	values.Set("From", msg.From)
	values.Set("To", msg.To)
	values.Set("Body", msg.Body)
	if msg.MediaURL != "" {
		values.Set("MediaUrl", msg.MediaURL)
	}

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", t.cfg.URL, t.cfg.Account)
	resp, err := t.client.PostForm(ctx, endpoint, values, t.authHeaders())
	if err != nil {
		return Response{}, transportError(err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return Response{}, err
	}

	var res Response
	if err = json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return Response{}, NewError(ErrorCodeServerError)
	}

	return res, nil
}

func (t *TwilioProvider) Lookup(ctx context.Context, number string) (LookupResult, error) {
	endpoint := fmt.Sprintf("%s/PhoneNumbers/%s?Type=carrier", t.cfg.LookupURL, url.PathEscape(number))
	resp, err := t.client.Get(ctx, endpoint, t.authHeaders())
	if err != nil {
		return LookupResult{}, transportError(err)
	}
	defer resp.Body.Close()

	if err := statusError(resp); err != nil {
		return LookupResult{}, err
	}

	var res LookupResult
	if err = json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return LookupResult{}, NewError(ErrorCodeServerError)
	}

	return res, nil
}

func (t *TwilioProvider) authHeaders() map[string]string {
	credentials := base64.StdEncoding.EncodeToString([]byte(t.cfg.Account + ":" + t.cfg.Token))
	return map[string]string{"Authorization": "Basic " + credentials}
}

func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{Code: ErrorCodeTimeout, Message: err.Error()}
	}
	return &Error{Code: ErrorCodeNetworkError, Message: err.Error()}
}

// statusError maps a non-2xx Twilio response onto a normalized code and keeps
// the Twilio error number from the body when there is one.
func statusError(resp *http.Response) error {
	var code string
	switch status := resp.StatusCode; {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusBadRequest:
		code = ErrorCodeInvalidNumber
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		code = ErrorCodeUnauthorized
	case status == http.StatusNotFound:
		code = ErrorCodeNotFound
	default:
		code = ErrorCodeServerError
	}

	e := &Error{Code: code, Message: resp.Status}
	var body twilioError
	if resp.Body != nil && json.NewDecoder(resp.Body).Decode(&body) == nil && body.Code != 0 {
		e.ProviderCode = strconv.Itoa(body.Code)
		e.Message = body.Message
	}
	return e
}

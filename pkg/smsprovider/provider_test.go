package smsprovider_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Behyna/notification-services/pkg/httpclient"
	"github.com/Behyna/notification-services/pkg/smsprovider"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwilio(t *testing.T, handler http.HandlerFunc) smsprovider.Provider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := smsprovider.Config{
		URL:       server.URL,
		LookupURL: server.URL,
		Account:   "AC123",
		Token:     "secret",
	}
	return smsprovider.NewTwilioProvider(cfg, httpclient.NewHTTPClient(time.Second))
}

func TestTwilioProvider_Send(t *testing.T) {
	t.Run("posts the message form and returns the sid", func(t *testing.T) {
		provider := newTwilio(t, func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "AC123", user)
			assert.Equal(t, "secret", pass)
			assert.Equal(t, "/Accounts/AC123/Messages.json", r.URL.Path)

			require.NoError(t, r.ParseForm())
			assert.Equal(t, "+15005550006", r.PostForm.Get("From"))
			assert.Equal(t, "+18023390050", r.PostForm.Get("To"))
			assert.Equal(t, "hello", r.PostForm.Get("Body"))
			assert.Equal(t, "https://cdn.example.com/a.png", r.PostForm.Get("MediaUrl"))

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"sid":"SM123","status":"queued"}`))
		})

		res, err := provider.Send(context.Background(), smsprovider.Message{
			From:     "+15005550006",
			To:       "+18023390050",
			Body:     "hello",
			MediaURL: "https://cdn.example.com/a.png",
		})

		require.NoError(t, err)
		assert.Equal(t, "SM123", res.SID)
		assert.Equal(t, "queued", res.Status)
	})

	t.Run("maps bad request to invalid number", func(t *testing.T) {
		provider := newTwilio(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})

		_, err := provider.Send(context.Background(), smsprovider.Message{To: "+1"})

		require.Error(t, err)
		assert.Equal(t, smsprovider.ErrorCodeInvalidNumber, err.Error())
	})

	t.Run("keeps the twilio error number", func(t *testing.T) {
		provider := newTwilio(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"code":21211,"message":"The 'To' number +1 is not a valid phone number."}`))
		})

		_, err := provider.Send(context.Background(), smsprovider.Message{To: "+1"})

		var pe *smsprovider.Error
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, smsprovider.ErrorCodeInvalidNumber, pe.Code)
		assert.Equal(t, "21211", pe.ProviderCode)
		assert.Contains(t, pe.Detail(), "not a valid phone number")
	})

	t.Run("maps 5xx to server error", func(t *testing.T) {
		provider := newTwilio(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := provider.Send(context.Background(), smsprovider.Message{To: "+18023390050"})

		require.Error(t, err)
		assert.Equal(t, smsprovider.ErrorCodeServerError, err.Error())
	})
}

func TestTwilioProvider_Lookup(t *testing.T) {
	provider := newTwilio(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "carrier", r.URL.Query().Get("Type"))
		w.Write([]byte(`{"phone_number":"+18023390050","carrier":{"name":"Verizon","type":"mobile"}}`))
	})

	res, err := provider.Lookup(context.Background(), "+18023390050")

	require.NoError(t, err)
	assert.Equal(t, "mobile", res.Carrier.Type)
}

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
}

func TestSNSProvider(t *testing.T) {
	t.Run("publishes to the phone number", func(t *testing.T) {
		client := &fakeSNS{}
		provider := smsprovider.NewSNSProvider(client)

		res, err := provider.Send(context.Background(), smsprovider.Message{To: "+18023390050", Body: "hi"})

		require.NoError(t, err)
		assert.Equal(t, "sns-1", res.SID)
		assert.Equal(t, "+18023390050", aws.ToString(client.input.PhoneNumber))
		assert.Equal(t, "hi", aws.ToString(client.input.Message))
	})

	t.Run("lookup is not supported", func(t *testing.T) {
		provider := smsprovider.NewSNSProvider(&fakeSNS{})

		_, err := provider.Lookup(context.Background(), "+18023390050")

		assert.EqualError(t, err, smsprovider.ErrorCodeNotSupported)
	})

	t.Run("publish failure is a network error", func(t *testing.T) {
		provider := smsprovider.NewSNSProvider(&fakeSNS{err: errors.New("throttled")})

		_, err := provider.Send(context.Background(), smsprovider.Message{To: "+18023390050"})

		assert.EqualError(t, err, smsprovider.ErrorCodeNetworkError)
	})

	t.Run("api errors map onto provider codes", func(t *testing.T) {
		tests := []struct {
			code     string
			expected string
		}{
			{code: "InvalidParameter", expected: smsprovider.ErrorCodeInvalidNumber},
			{code: "AuthorizationError", expected: smsprovider.ErrorCodeUnauthorized},
			{code: "Throttled", expected: smsprovider.ErrorCodeServerError},
			{code: "SomethingNew", expected: smsprovider.ErrorCodeServerError},
		}

		for _, tt := range tests {
			t.Run(tt.code, func(t *testing.T) {
				provider := smsprovider.NewSNSProvider(&fakeSNS{err: fmt.Errorf("publish: %w", apiError{code: tt.code})})

				_, err := provider.Send(context.Background(), smsprovider.Message{To: "+18023390050"})

				var pe *smsprovider.Error
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.expected, pe.Code)
				assert.Equal(t, tt.code, pe.ProviderCode)
				assert.Equal(t, tt.expected, smsprovider.CodeOf(err))
			})
		}
	})
}

type apiError struct {
	code string
}

func (e apiError) Error() string        { return "api error " + e.code }
func (e apiError) ErrorCode() string    { return e.code }
func (e apiError) ErrorMessage() string { return "rejected" }

func TestCodeOf(t *testing.T) {
	assert.Equal(t, smsprovider.ErrorCodeTimeout, smsprovider.CodeOf(fmt.Errorf("send: %w", smsprovider.NewError(smsprovider.ErrorCodeTimeout))))
	assert.Empty(t, smsprovider.CodeOf(errors.New(smsprovider.ErrorCodeTimeout)))
}

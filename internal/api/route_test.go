package api_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Behyna/notification-services/internal/api"
	"github.com/Behyna/notification-services/internal/api/v1"
	"github.com/Behyna/notification-services/internal/api/v1/middleware"
	"github.com/Behyna/notification-services/internal/api/validator"
	"github.com/Behyna/notification-services/internal/config"
	"github.com/Behyna/notification-services/internal/constants"
	errmiddleware "github.com/Behyna/notification-services/internal/error"
	"github.com/Behyna/notification-services/internal/mocks"
	"github.com/Behyna/notification-services/internal/model"
	"github.com/Behyna/notification-services/internal/notification"
	"github.com/Behyna/notification-services/internal/service"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	secret       = "test-secret"
	callResponse = "<Response><Say>Hi</Say></Response>"
)

var user = notification.Receiver{ID: 7, Email: "ann@example.com", FirstName: "Ann", LastName: "Lee"}

type fixture struct {
	app           *fiber.App
	devices       *mocks.DeviceService
	subscriptions *mocks.SubscriptionService
	sms           *mocks.SMSService
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{
		devices:       &mocks.DeviceService{},
		subscriptions: &mocks.SubscriptionService{},
		sms:           &mocks.SMSService{},
	}

	cfg := &config.Config{SMS: config.SMS{CallResponse: callResponse}}
	logger := zap.NewNop()
	xValidator := validator.NewXValidator(playground.New(), nil)

	f.app = fiber.New(fiber.Config{ErrorHandler: errmiddleware.ErrorHandler(logger)})
	api.SetupRoutes(f.app,
		api.NewHandler(logger, prometheus.NewRegistry()),
		v1.NewHandler(logger, f.devices, f.subscriptions, f.sms, xValidator, cfg),
		middleware.JWTAuth(secret))

	return f
}

func token(t *testing.T) string {
	signed, err := middleware.GenerateToken(secret, user, time.Hour)
	require.NoError(t, err)
	return "Bearer " + signed
}

func jsonRequest(t *testing.T, method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token(t))
	return req
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}

func TestPing(t *testing.T) {
	f := newFixture(t)

	resp, err := f.app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthentication(t *testing.T) {
	f := newFixture(t)

	t.Run("missing token", func(t *testing.T) {
		resp, err := f.app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/devices", nil))

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, constants.ErrCodeUnauthorized, decode(t, resp)["code"])
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		signed, err := middleware.GenerateToken("other", user, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil)
		req.Header.Set("Authorization", "Bearer "+signed)

		resp, err := f.app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("expired token", func(t *testing.T) {
		signed, err := middleware.GenerateToken(secret, user, -time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions", nil)
		req.Header.Set("Authorization", "Bearer "+signed)

		resp, err := f.app.Test(req)

		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRegisterDevice(t *testing.T) {
	valid := `{"platform":"ios","notification_token":"foo","device_id":"bar","app_id":"com.example"}`
	expectedCmd := service.RegisterDeviceCommand{
		UserID:            7,
		Platform:          model.PlatformIOS,
		NotificationToken: "foo",
		DeviceID:          "bar",
		AppID:             "com.example",
	}

	t.Run("empty body lists every missing field", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/devices", `{}`))

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		body := decode(t, resp)
		assert.Equal(t, constants.ErrCodeValidationFailed, body["code"])
		fields, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		for _, field := range []string{"platform", "notification_token", "device_id", "app_id"} {
			assert.Contains(t, fields, field)
		}
		assert.Equal(t, "The 'platform' field is required", fields["platform"])
		f.devices.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("unknown platform", func(t *testing.T) {
		f := newFixture(t)
		body := strings.Replace(valid, `"ios"`, `"wrong"`, 1)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/devices", body))

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		f.devices.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("created", func(t *testing.T) {
		f := newFixture(t)
		f.devices.On("Register", mock.Anything, expectedCmd).
			Return(service.DeviceResponse{ID: 1, Platform: "ios", DeviceID: "bar"}, true, nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/devices", valid))

		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Equal(t, float64(1), decode(t, resp)["id"])
	})

	t.Run("matched existing device", func(t *testing.T) {
		f := newFixture(t)
		f.devices.On("Register", mock.Anything, expectedCmd).
			Return(service.DeviceResponse{ID: 1}, false, nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/devices", valid))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("database failure", func(t *testing.T) {
		f := newFixture(t)
		f.devices.On("Register", mock.Anything, expectedCmd).
			Return(service.DeviceResponse{}, false, service.NewServiceError(constants.ErrCodeDatabase, service.ErrDatabase))

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/devices", valid))

		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, constants.ErrCodeInternalError, decode(t, resp)["code"])
	})
}

func TestDeleteDevice(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		f := newFixture(t)
		f.devices.On("Delete", mock.Anything, service.DeleteDeviceCommand{UserID: 7, DeviceID: 3}).Return(nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/devices/3", ""))

		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		f := newFixture(t)
		f.devices.On("Delete", mock.Anything, service.DeleteDeviceCommand{UserID: 7, DeviceID: 4}).
			Return(service.NewServiceError(constants.ErrCodeDeviceNotFound, service.ErrDeviceNotFound))

		resp, err := f.app.Test(jsonRequest(t, http.MethodDelete, "/api/v1/devices/4", ""))

		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, constants.ErrCodeDeviceNotFound, decode(t, resp)["code"])
	})
}

func TestSubscriptions(t *testing.T) {
	current := service.Subscriptions{
		UnsubscribedFromAll: false,
		Labels:              map[string]map[string]string{"push": {"default": "Default", "chat": "Chat"}},
		Channels: map[string]service.ChannelPreferences{
			"push": {Categories: map[string]bool{"default": true, "chat": false}},
		},
	}

	t.Run("get", func(t *testing.T) {
		f := newFixture(t)
		f.subscriptions.On("Get", mock.Anything, user).Return(current, nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodGet, "/api/v1/subscriptions", ""))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode(t, resp)
		assert.Equal(t, false, body["unsubscribed_from_all"])
		assert.Equal(t, map[string]any{"default": true, "chat": false, "unsubscribed_from_all": false}, body["push"])
		assert.Equal(t, map[string]any{"push": map[string]any{"default": "Default", "chat": "Chat"}}, body["labels"])
	})

	t.Run("put", func(t *testing.T) {
		f := newFixture(t)
		f.subscriptions.On("Put", mock.Anything, user, mock.MatchedBy(func(cmd service.UpdateSubscriptionsCommand) bool {
			push := cmd.Channels["push"]
			return cmd.UnsubscribedFromAll != nil && *cmd.UnsubscribedFromAll &&
				!push.Categories["chat"] && push.UnsubscribedFromAll &&
				len(cmd.Channels) == 2
		})).Return(current, nil)

		body := `{"unsubscribed_from_all":true,"labels":{},"push":{"chat":false,"unsubscribed_from_all":true},"email":{}}`
		resp, err := f.app.Test(jsonRequest(t, http.MethodPut, "/api/v1/subscriptions", body))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		f.subscriptions.AssertExpectations(t)
	})

	t.Run("put with malformed body", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPut, "/api/v1/subscriptions", `{"push":true}`))

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("patch is not allowed", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/subscriptions", `{}`))

		require.NoError(t, err)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})
}

func TestValidatePhone(t *testing.T) {
	t.Run("valid number is formatted", func(t *testing.T) {
		f := newFixture(t)
		f.sms.On("ValidateMobile", mock.Anything, "(201) 555-0123").Return(true, nil)
		f.sms.On("FormatPhone", "(201) 555-0123").Return("+12015550123", nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/phones/validate", `{"number":"(201) 555-0123"}`))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, map[string]any{"number": "+12015550123", "valid": true}, decode(t, resp))
	})

	t.Run("invalid number", func(t *testing.T) {
		f := newFixture(t)
		f.sms.On("ValidateMobile", mock.Anything, "123").Return(false, nil)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/phones/validate", `{"number":"123"}`))

		require.NoError(t, err)
		assert.Equal(t, map[string]any{"number": "123", "valid": false}, decode(t, resp))
	})

	t.Run("number is required", func(t *testing.T) {
		f := newFixture(t)

		resp, err := f.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/phones/validate", `{}`))

		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTwilioWebhook(t *testing.T) {
	form := func(values url.Values) *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/twilio", strings.NewReader(values.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	t.Run("sms payload is accepted", func(t *testing.T) {
		f := newFixture(t)
		f.sms.On("ReceiveRaw", mock.Anything, map[string]string{
			"AccountSid": "AC1",
			"From":       "+12015550123",
			"Body":       "hello",
			"SmsStatus":  "received",
		}).Return(&model.PhoneReceivedRaw{ID: 9}, nil)

		resp, err := f.app.Test(form(url.Values{
			"AccountSid": {"AC1"},
			"From":       {"+12015550123"},
			"Body":       {"hello"},
			"SmsStatus":  {"received"},
		}))

		require.NoError(t, err)
		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		f.sms.AssertExpectations(t)
	})

	t.Run("ringing call gets the auto reply", func(t *testing.T) {
		f := newFixture(t)
		f.sms.On("ReceiveRaw", mock.Anything, mock.Anything).Return(&model.PhoneReceivedRaw{ID: 10}, nil)

		resp, err := f.app.Test(form(url.Values{
			"Direction":  {"inbound"},
			"CallStatus": {"ringing"},
		}))

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "text/xml", resp.Header.Get("Content-Type"))
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, callResponse, string(raw))
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newFixture(t)
		f.sms.On("ReceiveRaw", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		resp, err := f.app.Test(form(url.Values{"Body": {"x"}}))

		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

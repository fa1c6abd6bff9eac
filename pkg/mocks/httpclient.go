package mocks

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/stretchr/testify/mock"
)

type HTTPClient struct {
	mock.Mock
}

func (_m *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	ret := _m.Called(ctx, url, headers)
	return responseOrNil(ret.Get(0)), ret.Error(1)
}

func (_m *HTTPClient) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	ret := _m.Called(ctx, url, body, headers)
	return responseOrNil(ret.Get(0)), ret.Error(1)
}

func (_m *HTTPClient) PostJSON(ctx context.Context, url string, payload any, headers map[string]string) (*http.Response, error) {
	ret := _m.Called(ctx, url, payload, headers)
	return responseOrNil(ret.Get(0)), ret.Error(1)
}

func (_m *HTTPClient) PostForm(ctx context.Context, url string, values url.Values, headers map[string]string) (*http.Response, error) {
	ret := _m.Called(ctx, url, values, headers)
	return responseOrNil(ret.Get(0)), ret.Error(1)
}

func (_m *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	ret := _m.Called(req)
	return responseOrNil(ret.Get(0)), ret.Error(1)
}

func responseOrNil(v any) *http.Response {
	if v == nil {
		return nil
	}
	return v.(*http.Response)
}

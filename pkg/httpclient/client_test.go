package httpclient_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/Behyna/notification-services/pkg/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockServer() *httptest.Server {
	handler := http.NewServeMux()
	handler.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		w.Header().Set("X-Auth", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	})
	handler.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	})
	return httptest.NewServer(handler)
}

func TestHttpClient_Get(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	resp, err := client.Get(context.Background(), server.URL+"/echo", map[string]string{"Authorization": "key=abc"})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "key=abc", resp.Header.Get("X-Auth"))
}

func TestHttpClient_PostJSON(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	resp, err := client.PostJSON(context.Background(), server.URL+"/echo", map[string]string{"to": "token"}, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("X-Content-Type"))

	var decoded map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	assert.Equal(t, "token", decoded["to"])
}

func TestHttpClient_PostForm(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(5 * time.Second)

	values := url.Values{"To": {"+18023390050"}, "Body": {"hello"}}
	resp, err := client.PostForm(context.Background(), server.URL+"/echo", values, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", resp.Header.Get("X-Content-Type"))
	assert.Equal(t, values.Encode(), string(body))
}

func TestHttpClient_Timeout(t *testing.T) {
	server := setupMockServer()
	defer server.Close()

	client := httpclient.NewHTTPClient(50 * time.Millisecond)

	_, err := client.Get(context.Background(), server.URL+"/slow", nil)
	assert.Error(t, err)
}

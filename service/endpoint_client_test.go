package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trader-storefront/models"
)

func newTestEndpoint(t *testing.T, handler http.HandlerFunc) *EndpointClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewEndpointClient(server.URL + "/exec")
}

func TestFetchCatalog_Normalizes(t *testing.T) {
	client := newTestEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/exec", r.URL.Path)
		assert.Equal(t, "catalog", r.URL.Query().Get("mode"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"catalog":[
			{"item":"Nails (box)","weBuy":1000,"toBuy":1500},
			{"item":"Bandage","weBuy":"150","toBuy":250,"toSell":200},
			{"weBuy":5},
			{"item":"","toBuy":1},
			{"item":"Rope","weBuy":"lots","toBuy":null,"toSell":-3},
			"garbage"
		]}`))
	})

	catalog, err := client.FetchCatalog(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.Catalog{
		{Item: "Nails (box)", WeBuy: 1000, ToBuy: 1500},
		{Item: "Bandage", WeBuy: 150, ToBuy: 250, ToSell: 200},
		{Item: "Rope"},
	}, catalog)
}

func TestFetchCatalog_BadResponses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"ok false", http.StatusOK, `{"ok":false,"catalog":[]}`},
		{"catalog not array", http.StatusOK, `{"ok":true,"catalog":{"item":"x"}}`},
		{"catalog missing", http.StatusOK, `{"ok":true}`},
		{"catalog null", http.StatusOK, `{"ok":true,"catalog":null}`},
		{"not json", http.StatusOK, `<html>login</html>`},
		{"server error", http.StatusInternalServerError, `{"ok":true,"catalog":[]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.FetchCatalog(context.Background())
			assert.ErrorIs(t, err, ErrBadCatalogResponse)
		})
	}
}

func TestFetchCatalog_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := NewEndpointClient(server.URL).FetchCatalog(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBadCatalogResponse)
}

func TestPostOrder(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantID   string
		wantErr  string
		wantCode int
	}{
		{"order id", http.StatusOK, `{"ok":true,"orderId":"X123"}`, "X123", "", 0},
		{"numeric id fallback", http.StatusOK, `{"ok":true,"id":42}`, "42", "", 0},
		{"no id", http.StatusOK, `{"ok":true}`, "", "", 0},
		{"non json success", http.StatusOK, `Saved`, "", "", 0},
		{"rejected with message", http.StatusOK, `{"ok":false,"message":"Server closed"}`, "", "Server closed", 0},
		{"rejected without message", http.StatusOK, `{"ok":false}`, "", "Order rejected", 0},
		{"http error json", http.StatusBadRequest, `{"ok":false,"message":"Bad form"}`, "", "Bad form", http.StatusBadRequest},
		{"http error text", http.StatusBadGateway, `upstream down`, "", "HTTP 502: upstream down", http.StatusBadGateway},
		{"http error empty", http.StatusServiceUnavailable, ``, "", "HTTP 503", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			id, err := client.PostOrder(context.Background(), url.Values{"playerName": {"Survivor"}})
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, id)
				return
			}

			var subErr *SubmissionError
			require.ErrorAs(t, err, &subErr)
			assert.Equal(t, tt.wantErr, subErr.Message)
			assert.Equal(t, tt.wantCode, subErr.StatusCode)
		})
	}
}

func TestPostOrder_LongErrorBodyIsTruncated(t *testing.T) {
	client := newTestEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(strings.Repeat("x", 500)))
	})

	_, err := client.PostOrder(context.Background(), url.Values{})
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, "HTTP 500: "+strings.Repeat("x", maxErrorSnippet), subErr.Message)
}

func TestPostOrder_SendsFormEncodedBody(t *testing.T) {
	client := newTestEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded;charset=UTF-8", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "Survivor", form.Get("playerName"))
		assert.Equal(t, "", form.Get("website"))

		w.Write([]byte(`{"ok":true,"orderId":"A1"}`))
	})

	id, err := client.PostOrder(context.Background(), url.Values{"playerName": {"Survivor"}, "website": {""}})
	require.NoError(t, err)
	assert.Equal(t, "A1", id)
}

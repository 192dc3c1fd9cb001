package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantText string
		wantErr  bool
	}{
		{name: "success", status: http.StatusOK, body: `{"text":"Crispy and warm"}`, wantText: "Crispy and warm"},
		{name: "upstream error", status: http.StatusBadGateway, body: "boom", wantErr: true},
		{name: "malformed body", status: http.StatusOK, body: "not json", wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				var req completionRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "describe falafel", req.Prompt)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				w.WriteHeader(testCase.status)
				_, _ = w.Write([]byte(testCase.body))
			}))
			defer srv.Close()

			text, err := NewClient(srv.URL).Complete(context.Background(), "describe falafel")
			if testCase.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.wantText, text)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Complete(context.Background(), "hello")
	assert.Error(t, err)
}

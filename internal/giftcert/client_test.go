package giftcert

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vrpoint/giftcert-bot/pkg/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(&config.BackendConfig{
		BaseURL:  srv.URL,
		APIToken: "test-token",
		Timeout:  5 * time.Second,
	})
	return client, srv
}

func TestCreate_Success(t *testing.T) {
	var gotReq CreateRequest
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-token", r.Header.Get("X-Giftcert-Token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "extension/module/giftcert_pdf_api/create", r.URL.Query().Get("route"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"giftcert_id":"17","code":"004521","amount":"70.00"}`))
	})

	res, err := client.Create(context.Background(), &CreateRequest{
		Amount:    70,
		SendEmail: false,
		Source:    "telegram",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(17), res.ID)
	assert.Equal(t, "004521", res.Code)
	assert.Equal(t, "70.00", res.Amount)
	assert.Equal(t, 70, gotReq.Amount)
	assert.False(t, gotReq.SendEmail)
}

func TestCreate_APIError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"amount out of range"}`))
	})

	res, err := client.Create(context.Background(), &CreateRequest{Amount: 0})

	require.Error(t, err)
	assert.Nil(t, res)
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "create", backendErr.Op)
	assert.Equal(t, "amount out of range", backendErr.Message)
}

func TestGet_ByIDAndByCode(t *testing.T) {
	tests := []struct {
		name     string
		ref      Ref
		wantID   string
		wantCode string
	}{
		{"by id", Ref{ID: 17}, "17", ""},
		{"by code", Ref{Code: "004521"}, "", "004521"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, tt.wantID, r.URL.Query().Get("giftcert_id"))
				assert.Equal(t, tt.wantCode, r.URL.Query().Get("code"))
				_, _ = w.Write([]byte(`{"success":true,"cert":{"giftcert_id":17,"code":"004521","amount":70,"status":"sent"}}`))
			})

			cert, err := client.Get(context.Background(), tt.ref)

			require.NoError(t, err)
			assert.Equal(t, int64(17), cert.ID.Int64())
			assert.Equal(t, "004521", cert.Code)
			assert.Equal(t, "70", cert.Amount.String())
			assert.Equal(t, StatusSent, cert.Status)
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"message":"certificate not found"}`))
	})

	cert, err := client.Get(context.Background(), Ref{Code: "999999"})

	require.Error(t, err)
	assert.Nil(t, cert)
	assert.Equal(t, "certificate not found", err.Error())
}

func TestList_ReturnsRows(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "0", r.URL.Query().Get("start"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`{"success":true,"rows":[
			{"giftcert_id":1,"code":"000001","status":"manual"},
			{"giftcert_id":"2","code":"000002","status":"used"}
		]}`))
	})

	rows, err := client.List(context.Background(), 0, 10)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].ID.Int64())
	assert.Equal(t, int64(2), rows[1].ID.Int64())
	assert.True(t, rows[1].Terminal())
}

func TestList_EmptyRows(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"rows":[]}`))
	})

	rows, err := client.List(context.Background(), 0, 10)

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestUse_SendsNoteAndRef(t *testing.T) {
	var payload map[string]interface{}
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	err := client.Use(context.Background(), Ref{ID: 17}, "note text")

	require.NoError(t, err)
	assert.Equal(t, float64(17), payload["giftcert_id"])
	assert.Equal(t, "note text", payload["note"])
}

func TestDelete_SendsConfirmFlag(t *testing.T) {
	var payload map[string]interface{}
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	err := client.Delete(context.Background(), 17)

	require.NoError(t, err)
	assert.Equal(t, float64(17), payload["giftcert_id"])
	assert.Equal(t, true, payload["confirm"])
}

func TestDownloadPDF_Success(t *testing.T) {
	pdf := []byte("%PDF-1.4 fake content")
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "17", r.URL.Query().Get("giftcert_id"))
		assert.Equal(t, "test-token", r.Header.Get("X-Giftcert-Token"))
		_, _ = w.Write(pdf)
	})

	data, err := client.DownloadPDF(context.Background(), Ref{ID: 17})

	require.NoError(t, err)
	assert.Equal(t, pdf, data)
}

func TestDownloadPDF_Non200(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal error"))
	})

	data, err := client.DownloadPDF(context.Background(), Ref{Code: "004521"})

	require.Error(t, err)
	assert.Nil(t, data)
	assert.Contains(t, err.Error(), "PDF download failed: 500")
}

func TestDo_BadJSONResponse(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := client.Get(context.Background(), Ref{ID: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad response: 502")
}

func TestDo_NetworkError(t *testing.T) {
	client := NewClient(&config.BackendConfig{
		BaseURL:  "http://127.0.0.1:1",
		APIToken: "test-token",
		Timeout:  500 * time.Millisecond,
	})

	_, err := client.Get(context.Background(), Ref{ID: 1})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "network error")
}

func TestFlexInt64_Unmarshal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{"number", `5`, 5},
		{"quoted number", `"5"`, 5},
		{"null", `null`, 0},
		{"empty string", `""`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexInt64
			require.NoError(t, json.Unmarshal([]byte(tt.in), &f))
			assert.Equal(t, tt.want, f.Int64())
		})
	}
}

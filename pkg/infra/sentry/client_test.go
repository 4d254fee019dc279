package sentry_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bonniernews/sentry-sync/pkg/domain/interfaces"
	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/bonniernews/sentry-sync/pkg/infra/sentry"
	"github.com/m-mizutani/gt"
)

func TestClient_Post_JSON(t *testing.T) {
	var gotHeader http.Header
	var gotBody map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"version":"1.0.0","id":42}`))
	}))
	defer server.Close()

	client := sentry.NewClient()

	var resp struct {
		Version string `json:"version"`
		ID      int    `json:"id"`
	}
	err := client.Post(context.Background(), server.URL+"/releases/",
		map[string]string{"version": "1.0.0"}, &resp,
		interfaces.PostOptions{Token: "abc123"},
	)
	gt.NoError(t, err)

	gt.Value(t, resp.Version).Equal("1.0.0")
	gt.Value(t, resp.ID).Equal(42)
	gt.Value(t, gotBody["version"]).Equal(any("1.0.0"))
	gt.Value(t, gotHeader.Get("Authorization")).Equal("Bearer abc123")
	gt.Value(t, gotHeader.Get("Content-Type")).Equal("application/json")
	gt.Value(t, gotHeader.Get("User-Agent")).Equal(types.UserAgent())
}

func TestClient_Post_WithoutToken(t *testing.T) {
	var authorization []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authorization = r.Header.Values("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := sentry.NewClient().Post(context.Background(), server.URL, map[string]string{}, nil, interfaces.PostOptions{})
	gt.NoError(t, err)
	gt.Number(t, len(authorization)).Equal(0)
}

func TestClient_Post_Headers(t *testing.T) {
	var gotHeader http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := sentry.NewClient(sentry.WithUserAgent("custom/0.1"))
	err := client.Post(context.Background(), server.URL, map[string]string{}, nil, interfaces.PostOptions{
		Headers: map[string]string{"X-Extra": "yes"},
	})
	gt.NoError(t, err)
	gt.Value(t, gotHeader.Get("User-Agent")).Equal("custom/0.1")
	gt.Value(t, gotHeader.Get("X-Extra")).Equal("yes")
}

func TestClient_Post_Multipart(t *testing.T) {
	var contentType, name, content string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		name = r.FormValue("name")
		file, _, err := r.FormFile("file")
		if err == nil {
			raw, _ := io.ReadAll(file)
			content = string(raw)
			_ = file.Close()
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	form := sentry.NewForm()
	_, err := form.AddFile("file", "app.js", strings.NewReader("console.log(1)"))
	gt.NoError(t, err)
	gt.NoError(t, form.AddField("name", "~/app.js"))
	gt.NoError(t, form.Close())

	err = sentry.NewClient().Post(context.Background(), server.URL, form, nil, interfaces.PostOptions{})
	gt.NoError(t, err)
	gt.String(t, contentType).Contains("multipart/form-data; boundary=")
	gt.Value(t, name).Equal("~/app.js")
	gt.Value(t, content).Equal("console.log(1)")
}

func TestClient_Post_StatusCodes(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr bool
	}{
		{name: "200 OK", status: http.StatusOK, wantErr: false},
		{name: "201 Created", status: http.StatusCreated, wantErr: false},
		{name: "299 upper bound", status: 299, wantErr: false},
		{name: "301 redirect", status: http.StatusMovedPermanently, wantErr: true},
		{name: "304 not modified", status: http.StatusNotModified, wantErr: true},
		{name: "400 bad request", status: http.StatusBadRequest, wantErr: true},
		{name: "401 unauthorized", status: http.StatusUnauthorized, wantErr: true},
		{name: "409 conflict", status: http.StatusConflict, wantErr: true},
		{name: "500 internal error", status: http.StatusInternalServerError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := sentry.NewClient().Post(context.Background(), server.URL, map[string]string{}, nil, interfaces.PostOptions{})
			if !tt.wantErr {
				gt.NoError(t, err)
				return
			}

			var reqErr *types.RequestError
			gt.True(t, errors.As(err, &reqErr))
			gt.Value(t, reqErr.StatusCode).Equal(tt.status)
			gt.False(t, reqErr.Timeout)
			gt.String(t, err.Error()).Contains("status code")
		})
	}
}

func TestClient_Post_DoesNotFollowRedirect(t *testing.T) {
	var followed atomic.Bool

	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		followed.Store(true)
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusMovedPermanently)
	}))
	defer server.Close()

	err := sentry.NewClient().Post(context.Background(), server.URL, map[string]string{}, nil, interfaces.PostOptions{})

	var reqErr *types.RequestError
	gt.True(t, errors.As(err, &reqErr))
	gt.Value(t, reqErr.StatusCode).Equal(http.StatusMovedPermanently)
	gt.True(t, reqErr.IsRedirect())
	gt.False(t, followed.Load())
}

func TestClient_Post_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := sentry.NewClient(sentry.WithTimeout(50 * time.Millisecond))
	err := client.Post(context.Background(), server.URL, map[string]string{}, nil, interfaces.PostOptions{})

	var reqErr *types.RequestError
	gt.True(t, errors.As(err, &reqErr))
	gt.True(t, reqErr.Timeout)
	gt.Value(t, reqErr.StatusCode).Equal(0)
	gt.String(t, err.Error()).Contains("timed out")
}

func TestClient_Post_InvalidResponseJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("not json"))
	}))
	defer server.Close()

	var out map[string]any
	err := sentry.NewClient().Post(context.Background(), server.URL, map[string]string{}, &out, interfaces.PostOptions{})
	gt.Error(t, err)

	var reqErr *types.RequestError
	gt.False(t, errors.As(err, &reqErr))
}

package placesapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	contentTypeJSON   = "application/json"
	headerContentType = "Content-Type"
)

var waterfall = domain.Place{
	ID:          "p1",
	Title:       "Forest Waterfall",
	Image:       domain.Image{Src: "forest-waterfall.jpg", Alt: "A tranquil forest with a cascading waterfall amidst greenery."},
	Description: "Discover the serenity of this forest waterfall.",
	Lat:         44.5588,
	Lon:         -80.344,
}

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestClient_ListCatalogPlaces_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/places", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"places": []domain.Place{waterfall}})
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	places, err := c.ListCatalogPlaces(context.Background())
	require.NoError(t, err)

	require.Len(t, places, 1)
	assert.Equal(t, waterfall, places[0])
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.RemoteRequests.WithLabelValues(OpListPlaces, "success")))
}

func TestClient_ListUserPlaces_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user-places", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"places": []domain.Place{}})
	}))
	defer srv.Close()

	places, err := testClient(srv.URL).ListUserPlaces(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, places)
	assert.Empty(t, places)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	cases := []struct {
		name    string
		call    func(c *Client) error
		op      string
		message string
	}{
		{
			name: "list places",
			call: func(c *Client) error {
				_, err := c.ListCatalogPlaces(context.Background())
				return err
			},
			op:      OpListPlaces,
			message: "Failed to fetch places",
		},
		{
			name: "list user places",
			call: func(c *Client) error {
				_, err := c.ListUserPlaces(context.Background())
				return err
			},
			op:      OpListUserPlaces,
			message: "Failed to fetch user places",
		},
		{
			name: "replace user places",
			call: func(c *Client) error {
				_, err := c.ReplaceUserPlaces(context.Background(), []domain.Place{waterfall})
				return err
			},
			op:      OpReplaceUserPlaces,
			message: "Failed to update user data.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusInternalServerError, map[string]string{"message": "db down"})
			}))
			defer srv.Close()

			c := testClient(srv.URL)
			err := tc.call(c)
			require.Error(t, err)

			var remote *domain.RemoteError
			require.True(t, errors.As(err, &remote))
			assert.Equal(t, tc.op, remote.Op)
			assert.Equal(t, http.StatusInternalServerError, remote.StatusCode)
			assert.Equal(t, tc.message, err.Error())
			assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.RemoteRequests.WithLabelValues(tc.op, "remote_error")))
		})
	}
}

func TestClient_BodyDecodedBeforeStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ListCatalogPlaces(context.Background())
	require.Error(t, err)

	var decodeErr *domain.DecodeError
	require.True(t, errors.As(err, &decodeErr), "a non-JSON body is a decode failure even with a failure status")
	assert.Equal(t, OpListPlaces, decodeErr.Op)
}

func TestClient_StrictShape(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{name: "missing places", body: `{"items":[]}`, want: `missing "places"`},
		{name: "null places", body: `{"places":null}`, want: `missing "places"`},
		{name: "wrong type", body: `{"places":"nope"}`, want: "cannot unmarshal"},
		{name: "place without id", body: `{"places":[{"title":"x","lat":1,"lon":2}]}`, want: "place 0"},
		{name: "bad coordinates", body: `{"places":[{"id":"p1","lat":123,"lon":2}]}`, want: "invalid coordinates"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set(headerContentType, contentTypeJSON)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := testClient(srv.URL).ListUserPlaces(context.Background())
			var decodeErr *domain.DecodeError
			require.True(t, errors.As(err, &decodeErr), "got %v", err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestClient_ReplaceUserPlaces_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/user-places", r.URL.Path)
		assert.Equal(t, contentTypeJSON, r.Header.Get(headerContentType))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"places":[{
			"id":"p1","title":"Forest Waterfall",
			"image":{"src":"forest-waterfall.jpg","alt":"A tranquil forest with a cascading waterfall amidst greenery."},
			"description":"Discover the serenity of this forest waterfall.",
			"lat":44.5588,"lon":-80.344}]}`, string(body))

		writeJSON(t, w, http.StatusOK, map[string]string{"message": "User places updated!"})
	}))
	defer srv.Close()

	msg, err := testClient(srv.URL).ReplaceUserPlaces(context.Background(), []domain.Place{waterfall})
	require.NoError(t, err)
	assert.Equal(t, "User places updated!", msg)
}

func TestClient_ReplaceUserPlaces_EmptyListEncodesArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"places":[]}`, string(body))
		writeJSON(t, w, http.StatusOK, map[string]string{"message": "ok"})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ReplaceUserPlaces(context.Background(), nil)
	require.NoError(t, err)
}

func TestClient_ReplaceUserPlaces_MissingMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, http.StatusOK, map[string]string{})
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ReplaceUserPlaces(context.Background(), []domain.Place{waterfall})
	var decodeErr *domain.DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Contains(t, err.Error(), `missing "message"`)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient = &http.Client{Timeout: 50 * time.Millisecond}

	_, err := c.ListCatalogPlaces(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), OpListPlaces)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.RemoteRequests.WithLabelValues(OpListPlaces, "transport_error")))
}

func TestNewClient_TrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/places", r.URL.Path)
		writeJSON(t, w, http.StatusOK, map[string]any{"places": []domain.Place{}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 0, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
	_, err := c.ListCatalogPlaces(context.Background())
	require.NoError(t, err)
}

package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chasebfreeman/track-analyzer-pro/internal/model"
	"github.com/chasebfreeman/track-analyzer-pro/internal/store"
)

func newTestClient(handler http.Handler) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	rc := resty.New().SetBaseURL(srv.URL)
	return NewWithRestyClient(rc), srv
}

func TestCreateTrackPostsRowArray(t *testing.T) {
	var gotPrefer string
	var gotBody []trackRow
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/tracks", r.URL.Path)
		gotPrefer = r.Header.Get("Prefer")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(gotBody)
	}))
	defer srv.Close()

	out, err := c.Tracks().Create(context.Background(), &model.Track{Name: "Bandimere", Location: "Morrison, CO"})
	require.NoError(t, err)

	assert.Equal(t, "return=representation", gotPrefer)
	require.Len(t, gotBody, 1)
	assert.NotEmpty(t, gotBody[0].ID)
	assert.Equal(t, "Bandimere", out.Name)
	assert.NotZero(t, out.CreatedAt)
}

func TestDeleteTrackRemovesReadingsFirst(t *testing.T) {
	var paths []string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		switch r.URL.Path {
		case "/readings":
			require.Equal(t, "eq.t1", r.URL.Query().Get("track_id"))
			w.WriteHeader(http.StatusNoContent)
		case "/tracks":
			require.Equal(t, "eq.t1", r.URL.Query().Get("id"))
			_, _ = w.Write([]byte(`[{"id":"t1","name":"x","location":"","created_at":"2024-07-04T12:00:00Z"}]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	require.NoError(t, c.Tracks().Delete(context.Background(), "t1"))
	require.Equal(t, []string{"/readings", "/tracks"}, paths)
}

func TestDeleteTrackNotFound(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	err := c.Tracks().Delete(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListReadingsQueryShape(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "eq.t1", q.Get("track_id"))
		assert.Equal(t, "timestamp.desc", q.Get("order"))
		assert.Equal(t, "eq.2024", q.Get("year"))
		_, _ = w.Write([]byte(`[{"id":"r1","track_id":"t1","date":"2024-07-04","time":"12:00 PM","timestamp":1720107000000,"year":2024,"left_lane":{},"right_lane":{}}]`))
	}))
	defer srv.Close()

	y := 2024
	out, err := c.Readings().ListByTrack(context.Background(), "t1", &y)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "r1", out[0].ID)
	assert.Equal(t, int64(1720107000000), out[0].Timestamp)
}

func TestUpdateReadingSendsOnlyChangedColumns(t *testing.T) {
	var patch map[string]json.RawMessage
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		_, _ = w.Write([]byte(`[{"id":"r1","track_id":"t1","date":"","time":"","timestamp":1,"year":2024,"session":"E2","left_lane":{},"right_lane":{}}]`))
	}))
	defer srv.Close()

	sess := "E2"
	out, err := c.Readings().Update(context.Background(), "r1", model.ReadingUpdate{Session: &sess})
	require.NoError(t, err)
	assert.Equal(t, "E2", out.Session)

	require.Len(t, patch, 1)
	_, ok := patch["session"]
	assert.True(t, ok)
}

func TestYearsDedupesAndKeepsOrder(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "year", r.URL.Query().Get("select"))
		assert.Equal(t, "year.desc", r.URL.Query().Get("order"))
		_, _ = w.Write([]byte(`[{"year":2025},{"year":2025},{"year":2024},{"year":0}]`))
	}))
	defer srv.Close()

	years, err := c.Readings().Years(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []int{2025, 2024}, years)
}

func TestUpsertProfileMergesDuplicates(t *testing.T) {
	var gotPrefer string
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		var rows []profileRow
		require.NoError(t, json.NewDecoder(r.Body).Decode(&rows))
		_ = json.NewEncoder(w).Encode(rows)
	}))
	defer srv.Close()

	out, err := c.Profiles().Upsert(context.Background(), &model.UserProfile{Name: "Crew Chief", PinHash: "ab12", IsActive: true})
	require.NoError(t, err)

	assert.Equal(t, "resolution=merge-duplicates,return=representation", gotPrefer)
	assert.NotEmpty(t, out.ID)
	assert.NotEmpty(t, out.Color)
}

func TestGetProfileNotFound(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := c.Profiles().Get(context.Background(), "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestServerErrorSurfacesStatus(t *testing.T) {
	c, srv := newTestClient(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"permission denied"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := c.Tracks().List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

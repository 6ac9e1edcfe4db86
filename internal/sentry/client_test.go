package sentry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	client, err := NewClient(Config{
		AuthToken: "test-token",
		OrgSlug:   "test-org",
		BaseURL:   baseURL,
	})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{OrgSlug: "org"}); err == nil {
		t.Error("Expected error for missing auth token")
	}
	if _, err := NewClient(Config{AuthToken: "tok"}); err == nil {
		t.Error("Expected error for missing org slug")
	}

	client, err := NewClient(Config{AuthToken: "tok", OrgSlug: "org"})
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, "org", client.OrgSlug())
}

func TestListReplays(t *testing.T) {
	var gotPath, gotAuth string
	var gotQuery map[string][]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.Query()

		w.Header().Set("Link",
			`<https://sentry.io/api/0/organizations/test-org/replays/?cursor=0:0:1>; rel="previous"; results="false", `+
				`<https://sentry.io/api/0/organizations/test-org/replays/?cursor=0:100:0>; rel="next"; results="true"`)
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"id": "abc123", "duration": 45000},
				{"id": "def456", "duration": 12000},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	result, err := client.ListReplays(context.Background(), ListOptions{
		Projects: []int{42},
		Query:    "error_count:>0",
		PerPage:  20,
		Fields:   []string{"id", "duration"},
	})
	require.NoError(t, err)

	assert.Equal(t, "/organizations/test-org/replays/", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, []string{"7d"}, gotQuery["statsPeriod"])
	assert.Equal(t, []string{"42"}, gotQuery["project"])
	assert.Equal(t, []string{"error_count:>0"}, gotQuery["query"])
	assert.Equal(t, []string{"20"}, gotQuery["per_page"])
	assert.Equal(t, []string{"id", "duration"}, gotQuery["field"])

	require.Len(t, result.Data, 2)
	assert.Equal(t, "abc123", result.Data[0]["id"])
	assert.Equal(t, "0:100:0", result.Next)
	assert.Equal(t, "0:0:1", result.Previous)
}

func TestListReplaysStartEndOverridesStatsPeriod(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.ListReplays(context.Background(), ListOptions{
		Start: "2024-07-01T00:00:00Z",
		End:   "2024-07-08T00:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"2024-07-01T00:00:00Z"}, gotQuery["start"])
	assert.Empty(t, gotQuery["statsPeriod"])
}

func TestListReplaysNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.ListReplays(context.Background(), ListOptions{})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestGetReplayEventsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	events, err := client.GetReplayEvents(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestFetchAllFollowsCursors(t *testing.T) {
	pages := map[string][]map[string]any{
		"":       {{"id": "a"}, {"id": "b"}},
		"page-2": {{"id": "c"}},
	}
	nextCursor := map[string]string{"": "page-2", "page-2": ""}

	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		cursor := r.URL.Query().Get("cursor")
		if next := nextCursor[cursor]; next != "" {
			w.Header().Set("Link", fmt.Sprintf(`<https://sentry.io/api/0/x/?cursor=%s>; rel="next"; results="true"`, next))
		}
		json.NewEncoder(w).Encode(map[string]any{"data": pages[cursor]})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	all, err := client.FetchAll(context.Background(), 10, ListOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, requests)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[2]["id"])
}

func TestFetchAllStopsAtMaxPages(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Link", `<https://x.test/?cursor=more>; rel="next"; results="true"`)
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{{"id": "r"}}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	all, err := client.FetchAll(context.Background(), 3, ListOptions{})
	require.NoError(t, err)

	assert.Equal(t, 3, requests)
	assert.Len(t, all, 3)
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []map[string]any{}})
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	all, err := client.FetchAll(context.Background(), 5, ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestParseLinkHeader(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		wantNext     string
		wantPrevious string
	}{
		{
			name:   "empty header",
			header: "",
		},
		{
			name:     "next only",
			header:   `<https://sentry.io/api/0/x/?cursor=0:100:0>; rel="next"`,
			wantNext: "0:100:0",
		},
		{
			name: "next and previous",
			header: `<https://sentry.io/api/0/x/?cursor=0:0:1>; rel="previous"; results="false", ` +
				`<https://sentry.io/api/0/x/?cursor=0:100:0>; rel="next"; results="true"`,
			wantNext:     "0:100:0",
			wantPrevious: "0:0:1",
		},
		{
			name:   "link without cursor ignored",
			header: `<https://sentry.io/api/0/x/>; rel="next"`,
		},
		{
			name:   "malformed entry ignored",
			header: `not-a-link`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, previous := parseLinkHeader(tt.header)
			assert.Equal(t, tt.wantNext, next)
			assert.Equal(t, tt.wantPrevious, previous)
		})
	}
}

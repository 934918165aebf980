package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sfpkg "github.com/sells-group/bidsync/pkg/salesforce"
)

func newTestClient(t *testing.T, handler http.Handler) (sfpkg.Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)

	sf, err := gosf.Init(gosf.Creds{
		AccessToken: "test-token",
		Domain:      ts.URL,
	},
		gosf.WithValidateAuthentication(false),
		gosf.WithRoundTripper(http.DefaultTransport),
	)
	require.NoError(t, err)

	return sfpkg.NewClient(sf), ts
}

func TestFetchLeads(t *testing.T) {
	var soql string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		soql, _ = url.QueryUnescape(r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 2,
			"done":      true,
			"records": []map[string]any{
				{
					"attributes":        map[string]any{"type": "Lead"},
					"Id":                "00Q1",
					"Name":              "Jane Doe",
					"Company":           "Acme Builders",
					"Status":            "Working",
					"Project_URL__c":    "https://crm.test/view/111/1",
					"Pipeline_Stage__c": "Open Bid",
				},
				{
					"attributes": map[string]any{"type": "Lead"},
					"Id":         "00Q2",
				},
			},
		})
	})

	client, ts := newTestClient(t, handler)
	defer ts.Close()

	leads, err := FetchLeads(context.Background(), client, FetchOptions{
		LeadSource: "Construction Feed",
		MaxRecords: 500,
	})
	require.NoError(t, err)
	require.Len(t, leads, 2)

	assert.Equal(t, "00Q1", leads[0].ID)
	assert.Equal(t, "Jane Doe", *leads[0].Name)
	assert.Equal(t, "https://crm.test/view/111/1", *leads[0].ProjectURL)
	assert.Equal(t, "Open Bid", *leads[0].PipelineStage)

	// Optional fields stay absent.
	assert.Nil(t, leads[1].ProjectURL)
	assert.Nil(t, leads[1].PipelineStage)

	assert.Contains(t, soql, "FROM Lead")
	assert.Contains(t, soql, "LeadSource = 'Construction Feed'")
	assert.Contains(t, soql, FieldProjectURL)
	assert.Contains(t, soql, FieldPipelineStage)
	assert.Contains(t, soql, "LIMIT 500")
}

func TestFetchLeads_Paginated(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		if calls == 1 {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"totalSize":      3,
				"done":           false,
				"nextRecordsUrl": "/services/data/v63.0/query/01g-2000",
				"records": []map[string]any{
					{"Id": "00Q1"}, {"Id": "00Q2"},
				},
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 3,
			"done":      true,
			"records":   []map[string]any{{"Id": "00Q3"}},
		})
	})

	client, ts := newTestClient(t, handler)
	defer ts.Close()

	leads, err := FetchLeads(context.Background(), client, FetchOptions{LeadSource: "Construction Feed"})
	require.NoError(t, err)
	require.Len(t, leads, 3)
	assert.Equal(t, 2, calls)
	assert.Equal(t, "00Q3", leads[2].ID)
}

func TestFetchLeads_FetchFailureIsFatal(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"message": "maintenance", "errorCode": "SERVER_UNAVAILABLE"},
		})
	})

	client, ts := newTestClient(t, handler)
	defer ts.Close()

	leads, err := FetchLeads(context.Background(), client, FetchOptions{LeadSource: "Construction Feed"})
	require.Error(t, err)
	assert.Nil(t, leads)
}

func TestFetchLeads_EscapesLeadSource(t *testing.T) {
	var soql string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		soql, _ = url.QueryUnescape(r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 0, "done": true, "records": []map[string]any{},
		})
	})

	client, ts := newTestClient(t, handler)
	defer ts.Close()

	_, err := FetchLeads(context.Background(), client, FetchOptions{LeadSource: "O'Brien's Feed"})
	require.NoError(t, err)
	assert.Contains(t, soql, `O\'Brien\'s Feed`)
}

func TestApplyStage(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusNoContent)
	})

	client, ts := newTestClient(t, handler)
	defer ts.Close()

	err := ApplyStage(context.Background(), client, "00Qxx", "OB")
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Contains(t, gotPath, "/sobjects/Lead/00Qxx")
	assert.Equal(t, "OB", gotBody[FieldPipelineStage])
}

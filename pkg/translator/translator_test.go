package translator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cctns/copilot/pkg/orchestration"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("How many FIRs were filed in Guntur district?", "en")

	assert.Contains(t, prompt, "TABLE firs")
	assert.Contains(t, prompt, "TABLE districts")
	assert.Contains(t, prompt, "Never INSERT, UPDATE, DELETE")
	assert.Contains(t, prompt, "How many FIRs were filed in Guntur district?")
	assert.Contains(t, prompt, `"intro_text"`)
	assert.Contains(t, prompt, `"query"`)
	assert.Contains(t, prompt, `"report_title"`)
	assert.NotContains(t, prompt, "Telugu")
}

func TestBuildPrompt_Locale(t *testing.T) {
	assert.Contains(t, BuildPrompt("q", "te"), "Telugu")
	assert.Contains(t, BuildPrompt("q", "hi"), "Hindi")
	assert.NotContains(t, BuildPrompt("q", "en"), "The question is in")
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     orchestration.Translation
		wantErr  bool
	}{
		{
			name:     "plain JSON",
			response: `{"intro_text":"Here it is:","query":"SELECT 1","report_title":"Results"}`,
			want:     orchestration.Translation{IntroText: "Here it is:", Query: "SELECT 1", ReportTitle: "Results"},
		},
		{
			name: "json fence",
			response: "```json\n" +
				`{"intro_text":"ok","query":"SELECT 2","report_title":"T"}` +
				"\n```",
			want: orchestration.Translation{IntroText: "ok", Query: "SELECT 2", ReportTitle: "T"},
		},
		{
			name: "bare fence with whitespace",
			response: "  ```\n" +
				`{"query":"SELECT 3"}` +
				"\n```  ",
			want: orchestration.Translation{Query: "SELECT 3"},
		},
		{
			name:     "not JSON",
			response: "I cannot answer that.",
			wantErr:  true,
		},
		{
			name:     "missing query",
			response: `{"intro_text":"hello"}`,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseResponse(tt.response)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestGemini_Translate(t *testing.T) {
	payload := `{"intro_text":"Here is the generated SQL query. Please review and confirm to run:",` +
		`"query":"SELECT ct.crime_type_name AS crime_type, COUNT(*) AS count FROM firs f JOIN police_stations ps ON f.station_id = ps.station_id JOIN districts d ON ps.district_id = d.district_id JOIN crime_types ct ON f.crime_type_id = ct.crime_type_id WHERE d.district_name LIKE 'Guntur' GROUP BY ct.crime_type_name",` +
		`"report_title":"FIRs in Guntur by Crime Type"}`

	var gotPrompt string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-2.0-flash:generateContent")
		assert.Equal(t, "secret", r.URL.Query().Get("key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotEmpty(t, req.Contents)
		require.NotEmpty(t, req.Contents[0].Parts)
		gotPrompt = req.Contents[0].Parts[0].Text

		resp := map[string]any{
			"candidates": []map[string]any{{
				"content": map[string]any{
					"parts": []map[string]any{{"text": "```json\n" + payload + "\n```"}},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	g := NewGemini(Config{APIKey: "secret", Endpoint: server.URL})
	result, err := g.Translate(context.Background(), "Show FIRs in Guntur district by crime type", "en")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Query, "SELECT"))
	assert.Equal(t, "FIRs in Guntur by Crime Type", result.ReportTitle)
	assert.Contains(t, gotPrompt, "Show FIRs in Guntur district by crime type")
}

func TestGemini_Translate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	}))
	defer server.Close()

	g := NewGemini(Config{APIKey: "secret", Endpoint: server.URL})
	_, err := g.Translate(context.Background(), "anything", "en")
	require.Error(t, err)

	var trErr *orchestration.TranslationError
	assert.ErrorAs(t, err, &trErr)
}

func TestGemini_Translate_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	g := NewGemini(Config{APIKey: "k", Endpoint: server.URL})
	_, err := g.Translate(context.Background(), "anything", "en")

	var trErr *orchestration.TranslationError
	assert.ErrorAs(t, err, &trErr)
}

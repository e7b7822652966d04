package translator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cctns/copilot/pkg/orchestration"
)

// parseResponse extracts a Translation from the model's JSON response,
// stripping markdown code fences if present.
func parseResponse(response string) (*orchestration.Translation, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var payload translationPayload
	if err := json.Unmarshal([]byte(response), &payload); err != nil {
		return nil, fmt.Errorf("parse translator response: %w (response: %.200s)", err, response)
	}

	query := strings.TrimSpace(payload.Query)
	if query == "" {
		return nil, fmt.Errorf("translator response contained no query (response: %.200s)", response)
	}

	return &orchestration.Translation{
		IntroText:   strings.TrimSpace(payload.IntroText),
		Query:       query,
		ReportTitle: strings.TrimSpace(payload.ReportTitle),
	}, nil
}

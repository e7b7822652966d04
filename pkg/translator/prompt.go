package translator

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
)

// translationPayload mirrors orchestration.Translation for schema reflection.
// The JSON schema generated from it is embedded in the prompt so the model
// knows the exact response shape.
type translationPayload struct {
	IntroText   string `json:"intro_text" jsonschema:"description=One-sentence introduction shown above the generated query"`
	Query       string `json:"query" jsonschema:"description=A single read-only SQLite SELECT statement"`
	ReportTitle string `json:"report_title" jsonschema:"description=Short title for the result report"`
}

var (
	schemaOnce sync.Once
	schemaJSON string
)

// responseSchemaJSON returns the JSON schema of the expected response,
// generated once via reflection.
func responseSchemaJSON() string {
	schemaOnce.Do(func() {
		reflector := jsonschema.Reflector{
			DoNotReference: true,
			Anonymous:      true,
		}
		sch := reflector.Reflect(&translationPayload{})
		sch.Version = ""
		data, err := json.MarshalIndent(sch, "", "  ")
		if err != nil {
			// Reflection of a fixed struct cannot fail at runtime.
			panic(fmt.Sprintf("translator: marshal response schema: %v", err))
		}
		schemaJSON = string(data)
	})
	return schemaJSON
}

// databaseSchema describes the CCTNS tables the model may query.
const databaseSchema = `TABLE districts (
  district_id INTEGER PRIMARY KEY,
  district_name TEXT NOT NULL
)

TABLE police_stations (
  station_id INTEGER PRIMARY KEY,
  station_name TEXT NOT NULL,
  district_id INTEGER NOT NULL REFERENCES districts(district_id)
)

TABLE crime_types (
  crime_type_id INTEGER PRIMARY KEY,
  crime_type_name TEXT NOT NULL
)

TABLE firs (
  fir_id INTEGER PRIMARY KEY,
  fir_number TEXT NOT NULL,
  station_id INTEGER NOT NULL REFERENCES police_stations(station_id),
  crime_type_id INTEGER NOT NULL REFERENCES crime_types(crime_type_id),
  incident_date TEXT NOT NULL,
  registered_date TEXT NOT NULL,
  status TEXT NOT NULL,
  complainant_name TEXT,
  description TEXT
)`

var localeNames = map[string]string{
	"en": "English",
	"te": "Telugu",
	"hi": "Hindi",
}

// BuildPrompt generates the full prompt for one translation request.
func BuildPrompt(question, locale string) string {
	var b strings.Builder

	b.WriteString(`You are a SQL translator for CCTNS, the Crime and Criminal Tracking Network and Systems database used by police in Andhra Pradesh, India.

YOUR ROLE:
Translate the user's question into a single SQLite SELECT statement. You are a TRANSLATOR ONLY. Do NOT answer the question yourself, and do NOT generate any statement that modifies data.

DATABASE SCHEMA:
`)
	b.WriteString(databaseSchema)
	b.WriteString("\n\nRULES:\n")
	b.WriteString(`- Generate exactly one SELECT statement. Never INSERT, UPDATE, DELETE, DROP or PRAGMA.
- Match district, station and crime type names case-insensitively with LIKE.
- Dates are ISO 8601 strings (YYYY-MM-DD); compare them lexically.
- When the question asks for counts per category, GROUP BY the category and alias the count column "count".
- Keep column aliases short and human readable.
`)

	if name, ok := localeNames[locale]; ok && locale != "en" {
		fmt.Fprintf(&b, "\nThe question is in %s. Translate its meaning, and write intro_text and report_title in %s as well.\n", name, name)
	}

	b.WriteString("\nRESPONSE FORMAT:\nRespond with a single JSON object matching this schema, with no surrounding prose:\n")
	b.WriteString(responseSchemaJSON())
	b.WriteString("\n\nUSER QUESTION: ")
	b.WriteString(question)
	b.WriteString("\n\nRespond with valid JSON only:")

	return b.String()
}

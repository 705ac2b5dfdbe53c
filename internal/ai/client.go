// Package ai turns free-form Italian text into a structured reminder
// draft using an OpenAI-compatible chat endpoint with strict JSON
// schema output. The rest of the system only consumes the Draft shape.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/svampito/nudgebot/internal/models"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Draft is the structured reminder proposal extracted from user text,
// with times already resolved in the user's zone.
type Draft struct {
	Title          string
	Category       models.Category
	FireAt         *time.Time
	Recurrence     models.Recurrence
	RecurrenceDays string
	FireTimes      []string
	EndDate        *time.Time
	AdvanceDays    int
}

// rawDraft is the wire shape the model is asked to produce.
type rawDraft struct {
	Title          string   `json:"title"`
	Date           string   `json:"date"`
	Time           string   `json:"time"`
	Recurrence     string   `json:"recurrence"`
	RecurrenceDays string   `json:"recurrence_days"`
	FireTimes      []string `json:"fire_times"`
	Category       string   `json:"category"`
	EndDate        string   `json:"end_date"`
	AdvanceDays    int      `json:"advance_days"`
}

const systemPromptTemplate = `Sei Svampito, un assistente per reminder. Estrai i dati strutturati dal messaggio dell'utente italiano.

Data e ora correnti: %s

Rispondi SOLO con un JSON valido con questa struttura:
{
  "title": "titolo breve del reminder (cosa fare)",
  "date": "YYYY-MM-DD o stringa vuota se non specificata",
  "time": "HH:MM o stringa vuota se non specificato",
  "recurrence": "once|daily|weekly|monthly|every_other_day",
  "recurrence_days": "mon,tue,wed,thu,fri,sat,sun o stringa vuota (solo per weekly)",
  "fire_times": ["HH:MM", "HH:MM"],
  "category": "medicine|birthday|car|house|health|document|habit|generic",
  "end_date": "YYYY-MM-DD o stringa vuota",
  "advance_days": 0
}

Regole:
- Il "title" deve essere l'AZIONE da fare, pulita da date e orari. Prima lettera maiuscola.
- Se l'utente dice "domani", calcola la data corretta basandoti sulla data corrente.
- Se dice "ogni lunedì e giovedì", recurrence="weekly", recurrence_days="mon,thu"
- Se dice "alle 8, 14 e 21", fire_times=["08:00","14:00","21:00"], recurrence="daily"
- Se dice "tra 2 ore", calcola l'orario basandoti sull'ora corrente.
- Rileva la categoria dal contesto (farmaci=medicine, dentista=health, bolletta=house, meccanico=car, ecc.)
- fire_times resta vuoto [] se c'è un solo orario (usa "time" per quello)
- advance_days: documenti=90, auto=30, bollette=5, visite=3, compleanni=3, altri=0`

var draftSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"date": {"type": "string"},
		"time": {"type": "string"},
		"recurrence": {"type": "string", "enum": ["once", "daily", "weekly", "monthly", "every_other_day"]},
		"recurrence_days": {"type": "string"},
		"fire_times": {"type": "array", "items": {"type": "string"}},
		"category": {"type": "string", "enum": ["medicine", "birthday", "car", "house", "health", "document", "habit", "generic"]},
		"end_date": {"type": "string"},
		"advance_days": {"type": "integer"}
	},
	"required": ["title", "date", "time", "recurrence", "recurrence_days", "fire_times", "category", "end_date", "advance_days"],
	"additionalProperties": false
}`)

// ParseDraft extracts a reminder draft from text. The current time is
// given to the model in the user's zone so relative dates resolve
// there.
func (c *Client) ParseDraft(ctx context.Context, text string, loc *time.Location) (*Draft, error) {
	now := time.Now().In(loc)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(systemPromptTemplate, now.Format("2006-01-02 15:04 (Monday)")),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "reminder_draft",
				Schema: draftSchema,
				Strict: true,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	var raw rawDraft
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return resolveDraft(raw, now, loc)
}

// resolveDraft converts the model's string fields into concrete values.
// An unrecognized category or recurrence degrades to the default rather
// than failing the whole draft.
func resolveDraft(raw rawDraft, now time.Time, loc *time.Location) (*Draft, error) {
	draft := &Draft{
		Title:          raw.Title,
		RecurrenceDays: raw.RecurrenceDays,
		FireTimes:      raw.FireTimes,
		AdvanceDays:    raw.AdvanceDays,
	}

	var err error
	if draft.Category, err = models.ParseCategory(raw.Category); err != nil {
		draft.Category = models.CategoryGeneric
	}
	if draft.Recurrence, err = models.ParseRecurrence(raw.Recurrence); err != nil {
		draft.Recurrence = models.RecurrenceOnce
	}

	if raw.Date != "" || raw.Time != "" {
		fireAt, err := resolveDateTime(raw.Date, raw.Time, now, loc)
		if err != nil {
			return nil, err
		}
		draft.FireAt = &fireAt
	}

	if raw.EndDate != "" {
		end, err := time.ParseInLocation("2006-01-02", raw.EndDate, loc)
		if err != nil {
			return nil, fmt.Errorf("bad end date %q: %w", raw.EndDate, err)
		}
		// End of that local day.
		end = end.AddDate(0, 0, 1).Add(-time.Second).UTC()
		draft.EndDate = &end
	}

	return draft, nil
}

func resolveDateTime(date, clockStr string, now time.Time, loc *time.Location) (time.Time, error) {
	day := now
	if date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad date %q: %w", date, err)
		}
		day = parsed
	}

	hour, minute := 9, 0 // default morning slot when only a date is given
	if clockStr != "" {
		parsed, err := time.Parse("15:04", clockStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("bad time %q: %w", clockStr, err)
		}
		hour, minute = parsed.Hour(), parsed.Minute()
	}

	result := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)

	// A bare time-of-day that already passed today means tomorrow.
	if date == "" && result.Before(now) {
		result = result.AddDate(0, 0, 1)
	}

	return result.UTC(), nil
}

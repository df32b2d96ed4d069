// Package itemdata decodes the per-item payload of specialized boards into a
// typed variant selected by the board's template type.
package itemdata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"

	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/validation"
)

// ErrInvalidPayload wraps malformed or schema-violating payloads.
var ErrInvalidPayload = errors.New("invalid item data")

// Payload is implemented by every item data variant.
type Payload interface {
	Template() string
}

type ApplicationStage string

const (
	StageWishlist     ApplicationStage = "wishlist"
	StageApplied      ApplicationStage = "applied"
	StageInterviewing ApplicationStage = "interviewing"
	StageOffer        ApplicationStage = "offer"
	StageRejected     ApplicationStage = "rejected"
	StageAccepted     ApplicationStage = "accepted"
)

// JobApplication is the item payload of job_tracker boards.
type JobApplication struct {
	Company   string           `json:"company" validate:"required,max=200"`
	Position  string           `json:"position" validate:"required,max=200"`
	Stage     ApplicationStage `json:"stage,omitempty" validate:"omitempty,oneof=wishlist applied interviewing offer rejected accepted"`
	Location  string           `json:"location,omitempty" validate:"max=200"`
	URL       string           `json:"url,omitempty" validate:"omitempty,url"`
	Salary    string           `json:"salary,omitempty" validate:"max=100"`
	AppliedOn string           `json:"applied_on,omitempty" validate:"omitempty,timestamp"`
	Contact   string           `json:"contact,omitempty" validate:"max=200"`
	Notes     string           `json:"notes,omitempty" validate:"max=5000"`
}

func (JobApplication) Template() string { return string(models.TemplateJobTracker) }

type Ingredient struct {
	Name     string `json:"name" validate:"required,max=200"`
	Quantity string `json:"quantity,omitempty" validate:"max=100"`
}

// Recipe is the item payload of recipe boards.
type Recipe struct {
	Ingredients []Ingredient `json:"ingredients" validate:"max=100,dive"`
	Steps       []string     `json:"steps,omitempty" validate:"max=100,dive,max=2000"`
	Servings    *int         `json:"servings,omitempty" validate:"omitempty,min=1,max=100"`
	PrepMinutes *int         `json:"prep_minutes,omitempty" validate:"omitempty,min=0,max=10000"`
	CookMinutes *int         `json:"cook_minutes,omitempty" validate:"omitempty,min=0,max=10000"`
	SourceURL   string       `json:"source_url,omitempty" validate:"omitempty,url"`
}

func (Recipe) Template() string { return string(models.TemplateRecipe) }

// Generic is the key-value fallback for free-form boards and unknown templates.
type Generic map[string]any

func (Generic) Template() string { return "" }

// FieldError carries schema violations from a typed payload.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", ErrInvalidPayload, e.Fields)
}

func (e *FieldError) Unwrap() error { return ErrInvalidPayload }

// Decode parses raw into the variant for template. Empty input yields nil.
func Decode(template *models.TemplateType, raw []byte) (Payload, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var payload Payload
	switch {
	case template != nil && *template == models.TemplateJobTracker:
		var job JobApplication
		if err := json.Unmarshal(raw, &job); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		payload = job
	case template != nil && *template == models.TemplateRecipe:
		var recipe Recipe
		if err := json.Unmarshal(raw, &recipe); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		payload = recipe
	default:
		var generic Generic
		if err := json.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return generic, nil
	}

	if fields := validation.Struct(payload); fields != nil {
		return nil, &FieldError{Fields: fields}
	}
	return payload, nil
}

// Encode serializes a payload for the item_data column.
func Encode(p Payload) (datatypes.JSON, error) {
	if p == nil {
		return nil, nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return datatypes.JSON(b), nil
}

// Normalize decodes raw against template and re-encodes it, dropping unknown
// fields of typed variants.
func Normalize(template *models.TemplateType, raw []byte) (datatypes.JSON, error) {
	p, err := Decode(template, raw)
	if err != nil {
		return nil, err
	}
	return Encode(p)
}

package itemdata

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/tracker-api/internal/models"
)

func template(t models.TemplateType) *models.TemplateType { return &t }

func TestDecode_JobApplication(t *testing.T) {
	p, err := Decode(template(models.TemplateJobTracker), []byte(`{"company":"Acme","position":"SRE","stage":"applied","extra":1}`))
	require.NoError(t, err)

	job, ok := p.(JobApplication)
	require.True(t, ok)
	assert.Equal(t, "Acme", job.Company)
	assert.Equal(t, StageApplied, job.Stage)
	assert.Equal(t, "job_tracker", job.Template())
}

func TestDecode_JobApplicationMissingFields(t *testing.T) {
	_, err := Decode(template(models.TemplateJobTracker), []byte(`{"stage":"ghosted"}`))

	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.ErrorIs(t, err, ErrInvalidPayload)
	assert.Equal(t, "is required", fe.Fields["company"])
	assert.Equal(t, "is required", fe.Fields["position"])
	assert.Contains(t, fe.Fields["stage"], "must be one of")
}

func TestDecode_Recipe(t *testing.T) {
	p, err := Decode(template(models.TemplateRecipe), []byte(`{"ingredients":[{"name":"flour","quantity":"200g"}],"servings":4}`))
	require.NoError(t, err)

	recipe := p.(Recipe)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, "flour", recipe.Ingredients[0].Name)
	assert.Equal(t, 4, *recipe.Servings)
}

func TestDecode_RecipeIngredientNeedsName(t *testing.T) {
	_, err := Decode(template(models.TemplateRecipe), []byte(`{"ingredients":[{"quantity":"1"}]}`))
	var fe *FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "is required", fe.Fields["ingredients[0].name"])
}

func TestDecode_GenericFallback(t *testing.T) {
	p, err := Decode(nil, []byte(`{"color":"red","n":2}`))
	require.NoError(t, err)
	assert.Equal(t, Generic{"color": "red", "n": float64(2)}, p)
}

func TestDecode_EmptyAndMalformed(t *testing.T) {
	p, err := Decode(template(models.TemplateRecipe), nil)
	assert.NoError(t, err)
	assert.Nil(t, p)

	p, err = Decode(nil, []byte("null"))
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = Decode(nil, []byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestNormalize_DropsUnknownTypedFields(t *testing.T) {
	out, err := Normalize(template(models.TemplateJobTracker), []byte(`{"company":"Acme","position":"Dev","bogus":true}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"company":"Acme","position":"Dev"}`, string(out))
}

package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validWeek = `{
  "startDate": "2024-06-03",
  "endDate": "2024-06-09",
  "meals": [
    {"day": "Monday", "meal": "Chicken Tacos", "style": "Mexican"},
    {"day": "Tuesday", "meal": "Beef Stir Fry", "style": ""}
  ],
  "recipes": [
    {"day": "Monday", "name": "Chicken Tacos", "ingredients": ["1 lb chicken"], "instructions": "Sear and serve"},
    {"day": "Tuesday", "name": "Beef Stir Fry", "ingredients": [], "instructions": "", "prepSteps": ["Slice beef"], "tips": ["Hot pan"]}
  ],
  "groceryList": {
    "Produce": [{"item": "Cilantro", "days": "Mon"}],
    "Meat": [{"item": "Chicken", "days": ""}]
  }
}`

func TestValidateWeek_Valid(t *testing.T) {
	res, err := ValidateWeek([]byte(validWeek))
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Errors)
}

func TestValidateWeek_WeekdayIgnoresCase(t *testing.T) {
	doc := decodeMap(t, validWeek)
	doc["meals"].([]any)[0].(map[string]any)["day"] = "monday"

	res, err := ValidateWeek(encode(t, doc))
	require.NoError(t, err)
	assert.True(t, res.Valid, "%v", res.Errors)
}

func TestValidateWeek_DuplicateKeys(t *testing.T) {
	// The second Dairy list is valid; the first must not be silently dropped.
	data := `{
	  "startDate": "2024-06-03",
	  "endDate": "2024-06-09",
	  "meals": [],
	  "recipes": [],
	  "groceryList": {
	    "Dairy": [{"oops": "x"}],
	    "Dairy": [{"item": "Milk", "days": ""}]
	  }
	}`

	res, err := ValidateWeek([]byte(data))
	require.NoError(t, err)
	require.False(t, res.Valid)
	assert.Equal(t, []FieldError{{Path: "groceryList.Dairy", Message: "is a duplicate key"}}, res.Errors)
}

func TestValidateWeek_MissingGroceryList(t *testing.T) {
	doc := decodeMap(t, validWeek)
	delete(doc, "groceryList")

	res, err := ValidateWeek(encode(t, doc))
	require.NoError(t, err)

	require.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, FieldError{Path: "groceryList", Message: "is required"}, res.Errors[0])
}

func TestValidateWeek_AccumulatesAllErrors(t *testing.T) {
	data := `{
	  "startDate": "2024-06-03",
	  "endDate": "2024-06-09",
	  "meals": [
	    {"day": "Monday", "meal": "A", "style": "x"},
	    {"day": "Monday", "meal": "B", "style": "x"},
	    {"day": "Caturday", "meal": 3}
	  ],
	  "recipes": "none",
	  "groceryList": {"Produce": [{"item": "Kale"}], "Dairy": "milk"}
	}`

	res, err := ValidateWeek([]byte(data))
	require.NoError(t, err)
	require.False(t, res.Valid)

	want := []FieldError{
		{Path: "meals[2].day", Message: "must be a weekday name"},
		{Path: "meals[2].meal", Message: "must be a string"},
		{Path: "meals[2].style", Message: "is required"},
		{Path: "recipes", Message: "must be an array"},
		{Path: "groceryList.Produce[0].days", Message: "is required"},
		{Path: "groceryList.Dairy", Message: "must be an array"},
	}
	assert.Equal(t, want, res.Errors)
}

func TestValidateWeek_RecordRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc map[string]any)
		want   FieldError
	}{
		{
			name:   "end date drift",
			mutate: func(doc map[string]any) { doc["endDate"] = "2024-06-10" },
			want:   FieldError{Path: "endDate", Message: "must be 6 days after startDate (2024-06-09)"},
		},
		{
			name: "start date not a monday",
			mutate: func(doc map[string]any) {
				doc["startDate"] = "2024-06-04"
				doc["endDate"] = "2024-06-10"
			},
			want: FieldError{Path: "startDate", Message: "must be a Monday"},
		},
		{
			name: "instructions and prep steps",
			mutate: func(doc map[string]any) {
				recipes := doc["recipes"].([]any)
				recipes[1].(map[string]any)["instructions"] = "Stir fry"
			},
			want: FieldError{Path: "recipes[1]", Message: "must not have both instructions and prepSteps"},
		},
		{
			name:   "bad date format",
			mutate: func(doc map[string]any) { doc["startDate"] = "06/03/2024" },
			want:   FieldError{Path: "startDate", Message: "must be a date (YYYY-MM-DD)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := decodeMap(t, validWeek)
			tt.mutate(doc)

			res, err := ValidateWeek(encode(t, doc))
			require.NoError(t, err)
			require.False(t, res.Valid)
			assert.Equal(t, []FieldError{tt.want}, res.Errors)
		})
	}
}

func TestValidateWeek_MalformedJSON(t *testing.T) {
	_, err := ValidateWeek([]byte(`{"startDate": `))
	assert.Error(t, err)

	_, err = ValidateWeek([]byte(`{} {}`))
	assert.Error(t, err)
}

func TestValidateWeek_NotAnObject(t *testing.T) {
	res, err := ValidateWeek([]byte(`[]`))
	require.NoError(t, err)
	require.False(t, res.Valid)
	assert.Equal(t, []FieldError{{Path: "", Message: "must be an object"}}, res.Errors)
}

func TestValidate_OrderedByPath(t *testing.T) {
	doc := map[string]any{
		"b": []any{nil},
		"a": []any{true},
	}
	res, err := Validate(doc, MapOf(ArrayOf(String())))
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []FieldError{
		{Path: "a[0]", Message: "must be a string"},
		{Path: "b[0]", Message: "must be a string"},
	}, res.Errors)
}

func TestWeekShape_JSONSchema(t *testing.T) {
	s := WeekShape.JSONSchema()
	assert.Equal(t, "object", s["type"])

	props := s["properties"].(map[string]any)
	grocery := props["groceryList"].(map[string]any)
	assert.Equal(t, "object", grocery["type"])
	assert.Contains(t, grocery, "additionalProperties")
	assert.Equal(t, []any{"startDate", "endDate", "meals", "recipes", "groceryList"}, s["required"])

	meals := props["meals"].(map[string]any)
	day := meals["items"].(map[string]any)["properties"].(map[string]any)["day"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "string", "format": "weekday"}, day)
}

func TestCompile(t *testing.T) {
	first, err := Compile(WeekShape)
	require.NoError(t, err)
	second, err := Compile(WeekShape)
	require.NoError(t, err)
	assert.Same(t, first, second)

	var doc any
	require.NoError(t, json.Unmarshal([]byte(validWeek), &doc))
	assert.NoError(t, first.Validate(doc))
}

func decodeMap(t *testing.T, s string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &doc))
	return doc
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedPicker(i int) Picker {
	return func(int) int { return i }
}

func TestRenderer_PickerSelectsTemplate(t *testing.T) {
	pool := MustPool(Greeting, `first {{ .name }}`, `second {{ .name }}`)

	out, err := NewRenderer(fixedPicker(0)).Render(pool, map[string]any{"name": "sam"})
	require.NoError(t, err)
	assert.Equal(t, "first sam", out)

	out, err = NewRenderer(fixedPicker(1)).Render(pool, map[string]any{"name": "sam"})
	require.NoError(t, err)
	assert.Equal(t, "second sam", out)
}

func TestRenderer_PickerSeesPoolSize(t *testing.T) {
	var seen int
	r := NewRenderer(func(n int) int { seen = n; return 0 })

	_, err := r.Render(DefaultPools()[Greeting], map[string]any{"name": "sam"})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
}

func TestRenderer_MissingKeyFails(t *testing.T) {
	pool := MustPool(LocationError, `Sorry, I don't know where {{ .query }} is`)

	out, err := NewRenderer(fixedPicker(0)).Render(pool, map[string]any{"name": "sam"})
	require.Error(t, err)
	assert.Empty(t, out)
	assert.Contains(t, err.Error(), "query")
}

func TestRenderer_DefaultRandomStaysInPool(t *testing.T) {
	r := NewRenderer(nil)
	pools := DefaultPools()
	allowed := map[string]bool{
		"Hi Sam!":      true,
		"Howdy Sam!":   true,
		"Welcome Sam.": true,
	}

	for range 50 {
		out, err := r.Render(pools[Greeting], map[string]any{"name": "sam"})
		require.NoError(t, err)
		assert.True(t, allowed[out], "unexpected greeting %q", out)
	}
}

func TestRender_Report(t *testing.T) {
	data := map[string]any{
		"time":             "today",
		"low_temperature":  49.87,
		"high_temperature": 65.2,
		"description":      "mostly sunny",
	}

	out, err := NewRenderer(fixedPicker(0)).Render(DefaultPools()[Report], data)
	require.NoError(t, err)
	assert.Equal(t, "Today the low is 50F and the high is 65F. Mostly Sunny", out)
}

func TestRender_SameValuesAcrossTemplates(t *testing.T) {
	pool := DefaultPools()[WeatherError]
	data := map[string]any{"lat": "37.77", "lng": "-122.42"}

	for i := range pool.Len() {
		out, err := NewRenderer(fixedPicker(i)).Render(pool, data)
		require.NoError(t, err)
		assert.Contains(t, out, "37.77, -122.42")
	}
}

func TestNewPool_Errors(t *testing.T) {
	_, err := NewPool(Greeting)
	require.Error(t, err)

	_, err = NewPool(Greeting, `{{ .name `)
	require.Error(t, err)

	_, err = NewPool(Greeting, `{{ .name | shout }}`)
	require.Error(t, err)
}

func TestValidate_DefaultPools(t *testing.T) {
	require.NoError(t, Validate(DefaultPools(), SampleContexts()))
}

func TestValidate_DetectsDrift(t *testing.T) {
	pools := map[Kind]*Pool{
		Greeting: MustPool(Greeting, `Hi {{ .name }}`, `Hi {{ .nickname }}`),
		Report:   MustPool(Report, `{{ .time }}`),
	}
	samples := map[Kind]map[string]any{
		Greeting: {"name": "sam"},
	}

	err := Validate(pools, samples)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nickname")
	assert.Contains(t, err.Error(), "no sample context for report")
}

func TestTemplateFuncs(t *testing.T) {
	assert.Equal(t, "San Francisco", title("san francisco"))
	assert.Equal(t, "Sunny", title("sunny"))
	assert.Equal(t, "50", degrees(49.5))
	assert.Equal(t, "-3", degrees(-2.6))
	assert.Equal(t, "0", degrees(-0.2))
}

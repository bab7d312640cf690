package transcription

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultTextIsOptional(t *testing.T) {
	t.Parallel()

	result, err := ParseResult([]byte(`{"transcript":"renamed field"}`))
	require.NoError(t, err)
	require.Empty(t, result.Text())

	result, err = ParseResult([]byte(`{"text":42}`))
	require.NoError(t, err)
	require.Empty(t, result.Text())
}

func TestResultIndentedKeepsKeyOrder(t *testing.T) {
	t.Parallel()

	result, err := ParseResult([]byte(`{"text":"hi","duration":1.5,"segments":[{"id":0}]}`))
	require.NoError(t, err)

	indented, err := result.Indented()
	require.NoError(t, err)

	want := "{\n" +
		"  \"text\": \"hi\",\n" +
		"  \"duration\": 1.5,\n" +
		"  \"segments\": [\n" +
		"    {\n" +
		"      \"id\": 0\n" +
		"    }\n" +
		"  ]\n" +
		"}\n"
	require.Equal(t, want, string(indented))
}

func TestResultIndentedEmpty(t *testing.T) {
	t.Parallel()

	_, err := Result{}.Indented()
	require.Error(t, err)
}

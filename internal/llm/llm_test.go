package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeClient struct {
	answer string
	err    error
	prompt string
}

func (f *fakeClient) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.answer, f.err
}

func TestDecodeJSON(t *testing.T) {
	var out PlacementAnswer
	err := DecodeJSON("Sure!\n```json\n{\"category\":\"Dairy\",\"location\":\"Fridge\"}\n```", &out)
	require.NoError(t, err)
	assert.Equal(t, PlacementAnswer{Category: "Dairy", Location: "Fridge"}, out)

	assert.ErrorIs(t, DecodeJSON("no json here", &out), ErrNoJSON)
	assert.ErrorIs(t, DecodeJSON("{not json}", &out), ErrNoJSON)
}

func TestAskPlacement(t *testing.T) {
	client := &fakeClient{answer: `{"category":" Produce ","location":"Fridge"}`}

	got, err := AskPlacement(context.Background(), client, "Spinach", []string{"Produce"}, []string{"Fridge"})
	require.NoError(t, err)
	assert.Equal(t, "Produce", got.Category)
	assert.Contains(t, client.prompt, "Spinach")
	assert.Contains(t, client.prompt, "Allowed locations: Fridge")

	client.err = errors.New("quota exceeded")
	_, err = AskPlacement(context.Background(), client, "Spinach", nil, nil)
	assert.Error(t, err)
}

func TestLLaMAClientResponseVariants(t *testing.T) {
	bodies := map[string]string{
		"output_text":    `{"output_text":"A"}`,
		"generated_text": `{"generated_text":"B"}`,
		"generation":     `{"generation":{"text":"C"}}`,
	}
	want := map[string]string{"output_text": "A", "generated_text": "B", "generation": "C"}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			client := NewLLaMAClient("secret", "llama-3", srv.URL, zaptest.NewLogger(t))
			got, err := client.Generate(context.Background(), "hi")
			require.NoError(t, err)
			assert.Equal(t, want[name], got)
		})
	}
}

func TestLLaMAClientErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewLLaMAClient("secret", "m", srv.URL, zaptest.NewLogger(t)).Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "429")

	_, err = NewLLaMAClient("", "m", srv.URL, zaptest.NewLogger(t)).Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "LLAMA_API_KEY")
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), "", "", zaptest.NewLogger(t))
	assert.Error(t, err)
}

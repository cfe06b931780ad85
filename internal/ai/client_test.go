package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ravgen/rav-api/internal/models"
	"github.com/ravgen/rav-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := New(config.AIConfig{BaseURL: srv.URL + "/v1", APIKey: "test-key", Model: "test-model"})
	return client, srv
}

func completionBody(content string) []byte {
	body := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
	data, _ := json.Marshal(body)
	return data
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFence(tt.in))
		})
	}
}

func TestCompleteJSONStripsFences(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody("```json\n{\"questions\":[{\"question\":\"Melhorou a leitura?\",\"type\":\"text\"}]}\n```"))
	})

	var reply QuestionsReply
	raw, err := client.CompleteJSON(context.Background(), "system", "user", &reply)
	require.NoError(t, err)
	assert.Contains(t, raw, "Melhorou a leitura?")
	require.Len(t, reply.Questions, 1)
	assert.Equal(t, "Melhorou a leitura?", reply.Questions[0].Text)
}

func TestCompleteJSONMalformedReplyIsFatal(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody("desculpe, não consigo gerar JSON"))
	})

	var reply QuestionsReply
	_, err := client.CompleteJSON(context.Background(), "system", "user", &reply)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedReply)
}

func TestCompleteNon2xxFails(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "system", "user")
	require.Error(t, err)
}

func TestCompleteReportsLatencyToObserver(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody("ok"))
	})

	var ops []string
	client.SetObserver(func(operation string, duration time.Duration) {
		ops = append(ops, operation)
		assert.GreaterOrEqual(t, duration, time.Duration(0))
	})

	_, err := client.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, []string{"chat_completion"}, ops)

	// the observer fires on failures too
	failing, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	})
	failing.SetObserver(func(operation string, duration time.Duration) {
		ops = append(ops, operation)
	})
	_, err = failing.Complete(context.Background(), "system", "user")
	require.Error(t, err)
	assert.Len(t, ops, 2)
}

func TestCompleteEmptyContentFails(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody("   "))
	})

	_, err := client.Complete(context.Background(), "system", "user")
	require.ErrorIs(t, err, ErrEmptyReply)
}

func TestEvolutionQuestionsPrompt(t *testing.T) {
	system, user := EvolutionQuestionsPrompt("Maria Silva", "1º Bimestre", "2º Bimestre", "Maria demonstrou avanços na leitura.")

	assert.Contains(t, system, "EVOLUÇÃO")
	assert.Contains(t, user, "Maria Silva")
	assert.Contains(t, user, "1º Bimestre")
	assert.Contains(t, user, "2º Bimestre")
	assert.Contains(t, user, "Maria demonstrou avanços na leitura.")
	assert.Contains(t, user, "NO MÁXIMO 9 perguntas")
	assert.Contains(t, user, models.OptionAllOfTheAbove)
}

func TestNarrativePromptStructure(t *testing.T) {
	note := "Com apoio da família"
	answers := []models.AnsweredQuestion{
		{QuestionText: "O aluno participa das aulas?", Response: "Sim, ativamente", Note: &note},
		{QuestionText: "Houve progresso em matemática?", Response: models.AnswerNotApplicable},
	}
	prev := strings.Repeat("histórico ", 80)

	system, user := NarrativePrompt("João Pedro", "2º Bimestre", "1º Bimestre", prev, "evidências do documento", answers)

	assert.Contains(t, system, "3-4 parágrafos")
	assert.Contains(t, user, "Ao longo do 2º Bimestre...")
	assert.Contains(t, user, "O aluno participa das aulas?")
	assert.Contains(t, user, "OBSERVAÇÃO ADICIONAL: Com apoio da família")
	assert.Contains(t, user, "NÃO copie este texto")
	// Previous narrative excerpt is bounded.
	assert.NotContains(t, user, prev)
}

func TestNarrativePromptWithoutHistory(t *testing.T) {
	_, user := NarrativePrompt("Ana", "1º Bimestre", "", "", "", nil)
	assert.NotContains(t, user, "HISTÓRICO DO BIMESTRE ANTERIOR")
	assert.Contains(t, user, "Nenhuma evidência específica disponível.")
}

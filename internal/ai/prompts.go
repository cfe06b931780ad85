package ai

import (
	"fmt"
	"strings"

	"github.com/ravgen/rav-api/internal/models"
)

// GeneratedQuestion is the shape the evolution-question prompt asks
// the model to return inside {"questions": [...]}.
type GeneratedQuestion struct {
	Text     string   `json:"question"`
	Type     string   `json:"type"`
	Options  []string `json:"options,omitempty"`
	FieldKey string   `json:"field_key,omitempty"`
}

// QuestionsReply is the envelope of the structured question call.
type QuestionsReply struct {
	Questions []GeneratedQuestion `json:"questions"`
}

// NewSituationsQuestion is the mandatory 10th free-text question always
// appended to the dynamic evolution set.
const NewSituationsQuestion = "Quais novos aspectos ou situações ocorreram com o aluno neste bimestre que não foram mencionados anteriormente?"

const (
	previousNarrativeExcerptLimit = 300
	evidenceExcerptLimit          = 500
)

// ImprovementScale are the options used for multiple-choice evolution
// questions: a 5-point scale plus the catch-alls.
var ImprovementScale = []string{
	"Melhorou significativamente",
	"Melhorou um pouco",
	"Manteve o mesmo nível",
	"Piorou um pouco",
	"Piorou significativamente",
	models.OptionAllOfTheAbove,
	models.OptionNoneOfTheAbove,
}

// EvolutionQuestionsPrompt builds the system and user messages that ask
// the model for up to nine comparison questions keyed to the previous
// term's narrative.
func EvolutionQuestionsPrompt(studentName, previousTerm, currentTerm, previousNarrative string) (system, user string) {
	system = `Você é um assistente pedagógico especializado em RAV da SEEDF.
Sua função é analisar a descrição do bimestre anterior e gerar perguntas que ajudem o professor a avaliar a EVOLUÇÃO do aluno comparando o bimestre atual com o anterior.

Foque em:
- Se comportamentos melhoraram, pioraram ou persistem
- Se dificuldades foram superadas ou continuam
- Se pontos positivos se mantiveram ou regrediram
- Aspectos que precisam de acompanhamento continuado`

	var sb strings.Builder
	sb.WriteString("Analise a descrição do bimestre anterior e gere perguntas sobre a EVOLUÇÃO do aluno:\n\n")
	fmt.Fprintf(&sb, "ALUNO: %s\n", studentName)
	fmt.Fprintf(&sb, "BIMESTRE ANTERIOR: %s\n", previousTerm)
	fmt.Fprintf(&sb, "BIMESTRE ATUAL: %s\n\n", currentTerm)
	sb.WriteString("DESCRIÇÃO DO BIMESTRE ANTERIOR:\n\"\"\"\n")
	sb.WriteString(previousNarrative)
	sb.WriteString("\n\"\"\"\n\n")
	sb.WriteString("Instruções:\n")
	sb.WriteString("1. Gere NO MÁXIMO 9 perguntas baseadas na descrição do bimestre anterior\n")
	sb.WriteString("2. Perguntas devem focar na EVOLUÇÃO/COMPARAÇÃO entre bimestres\n")
	sb.WriteString("3. Use termos como \"melhorou\", \"piorou\", \"manteve\", \"persiste\", \"evoluiu\"\n")
	sb.WriteString("4. Use \"multiple_choice\" para perguntas objetivas e \"text\" para descritivas\n")
	fmt.Fprintf(&sb, "5. Para múltipla escolha, use as opções: [%q, %q, %q, %q, %q, %q, %q]\n",
		ImprovementScale[0], ImprovementScale[1], ImprovementScale[2], ImprovementScale[3],
		ImprovementScale[4], ImprovementScale[5], ImprovementScale[6])
	sb.WriteString("\nRetorne APENAS JSON válido:\n")
	sb.WriteString(`{"questions": [{"question": "...", "type": "multiple_choice", "options": ["..."], "field_key": "evolucao_aspecto_1"}]}`)
	sb.WriteString("\n")

	return system, sb.String()
}

// NarrativePrompt builds the messages that synthesize the term
// narrative (coluna B) from the teacher's answers.
func NarrativePrompt(studentName, term, previousTerm, previousNarrative, evidence string, answers []models.AnsweredQuestion) (system, user string) {
	system = `Você é um especialista em educação que escreve relatórios RAV para a SEEDF.

CRÍTICO: Escreva um texto COMPLETAMENTE ORIGINAL sobre o bimestre atual baseado nas RESPOSTAS ESPECÍFICAS do professor.
- NÃO copie ou reutilize frases dos textos anteriores
- CRIE conteúdo novo e específico baseado apenas nas respostas do professor
- Use textos anteriores apenas como contexto histórico, nunca como modelo

Estrutura obrigatória (3-4 parágrafos):
1º parágrafo: Comportamento, participação e relacionamento interpessoal
2º parágrafo: Desenvolvimento pedagógico e habilidades de aprendizagem específicas
3º parágrafo: Desempenho nas disciplinas (baseado nas respostas específicas)
4º parágrafo: Atividades complementares, coordenação motora e aspectos gerais

Tom: formal, institucional da SEEDF, 3ª pessoa, respeitoso e técnico.`

	var sb strings.Builder
	fmt.Fprintf(&sb, "ESTUDANTE: %s\n", studentName)
	fmt.Fprintf(&sb, "BIMESTRE ATUAL: %s\n\n", term)

	if previousNarrative != "" {
		fmt.Fprintf(&sb, "HISTÓRICO DO BIMESTRE ANTERIOR (%s) - Para contexto histórico apenas, NÃO copie este texto:\n%s...\n\n",
			previousTerm, truncateRunes(previousNarrative, previousNarrativeExcerptLimit))
	}

	sb.WriteString("RESPOSTAS ESPECÍFICAS DO PROFESSOR (FONTE PRINCIPAL DO NOVO TEXTO):\n")
	for _, a := range answers {
		fmt.Fprintf(&sb, "\nPERGUNTA: %s\nRESPOSTA DO PROFESSOR: %s\n", a.QuestionText, a.Response)
		if a.Note != nil && *a.Note != "" {
			fmt.Fprintf(&sb, "OBSERVAÇÃO ADICIONAL: %s\n", *a.Note)
		}
		sb.WriteString("---\n")
	}

	sb.WriteString("\nEVIDÊNCIAS COMPLEMENTARES:\n")
	if evidence != "" {
		sb.WriteString(truncateRunes(evidence, evidenceExcerptLimit))
	} else {
		sb.WriteString("Nenhuma evidência específica disponível.")
	}
	sb.WriteString("\n\nINSTRUÇÕES CRÍTICAS:\n")
	sb.WriteString("1. Escreva 3-4 parágrafos COMPLETAMENTE ORIGINAIS baseados nas respostas específicas do professor\n")
	if previousNarrative != "" {
		sb.WriteString("2. Faça comparações com o bimestre anterior apenas quando as respostas indicarem evolução ou mudanças\n")
	} else {
		sb.WriteString("2. Foque no desenvolvimento atual evidenciado pelas respostas\n")
	}
	sb.WriteString("3. CADA PARÁGRAFO deve ter informações NOVAS baseadas nas respostas específicas do professor\n")
	sb.WriteString("4. NÃO reutilize frases ou estruturas dos textos anteriores\n")
	sb.WriteString("5. Cite aspectos específicos mencionados pelo professor nas respostas\n")
	sb.WriteString("6. Use linguagem técnica pedagógica da SEEDF\n\n")
	fmt.Fprintf(&sb, "Comece com \"Ao longo do %s...\" e retorne APENAS o texto final dos parágrafos.", term)

	return system, sb.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

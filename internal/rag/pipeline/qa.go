package pipeline

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/rag/interfaces"
	"docchat/internal/rag/schema"
	"docchat/pkg/logger"
)

// QAPipeline is responsible for generating an answer based on a query and
// retrieved chunks.
type QAPipeline struct {
	llm interfaces.LLM
	log *logger.Logger
}

// NewQAPipeline creates a new QAPipeline.
func NewQAPipeline(llm interfaces.LLM, log *logger.Logger) *QAPipeline {
	return &QAPipeline{
		llm: llm,
		log: log,
	}
}

// Run builds a prompt from the query and context chunks and calls the LLM.
func (p *QAPipeline) Run(ctx context.Context, query string, documents []*schema.Document) (string, error) {
	p.log.Info(fmt.Sprintf("Building prompt for query: '%s' with %d chunks", query, len(documents)))

	prompt := p.buildPrompt(query, documents)

	answer, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		p.log.Error(fmt.Sprintf("LLM failed to generate answer: %v", err))
		return "", err
	}

	p.log.Info("Successfully generated answer from LLM.")
	return answer, nil
}

// buildPrompt constructs the grounded prompt sent to the model.
func (p *QAPipeline) buildPrompt(query string, documents []*schema.Document) string {
	contexts := make([]string, len(documents))
	for i, doc := range documents {
		contexts[i] = doc.Text
	}

	var sb strings.Builder
	sb.WriteString("You are a helpful AI assistant. Answer the user's question based on the provided context.\n")
	sb.WriteString("If the answer cannot be found in the context, say so politely.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(strings.Join(contexts, "\n\n"))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Question: %s", query))
	sb.WriteString("\n\nAnswer:")

	return sb.String()
}

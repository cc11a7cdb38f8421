package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/xhad/tutor/internal/types"
	"github.com/xhad/tutor/pkg/registry"
)

// topK is the fixed number of chunks retrieved per question. It is a design
// constant, not per-request configurable.
const topK = 3

// contextSeparator joins the retrieved chunks inside the prompt.
const contextSeparator = "\n\n---\n\n"

// User-facing terminal responses. Both are normal outcomes of the query
// state machine, not system faults.
const (
	msgNotAvailable = "This material is not available."
	msgNotCovered   = "This topic is not covered in the material. Try rephrasing your question."
)

// systemPrompt binds the generator to the retrieved material. It names the
// exact fallback sentence the model must produce when the material does not
// contain the answer.
const systemPrompt = `You are a strict educational tutor. Answer ONLY from the provided material.

RULES:
- Do NOT add general knowledge
- Do NOT make inferences beyond the text
- Do NOT add examples not in the material
- Quote or paraphrase ONLY what's written

If the answer is NOT in the material, say:
"This is not covered in the material."`

// Chain answers questions strictly from one document's indexed material:
// resolve the index, retrieve candidate chunks, gate on relevance, assemble
// a grounded prompt and generate.
type Chain struct {
	registry  *registry.Registry
	generator types.Generator
}

func New(reg *registry.Registry, generator types.Generator) *Chain {
	return &Chain{
		registry:  reg,
		generator: generator,
	}
}

// AnswerQuestion answers a question from the document addressed by rawName.
// The name is normalized before lookup, so filenames and index names are
// interchangeable. It never returns an error: every failure path produces a
// user-facing answer string.
func (c *Chain) AnswerQuestion(ctx context.Context, question, rawName string) string {
	id := registry.NormalizeName(rawName)

	ix, ok, err := c.registry.EnsureLoaded(ctx, id)
	if err != nil {
		return fmt.Sprintf("Error processing question: %v", err)
	}
	if !ok {
		return msgNotAvailable
	}

	results, err := ix.Search(ctx, question, topK)
	if err != nil {
		return fmt.Sprintf("Error processing question: %v", err)
	}

	// Relevance gate: refuse to generate when the best chunk is not
	// meaningfully related to the question.
	if len(results) == 0 || results[0].Score <= 0 {
		return msgNotCovered
	}

	var relevant []string
	for _, result := range results {
		if result.Score > 0 {
			relevant = append(relevant, result.Text)
		}
	}

	prompt := assemblePrompt(strings.Join(relevant, contextSeparator), question)

	answer, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return fmt.Sprintf("Error processing question: %v", err)
	}

	return answer
}

func assemblePrompt(material, question string) string {
	return fmt.Sprintf(
		"%s\n\nMaterial from uploaded book:\n%s\n\nStudent question: %s\n\nAnswer (ONLY from material):",
		systemPrompt, material, question,
	)
}

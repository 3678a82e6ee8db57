// Package rag answers DS&A questions from retrieved context, degrading to
// fixed responses when the topic is off, no context is found, or the LLM fails.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"dsa-rag/internal/helper"
	"dsa-rag/internal/llmservice"
	"dsa-rag/internal/models"
	"dsa-rag/internal/retrieval"
)

// TopicKeywords gate questions to the DS&A domain. Matching is a plain
// case-insensitive substring test.
var TopicKeywords = []string{
	"stack", "queue", "array", "tree", "graph", "algorithm", "data structure",
	"sort", "search", "binary", "heap", "hash", "linked list", "pointer",
	"recursion", "iteration", "complexity", "time complexity", "space complexity",
	"big o", "o(n)", "lifo", "fifo", "push", "pop", "enqueue", "dequeue",
	"traversal", "insertion", "deletion", "node", "vertex", "edge", "path",
	"bubble sort", "quick sort", "merge sort", "binary search", "dfs", "bfs",
	"dynamic programming", "greedy", "divide and conquer",
}

// Turn is one exchange of a chat session.
type Turn struct {
	Question string
	Answer   string
}

type RAG struct {
	retriever retrieval.Retriever
	llm       llmservice.Generator
	k         int
}

// NewRAG wires a retriever and an LLM. llm may be nil, in which case answers
// are built from the retrieved context alone.
func NewRAG(retriever retrieval.Retriever, llm llmservice.Generator) *RAG {
	return &RAG{retriever: retriever, llm: llm, k: models.DefaultTopK}
}

// WithK overrides the number of documents retrieved per question.
func (r *RAG) WithK(k int) *RAG {
	if k > 0 {
		r.k = k
	}
	return r
}

// Sanitize trims the question and folds newlines into spaces.
func Sanitize(question string) (string, error) {
	q := strings.ReplaceAll(strings.TrimSpace(question), "\n", " ")
	if q == "" {
		return "", models.ErrEmptyQuery
	}
	return q, nil
}

// IsOnTopic reports whether the question mentions any DS&A keyword.
func IsOnTopic(question string) bool {
	q := strings.ToLower(question)
	for _, kw := range TopicKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

// FormatHistory renders turns as alternating Human/Assistant lines.
func FormatHistory(history []Turn) string {
	var sb strings.Builder
	for _, t := range history {
		fmt.Fprintf(&sb, "Human: %s\nAssistant: %s\n", t.Question, t.Answer)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Query answers question. It never returns internal failure details; every
// error path maps to one of the fixed responses.
func (r *RAG) Query(ctx context.Context, question string, history []Turn) (answer models.Answer) {
	answer.Query = question
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Msg("Answer pipeline failed")
			answer = models.Answer{Query: question, Text: models.ApologyResponse, Sources: []string{}}
		}
	}()

	q, err := Sanitize(question)
	if err != nil || !IsOnTopic(q) {
		log.Debug().Str("question", q).Msg("Question is off topic")
		answer.Text = models.OffTopicResponse
		answer.Sources = []string{}
		return answer
	}

	docs := r.retriever.Search(ctx, q, r.k)
	contents := make([]string, len(docs))
	for i, d := range docs {
		contents[i] = d.Content
	}
	docContext := strings.Join(contents, models.ContextSeparator)
	log.Debug().Int("documents", len(docs)).Bool("context", docContext != "").Msg("Retrieved context")

	if docContext == "" {
		answer.Text = models.NoContextResponse
	} else {
		answer.Text = r.generate(ctx, q, docContext, history)
	}

	answer.Sources = contents[:min(len(contents), models.MaxAnswerSources)]
	return answer
}

func (r *RAG) generate(ctx context.Context, question, docContext string, history []Turn) string {
	if r.llm != nil {
		prompt := fmt.Sprintf(models.QAPromptTemplate, docContext, FormatHistory(history), question)
		text, err := llmservice.Complete(ctx, r.llm, prompt)
		if err == nil {
			return text
		}
		log.Error().Err(err).Msg("LLM generation failed")
	}
	return Excerpt(docContext)
}

// Excerpt is the answer used when the LLM is unavailable.
// The limit counts UTF-16 code units.
func Excerpt(docContext string) string {
	text, cut := helper.TruncateUTF16(docContext, models.ContextExcerptChars)
	if cut {
		text += "..."
	}
	return models.ExcerptPrefix + text
}

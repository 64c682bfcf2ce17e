package app

import (
	"context"
	"fmt"
	"strings"

	"ocrqa/internal/ai"
	"ocrqa/internal/embedstore"
	"ocrqa/internal/vectorstore"
)

const qaInstruction = "You are a helpful assistant. Answer the user's question based only on the " +
	"provided context. If the context does not contain enough information, say so. Do not make up facts."

type splitter interface {
	Split(text string) []string
}

type translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

type completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

// Answer is the result of one question: the synthesized text plus the
// passages it was grounded on, for traceability. Never persisted here.
type Answer struct {
	Question string                `json:"question"`
	Answer   string                `json:"answer"`
	Passages []vectorstore.Passage `json:"passages"`
}

// RAGService drives ingestion and retrieval over the embedding store.
//
// Ingestion is additive: re-ingesting a document id appends duplicate
// records instead of replacing the old ones, and replacement requires an
// explicit DeleteEmbeddings first. That is a deliberate simplicity
// trade-off carried over from the upstream design, flagged for a product
// decision rather than silently changed.
type RAGService struct {
	store      *embedstore.Store
	splitter   splitter
	translator translator
	llm        completer
	topK       int
}

func NewRAGService(store *embedstore.Store, splitter splitter, translator translator, llm completer, topK int) *RAGService {
	if topK <= 0 {
		topK = 5
	}
	return &RAGService{
		store:      store,
		splitter:   splitter,
		translator: translator,
		llm:        llm,
		topK:       topK,
	}
}

// Ingest chunks the transcript and stores it under the original-language
// tag; with doTranslate it then translates the transcript and stores the
// translated chunks under the pivot tag. The two stages run strictly in
// that order, and a failure in the translated stage does not roll back the
// original one — the caller gets the error and an original-only document.
func (s *RAGService) Ingest(ctx context.Context, documentID, transcript string, doTranslate bool) error {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" || strings.TrimSpace(transcript) == "" {
		return ErrInvalidInput
	}

	chunks := s.splitter.Split(transcript)
	if len(chunks) == 0 {
		return ErrInvalidInput
	}
	if err := s.store.Upsert(ctx, documentID, vectorstore.TagOriginal, chunks); err != nil {
		return err
	}

	if !doTranslate {
		return nil
	}
	translated, err := s.translator.Translate(ctx, transcript)
	if err != nil {
		return err
	}
	return s.store.Upsert(ctx, documentID, vectorstore.TagTranslated, s.splitter.Split(translated))
}

// Retrieve returns the most relevant passages for the query across the
// given documents. With doTranslate it also searches the translated-pivot
// namespace using a translated query and appends those hits after the
// original-language ones; the two sub-results are not deduplicated or
// interleaved.
func (s *RAGService) Retrieve(ctx context.Context, documentIDs []string, query string, doTranslate bool) ([]vectorstore.Passage, error) {
	ids := normalizeIDs(documentIDs)
	if len(ids) == 0 {
		// An empty filter against the shared index would search every
		// document, so the ambiguity is rejected instead of inherited.
		return nil, fmt.Errorf("%w: at least one document id is required", ErrInvalidInput)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}

	passages, err := s.store.Search(ctx, ids, vectorstore.TagOriginal, query, s.topK)
	if err != nil {
		return nil, err
	}

	if doTranslate {
		translatedQuery, err := s.translator.Translate(ctx, query)
		if err != nil {
			return nil, err
		}
		translatedHits, err := s.store.Search(ctx, ids, vectorstore.TagTranslated, translatedQuery, s.topK)
		if err != nil {
			return nil, err
		}
		passages = append(passages, translatedHits...)
	}
	return passages, nil
}

// Ask retrieves passages and synthesizes an answer from them. An empty
// retrieval result still goes to the model with an empty context, which
// yields a model-worded "I don't know" rather than a short-circuit.
func (s *RAGService) Ask(ctx context.Context, documentIDs []string, question string, doTranslate bool) (*Answer, error) {
	passages, err := s.Retrieve(ctx, documentIDs, question, doTranslate)
	if err != nil {
		return nil, err
	}

	var contextBlock strings.Builder
	for _, p := range passages {
		contextBlock.WriteString("\n---\n")
		contextBlock.WriteString(p.Text)
	}
	if len(passages) > 0 {
		contextBlock.WriteString("\n---")
	}

	messages := []ai.ChatMessage{
		{Role: "system", Content: qaInstruction},
		{Role: "user", Content: "Context:" + contextBlock.String() + "\n\nQuestion: " + question + "\n\nAnswer:"},
	}
	text, err := s.llm.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAnswerGenerationFailed, err)
	}

	return &Answer{
		Question: question,
		Answer:   strings.TrimSpace(text),
		Passages: passages,
	}, nil
}

// DeleteEmbeddings removes every stored chunk for the document under both
// language tags. Deleting a document that was never ingested is a no-op.
func (s *RAGService) DeleteEmbeddings(ctx context.Context, documentID string) error {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return ErrInvalidInput
	}
	return s.store.Delete(ctx, documentID)
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if trimmed := strings.TrimSpace(id); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ocrqa/internal/ai"
	"ocrqa/internal/chunker"
	"ocrqa/internal/embedstore"
	"ocrqa/internal/translate"
	"ocrqa/internal/vectorstore/memory"
)

const testDimension = 4

type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, testDimension)
	for i, r := range strings.ToLower(text) {
		vec[i%testDimension] += float32(r % 13)
	}
	return vec, nil
}

func (f fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, _ := f.Embed(ctx, t)
		out[i] = v
	}
	return out, nil
}

// fakeTranslator prefixes instead of translating so tests can tell the two
// language namespaces apart.
type fakeTranslator struct {
	err   error
	calls int
}

func (f *fakeTranslator) Translate(_ context.Context, text string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "EN: " + text, nil
}

type fakeLLM struct {
	gotUserContent string
	reply          string
	err            error
}

func (f *fakeLLM) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	for _, m := range messages {
		if m.Role == "user" {
			f.gotUserContent = m.Content
		}
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestRAG(t *testing.T, tr *fakeTranslator, llm *fakeLLM, topK int) *RAGService {
	t.Helper()
	store, err := embedstore.New(fakeEmbedder{}, memory.New(testDimension), embedstore.Config{Dimension: testDimension})
	require.NoError(t, err)
	split, err := chunker.NewSplitter(chunker.Config{ChunkSize: 200, ChunkOverlap: 20})
	require.NoError(t, err)
	return NewRAGService(store, split, tr, llm, topK)
}

func TestIngestRetrieveRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newTestRAG(t, &fakeTranslator{}, &fakeLLM{reply: "blue"}, 5)

	require.NoError(t, svc.Ingest(ctx, "doc-1", "The sky is blue.", false))

	passages, err := svc.Retrieve(ctx, []string{"doc-1"}, "What color is the sky?", false)
	require.NoError(t, err)
	require.NotEmpty(t, passages)
	require.Contains(t, passages[0].Text, "The sky is blue.")

	passages, err = svc.Retrieve(ctx, []string{"doc-2"}, "What color is the sky?", false)
	require.NoError(t, err)
	require.Empty(t, passages)
}

func TestIngestTranslateStoresBothTags(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTranslator{}
	svc := newTestRAG(t, tr, &fakeLLM{}, 5)

	require.NoError(t, svc.Ingest(ctx, "doc-1", "The sky is blue.", true))
	require.Equal(t, 1, tr.calls)

	// Both namespaces answer for doc-1, and each stays tag-pure.
	orig, err := svc.Retrieve(ctx, []string{"doc-1"}, "sky", false)
	require.NoError(t, err)
	require.NotEmpty(t, orig)
	for _, p := range orig {
		require.False(t, strings.HasPrefix(p.Text, "EN: "))
	}

	both, err := svc.Retrieve(ctx, []string{"doc-1"}, "sky", true)
	require.NoError(t, err)
	require.Len(t, both, 2)
	require.False(t, strings.HasPrefix(both[0].Text, "EN: "))
	require.True(t, strings.HasPrefix(both[1].Text, "EN: "))
}

func TestRetrieveTranslatedTagEmptyForUntranslatedDocument(t *testing.T) {
	ctx := context.Background()
	svc := newTestRAG(t, &fakeTranslator{}, &fakeLLM{}, 5)

	require.NoError(t, svc.Ingest(ctx, "doc-1", "Only original language here.", false))

	passages, err := svc.Retrieve(ctx, []string{"doc-1"}, "language", true)
	require.NoError(t, err)
	require.Len(t, passages, 1, "translated namespace was never populated")
	require.False(t, strings.HasPrefix(passages[0].Text, "EN: "))
}

func TestRetrieveOrderingOriginalBeforeTranslated(t *testing.T) {
	ctx := context.Background()
	svc := newTestRAG(t, &fakeTranslator{}, &fakeLLM{}, 3)

	transcript := "alpha beta gamma.\n\ndelta epsilon zeta.\n\neta theta iota."
	require.NoError(t, svc.Ingest(ctx, "doc-1", transcript, true))

	passages, err := svc.Retrieve(ctx, []string{"doc-1"}, "alpha beta", true)
	require.NoError(t, err)
	require.LessOrEqual(t, len(passages), 6)

	// All original-tag hits precede all translated-tag hits.
	sawTranslated := false
	for _, p := range passages {
		if strings.HasPrefix(p.Text, "EN: ") {
			sawTranslated = true
		} else {
			require.False(t, sawTranslated, "original-tag passage after a translated one")
		}
	}
	require.True(t, sawTranslated)
}

func TestIngestTranslationFailureKeepsOriginal(t *testing.T) {
	ctx := context.Background()
	tr := &fakeTranslator{err: translate.ErrTranslationFailed}
	svc := newTestRAG(t, tr, &fakeLLM{}, 5)

	err := svc.Ingest(ctx, "doc-1", "Some transcript text.", true)
	require.ErrorIs(t, err, translate.ErrTranslationFailed)

	// Partial ingestion is a valid terminal state: the original namespace
	// must have been written before the translation stage failed.
	passages, err := svc.Retrieve(ctx, []string{"doc-1"}, "transcript", false)
	require.NoError(t, err)
	require.NotEmpty(t, passages)
}

func TestDuplicateIngestYieldsDuplicatePassages(t *testing.T) {
	ctx := context.Background()
	svc := newTestRAG(t, &fakeTranslator{}, &fakeLLM{}, 10)

	require.NoError(t, svc.Ingest(ctx, "doc-1", "Repeated content.", false))
	require.NoError(t, svc.Ingest(ctx, "doc-1", "Repeated content.", false))

	passages, err := svc.Retrieve(ctx, []string{"doc-1"}, "Repeated content.", false)
	require.NoError(t, err)
	require.Len(t, passages, 2, "duplicate ingestion is additive, not deduplicated")
}

func TestDeleteEmbeddingsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestRAG(t, &fakeTranslator{}, &fakeLLM{}, 5)

	require.NoError(t, svc.Ingest(ctx, "doc-1", "Content to remove.", true))
	require.NoError(t, svc.DeleteEmbeddings(ctx, "doc-1"))
	require.NoError(t, svc.DeleteEmbeddings(ctx, "doc-1"))

	passages, err := svc.Retrieve(ctx, []string{"doc-1"}, "content", true)
	require.NoError(t, err)
	require.Empty(t, passages)
}

func TestRetrieveRejectsEmptyDocumentIDs(t *testing.T) {
	svc := newTestRAG(t, &fakeTranslator{}, &fakeLLM{}, 5)

	_, err := svc.Retrieve(context.Background(), nil, "anything", false)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Retrieve(context.Background(), []string{"  ", ""}, "anything", false)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestAskBuildsContextAndReturnsPassages(t *testing.T) {
	ctx := context.Background()
	llm := &fakeLLM{reply: "  The sky is blue.  "}
	svc := newTestRAG(t, &fakeTranslator{}, llm, 5)

	require.NoError(t, svc.Ingest(ctx, "doc-1", "The sky is blue.", false))

	answer, err := svc.Ask(ctx, []string{"doc-1"}, "What color is the sky?", false)
	require.NoError(t, err)
	require.Equal(t, "What color is the sky?", answer.Question)
	require.Equal(t, "The sky is blue.", answer.Answer)
	require.NotEmpty(t, answer.Passages)
	require.Contains(t, llm.gotUserContent, "The sky is blue.")
	require.Contains(t, llm.gotUserContent, "What color is the sky?")
}

func TestAskWithNoPassagesStillCallsModel(t *testing.T) {
	llm := &fakeLLM{reply: "I don't know."}
	svc := newTestRAG(t, &fakeTranslator{}, llm, 5)

	answer, err := svc.Ask(context.Background(), []string{"doc-never-ingested"}, "Anything?", false)
	require.NoError(t, err)
	require.Equal(t, "I don't know.", answer.Answer)
	require.Empty(t, answer.Passages)
	require.Contains(t, llm.gotUserContent, "Context:")
}

func TestAskWrapsModelFailure(t *testing.T) {
	llm := &fakeLLM{err: errors.New("upstream 500")}
	svc := newTestRAG(t, &fakeTranslator{}, llm, 5)

	_, err := svc.Ask(context.Background(), []string{"doc-1"}, "Anything?", false)
	require.ErrorIs(t, err, ErrAnswerGenerationFailed)
}

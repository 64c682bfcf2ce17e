package translate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"ocrqa/internal/ai"
)

type fakeCompleter struct {
	gotMessages []ai.ChatMessage
	reply       string
	err         error
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.gotMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestTranslateTruncatesInput(t *testing.T) {
	fake := &fakeCompleter{reply: "ok"}
	tr, err := NewTranslator(fake, Config{TargetLanguage: "English", MaxInputChars: 10})
	require.NoError(t, err)

	_, err = tr.Translate(context.Background(), strings.Repeat("x", 100))
	require.NoError(t, err)
	require.Len(t, fake.gotMessages, 2)
	require.Equal(t, strings.Repeat("x", 10), fake.gotMessages[1].Content)
}

func TestTranslateWrapsFailure(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("upstream 503")}
	tr, err := NewTranslator(fake, Config{TargetLanguage: "English", MaxInputChars: 100})
	require.NoError(t, err)

	_, err = tr.Translate(context.Background(), "bonjour")
	require.ErrorIs(t, err, ErrTranslationFailed)
}

func TestTranslateTrimsReply(t *testing.T) {
	fake := &fakeCompleter{reply: "  hello world \n"}
	tr, err := NewTranslator(fake, Config{TargetLanguage: "English", MaxInputChars: 100})
	require.NoError(t, err)

	got, err := tr.Translate(context.Background(), "bonjour le monde")
	require.NoError(t, err)
	require.Equal(t, "hello world", got)
}

func TestNewTranslatorValidation(t *testing.T) {
	_, err := NewTranslator(&fakeCompleter{}, Config{TargetLanguage: "English", MaxInputChars: 0})
	require.Error(t, err)
	_, err = NewTranslator(&fakeCompleter{}, Config{TargetLanguage: " ", MaxInputChars: 10})
	require.Error(t, err)
}

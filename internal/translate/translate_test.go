package translate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name   string
	out    string
	err    error
	called int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Translate(ctx context.Context, text, targetLang, sourceLang string) (string, error) {
	s.called++
	return s.out, s.err
}

func TestTranslate_EmptyTextSkipsProviders(t *testing.T) {
	stub := &stubProvider{name: "stub", out: "hola"}
	tr := NewTranslator(stub)

	assert.Equal(t, "", tr.Translate(context.Background(), "   \t\n", "es", "en"))
	assert.Equal(t, 0, stub.called, "whitespace-only input must not reach a provider")
}

func TestTranslate_SameLanguageShortCircuits(t *testing.T) {
	stub := &stubProvider{name: "stub", out: "should not be used"}
	tr := NewTranslator(stub)

	got := tr.Translate(context.Background(), "Hello there", "en", "en")
	assert.Equal(t, "Hello there", got, "same-language text must come back unchanged and unmarked")
	assert.Equal(t, 0, stub.called)
}

func TestTranslate_UsesFirstWorkingProvider(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("rate limited")}
	fallback := &stubProvider{name: "fallback", out: "Tengo fiebre"}
	tr := NewTranslator(primary, fallback)

	got := tr.Translate(context.Background(), "I have a fever", "es", "en")
	assert.Equal(t, "Tengo fiebre", got)
	assert.Equal(t, 1, primary.called)
	assert.Equal(t, 1, fallback.called)
}

func TestTranslate_AllProvidersFailFallsBackToPlaceholder(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("down")}
	fallback := &stubProvider{name: "fallback", err: errors.New("also down")}
	tr := NewTranslator(primary, fallback)

	got := tr.Translate(context.Background(), "I have a fever", "es", "en")
	assert.Equal(t, "[Spanish] I have a fever", got)
}

func TestTranslate_EmptyProviderOutputTriggersFallback(t *testing.T) {
	primary := &stubProvider{name: "primary", out: "   "}
	tr := NewTranslator(primary)

	got := tr.Translate(context.Background(), "hello", "fr", "en")
	assert.Equal(t, "[French] hello", got)
}

func TestPlaceholder_UnknownLanguageCode(t *testing.T) {
	assert.Equal(t, "[Xx] hello", Placeholder("hello", "xx"))
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Spanish", LanguageName("es"))
	assert.Equal(t, "English", LanguageName("en"))
	assert.Equal(t, "Zz", LanguageName("zz"))
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("es"))
	assert.False(t, IsSupported("xx"))
}

func TestMyMemory_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "I have a fever", r.URL.Query().Get("q"))
		assert.Equal(t, "en|es", r.URL.Query().Get("langpair"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseData":{"translatedText":"Tengo fiebre"},"responseStatus":200}`))
	}))
	defer srv.Close()

	provider := NewMyMemory("")
	provider.APIURL = srv.URL

	got, err := provider.Translate(context.Background(), "I have a fever", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, "Tengo fiebre", got)
}

func TestMyMemory_InBandErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"responseData":{"translatedText":""},"responseStatus":"403","responseDetails":"quota exceeded"}`))
	}))
	defer srv.Close()

	provider := NewMyMemory("")
	provider.APIURL = srv.URL

	_, err := provider.Translate(context.Background(), "hello", "es", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestLibreTranslate_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/translate", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"translatedText":"Bonjour"}`))
	}))
	defer srv.Close()

	provider := NewLibreTranslate(srv.URL, "")

	got, err := provider.Translate(context.Background(), "Hello", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", got)
}

func TestLibreTranslate_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"unsupported language"}`))
	}))
	defer srv.Close()

	provider := NewLibreTranslate(srv.URL, "")

	_, err := provider.Translate(context.Background(), "Hello", "xx", "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}

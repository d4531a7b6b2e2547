package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/internal/repository"
	"guideline-tutor-go/pkg/extract"
	"guideline-tutor-go/pkg/tika"
)

// fakeEmbedder can succeed with deterministic vectors, fail, or report unconfigured.
type fakeEmbedder struct {
	configured bool
	err        error
}

func (f *fakeEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(len(texts[i])), 1}
	}
	return out, nil
}

func (f *fakeEmbedder) Configured() bool { return f.configured }

func newTestProcessor(emb *fakeEmbedder, repo repository.KnowledgeRepository) *Processor {
	extractor := extract.NewExtractor(tika.NewClient(config.TikaConfig{}))
	return NewProcessor(extractor, emb, repo, config.RAGConfig{ChunkSize: 100, ChunkOverlap: 20})
}

func TestProcess_ChunksAndEmbeds(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	p := newTestProcessor(&fakeEmbedder{configured: true}, repo)

	files := []UploadedFile{{Name: "a.txt", Data: []byte(strings.Repeat("guideline text. ", 30))}}
	result, err := p.Process(context.Background(), "u1", files)
	require.NoError(t, err)

	assert.Greater(t, result.ChunkCount, 1)
	assert.True(t, result.Embedded)

	entry, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, entry.Chunks, result.ChunkCount)
	assert.Len(t, entry.Vectors, result.ChunkCount)
}

func TestProcess_EmbeddingFailureDegradesNotAborts(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	p := newTestProcessor(&fakeEmbedder{configured: true, err: errors.New("quota exceeded")}, repo)

	files := []UploadedFile{{Name: "a.txt", Data: []byte(strings.Repeat("text. ", 50))}}
	result, err := p.Process(context.Background(), "u1", files)
	require.NoError(t, err)

	assert.False(t, result.Embedded)
	entry, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.False(t, entry.HasVectors())
	assert.False(t, entry.Empty())
}

func TestProcess_UnconfiguredEmbedderSkipsVectors(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	p := newTestProcessor(&fakeEmbedder{configured: false}, repo)

	result, err := p.Process(context.Background(), "u1", []UploadedFile{{Name: "a.txt", Data: []byte("short guideline")}})
	require.NoError(t, err)
	assert.False(t, result.Embedded)
}

func TestProcess_MultipleFilesTaggedWithFileMarkers(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	p := newTestProcessor(&fakeEmbedder{configured: false}, repo)

	files := []UploadedFile{
		{Name: "one.txt", Data: []byte("alpha")},
		{Name: "two.txt", Data: []byte("bravo")},
	}
	_, err := p.Process(context.Background(), "u1", files)
	require.NoError(t, err)

	entry, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	joined := strings.Join(entry.Chunks, "")
	assert.Contains(t, joined, "[FILE: one.txt]")
	assert.Contains(t, joined, "[FILE: two.txt]")
}

func TestProcess_ExtractionFailureAborts(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	p := newTestProcessor(&fakeEmbedder{configured: false}, repo)

	files := []UploadedFile{
		{Name: "good.txt", Data: []byte("fine")},
		{Name: "bad.bin", Data: append([]byte{0x00, 0x01}, make([]byte, 32)...)},
	}
	_, err := p.Process(context.Background(), "u1", files)
	require.Error(t, err)

	// Nothing is stored for the user when any file fails.
	entry, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, entry.Empty())
}

func TestProcess_NoFiles(t *testing.T) {
	p := newTestProcessor(&fakeEmbedder{configured: false}, repository.NewMemoryKnowledgeRepository())
	_, err := p.Process(context.Background(), "u1", nil)
	assert.Error(t, err)
}

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guideline-tutor-go/internal/config"
	"guideline-tutor-go/internal/model"
	"guideline-tutor-go/internal/repository"
	"guideline-tutor-go/pkg/llm"
)

// stubLLM records the prompt it was called with and returns a canned reply.
type stubLLM struct {
	configured bool
	reply      string
	jsonReply  func(out interface{}) error
	gotPrompt  []llm.Message
	gotGen     *llm.GenerationParams
}

func (s *stubLLM) Chat(_ context.Context, messages []llm.Message, gen *llm.GenerationParams) (string, error) {
	s.gotPrompt = messages
	s.gotGen = gen
	return s.reply, nil
}

func (s *stubLLM) ChatJSON(_ context.Context, messages []llm.Message, gen *llm.GenerationParams, out interface{}) error {
	s.gotPrompt = messages
	s.gotGen = gen
	if s.jsonReply != nil {
		return s.jsonReply(out)
	}
	return nil
}

func (s *stubLLM) Configured() bool { return s.configured }

// unconfiguredEmbedder forces the keyword fallback path.
type unconfiguredEmbedder struct{}

func (unconfiguredEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), nil
}

func (unconfiguredEmbedder) Configured() bool { return false }

func seedKnowledge(t *testing.T, repo repository.KnowledgeRepository, userID string, chunks ...string) {
	t.Helper()
	err := repo.Put(context.Background(), userID, &model.KnowledgeEntry{Chunks: chunks})
	require.NoError(t, err)
}

func newTestTutor(llmClient llm.Client, repo repository.KnowledgeRepository) TutorService {
	retrievalSvc := NewRetrievalService(repo, unconfiguredEmbedder{})
	return NewTutorService(retrievalSvc, llmClient, nil, config.RAGConfig{})
}

func TestTutorChat_AssemblesGroundedPrompt(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	seedKnowledge(t, repo, "u1",
		"Beta blockers are titrated every two weeks.",
		"Loop diuretics relieve congestion.",
	)
	stub := &stubLLM{configured: true, reply: "What dose would you start at?"}
	tutor := newTestTutor(stub, repo)

	reply, err := tutor.Chat(context.Background(), "u1", []model.ChatMessage{
		{Role: "user", Content: "How do I titrate beta blockers?"},
	}, model.ChatModeQuestions)
	require.NoError(t, err)
	assert.Equal(t, "assistant", reply.Role)
	assert.Equal(t, "What dose would you start at?", reply.Content)

	// Prompt layout: persona, context, mode instruction, then the transcript verbatim.
	require.GreaterOrEqual(t, len(stub.gotPrompt), 4)
	assert.Equal(t, "system", stub.gotPrompt[0].Role)
	assert.Contains(t, stub.gotPrompt[1].Content, "Beta blockers are titrated")
	assert.Contains(t, stub.gotPrompt[2].Content, "Socratic questioning")
	assert.Equal(t, "How do I titrate beta blockers?", stub.gotPrompt[len(stub.gotPrompt)-1].Content)

	// Chat runs at a fixed low temperature.
	require.NotNil(t, stub.gotGen)
	require.NotNil(t, stub.gotGen.Temperature)
	assert.InDelta(t, 0.3, *stub.gotGen.Temperature, 1e-9)
}

func TestTutorChat_FeedbackModeSwitchesInstruction(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	seedKnowledge(t, repo, "u1", "ACE inhibitors are first line.")
	stub := &stubLLM{configured: true, reply: "ok"}
	tutor := newTestTutor(stub, repo)

	_, err := tutor.Chat(context.Background(), "u1", []model.ChatMessage{
		{Role: "user", Content: "I would start an ACE inhibitor."},
	}, model.ChatModeFeedback)
	require.NoError(t, err)
	assert.Contains(t, stub.gotPrompt[2].Content, "structured feedback")
}

func TestTutorChat_NoKnowledgeReturnsTypedError(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	tutor := newTestTutor(&stubLLM{configured: true}, repo)

	_, err := tutor.Chat(context.Background(), "nobody", []model.ChatMessage{
		{Role: "user", Content: "anything"},
	}, model.ChatModeQuestions)
	assert.ErrorIs(t, err, ErrNoKnowledge)
}

func TestTutorChat_UnconfiguredLLM(t *testing.T) {
	repo := repository.NewMemoryKnowledgeRepository()
	seedKnowledge(t, repo, "u1", "some content")
	tutor := newTestTutor(&stubLLM{configured: false}, repo)

	_, err := tutor.Chat(context.Background(), "u1", []model.ChatMessage{
		{Role: "user", Content: "anything"},
	}, model.ChatModeQuestions)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestBuildContextMessage_NumbersChunks(t *testing.T) {
	msg := buildContextMessage([]string{"first chunk", "second chunk"})
	assert.Contains(t, msg, "[1] first chunk")
	assert.Contains(t, msg, "[2] second chunk")
}

func TestBuildContextMessage_EmptyUsesFixedNoContextText(t *testing.T) {
	msg := buildContextMessage(nil)
	assert.Contains(t, msg, noContextText)
	assert.Contains(t, msg, "No relevant context found in the uploaded documents for this question.")
}

func TestLatestUserQuery_PicksLastUserMessage(t *testing.T) {
	messages := []model.ChatMessage{
		{Role: "user", Content: "first question"},
		{Role: "assistant", Content: "a counter-question"},
		{Role: "user", Content: "second question"},
		{Role: "assistant", Content: "another counter-question"},
	}
	assert.Equal(t, "second question", latestUserQuery(messages))
	assert.Equal(t, "", latestUserQuery(nil))
	assert.Equal(t, "", latestUserQuery([]model.ChatMessage{{Role: "assistant", Content: "x"}}))
}

func TestAssemblePrompt_KeepsTranscriptOrder(t *testing.T) {
	transcript := []model.ChatMessage{
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "q2"},
	}
	prompt := assemblePrompt([]string{"ctx"}, transcript, model.ChatModeQuestions)

	require.Len(t, prompt, 6)
	var tail []string
	for _, m := range prompt[3:] {
		tail = append(tail, m.Role+":"+m.Content)
	}
	assert.Equal(t, "user:q1,assistant:a1,user:q2", strings.Join(tail, ","))
}

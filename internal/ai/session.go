package ai

import (
	"context"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/biomente/biomente/internal/domain"
)

// CiteCommand short-circuits free-form chat and returns a formatted citation instead.
const CiteCommand = "/cite"

// session is one live conversation bound to an article. The model-side history includes
// the system directive and every exchanged turn.
type session struct {
	doi      string
	messages []openai.ChatCompletionMessage
}

// SessionManager owns the per-article chat conversations, keyed by DOI. Sessions are
// created lazily, seeded with a system directive constraining answers to the article's
// content plus the replayed prior transcript.
type SessionManager struct {
	mu       sync.Mutex
	client   *Client
	sessions map[string]*session
}

// NewSessionManager creates a SessionManager over the given gateway client
func NewSessionManager(client *Client) *SessionManager {
	return &SessionManager{
		client:   client,
		sessions: make(map[string]*session),
	}
}

// Chat sends one user message in the conversation about the article and returns the
// assistant's reply. A "/cite" message bypasses the chat model: it returns a formatted
// citation and leaves the model-side conversation untouched.
func (m *SessionManager) Chat(ctx context.Context, article domain.Article, history []domain.ChatMessage, message string) (string, error) {
	if strings.TrimSpace(message) == CiteCommand {
		return m.client.GenerateCitation(ctx, article)
	}

	m.mu.Lock()
	sess, ok := m.sessions[article.DOI]
	if !ok {
		sess = newSession(article, history)
		m.sessions[article.DOI] = sess
	}
	userTurn := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message}
	messages := append(append([]openai.ChatCompletionMessage{}, sess.messages...), userTurn)
	m.mu.Unlock()

	reply, err := m.client.complete(ctx, openai.ChatCompletionRequest{Messages: messages})
	if err != nil {
		return "", domain.NewDomainErrorWithCause(domain.ErrCodeBackend, "the assistant could not reply", err)
	}

	m.mu.Lock()
	// The session may have been invalidated while the request was in flight; only a
	// still-live session records the exchange.
	if live, ok := m.sessions[article.DOI]; ok && live == sess {
		sess.messages = append(sess.messages, userTurn,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply})
	}
	m.mu.Unlock()

	return reply, nil
}

// Invalidate evicts the conversation bound to the given DOI, if any.
func (m *SessionManager) Invalidate(doi string) {
	m.mu.Lock()
	delete(m.sessions, doi)
	m.mu.Unlock()
}

// Reset evicts every live conversation.
func (m *SessionManager) Reset() {
	m.mu.Lock()
	m.sessions = make(map[string]*session)
	m.mu.Unlock()
}

func newSession(article domain.Article, history []domain.ChatMessage) *session {
	directive := fmt.Sprintf(`You are an expert on the provided scientific article. Base ALL your answers strictly on its content. If you cannot answer with the given information, say so clearly.
**Article context:**
- Title: %s
- Summary: %s`, article.Title, article.Summary)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: directive,
	})
	for _, msg := range history {
		role := openai.ChatMessageRoleUser
		if msg.Role == domain.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Content})
	}

	return &session{doi: article.DOI, messages: messages}
}

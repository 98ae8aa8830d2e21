package services

import (
	"context"
	"strings"
	"time"

	"carmarket-backend/internal/metrics"
	"carmarket-backend/internal/models"
	"carmarket-backend/internal/nlu"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	// HistoryWindow is how many earlier messages the extractor sees.
	HistoryWindow = 10

	FallbackReply = "I'm having trouble understanding. Could you tell me more about what kind of car you're looking for?"
)

// FilterExtractor is satisfied by *nlu.Extractor.
type FilterExtractor interface {
	Extract(ctx context.Context, req nlu.ExtractRequest) (*nlu.Extraction, error)
}

type ChatService struct {
	chats      ChatStore
	listings   ListingSearcher
	extractor  FilterExtractor
	nluTimeout time.Duration
	log        zerolog.Logger
}

func NewChatService(chats ChatStore, listings ListingSearcher, extractor FilterExtractor, nluTimeout time.Duration, log zerolog.Logger) *ChatService {
	if nluTimeout <= 0 {
		nluTimeout = 8 * time.Second
	}
	return &ChatService{
		chats:      chats,
		listings:   listings,
		extractor:  extractor,
		nluTimeout: nluTimeout,
		log:        log.With().Str("component", "chat_service").Logger(),
	}
}

// TurnInput is one buyer message. Voice input carries the transcript, which
// then replaces the typed content.
type TurnInput struct {
	Content        string  `json:"content" validate:"max=4000"`
	TranscriptText *string `json:"transcriptText" validate:"omitempty,max=4000"`
}

func (in TurnInput) body() string {
	if in.TranscriptText != nil && strings.TrimSpace(*in.TranscriptText) != "" {
		return *in.TranscriptText
	}
	return in.Content
}

type TurnResult struct {
	Message      models.ChatMessageView  `json:"message"`
	Filters      models.SearchFilters    `json:"filters"`
	ShouldSearch bool                    `json:"shouldSearch"`
	Listings     []models.ListingSummary `json:"listings"`
}

type SessionView struct {
	ID            string                   `json:"id"`
	Status        string                   `json:"status"`
	ActiveFilters models.SearchFilters     `json:"activeFilters"`
	Messages      []models.ChatMessageView `json:"messages"`
}

// CreateSession opens a session with no filters. userID is nil for
// anonymous buyers.
func (s *ChatService) CreateSession(ctx context.Context, userID *string) (*SessionView, error) {
	now := time.Now()
	session := &models.ChatSession{
		ID:        primitive.NewObjectID(),
		Status:    models.SessionStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if userID != nil {
		owner, err := primitive.ObjectIDFromHex(*userID)
		if err != nil {
			return nil, ErrForbidden
		}
		session.UserID = &owner
	}

	created, err := s.chats.CreateSession(ctx, session)
	if err != nil {
		return nil, err
	}

	return &SessionView{
		ID:            created.ID.Hex(),
		Status:        created.Status,
		ActiveFilters: created.ActiveFilters,
		Messages:      []models.ChatMessageView{},
	}, nil
}

func (s *ChatService) GetSession(ctx context.Context, id string) (*SessionView, error) {
	session, err := s.chats.FindSession(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}

	messages, err := s.chats.FindMessages(ctx, id)
	if err != nil {
		return nil, err
	}

	views := make([]models.ChatMessageView, len(messages))
	for i, m := range messages {
		views[i] = m.View()
	}

	return &SessionView{
		ID:            session.ID.Hex(),
		Status:        session.Status,
		ActiveFilters: session.ActiveFilters,
		Messages:      views,
	}, nil
}

// ProcessTurn runs one conversational turn: persist the buyer's message, ask
// the extractor for a reply and filter delta, merge it into the session and
// search when asked to. Extraction failures degrade to a fixed reply with the
// filters unchanged; storage and search failures are returned.
func (s *ChatService) ProcessTurn(ctx context.Context, sessionID string, in TurnInput) (*TurnResult, error) {
	session, err := s.chats.FindSession(ctx, sessionID)
	if err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	if session.Status != models.SessionStatusActive {
		return nil, ErrSessionClosed
	}

	log := s.log.With().Str("session_id", sessionID).Logger()

	utterance := in.body()
	userMsg := &models.ChatMessage{
		SessionID: session.ID,
		Role:      models.RoleUser,
		Content:   utterance,
		CreatedAt: time.Now(),
	}
	if in.TranscriptText != nil && strings.TrimSpace(*in.TranscriptText) != "" {
		transcript := *in.TranscriptText
		userMsg.TranscriptText = &transcript
	}
	userMsg, err = s.chats.AddMessage(ctx, userMsg)
	if err != nil {
		return nil, err
	}

	all, err := s.chats.FindMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	history := historyWindow(all, userMsg.ID, HistoryWindow)

	current := session.ActiveFilters
	reply := FallbackReply
	merged := current
	shouldSearch := false

	nluCtx, cancel := context.WithTimeout(ctx, s.nluTimeout)
	extraction, err := s.extractor.Extract(nluCtx, nlu.ExtractRequest{
		CurrentFilters: current,
		History:        history,
		Utterance:      utterance,
	})
	cancel()

	if err != nil {
		log.Warn().Err(err).Msg("filter extraction failed, using fallback reply")
		metrics.ChatTurnsTotal.WithLabelValues("fallback").Inc()
	} else {
		metrics.ChatTurnsTotal.WithLabelValues("ok").Inc()
		reply = extraction.Message
		merged = current.Merge(extraction.Filters)
		shouldSearch = extraction.ShouldSearch

		if err := s.chats.UpdateFilters(ctx, sessionID, merged); err != nil {
			return nil, notFound(err, ErrSessionNotFound)
		}
	}

	assistantMsg, err := s.chats.AddMessage(ctx, &models.ChatMessage{
		SessionID: session.ID,
		Role:      models.RoleAssistant,
		Content:   reply,
		CreatedAt: time.Now(),
	})
	if err != nil {
		return nil, err
	}

	summaries := []models.ListingSummary{}
	if shouldSearch {
		found, err := s.listings.Search(ctx, merged)
		if err != nil {
			return nil, err
		}
		for _, l := range found {
			summaries = append(summaries, l.Summary())
		}
		log.Debug().Int("results", len(summaries)).Msg("chat search ran")
	}

	return &TurnResult{
		Message:      assistantMsg.View(),
		Filters:      merged,
		ShouldSearch: shouldSearch,
		Listings:     summaries,
	}, nil
}

// historyWindow returns up to n messages preceding the current one, oldest
// first, excluding the current message itself.
func historyWindow(messages []*models.ChatMessage, current primitive.ObjectID, n int) []nlu.Turn {
	prior := make([]*models.ChatMessage, 0, len(messages))
	for _, m := range messages {
		if m.ID != current {
			prior = append(prior, m)
		}
	}
	if len(prior) > n {
		prior = prior[len(prior)-n:]
	}

	turns := make([]nlu.Turn, len(prior))
	for i, m := range prior {
		turns[i] = nlu.Turn{Role: m.Role, Content: m.Content}
	}
	return turns
}

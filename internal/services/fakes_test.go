package services

import (
	"context"
	"sync"
	"time"

	"carmarket-backend/internal/models"
	"carmarket-backend/internal/nlu"
	"carmarket-backend/internal/repository"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockNotifier records every message sent.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Send(ctx context.Context, to, body string) error {
	args := m.Called(ctx, to, body)
	return args.Error(0)
}

// MockExtractor stands in for the language model.
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, req nlu.ExtractRequest) (*nlu.Extraction, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*nlu.Extraction), args.Error(1)
}

type memAlerts struct {
	mu     sync.Mutex
	alerts map[string]*models.Alert
	err    error
}

func newMemAlerts(alerts ...*models.Alert) *memAlerts {
	m := &memAlerts{alerts: map[string]*models.Alert{}}
	for _, a := range alerts {
		m.alerts[a.ID.Hex()] = a
	}
	return m
}

func (m *memAlerts) Create(_ context.Context, a *models.Alert) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	m.alerts[a.ID.Hex()] = a
	return a, nil
}

func (m *memAlerts) FindByUser(_ context.Context, userID string) ([]*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Alert{}
	for _, a := range m.alerts {
		if a.UserID.Hex() == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAlerts) FindActive(context.Context) ([]*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []*models.Alert{}
	for _, a := range m.alerts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memAlerts) SetActive(_ context.Context, id, userID string, active bool) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok || a.UserID.Hex() != userID {
		return nil, repository.ErrNotFound
	}
	a.IsActive = active
	return a, nil
}

func (m *memAlerts) FindByID(_ context.Context, id string) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return a, nil
}

func (m *memAlerts) Delete(_ context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok || a.UserID.Hex() != userID {
		return repository.ErrNotFound
	}
	delete(m.alerts, id)
	return nil
}

type memUsers struct {
	users map[string]*models.User
	err   error
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: map[string]*models.User{}}
	for _, u := range users {
		m.users[u.ID.Hex()] = u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return nil, repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	m.users[u.ID.Hex()] = u
	return u, nil
}

func (m *memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) UpdatePhone(_ context.Context, id, phone string) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u.PhoneNumber = phone
	return u, nil
}

type memListings struct {
	mu          sync.Mutex
	listings    map[string]*models.Listing
	searchErr   error
	searches    []models.SearchFilters
	searchCalls int
}

func newMemListings(listings ...*models.Listing) *memListings {
	m := &memListings{listings: map[string]*models.Listing{}}
	for _, l := range listings {
		m.listings[l.ID.Hex()] = l
	}
	return m
}

func (m *memListings) Create(_ context.Context, l *models.Listing) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if l.Status == models.ListingStatusActive && l.ListedAt == nil {
		now := time.Now()
		l.ListedAt = &now
	}
	copied := *l
	m.listings[l.ID.Hex()] = &copied
	return l, nil
}

func (m *memListings) FindByID(_ context.Context, id string) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *l
	return &copied, nil
}

// Search returns every active listing; filtering is the repository's job.
func (m *memListings) Search(_ context.Context, f models.SearchFilters) ([]*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.searches = append(m.searches, f)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	out := []*models.Listing{}
	for _, l := range m.listings {
		if l.Status == models.ListingStatusActive {
			copied := *l
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *memListings) FindBySeller(_ context.Context, sellerID string) ([]*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Listing{}
	for _, l := range m.listings {
		if l.SellerID.Hex() == sellerID {
			out = append(out, l)
		}
	}
	return out, nil
}

// Update keeps the stored lifecycle fields, like the Mongo $set.
func (m *memListings) Update(_ context.Context, l *models.Listing) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.listings[l.ID.Hex()]
	if !ok || existing.SellerID != l.SellerID {
		return nil, repository.ErrNotFound
	}
	copied := *l
	copied.Status = existing.Status
	copied.ListedAt = existing.ListedAt
	copied.CreatedAt = existing.CreatedAt
	copied.UpdatedAt = time.Now()
	m.listings[l.ID.Hex()] = &copied
	out := copied
	return &out, nil
}

func (m *memListings) UpdateStatus(_ context.Context, id, from, to string) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok || l.Status != from {
		return nil, repository.ErrNotFound
	}
	l.Status = to
	if to == models.ListingStatusActive {
		now := time.Now()
		l.ListedAt = &now
	}
	copied := *l
	return &copied, nil
}

func (m *memListings) ExpireStale(_ context.Context, before time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for id, l := range m.listings {
		if l.Status == models.ListingStatusActive && l.ListedAt != nil && l.ListedAt.Before(before) {
			l.Status = models.ListingStatusExpired
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *memListings) Delete(_ context.Context, id, sellerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok || l.SellerID.Hex() != sellerID {
		return repository.ErrNotFound
	}
	delete(m.listings, id)
	return nil
}

type memMedia struct {
	images    []*models.ListingImage
	documents []*models.ListingDocument
}

func (m *memMedia) AddImages(_ context.Context, images []*models.ListingImage) ([]*models.ListingImage, error) {
	m.images = append(m.images, images...)
	return images, nil
}

func (m *memMedia) FindImages(_ context.Context, listingID string) ([]*models.ListingImage, error) {
	out := []*models.ListingImage{}
	for _, img := range m.images {
		if img.ListingID.Hex() == listingID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *memMedia) DeleteImage(_ context.Context, id, listingID string) error {
	for i, img := range m.images {
		if img.ID.Hex() == id && img.ListingID.Hex() == listingID {
			m.images = append(m.images[:i], m.images[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *memMedia) SetPrimaryImage(_ context.Context, id, listingID string) (*models.ListingImage, error) {
	var chosen *models.ListingImage
	for _, img := range m.images {
		if img.ID.Hex() == id && img.ListingID.Hex() == listingID {
			chosen = img
		}
	}
	if chosen == nil {
		return nil, repository.ErrNotFound
	}
	for _, img := range m.images {
		if img.ListingID.Hex() == listingID {
			img.IsPrimary = false
		}
	}
	chosen.IsPrimary = true
	return chosen, nil
}

func (m *memMedia) AddDocument(_ context.Context, doc *models.ListingDocument) (*models.ListingDocument, error) {
	doc.ID = primitive.NewObjectID()
	m.documents = append(m.documents, doc)
	return doc, nil
}

func (m *memMedia) FindDocuments(_ context.Context, listingID string) ([]*models.ListingDocument, error) {
	out := []*models.ListingDocument{}
	for _, d := range m.documents {
		if d.ListingID.Hex() == listingID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memMedia) DeleteDocument(_ context.Context, id, userID string) error {
	for i, d := range m.documents {
		if d.ID.Hex() == id && d.UserID.Hex() == userID {
			m.documents = append(m.documents[:i], m.documents[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

type memChats struct {
	sessions   map[string]*models.ChatSession
	messages   []*models.ChatMessage
	addErr     error
	addErrRole string
}

func newMemChats() *memChats {
	return &memChats{sessions: map[string]*models.ChatSession{}}
}

func (m *memChats) CreateSession(_ context.Context, s *models.ChatSession) (*models.ChatSession, error) {
	if s.ID.IsZero() {
		s.ID = primitive.NewObjectID()
	}
	m.sessions[s.ID.Hex()] = s
	return s, nil
}

func (m *memChats) FindSession(_ context.Context, id string) (*models.ChatSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memChats) UpdateFilters(_ context.Context, id string, f models.SearchFilters) error {
	s, ok := m.sessions[id]
	if !ok {
		return repository.ErrNotFound
	}
	s.ActiveFilters = f
	return nil
}

func (m *memChats) AddMessage(_ context.Context, msg *models.ChatMessage) (*models.ChatMessage, error) {
	if m.addErr != nil && (m.addErrRole == "" || m.addErrRole == msg.Role) {
		return nil, m.addErr
	}
	msg.ID = primitive.NewObjectID()
	m.messages = append(m.messages, msg)
	return msg, nil
}

func (m *memChats) FindMessages(_ context.Context, sessionID string) ([]*models.ChatMessage, error) {
	out := []*models.ChatMessage{}
	for _, msg := range m.messages {
		if msg.SessionID.Hex() == sessionID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *memChats) messagesFor(sessionID string) []*models.ChatMessage {
	out, _ := m.FindMessages(context.Background(), sessionID)
	return out
}

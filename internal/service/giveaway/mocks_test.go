package giveaway

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"

	dg "github.com/Voridan/giveaway-platform/internal/domain/giveaway"
	du "github.com/Voridan/giveaway-platform/internal/domain/user"
)

type MockRepository struct{ mock.Mock }

func (m *MockRepository) Create(ctx context.Context, ownerID int64, f dg.Fields, participants []string, partnerIDs []int64) (*dg.Giveaway, error) {
	args := m.Called(ctx, ownerID, f, participants, partnerIDs)
	g, _ := args.Get(0).(*dg.Giveaway)
	return g, args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*dg.Giveaway, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*dg.Giveaway)
	return g, args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, id int64, u dg.Update) (*dg.Giveaway, error) {
	args := m.Called(ctx, id, u)
	g, _ := args.Get(0).(*dg.Giveaway)
	return g, args.Error(1)
}

func (m *MockRepository) AppendParticipants(ctx context.Context, id int64, nicknames []string, requireCollectable bool) (int, error) {
	args := m.Called(ctx, id, nicknames, requireCollectable)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) Approve(ctx context.Context, id int64) (*dg.Giveaway, bool, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*dg.Giveaway)
	return g, args.Bool(1), args.Error(2)
}

func (m *MockRepository) Reject(ctx context.Context, id int64) (*dg.Giveaway, error) {
	args := m.Called(ctx, id)
	g, _ := args.Get(0).(*dg.Giveaway)
	return g, args.Error(1)
}

func (m *MockRepository) End(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRepository) List(ctx context.Context, q dg.PageQuery) (*dg.Page, error) {
	args := m.Called(ctx, q)
	p, _ := args.Get(0).(*dg.Page)
	return p, args.Error(1)
}

func (m *MockRepository) SelectWinner(ctx context.Context, id int64, pick func(n int) (int, error)) (string, error) {
	args := m.Called(ctx, id, pick)
	return args.String(0), args.Error(1)
}

func (m *MockRepository) ParticipantsStats(ctx context.Context, ownerID int64) ([]dg.ParticipantsStat, error) {
	args := m.Called(ctx, ownerID)
	s, _ := args.Get(0).([]dg.ParticipantsStat)
	return s, args.Error(1)
}

func (m *MockRepository) ReconcileCounts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockUsers struct{ mock.Mock }

func (m *MockUsers) GetByID(ctx context.Context, id int64) (*du.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*du.User)
	return u, args.Error(1)
}

func (m *MockUsers) GetManyByID(ctx context.Context, ids []int64) ([]du.User, error) {
	args := m.Called(ctx, ids)
	u, _ := args.Get(0).([]du.User)
	return u, args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) NotifyApproved(ctx context.Context, g *dg.Giveaway) { m.Called(ctx, g) }
func (m *MockNotifier) NotifyRejected(ctx context.Context, g *dg.Giveaway) { m.Called(ctx, g) }

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, stream string, values map[string]interface{}) (string, error) {
	args := m.Called(ctx, stream, values)
	return args.String(0), args.Error(1)
}

const (
	TestOwnerID   = 100
	TestPartnerID = 200
	TestOtherID   = 300
	TestGiveaway  = 1
	collectStream = "collect-comments"
)

// TestMocks holds every collaborator of the service
type TestMocks struct {
	Repo      *MockRepository
	Users     *MockUsers
	Notifier  *MockNotifier
	Publisher *MockPublisher
}

func newTestService() (*Service, *TestMocks) {
	m := &TestMocks{
		Repo:      new(MockRepository),
		Users:     new(MockUsers),
		Notifier:  new(MockNotifier),
		Publisher: new(MockPublisher),
	}
	svc := NewService(m.Repo, m.Users, m.Notifier, m.Publisher, collectStream, zerolog.Nop())
	return svc, m
}

func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.Repo.AssertExpectations(t)
	m.Users.AssertExpectations(t)
	m.Notifier.AssertExpectations(t)
	m.Publisher.AssertExpectations(t)
}

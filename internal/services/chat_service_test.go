package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	apperrors "github.com/zevarhq/zevar/internal/errors"
	"github.com/zevarhq/zevar/internal/models"
)

// mockActionRepo is an in-memory ActionRepository with the same CAS semantics
// as the real one.
type mockActionRepo struct {
	actions map[string]*models.ChatAction

	beginCalls  int
	createCalls int
}

func newMockActionRepo() *mockActionRepo {
	return &mockActionRepo{actions: map[string]*models.ChatAction{}}
}

func (m *mockActionRepo) Create(_ context.Context, a *models.ChatAction) error {
	m.createCalls++
	cp := *a
	m.actions[a.ID] = &cp
	return nil
}

func (m *mockActionRepo) GetForUser(_ context.Context, id, userID string) (*models.ChatAction, error) {
	a, ok := m.actions[id]
	if !ok || a.UserID != userID {
		return nil, &apperrors.ErrNotFound{Resource: "action", ID: id}
	}
	cp := *a
	return &cp, nil
}

func (m *mockActionRepo) Update(_ context.Context, a *models.ChatAction) error {
	if _, ok := m.actions[a.ID]; !ok {
		return &apperrors.ErrNotFound{Resource: "action", ID: a.ID}
	}
	cp := *a
	m.actions[a.ID] = &cp
	return nil
}

func (m *mockActionRepo) BeginExecution(_ context.Context, id, userID string) error {
	m.beginCalls++
	a, ok := m.actions[id]
	if !ok || a.UserID != userID {
		return &apperrors.ErrNotFound{Resource: "action", ID: id}
	}
	if !a.Confirmable() {
		return &apperrors.ErrAlreadyProcessed{ID: id, Status: a.Status}
	}
	a.Status = models.StatusExecuting
	return nil
}

func (m *mockActionRepo) FinishExecution(_ context.Context, id, recordID, redirectURL string) error {
	a := m.actions[id]
	a.Status = models.StatusExecuted
	a.RecordID = &recordID
	a.RedirectURL = &redirectURL
	return nil
}

func (m *mockActionRepo) MarkFailed(_ context.Context, id, reason string) error {
	a := m.actions[id]
	a.Status = models.StatusFailed
	a.Error = &reason
	return nil
}

func (m *mockActionRepo) Cancel(_ context.Context, id, userID string) error {
	a, ok := m.actions[id]
	if !ok || a.UserID != userID {
		return &apperrors.ErrNotFound{Resource: "action", ID: id}
	}
	if a.IsTerminal() || a.Status == models.StatusExecuting {
		return &apperrors.ErrAlreadyProcessed{ID: id, Status: a.Status}
	}
	a.Status = models.StatusCancelled
	return nil
}

type mockChatRepo struct {
	sessions map[string]*models.ChatSession
	messages []*models.ChatMessage

	// events records the persistence order so tests can assert sequencing.
	events []string
}

func newMockChatRepo() *mockChatRepo {
	return &mockChatRepo{sessions: map[string]*models.ChatSession{}}
}

func (m *mockChatRepo) CreateSession(_ context.Context, s *models.ChatSession) error {
	m.sessions[s.ID] = s
	m.events = append(m.events, "session:"+s.ID)
	return nil
}

func (m *mockChatRepo) GetSession(_ context.Context, id, userID string) (*models.ChatSession, error) {
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, &apperrors.ErrNotFound{Resource: "chat session", ID: id}
	}
	return s, nil
}

func (m *mockChatRepo) ListSessions(_ context.Context, userID string, _, _ int) ([]*models.ChatSession, error) {
	var out []*models.ChatSession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockChatRepo) DeleteSession(_ context.Context, id, userID string) error {
	if _, err := m.GetSession(context.Background(), id, userID); err != nil {
		return err
	}
	delete(m.sessions, id)
	return nil
}

func (m *mockChatRepo) TouchSession(_ context.Context, _ string) error { return nil }

func (m *mockChatRepo) CreateMessage(_ context.Context, msg *models.ChatMessage) error {
	m.messages = append(m.messages, msg)
	m.events = append(m.events, "message:"+msg.Role)
	return nil
}

func (m *mockChatRepo) ListMessages(_ context.Context, sessionID, userID string, _ int) ([]*models.ChatMessage, error) {
	var out []*models.ChatMessage
	for _, msg := range m.messages {
		if msg.SessionID == sessionID && msg.UserID == userID {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (m *mockChatRepo) UpdateMessageStatus(_ context.Context, id, status string) error {
	for _, msg := range m.messages {
		if msg.ID == id {
			msg.Status = status
			m.events = append(m.events, "status:"+status)
			return nil
		}
	}
	return &apperrors.ErrNotFound{Resource: "chat message", ID: id}
}

type stubExtractor struct {
	result *ExtractResult
	err    error
}

func (s *stubExtractor) Extract(_ context.Context, session *models.ChatSession, _ []*models.ChatMessage, _ string) (*ExtractResult, error) {
	if s.result != nil && s.result.Action != nil {
		s.result.Action.SessionID = session.ID
		s.result.Action.UserID = session.UserID
	}
	return s.result, s.err
}

type stubExecutor struct {
	result   *models.ActionResult
	err      error
	performs int
}

func (s *stubExecutor) Perform(_ context.Context, _ *models.ChatAction) (*models.ActionResult, error) {
	s.performs++
	return s.result, s.err
}

func readyAction(id, userID string) *models.ChatAction {
	a := &models.ChatAction{
		ID:        id,
		SessionID: "sess-1",
		UserID:    userID,
		Type:      models.ActionAddCustomer,
		Status:    models.StatusReady,
	}
	_ = a.SetData(map[string]interface{}{"name": "Ravi Kumar"})
	return a
}

func TestSendMessageCreatesSessionAndPersistsInOrder(t *testing.T) {
	actions := newMockActionRepo()
	chats := newMockChatRepo()
	ex := &stubExtractor{result: &ExtractResult{
		Reply:  "Drafted.",
		Action: &models.ChatAction{ID: "act-1", Type: models.ActionAddCustomer, Status: models.StatusReady},
	}}
	svc := NewChatService(actions, chats, ex, &stubExecutor{}, zap.NewNop())

	reply, err := svc.SendMessage(context.Background(), "user-1", "", "add customer ravi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply.SessionID == "" {
		t.Fatal("expected a new session id")
	}
	if reply.Action == nil || reply.Action.ID != "act-1" {
		t.Fatalf("expected the proposed action in the reply, got %+v", reply.Action)
	}
	if reply.Message.ActionID == nil || *reply.Message.ActionID != "act-1" {
		t.Error("assistant message must reference the action")
	}

	// The action row must exist before the assistant message, and the user
	// message flips to sent only after both.
	want := []string{"session:" + reply.SessionID, "message:user", "message:assistant", "status:sent"}
	if len(chats.events) != len(want) {
		t.Fatalf("unexpected event sequence: %v", chats.events)
	}
	for i, e := range want {
		if chats.events[i] != e {
			t.Fatalf("event[%d] = %q, want %q (all: %v)", i, chats.events[i], e, chats.events)
		}
	}
	if actions.createCalls != 1 {
		t.Errorf("expected one action create, got %d", actions.createCalls)
	}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	svc := NewChatService(newMockActionRepo(), newMockChatRepo(), &stubExtractor{}, &stubExecutor{}, zap.NewNop())

	_, err := svc.SendMessage(context.Background(), "user-1", "", "   ")
	var vErr *apperrors.ErrValidation
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSendMessageUnknownSession(t *testing.T) {
	svc := NewChatService(newMockActionRepo(), newMockChatRepo(), &stubExtractor{}, &stubExecutor{}, zap.NewNop())

	_, err := svc.SendMessage(context.Background(), "user-1", "nope", "hello")
	var nf *apperrors.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConfirmExecutesExactlyOnce(t *testing.T) {
	actions := newMockActionRepo()
	actions.actions["act-1"] = readyAction("act-1", "user-1")
	executor := &stubExecutor{result: &models.ActionResult{RecordID: "cust-1", RedirectURL: "/customers/cust-1"}}
	svc := NewChatService(actions, newMockChatRepo(), &stubExtractor{}, executor, zap.NewNop())

	result, err := svc.Confirm(context.Background(), "user-1", "act-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Success || result.RedirectURL != "/customers/cust-1" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if actions.actions["act-1"].Status != models.StatusExecuted {
		t.Errorf("expected executed, got %s", actions.actions["act-1"].Status)
	}

	// Second confirmation must be refused without another execution.
	_, err = svc.Confirm(context.Background(), "user-1", "act-1")
	var processed *apperrors.ErrAlreadyProcessed
	if !errors.As(err, &processed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
	if executor.performs != 1 {
		t.Errorf("expected exactly one execution, got %d", executor.performs)
	}
}

func TestConfirmIncompleteActionWritesNothing(t *testing.T) {
	actions := newMockActionRepo()
	a := readyAction("act-1", "user-1")
	_ = a.SetData(map[string]interface{}{"phone": "9876543210"}) // name missing
	actions.actions["act-1"] = a
	executor := &stubExecutor{}
	svc := NewChatService(actions, newMockChatRepo(), &stubExtractor{}, executor, zap.NewNop())

	_, err := svc.Confirm(context.Background(), "user-1", "act-1")
	var nc *apperrors.ErrNotConfirmable
	if !errors.As(err, &nc) {
		t.Fatalf("expected ErrNotConfirmable, got %v", err)
	}
	if len(nc.Missing) == 0 {
		t.Error("expected missing fields in the error")
	}
	if executor.performs != 0 {
		t.Error("an incomplete action must never reach the executor")
	}
	if actions.actions["act-1"].Status == models.StatusExecuting {
		t.Error("status must not move to executing")
	}
}

func TestConfirmExecutionFailureMarksFailed(t *testing.T) {
	actions := newMockActionRepo()
	actions.actions["act-1"] = readyAction("act-1", "user-1")
	executor := &stubExecutor{err: fmt.Errorf("customers table is on fire")}
	svc := NewChatService(actions, newMockChatRepo(), &stubExtractor{}, executor, zap.NewNop())

	_, err := svc.Confirm(context.Background(), "user-1", "act-1")
	if err == nil {
		t.Fatal("expected the execution error to surface")
	}
	a := actions.actions["act-1"]
	if a.Status != models.StatusFailed {
		t.Errorf("expected failed, got %s", a.Status)
	}
	if a.Error == nil || *a.Error == "" {
		t.Error("expected the failure reason recorded on the action")
	}
}

func TestConfirmIsScopedToOwner(t *testing.T) {
	actions := newMockActionRepo()
	actions.actions["act-1"] = readyAction("act-1", "user-1")
	svc := NewChatService(actions, newMockChatRepo(), &stubExtractor{}, &stubExecutor{}, zap.NewNop())

	_, err := svc.Confirm(context.Background(), "user-2", "act-1")
	var nf *apperrors.ErrNotFound
	if !errors.As(err, &nf) {
		t.Fatalf("another user's action must look like 404, got %v", err)
	}
}

func TestCancel(t *testing.T) {
	actions := newMockActionRepo()
	actions.actions["act-1"] = readyAction("act-1", "user-1")
	svc := NewChatService(actions, newMockChatRepo(), &stubExtractor{}, &stubExecutor{}, zap.NewNop())

	a, err := svc.Cancel(context.Background(), "user-1", "act-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != models.StatusCancelled {
		t.Errorf("expected cancelled, got %s", a.Status)
	}

	// Cancelling again conflicts.
	_, err = svc.Cancel(context.Background(), "user-1", "act-1")
	var processed *apperrors.ErrAlreadyProcessed
	if !errors.As(err, &processed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}

func TestEditMergesAndRevalidates(t *testing.T) {
	actions := newMockActionRepo()
	a := readyAction("act-1", "user-1")
	_ = a.SetData(map[string]interface{}{"phone": "9876543210"})
	a.Status = models.StatusAwaitingConfirmation
	actions.actions["act-1"] = a
	svc := NewChatService(actions, newMockChatRepo(), &stubExtractor{}, &stubExecutor{}, zap.NewNop())

	updated, err := svc.Edit(context.Background(), "user-1", "act-1", map[string]interface{}{"name": "Ravi Kumar"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.StatusReady {
		t.Errorf("expected ready after supplying the missing field, got %s", updated.Status)
	}

	// A nil patch value deletes the key, making the action incomplete again.
	updated, err = svc.Edit(context.Background(), "user-1", "act-1", map[string]interface{}{"name": nil})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != models.StatusAwaitingConfirmation {
		t.Errorf("expected awaiting_confirmation, got %s", updated.Status)
	}
}

func TestEditRejectsTerminalActions(t *testing.T) {
	actions := newMockActionRepo()
	a := readyAction("act-1", "user-1")
	a.Status = models.StatusExecuted
	actions.actions["act-1"] = a
	svc := NewChatService(actions, newMockChatRepo(), &stubExtractor{}, &stubExecutor{}, zap.NewNop())

	_, err := svc.Edit(context.Background(), "user-1", "act-1", map[string]interface{}{"name": "x"})
	var processed *apperrors.ErrAlreadyProcessed
	if !errors.As(err, &processed) {
		t.Fatalf("expected ErrAlreadyProcessed, got %v", err)
	}
}

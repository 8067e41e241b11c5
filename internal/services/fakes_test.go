package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/models"
	"github.com/workbridg/workbridg-web/internal/repository"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var errNotFound = &backend.Error{Status: http.StatusNotFound, Message: "Not found"}

type fakeUserRepo struct {
	loginInput    repository.LoginInput
	registerInput repository.RegisterInput
	loginErr      error
	registerErr   error
	logoutErr     error
	users         map[string]*models.User
}

func (f *fakeUserRepo) Login(_ context.Context, input repository.LoginInput) (*backend.AuthResult, error) {
	f.loginInput = input
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &backend.AuthResult{
		User:   models.User{ID: "u1", Username: input.Identifier, Role: models.RoleFreelancer},
		Tokens: models.Tokens{AccessToken: "a", RefreshToken: "r"},
	}, nil
}

func (f *fakeUserRepo) Register(_ context.Context, input repository.RegisterInput) (*backend.AuthResult, error) {
	f.registerInput = input
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &backend.AuthResult{User: models.User{ID: "u2", Username: input.Username, Role: input.Role}}, nil
}

func (f *fakeUserRepo) Logout(context.Context) error { return f.logoutErr }

func (f *fakeUserRepo) Current(context.Context) (*models.User, error) {
	return &models.User{ID: "u1", Username: "ada"}, nil
}

func (f *fakeUserRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (f *fakeUserRepo) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.users[username]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, errNotFound
}

type fakeProfileRepo struct {
	savedRole    models.Role
	savedDetails models.UserDetails
	details      map[string]*models.UserDetails
}

func (f *fakeProfileRepo) SaveDetails(_ context.Context, role models.Role, details models.UserDetails) (*models.User, error) {
	f.savedRole = role
	f.savedDetails = details
	return &models.User{ID: "u1", Role: role}, nil
}

func (f *fakeProfileRepo) FindByUserID(_ context.Context, userID string) (*models.UserDetails, error) {
	if d, ok := f.details[userID]; ok {
		return d, nil
	}
	return nil, errNotFound
}

// fakeProjectRepo records every call so tests can assert on backend traffic.
type fakeProjectRepo struct {
	calls       []string
	applyInput  repository.ApplicationInput
	createInput repository.ProjectInput
	filter      repository.ProjectFilter
	pending     []models.Application
	err         error
	statusSent  models.ProjectStatus
	remarkSent  string
}

func (f *fakeProjectRepo) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeProjectRepo) List(_ context.Context, filter repository.ProjectFilter) ([]models.Project, error) {
	f.filter = filter
	if err := f.record("List"); err != nil {
		return nil, err
	}
	return []models.Project{{ID: "p1"}}, nil
}

func (f *fakeProjectRepo) ListForUser(context.Context, string) ([]models.Project, error) {
	if err := f.record("ListForUser"); err != nil {
		return nil, err
	}
	return nil, nil
}

func (f *fakeProjectRepo) FindByID(_ context.Context, id string) (*models.Project, error) {
	if err := f.record("FindByID"); err != nil {
		return nil, err
	}
	return &models.Project{ID: id}, nil
}

func (f *fakeProjectRepo) Create(_ context.Context, input repository.ProjectInput) (*models.Project, error) {
	f.createInput = input
	if err := f.record("Create"); err != nil {
		return nil, err
	}
	return &models.Project{ID: "p-new", Title: input.Title}, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, id string, input repository.ProjectInput) (*models.Project, error) {
	if err := f.record("Update"); err != nil {
		return nil, err
	}
	return &models.Project{ID: id, Title: input.Title}, nil
}

func (f *fakeProjectRepo) UpdateStatus(_ context.Context, id string, status models.ProjectStatus) (*models.Project, error) {
	f.statusSent = status
	if err := f.record("UpdateStatus"); err != nil {
		return nil, err
	}
	return &models.Project{ID: id, Status: status}, nil
}

func (f *fakeProjectRepo) Apply(_ context.Context, projectID string, input repository.ApplicationInput) (*models.Application, error) {
	f.applyInput = input
	if err := f.record("Apply"); err != nil {
		return nil, err
	}
	return &models.Application{ID: "a1", ProjectID: projectID, ProposedPayment: input.ProposedPayment}, nil
}

func (f *fakeProjectRepo) ListApplications(context.Context, string) ([]models.Application, error) {
	if err := f.record("ListApplications"); err != nil {
		return nil, err
	}
	return f.pending, nil
}

func (f *fakeProjectRepo) ListPendingApplications(context.Context) ([]models.Application, error) {
	if err := f.record("ListPendingApplications"); err != nil {
		return nil, err
	}
	return f.pending, nil
}

func (f *fakeProjectRepo) ApproveApplication(_ context.Context, id string) error {
	if err := f.record("ApproveApplication"); err != nil {
		return err
	}
	f.pending = without(f.pending, id)
	return nil
}

func (f *fakeProjectRepo) RejectApplication(_ context.Context, id string) error {
	if err := f.record("RejectApplication"); err != nil {
		return err
	}
	f.pending = without(f.pending, id)
	return nil
}

func (f *fakeProjectRepo) AddRemark(_ context.Context, projectID, content string) (*models.Project, error) {
	f.remarkSent = content
	if err := f.record("AddRemark"); err != nil {
		return nil, err
	}
	return &models.Project{ID: projectID, Remarks: []models.Remark{{Content: content}}}, nil
}

func without(apps []models.Application, id string) []models.Application {
	out := make([]models.Application, 0, len(apps))
	for _, a := range apps {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

// fakeChatRepo serves chats as raw JSON, the way the backend does.
type fakeChatRepo struct {
	chats      []json.RawMessage
	listErr    error
	postReply  json.RawMessage
	postErr    error
	markErr    error
	created    repository.ChatInput
	group      repository.GroupInput
	markCalls  int
	listCalls  int
	lastPosted string
}

func (f *fakeChatRepo) ListByUser(context.Context, string) ([]json.RawMessage, error) {
	f.listCalls++
	return f.chats, f.listErr
}

func (f *fakeChatRepo) Create(_ context.Context, input repository.ChatInput) (json.RawMessage, error) {
	f.created = input
	return json.RawMessage(`{"_id":"c-new","type":"` + string(input.Type) + `","participants":["u1","` + input.ParticipantID + `"]}`), nil
}

func (f *fakeChatRepo) PostMessage(_ context.Context, _ string, content string) (json.RawMessage, error) {
	f.lastPosted = content
	return f.postReply, f.postErr
}

func (f *fakeChatRepo) MarkRead(context.Context, string) error {
	f.markCalls++
	return f.markErr
}

func (f *fakeChatRepo) AddAdmin(_ context.Context, chatID string) (json.RawMessage, error) {
	return json.RawMessage(`{"_id":"` + chatID + `","status":"with_admin"}`), nil
}

func (f *fakeChatRepo) Approve(_ context.Context, chatID string) (json.RawMessage, error) {
	return json.RawMessage(`{"_id":"` + chatID + `","status":"approved"}`), nil
}

func (f *fakeChatRepo) CreateGroup(_ context.Context, input repository.GroupInput) (json.RawMessage, error) {
	f.group = input
	return json.RawMessage(`{"_id":"g1","type":"group","name":"` + input.Name + `"}`), nil
}

func (f *fakeChatRepo) AddParticipant(_ context.Context, chatID, userID string) (json.RawMessage, error) {
	return json.RawMessage(`{"_id":"` + chatID + `","participants":["u1","u2","` + userID + `"]}`), nil
}

func (f *fakeChatRepo) RemoveParticipant(_ context.Context, chatID, _ string) (json.RawMessage, error) {
	return json.RawMessage(`{"_id":"` + chatID + `","participants":["u1","u2"]}`), nil
}

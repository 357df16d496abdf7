package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/mail"
	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/utils"
)

type fakeUsers struct {
	byID map[uint64]*model.User
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range f.byID {
		if u.Email == strings.ToLower(email) {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uint64, hash string) error {
	f.byID[id].PasswordHash = hash
	return nil
}

type fakeRevoker struct{ revoked []uint64 }

func (f *fakeRevoker) RevokeAllForUser(_ context.Context, id uint64) error {
	f.revoked = append(f.revoked, id)
	return nil
}

type fakeMailer struct{ sent []mail.Message }

func (f *fakeMailer) Send(_ context.Context, m mail.Message) error {
	f.sent = append(f.sent, m)
	return nil
}

const testSecret = "test-secret"

func newResetService(t *testing.T) (*PasswordResetService, *fakeUsers, *fakeMailer, *fakeRevoker) {
	t.Helper()
	hash, err := utils.HashPassword("old-password", 4)
	require.NoError(t, err)
	users := &fakeUsers{byID: map[uint64]*model.User{
		7: {ID: 7, Email: "ana@example.com", PasswordHash: hash, Role: model.RoleCustomer, IsActive: true},
	}}
	m := &fakeMailer{}
	rev := &fakeRevoker{}
	svc := NewPasswordResetService(users, rev, m, PasswordResetConfig{
		Secret: testSecret, TTL: time.Hour, BcryptCost: 4,
	}, zap.NewNop())
	return svc, users, m, rev
}

// linkParts extracts uid and token from ".../reset-password/<uid>/<token>/".
func linkParts(t *testing.T, body string) (string, string) {
	t.Helper()
	i := strings.Index(body, "/reset-password/")
	require.GreaterOrEqual(t, i, 0)
	parts := strings.Split(strings.TrimSuffix(body[i+len("/reset-password/"):], "/"), "/")
	require.Len(t, parts, 2)
	return parts[0], parts[1]
}

func TestRequest_SendsExactlyOneEmail(t *testing.T) {
	svc, _, m, _ := newResetService(t)

	require.NoError(t, svc.Request(context.Background(), "ana@example.com", "http://localhost:8080"))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "ana@example.com", m.sent[0].To)
	assert.Equal(t, "Restablece tu contraseña", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].Body, "http://localhost:8080/reset-password/Nw/")
	assert.True(t, strings.HasSuffix(m.sent[0].Body, "/"))
}

func TestRequest_Errors(t *testing.T) {
	svc, _, m, _ := newResetService(t)

	assert.ErrorIs(t, svc.Request(context.Background(), "  ", "http://x"), ErrEmailRequired)
	assert.ErrorIs(t, svc.Request(context.Background(), "nobody@example.com", "http://x"), ErrUserNotFound)
	assert.Empty(t, m.sent)
}

func TestResetURL_PrefersConfiguredBase(t *testing.T) {
	svc, _, _, _ := newResetService(t)
	svc.cfg.BaseURL = "https://viajes.example.com/"
	assert.Equal(t, "https://viajes.example.com/reset-password/Nw/tok/", svc.ResetURL("http://ignored", "Nw", "tok"))
}

func TestConfirm_ResetsOnceAndRevokesSessions(t *testing.T) {
	svc, users, m, rev := newResetService(t)
	require.NoError(t, svc.Request(context.Background(), "ana@example.com", "http://localhost"))
	uid, token := linkParts(t, m.sent[0].Body)

	require.NoError(t, svc.Confirm(context.Background(), uid, token, "new-password"))
	assert.True(t, utils.VerifyPassword(users.byID[7].PasswordHash, "new-password"))
	assert.Equal(t, []uint64{7}, rev.revoked)

	// The token is bound to the old hash, so a second use fails.
	assert.ErrorIs(t, svc.Confirm(context.Background(), uid, token, "another"), ErrInvalidToken)
}

func TestConfirm_Errors(t *testing.T) {
	svc, _, m, _ := newResetService(t)
	require.NoError(t, svc.Request(context.Background(), "ana@example.com", "http://localhost"))
	uid, token := linkParts(t, m.sent[0].Body)

	assert.ErrorIs(t, svc.Confirm(context.Background(), "!!", token, "x"), ErrInvalidResetLink)
	assert.ErrorIs(t, svc.Confirm(context.Background(), utils.EncodeUID(99), token, "x"), ErrInvalidResetLink)
	assert.ErrorIs(t, svc.Confirm(context.Background(), uid, "garbage", "x"), ErrInvalidToken)
	assert.ErrorIs(t, svc.Confirm(context.Background(), uid, token, ""), ErrPasswordRequired)
}

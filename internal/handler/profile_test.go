package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/model"
	"github.com/iliyamo/travel-booking/internal/service"
)

type fakeProfileEditor struct {
	update service.ProfileUpdate
}

func (f *fakeProfileEditor) Get(_ context.Context, userID uint64) (*model.Profile, error) {
	return &model.Profile{UserID: userID, Image: model.DefaultProfileImage}, nil
}

func (f *fakeProfileEditor) Update(_ context.Context, userID uint64, u service.ProfileUpdate) (*model.Profile, error) {
	f.update = u
	return &model.Profile{UserID: userID, Address: u.Address}, nil
}

func TestProfileUpdate(t *testing.T) {
	fake := &fakeProfileEditor{}
	h := NewProfileHandler(fake, zap.NewNop())

	c, rec := newCtx(t, http.MethodPut, "/v1/me/profile", `{"address":"Av. Siempreviva 742"}`)
	require.NoError(t, h.Update(asUser(c, "7")))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, fake.update.Address)
	assert.Equal(t, "Av. Siempreviva 742", *fake.update.Address)
	assert.Nil(t, fake.update.Email)

	c, rec = newCtx(t, http.MethodPut, "/v1/me/profile", `{"email":"nope"}`)
	require.NoError(t, h.Update(asUser(c, "7")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"Ingrese un email válido."`)
}

func TestProfileGet(t *testing.T) {
	h := NewProfileHandler(&fakeProfileEditor{}, zap.NewNop())
	c, rec := newCtx(t, http.MethodGet, "/v1/me/profile", "")
	require.NoError(t, h.Get(asUser(c, "7")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"user_id":7`)

	c, rec = newCtx(t, http.MethodGet, "/v1/me/profile", "")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

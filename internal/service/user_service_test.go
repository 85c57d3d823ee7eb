package service

import (
	"context"
	"testing"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"
	"runnerhub/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(repo)
	ctx := context.Background()
	id := uuid.New()

	name := "  Lerato "
	repo.EXPECT().UpdateProfile(ctx, id, "Lerato").Return(nil)
	repo.EXPECT().GetByID(ctx, id).Return(&domain.User{ID: id, Name: "Lerato"}, nil)

	user, err := svc.UpdateProfile(ctx, id, ports.ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Lerato", user.Name)
}

func TestUserService_UpdateProfile_EmptyName(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewUserService(mocks.NewMockUserRepository(ctrl))

	blank := "   "
	_, err := svc.UpdateProfile(context.Background(), uuid.New(), ports.ProfileUpdate{Name: &blank})
	assertAppError(t, err, "VAL_001")
}

func TestUserService_UpdateLocation(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(repo)
	ctx := context.Background()
	id := uuid.New()
	loc := domain.GeoPoint{Lng: 28.05, Lat: -26.2}

	repo.EXPECT().UpdateLocation(ctx, id, loc).Return(nil)
	repo.EXPECT().GetByID(ctx, id).Return(&domain.User{ID: id, Location: &loc}, nil)

	user, err := svc.UpdateLocation(ctx, id, loc)
	require.NoError(t, err)
	assert.Equal(t, loc, user.LastKnownLocation())

	_, err = svc.UpdateLocation(ctx, id, domain.GeoPoint{Lat: 95})
	assertAppError(t, err, "VAL_001")
}

func TestUserService_GetProfile_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	svc := NewUserService(repo)
	id := uuid.New()

	repo.EXPECT().GetByID(gomock.Any(), id).Return(nil, nil)

	_, err := svc.GetProfile(context.Background(), id)
	assertAppError(t, err, "RES_001")
}

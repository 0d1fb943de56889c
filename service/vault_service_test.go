package service_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenderpack-backend/models"
	"tenderpack-backend/service"
)

func TestVaultUploadListDelete(t *testing.T) {
	files, _ := localStorage(t)
	store := &memVault{}
	svc := service.NewVaultService(store, files, nil)
	ctx := context.Background()

	f, err := svc.Upload(ctx, service.UploadVaultFileRequest{
		Owner: owner, Filename: "GST certificate.pdf", Category: "tax", Data: strings.NewReader("%PDF"),
	})
	require.NoError(t, err)
	assert.Equal(t, "GST certificate", f.Title)
	assert.Equal(t, "application/pdf", f.MimeType)
	assert.True(t, strings.HasPrefix(f.StoragePath, owner+"/vault/"))

	rc, err := files.OpenOwned(ctx, owner, f.StoragePath)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "%PDF", string(body))

	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, owner, f.ID))
	list, err = svc.List(ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.ErrorIs(t, svc.Delete(ctx, owner, f.ID), service.ErrVaultFileNotFound)
}

func TestVaultUploadValidation(t *testing.T) {
	files, base := localStorage(t)
	store := &memVault{failing: true}
	svc := service.NewVaultService(store, files, nil)
	ctx := context.Background()

	_, err := svc.Upload(ctx, service.UploadVaultFileRequest{Owner: owner, Data: strings.NewReader("x")})
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	_, err = svc.Upload(ctx, service.UploadVaultFileRequest{Owner: "../x", Filename: "a.pdf", Data: strings.NewReader("x")})
	assert.ErrorIs(t, err, service.ErrInvalidRequest)

	// a failed record insert leaves no orphaned file behind
	_, err = svc.Upload(ctx, service.UploadVaultFileRequest{Owner: owner, Filename: "a.pdf", Data: strings.NewReader("x")})
	require.Error(t, err)
	assert.Equal(t, 0, countFiles(t, base))
}

func TestProfileService(t *testing.T) {
	store := &memProfiles{}
	svc := service.NewProfileService(store)
	ctx := context.Background()

	empty, err := svc.GetProfile(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, empty.Profile.YojID)
	assert.Equal(t, models.FieldValues{}, empty.Memory)

	saved, err := svc.SaveProfile(ctx, owner, models.ContractorProfile{YojID: "spoofed", FirmName: "Sharma"})
	require.NoError(t, err)
	assert.Equal(t, owner, saved.YojID)
	assert.Equal(t, owner, store.profile.YojID)

	got, err := svc.GetProfile(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Sharma", got.Profile.FirmName)
}

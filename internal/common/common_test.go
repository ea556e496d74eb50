package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "rus", cfg.OCR.Language)
	assert.Equal(t, 300, cfg.Raster.DPI)
	assert.Equal(t, "text-first", cfg.Pipeline.Policy)
	assert.Equal(t, 4, cfg.Queue.Workers)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DOCFIELDS_RASTER_DPI", "200")
	t.Setenv("DOCFIELDS_PIPELINE_STRATEGY", "edges")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 200, cfg.Raster.DPI)
	assert.Equal(t, "edges", cfg.Pipeline.Strategy)
}

func TestLoadConfig_FileAndValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docfields.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pipeline:\n  policy: sideways\n"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	var appErr *AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "CONFIG_ERROR", appErr.Code)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestExtractionError_Kind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewExtractionError(InputError, "Failed to extract data from PDF", nil))
	assert.True(t, IsKind(err, InputError))
	assert.False(t, IsKind(err, RecognitionError))
	assert.Contains(t, err.Error(), "Failed to extract data from PDF")

	st, ok := status.FromError(ToStatus(err))
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())

	st, _ = status.FromError(ToStatus(context.DeadlineExceeded))
	assert.Equal(t, codes.DeadlineExceeded, st.Code())
	assert.True(t, IsCanceled(fmt.Errorf("x: %w", context.Canceled)))
}

func TestEnsureRequestID(t *testing.T) {
	ctx, id := EnsureRequestID(context.Background())
	assert.NotEmpty(t, id)
	assert.Equal(t, id, RequestIDFromContext(ctx))

	ctx2, id2 := EnsureRequestID(ctx)
	assert.Equal(t, id, id2)
	assert.Equal(t, ctx, ctx2)
}

func TestValidatorRules(t *testing.T) {
	v := NewValidator().
		Field("document", []byte{}, Required).
		Field("document_big", make([]byte, 10), MaxBytes(5)).
		Field("policy", "x", OneOf("a", "b"))
	require.True(t, v.HasErrors())
	assert.Len(t, v.Errors(), 3)

	st, _ := status.FromError(ValidateAndReturnError(v))
	assert.Equal(t, codes.InvalidArgument, st.Code())
	assert.NoError(t, ValidateAndReturnError(NewValidator().Field("n", 3, Positive)))
}

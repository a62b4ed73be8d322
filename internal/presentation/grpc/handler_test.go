package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/underwriting/internal/application/dto"
	"github.com/bibbank/underwriting/internal/domain/model"
	"github.com/bibbank/underwriting/pkg/auth"
)

func withClaims(tenant string, roles ...string) context.Context {
	return auth.ContextWithClaims(context.Background(), &auth.Claims{
		UserID:   "uw-7",
		TenantID: tenant,
		Roles:    roles,
	})
}

func TestUnderwritingHandler_ScopesRequestsToCallerTenant(t *testing.T) {
	var seen dto.GetSubmissionRequest
	h := NewUnderwritingHandler(UseCases{
		GetSubmission: func(_ context.Context, req dto.GetSubmissionRequest) (dto.SubmissionResponse, error) {
			seen = req
			return dto.SubmissionResponse{ID: req.SubmissionID, TenantID: req.TenantID}, nil
		},
	})

	resp, err := h.GetSubmission(withClaims("tenant-a", auth.RoleUnderwriter), &dto.GetSubmissionRequest{
		TenantID:     "tenant-b",
		SubmissionID: "sub-1",
	})

	require.NoError(t, err)
	assert.Equal(t, "tenant-a", seen.TenantID)
	assert.Equal(t, "tenant-a", resp.TenantID)
}

func TestUnderwritingHandler_RequiresTenant(t *testing.T) {
	h := NewUnderwritingHandler(UseCases{})

	_, err := h.GetSubmission(context.Background(), &dto.GetSubmissionRequest{SubmissionID: "sub-1"})

	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestUnderwritingHandler_NilRequest(t *testing.T) {
	h := NewUnderwritingHandler(UseCases{})

	_, err := h.RunClearance(withClaims("tenant-a"), nil)

	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestUnderwritingHandler_OverrideClearance(t *testing.T) {
	var seen dto.TransitionSubmissionRequest
	h := NewUnderwritingHandler(UseCases{
		TransitionSubmission: func(_ context.Context, req dto.TransitionSubmissionRequest) (dto.SubmissionResponse, error) {
			seen = req
			return dto.SubmissionResponse{ID: req.SubmissionID}, nil
		},
	})
	req := func() *dto.TransitionSubmissionRequest {
		return &dto.TransitionSubmissionRequest{
			SubmissionID: "sub-1",
			Command:      dto.CommandOverrideClearance,
			Reason:       "renewal of our own account",
			UserID:       "someone-else",
		}
	}

	t.Run("underwriters may not override", func(t *testing.T) {
		_, err := h.TransitionSubmission(withClaims("tenant-a", auth.RoleUnderwriter), req())
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("senior underwriters override as themselves", func(t *testing.T) {
		_, err := h.TransitionSubmission(withClaims("tenant-a", auth.RoleSeniorUnderwriter), req())
		require.NoError(t, err)
		assert.Equal(t, "uw-7", seen.UserID)
		assert.Equal(t, "tenant-a", seen.TenantID)
	})
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"validation", model.ErrInvalidRequest.WithDescription("tenant_id failed required"), codes.InvalidArgument},
		{"not found", model.ErrSubmissionNotFound, codes.NotFound},
		{"wrapped not found", fmt.Errorf("load submission: %w", model.ErrGuidelineNotFound), codes.NotFound},
		{"conflict", model.ErrGuidelineNoRules, codes.FailedPrecondition},
		{"concurrency", model.ErrConcurrencyConflict, codes.Aborted},
		{"duplicate name", model.ErrGuidelineDuplicateName, codes.AlreadyExists},
		{"forbidden", model.ErrGuidelineArchived, codes.PermissionDenied},
		{"deadline", fmt.Errorf("save: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{"unexpected", errors.New("connection reset"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, status.Code(toStatus(tt.err)))
		})
	}

	t.Run("internal errors are not leaked", func(t *testing.T) {
		st, _ := status.FromError(toStatus(errors.New("password=hunter2")))
		assert.Equal(t, "internal error", st.Message())
	})
}

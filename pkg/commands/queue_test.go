/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/benjameshughes/rmm/pkg/db"
	"github.com/benjameshughes/rmm/pkg/logger"
	"github.com/benjameshughes/rmm/pkg/models"
)

const (
	testDeviceID  = "11111111-2222-3333-4444-555555555555"
	testCommandID = "aaaaaaaa-bbbb-cccc-dddd-eeeeeeeeeeee"
)

func newTestQueue(t *testing.T) (*Queue, *db.MockService) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	store := db.NewMockService(ctrl)

	return NewQueue(store, nil, logger.NewTestLogger()), store
}

func TestEnqueueValidCommand(t *testing.T) {
	q, store := newTestQueue(t)

	store.EXPECT().GetDevice(gomock.Any(), testDeviceID).Return(&models.Device{ID: testDeviceID}, nil)
	store.EXPECT().CreateCommand(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd *models.DeviceCommand) error {
			assert.NotEmpty(t, cmd.ID)
			assert.Equal(t, testDeviceID, cmd.DeviceID)
			assert.Equal(t, models.CommandStatusPending, cmd.Status)
			assert.Equal(t, 300, cmd.TimeoutSeconds)
			assert.False(t, cmd.QueuedAt.IsZero())

			return nil
		})

	cmd, err := q.Enqueue(context.Background(), &models.QueueCommandRequest{
		DeviceID:      testDeviceID,
		ScriptContent: "Get-Process",
		ScriptType:    models.ScriptTypePowershell,
	})
	require.NoError(t, err)
	assert.Equal(t, models.CommandStatusPending, cmd.Status)
}

func TestEnqueueKeepsExplicitTimeout(t *testing.T) {
	q, store := newTestQueue(t)

	store.EXPECT().GetDevice(gomock.Any(), testDeviceID).Return(&models.Device{ID: testDeviceID}, nil)
	store.EXPECT().CreateCommand(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, cmd *models.DeviceCommand) error {
			assert.Equal(t, 60, cmd.TimeoutSeconds)
			return nil
		})

	_, err := q.Enqueue(context.Background(), &models.QueueCommandRequest{
		DeviceID:       testDeviceID,
		ScriptContent:  "uptime",
		ScriptType:     models.ScriptTypeBash,
		TimeoutSeconds: 60,
	})
	require.NoError(t, err)
}

func TestEnqueueValidation(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	_, err := q.Enqueue(ctx, nil)
	assert.ErrorIs(t, err, ErrDeviceIDRequired)

	_, err = q.Enqueue(ctx, &models.QueueCommandRequest{DeviceID: testDeviceID, ScriptContent: "  "})
	assert.ErrorIs(t, err, ErrScriptRequired)

	_, err = q.Enqueue(ctx, &models.QueueCommandRequest{
		DeviceID: testDeviceID, ScriptContent: "ls", ScriptType: "zsh",
	})
	assert.ErrorIs(t, err, ErrInvalidScriptType)
}

func TestEnqueueUnknownDevice(t *testing.T) {
	q, store := newTestQueue(t)

	store.EXPECT().GetDevice(gomock.Any(), testDeviceID).Return(nil, db.ErrDeviceNotFound)

	_, err := q.Enqueue(context.Background(), &models.QueueCommandRequest{
		DeviceID: testDeviceID, ScriptContent: "ls", ScriptType: models.ScriptTypeSh,
	})
	assert.ErrorIs(t, err, db.ErrDeviceNotFound)
}

func TestDequeueEmptyQueue(t *testing.T) {
	q, store := newTestQueue(t)

	store.EXPECT().DequeuePendingCommand(gomock.Any(), testDeviceID, gomock.Any()).Return(nil, nil)

	cmd, err := q.Dequeue(context.Background(), testDeviceID)
	require.NoError(t, err)
	assert.Nil(t, cmd)
}

func TestDequeueReturnsCommand(t *testing.T) {
	q, store := newTestQueue(t)

	want := &models.DeviceCommand{ID: testCommandID, Status: models.CommandStatusSent}
	store.EXPECT().DequeuePendingCommand(gomock.Any(), testDeviceID, gomock.Any()).Return(want, nil)

	cmd, err := q.Dequeue(context.Background(), testDeviceID)
	require.NoError(t, err)
	assert.Equal(t, want, cmd)
}

func TestMarkStartedNotFound(t *testing.T) {
	q, store := newTestQueue(t)

	store.EXPECT().
		MarkCommandStarted(gomock.Any(), testCommandID, testDeviceID, gomock.Any()).
		Return(db.ErrCommandNotFound)

	err := q.MarkStarted(context.Background(), testCommandID, testDeviceID)
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestSubmitResultZeroExitCompletes(t *testing.T) {
	q, store := newTestQueue(t)

	zero := 0
	store.EXPECT().
		CompleteCommand(gomock.Any(), testCommandID, testDeviceID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, result *models.CommandResult) error {
			assert.Equal(t, models.CommandStatusCompleted, result.Status)
			assert.Equal(t, 0, result.ExitCode)
			require.NotNil(t, result.Output)
			assert.Equal(t, "done", *result.Output)
			assert.Nil(t, result.ErrorMessage)

			return nil
		})

	err := q.SubmitResult(context.Background(), testCommandID, testDeviceID, &models.CommandResultRequest{
		ExitCode: &zero,
		Output:   "done",
	})
	require.NoError(t, err)
}

func TestSubmitResultNonZeroExitFails(t *testing.T) {
	q, store := newTestQueue(t)

	one := 1
	store.EXPECT().
		CompleteCommand(gomock.Any(), testCommandID, testDeviceID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, result *models.CommandResult) error {
			assert.Equal(t, models.CommandStatusFailed, result.Status)
			assert.Equal(t, 1, result.ExitCode)

			return nil
		})

	err := q.SubmitResult(context.Background(), testCommandID, testDeviceID, &models.CommandResultRequest{
		ExitCode: &one,
	})
	require.NoError(t, err)
}

func TestSubmitResultErrorMessageForcesFailed(t *testing.T) {
	q, store := newTestQueue(t)

	// Exit code says success; the error message wins.
	zero := 0
	store.EXPECT().
		CompleteCommand(gomock.Any(), testCommandID, testDeviceID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _, _ string, result *models.CommandResult) error {
			assert.Equal(t, models.CommandStatusFailed, result.Status)
			require.NotNil(t, result.ErrorMessage)
			assert.Equal(t, "script host crashed", *result.ErrorMessage)

			return nil
		})

	err := q.SubmitResult(context.Background(), testCommandID, testDeviceID, &models.CommandResultRequest{
		ExitCode:     &zero,
		ErrorMessage: "script host crashed",
	})
	require.NoError(t, err)
}

func TestSubmitResultMissingExitCodeRejected(t *testing.T) {
	// No store expectation: a result without an exit code never reaches it.
	q, _ := newTestQueue(t)

	err := q.SubmitResult(context.Background(), testCommandID, testDeviceID, &models.CommandResultRequest{
		Output: "partial output",
	})
	assert.ErrorIs(t, err, ErrExitCodeRequired)
}

func TestSubmitResultWrongOwnerLooksLikeNotFound(t *testing.T) {
	q, store := newTestQueue(t)

	store.EXPECT().
		CompleteCommand(gomock.Any(), testCommandID, testDeviceID, gomock.Any()).
		Return(db.ErrCommandNotFound)

	zero := 0
	err := q.SubmitResult(context.Background(), testCommandID, testDeviceID, &models.CommandResultRequest{
		ExitCode: &zero,
	})
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestSubmitResultNotifiesPublisher(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := db.NewMockService(ctrl)
	pub := &recordingPublisher{}
	q := NewQueue(store, pub, logger.NewTestLogger())

	store.EXPECT().CompleteCommand(gomock.Any(), testCommandID, testDeviceID, gomock.Any()).Return(nil)
	store.EXPECT().GetCommand(gomock.Any(), testCommandID).Return(
		&models.DeviceCommand{ID: testCommandID, Status: models.CommandStatusCompleted}, nil)

	zero := 0
	err := q.SubmitResult(context.Background(), testCommandID, testDeviceID, &models.CommandResultRequest{ExitCode: &zero})
	require.NoError(t, err)
	require.NotNil(t, pub.last)
	assert.Equal(t, testCommandID, pub.last.ID)
}

type recordingPublisher struct {
	last *models.DeviceCommand
}

func (p *recordingPublisher) CommandCompleted(_ context.Context, cmd *models.DeviceCommand) {
	p.last = cmd
}

func TestCancelNotFound(t *testing.T) {
	q, store := newTestQueue(t)

	store.EXPECT().CancelCommand(gomock.Any(), testCommandID, gomock.Any()).Return(db.ErrCommandNotFound)

	err := q.Cancel(context.Background(), testCommandID)
	assert.ErrorIs(t, err, ErrCommandNotFound)
}

func TestTruncateOutputShortPassesThrough(t *testing.T) {
	assert.Equal(t, "hello", truncateOutput("hello"))
}

func TestTruncateOutputCapsDeterministically(t *testing.T) {
	big := strings.Repeat("x", maxOutputBytes+500)

	first := truncateOutput(big)
	second := truncateOutput(big)

	assert.Equal(t, first, second)
	assert.Len(t, first, maxOutputBytes)
	assert.True(t, strings.HasSuffix(first, truncationMarker))
}

func TestTruncateOutputExactCapUntouched(t *testing.T) {
	exact := strings.Repeat("y", maxOutputBytes)

	assert.Equal(t, exact, truncateOutput(exact))
}

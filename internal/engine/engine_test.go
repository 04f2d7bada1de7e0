package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"tinker/internal/config"
	"tinker/internal/executor"
	"tinker/internal/protocol"
)

func TestMain(m *testing.M) {
	// opencensus (pulled in transitively by google.golang.org/genai) starts a
	// background worker in its package init that can never be stopped.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

// scriptedModel replays canned decision documents; the last reply repeats.
type scriptedModel struct {
	replies []string
	err     error
	calls   int
}

func (m *scriptedModel) Complete(ctx context.Context, system string, messages []protocol.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	i := m.calls
	if i >= len(m.replies) {
		i = len(m.replies) - 1
	}
	m.calls++
	return m.replies[i], nil
}

type recordingObserver struct {
	decisions []*protocol.Decision
	results   []*protocol.Result
	rejected  []error
}

func (o *recordingObserver) Decision(step int, d *protocol.Decision) {
	o.decisions = append(o.decisions, d)
}

func (o *recordingObserver) Result(step int, d *protocol.Decision, r *protocol.Result) {
	o.results = append(o.results, r)
}

func (o *recordingObserver) Rejected(step int, err error) {
	o.rejected = append(o.rejected, err)
}

func newTestEngine(t *testing.T, model *scriptedModel, obs Observer, maxIterations int) (*Engine, string) {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Execution.Linters = nil
	exec, err := executor.New(root, cfg.Execution, cfg.Scan)
	require.NoError(t, err)

	engCfg := config.EngineConfig{
		MaxIterations: maxIterations,
		StepDelay:     "1ms",
	}
	return New(model, exec, engCfg, obs), root
}

func TestRunWriteThenComplete(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"completed":false,"operation":"write_file","path":"notes/todo.txt","fileContent":"buy milk\n","explanation":"Create the todo list."}`,
		`{"completed":true,"explanation":"The todo list is in place."}`,
	}}
	obs := &recordingObserver{}
	eng, root := newTestEngine(t, model, obs, 10)

	conv := protocol.NewConversation()
	outcome, err := eng.Run(context.Background(), "create a todo list", conv)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Equal(t, 2, outcome.Steps)
	assert.Equal(t, "The todo list is in place.", outcome.Detail)

	data, err := os.ReadFile(filepath.Join(root, "notes", "todo.txt"))
	require.NoError(t, err)
	assert.Equal(t, "buy milk\n", string(data))

	// task, decision, result, final decision
	messages := conv.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, protocol.RoleUser, messages[0].Role)
	assert.Equal(t, protocol.RoleAssistant, messages[1].Role)
	assert.Equal(t, protocol.RoleUser, messages[2].Role)
	assert.Contains(t, messages[2].Content, `"success":true`)
	assert.Equal(t, protocol.RoleAssistant, messages[3].Role)

	require.Len(t, obs.decisions, 2)
	require.Len(t, obs.results, 1)
	assert.True(t, obs.results[0].Success)
	assert.Empty(t, obs.rejected)
}

func TestRunRecoversFromInvalidOutput(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`this is not a decision`,
		`{"completed":true,"explanation":"Nothing to do."}`,
	}}
	obs := &recordingObserver{}
	eng, _ := newTestEngine(t, model, obs, 10)

	conv := protocol.NewConversation()
	outcome, err := eng.Run(context.Background(), "noop task", conv)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Equal(t, 2, outcome.Steps)
	require.Len(t, obs.rejected, 1)

	// The rejection is in the transcript so the model saw what went wrong.
	messages := conv.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, protocol.RoleAssistant, messages[1].Role)
	assert.Equal(t, "this is not a decision", messages[1].Content)
	assert.Equal(t, protocol.RoleUser, messages[2].Role)
	assert.Contains(t, messages[2].Content, "invalid decision")
}

func TestRunFailedResultKeepsLooping(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"completed":false,"operation":"read_file","path":"ghost.txt","explanation":"Check the existing notes."}`,
		`{"completed":true,"explanation":"No notes exist."}`,
	}}
	obs := &recordingObserver{}
	eng, _ := newTestEngine(t, model, obs, 10)

	outcome, err := eng.Run(context.Background(), "summarize notes", protocol.NewConversation())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	require.Len(t, obs.results, 1)
	assert.False(t, obs.results[0].Success)
	assert.Equal(t, "file not found", obs.results[0].Error)
}

func TestRunIterationCap(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"completed":false,"operation":"list_directory","path":"","explanation":"Look around."}`,
	}}
	eng, _ := newTestEngine(t, model, NopObserver{}, 3)

	outcome, err := eng.Run(context.Background(), "never finishes", protocol.NewConversation())
	require.NoError(t, err)

	assert.Equal(t, StatusCappedOut, outcome.Status)
	assert.Equal(t, 3, outcome.Steps)
	assert.Equal(t, 3, model.calls)
}

func TestRunModelUnreachable(t *testing.T) {
	boom := errors.New("api down")
	model := &scriptedModel{err: boom}
	eng, _ := newTestEngine(t, model, NopObserver{}, 5)

	outcome, err := eng.Run(context.Background(), "anything", protocol.NewConversation())
	require.ErrorIs(t, err, boom)

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, 0, outcome.Steps)
	assert.Contains(t, outcome.Detail, "model unreachable")
}

func TestRunCompletedWithFinalOperation(t *testing.T) {
	model := &scriptedModel{replies: []string{
		`{"completed":true,"operation":"write_file","path":"done.txt","fileContent":"done\n","explanation":"Write the marker and finish."}`,
	}}
	eng, root := newTestEngine(t, model, NopObserver{}, 5)

	outcome, err := eng.Run(context.Background(), "write a marker", protocol.NewConversation())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, outcome.Status)
	assert.Equal(t, 1, outcome.Steps)
	_, statErr := os.Stat(filepath.Join(root, "done.txt"))
	assert.NoError(t, statErr)
}

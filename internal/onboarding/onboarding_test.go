package onboarding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/architect/internal/models"
)

type recordingSink struct {
	calls   int
	answers map[models.QuestionID]string
	err     error
}

func (s *recordingSink) CompleteOnboarding(_ context.Context, answers map[models.QuestionID]string) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.answers = answers
	return nil
}

var sevenAnswers = []string{"Sam", "busywork", "my commute", "same desk", "building boats", "finishes things", "ship the product"}

func TestSubmitAllAnswers(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	m := New(sink)

	for i, a := range sevenAnswers {
		step, total := m.Progress()
		assert.Equal(t, i+1, step)
		assert.Equal(t, 7, total)

		advanced, err := m.Submit(ctx, a)
		require.NoError(t, err)
		assert.True(t, advanced)
	}

	assert.True(t, m.Complete())
	assert.Equal(t, 1, sink.calls)
	require.Len(t, sink.answers, 7)
	assert.Equal(t, "Sam", sink.answers[models.QuestionName])
	assert.Equal(t, "ship the product", sink.answers[models.QuestionBiggestGoal])
	for id := range sink.answers {
		assert.True(t, models.IsQuestionID(id))
	}

	_, ok := m.Current()
	assert.False(t, ok)
	step, total := m.Progress()
	assert.Equal(t, total, step)
	assert.Equal(t, 1.0, m.Percent())
}

func TestBlankAnswerIsNoop(t *testing.T) {
	ctx := context.Background()
	m := New(&recordingSink{})

	for _, blank := range []string{"", "   ", "\n\t"} {
		advanced, err := m.Submit(ctx, blank)
		require.NoError(t, err)
		assert.False(t, advanced)
	}

	q, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, models.QuestionName, q.ID)
	assert.Empty(t, m.Answers())

	_, err := m.Submit(ctx, "Sam")
	require.NoError(t, err)
	_, err = m.Submit(ctx, "  ")
	require.NoError(t, err)

	q, _ = m.Current()
	assert.Equal(t, models.QuestionDissatisfaction, q.ID)
	assert.Len(t, m.Answers(), 1)
}

func TestSinkFailureKeepsLastQuestion(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{err: errors.New("store down")}
	m := New(sink)

	for _, a := range sevenAnswers[:6] {
		_, err := m.Submit(ctx, a)
		require.NoError(t, err)
	}
	advanced, err := m.Submit(ctx, sevenAnswers[6])
	require.Error(t, err)
	assert.False(t, advanced)
	assert.False(t, m.Complete())

	q, ok := m.Current()
	require.True(t, ok)
	assert.Equal(t, models.QuestionBiggestGoal, q.ID)

	sink.err = nil
	advanced, err = m.Submit(ctx, sevenAnswers[6])
	require.NoError(t, err)
	assert.True(t, advanced)
	assert.True(t, m.Complete())
	assert.Equal(t, 2, sink.calls)
}

func TestSubmitAfterCompleteIsNoop(t *testing.T) {
	ctx := context.Background()
	sink := &recordingSink{}
	m := New(sink)
	for _, a := range sevenAnswers {
		_, _ = m.Submit(ctx, a)
	}

	advanced, err := m.Submit(ctx, "extra")
	require.NoError(t, err)
	assert.False(t, advanced)
	assert.Equal(t, 1, sink.calls)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	m := New(nil)
	for _, a := range sevenAnswers {
		_, err := m.Submit(ctx, a)
		require.NoError(t, err)
	}
	require.True(t, m.Complete())

	m.Reset()

	assert.False(t, m.Complete())
	assert.Empty(t, m.Answers())
	step, _ := m.Progress()
	assert.Equal(t, 1, step)
}

func TestAnswersReturnsCopy(t *testing.T) {
	m := New(nil)
	_, _ = m.Submit(context.Background(), "Sam")

	a := m.Answers()
	a[models.QuestionName] = "mutated"
	assert.Equal(t, "Sam", m.Answers()[models.QuestionName])
}

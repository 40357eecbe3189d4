package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

type fakePublisher struct {
	events []BuildEvent
	err    error
}

func (f *fakePublisher) Publish(_ context.Context, ev BuildEvent) error {
	f.events = append(f.events, ev)
	return f.err
}

func (f *fakePublisher) Close() error { return nil }

func finishedReport() *pipeline.BuildReport {
	bc := pipeline.BuildContext{Profile: config.ProfileProd, Env: config.EnvQA, BuildID: "b-42"}
	r := pipeline.NewBuildReport(bc)
	r.RecordStep(pipeline.ClassifyStepResult(pipeline.StepCopyFonts, nil), time.Millisecond, pipeline.StepStats{FilesWritten: 3}, nil)
	r.RecordStep(pipeline.ClassifyStepResult(pipeline.StepCopyDocs, errors.New("disk full")), time.Millisecond, pipeline.StepStats{}, nil)
	r.Finish()
	return r
}

func TestEventFromReport(t *testing.T) {
	ev := EventFromReport(finishedReport())
	assert.Equal(t, "b-42", ev.BuildID)
	assert.Equal(t, "prod", ev.Profile)
	assert.Equal(t, "QA", ev.Env)
	assert.Equal(t, "failed", ev.Outcome)
	assert.Equal(t, 3, ev.FilesWritten)
	assert.Equal(t, []string{"copy-docs", "copy-fonts"}, ev.Steps)
	require.Len(t, ev.Errors, 1)
	assert.Contains(t, ev.Errors[0], "disk full")
}

func TestObserverPublishes(t *testing.T) {
	pub := &fakePublisher{}
	Observer{Publisher: pub}.OnBuildComplete(finishedReport())
	require.Len(t, pub.events, 1)
	assert.Equal(t, "b-42", pub.events[0].BuildID)

	pub.err = errors.New("no responders")
	assert.NotPanics(t, func() { Observer{Publisher: pub}.OnBuildComplete(finishedReport()) })
	assert.NotPanics(t, func() { Observer{}.OnBuildComplete(finishedReport()) })
}

func TestNewNATSPublisherRequiresURL(t *testing.T) {
	_, err := NewNATSPublisher(config.NotifyConfig{Subject: "assetbuilder.events"})
	require.Error(t, err)
}

func TestNewNATSPublisherUnreachable(t *testing.T) {
	_, err := NewNATSPublisher(config.NotifyConfig{NATSURL: "nats://127.0.0.1:1", Subject: "x"})
	require.Error(t, err)
}

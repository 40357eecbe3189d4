// Package notify publishes build results to NATS so other tools (a live
// reload proxy, a chat bot, a deploy hook) can react to finished builds.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
	"git.home.luguber.info/inful/assetbuilder/internal/logfields"
	"git.home.luguber.info/inful/assetbuilder/internal/pipeline"
)

// BuildEvent is the JSON document published after each build or rerun.
type BuildEvent struct {
	BuildID      string    `json:"build_id"`
	Profile      string    `json:"profile"`
	Env          string    `json:"env"`
	Outcome      string    `json:"outcome"`
	Steps        []string  `json:"steps"`
	FilesWritten int       `json:"files_written"`
	Errors       []string  `json:"errors,omitempty"`
	Warnings     int       `json:"warnings"`
	Start        time.Time `json:"start"`
	DurationMS   int64     `json:"duration_ms"`
}

// EventFromReport summarizes a finished report.
func EventFromReport(r *pipeline.BuildReport) BuildEvent {
	ev := BuildEvent{
		BuildID:      r.BuildID,
		Profile:      string(r.Profile),
		Env:          string(r.Env),
		Outcome:      string(r.Outcome),
		FilesWritten: r.TotalFiles(),
		Warnings:     len(r.Warnings),
		Start:        r.Start,
		DurationMS:   r.End.Sub(r.Start).Milliseconds(),
	}
	for _, s := range r.Steps() {
		ev.Steps = append(ev.Steps, string(s))
	}
	for _, err := range r.Errors {
		ev.Errors = append(ev.Errors, err.Error())
	}
	return ev
}

// Publisher delivers build events.
type Publisher interface {
	Publish(ctx context.Context, ev BuildEvent) error
	Close() error
}

// NATSPublisher publishes events on a core NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
}

// NewNATSPublisher connects to cfg.NATSURL.
func NewNATSPublisher(cfg config.NotifyConfig) (*NATSPublisher, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("notify.nats_url is not set")
	}
	conn, err := nats.Connect(cfg.NATSURL,
		nats.Name("assetbuilder"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(10))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS publisher connected", "url", cfg.NATSURL, "subject", cfg.Subject)
	return &NATSPublisher{conn: conn, subject: cfg.Subject}, nil
}

// Publish sends ev and waits until the server has received it.
func (p *NATSPublisher) Publish(ctx context.Context, ev BuildEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	slog.Debug("Published build event", logfields.BuildID(ev.BuildID), logfields.Result(ev.Outcome))
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

// Observer publishes an event whenever a build completes.
type Observer struct {
	pipeline.NoopObserver
	Publisher Publisher
	Timeout   time.Duration
}

// OnBuildComplete publishes the report. Failures are logged, never fatal.
func (o Observer) OnBuildComplete(r *pipeline.BuildReport) {
	if o.Publisher == nil {
		return
	}
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := o.Publisher.Publish(ctx, EventFromReport(r)); err != nil {
		slog.Warn("Build event not published", logfields.BuildID(r.BuildID), logfields.Error(err))
	}
}

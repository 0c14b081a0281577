// Package artifact persists trip plans as timestamped text files.
package artifact

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bububa/trip-planner/planner"
)

const (
	TimestampLayout   = "20060102_150405"
	GeneratedAtLayout = "2006-01-02 15:04:05"
)

var nameReplacer = strings.NewReplacer(",", "", " ", "_", "/", "", "\\", "", "\x00", "")

// Filename returns trip_plan_<destination>_<YYYYmmdd_HHMMSS>.txt. Commas and
// path separators are dropped from the destination, spaces become underscores.
func Filename(destination string, t time.Time) string {
	return fmt.Sprintf("trip_plan_%s_%s.txt", nameReplacer.Replace(strings.TrimSpace(destination)), t.Format(TimestampLayout))
}

// Render returns the artifact content of plan
func Render(plan *planner.Plan) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Trip Plan for %s\n", plan.Trip.Destination)
	fmt.Fprintf(&buf, "Generated on: %s\n", plan.GeneratedAt.Format(GeneratedAtLayout))
	buf.WriteString(strings.Repeat("=", 60))
	buf.WriteString("\n\n")
	buf.WriteString(strings.TrimSpace(plan.Itinerary))
	buf.WriteString("\n\n")
	buf.WriteString(strings.Repeat("-", 60))
	buf.WriteString("\nPlanning notes\n")
	fmt.Fprintf(&buf, "- Plan ID: %s\n", plan.ID)
	fmt.Fprintf(&buf, "- Mode: %s\n", plan.Mode)
	for _, step := range plan.Steps {
		fmt.Fprintf(&buf, "- %s (%s): %s", step.Task, step.Agent, step.Status)
		if step.Reason != nil {
			fmt.Fprintf(&buf, ", %v", step.Reason)
		}
		buf.WriteString("\n")
		for _, src := range step.Sources {
			fmt.Fprintf(&buf, "  - %s\n", src)
		}
	}
	if total := plan.Usage.Total(); total > 0 {
		fmt.Fprintf(&buf, "- Tokens: %d input, %d output\n", plan.Usage.InputTokens, plan.Usage.OutputTokens)
	}
	return buf.Bytes()
}

// Store saves an artifact under name and returns where it went
type Store interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
}

// Artifact is a written plan
type Artifact struct {
	Name     string
	Location string
	// Mirrors are the locations of successful mirror copies
	Mirrors []string
	Content []byte
}

type WriterOption func(*Writer)

// WithMirrors adds stores that receive a best effort copy
func WithMirrors(stores ...Store) WriterOption {
	return func(w *Writer) {
		w.mirrors = append(w.mirrors, stores...)
	}
}

func WithLogger(l *slog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = l
	}
}

// Writer writes plans to a primary store and optional mirrors
type Writer struct {
	primary Store
	mirrors []Store
	logger  *slog.Logger
}

func NewWriter(primary Store, opts ...WriterOption) *Writer {
	w := &Writer{primary: primary}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w
}

// Write saves plan. Only a primary store failure is returned.
func (w *Writer) Write(ctx context.Context, plan *planner.Plan) (*Artifact, error) {
	ret := &Artifact{
		Name:    Filename(plan.Trip.Destination, plan.GeneratedAt),
		Content: Render(plan),
	}
	location, err := w.primary.Save(ctx, ret.Name, ret.Content)
	if err != nil {
		return nil, fmt.Errorf("write artifact %s: %w", ret.Name, err)
	}
	ret.Location = location
	for _, m := range w.mirrors {
		loc, err := m.Save(ctx, ret.Name, ret.Content)
		if err != nil {
			w.logger.WarnContext(ctx, "artifact mirror failed", slog.String("name", ret.Name), slog.Any("error", err))
			continue
		}
		ret.Mirrors = append(ret.Mirrors, loc)
	}
	return ret, nil
}

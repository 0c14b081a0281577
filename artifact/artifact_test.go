package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bububa/trip-planner/agents"
	"github.com/bububa/trip-planner/components"
	"github.com/bububa/trip-planner/config"
	"github.com/bububa/trip-planner/planner"
)

var generatedAt = time.Date(2026, 3, 15, 8, 4, 5, 0, time.UTC)

func testPlan() *planner.Plan {
	return &planner.Plan{
		ID:          "6f1c",
		Trip:        planner.TripDetails{Destination: "Paris, France"},
		Mode:        config.Enhanced,
		GeneratedAt: generatedAt,
		Itinerary:   "## Day 1\nLouvre\n",
		Steps: []agents.StepResult{
			{Task: "research", Agent: "Travel Research Specialist", Status: agents.StepDegraded, Reason: fmt.Errorf("%w: serper: unauthorized", agents.ErrSearchUnavailable)},
			{Task: "local_experiences", Agent: "Local Experience Curator", Status: agents.StepGrounded, Sources: []string{"https://example.com/paris"}},
			{Task: "itinerary", Agent: "Travel Itinerary Planner", Status: agents.StepLLMOnly},
		},
		Usage: components.LLMUsage{InputTokens: 120, OutputTokens: 30},
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "trip_plan_Paris_France_20260315_080405.txt", Filename("Paris, France", generatedAt))
	assert.Equal(t, "trip_plan_New_York_20260315_080405.txt", Filename(" New York ", generatedAt))
	assert.Equal(t, "trip_plan_..etc_passwd_20260315_080405.txt", Filename("../etc /passwd", generatedAt))
}

func TestRender(t *testing.T) {
	content := string(Render(testPlan()))
	assert.True(t, strings.HasPrefix(content, "Trip Plan for Paris, France\nGenerated on: 2026-03-15 08:04:05\n"+strings.Repeat("=", 60)+"\n\n## Day 1\nLouvre\n\n"))
	assert.Contains(t, content, "- Mode: enhanced\n")
	assert.Contains(t, content, "- research (Travel Research Specialist): degraded, search unavailable: serper: unauthorized\n")
	assert.Contains(t, content, "- local_experiences (Local Experience Curator): grounded\n  - https://example.com/paris\n")
	assert.Contains(t, content, "- itinerary (Travel Itinerary Planner): llm-only\n")
	assert.Contains(t, content, "- Tokens: 120 input, 30 output\n")
}

func TestFileStoreWriteOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plans")
	store, err := NewFileStore(dir)
	require.NoError(t, err)

	loc, err := store.Save(context.Background(), "plan.txt", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plan.txt"), loc)

	_, err = store.Save(context.Background(), "plan.txt", []byte("second"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrExist)
	bs, err := os.ReadFile(loc)
	require.NoError(t, err)
	assert.Equal(t, "first", string(bs))

	_, err = store.Save(context.Background(), "../escape.txt", nil)
	assert.Error(t, err)
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  string
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	bs, _ := io.ReadAll(in.Body)
	f.body = string(bs)
	return &s3.PutObjectOutput{}, nil
}

func TestWriter(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	mirror := new(fakeS3)
	broken := &fakeS3{err: errors.New("access denied")}
	w := NewWriter(store, WithMirrors(NewS3Store(mirror, "plans-bucket", "trip-plans/"), NewS3Store(broken, "other", "")))

	art, err := w.Write(context.Background(), testPlan())
	require.NoError(t, err)
	assert.Equal(t, "trip_plan_Paris_France_20260315_080405.txt", art.Name)
	assert.Equal(t, filepath.Join(store.Dir(), art.Name), art.Location)
	assert.Equal(t, []string{"s3://plans-bucket/trip-plans/trip_plan_Paris_France_20260315_080405.txt"}, art.Mirrors)

	bs, err := os.ReadFile(art.Location)
	require.NoError(t, err)
	assert.Equal(t, art.Content, bs)
	assert.Equal(t, string(art.Content), mirror.body)
	assert.Equal(t, "plans-bucket", aws.ToString(mirror.input.Bucket))
	assert.Equal(t, "trip-plans/trip_plan_Paris_France_20260315_080405.txt", aws.ToString(mirror.input.Key))

	_, err = w.Write(context.Background(), testPlan())
	assert.Error(t, err, "same timestamp must not overwrite")
}

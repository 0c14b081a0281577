package agents

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"text/template"
)

// Task is a unit of work assigned to an agent. Description, ExpectedOutput
// and Queries are text/template sources rendered with the crew input.
type Task struct {
	Name           string
	Description    string
	ExpectedOutput string
	Agent          TaskAgent
	// Context names earlier tasks whose output the agent receives
	Context []string
	// Queries are web searches run before the agent in enhanced mode
	Queries []string
	// Researcher overrides the crew's researcher for this task
	Researcher Researcher
}

// Validate checks the task is runnable
func (t Task) Validate() error {
	if t.Name == "" {
		return errors.New("task name is required")
	}
	if t.Agent == nil {
		return fmt.Errorf("task %s: agent is required", t.Name)
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("task %s: description is required", t.Name)
	}
	return nil
}

// Prompt renders the user prompt of the task
func (t Task) Prompt(data any) (string, error) {
	desc, err := render(t.Name+".description", t.Description, data)
	if err != nil {
		return "", err
	}
	if t.ExpectedOutput == "" {
		return desc, nil
	}
	expected, err := render(t.Name+".expected_output", t.ExpectedOutput, data)
	if err != nil {
		return "", err
	}
	return desc + "\n\nExpected output:\n" + expected, nil
}

// RenderQueries renders the search queries, dropping empty ones
func (t Task) RenderQueries(data any) ([]string, error) {
	queries := make([]string, 0, len(t.Queries))
	for idx, q := range t.Queries {
		v, err := render(fmt.Sprintf("%s.query.%d", t.Name, idx), q, data)
		if err != nil {
			return nil, err
		}
		if v = strings.Join(strings.Fields(v), " "); v != "" {
			queries = append(queries, v)
		}
	}
	return queries, nil
}

func render(name string, text string, data any) (string, error) {
	tpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

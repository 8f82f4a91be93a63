package operations

import "context"

// Stage is one unit of pipeline work. Run must honor ctx cancellation
// on any long-running loop and return the first error it cannot
// recover from.
type Stage interface {
	Name() string
	Run(ctx context.Context) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context) error
}

func (s StageFunc) Name() string { return s.StageName }

func (s StageFunc) Run(ctx context.Context) error { return s.Fn(ctx) }

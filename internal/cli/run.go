package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/aretw0/carepath/pkg/domain"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	PathwayID string
	SessionID string
	// History is raw JSON, e.g. {"age": 4, "penicillinAllergy": true}.
	History string
	Debug   bool
	Logger  *slog.Logger
}

// ParseHistory decodes and validates a patient history given as JSON.
// Unknown fields are rejected so typos do not silently become "unknown".
func ParseHistory(raw string) (domain.PatientHistory, error) {
	var h domain.PatientHistory
	if raw == "" {
		return h, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&h); err != nil {
		return h, fmt.Errorf("error parsing --history JSON: %w", err)
	}
	if err := validator.New().Struct(h); err != nil {
		return h, fmt.Errorf("invalid --history: %w", err)
	}
	return h, nil
}

// Execute runs one consultation on the console.
func Execute(ctx context.Context, engine Engine, opts RunOptions, in io.Reader, out io.Writer, sessionOpts ...SessionOption) error {
	history, err := ParseHistory(opts.History)
	if err != nil {
		return err
	}
	if opts.Logger != nil {
		sessionOpts = append(sessionOpts, WithSessionLogger(opts.Logger))
	}

	session := NewSession(engine, in, out, sessionOpts...)
	_, err = session.Run(ctx, opts.PathwayID, opts.SessionID, history)
	if err != nil && isInterrupted(err) {
		fmt.Fprintln(out)
		printSystemMessage(out, "Interrupted.")
	}
	return handleExecutionError(err)
}

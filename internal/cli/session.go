package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/aretw0/carepath/internal/logging"
	"github.com/aretw0/carepath/internal/presentation/graph"
	"github.com/aretw0/carepath/internal/presentation/tui"
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/news2"
)

// Engine is what a console consultation needs. *carepath.Engine satisfies it.
type Engine interface {
	Pathway(ctx context.Context, id string) (*domain.Pathway, error)
	Start(ctx context.Context, pathwayID, sessionID string, history domain.PatientHistory) (*domain.Cursor, error)
	Render(ctx context.Context, c *domain.Cursor) (*domain.View, error)
	Advance(ctx context.Context, c *domain.Cursor, answer any) (*domain.Cursor, error)
	Score(p news2.Parameters) news2.Result
}

// errCancelled aborts a NEWS2 dialogue without leaving the consultation.
var errCancelled = errors.New("cancelled")

// Session drives one interactive consultation over a line-oriented console.
type Session struct {
	engine  Engine
	lines   *lineReader
	out     io.Writer
	render  func(string) (string, error)
	profile termenv.Profile
	logger  *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStyled renders markdown through glamour and colours NEWS2 risk bands.
func WithStyled(profile termenv.Profile) SessionOption {
	return func(s *Session) {
		s.render = tui.NewRenderer(true)
		s.profile = profile
	}
}

// WithSessionLogger sets the session logger.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a console session reading answers from in.
func NewSession(engine Engine, in io.Reader, out io.Writer, opts ...SessionOption) *Session {
	s := &Session{
		engine:  engine,
		lines:   newLineReader(in),
		out:     out,
		render:  tui.NewRenderer(false),
		profile: termenv.Ascii,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run consults pathwayID until a terminal node, a quit command or end of input.
// It returns the last cursor reached.
func (s *Session) Run(ctx context.Context, pathwayID, sessionID string, history domain.PatientHistory) (*domain.Cursor, error) {
	start := func() (*domain.Cursor, error) {
		return s.engine.Start(ctx, pathwayID, sessionID, history)
	}
	cursor, err := start()
	if err != nil {
		return nil, err
	}
	sessionID = cursor.SessionID
	s.logger.Info("Session Created", "session_id", sessionID, "pathway", pathwayID)

	// trail holds earlier cursors for "back". Cursors are immutable, so undo is a pop.
	var trail []*domain.Cursor
	for {
		if err := ctx.Err(); err != nil {
			return cursor, err
		}

		view, err := s.engine.Render(ctx, cursor)
		if errors.Is(err, domain.ErrUnknownNode) {
			// The document changed under us and the node is gone.
			printSystemMessage(s.out, "Node '%s' no longer exists, restarting.", cursor.CurrentNodeID)
			if cursor, err = start(); err != nil {
				return nil, err
			}
			trail = nil
			continue
		}
		if err != nil {
			return cursor, err
		}
		s.show(view)
		if view.Terminal {
			printSystemMessage(s.out, "Finished at '%s' node.", cursor.CurrentNodeID)
			return cursor, nil
		}

		s.prompt(view.Prompt)
		line, err := s.lines.next(ctx)
		if err != nil {
			return cursor, err
		}

		cmd := parseCommand(line, view.Prompt)
		switch cmd.kind {
		case cmdQuit:
			printSystemMessage(s.out, "Stopped at '%s' node.", cursor.CurrentNodeID)
			return cursor, nil
		case cmdHelp:
			fmt.Fprintln(s.out, helpText)
		case cmdBack:
			if len(trail) == 0 {
				printSystemMessage(s.out, "Already at the first question.")
				continue
			}
			cursor, trail = trail[len(trail)-1], trail[:len(trail)-1]
		case cmdRestart:
			if cursor, err = start(); err != nil {
				return nil, err
			}
			trail = nil
		case cmdNEWS2:
			if err := s.news2(ctx); err != nil && !errors.Is(err, errCancelled) {
				return cursor, err
			}
		case cmdGraph:
			p, err := s.engine.Pathway(ctx, cursor.PathwayID)
			if err != nil {
				return cursor, err
			}
			fmt.Fprint(s.out, graph.GenerateMermaid(p, graph.OverlayFromCursor(cursor)))
		case cmdAnswer:
			next, err := s.engine.Advance(ctx, cursor, cmd.answer)
			if errors.Is(err, domain.ErrMalformedPathway) || errors.Is(err, domain.ErrPathwayNotFound) {
				return cursor, err
			}
			if err != nil {
				s.logger.Debug("Answer rejected", "node", cursor.CurrentNodeID, "error", err)
				printSystemMessage(s.out, "Answer not accepted: %v", err)
				continue
			}
			trail = append(trail, cursor)
			cursor = next
		}
	}
}

func (s *Session) show(view *domain.View) {
	out, err := s.render(tui.ViewMarkdown(view))
	if err != nil {
		s.logger.Warn("Markdown render failed", "error", err)
		out = tui.ViewMarkdown(view)
	}
	fmt.Fprint(s.out, out)
}

func (s *Session) prompt(p *domain.Prompt) {
	switch {
	case p == nil:
	case p.Style == domain.StyleBinary:
		fmt.Fprint(s.out, "[y/n] ")
	case p.Style == domain.StyleChild:
		fmt.Fprint(s.out, "[Enter to continue] ")
	default:
		fmt.Fprintf(s.out, "[1-%d] ", len(p.Options))
	}
	fmt.Fprint(s.out, "> ")
}

// news2 collects one set of observations, scores them and prints the result.
func (s *Session) news2(ctx context.Context) error {
	printSystemMessage(s.out, "NEWS2 assessment. Type 'cancel' to return.")
	var (
		p   news2.Parameters
		err error
	)
	if p.RespiratoryRate, err = s.askInt(ctx, "Respiratory rate (breaths/min)"); err != nil {
		return err
	}
	if p.OxygenSaturation, err = s.askInt(ctx, "SpO2 (%)"); err != nil {
		return err
	}
	scale, err := s.ask(ctx, "SpO2 scale, 1 or 2 (hypercapnic) [1]")
	if err != nil {
		return err
	}
	p.OxygenScale = news2.ScaleStandard
	if strings.TrimSpace(scale) == "2" {
		p.OxygenScale = news2.ScaleHypercapnic
	}
	oxygen, err := s.ask(ctx, "On supplemental oxygen? [y/N]")
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(oxygen)) {
	case "y", "yes":
		p.SupplementalOxygen = true
	}
	if p.Temperature, err = s.askFloat(ctx, "Temperature (C)"); err != nil {
		return err
	}
	if p.SystolicBP, err = s.askInt(ctx, "Systolic BP (mmHg)"); err != nil {
		return err
	}
	if p.HeartRate, err = s.askInt(ctx, "Heart rate (bpm)"); err != nil {
		return err
	}
	level, err := s.ask(ctx, "Consciousness, A C V P or U")
	if err != nil {
		return err
	}
	p.Consciousness = news2.ParseConsciousness(level)

	fmt.Fprintln(s.out, tui.FormatNEWS2(s.engine.Score(p), s.profile))
	return nil
}

func (s *Session) ask(ctx context.Context, label string) (string, error) {
	fmt.Fprintf(s.out, "%s: ", label)
	line, err := s.lines.next(ctx)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(strings.TrimSpace(line), "cancel") {
		return "", errCancelled
	}
	return line, nil
}

func (s *Session) askInt(ctx context.Context, label string) (int, error) {
	for {
		line, err := s.ask(ctx, label)
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(strings.TrimSpace(line)); err == nil && n >= 0 {
			return n, nil
		}
		printSystemMessage(s.out, "Enter a whole number.")
	}
}

func (s *Session) askFloat(ctx context.Context, label string) (float64, error) {
	for {
		line, err := s.ask(ctx, label)
		if err != nil {
			return 0, err
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(line), 64); err == nil && f >= 0 {
			return f, nil
		}
		printSystemMessage(s.out, "Enter a number.")
	}
}

// lineReader pumps lines from a blocking reader so callers can give up on ctx.
type lineReader struct {
	lines chan string
	errc  chan error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan string), errc: make(chan error, 1)}
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			lr.lines <- sc.Text()
		}
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		lr.errc <- err
	}()
	return lr
}

func (lr *lineReader) next(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line := <-lr.lines:
		return line, nil
	case err := <-lr.errc:
		// Keep the terminal error for later calls.
		lr.errc <- err
		return "", err
	}
}

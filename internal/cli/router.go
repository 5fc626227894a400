package cli

import (
	"strconv"
	"strings"

	"github.com/aretw0/carepath/pkg/domain"
)

type commandKind int

const (
	cmdAnswer commandKind = iota
	cmdQuit
	cmdHelp
	cmdBack
	cmdRestart
	cmdNEWS2
	cmdGraph
)

// command is one parsed line of console input.
type command struct {
	kind   commandKind
	answer any
}

// commandMappings owns the console's reserved words. Everything else is an answer.
var commandMappings = map[string]commandKind{
	"q":       cmdQuit,
	"quit":    cmdQuit,
	"exit":    cmdQuit,
	"?":       cmdHelp,
	"help":    cmdHelp,
	"back":    cmdBack,
	"restart": cmdRestart,
	"news2":   cmdNEWS2,
	"graph":   cmdGraph,
}

const helpText = `Commands:
  <answer>   yes/no (y/n), an option number, or an option label
  back       undo the last answer
  restart    start the pathway again
  news2      score a set of observations
  graph      print the pathway as a Mermaid chart with your position
  q, quit    leave the consultation`

// parseCommand maps a console line onto a command for the current prompt.
// Option numbers are one-based on screen and zero-based in the engine.
func parseCommand(line string, prompt *domain.Prompt) command {
	text := strings.TrimSpace(line)
	if kind, ok := commandMappings[strings.ToLower(text)]; ok {
		return command{kind: kind}
	}
	if prompt == nil {
		return command{kind: cmdAnswer, answer: text}
	}

	switch prompt.Style {
	case domain.StyleChild:
		return command{kind: cmdAnswer}
	case domain.StyleBinary:
		switch strings.ToLower(text) {
		case "y", "1":
			return command{kind: cmdAnswer, answer: "yes"}
		case "n", "2":
			return command{kind: cmdAnswer, answer: "no"}
		}
	case domain.StyleChoices, domain.StyleOptions:
		if n, err := strconv.Atoi(text); err == nil && n >= 1 && n <= len(prompt.Options) {
			return command{kind: cmdAnswer, answer: n - 1}
		}
	}
	return command{kind: cmdAnswer, answer: text}
}

package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/carepath/pkg/domain"
)

func TestParseCommand(t *testing.T) {
	binary := &domain.Prompt{Style: domain.StyleBinary, Options: []string{"yes", "no"}}
	options := &domain.Prompt{Style: domain.StyleOptions, Options: []string{"Intact", "Perforated"}}
	child := &domain.Prompt{Style: domain.StyleChild}

	tests := []struct {
		name   string
		line   string
		prompt *domain.Prompt
		want   command
	}{
		{"Quit", " Quit ", binary, command{kind: cmdQuit}},
		{"NEWS2 escape hatch", "news2", options, command{kind: cmdNEWS2}},
		{"Back", "back", options, command{kind: cmdBack}},
		{"Binary shorthand", "Y", binary, command{kind: cmdAnswer, answer: "yes"}},
		{"Binary number", "2", binary, command{kind: cmdAnswer, answer: "no"}},
		{"Binary word passes through", "No", binary, command{kind: cmdAnswer, answer: "No"}},
		{"Option number is zero-based", "2", options, command{kind: cmdAnswer, answer: 1}},
		{"Out of range number is a label", "3", options, command{kind: cmdAnswer, answer: "3"}},
		{"Option label", "intact", options, command{kind: cmdAnswer, answer: "intact"}},
		{"Child ignores input", "anything", child, command{kind: cmdAnswer}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseCommand(tt.line, tt.prompt))
		})
	}
}

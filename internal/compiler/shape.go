package compiler

import (
	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/schema"
)

var stringList = schema.Optional(schema.Slice(schema.String()))

var documentShape = schema.Schema{
	"pathway": schema.String(),
	"metadata": schema.Object(schema.Schema{
		"version":       schema.Optional(schema.String()),
		"lastUpdated":   schema.Optional(schema.String()),
		"sources":       stringList,
		"niceGuideline": schema.Optional(schema.String()),
	}),
	"notes":        stringList,
	"decisionTree": schema.Object(nil),
	"pgds":         schema.Optional(schema.Object(nil)),
	"selfCareAndSafetyNetting": schema.Optional(schema.Object(schema.Schema{
		"selfCare":  stringList,
		"education": stringList,
		"safetyNet": stringList,
		"referral":  stringList,
	})),
}

var nodeHeader = schema.Schema{
	domain.KeyID:   schema.String(),
	domain.KeyType: schema.Enum(string(domain.KindDecision), string(domain.KindAction), string(domain.KindTreatment)),
	"title":        schema.Optional(schema.String()),
}

var branchShape = schema.Object(schema.Schema{
	domain.KeyLabel: schema.String(),
	domain.KeyNext:  schema.Object(nil),
})

var nodeShapes = map[domain.NodeKind]schema.Schema{
	domain.KindDecision: {
		"question":        schema.Optional(schema.String()),
		"details":         schema.Optional(schema.Any()),
		"additional":      schema.Optional(schema.Any()),
		domain.KeyYes:     schema.Optional(schema.Object(nil)),
		domain.KeyNo:      schema.Optional(schema.Object(nil)),
		domain.KeyChoices: schema.Optional(schema.Slice(branchShape)),
		domain.KeyOptions: schema.Optional(schema.Slice(branchShape)),
		domain.KeyChild:   schema.Optional(schema.Object(nil)),
	},
	domain.KindAction: {
		"actions":   stringList,
		"safetyNet": schema.Optional(schema.Bool()),
	},
	domain.KindTreatment: {
		"drug":             schema.Optional(schema.String()),
		"durationDays":     schema.Optional(schema.Int()),
		"dose":             schema.Optional(schema.Any()),
		"formulations":     stringList,
		"route":            schema.Optional(schema.String()),
		"legalCategory":    schema.Optional(schema.String()),
		"plus":             stringList,
		"followUp":         schema.Optional(schema.String()),
		"safetyNet":        schema.Optional(schema.Bool()),
		"referralIfWorsen": schema.Optional(schema.Bool()),
		domain.KeyInherits: schema.Optional(schema.String()),
	},
}

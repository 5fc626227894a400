package domain

// Document keys shared by the compiler and presentation code.
const (
	KeyID       = "id"
	KeyType     = "type"
	KeyTitle    = "title"
	KeyInherits = "inherits"

	KeyYes     = "yes"
	KeyNo      = "no"
	KeyChoices = "choices"
	KeyOptions = "options"
	KeyChild   = "child"

	KeyLabel = "label"
	KeyNext  = "next"
)

// Labels assigned to the two canonical branches of a binary decision.
const (
	LabelYes = "yes"
	LabelNo  = "no"
)

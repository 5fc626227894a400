/*
Package carepath guides a clinician through a structured clinical consultation.

It walks a pre-authored decision tree for a named condition pathway, collecting patient
findings at each branch, until it reaches either an action (self-care or referral advice)
or a treatment recommendation (drug, dose, duration). Alongside the pathway it offers the
NEWS2 physiological deterioration score, whose red-flag override can escalate the
pathway's own risk framing.

# Concept

A pathway document is a nested tree of decision, action and treatment nodes. Decisions
encode their branches as yes/no, labelled choices, labelled options or a single child,
and treatments may inherit unset fields from a sibling treatment. Documents are compiled
once into an immutable arena shared by every consultation; each consultation owns only
a small cursor.

# Usage

	eng, err := carepath.New(ctx)
	if err != nil {
		log.Fatal(err)
	}

	cursor, err := eng.Start(ctx, "acute-otitis-media", "", domain.PatientHistory{})
	if err != nil {
		log.Fatal(err)
	}

	for !cursor.Terminated {
		view, _ := eng.Render(ctx, cursor)
		fmt.Println(view.Prompt.Question, view.Prompt.Options)

		next, err := eng.Advance(ctx, cursor, readAnswer())
		if err != nil {
			fmt.Println(err) // the cursor is unchanged, ask again
			continue
		}
		cursor = next
	}

	result := eng.Score(news2.Parameters{RespiratoryRate: 22, OxygenScale: news2.ScaleStandard})
	fmt.Println(result.ClinicalRisk)
*/
package carepath

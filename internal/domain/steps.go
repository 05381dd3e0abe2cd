package domain

// Step is one stage of the story creation wizard.
type Step string

const (
	StepUpload            Step = "upload"
	StepAnalyzing         Step = "analyzing"
	StepReview            Step = "review"
	StepTranslate         Step = "translate"
	StepTranslationReview Step = "translation_review"
	StepAudio             Step = "audio"
	StepFinalize          Step = "finalize"
)

// stepOrder fixes the wizard progression; ordinals are indexes into it.
var stepOrder = []Step{
	StepUpload,
	StepAnalyzing,
	StepReview,
	StepTranslate,
	StepTranslationReview,
	StepAudio,
	StepFinalize,
}

// Steps returns the ordered wizard stages.
func Steps() []Step {
	out := make([]Step, len(stepOrder))
	copy(out, stepOrder)
	return out
}

// StepOrdinal returns the zero-based position of a step, or -1 for unknown steps.
func StepOrdinal(s Step) int {
	for i, step := range stepOrder {
		if step == s {
			return i
		}
	}
	return -1
}

// NextStep returns the following step, clamped at the final stage.
func NextStep(s Step) Step {
	i := StepOrdinal(s)
	if i < 0 || i >= len(stepOrder)-1 {
		return s
	}
	return stepOrder[i+1]
}

// PreviousStep returns the prior step, clamped at the initial stage.
func PreviousStep(s Step) Step {
	i := StepOrdinal(s)
	if i <= 0 {
		return s
	}
	return stepOrder[i-1]
}

// StepProgress returns the completed fraction of the wizard at a step, in [0,1].
func StepProgress(s Step) float64 {
	i := StepOrdinal(s)
	if i < 0 {
		return 0
	}
	return float64(i) / float64(len(stepOrder)-1)
}

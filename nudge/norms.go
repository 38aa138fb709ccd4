package nudge

// Window is an inclusive optimal follow-up range in days.
type Window struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (w Window) Shift(days int) Window {
	return Window{Min: w.Min + days, Max: w.Max + days}
}

var recruitingNorms = map[InteractionType]Window{
	InteractionCoffeeChat:     {Min: 3, Max: 6},
	InteractionReferralIntro:  {Min: 5, Max: 10},
	InteractionRecruiterEmail: {Min: 7, Max: 14},
	InteractionPostInterview:  {Min: 2, Max: 5},
}

var interactionOrder = []InteractionType{
	InteractionCoffeeChat,
	InteractionReferralIntro,
	InteractionRecruiterEmail,
	InteractionPostInterview,
}

// InteractionTypes lists the known categories in display order.
func InteractionTypes() []InteractionType {
	out := make([]InteractionType, len(interactionOrder))
	copy(out, interactionOrder)
	return out
}

// LookupWindow returns the base window for category and whether the category
// is known. Unknown categories get a zero window.
func LookupWindow(category InteractionType) (Window, bool) {
	w, ok := recruitingNorms[category]
	return w, ok
}

func WindowFor(category InteractionType) Window {
	w, _ := LookupWindow(category)
	return w
}

func ShiftedWindow(category InteractionType, shift int) Window {
	return WindowFor(category).Shift(shift)
}

func (c InteractionType) Valid() bool {
	_, ok := recruitingNorms[c]
	return ok
}

package heap

// Transition is the animation a block is currently taking part in
type Transition uint32

const (
	TransitionNone Transition = iota
	// TransitionSplitting marks both halves of a block that was just split
	TransitionSplitting
	// TransitionCoalescing marks both blocks of a merge step until the coalescing run finalizes
	TransitionCoalescing
)

var transitionMapping = map[Transition]string{
	TransitionNone:       "None",
	TransitionSplitting:  "Splitting",
	TransitionCoalescing: "Coalescing",
}

func (t Transition) String() string {
	return transitionMapping[t]
}

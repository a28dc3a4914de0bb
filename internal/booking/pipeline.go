package booking

// Rule is one named business constraint. Eval returns nil to accept the
// candidate or a Rejection explaining why it must not be committed. Rules
// never write; a pipeline run is safe to repeat or use as a dry run.
type Rule struct {
	Name string
	Eval func(c Candidate, s *Snapshot) *Rejection
}

// Pipeline runs rules in a fixed order and short-circuits on the first
// rejection, so failures surface the earliest-detected, most specific cause.
type Pipeline struct {
	rules []Rule
}

// NewPipeline returns the pipeline with the standard rule order: cheap
// structural checks first, cross-booking checks last. The shape check runs
// separately in the engine before the snapshot is loaded.
func NewPipeline() *Pipeline {
	return &Pipeline{rules: []Rule{
		{Name: "machine-exists", Eval: checkMachineExists},
		{Name: "slot-free", Eval: checkSlotFree},
		{Name: "no-double-booking", Eval: checkNoDoubleBooking},
		{Name: "washer-blackout", Eval: checkWasherBlackout},
		{Name: "washer-daily-quota", Eval: checkWasherDailyQuota},
		{Name: "advance-limit", Eval: checkAdvanceLimit},
		{Name: "dryer-prerequisite", Eval: checkDryerPrerequisite},
		{Name: "dryer-ordering", Eval: checkDryerOrdering},
	}}
}

// Append adds a rule after the standard ones. New constraints plug in here
// without touching existing evaluators.
func (p *Pipeline) Append(r Rule) {
	p.rules = append(p.rules, r)
}

// Evaluate runs the candidate through every rule in order and returns the
// first rejection, or nil if all rules accept. The rejection is stamped
// with the name of the rule that produced it.
func (p *Pipeline) Evaluate(c Candidate, s *Snapshot) *Rejection {
	for _, r := range p.rules {
		if rej := r.Eval(c, s); rej != nil {
			if rej.Rule == "" {
				rej.Rule = r.Name
			}
			return rej
		}
	}
	return nil
}

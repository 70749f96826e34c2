package capsule

// Well-known section names used by the assistant-facing helpers below.
// These are conventions, not wire-level constraints: a capsule may carry
// any section names it likes.
const (
	SectionTaskObjective = "task_objective"
	SectionRelevantFiles = "relevant_files"
	SectionWorkingPlan   = "working_plan"
	SectionErrorState    = "error_state"
	SectionCodeSymbols   = "code_symbols_of_interest"
)

// SetTaskObjective records the current task objective.
func (c *Capsule) SetTaskObjective(objective string) {
	c.SetSection(Text(SectionTaskObjective, objective), true)
}

// TaskObjective returns the current task objective, or "" if unset.
func (c *Capsule) TaskObjective() string {
	s := c.GetSection(SectionTaskObjective)
	if s == nil {
		return ""
	}
	text, err := s.AsText()
	if err != nil {
		return ""
	}
	return text
}

// SetRelevantFiles records the files relevant to the current task.
func (c *Capsule) SetRelevantFiles(files []string) error {
	s, err := JSON(SectionRelevantFiles, files)
	if err != nil {
		return err
	}
	c.SetSection(s, true)
	return nil
}

// RelevantFiles returns the recorded file list, or nil if unset.
func (c *Capsule) RelevantFiles() []string {
	s := c.GetSection(SectionRelevantFiles)
	if s == nil {
		return nil
	}
	var files []string
	if err := s.AsJSON(&files); err != nil {
		return nil
	}
	return files
}

// SetWorkingPlan records the working plan (typically a list of steps).
func (c *Capsule) SetWorkingPlan(plan any) error {
	s, err := JSON(SectionWorkingPlan, plan)
	if err != nil {
		return err
	}
	c.SetSection(s, true)
	return nil
}

// WorkingPlan unmarshals the working plan into v. Returns false if unset.
func (c *Capsule) WorkingPlan(v any) (bool, error) {
	s := c.GetSection(SectionWorkingPlan)
	if s == nil {
		return false, nil
	}
	if err := s.AsJSON(v); err != nil {
		return false, err
	}
	return true, nil
}

// SetErrorState records the last known error output.
func (c *Capsule) SetErrorState(output string) {
	c.SetSection(Text(SectionErrorState, output), true)
}

// ErrorState returns the last known error output, or "" if unset.
func (c *Capsule) ErrorState() string {
	s := c.GetSection(SectionErrorState)
	if s == nil {
		return ""
	}
	text, err := s.AsText()
	if err != nil {
		return ""
	}
	return text
}

// SetCodeSymbols records the code symbols of interest.
func (c *Capsule) SetCodeSymbols(symbols []string) error {
	s, err := JSON(SectionCodeSymbols, symbols)
	if err != nil {
		return err
	}
	c.SetSection(s, true)
	return nil
}

// CodeSymbols returns the recorded symbols, or nil if unset.
func (c *Capsule) CodeSymbols() []string {
	s := c.GetSection(SectionCodeSymbols)
	if s == nil {
		return nil
	}
	var symbols []string
	if err := s.AsJSON(&symbols); err != nil {
		return nil
	}
	return symbols
}

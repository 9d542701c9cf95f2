package task

// Task represents a tracked unit of work.
type Task struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description *string `yaml:"description,omitempty" json:"description,omitempty"`
	Complete    bool    `yaml:"complete" json:"complete"`
}

// Params holds the caller-supplied fields for a new task.
type Params struct {
	Name        string
	Description *string
	Complete    bool
}

// WithCompletion returns a copy of t with the completion flag set.
func (t Task) WithCompletion(complete bool) Task {
	c := t.Clone()
	c.Complete = complete
	return c
}

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	c := t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	return c
}

// DescriptionText returns the description, or "" when absent.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

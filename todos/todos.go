// Package todos defines the todo record and its partial-update patch.
package todos

import "github.com/recordhouse/recordhouse/record"

// Todo is one task. Complete defaults to false when absent from input.
type Todo struct {
	ID          int64   `json:"id" yaml:"id,omitempty" rec:"id,identity"`
	Title       string  `json:"title" yaml:"title" rec:"title,required,min=3"`
	Description *string `json:"description,omitempty" yaml:"description,omitempty" rec:"description,max=100"`
	Priority    int64   `json:"priority" yaml:"priority" rec:"priority,gt=0,lt=6"`
	Complete    bool    `json:"complete" yaml:"complete,omitempty" rec:"complete"`
}

// Patch is the partial-update input for a todo.
type Patch struct {
	Title       record.Optional[string] `json:"title" rec:"title"`
	Description record.Optional[string] `json:"description" rec:"description"`
	Priority    record.Optional[int64]  `json:"priority" rec:"priority"`
	Complete    record.Optional[bool]   `json:"complete" rec:"complete"`
}

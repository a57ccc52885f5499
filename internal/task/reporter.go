package task

import (
	"fmt"

	"github.com/google/uuid"
)

// Reporter lets long-running work report fractional completion and a
// human-readable status without knowing the manager's internals. All
// updates go through Manager.UpdateProgress and inherit its clamping
// and sink-forwarding behavior.
type Reporter struct {
	manager *Manager
	taskID  uuid.UUID
}

// Update records the task's overall progress with an optional message.
func (r *Reporter) Update(progress float64, message string) {
	r.manager.UpdateProgress(r.taskID, progress, message)
}

// Phase scopes a sub-range of the 0-100 progress scale to a stretch of
// work that processes totalItems items. base is where the phase starts;
// weight is how much of the overall scale it spans. A weight of zero or
// less spans the remainder of the scale.
func (r *Reporter) Phase(label string, base, weight float64, totalItems int) *Phase {
	if weight <= 0 {
		weight = 100 - base
	}
	return &Phase{
		reporter: r,
		label:    label,
		base:     base,
		weight:   weight,
		total:    totalItems,
	}
}

// Phase maps "item i of N processed" onto a task's progress sub-range.
type Phase struct {
	reporter *Reporter
	label    string
	base     float64
	weight   float64
	total    int
}

// UpdateItem reports that the item at the given zero-based index has
// been processed.
func (p *Phase) UpdateItem(index int) {
	if p.total <= 0 {
		return
	}
	progress := p.base + float64(index+1)/float64(p.total)*p.weight
	p.reporter.Update(progress, fmt.Sprintf("%s: %d/%d", p.label, index+1, p.total))
}

// Complete reports the phase as fully done. Call it on normal exit
// only; on an error path the enclosing failure handling owns the
// terminal state.
func (p *Phase) Complete() {
	p.reporter.Update(p.base+p.weight, fmt.Sprintf("%s: done", p.label))
}

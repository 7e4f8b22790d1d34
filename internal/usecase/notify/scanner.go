// Package notify gathers alert conditions, renders the report and delivers it.
package notify

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"poolkeeper/internal/domain/pool"
	"poolkeeper/internal/errs"
	"poolkeeper/internal/ports"
)

// Facts is what an alert has to report. A zero Facts means nothing to send.
type Facts struct {
	LowItems []pool.InventoryItem
	DueTasks []pool.Task
}

func (f Facts) Empty() bool {
	return len(f.LowItems) == 0 && len(f.DueTasks) == 0
}

type Scanner struct {
	inventory ports.InventoryRepository
	tasks     ports.TaskRepository
	clock     ports.Clock
}

func NewScanner(inventory ports.InventoryRepository, tasks ports.TaskRepository, clock ports.Clock) *Scanner {
	return &Scanner{inventory: inventory, tasks: tasks, clock: clock}
}

// Scan collects the owner's low inventory and tasks due today or earlier, for whichever
// conditions are watched. Both boundaries are inclusive.
func (s *Scanner) Scan(ctx context.Context, ownerID uuid.UUID, watchInventory, watchTasks bool) (Facts, error) {
	if ctx == nil {
		return Facts{}, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return Facts{}, errs.Wrap(err, "check context")
	}

	var facts Facts
	if watchInventory {
		items, err := s.inventory.ListLowItems(ctx, ownerID)
		if err != nil {
			return Facts{}, errs.Wrap(err, "scan low inventory")
		}
		facts.LowItems = items
	}
	if watchTasks {
		due, err := s.tasks.ListDueTasks(ctx, ownerID, s.clock.Today())
		if err != nil {
			return Facts{}, errs.Wrap(err, "scan due tasks")
		}
		facts.DueTasks = due
	}
	return facts, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/keron/config"
	"github.com/sarchlab/keron/kern"
)

type taskDescription struct {
	Name         string `json:"name"`
	Priority     int    `json:"priority"`
	StackSize    int    `json:"stack_size"`
	StackHunk    *int   `json:"stack_hunk"`
	ActiveAtBoot bool   `json:"active_at_boot"`
}

type eventGroupDescription struct {
	Name    string `json:"name"`
	Initial uint32 `json:"initial"`
}

type hunkDescription struct {
	Size  int `json:"size"`
	Align int `json:"align"`
}

type interruptDescription struct {
	Line          int  `json:"line"`
	EnabledAtBoot bool `json:"enabled_at_boot"`
}

// systemDescription is the JSON form of a system configuration. It
// carries everything a configuration needs except code: entry functions
// and handlers cannot be expressed in JSON, so placeholders stand in
// for them during validation.
type systemDescription struct {
	PriorityLevels int                     `json:"priority_levels"`
	HunkBudget     int                     `json:"hunk_budget"`
	Tasks          []taskDescription       `json:"tasks"`
	EventGroups    []eventGroupDescription `json:"event_groups"`
	Hunks          []hunkDescription       `json:"hunks"`
	Interrupts     []interruptDescription  `json:"interrupts"`
}

func loadDescription(path string) (systemDescription, error) {
	var desc systemDescription

	data, err := os.ReadFile(path)
	if err != nil {
		return desc, fmt.Errorf("read system description: %w", err)
	}

	if err := json.Unmarshal(data, &desc); err != nil {
		return desc, fmt.Errorf("parse system description: %w", err)
	}

	return desc, nil
}

func placeholderStart(_ *kern.Kernel, _ any) {}

func placeholderHandler(_ *kern.Kernel) {}

// buildFromDescription runs a description through the configuration
// engine and returns the finalized object table.
func buildFromDescription(
	desc systemDescription,
) (*kern.ObjectTable, error) {
	b := config.New()

	if desc.PriorityLevels > 0 {
		b.SetPriorityLevels(desc.PriorityLevels)
	}

	if desc.HunkBudget > 0 {
		b.SetHunkBudget(desc.HunkBudget)
	}

	hunkIDs := make([]kern.HunkID, len(desc.Hunks))
	for i, h := range desc.Hunks {
		hunkIDs[i] = b.AddHunk(h.Size, h.Align)
	}

	for _, t := range desc.Tasks {
		d := config.MakeTaskDesc(t.Name).
			WithStart(placeholderStart).
			WithPriority(kern.Priority(t.Priority))

		if t.StackHunk != nil {
			idx := *t.StackHunk
			if idx < 0 || idx >= len(hunkIDs) {
				return nil, fmt.Errorf(
					"task %q: stack hunk %d is not declared", t.Name, idx)
			}
			d = d.WithStackHunk(hunkIDs[idx])
		} else if t.StackSize > 0 {
			d = d.WithStackSize(t.StackSize)
		}

		if t.ActiveAtBoot {
			d = d.ActiveAtBoot()
		}

		b.AddTask(d)
	}

	for _, eg := range desc.EventGroups {
		b.AddEventGroup(eg.Name, kern.EventBits(eg.Initial))
	}

	for _, irq := range desc.Interrupts {
		b.BindInterrupt(
			kern.InterruptNum(irq.Line), placeholderHandler,
			irq.EnabledAtBoot)
	}

	return b.Finalize()
}

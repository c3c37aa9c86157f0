package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SeedFixtures loads a small demo data set for local development: a couple
// of contacts, one cadence, and a spread of tasks across both origins and
// due-date buckets for the given user.
func SeedFixtures(ctx context.Context, repo Repository, userID string, now time.Time) error {
	created := now.UTC()
	today := time.Date(created.Year(), created.Month(), created.Day(), 0, 0, 0, 0, time.UTC)

	contacts := []Contact{
		{ID: uuid.NewString(), Name: "Dana Whitfield", CreatedAt: created},
		{ID: uuid.NewString(), Name: "Marcus Obi", CreatedAt: created},
	}
	for _, c := range contacts {
		if err := repo.CreateContact(ctx, c); err != nil {
			return fmt.Errorf("seed contact %s: %w", c.Name, err)
		}
	}

	cadence := Cadence{ID: uuid.NewString(), Name: "New Lead Outreach", CreatedAt: created}
	if err := repo.CreateCadence(ctx, cadence); err != nil {
		return fmt.Errorf("seed cadence: %w", err)
	}

	manual := []ManualTask{
		{ID: uuid.NewString(), UserID: userID, Title: "Call about renewal", Status: "pending", DueDate: today.AddDate(0, 0, -5), TaskType: "call", ContactID: contacts[0].ID, CreatedAt: created},
		{ID: uuid.NewString(), UserID: userID, Title: "Send pricing sheet", Status: "pending", DueDate: today, TaskType: "email", ContactID: contacts[1].ID, CreatedAt: created},
		{ID: uuid.NewString(), UserID: userID, Title: "Prep quarterly review", Status: "pending", DueDate: today.AddDate(0, 0, 3), TaskType: "meeting", CreatedAt: created},
	}
	for _, task := range manual {
		if err := repo.CreateManualTask(ctx, task); err != nil {
			return fmt.Errorf("seed manual task %q: %w", task.Title, err)
		}
	}

	cadenceTasks := []CadenceTask{
		{ID: uuid.NewString(), UserID: userID, CadenceID: cadence.ID, Title: "Day 1 intro call", Status: "pending", DueDate: today.AddDate(0, 0, -1), TaskType: "call", ContactID: contacts[0].ID, CreatedAt: created},
		{ID: uuid.NewString(), UserID: userID, CadenceID: cadence.ID, Title: "Day 3 follow-up text", Status: "pending", DueDate: today.AddDate(0, 0, 1), TaskType: "text", ContactID: contacts[0].ID, CreatedAt: created},
	}
	for _, task := range cadenceTasks {
		if err := repo.CreateCadenceTask(ctx, task); err != nil {
			return fmt.Errorf("seed cadence task %q: %w", task.Title, err)
		}
	}
	return nil
}

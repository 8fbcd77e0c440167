package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/distincto/journal/internal/journal/models"
)

func (a *App) AddChild(ctx context.Context) error {
	name, err := GetSimpleText(a.reader, "Child name", os.Stdout)
	if err != nil {
		return err
	}
	dob, err := GetSimpleText(a.reader, "Date of birth (YYYY-MM-DD, optional)", os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.children.Save(ctx, &models.Child{Name: name, DateOfBirth: dob})
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Added child #%d", id))
	return nil
}

func (a *App) ListChildren(ctx context.Context) error {
	all, err := a.children.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range all {
		printlnFn(fmt.Sprintf("#%d  %s  %s", c.ID, c.Name, c.DateOfBirth))
	}
	if len(all) == 0 {
		printlnFn("No children yet, use 'addchild'")
	}
	return nil
}

func (a *App) DeleteChild(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	return a.children.Delete(ctx, id)
}

func (a *App) AddEntry(ctx context.Context) error {
	childName, err := GetSimpleText(a.reader, "Child name", os.Stdout)
	if err != nil {
		return err
	}
	general, err := GetSimpleText(a.reader, "General notes", os.Stdout)
	if err != nil {
		return err
	}
	medication, err := GetSimpleText(a.reader, "Medication notes (stored encrypted, optional)", os.Stdout)
	if err != nil {
		return err
	}

	entry := &models.JournalEntry{
		ChildName:       childName,
		Timestamp:       time.Now().UnixMilli(),
		GeneralNotes:    general,
		MedicationNotes: medication,
	}
	id, err := a.entries.Save(ctx, entry)
	if err != nil {
		return err
	}
	if _, err := a.coordinator.UpdatePendingCount(ctx); err != nil {
		return err
	}
	a.coordinator.RegisterForSync(ctx, a.worker)
	printlnFn(fmt.Sprintf("Saved entry #%d for %s", id, childName))
	return nil
}

func (a *App) ListEntries(ctx context.Context, args []string) error {
	childName, err := requireChild(args)
	if err != nil {
		return err
	}
	all, err := a.entries.ListByChild(ctx, childName)
	if err != nil {
		return err
	}
	for _, e := range all {
		printlnFn(fmt.Sprintf("#%d  %s  %s  synced=%t", e.ID, e.Date, truncate(e.GeneralNotes, 40), e.Synced))
	}
	return nil
}

func (a *App) ShowEntry(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	entry, err := a.entries.Get(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		printlnFn("Not found")
		return nil
	}
	printlnFn(fmt.Sprintf("#%d %s %s", entry.ID, entry.ChildName, entry.Date))
	printlnFn("General:    " + entry.GeneralNotes)
	printlnFn("Medication: " + entry.MedicationNotes)
	if entry.VoiceRecordingPath != "" {
		printlnFn("Recording:  " + entry.VoiceRecordingPath)
	}
	return nil
}

func (a *App) DeleteEntry(ctx context.Context, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := a.entries.Delete(ctx, id); err != nil {
		return err
	}
	_, err = a.coordinator.UpdatePendingCount(ctx)
	return err
}

func (a *App) AddFood(ctx context.Context) error {
	childName, err := GetSimpleText(a.reader, "Child name", os.Stdout)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.reader, "Food name", os.Stdout)
	if err != nil {
		return err
	}

	item := &models.FoodItem{
		ChildName: childName,
		Timestamp: time.Now().UnixMilli(),
		Name:      name,
		Category:  models.FoodCategoryNew,
	}
	id, err := a.food.Save(ctx, item)
	if err != nil {
		return err
	}
	if _, err := a.coordinator.UpdatePendingCount(ctx); err != nil {
		return err
	}
	a.coordinator.RegisterForSync(ctx, a.worker)
	printlnFn(fmt.Sprintf("Added food #%d (%s)", id, models.FoodCategoryNew))
	return nil
}

func (a *App) ListFood(ctx context.Context, args []string) error {
	childName, err := requireChild(args)
	if err != nil {
		return err
	}
	all, err := a.food.ListByChild(ctx, childName)
	if err != nil {
		return err
	}
	for _, f := range all {
		printlnFn(fmt.Sprintf("#%d  %-20s %-10s synced=%t", f.ID, f.Name, f.Category, f.Synced))
	}
	return nil
}

func (a *App) SetFoodCategory(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: setcat <id> <new|safe|sometimes|notYet>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("bad id %q", args[0])
	}
	if err := a.food.SetCategory(ctx, id, models.FoodCategory(args[1])); err != nil {
		return err
	}
	if _, err := a.coordinator.UpdatePendingCount(ctx); err != nil {
		return err
	}
	a.coordinator.RegisterForSync(ctx, a.worker)
	return nil
}

func (a *App) ListReports(ctx context.Context, args []string) error {
	childName, err := requireChild(args)
	if err != nil {
		return err
	}
	all, err := a.reports.ListByChild(ctx, childName)
	if err != nil {
		return err
	}
	for _, r := range all {
		printlnFn(fmt.Sprintf("#%d  %-16s %s", r.ID, r.Type, models.DateFromTimestamp(r.Timestamp)))
	}
	return nil
}

func (a *App) Sync(ctx context.Context) error {
	status, err := a.coordinator.SyncData(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Sync done, %d still pending", status.PendingCount))
	return nil
}

func (a *App) Status(ctx context.Context) error {
	status := a.coordinator.Status()
	last := "never"
	if status.LastSync != 0 {
		last = time.UnixMilli(status.LastSync).UTC().Format(time.RFC3339)
	}
	printlnFn(fmt.Sprintf("online=%t pending=%d in_progress=%t last_sync=%s",
		status.IsOnline, status.PendingCount, status.InProgress, last))
	return nil
}

func (a *App) Backup(ctx context.Context) error {
	path, err := a.backups.WriteFile(ctx, a.config.BackupDir())
	if err != nil {
		return err
	}
	printlnFn("Backup written to " + path)
	return nil
}

func (a *App) Restore(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: restore <file>")
	}
	if err := a.backups.ReadFile(ctx, args[0]); err != nil {
		return err
	}
	_, err := a.coordinator.UpdatePendingCount(ctx)
	return err
}

func parseID(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("id argument required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", args[0])
	}
	return id, nil
}

func requireChild(args []string) (string, error) {
	if len(args) < 1 {
		return "", fmt.Errorf("child name argument required")
	}
	return args[0], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amonks/tally/internal/editor"
	internalstrings "github.com/amonks/tally/internal/strings"
	"github.com/amonks/tally/internal/ui"
	"github.com/amonks/tally/task"
)

// tally add
var addCmd = &cobra.Command{
	Use:   "add [title...]",
	Short: "Add a new task",
	Long: `Add a new task.

The category is inferred from the title and description unless --category
is given. With --ai, the title is treated as free text and a language model
pulls out a cleaner title, a due date and notes; without an API key the text
is used as the title unchanged.

By default, opens $EDITOR to edit a TOML representation of the task
when running interactively. Use --no-edit to skip the editor, or
--edit to force opening the editor even when not interactive.`,
	RunE: runAdd,
}

var (
	addDescription string
	addCategory    string
	addPriority    string
	addDue         string
	addAI          bool
	addJSON        bool
	addEdit        bool
	addNoEdit      bool
)

// tally edit
var editCmd = &cobra.Command{
	Use:   "edit <id>...",
	Short: "Edit one or more tasks",
	Long: `Edit one or more tasks.

By default, opens $EDITOR when running interactively and no update flags
are provided (one editor session per ID). Use --no-edit to skip the editor,
or --edit to force opening the editor even when not interactive.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
	editCategory    string
	editPriority    string
	editDue         string
	editClearDue    bool
	editEdit        bool
	editNoEdit      bool
)

// tally done
var doneCmd = &cobra.Command{
	Use:     "done <id>...",
	Aliases: []string{"complete"},
	Short:   "Mark one or more tasks as completed",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDone,
}

// tally undo
var undoCmd = &cobra.Command{
	Use:     "undo <id>...",
	Aliases: []string{"reopen"},
	Short:   "Mark one or more completed tasks as pending again",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runUndo,
}

// tally delete
var deleteCmd = &cobra.Command{
	Use:     "delete <id>...",
	Aliases: []string{"rm"},
	Short:   "Delete one or more tasks",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runDelete,
}

// tally show
var showCmd = &cobra.Command{
	Use:   "show <id>...",
	Short: "Show detailed information about tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runShow,
}

var showJSON bool

func init() {
	rootCmd.AddCommand(addCmd, editCmd, doneCmd, undoCmd, deleteCmd, showCmd)

	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Description (use '-' to read from stdin)")
	addCmd.Flags().StringVarP(&addCategory, "category", "c", task.CategoryAuto, "Category, or Auto to infer it")
	addCmd.Flags().StringVarP(&addPriority, "priority", "p", "", "Priority (1-5 or urgent, high, medium, low, someday)")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (e.g. 2024-03-01, tomorrow 5pm, next friday)")
	addCmd.Flags().BoolVar(&addAI, "ai", false, "Extract title, due date and notes from free text")
	addCmd.Flags().BoolVar(&addJSON, "json", false, "Output the created task as JSON")
	addCmd.Flags().BoolVarP(&addEdit, "edit", "e", false, "Open $EDITOR (default if interactive)")
	addCmd.Flags().BoolVar(&addNoEdit, "no-edit", false, "Do not open $EDITOR")

	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description (use '-' to read from stdin)")
	editCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category, or Auto to infer it again")
	editCmd.Flags().StringVarP(&editPriority, "priority", "p", "", "New priority (1-5 or name)")
	editCmd.Flags().StringVar(&editDue, "due", "", "New due date")
	editCmd.Flags().BoolVar(&editClearDue, "clear-due", false, "Remove the due date")
	editCmd.Flags().BoolVarP(&editEdit, "edit", "e", false, "Open $EDITOR (default if interactive)")
	editCmd.Flags().BoolVar(&editNoEdit, "no-edit", false, "Do not open $EDITOR")
	editCmd.MarkFlagsMutuallyExclusive("due", "clear-due")

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")

	addDescriptionFlagAliases(addCmd, editCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("description") {
		desc, err := resolveDescriptionFromStdin(addDescription, os.Stdin)
		if err != nil {
			return err
		}
		addDescription = desc
	}

	var priority *int
	if cmd.Flags().Changed("priority") {
		p, err := task.ParsePriority(addPriority)
		if err != nil {
			return err
		}
		priority = &p
	}

	title := internalstrings.NormalizeWhitespace(strings.Join(args, " "))
	useEditor := addEdit || (!addNoEdit && editor.IsInteractive())
	if !useEditor && title == "" {
		return fmt.Errorf("%w (use --edit to open editor)", task.ErrEmptyTitle)
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	description := addDescription
	now := a.store.Now()
	due := resolveDue(addDue, now, a.logger)

	// The model is consulted before the store is written.
	if addAI && title != "" {
		client, err := a.assistClient()
		if err != nil {
			return err
		}
		extraction := client.Extract(cmd.Context(), title)
		title = extraction.Title
		if strings.TrimSpace(description) == "" {
			description = extraction.Notes
		}
		if !cmd.Flags().Changed("due") {
			due = extraction.DueDate
		}
	}

	opts := task.CreateOptions{
		Description: description,
		Category:    addCategory,
		Priority:    priority,
		DueDate:     due,
	}

	if useEditor {
		data := editor.DefaultCreateData(a.store.CategoryRules())
		data.Title = title
		data.Description = description
		data.Category = addCategory
		if priority != nil {
			data.Priority = *priority
		}
		if due != nil {
			data.Due = due.Format("2006-01-02 15:04")
		}

		parsed, err := editor.EditTaskWithData(data)
		if err != nil {
			return err
		}
		title = parsed.Title
		opts = parsed.ToCreateOptions(resolveDue(parsed.Due, now, a.logger))
	}

	created, err := a.store.Create(title, opts)
	if err != nil {
		return err
	}

	if addJSON {
		return encodeJSONToStdout(created)
	}
	fmt.Printf("Created task %s: %s [%s]\n", ui.ID(created.ID), created.Title, created.Category)
	return nil
}

func runEdit(cmd *cobra.Command, args []string) error {
	ids, err := parseTaskIDs(args)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("description") {
		desc, err := resolveDescriptionFromStdin(editDescription, os.Stdin)
		if err != nil {
			return err
		}
		editDescription = desc
	}

	hasFlags := cmd.Flags().Changed("title") ||
		cmd.Flags().Changed("description") ||
		cmd.Flags().Changed("category") ||
		cmd.Flags().Changed("priority") ||
		cmd.Flags().Changed("due") ||
		cmd.Flags().Changed("clear-due")

	useEditor := shouldUseEditEditor(hasFlags, editEdit, editNoEdit, editor.IsInteractive())
	if !useEditor && !hasFlags {
		return fmt.Errorf("at least one update flag is required (use --edit to open editor)")
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := editFlagOptions(cmd, a)
	if err != nil {
		return err
	}

	for _, id := range ids {
		taskOpts := opts
		if useEditor {
			existing, err := a.store.Get(id)
			if err != nil {
				return err
			}
			parsed, err := editor.EditTaskWithData(editorDataWithFlags(cmd, existing, a))
			if err != nil {
				return err
			}
			taskOpts = parsed.ToUpdateOptions(resolveDue(parsed.Due, a.store.Now(), a.logger))
		}

		updated, err := a.store.Update(id, taskOpts)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s: %s\n", ui.ID(updated.ID), updated.Title)
	}
	return nil
}

// editFlagOptions turns the edit flags into an update.
func editFlagOptions(cmd *cobra.Command, a *app) (task.UpdateOptions, error) {
	opts := task.UpdateOptions{}
	if cmd.Flags().Changed("title") {
		opts.Title = &editTitle
	}
	if cmd.Flags().Changed("description") {
		opts.Description = &editDescription
	}
	if cmd.Flags().Changed("category") {
		opts.Category = &editCategory
	}
	if cmd.Flags().Changed("priority") {
		p, err := task.ParsePriority(editPriority)
		if err != nil {
			return opts, err
		}
		opts.Priority = &p
	}
	if cmd.Flags().Changed("due") {
		opts.DueDate = resolveDue(editDue, a.store.Now(), a.logger)
	}
	opts.ClearDueDate = editClearDue
	return opts, nil
}

func editorDataWithFlags(cmd *cobra.Command, existing *task.Task, a *app) editor.TaskData {
	data := editor.DataFromTask(existing, a.store.CategoryRules())
	if cmd.Flags().Changed("title") {
		data.Title = editTitle
	}
	if cmd.Flags().Changed("description") {
		data.Description = editDescription
	}
	if cmd.Flags().Changed("category") {
		data.Category = editCategory
	}
	if p, err := task.ParsePriority(editPriority); err == nil && cmd.Flags().Changed("priority") {
		data.Priority = p
	}
	if cmd.Flags().Changed("due") {
		data.Due = editDue
	}
	if editClearDue {
		data.Due = ""
	}
	return data
}

func shouldUseEditEditor(hasUpdateFlags bool, editFlag bool, noEditFlag bool, interactive bool) bool {
	if editFlag {
		return true
	}
	if noEditFlag {
		return false
	}
	if hasUpdateFlags {
		return false
	}
	return interactive
}

func runDone(cmd *cobra.Command, args []string) error {
	return runStatusChange(args, "Completed", (*task.Store).Complete)
}

func runUndo(cmd *cobra.Command, args []string) error {
	return runStatusChange(args, "Reopened", (*task.Store).Reopen)
}

func runStatusChange(args []string, verb string, change func(*task.Store, int64) (*task.Task, error)) error {
	ids, err := parseTaskIDs(args)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, id := range ids {
		updated, err := change(a.store, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s: %s\n", verb, ui.ID(updated.ID), updated.Title)
	}
	return nil
}

func runDelete(cmd *cobra.Command, args []string) error {
	ids, err := parseTaskIDs(args)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	for _, id := range ids {
		existing, err := a.store.Get(id)
		if err != nil {
			return err
		}
		if err := a.store.Delete(id); err != nil {
			return err
		}
		fmt.Printf("Deleted %s: %s\n", ui.ID(existing.ID), existing.Title)
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	ids, err := parseTaskIDs(args)
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tasks := make([]task.Task, 0, len(ids))
	for _, id := range ids {
		t, err := a.store.Get(id)
		if err != nil {
			return err
		}
		tasks = append(tasks, *t)
	}

	if showJSON {
		return encodeJSONToStdout(tasks)
	}

	now := a.store.Now()
	for i, t := range tasks {
		if i > 0 {
			fmt.Println("---")
		}
		fmt.Print(formatTaskDetail(t, now))
	}
	return nil
}

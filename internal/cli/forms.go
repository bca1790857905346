package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/polylearner/internal/cli/formatter"
	"github.com/alexanderramin/polylearner/internal/domain"
	"github.com/alexanderramin/polylearner/internal/intelligence"
)

func formTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validateHours(s string) error {
	h, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || h <= 0 {
		return errors.New("enter a positive number of hours")
	}
	return nil
}

func validatePriority(s string) error {
	return priorityFlag{value: new(int)}.Set(strings.TrimSpace(s))
}

// taskFormFields holds the text a task form edits before it is parsed.
type taskFormFields struct {
	hours    string
	priority string
}

// newTaskForm edits t in place; fields already set become the defaults.
// Call fields.apply after the form completes.
func newTaskForm(t *domain.Task) (*huh.Form, *taskFormFields) {
	fields := &taskFormFields{priority: strconv.Itoa(domain.DefaultPriority)}
	if t.TimeHours > 0 {
		fields.hours = strconv.FormatFloat(t.TimeHours, 'f', -1, 64)
	}
	if t.Priority > 0 {
		fields.priority = strconv.Itoa(t.Priority)
	}
	if t.Category == "" {
		t.Category = domain.CategoryResearch
	}
	if t.Artifact == "" {
		t.Artifact = domain.ArtifactNotes
	}

	categories := make([]huh.Option[domain.Category], 0, len(domain.Categories))
	for _, c := range domain.Categories {
		categories = append(categories, huh.NewOption(string(c), c))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&t.Title).Validate(validateRequired),
			huh.NewSelect[domain.Category]().Title("Category").Options(categories...).Value(&t.Category),
			huh.NewInput().Title("Goal").Description("What finishing this task achieves").Value(&t.Goal).Validate(validateRequired),
			huh.NewSelect[domain.Artifact]().Title("Artifact").Options(
				huh.NewOption("notes", domain.ArtifactNotes),
				huh.NewOption("article", domain.ArtifactArticle),
				huh.NewOption("code", domain.ArtifactCode),
			).Value(&t.Artifact),
			huh.NewInput().Title("Hours").Placeholder("1.5").Value(&fields.hours).Validate(validateHours),
			huh.NewInput().Title("Priority").Placeholder("5").Value(&fields.priority).Validate(validatePriority),
		),
	).WithTheme(formTheme()).WithShowHelp(false)
	return form, fields
}

func (f *taskFormFields) apply(t *domain.Task) error {
	h, err := strconv.ParseFloat(strings.TrimSpace(f.hours), 64)
	if err != nil {
		return fmt.Errorf("hours: %w", err)
	}
	t.TimeHours = h
	return priorityFlag{value: &t.Priority}.Set(strings.TrimSpace(f.priority))
}

// pickSuggestionsForm lets the user keep a subset of suggestions; every
// suggestion starts selected.
func pickSuggestionsForm(suggestions []intelligence.SuggestedTask, picked *[]int) *huh.Form {
	opts := make([]huh.Option[int], len(suggestions))
	for i, s := range suggestions {
		label := fmt.Sprintf("%s (%s, %s)", s.Title, s.Category, formatter.FormatHours(s.TimeHours))
		opts[i] = huh.NewOption(label, i).Selected(true)
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[int]().Title("Create which tasks?").Options(opts...).Value(picked),
		),
	).WithTheme(formTheme()).WithShowHelp(false)
}

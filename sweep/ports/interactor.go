package ports

// Interactor is the user-facing side of a run: plain output, warnings,
// errors and a single-line prompt.
type Interactor interface {
	Output(message string)
	Warning(message string)
	Error(message string, err error)
	Prompt(message string) (string, error)
}

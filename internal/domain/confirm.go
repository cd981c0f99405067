package domain

// Confirmer answers the yes/no prompt shown before an irreversible action.
// The presentation layer supplies an implementation backed by a dialog.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmerFunc adapts a plain function to the Confirmer interface
type ConfirmerFunc func(prompt string) bool

// Confirm implements Confirmer
func (f ConfirmerFunc) Confirm(prompt string) bool {
	return f(prompt)
}

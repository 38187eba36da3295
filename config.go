package ucc

// Config holds configuration options for compilation.
type Config struct {
	// Filename names the source in error positions ("file:line:col").
	// It has no effect on the generated assembly.
	Filename string
}

package findings

import (
	"fmt"
	"path"

	"github.com/acrsantana/project-guide/internal/runstore"
)

// Transcript is the append-only plain-text log of every summary produced
// during collection. Blocks are write-once, tagged, and separated by a blank
// line; nothing ever edits an existing block.
type Transcript struct {
	files runstore.Provider
	path  string // relative to the runs root
}

// NewTranscript creates the transcript handle for run id.
func NewTranscript(files runstore.Provider, id string) *Transcript {
	return &Transcript{files: files, path: path.Join(id, runstore.TranscriptFile)}
}

// AppendOverview appends the project overview block.
func (t *Transcript) AppendOverview(text string) error {
	return t.append(fmt.Sprintf("Project Overview:\n%s", text))
}

// AppendFile appends a file summary block.
func (t *Transcript) AppendFile(rel, text string) error {
	return t.append(fmt.Sprintf("File: %s\n%s", Key(rel), text))
}

// AppendDirectory appends a directory summary block.
func (t *Transcript) AppendDirectory(rel, text string) error {
	return t.append(fmt.Sprintf("Directory: %s\n%s", Key(rel), text))
}

func (t *Transcript) append(block string) error {
	if err := t.files.Append(t.path, []byte(block+"\n\n")); err != nil {
		return fmt.Errorf("transcript: %w", err)
	}
	return nil
}

// Read returns the full transcript text accumulated so far. A run that has
// produced no blocks yet reads as empty.
func (t *Transcript) Read() (string, error) {
	if !t.files.Exists(t.path) {
		return "", nil
	}
	data, err := t.files.Read(t.path)
	if err != nil {
		return "", fmt.Errorf("transcript: %w", err)
	}
	return string(data), nil
}

package tailor

import (
	"fmt"
	"strings"
)

// policy is the ordered list of editing rules sent with every request.
var policy = []string{
	"Read the resume files",
	"Modify the content to better match this job description",
	"Reorder bullet points to highlight relevant experience first",
	"Adjust wording to include relevant keywords from the job description",
	"Keep the LaTeX formatting intact",
	"Do NOT change personal info, education dates, or job titles/dates",
	"Focus on making the experience descriptions more relevant",
}

// BuildPrompt renders the instruction text for the assistant. The
// ADDITIONAL INSTRUCTIONS block is left out when instructions is blank.
func BuildPrompt(jobDescription, instructions, dir string, selection []string) string {
	var b strings.Builder
	b.WriteString("I need you to tailor my LaTeX resume for a specific job.\n\n")
	fmt.Fprintf(&b, "Resume directory: %s\n", dir)
	fmt.Fprintf(&b, "Files to consider: %s\n\n", strings.Join(selection, ", "))
	b.WriteString("JOB DESCRIPTION:\n")
	b.WriteString(jobDescription)
	b.WriteString("\n\n")
	if strings.TrimSpace(instructions) != "" {
		fmt.Fprintf(&b, "ADDITIONAL INSTRUCTIONS: %s\n\n", instructions)
	}
	b.WriteString("Please:\n")
	for i, rule := range policy {
		fmt.Fprintf(&b, "%d. %s\n", i+1, rule)
	}
	b.WriteString("\nMake the edits directly to the files.")
	return b.String()
}

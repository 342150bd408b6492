// Package tailor asks the external AI assistant to rewrite the selected
// resume files so they match a job description.
//
// The assistant runs as a child process pinned to the resume directory with a
// restricted tool set. The package never inspects what the assistant changed:
// any file in the selection may have been rewritten once Run returns success.
package tailor
